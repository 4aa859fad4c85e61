package dto

// DashboardResponse aggregates placement and journal counts for the
// presentation layer.
type DashboardResponse struct {
	PlacementsPending    int64 `json:"placements_pending"`
	PlacementsAktif      int64 `json:"placements_aktif"`
	PlacementsSelesai    int64 `json:"placements_selesai"`
	PlacementsDibatalkan int64 `json:"placements_dibatalkan"`
	JournalsMenunggu     int64 `json:"journals_menunggu"`
	JournalsDisetujui    int64 `json:"journals_disetujui"`
	JournalsDitolak      int64 `json:"journals_ditolak"`
}
