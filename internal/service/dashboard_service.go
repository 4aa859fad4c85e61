package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/smkdev-id/simagang-api/internal/dto"
	"github.com/smkdev-id/simagang-api/internal/models"
	"github.com/smkdev-id/simagang-api/internal/repository"
)

const dashboardCacheKey = "dashboard:overview"

// DashboardService aggregates placement and journal counts for the
// presentation layer.
type DashboardService interface {
	GetOverview(ctx context.Context, actor Actor) (dto.DashboardResponse, error)
}

type dashboardService struct {
	placements repository.PlacementRepository
	journals   repository.JournalRepository
	cache      *redis.Client
	cacheTTL   time.Duration
	logger     zerolog.Logger
}

// NewDashboardService builds the dashboard aggregator. The cache client may
// be nil; aggregation then always hits the store.
func NewDashboardService(placements repository.PlacementRepository, journals repository.JournalRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) DashboardService {
	return &dashboardService{
		placements: placements,
		journals:   journals,
		cache:      cache,
		cacheTTL:   ttl,
		logger:     logger.With().Str("component", "dashboard_service").Logger(),
	}
}

func (s *dashboardService) GetOverview(ctx context.Context, actor Actor) (dto.DashboardResponse, error) {
	if !Can(actor.Role, OpDashboardView, Ownership{}) {
		return dto.DashboardResponse{}, ErrForbidden
	}

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, dashboardCacheKey).Result(); err == nil {
			var response dto.DashboardResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Msg("dashboard cache hit")
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read dashboard cache")
		}
	}

	placementCounts, err := s.placements.CountByStatus(ctx)
	if err != nil {
		return dto.DashboardResponse{}, err
	}

	journalCounts, err := s.journals.CountByStatus(ctx)
	if err != nil {
		return dto.DashboardResponse{}, err
	}

	response := dto.DashboardResponse{
		PlacementsPending:    placementCounts[models.PlacementStatusPending],
		PlacementsAktif:      placementCounts[models.PlacementStatusAktif],
		PlacementsSelesai:    placementCounts[models.PlacementStatusSelesai],
		PlacementsDibatalkan: placementCounts[models.PlacementStatusDibatalkan],
		JournalsMenunggu:     journalCounts[models.ValidationStatusMenunggu],
		JournalsDisetujui:    journalCounts[models.ValidationStatusDisetujui],
		JournalsDitolak:      journalCounts[models.ValidationStatusDitolak],
	}

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, dashboardCacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store dashboard cache")
			}
		}
	}

	return response, nil
}
