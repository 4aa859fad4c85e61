package service

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/smkdev-id/simagang-api/internal/models"
	"github.com/smkdev-id/simagang-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

type fakeAnnouncer struct {
	entries []models.ActivityLog
}

func (a *fakeAnnouncer) Announce(_ context.Context, entry models.ActivityLog) {
	a.entries = append(a.entries, entry)
}

type fakeStudentRepo struct {
	students map[uuid.UUID]models.Student
}

func (r *fakeStudentRepo) GetByID(_ context.Context, id uuid.UUID) (models.Student, error) {
	for _, student := range r.students {
		if student.ID == id {
			return student, nil
		}
	}
	return models.Student{}, gorm.ErrRecordNotFound
}

func (r *fakeStudentRepo) GetByUserID(_ context.Context, userID uuid.UUID) (models.Student, error) {
	student, ok := r.students[userID]
	if !ok {
		return models.Student{}, gorm.ErrRecordNotFound
	}
	return student, nil
}

type fakeTeacherRepo struct {
	teachers map[uuid.UUID]models.Teacher
}

func (r *fakeTeacherRepo) GetByID(_ context.Context, id uuid.UUID) (models.Teacher, error) {
	for _, teacher := range r.teachers {
		if teacher.ID == id {
			return teacher, nil
		}
	}
	return models.Teacher{}, gorm.ErrRecordNotFound
}

func (r *fakeTeacherRepo) GetByUserID(_ context.Context, userID uuid.UUID) (models.Teacher, error) {
	teacher, ok := r.teachers[userID]
	if !ok {
		return models.Teacher{}, gorm.ErrRecordNotFound
	}
	return teacher, nil
}

type fakeCompanyRepo struct {
	companies map[uuid.UUID]models.Company
}

func (r *fakeCompanyRepo) GetByID(_ context.Context, id uuid.UUID) (models.Company, error) {
	company, ok := r.companies[id]
	if !ok {
		return models.Company{}, gorm.ErrRecordNotFound
	}
	return company, nil
}

func (r *fakeCompanyRepo) List(_ context.Context, _ repository.CompanyFilter) ([]models.Company, int64, error) {
	companies := make([]models.Company, 0, len(r.companies))
	for _, company := range r.companies {
		companies = append(companies, company)
	}
	return companies, int64(len(companies)), nil
}

// fakePlacementRepo keeps placements in memory and mirrors the transactional
// audit behaviour of the real repository: every mutation records its audit
// row, and conditional transitions fail with ErrStaleState when the stored
// status no longer matches the expectation.
type fakePlacementRepo struct {
	placements map[uuid.UUID]models.Placement
	audits     []models.ActivityLog
}

func newFakePlacementRepo() *fakePlacementRepo {
	return &fakePlacementRepo{placements: map[uuid.UUID]models.Placement{}}
}

func (r *fakePlacementRepo) GetByID(_ context.Context, id uuid.UUID) (models.Placement, error) {
	placement, ok := r.placements[id]
	if !ok {
		return models.Placement{}, gorm.ErrRecordNotFound
	}
	return placement, nil
}

func (r *fakePlacementRepo) HasActive(_ context.Context, studentID uuid.UUID) (bool, error) {
	for _, placement := range r.placements {
		if placement.StudentID == studentID && placement.Status == models.PlacementStatusAktif {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakePlacementRepo) HasOpenApplication(_ context.Context, studentID, companyID uuid.UUID) (bool, error) {
	for _, placement := range r.placements {
		if placement.StudentID != studentID || placement.CompanyID != companyID {
			continue
		}
		if placement.Status == models.PlacementStatusPending || placement.Status == models.PlacementStatusAktif {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakePlacementRepo) List(_ context.Context, filter repository.PlacementFilter) ([]models.Placement, int64, error) {
	matched := make([]models.Placement, 0)
	for _, placement := range r.placements {
		if filter.Status != "" && placement.Status != filter.Status {
			continue
		}
		if filter.StudentID != nil && placement.StudentID != *filter.StudentID {
			continue
		}
		if filter.CompanyID != nil && placement.CompanyID != *filter.CompanyID {
			continue
		}
		if filter.SupervisorID != nil {
			if placement.SupervisorID == nil || *placement.SupervisorID != *filter.SupervisorID {
				continue
			}
		}
		matched = append(matched, placement)
	}
	return matched, int64(len(matched)), nil
}

func (r *fakePlacementRepo) CountByStatus(_ context.Context) (map[models.PlacementStatus]int64, error) {
	counts := map[models.PlacementStatus]int64{}
	for _, placement := range r.placements {
		counts[placement.Status]++
	}
	return counts, nil
}

func (r *fakePlacementRepo) CreateWithLog(_ context.Context, placement *models.Placement, entry *models.ActivityLog) error {
	if placement.ID == uuid.Nil {
		placement.ID = uuid.New()
	}
	placement.CreatedAt = time.Now()
	placement.UpdatedAt = placement.CreatedAt
	r.placements[placement.ID] = *placement
	entry.EntityID = &placement.ID
	r.audits = append(r.audits, *entry)
	return nil
}

func (r *fakePlacementRepo) SaveWithLog(_ context.Context, placement *models.Placement, entry *models.ActivityLog) error {
	placement.UpdatedAt = time.Now()
	r.placements[placement.ID] = *placement
	r.audits = append(r.audits, *entry)
	return nil
}

func (r *fakePlacementRepo) TransitionWithLog(_ context.Context, placement *models.Placement, expected models.PlacementStatus, entry *models.ActivityLog) error {
	stored, ok := r.placements[placement.ID]
	if !ok || stored.Status != expected {
		return repository.ErrStaleState
	}
	placement.UpdatedAt = time.Now()
	r.placements[placement.ID] = *placement
	r.audits = append(r.audits, *entry)
	return nil
}

func (r *fakePlacementRepo) DeleteWithLog(_ context.Context, placement *models.Placement, entry *models.ActivityLog) error {
	r.audits = append(r.audits, *entry)
	delete(r.placements, placement.ID)
	return nil
}

// fakeJournalRepo mirrors the single-decision review semantics of the real
// repository. When wired to a fakePlacementRepo it also hydrates the
// placement association on reads, like the real repository's preload.
type fakeJournalRepo struct {
	entries    map[uuid.UUID]models.JournalEntry
	placements *fakePlacementRepo
	audits     []models.ActivityLog
}

func newFakeJournalRepo() *fakeJournalRepo {
	return &fakeJournalRepo{entries: map[uuid.UUID]models.JournalEntry{}}
}

func (r *fakeJournalRepo) withPlacement(entry models.JournalEntry) models.JournalEntry {
	if entry.Placement.ID == uuid.Nil && r.placements != nil {
		if placement, ok := r.placements.placements[entry.PlacementID]; ok {
			entry.Placement = placement
		}
	}
	return entry
}

func (r *fakeJournalRepo) GetByID(_ context.Context, id uuid.UUID) (models.JournalEntry, error) {
	entry, ok := r.entries[id]
	if !ok {
		return models.JournalEntry{}, gorm.ErrRecordNotFound
	}
	return r.withPlacement(entry), nil
}

func (r *fakeJournalRepo) List(_ context.Context, filter repository.JournalFilter) ([]models.JournalEntry, int64, error) {
	matched := make([]models.JournalEntry, 0)
	for _, entry := range r.entries {
		entry = r.withPlacement(entry)
		if filter.PlacementID != nil && entry.PlacementID != *filter.PlacementID {
			continue
		}
		if filter.StudentID != nil && entry.StudentID != *filter.StudentID {
			continue
		}
		if filter.SupervisorID != nil {
			supervisor := entry.Placement.SupervisorID
			if supervisor == nil || *supervisor != *filter.SupervisorID {
				continue
			}
		}
		if filter.Status != "" && entry.ValidationStatus != filter.Status {
			continue
		}
		if filter.DateFrom != nil && entry.Date.Before(*filter.DateFrom) {
			continue
		}
		if filter.DateTo != nil && entry.Date.After(*filter.DateTo) {
			continue
		}
		matched = append(matched, entry)
	}
	return matched, int64(len(matched)), nil
}

func (r *fakeJournalRepo) CountByStatus(_ context.Context) (map[models.ValidationStatus]int64, error) {
	counts := map[models.ValidationStatus]int64{}
	for _, entry := range r.entries {
		counts[entry.ValidationStatus]++
	}
	return counts, nil
}

func (r *fakeJournalRepo) CreateWithLog(_ context.Context, entry *models.JournalEntry, logEntry *models.ActivityLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt = time.Now()
	r.entries[entry.ID] = *entry
	logEntry.EntityID = &entry.ID
	r.audits = append(r.audits, *logEntry)
	return nil
}

func (r *fakeJournalRepo) ReviewWithLog(_ context.Context, entry *models.JournalEntry, logEntry *models.ActivityLog) error {
	stored, ok := r.entries[entry.ID]
	if !ok || stored.ValidationStatus != models.ValidationStatusMenunggu {
		return repository.ErrStaleState
	}
	r.entries[entry.ID] = *entry
	r.audits = append(r.audits, *logEntry)
	return nil
}

type fakeActivityLogRepo struct {
	entries []models.ActivityLog
}

func (r *fakeActivityLogRepo) Create(_ context.Context, entry *models.ActivityLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt = time.Now()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeActivityLogRepo) Query(_ context.Context, filter repository.ActivityLogFilter) ([]models.ActivityLog, int64, error) {
	matched := make([]models.ActivityLog, 0)
	for _, entry := range r.entries {
		if filter.ShowDeleted != (entry.DeletedAt != nil) {
			continue
		}
		if filter.Action != "" && entry.Action != filter.Action {
			continue
		}
		if filter.EntityType != "" && entry.EntityType != filter.EntityType {
			continue
		}
		matched = append(matched, entry)
	}
	return matched, int64(len(matched)), nil
}

func (r *fakeActivityLogRepo) SoftDelete(_ context.Context, filter repository.ActivityBulkFilter, deletedAt time.Time) (int64, error) {
	var affected int64
	for i := range r.entries {
		if r.entries[i].DeletedAt != nil {
			continue
		}
		if !bulkMatches(r.entries[i], filter) {
			continue
		}
		stamp := deletedAt
		r.entries[i].DeletedAt = &stamp
		affected++
	}
	return affected, nil
}

func (r *fakeActivityLogRepo) Restore(_ context.Context, filter repository.ActivityBulkFilter) (int64, error) {
	var affected int64
	for i := range r.entries {
		if r.entries[i].DeletedAt == nil {
			continue
		}
		if !bulkMatches(r.entries[i], filter) {
			continue
		}
		r.entries[i].DeletedAt = nil
		affected++
	}
	return affected, nil
}

func (r *fakeActivityLogRepo) PurgeDeleted(_ context.Context) (int64, error) {
	kept := r.entries[:0]
	var affected int64
	for _, entry := range r.entries {
		if entry.DeletedAt != nil {
			affected++
			continue
		}
		kept = append(kept, entry)
	}
	r.entries = kept
	return affected, nil
}

func bulkMatches(entry models.ActivityLog, filter repository.ActivityBulkFilter) bool {
	if filter.Action != "" && entry.Action != filter.Action {
		return false
	}
	if filter.EntityType != "" && entry.EntityType != filter.EntityType {
		return false
	}
	return true
}
