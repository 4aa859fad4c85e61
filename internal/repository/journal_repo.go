package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smkdev-id/simagang-api/internal/models"
)

// JournalFilter narrows journal entry queries. SupervisorID scopes results
// to entries whose placement is supervised by the given teacher.
type JournalFilter struct {
	Page         int
	PageSize     int
	PlacementID  *uuid.UUID
	StudentID    *uuid.UUID
	SupervisorID *uuid.UUID
	Status       models.ValidationStatus
	DateFrom     *time.Time
	DateTo       *time.Time
}

// JournalRepository persists daily journal entries.
type JournalRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (models.JournalEntry, error)
	List(ctx context.Context, filter JournalFilter) ([]models.JournalEntry, int64, error)
	CountByStatus(ctx context.Context) (map[models.ValidationStatus]int64, error)
	CreateWithLog(ctx context.Context, entry *models.JournalEntry, logEntry *models.ActivityLog) error
	ReviewWithLog(ctx context.Context, entry *models.JournalEntry, logEntry *models.ActivityLog) error
}

type journalRepository struct {
	db *gorm.DB
}

// NewJournalRepository constructs the journal repository.
func NewJournalRepository(db *gorm.DB) JournalRepository {
	return &journalRepository{db: db}
}

func (r *journalRepository) GetByID(ctx context.Context, id uuid.UUID) (models.JournalEntry, error) {
	var entry models.JournalEntry
	err := r.db.WithContext(ctx).
		Preload("Placement").
		First(&entry, "id = ?", id).Error
	return entry, err
}

func (r *journalRepository) List(ctx context.Context, filter JournalFilter) ([]models.JournalEntry, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.JournalEntry{})

	if filter.PlacementID != nil {
		query = query.Where("placement_id = ?", *filter.PlacementID)
	}
	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}
	if filter.SupervisorID != nil {
		query = query.Where(
			"placement_id IN (?)",
			r.db.Model(&models.Placement{}).Select("id").Where("supervisor_id = ?", *filter.SupervisorID),
		)
	}
	if filter.Status != "" {
		query = query.Where("validation_status = ?", filter.Status)
	}
	if filter.DateFrom != nil {
		query = query.Where("date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("date <= ?", *filter.DateTo)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var entries []models.JournalEntry
	if err := query.Order("date DESC, created_at DESC").Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

func (r *journalRepository) CountByStatus(ctx context.Context) (map[models.ValidationStatus]int64, error) {
	type row struct {
		ValidationStatus models.ValidationStatus
		Total            int64
	}

	var rows []row
	err := r.db.WithContext(ctx).Model(&models.JournalEntry{}).
		Select("validation_status, COUNT(*) AS total").
		Group("validation_status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[models.ValidationStatus]int64, len(rows))
	for _, item := range rows {
		counts[item.ValidationStatus] = item.Total
	}
	return counts, nil
}

func (r *journalRepository) CreateWithLog(ctx context.Context, entry *models.JournalEntry, logEntry *models.ActivityLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(entry).Error; err != nil {
			return err
		}
		logEntry.EntityID = &entry.ID
		return tx.Create(logEntry).Error
	})
}

// ReviewWithLog records the decision only while the entry is still menunggu,
// so two concurrent reviewers cannot both land a decision.
func (r *journalRepository) ReviewWithLog(ctx context.Context, entry *models.JournalEntry, logEntry *models.ActivityLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.JournalEntry{}).
			Where("id = ? AND validation_status = ?", entry.ID, models.ValidationStatusMenunggu).
			Select("ValidationStatus", "ReviewerNotes", "ReviewedBy", "ReviewedAt", "UpdatedAt").
			Updates(entry)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrStaleState
		}
		return tx.Create(logEntry).Error
	})
}
