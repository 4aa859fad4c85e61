package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/smkdev-id/simagang-api/internal/models"
)

// ActivityLogFilter narrows audit trail queries. Search matches the entry
// description or the actor's display name, case-insensitive.
type ActivityLogFilter struct {
	Page        int
	PageSize    int
	Action      models.ActivityAction
	EntityType  string
	Search      string
	ShowDeleted bool
}

// ActivityBulkFilter scopes soft-delete and restore operations.
type ActivityBulkFilter struct {
	Action     models.ActivityAction
	EntityType string
}

// ActivityLogRepository persists the append-only audit trail.
type ActivityLogRepository interface {
	Create(ctx context.Context, entry *models.ActivityLog) error
	Query(ctx context.Context, filter ActivityLogFilter) ([]models.ActivityLog, int64, error)
	SoftDelete(ctx context.Context, filter ActivityBulkFilter, deletedAt time.Time) (int64, error)
	Restore(ctx context.Context, filter ActivityBulkFilter) (int64, error)
	PurgeDeleted(ctx context.Context) (int64, error)
}

type activityLogRepository struct {
	db *gorm.DB
}

// NewActivityLogRepository constructs the activity log repository.
func NewActivityLogRepository(db *gorm.DB) ActivityLogRepository {
	return &activityLogRepository{db: db}
}

func (r *activityLogRepository) Create(ctx context.Context, entry *models.ActivityLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *activityLogRepository) Query(ctx context.Context, filter ActivityLogFilter) ([]models.ActivityLog, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ActivityLog{})

	if filter.ShowDeleted {
		query = query.Where("activity_logs.deleted_at IS NOT NULL")
	} else {
		query = query.Where("activity_logs.deleted_at IS NULL")
	}
	if filter.Action != "" {
		query = query.Where("activity_logs.action = ?", filter.Action)
	}
	if filter.EntityType != "" {
		query = query.Where("activity_logs.entity_type = ?", filter.EntityType)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.
			Joins("LEFT JOIN users ON users.id = activity_logs.actor_id").
			Where("LOWER(activity_logs.description) LIKE ? OR LOWER(users.name) LIKE ?", pattern, pattern)
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

	var entries []models.ActivityLog
	if err := query.Order("activity_logs.created_at DESC").Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

func (r *activityLogRepository) SoftDelete(ctx context.Context, filter ActivityBulkFilter, deletedAt time.Time) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ActivityLog{}).
		Where("deleted_at IS NULL")
	query = applyBulkFilter(query, filter)

	result := query.Update("deleted_at", deletedAt)
	return result.RowsAffected, result.Error
}

func (r *activityLogRepository) Restore(ctx context.Context, filter ActivityBulkFilter) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ActivityLog{}).
		Where("deleted_at IS NOT NULL")
	query = applyBulkFilter(query, filter)

	result := query.Update("deleted_at", nil)
	return result.RowsAffected, result.Error
}

func (r *activityLogRepository) PurgeDeleted(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("deleted_at IS NOT NULL").
		Delete(&models.ActivityLog{})
	return result.RowsAffected, result.Error
}

func applyBulkFilter(query *gorm.DB, filter ActivityBulkFilter) *gorm.DB {
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.EntityType != "" {
		query = query.Where("entity_type = ?", filter.EntityType)
	}
	return query
}
