package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smkdev-id/simagang-api/internal/models"
)

// PlacementFilter narrows placement list queries.
type PlacementFilter struct {
	Page         int
	PageSize     int
	Status       models.PlacementStatus
	StudentID    *uuid.UUID
	CompanyID    *uuid.UUID
	SupervisorID *uuid.UUID
}

// PlacementRepository persists internship placements. Mutating methods write
// the placement change and its audit row in a single transaction so the
// state change and its audit record commit together or not at all.
type PlacementRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (models.Placement, error)
	HasActive(ctx context.Context, studentID uuid.UUID) (bool, error)
	HasOpenApplication(ctx context.Context, studentID, companyID uuid.UUID) (bool, error)
	List(ctx context.Context, filter PlacementFilter) ([]models.Placement, int64, error)
	CountByStatus(ctx context.Context) (map[models.PlacementStatus]int64, error)
	CreateWithLog(ctx context.Context, placement *models.Placement, entry *models.ActivityLog) error
	SaveWithLog(ctx context.Context, placement *models.Placement, entry *models.ActivityLog) error
	TransitionWithLog(ctx context.Context, placement *models.Placement, expected models.PlacementStatus, entry *models.ActivityLog) error
	DeleteWithLog(ctx context.Context, placement *models.Placement, entry *models.ActivityLog) error
}

type placementRepository struct {
	db *gorm.DB
}

// NewPlacementRepository constructs the placement repository.
func NewPlacementRepository(db *gorm.DB) PlacementRepository {
	return &placementRepository{db: db}
}

func (r *placementRepository) GetByID(ctx context.Context, id uuid.UUID) (models.Placement, error) {
	var placement models.Placement
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Student.User").
		Preload("Company").
		Preload("Supervisor").
		First(&placement, "id = ?", id).Error
	return placement, err
}

func (r *placementRepository) HasActive(ctx context.Context, studentID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Placement{}).
		Where("student_id = ? AND status = ?", studentID, models.PlacementStatusAktif).
		Count(&count).Error
	return count > 0, err
}

func (r *placementRepository) HasOpenApplication(ctx context.Context, studentID, companyID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Placement{}).
		Where("student_id = ? AND company_id = ? AND status IN ?", studentID, companyID,
			[]models.PlacementStatus{models.PlacementStatusPending, models.PlacementStatusAktif}).
		Count(&count).Error
	return count > 0, err
}

func (r *placementRepository) List(ctx context.Context, filter PlacementFilter) ([]models.Placement, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Placement{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}
	if filter.CompanyID != nil {
		query = query.Where("company_id = ?", *filter.CompanyID)
	}
	if filter.SupervisorID != nil {
		query = query.Where("supervisor_id = ?", *filter.SupervisorID)
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

	var placements []models.Placement
	err := query.
		Preload("Student").
		Preload("Student.User").
		Preload("Company").
		Order("created_at DESC").
		Find(&placements).Error
	if err != nil {
		return nil, 0, err
	}

	return placements, total, nil
}

func (r *placementRepository) CountByStatus(ctx context.Context) (map[models.PlacementStatus]int64, error) {
	type row struct {
		Status models.PlacementStatus
		Total  int64
	}

	var rows []row
	err := r.db.WithContext(ctx).Model(&models.Placement{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[models.PlacementStatus]int64, len(rows))
	for _, item := range rows {
		counts[item.Status] = item.Total
	}
	return counts, nil
}

func (r *placementRepository) CreateWithLog(ctx context.Context, placement *models.Placement, entry *models.ActivityLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(placement).Error; err != nil {
			return err
		}
		entry.EntityID = &placement.ID
		return tx.Create(entry).Error
	})
}

func (r *placementRepository) SaveWithLog(ctx context.Context, placement *models.Placement, entry *models.ActivityLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Placement{}).
			Where("id = ?", placement.ID).
			Select("SupervisorID", "Status", "StartDate", "EndDate", "FinalScore", "SupervisorNotes", "UpdatedAt").
			Updates(placement).Error; err != nil {
			return err
		}
		return tx.Create(entry).Error
	})
}

// TransitionWithLog updates the placement only while it is still in the
// expected status, protecting against lost updates from concurrent callers.
func (r *placementRepository) TransitionWithLog(ctx context.Context, placement *models.Placement, expected models.PlacementStatus, entry *models.ActivityLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Placement{}).
			Where("id = ? AND status = ?", placement.ID, expected).
			Select("SupervisorID", "Status", "StartDate", "EndDate", "FinalScore", "SupervisorNotes", "UpdatedAt").
			Updates(placement)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrStaleState
		}
		return tx.Create(entry).Error
	})
}

// DeleteWithLog writes the audit row before the physical delete so the log
// entry is created while the placement reference is still valid.
func (r *placementRepository) DeleteWithLog(ctx context.Context, placement *models.Placement, entry *models.ActivityLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(entry).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Placement{}, "id = ?", placement.ID).Error
	})
}
