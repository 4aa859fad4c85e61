package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smkdev-id/simagang-api/internal/models"
)

// CompanyFilter narrows company directory queries.
type CompanyFilter struct {
	Page     int
	PageSize int
	Search   string
}

// CompanyRepository reads the partner company directory.
type CompanyRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (models.Company, error)
	List(ctx context.Context, filter CompanyFilter) ([]models.Company, int64, error)
}

type companyRepository struct {
	db *gorm.DB
}

// NewCompanyRepository constructs the company repository.
func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &companyRepository{db: db}
}

func (r *companyRepository) GetByID(ctx context.Context, id uuid.UUID) (models.Company, error) {
	var company models.Company
	err := r.db.WithContext(ctx).First(&company, "id = ?", id).Error
	return company, err
}

func (r *companyRepository) List(ctx context.Context, filter CompanyFilter) ([]models.Company, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Company{})

	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ?", pattern)
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

	var companies []models.Company
	if err := query.Order("name ASC").Find(&companies).Error; err != nil {
		return nil, 0, err
	}

	return companies, total, nil
}
