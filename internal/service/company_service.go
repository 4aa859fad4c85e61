package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/smkdev-id/simagang-api/internal/dto"
	"github.com/smkdev-id/simagang-api/internal/repository"
)

// CompanyService exposes the partner company directory used by the
// application form.
type CompanyService interface {
	Get(ctx context.Context, actor Actor, companyID uuid.UUID) (dto.CompanyResponse, error)
	List(ctx context.Context, actor Actor, filter repository.CompanyFilter) (dto.CompanyListResponse, error)
}

type companyService struct {
	repo   repository.CompanyRepository
	logger zerolog.Logger
}

// NewCompanyService constructs the company directory service.
func NewCompanyService(repo repository.CompanyRepository, logger zerolog.Logger) CompanyService {
	return &companyService{
		repo:   repo,
		logger: logger.With().Str("component", "company_service").Logger(),
	}
}

func (s *companyService) Get(ctx context.Context, actor Actor, companyID uuid.UUID) (dto.CompanyResponse, error) {
	if !Can(actor.Role, OpCompanyRead, Ownership{}) {
		return dto.CompanyResponse{}, ErrForbidden
	}

	company, err := s.repo.GetByID(ctx, companyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CompanyResponse{}, ErrCompanyNotFound
		}
		return dto.CompanyResponse{}, err
	}

	return dto.NewCompanyResponse(company), nil
}

func (s *companyService) List(ctx context.Context, actor Actor, filter repository.CompanyFilter) (dto.CompanyListResponse, error) {
	if !Can(actor.Role, OpCompanyRead, Ownership{}) {
		return dto.CompanyListResponse{}, ErrForbidden
	}

	companies, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.CompanyListResponse{}, err
	}

	items := make([]dto.CompanyResponse, 0, len(companies))
	for _, company := range companies {
		items = append(items, dto.NewCompanyResponse(company))
	}

	return dto.CompanyListResponse{
		Items:      items,
		Pagination: paginationMeta(filter.Page, filter.PageSize, total),
	}, nil
}
