package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/smkdev-id/simagang-api/internal/models"
)

// CompanyResponse serializes a partner company for the application form.
type CompanyResponse struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Address       string    `json:"address"`
	ContactPerson string    `json:"contact_person"`
	ContactPhone  string    `json:"contact_phone"`
	CreatedAt     time.Time `json:"created_at"`
}

// CompanyListResponse wraps a paginated company response.
type CompanyListResponse struct {
	Items      []CompanyResponse `json:"items"`
	Pagination PaginationMeta    `json:"pagination"`
}

// NewCompanyResponse converts a company model into a DTO.
func NewCompanyResponse(company models.Company) CompanyResponse {
	return CompanyResponse{
		ID:            company.ID,
		Name:          company.Name,
		Address:       company.Address,
		ContactPerson: company.ContactPerson,
		ContactPhone:  company.ContactPhone,
		CreatedAt:     company.CreatedAt,
	}
}
