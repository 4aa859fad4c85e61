package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/smkdev-id/simagang-api/internal/models"
)

// PlacementApplyRequest captures a student's internship application.
type PlacementApplyRequest struct {
	CompanyID uuid.UUID `json:"company_id" validate:"required"`
	Position  string    `json:"position" validate:"required,min=2,max=128"`
	Division  *string   `json:"division" validate:"omitempty,max=128"`
	StartDate string    `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string    `json:"end_date" validate:"required,datetime=2006-01-02"`
}

// PlacementApproveRequest captures the administrative approval or correction
// of a placement. Status defaults to aktif when omitted.
type PlacementApproveRequest struct {
	SupervisorID *uuid.UUID `json:"supervisor_id"`
	Status       *string    `json:"status" validate:"omitempty,oneof=pending aktif selesai dibatalkan"`
	StartDate    *string    `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate      *string    `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
}

// PlacementCompleteRequest closes out an aktif placement with a final score.
type PlacementCompleteRequest struct {
	FinalScore      int     `json:"final_score"`
	SupervisorNotes *string `json:"supervisor_notes" validate:"omitempty,max=1024"`
}

// PlacementScoreRequest records an interim or final score without changing
// the placement status.
type PlacementScoreRequest struct {
	Score int     `json:"score"`
	Notes *string `json:"notes" validate:"omitempty,max=1024"`
}

// PlacementListRequest defines filters for listing placements.
type PlacementListRequest struct {
	Page      int
	PageSize  int
	Status    string
	StudentID *uuid.UUID
	CompanyID *uuid.UUID
}

// PlacementResponse serializes a placement.
type PlacementResponse struct {
	ID              uuid.UUID  `json:"id"`
	StudentID       uuid.UUID  `json:"student_id"`
	StudentName     string     `json:"student_name,omitempty"`
	CompanyID       uuid.UUID  `json:"company_id"`
	CompanyName     string     `json:"company_name,omitempty"`
	SupervisorID    *uuid.UUID `json:"supervisor_id"`
	Position        string     `json:"position"`
	Division        *string    `json:"division"`
	StartDate       time.Time  `json:"start_date"`
	EndDate         time.Time  `json:"end_date"`
	Status          string     `json:"status"`
	FinalScore      *int       `json:"final_score"`
	SupervisorNotes *string    `json:"supervisor_notes"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// PlacementListResponse wraps a paginated placement response.
type PlacementListResponse struct {
	Items      []PlacementResponse `json:"items"`
	Pagination PaginationMeta      `json:"pagination"`
}

// NewPlacementResponse converts a placement model into a DTO.
func NewPlacementResponse(placement models.Placement) PlacementResponse {
	response := PlacementResponse{
		ID:              placement.ID,
		StudentID:       placement.StudentID,
		CompanyID:       placement.CompanyID,
		SupervisorID:    placement.SupervisorID,
		Position:        placement.Position,
		Division:        placement.Division,
		StartDate:       placement.StartDate,
		EndDate:         placement.EndDate,
		Status:          string(placement.Status),
		FinalScore:      placement.FinalScore,
		SupervisorNotes: placement.SupervisorNotes,
		CreatedAt:       placement.CreatedAt,
		UpdatedAt:       placement.UpdatedAt,
	}

	if placement.Student.ID != uuid.Nil {
		response.StudentName = placement.Student.User.Name
	}
	if placement.Company.ID != uuid.Nil {
		response.CompanyName = placement.Company.Name
	}

	return response
}
