package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/smkdev-id/simagang-api/internal/models"
)

// JournalSubmitRequest captures a student's daily activity report.
type JournalSubmitRequest struct {
	PlacementID         uuid.UUID `json:"placement_id" validate:"required"`
	Date                string    `json:"date" validate:"required,datetime=2006-01-02"`
	ActivityDescription string    `json:"activity_description" validate:"required"`
	AttachmentURL       *string   `json:"attachment_url" validate:"omitempty,url,max=1024"`
}

// JournalReviewRequest captures a supervisor's decision on a journal entry.
type JournalReviewRequest struct {
	Decision string  `json:"decision" validate:"required,oneof=disetujui ditolak"`
	Notes    *string `json:"notes" validate:"omitempty,max=1024"`
}

// JournalListRequest defines filters for listing journal entries. Scoping by
// role happens in the service; these are the caller-supplied filters.
type JournalListRequest struct {
	Page        int
	PageSize    int
	PlacementID *uuid.UUID
	StudentID   *uuid.UUID
	Status      string
	DateFrom    *time.Time
	DateTo      *time.Time
}

// JournalResponse serializes a journal entry.
type JournalResponse struct {
	ID                  uuid.UUID  `json:"id"`
	PlacementID         uuid.UUID  `json:"placement_id"`
	StudentID           uuid.UUID  `json:"student_id"`
	Date                time.Time  `json:"date"`
	ActivityDescription string     `json:"activity_description"`
	AttachmentURL       *string    `json:"attachment_url"`
	ValidationStatus    string     `json:"validation_status"`
	ReviewerNotes       *string    `json:"reviewer_notes"`
	ReviewedBy          *uuid.UUID `json:"reviewed_by"`
	ReviewedAt          *time.Time `json:"reviewed_at"`
	CreatedAt           time.Time  `json:"created_at"`
}

// JournalListResponse wraps a paginated journal response.
type JournalListResponse struct {
	Items      []JournalResponse `json:"items"`
	Pagination PaginationMeta    `json:"pagination"`
}

// NewJournalResponse converts a journal entry model into a DTO.
func NewJournalResponse(entry models.JournalEntry) JournalResponse {
	return JournalResponse{
		ID:                  entry.ID,
		PlacementID:         entry.PlacementID,
		StudentID:           entry.StudentID,
		Date:                entry.Date,
		ActivityDescription: entry.ActivityDescription,
		AttachmentURL:       entry.AttachmentURL,
		ValidationStatus:    string(entry.ValidationStatus),
		ReviewerNotes:       entry.ReviewerNotes,
		ReviewedBy:          entry.ReviewedBy,
		ReviewedAt:          entry.ReviewedAt,
		CreatedAt:           entry.CreatedAt,
	}
}
