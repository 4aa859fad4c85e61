package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/smkdev-id/simagang-api/internal/models"
)

// ActivityCreateRequest lets external collaborators record an audit entry
// for mutations performed outside the lifecycle core.
type ActivityCreateRequest struct {
	Action      string                 `json:"action" validate:"required,oneof=created updated deleted"`
	EntityType  string                 `json:"entity_type" validate:"required,min=2,max=64"`
	EntityID    *uuid.UUID             `json:"entity_id"`
	Description string                 `json:"description" validate:"required,max=512"`
	Metadata    map[string]interface{} `json:"metadata"`
}

// ActivityQueryRequest defines filters for the audit trail.
type ActivityQueryRequest struct {
	Page        int
	PageSize    int
	Action      string
	EntityType  string
	Search      string
	ShowDeleted bool
}

// ActivityBulkRequest scopes soft-delete and restore operations. Zero-value
// means every matching row in the respective view.
type ActivityBulkRequest struct {
	Action     string `json:"action" validate:"omitempty,oneof=created updated deleted"`
	EntityType string `json:"entity_type" validate:"omitempty,max=64"`
}

// ActivityResponse serializes an audit entry.
type ActivityResponse struct {
	ID          uuid.UUID              `json:"id"`
	ActorID     uuid.UUID              `json:"actor_id"`
	ActorName   string                 `json:"actor_name,omitempty"`
	ActorRole   string                 `json:"actor_role"`
	Action      string                 `json:"action"`
	EntityType  string                 `json:"entity_type"`
	EntityID    *uuid.UUID             `json:"entity_id"`
	Description string                 `json:"description"`
	Metadata    map[string]interface{} `json:"metadata"`
	CreatedAt   time.Time              `json:"created_at"`
	DeletedAt   *time.Time             `json:"deleted_at,omitempty"`
}

// ActivityListResponse wraps a paginated audit trail response.
type ActivityListResponse struct {
	Items      []ActivityResponse `json:"items"`
	Pagination PaginationMeta     `json:"pagination"`
}

// NewActivityResponse converts an audit entry model into a DTO.
func NewActivityResponse(entry models.ActivityLog) ActivityResponse {
	return ActivityResponse{
		ID:          entry.ID,
		ActorID:     entry.ActorID,
		ActorRole:   string(entry.ActorRole),
		Action:      string(entry.Action),
		EntityType:  entry.EntityType,
		EntityID:    entry.EntityID,
		Description: entry.Description,
		Metadata:    entry.Metadata,
		CreatedAt:   entry.CreatedAt,
		DeletedAt:   entry.DeletedAt,
	}
}
