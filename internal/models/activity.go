package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ActivityAction classifies what a mutation did to its entity.
type ActivityAction string

// Supported audit actions.
const (
	ActivityActionCreated ActivityAction = "created"
	ActivityActionUpdated ActivityAction = "updated"
	ActivityActionDeleted ActivityAction = "deleted"
)

// Valid reports whether the action is one of the supported values.
func (a ActivityAction) Valid() bool {
	switch a {
	case ActivityActionCreated, ActivityActionUpdated, ActivityActionDeleted:
		return true
	}
	return false
}

// ActivityLog is an append-only audit record of who changed what. Rows are
// never edited; administrators may soft-delete them in bulk (DeletedAt set),
// restore them, or purge soft-deleted rows permanently.
type ActivityLog struct {
	ID          uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	ActorID     uuid.UUID         `gorm:"type:uuid;not null;index" json:"actor_id"`
	ActorRole   Role              `gorm:"size:32;not null" json:"actor_role"`
	Action      ActivityAction    `gorm:"size:16;not null;index" json:"action"`
	EntityType  string            `gorm:"size:64;not null;index" json:"entity_type"`
	EntityID    *uuid.UUID        `gorm:"type:uuid" json:"entity_id"`
	Description string            `gorm:"size:512;not null" json:"description"`
	Metadata    datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt   time.Time         `json:"created_at"`
	DeletedAt   *time.Time        `gorm:"index" json:"deleted_at"`
}

// BeforeCreate assigns a fresh uuid when none was provided.
func (l *ActivityLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
