package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ValidationStatus is the review outcome of a journal entry.
type ValidationStatus string

// Journal review states. Disetujui and ditolak are terminal; an entry is
// reviewed exactly once.
const (
	ValidationStatusMenunggu  ValidationStatus = "menunggu"
	ValidationStatusDisetujui ValidationStatus = "disetujui"
	ValidationStatusDitolak   ValidationStatus = "ditolak"
)

// Valid reports whether the status is one of the supported values.
func (s ValidationStatus) Valid() bool {
	switch s {
	case ValidationStatusMenunggu, ValidationStatusDisetujui, ValidationStatusDitolak:
		return true
	}
	return false
}

// Decision reports whether the status is a legal review outcome.
func (s ValidationStatus) Decision() bool {
	return s == ValidationStatusDisetujui || s == ValidationStatusDitolak
}

// JournalEntry is a daily activity report submitted by a student against an
// aktif placement. The owning student never changes after creation.
type JournalEntry struct {
	ID                  uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	PlacementID         uuid.UUID        `gorm:"type:uuid;not null;index" json:"placement_id"`
	StudentID           uuid.UUID        `gorm:"type:uuid;not null;index" json:"student_id"`
	Date                time.Time        `gorm:"not null;index" json:"date"`
	ActivityDescription string           `gorm:"type:text;not null" json:"activity_description"`
	AttachmentURL       *string          `gorm:"size:1024" json:"attachment_url"`
	ValidationStatus    ValidationStatus `gorm:"size:16;not null;default:menunggu" json:"validation_status"`
	ReviewerNotes       *string          `gorm:"size:1024" json:"reviewer_notes"`
	ReviewedBy          *uuid.UUID       `gorm:"type:uuid" json:"reviewed_by"`
	ReviewedAt          *time.Time       `json:"reviewed_at"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`

	Placement Placement `gorm:"foreignKey:PlacementID" json:"placement,omitempty"`
	Student   Student   `gorm:"foreignKey:StudentID" json:"student,omitempty"`
}

// BeforeCreate assigns a fresh uuid when none was provided.
func (j *JournalEntry) BeforeCreate(tx *gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return nil
}
