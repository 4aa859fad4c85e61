package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Student is a learner profile eligible for internship placements.
type Student struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	NIS       string    `gorm:"size:32;uniqueIndex;not null" json:"nis"`
	Class     string    `gorm:"size:64" json:"class"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// BeforeCreate assigns a fresh uuid when none was provided.
func (s *Student) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
