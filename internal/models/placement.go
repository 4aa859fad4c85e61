package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PlacementStatus represents the lifecycle state of an internship placement.
type PlacementStatus string

// Placement lifecycle states. Selesai and dibatalkan are terminal.
const (
	PlacementStatusPending    PlacementStatus = "pending"
	PlacementStatusAktif      PlacementStatus = "aktif"
	PlacementStatusSelesai    PlacementStatus = "selesai"
	PlacementStatusDibatalkan PlacementStatus = "dibatalkan"
)

var placementTransitions = map[PlacementStatus][]PlacementStatus{
	PlacementStatusPending:    {PlacementStatusAktif, PlacementStatusDibatalkan},
	PlacementStatusAktif:      {PlacementStatusSelesai, PlacementStatusDibatalkan},
	PlacementStatusSelesai:    {},
	PlacementStatusDibatalkan: {},
}

// Valid reports whether the status is one of the supported values.
func (s PlacementStatus) Valid() bool {
	_, ok := placementTransitions[s]
	return ok
}

// Terminal reports whether no further transition is allowed out of the status.
func (s PlacementStatus) Terminal() bool {
	return len(placementTransitions[s]) == 0 && s.Valid()
}

// CanTransitionTo reports whether moving to the target status is legal.
func (s PlacementStatus) CanTransitionTo(target PlacementStatus) bool {
	for _, next := range placementTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// Placement assigns one student to one company for an internship period.
// At most one placement per student may be aktif at a time; the database
// enforces this with a partial unique index on (student_id) where
// status = 'aktif'.
type Placement struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"student_id"`
	CompanyID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"company_id"`
	SupervisorID    *uuid.UUID      `gorm:"type:uuid;index" json:"supervisor_id"`
	Position        string          `gorm:"size:128" json:"position"`
	Division        *string         `gorm:"size:128" json:"division"`
	StartDate       time.Time       `gorm:"not null" json:"start_date"`
	EndDate         time.Time       `gorm:"not null" json:"end_date"`
	Status          PlacementStatus `gorm:"size:16;not null;default:pending" json:"status"`
	FinalScore      *int            `json:"final_score"`
	SupervisorNotes *string         `gorm:"size:1024" json:"supervisor_notes"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	Student    Student  `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	Company    Company  `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	Supervisor *Teacher `gorm:"foreignKey:SupervisorID" json:"supervisor,omitempty"`
}

// BeforeCreate assigns a fresh uuid when none was provided.
func (p *Placement) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
