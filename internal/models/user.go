package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role identifies what an actor is allowed to do. It is assigned once when
// the profile is created and never changes afterwards.
type Role string

// Supported actor roles.
const (
	RoleAdmin Role = "admin"
	RoleGuru  Role = "guru"
	RoleSiswa Role = "siswa"
)

// Valid reports whether the role is one of the supported values.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleGuru, RoleSiswa:
		return true
	}
	return false
}

// User is an account supplied by the identity provider. The core trusts the
// id and role carried in the token; this table keeps the display data.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Role      Role      `gorm:"size:32;not null" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a fresh uuid when none was provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
