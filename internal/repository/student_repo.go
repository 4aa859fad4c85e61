package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smkdev-id/simagang-api/internal/models"
)

// StudentRepository resolves student profiles.
type StudentRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (models.Student, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (models.Student, error)
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository constructs the student repository.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) GetByID(ctx context.Context, id uuid.UUID) (models.Student, error) {
	var student models.Student
	err := r.db.WithContext(ctx).Preload("User").First(&student, "id = ?", id).Error
	return student, err
}

func (r *studentRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (models.Student, error) {
	var student models.Student
	err := r.db.WithContext(ctx).Preload("User").First(&student, "user_id = ?", userID).Error
	return student, err
}
