package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smkdev-id/simagang-api/internal/models"
)

// TeacherRepository resolves supervising teacher profiles.
type TeacherRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (models.Teacher, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (models.Teacher, error)
}

type teacherRepository struct {
	db *gorm.DB
}

// NewTeacherRepository constructs the teacher repository.
func NewTeacherRepository(db *gorm.DB) TeacherRepository {
	return &teacherRepository{db: db}
}

func (r *teacherRepository) GetByID(ctx context.Context, id uuid.UUID) (models.Teacher, error) {
	var teacher models.Teacher
	err := r.db.WithContext(ctx).Preload("User").First(&teacher, "id = ?", id).Error
	return teacher, err
}

func (r *teacherRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (models.Teacher, error) {
	var teacher models.Teacher
	err := r.db.WithContext(ctx).Preload("User").First(&teacher, "user_id = ?", userID).Error
	return teacher, err
}
