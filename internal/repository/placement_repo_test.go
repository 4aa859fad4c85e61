package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/smkdev-id/simagang-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Student{},
		&models.Teacher{},
		&models.Company{},
		&models.Placement{},
		&models.JournalEntry{},
		&models.ActivityLog{},
	))
	return db
}

func seedStudent(t *testing.T, db *gorm.DB) models.Student {
	t.Helper()
	user := models.User{Name: "Budi Santoso", Email: uuid.NewString() + "@example.com", Role: models.RoleSiswa}
	require.NoError(t, db.Create(&user).Error)
	student := models.Student{UserID: user.ID, NIS: uuid.NewString()[:8]}
	require.NoError(t, db.Create(&student).Error)
	student.User = user
	return student
}

func seedCompany(t *testing.T, db *gorm.DB) models.Company {
	t.Helper()
	company := models.Company{Name: "PT Maju Jaya"}
	require.NoError(t, db.Create(&company).Error)
	return company
}

func seedPlacement(t *testing.T, db *gorm.DB, student models.Student, company models.Company, status models.PlacementStatus) models.Placement {
	t.Helper()
	placement := models.Placement{
		StudentID: student.ID,
		CompanyID: company.ID,
		Position:  "Backend Intern",
		StartDate: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 4, 5, 0, 0, 0, 0, time.UTC),
		Status:    status,
	}
	require.NoError(t, db.Create(&placement).Error)
	return placement
}

func auditEntry(actorID uuid.UUID, action models.ActivityAction) models.ActivityLog {
	return models.ActivityLog{
		ActorID:     actorID,
		ActorRole:   models.RoleAdmin,
		Action:      action,
		EntityType:  "placement",
		Description: "test mutation",
	}
}

func TestPlacementRepositoryCreateWithLogCommitsBoth(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPlacementRepository(db)

	student := seedStudent(t, db)
	company := seedCompany(t, db)

	placement := models.Placement{
		StudentID: student.ID,
		CompanyID: company.ID,
		Position:  "Backend Intern",
		StartDate: time.Now(),
		EndDate:   time.Now().AddDate(0, 3, 0),
		Status:    models.PlacementStatusPending,
	}
	entry := auditEntry(student.UserID, models.ActivityActionCreated)

	require.NoError(t, repo.CreateWithLog(context.Background(), &placement, &entry))
	require.NotEqual(t, uuid.Nil, placement.ID)

	var logs []models.ActivityLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	require.NotNil(t, logs[0].EntityID)
	require.Equal(t, placement.ID, *logs[0].EntityID)
}

func TestPlacementRepositoryTransitionWithLogDetectsStaleState(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPlacementRepository(db)
	ctx := context.Background()

	student := seedStudent(t, db)
	company := seedCompany(t, db)
	placement := seedPlacement(t, db, student, company, models.PlacementStatusPending)

	placement.Status = models.PlacementStatusAktif
	entry := auditEntry(student.UserID, models.ActivityActionUpdated)
	require.NoError(t, repo.TransitionWithLog(ctx, &placement, models.PlacementStatusPending, &entry))

	// A second transition out of pending must fail: the row is aktif now.
	again := placement
	again.Status = models.PlacementStatusDibatalkan
	staleEntry := auditEntry(student.UserID, models.ActivityActionUpdated)
	err := repo.TransitionWithLog(ctx, &again, models.PlacementStatusPending, &staleEntry)
	require.ErrorIs(t, err, ErrStaleState)

	// The failed transition must not leave an audit row behind.
	var count int64
	require.NoError(t, db.Model(&models.ActivityLog{}).Count(&count).Error)
	require.EqualValues(t, 1, count)

	stored, err := repo.GetByID(ctx, placement.ID)
	require.NoError(t, err)
	require.Equal(t, models.PlacementStatusAktif, stored.Status)
}

func TestPlacementRepositoryDeleteWithLogKeepsAudit(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPlacementRepository(db)
	ctx := context.Background()

	student := seedStudent(t, db)
	company := seedCompany(t, db)
	placement := seedPlacement(t, db, student, company, models.PlacementStatusDibatalkan)

	entry := auditEntry(student.UserID, models.ActivityActionDeleted)
	entry.EntityID = &placement.ID
	require.NoError(t, repo.DeleteWithLog(ctx, &placement, &entry))

	_, err := repo.GetByID(ctx, placement.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var logs []models.ActivityLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	require.Equal(t, models.ActivityActionDeleted, logs[0].Action)
}

func TestPlacementRepositoryHasActiveAndOpenApplication(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPlacementRepository(db)
	ctx := context.Background()

	student := seedStudent(t, db)
	company := seedCompany(t, db)

	active, err := repo.HasActive(ctx, student.ID)
	require.NoError(t, err)
	require.False(t, active)

	seedPlacement(t, db, student, company, models.PlacementStatusPending)

	open, err := repo.HasOpenApplication(ctx, student.ID, company.ID)
	require.NoError(t, err)
	require.True(t, open)

	other := seedCompany(t, db)
	open, err = repo.HasOpenApplication(ctx, student.ID, other.ID)
	require.NoError(t, err)
	require.False(t, open)

	seedPlacement(t, db, student, other, models.PlacementStatusAktif)
	active, err = repo.HasActive(ctx, student.ID)
	require.NoError(t, err)
	require.True(t, active)
}

func TestPlacementRepositoryListFilters(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPlacementRepository(db)
	ctx := context.Background()

	alice := seedStudent(t, db)
	bob := seedStudent(t, db)
	company := seedCompany(t, db)

	seedPlacement(t, db, alice, company, models.PlacementStatusAktif)
	seedPlacement(t, db, bob, company, models.PlacementStatusPending)
	seedPlacement(t, db, bob, company, models.PlacementStatusSelesai)

	placements, total, err := repo.List(ctx, PlacementFilter{StudentID: &bob.ID, PageSize: 10})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, placements, 2)

	placements, total, err = repo.List(ctx, PlacementFilter{Status: models.PlacementStatusAktif, PageSize: 10})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, alice.ID, placements[0].StudentID)

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, counts[models.PlacementStatusAktif])
	require.EqualValues(t, 1, counts[models.PlacementStatusPending])
	require.EqualValues(t, 1, counts[models.PlacementStatusSelesai])
}
