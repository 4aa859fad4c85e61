package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/smkdev-id/simagang-api/internal/dto"
	"github.com/smkdev-id/simagang-api/internal/models"
)

type placementFixture struct {
	repo      *fakePlacementRepo
	announcer *fakeAnnouncer
	svc       PlacementService

	student models.Student
	teacher models.Teacher
	company models.Company

	studentActor Actor
	teacherActor Actor
	adminActor   Actor
}

func newPlacementFixture(t *testing.T) *placementFixture {
	t.Helper()

	studentUserID := uuid.New()
	teacherUserID := uuid.New()

	student := models.Student{ID: uuid.New(), UserID: studentUserID, NIS: "2024001"}
	teacher := models.Teacher{ID: uuid.New(), UserID: teacherUserID, NIP: "19800101"}
	company := models.Company{ID: uuid.New(), Name: "PT Maju Jaya"}

	repo := newFakePlacementRepo()
	announcer := &fakeAnnouncer{}

	svc := NewPlacementService(
		repo,
		&fakeStudentRepo{students: map[uuid.UUID]models.Student{studentUserID: student}},
		&fakeTeacherRepo{teachers: map[uuid.UUID]models.Teacher{teacherUserID: teacher}},
		&fakeCompanyRepo{companies: map[uuid.UUID]models.Company{company.ID: company}},
		validator.New(validator.WithRequiredStructEnabled()),
		announcer,
		time.UTC,
		testLogger(),
	)

	return &placementFixture{
		repo:         repo,
		announcer:    announcer,
		svc:          svc,
		student:      student,
		teacher:      teacher,
		company:      company,
		studentActor: Actor{UserID: studentUserID, Role: models.RoleSiswa},
		teacherActor: Actor{UserID: teacherUserID, Role: models.RoleGuru},
		adminActor:   Actor{UserID: uuid.New(), Role: models.RoleAdmin},
	}
}

func (f *placementFixture) seedPlacement(status models.PlacementStatus) models.Placement {
	placement := models.Placement{
		ID:           uuid.New(),
		StudentID:    f.student.ID,
		CompanyID:    f.company.ID,
		SupervisorID: &f.teacher.ID,
		Position:     "Backend Intern",
		StartDate:    time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2026, 4, 5, 0, 0, 0, 0, time.UTC),
		Status:       status,
	}
	f.repo.placements[placement.ID] = placement
	return placement
}

func applyRequest(companyID uuid.UUID) dto.PlacementApplyRequest {
	return dto.PlacementApplyRequest{
		CompanyID: companyID,
		Position:  "Backend Intern",
		StartDate: "2026-01-05",
		EndDate:   "2026-04-05",
	}
}

func TestPlacementApplyCreatesPendingApplication(t *testing.T) {
	f := newPlacementFixture(t)

	resp, err := f.svc.Apply(context.Background(), f.studentActor, applyRequest(f.company.ID))
	require.NoError(t, err)
	require.Equal(t, string(models.PlacementStatusPending), resp.Status)
	require.Equal(t, f.student.ID, resp.StudentID)

	require.Len(t, f.repo.audits, 1)
	audit := f.repo.audits[0]
	require.Equal(t, models.ActivityActionCreated, audit.Action)
	require.Equal(t, f.studentActor.UserID, audit.ActorID)
	require.Equal(t, "placement", audit.EntityType)
	require.NotNil(t, audit.EntityID)
	require.Equal(t, resp.ID, *audit.EntityID)

	require.Len(t, f.announcer.entries, 1)
}

func TestPlacementApplyRejectsNonStudent(t *testing.T) {
	f := newPlacementFixture(t)

	_, err := f.svc.Apply(context.Background(), f.teacherActor, applyRequest(f.company.ID))
	require.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.Apply(context.Background(), f.adminActor, applyRequest(f.company.ID))
	require.ErrorIs(t, err, ErrForbidden)
}

func TestPlacementApplyRejectsInvertedPeriod(t *testing.T) {
	f := newPlacementFixture(t)

	payload := applyRequest(f.company.ID)
	payload.StartDate = "2026-04-05"
	payload.EndDate = "2026-01-05"

	_, err := f.svc.Apply(context.Background(), f.studentActor, payload)
	require.ErrorIs(t, err, ErrInvalidPeriod)
	require.Empty(t, f.repo.audits)
}

func TestPlacementApplyRejectsWhileActive(t *testing.T) {
	f := newPlacementFixture(t)
	f.seedPlacement(models.PlacementStatusAktif)

	_, err := f.svc.Apply(context.Background(), f.studentActor, applyRequest(f.company.ID))
	require.ErrorIs(t, err, ErrActivePlacementExists)
}

func TestPlacementApplyRejectsDuplicateApplication(t *testing.T) {
	f := newPlacementFixture(t)
	f.seedPlacement(models.PlacementStatusPending)

	_, err := f.svc.Apply(context.Background(), f.studentActor, applyRequest(f.company.ID))
	require.ErrorIs(t, err, ErrDuplicateApplication)
}

func TestPlacementApplyAllowedAfterCancellation(t *testing.T) {
	f := newPlacementFixture(t)
	f.seedPlacement(models.PlacementStatusDibatalkan)

	_, err := f.svc.Apply(context.Background(), f.studentActor, applyRequest(f.company.ID))
	require.NoError(t, err)
}

func TestPlacementApproveActivatesPending(t *testing.T) {
	f := newPlacementFixture(t)
	placement := f.seedPlacement(models.PlacementStatusPending)

	resp, err := f.svc.Approve(context.Background(), f.adminActor, placement.ID, dto.PlacementApproveRequest{
		SupervisorID: &f.teacher.ID,
	})
	require.NoError(t, err)
	require.Equal(t, string(models.PlacementStatusAktif), resp.Status)

	stored := f.repo.placements[placement.ID]
	require.Equal(t, models.PlacementStatusAktif, stored.Status)
	require.Len(t, f.repo.audits, 1)
	require.Equal(t, models.ActivityActionUpdated, f.repo.audits[0].Action)
}

func TestPlacementApproveRequiresAdmin(t *testing.T) {
	f := newPlacementFixture(t)
	placement := f.seedPlacement(models.PlacementStatusPending)

	_, err := f.svc.Approve(context.Background(), f.teacherActor, placement.ID, dto.PlacementApproveRequest{})
	require.ErrorIs(t, err, ErrForbidden)
}

func TestPlacementApproveRejectsUnknownSupervisor(t *testing.T) {
	f := newPlacementFixture(t)
	placement := f.seedPlacement(models.PlacementStatusPending)

	unknown := uuid.New()
	_, err := f.svc.Approve(context.Background(), f.adminActor, placement.ID, dto.PlacementApproveRequest{
		SupervisorID: &unknown,
	})
	require.ErrorIs(t, err, ErrTeacherNotFound)
}

func TestPlacementApproveConcurrentConflict(t *testing.T) {
	f := newPlacementFixture(t)
	placement := f.seedPlacement(models.PlacementStatusPending)

	// A concurrent caller lands a transition between the read and the write.
	stored := f.repo.placements[placement.ID]
	stored.Status = models.PlacementStatusDibatalkan
	f.repo.placements[placement.ID] = stored

	_, err := f.svc.Approve(context.Background(), f.adminActor, placement.ID, dto.PlacementApproveRequest{})
	require.ErrorIs(t, err, ErrConcurrentUpdate)
}

func TestPlacementCompleteBySupervisor(t *testing.T) {
	f := newPlacementFixture(t)
	placement := f.seedPlacement(models.PlacementStatusAktif)

	resp, err := f.svc.Complete(context.Background(), f.teacherActor, placement.ID, dto.PlacementCompleteRequest{FinalScore: 88})
	require.NoError(t, err)
	require.Equal(t, string(models.PlacementStatusSelesai), resp.Status)
	require.NotNil(t, resp.FinalScore)
	require.Equal(t, 88, *resp.FinalScore)
}

func TestPlacementCompleteRejectsForeignSupervisor(t *testing.T) {
	f := newPlacementFixture(t)
	placement := f.seedPlacement(models.PlacementStatusAktif)

	otherGuru := Actor{UserID: uuid.New(), Role: models.RoleGuru}
	_, err := f.svc.Complete(context.Background(), otherGuru, placement.ID, dto.PlacementCompleteRequest{FinalScore: 88})
	require.ErrorIs(t, err, ErrForbidden)
}

func TestPlacementCompleteScoreBounds(t *testing.T) {
	f := newPlacementFixture(t)

	placement := f.seedPlacement(models.PlacementStatusAktif)
	_, err := f.svc.Complete(context.Background(), f.teacherActor, placement.ID, dto.PlacementCompleteRequest{FinalScore: 101})
	require.ErrorIs(t, err, ErrInvalidScore)

	_, err = f.svc.Complete(context.Background(), f.teacherActor, placement.ID, dto.PlacementCompleteRequest{FinalScore: -1})
	require.ErrorIs(t, err, ErrInvalidScore)

	resp, err := f.svc.Complete(context.Background(), f.teacherActor, placement.ID, dto.PlacementCompleteRequest{FinalScore: 100})
	require.NoError(t, err)
	require.Equal(t, 100, *resp.FinalScore)
}

func TestPlacementCompleteRejectsPending(t *testing.T) {
	f := newPlacementFixture(t)
	placement := f.seedPlacement(models.PlacementStatusPending)

	_, err := f.svc.Complete(context.Background(), f.teacherActor, placement.ID, dto.PlacementCompleteRequest{FinalScore: 80})
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestPlacementCancelFromPendingAndAktif(t *testing.T) {
	f := newPlacementFixture(t)

	pending := f.seedPlacement(models.PlacementStatusPending)
	resp, err := f.svc.Cancel(context.Background(), f.adminActor, pending.ID)
	require.NoError(t, err)
	require.Equal(t, string(models.PlacementStatusDibatalkan), resp.Status)

	aktif := f.seedPlacement(models.PlacementStatusAktif)
	resp, err = f.svc.Cancel(context.Background(), f.teacherActor, aktif.ID)
	require.NoError(t, err)
	require.Equal(t, string(models.PlacementStatusDibatalkan), resp.Status)
}

func TestPlacementCancelRejectsTerminal(t *testing.T) {
	f := newPlacementFixture(t)

	selesai := f.seedPlacement(models.PlacementStatusSelesai)
	_, err := f.svc.Cancel(context.Background(), f.adminActor, selesai.ID)
	require.ErrorIs(t, err, ErrInvalidTransition)

	dibatalkan := f.seedPlacement(models.PlacementStatusDibatalkan)
	_, err = f.svc.Cancel(context.Background(), f.adminActor, dibatalkan.ID)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestPlacementScoreKeepsStatus(t *testing.T) {
	f := newPlacementFixture(t)
	placement := f.seedPlacement(models.PlacementStatusAktif)

	resp, err := f.svc.Score(context.Background(), f.teacherActor, placement.ID, dto.PlacementScoreRequest{Score: 75})
	require.NoError(t, err)
	require.Equal(t, string(models.PlacementStatusAktif), resp.Status)
	require.Equal(t, 75, *resp.FinalScore)
}

func TestPlacementDeleteRecordsAuditBeforeRemoval(t *testing.T) {
	f := newPlacementFixture(t)
	placement := f.seedPlacement(models.PlacementStatusDibatalkan)

	err := f.svc.Delete(context.Background(), f.adminActor, placement.ID)
	require.NoError(t, err)

	_, exists := f.repo.placements[placement.ID]
	require.False(t, exists)

	require.Len(t, f.repo.audits, 1)
	require.Equal(t, models.ActivityActionDeleted, f.repo.audits[0].Action)
	require.Equal(t, placement.ID, *f.repo.audits[0].EntityID)
}

func TestPlacementDeleteRequiresAdmin(t *testing.T) {
	f := newPlacementFixture(t)
	placement := f.seedPlacement(models.PlacementStatusDibatalkan)

	err := f.svc.Delete(context.Background(), f.teacherActor, placement.ID)
	require.ErrorIs(t, err, ErrForbidden)

	err = f.svc.Delete(context.Background(), f.studentActor, placement.ID)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestPlacementGetNotFound(t *testing.T) {
	f := newPlacementFixture(t)

	_, err := f.svc.Get(context.Background(), f.adminActor, uuid.New())
	require.ErrorIs(t, err, ErrPlacementNotFound)
}

func TestPlacementListScopedByRole(t *testing.T) {
	f := newPlacementFixture(t)
	f.seedPlacement(models.PlacementStatusAktif)

	// A placement owned by an unknown student must stay invisible to the
	// fixture student and the fixture supervisor.
	foreign := models.Placement{
		ID:        uuid.New(),
		StudentID: uuid.New(),
		CompanyID: f.company.ID,
		Status:    models.PlacementStatusPending,
		StartDate: time.Now(),
		EndDate:   time.Now().AddDate(0, 3, 0),
	}
	f.repo.placements[foreign.ID] = foreign

	adminList, err := f.svc.List(context.Background(), f.adminActor, dto.PlacementListRequest{})
	require.NoError(t, err)
	require.Len(t, adminList.Items, 2)

	studentList, err := f.svc.List(context.Background(), f.studentActor, dto.PlacementListRequest{})
	require.NoError(t, err)
	require.Len(t, studentList.Items, 1)
	require.Equal(t, f.student.ID, studentList.Items[0].StudentID)

	teacherList, err := f.svc.List(context.Background(), f.teacherActor, dto.PlacementListRequest{})
	require.NoError(t, err)
	require.Len(t, teacherList.Items, 1)
}
