package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/smkdev-id/simagang-api/internal/dto"
	"github.com/smkdev-id/simagang-api/internal/models"
	"github.com/smkdev-id/simagang-api/internal/observability"
	"github.com/smkdev-id/simagang-api/internal/repository"
)

const dateLayout = "2006-01-02"

// PlacementService enforces the placement lifecycle state machine:
// pending -> aktif -> {selesai, dibatalkan}, plus pending -> dibatalkan.
type PlacementService interface {
	Apply(ctx context.Context, actor Actor, payload dto.PlacementApplyRequest) (dto.PlacementResponse, error)
	Approve(ctx context.Context, actor Actor, placementID uuid.UUID, payload dto.PlacementApproveRequest) (dto.PlacementResponse, error)
	Complete(ctx context.Context, actor Actor, placementID uuid.UUID, payload dto.PlacementCompleteRequest) (dto.PlacementResponse, error)
	Cancel(ctx context.Context, actor Actor, placementID uuid.UUID) (dto.PlacementResponse, error)
	Score(ctx context.Context, actor Actor, placementID uuid.UUID, payload dto.PlacementScoreRequest) (dto.PlacementResponse, error)
	Delete(ctx context.Context, actor Actor, placementID uuid.UUID) error
	Get(ctx context.Context, actor Actor, placementID uuid.UUID) (dto.PlacementResponse, error)
	List(ctx context.Context, actor Actor, req dto.PlacementListRequest) (dto.PlacementListResponse, error)
}

type placementService struct {
	repo      repository.PlacementRepository
	students  repository.StudentRepository
	teachers  repository.TeacherRepository
	companies repository.CompanyRepository
	validator *validator.Validate
	announcer ActivityAnnouncer
	logger    zerolog.Logger
	loc       *time.Location
	now       func() time.Time
}

// NewPlacementService constructs the placement lifecycle service.
func NewPlacementService(
	repo repository.PlacementRepository,
	students repository.StudentRepository,
	teachers repository.TeacherRepository,
	companies repository.CompanyRepository,
	validate *validator.Validate,
	announcer ActivityAnnouncer,
	loc *time.Location,
	logger zerolog.Logger,
) PlacementService {
	if loc == nil {
		loc = time.UTC
	}

	return &placementService{
		repo:      repo,
		students:  students,
		teachers:  teachers,
		companies: companies,
		validator: validate,
		announcer: announcer,
		logger:    logger.With().Str("component", "placement_service").Logger(),
		loc:       loc,
		now:       time.Now,
	}
}

func (s *placementService) Apply(ctx context.Context, actor Actor, payload dto.PlacementApplyRequest) (dto.PlacementResponse, error) {
	tracer := otel.Tracer("github.com/smkdev-id/simagang-api/internal/service/placement")
	ctx, span := tracer.Start(ctx, "placement.apply")
	span.SetAttributes(attribute.String("placement.actor_id", actor.UserID.String()))
	defer span.End()

	if !Can(actor.Role, OpPlacementApply, Ownership{}) {
		span.SetStatus(codes.Error, "forbidden")
		return dto.PlacementResponse{}, ErrForbidden
	}

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		return dto.PlacementResponse{}, err
	}

	startDate, err := time.ParseInLocation(dateLayout, payload.StartDate, s.loc)
	if err != nil {
		return dto.PlacementResponse{}, fmt.Errorf("invalid start date: %w", err)
	}
	endDate, err := time.ParseInLocation(dateLayout, payload.EndDate, s.loc)
	if err != nil {
		return dto.PlacementResponse{}, fmt.Errorf("invalid end date: %w", err)
	}
	if endDate.Before(startDate) {
		return dto.PlacementResponse{}, ErrInvalidPeriod
	}

	student, err := s.students.GetByUserID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PlacementResponse{}, ErrStudentNotFound
		}
		return dto.PlacementResponse{}, fmt.Errorf("failed to load student profile: %w", err)
	}

	if _, err := s.companies.GetByID(ctx, payload.CompanyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PlacementResponse{}, ErrCompanyNotFound
		}
		return dto.PlacementResponse{}, fmt.Errorf("failed to load company: %w", err)
	}

	hasActive, err := s.repo.HasActive(ctx, student.ID)
	if err != nil {
		return dto.PlacementResponse{}, fmt.Errorf("failed to check active placement: %w", err)
	}
	if hasActive {
		span.SetStatus(codes.Error, "active_placement_exists")
		return dto.PlacementResponse{}, ErrActivePlacementExists
	}

	duplicate, err := s.repo.HasOpenApplication(ctx, student.ID, payload.CompanyID)
	if err != nil {
		return dto.PlacementResponse{}, fmt.Errorf("failed to check open applications: %w", err)
	}
	if duplicate {
		span.SetStatus(codes.Error, "duplicate_application")
		return dto.PlacementResponse{}, ErrDuplicateApplication
	}

	placement := models.Placement{
		StudentID: student.ID,
		CompanyID: payload.CompanyID,
		Position:  payload.Position,
		Division:  payload.Division,
		StartDate: startDate,
		EndDate:   endDate,
		Status:    models.PlacementStatusPending,
	}

	entry := s.auditEntry(actor, models.ActivityActionCreated, "placement application submitted", map[string]interface{}{
		"student_id": student.ID.String(),
		"company_id": payload.CompanyID.String(),
	})

	if err := s.repo.CreateWithLog(ctx, &placement, &entry); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "placement_create_failed")
		return dto.PlacementResponse{}, fmt.Errorf("failed to create placement: %w", err)
	}

	s.announce(ctx, entry)
	observability.PlacementTransitions().WithLabelValues(string(models.PlacementStatusPending)).Inc()
	s.logger.Info().Str("placement_id", placement.ID.String()).Msg("placement application created")

	return dto.NewPlacementResponse(placement), nil
}

// Approve moves a pending placement to aktif, and doubles as the
// administrative correction path: an admin may set any status directly and
// adjust the supervisor or period.
func (s *placementService) Approve(ctx context.Context, actor Actor, placementID uuid.UUID, payload dto.PlacementApproveRequest) (dto.PlacementResponse, error) {
	if !Can(actor.Role, OpPlacementApprove, Ownership{}) {
		return dto.PlacementResponse{}, ErrForbidden
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.PlacementResponse{}, err
	}

	placement, err := s.loadPlacement(ctx, placementID)
	if err != nil {
		return dto.PlacementResponse{}, err
	}

	target := models.PlacementStatusAktif
	if payload.Status != nil {
		target = models.PlacementStatus(*payload.Status)
	}
	if !target.Valid() {
		return dto.PlacementResponse{}, ErrInvalidStatus
	}

	if payload.SupervisorID != nil {
		if _, err := s.teachers.GetByID(ctx, *payload.SupervisorID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.PlacementResponse{}, ErrTeacherNotFound
			}
			return dto.PlacementResponse{}, fmt.Errorf("failed to load supervisor: %w", err)
		}
		placement.SupervisorID = payload.SupervisorID
	}

	if payload.StartDate != nil {
		startDate, err := time.ParseInLocation(dateLayout, *payload.StartDate, s.loc)
		if err != nil {
			return dto.PlacementResponse{}, fmt.Errorf("invalid start date: %w", err)
		}
		placement.StartDate = startDate
	}
	if payload.EndDate != nil {
		endDate, err := time.ParseInLocation(dateLayout, *payload.EndDate, s.loc)
		if err != nil {
			return dto.PlacementResponse{}, fmt.Errorf("invalid end date: %w", err)
		}
		placement.EndDate = endDate
	}
	if placement.EndDate.Before(placement.StartDate) {
		return dto.PlacementResponse{}, ErrInvalidPeriod
	}

	if target == models.PlacementStatusAktif && placement.Status != models.PlacementStatusAktif {
		hasActive, err := s.repo.HasActive(ctx, placement.StudentID)
		if err != nil {
			return dto.PlacementResponse{}, fmt.Errorf("failed to check active placement: %w", err)
		}
		if hasActive {
			return dto.PlacementResponse{}, ErrActivePlacementExists
		}
	}

	expected := placement.Status
	placement.Status = target

	entry := s.auditEntry(actor, models.ActivityActionUpdated, fmt.Sprintf("placement set to %s", target), map[string]interface{}{
		"placement_id": placement.ID.String(),
		"from":         string(expected),
		"to":           string(target),
	})
	entry.EntityID = &placement.ID

	if err := s.repo.TransitionWithLog(ctx, &placement, expected, &entry); err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			return dto.PlacementResponse{}, ErrConcurrentUpdate
		}
		return dto.PlacementResponse{}, fmt.Errorf("failed to update placement: %w", err)
	}

	s.announce(ctx, entry)
	observability.PlacementTransitions().WithLabelValues(string(target)).Inc()

	return dto.NewPlacementResponse(placement), nil
}

func (s *placementService) Complete(ctx context.Context, actor Actor, placementID uuid.UUID, payload dto.PlacementCompleteRequest) (dto.PlacementResponse, error) {
	tracer := otel.Tracer("github.com/smkdev-id/simagang-api/internal/service/placement")
	ctx, span := tracer.Start(ctx, "placement.complete")
	span.SetAttributes(attribute.String("placement.id", placementID.String()))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		return dto.PlacementResponse{}, err
	}

	placement, err := s.loadPlacement(ctx, placementID)
	if err != nil {
		return dto.PlacementResponse{}, err
	}

	ownership, err := s.supervisorOwnership(ctx, actor, placement)
	if err != nil {
		return dto.PlacementResponse{}, err
	}
	if !Can(actor.Role, OpPlacementComplete, ownership) {
		span.SetStatus(codes.Error, "forbidden")
		return dto.PlacementResponse{}, ErrForbidden
	}

	if payload.FinalScore < 0 || payload.FinalScore > 100 {
		span.SetStatus(codes.Error, "invalid_score")
		return dto.PlacementResponse{}, ErrInvalidScore
	}

	if !placement.Status.CanTransitionTo(models.PlacementStatusSelesai) {
		span.SetStatus(codes.Error, "invalid_transition")
		return dto.PlacementResponse{}, ErrInvalidTransition
	}

	expected := placement.Status
	placement.Status = models.PlacementStatusSelesai
	placement.EndDate = s.today()
	score := payload.FinalScore
	placement.FinalScore = &score
	placement.SupervisorNotes = payload.SupervisorNotes

	entry := s.auditEntry(actor, models.ActivityActionUpdated, "placement completed", map[string]interface{}{
		"placement_id": placement.ID.String(),
		"final_score":  payload.FinalScore,
	})
	entry.EntityID = &placement.ID

	if err := s.repo.TransitionWithLog(ctx, &placement, expected, &entry); err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			return dto.PlacementResponse{}, ErrInvalidTransition
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "placement_update_failed")
		return dto.PlacementResponse{}, fmt.Errorf("failed to complete placement: %w", err)
	}

	s.announce(ctx, entry)
	observability.PlacementTransitions().WithLabelValues(string(models.PlacementStatusSelesai)).Inc()
	s.logger.Info().Str("placement_id", placement.ID.String()).Int("final_score", payload.FinalScore).Msg("placement completed")

	return dto.NewPlacementResponse(placement), nil
}

func (s *placementService) Cancel(ctx context.Context, actor Actor, placementID uuid.UUID) (dto.PlacementResponse, error) {
	placement, err := s.loadPlacement(ctx, placementID)
	if err != nil {
		return dto.PlacementResponse{}, err
	}

	ownership, err := s.supervisorOwnership(ctx, actor, placement)
	if err != nil {
		return dto.PlacementResponse{}, err
	}
	if !Can(actor.Role, OpPlacementCancel, ownership) {
		return dto.PlacementResponse{}, ErrForbidden
	}

	if placement.Status.Terminal() {
		return dto.PlacementResponse{}, ErrInvalidTransition
	}

	expected := placement.Status
	placement.Status = models.PlacementStatusDibatalkan

	entry := s.auditEntry(actor, models.ActivityActionUpdated, "placement cancelled", map[string]interface{}{
		"placement_id": placement.ID.String(),
		"from":         string(expected),
	})
	entry.EntityID = &placement.ID

	if err := s.repo.TransitionWithLog(ctx, &placement, expected, &entry); err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			return dto.PlacementResponse{}, ErrInvalidTransition
		}
		return dto.PlacementResponse{}, fmt.Errorf("failed to cancel placement: %w", err)
	}

	s.announce(ctx, entry)
	observability.PlacementTransitions().WithLabelValues(string(models.PlacementStatusDibatalkan)).Inc()

	return dto.NewPlacementResponse(placement), nil
}

// Score records an interim or final score without touching the lifecycle
// state.
func (s *placementService) Score(ctx context.Context, actor Actor, placementID uuid.UUID, payload dto.PlacementScoreRequest) (dto.PlacementResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.PlacementResponse{}, err
	}

	placement, err := s.loadPlacement(ctx, placementID)
	if err != nil {
		return dto.PlacementResponse{}, err
	}

	ownership, err := s.supervisorOwnership(ctx, actor, placement)
	if err != nil {
		return dto.PlacementResponse{}, err
	}
	if !Can(actor.Role, OpPlacementScore, ownership) {
		return dto.PlacementResponse{}, ErrForbidden
	}

	if payload.Score < 0 || payload.Score > 100 {
		return dto.PlacementResponse{}, ErrInvalidScore
	}

	score := payload.Score
	placement.FinalScore = &score
	if payload.Notes != nil {
		placement.SupervisorNotes = payload.Notes
	}

	entry := s.auditEntry(actor, models.ActivityActionUpdated, "placement scored", map[string]interface{}{
		"placement_id": placement.ID.String(),
		"score":        payload.Score,
	})
	entry.EntityID = &placement.ID

	if err := s.repo.SaveWithLog(ctx, &placement, &entry); err != nil {
		return dto.PlacementResponse{}, fmt.Errorf("failed to record score: %w", err)
	}

	s.announce(ctx, entry)

	return dto.NewPlacementResponse(placement), nil
}

func (s *placementService) Delete(ctx context.Context, actor Actor, placementID uuid.UUID) error {
	if !Can(actor.Role, OpPlacementDelete, Ownership{}) {
		return ErrForbidden
	}

	placement, err := s.loadPlacement(ctx, placementID)
	if err != nil {
		return err
	}

	entry := s.auditEntry(actor, models.ActivityActionDeleted, "placement deleted", map[string]interface{}{
		"placement_id": placement.ID.String(),
		"student_id":   placement.StudentID.String(),
		"status":       string(placement.Status),
	})
	entry.EntityID = &placement.ID

	if err := s.repo.DeleteWithLog(ctx, &placement, &entry); err != nil {
		return fmt.Errorf("failed to delete placement: %w", err)
	}

	s.announce(ctx, entry)
	s.logger.Info().Str("placement_id", placement.ID.String()).Msg("placement hard-deleted")

	return nil
}

func (s *placementService) Get(ctx context.Context, actor Actor, placementID uuid.UUID) (dto.PlacementResponse, error) {
	placement, err := s.loadPlacement(ctx, placementID)
	if err != nil {
		return dto.PlacementResponse{}, err
	}

	ownership, err := s.readOwnership(ctx, actor, placement)
	if err != nil {
		return dto.PlacementResponse{}, err
	}
	if !Can(actor.Role, OpPlacementRead, ownership) {
		return dto.PlacementResponse{}, ErrForbidden
	}

	return dto.NewPlacementResponse(placement), nil
}

func (s *placementService) List(ctx context.Context, actor Actor, req dto.PlacementListRequest) (dto.PlacementListResponse, error) {
	filter := repository.PlacementFilter{
		Page:      req.Page,
		PageSize:  req.PageSize,
		Status:    models.PlacementStatus(req.Status),
		StudentID: req.StudentID,
		CompanyID: req.CompanyID,
	}

	switch actor.Role {
	case models.RoleAdmin:
		// Unscoped.
	case models.RoleGuru:
		teacher, err := s.teachers.GetByUserID(ctx, actor.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.PlacementListResponse{}, ErrTeacherNotFound
			}
			return dto.PlacementListResponse{}, fmt.Errorf("failed to load teacher profile: %w", err)
		}
		filter.SupervisorID = &teacher.ID
	case models.RoleSiswa:
		student, err := s.students.GetByUserID(ctx, actor.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.PlacementListResponse{}, ErrStudentNotFound
			}
			return dto.PlacementListResponse{}, fmt.Errorf("failed to load student profile: %w", err)
		}
		filter.StudentID = &student.ID
	default:
		return dto.PlacementListResponse{}, ErrForbidden
	}

	placements, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.PlacementListResponse{}, err
	}

	items := make([]dto.PlacementResponse, 0, len(placements))
	for _, placement := range placements {
		items = append(items, dto.NewPlacementResponse(placement))
	}

	return dto.PlacementListResponse{
		Items:      items,
		Pagination: paginationMeta(req.Page, req.PageSize, total),
	}, nil
}

func (s *placementService) loadPlacement(ctx context.Context, id uuid.UUID) (models.Placement, error) {
	placement, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Placement{}, ErrPlacementNotFound
		}
		return models.Placement{}, fmt.Errorf("failed to load placement: %w", err)
	}
	return placement, nil
}

// supervisorOwnership resolves whether a guru actor is the assigned
// supervisor of the placement. Non-guru actors get an empty ownership.
func (s *placementService) supervisorOwnership(ctx context.Context, actor Actor, placement models.Placement) (Ownership, error) {
	if actor.Role != models.RoleGuru || placement.SupervisorID == nil {
		return Ownership{}, nil
	}

	teacher, err := s.teachers.GetByUserID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Ownership{}, nil
		}
		return Ownership{}, fmt.Errorf("failed to load teacher profile: %w", err)
	}

	return Ownership{IsSupervisor: teacher.ID == *placement.SupervisorID}, nil
}

func (s *placementService) readOwnership(ctx context.Context, actor Actor, placement models.Placement) (Ownership, error) {
	switch actor.Role {
	case models.RoleGuru:
		return s.supervisorOwnership(ctx, actor, placement)
	case models.RoleSiswa:
		student, err := s.students.GetByUserID(ctx, actor.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return Ownership{}, nil
			}
			return Ownership{}, fmt.Errorf("failed to load student profile: %w", err)
		}
		return Ownership{IsOwner: student.ID == placement.StudentID}, nil
	}
	return Ownership{}, nil
}

func (s *placementService) auditEntry(actor Actor, action models.ActivityAction, description string, metadata map[string]interface{}) models.ActivityLog {
	return models.ActivityLog{
		ActorID:     actor.UserID,
		ActorRole:   actor.Role,
		Action:      action,
		EntityType:  "placement",
		Description: description,
		Metadata:    sanitizeMetadata(metadata),
	}
}

func (s *placementService) announce(ctx context.Context, entry models.ActivityLog) {
	if s.announcer != nil {
		s.announcer.Announce(ctx, entry)
	}
}

// today returns the current calendar day in the configured reporting
// timezone.
func (s *placementService) today() time.Time {
	now := s.now().In(s.loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
}
