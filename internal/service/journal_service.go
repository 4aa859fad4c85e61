package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
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

// minDescriptionLength is the minimum trimmed character count of a daily
// activity description.
const minDescriptionLength = 50

// JournalService enforces the journal validation workflow: entries are
// creatable only against an aktif placement and reviewed exactly once.
type JournalService interface {
	Submit(ctx context.Context, actor Actor, payload dto.JournalSubmitRequest) (dto.JournalResponse, error)
	Review(ctx context.Context, actor Actor, entryID uuid.UUID, payload dto.JournalReviewRequest) (dto.JournalResponse, error)
	List(ctx context.Context, actor Actor, req dto.JournalListRequest) (dto.JournalListResponse, error)
}

type journalService struct {
	repo       repository.JournalRepository
	placements repository.PlacementRepository
	students   repository.StudentRepository
	teachers   repository.TeacherRepository
	validator  *validator.Validate
	announcer  ActivityAnnouncer
	sanitizer  *bluemonday.Policy
	logger     zerolog.Logger
	loc        *time.Location
	now        func() time.Time
}

// NewJournalService constructs the journal workflow service.
func NewJournalService(
	repo repository.JournalRepository,
	placements repository.PlacementRepository,
	students repository.StudentRepository,
	teachers repository.TeacherRepository,
	validate *validator.Validate,
	announcer ActivityAnnouncer,
	loc *time.Location,
	logger zerolog.Logger,
) JournalService {
	if loc == nil {
		loc = time.UTC
	}

	return &journalService{
		repo:       repo,
		placements: placements,
		students:   students,
		teachers:   teachers,
		validator:  validate,
		announcer:  announcer,
		sanitizer:  bluemonday.StrictPolicy(),
		logger:     logger.With().Str("component", "journal_service").Logger(),
		loc:        loc,
		now:        time.Now,
	}
}

func (s *journalService) Submit(ctx context.Context, actor Actor, payload dto.JournalSubmitRequest) (dto.JournalResponse, error) {
	tracer := otel.Tracer("github.com/smkdev-id/simagang-api/internal/service/journal")
	ctx, span := tracer.Start(ctx, "journal.submit")
	span.SetAttributes(attribute.String("journal.placement_id", payload.PlacementID.String()))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		return dto.JournalResponse{}, err
	}

	student, err := s.students.GetByUserID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.JournalResponse{}, ErrStudentNotFound
		}
		return dto.JournalResponse{}, fmt.Errorf("failed to load student profile: %w", err)
	}

	placement, err := s.placements.GetByID(ctx, payload.PlacementID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.JournalResponse{}, ErrPlacementNotFound
		}
		return dto.JournalResponse{}, fmt.Errorf("failed to load placement: %w", err)
	}

	ownership := Ownership{IsOwner: placement.StudentID == student.ID}
	if !Can(actor.Role, OpJournalSubmit, ownership) {
		span.SetStatus(codes.Error, "forbidden")
		return dto.JournalResponse{}, ErrForbidden
	}

	if placement.Status != models.PlacementStatusAktif {
		span.SetStatus(codes.Error, "no_active_placement")
		return dto.JournalResponse{}, ErrNoActivePlacement
	}

	description := strings.TrimSpace(s.sanitizer.Sanitize(payload.ActivityDescription))
	if utf8.RuneCountInString(description) < minDescriptionLength {
		span.SetStatus(codes.Error, "description_too_short")
		return dto.JournalResponse{}, ErrDescriptionTooShort
	}

	date, err := time.ParseInLocation(dateLayout, payload.Date, s.loc)
	if err != nil {
		return dto.JournalResponse{}, fmt.Errorf("invalid journal date: %w", err)
	}
	if date.After(s.today()) {
		span.SetStatus(codes.Error, "future_date")
		return dto.JournalResponse{}, ErrFutureDateNotAllowed
	}

	entry := models.JournalEntry{
		PlacementID:         placement.ID,
		StudentID:           student.ID,
		Date:                date,
		ActivityDescription: description,
		AttachmentURL:       payload.AttachmentURL,
		ValidationStatus:    models.ValidationStatusMenunggu,
	}

	logEntry := s.auditEntry(actor, models.ActivityActionCreated, "journal entry submitted", map[string]interface{}{
		"placement_id": placement.ID.String(),
		"student_id":   student.ID.String(),
		"date":         payload.Date,
	})

	if err := s.repo.CreateWithLog(ctx, &entry, &logEntry); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "journal_create_failed")
		return dto.JournalResponse{}, fmt.Errorf("failed to create journal entry: %w", err)
	}

	s.announce(ctx, logEntry)
	s.logger.Info().Str("journal_id", entry.ID.String()).Msg("journal entry submitted")

	return dto.NewJournalResponse(entry), nil
}

func (s *journalService) Review(ctx context.Context, actor Actor, entryID uuid.UUID, payload dto.JournalReviewRequest) (dto.JournalResponse, error) {
	tracer := otel.Tracer("github.com/smkdev-id/simagang-api/internal/service/journal")
	ctx, span := tracer.Start(ctx, "journal.review")
	span.SetAttributes(attribute.String("journal.id", entryID.String()))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		return dto.JournalResponse{}, err
	}

	entry, err := s.repo.GetByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.JournalResponse{}, ErrJournalNotFound
		}
		return dto.JournalResponse{}, fmt.Errorf("failed to load journal entry: %w", err)
	}

	ownership, err := s.reviewOwnership(ctx, actor, entry.Placement)
	if err != nil {
		return dto.JournalResponse{}, err
	}
	if !Can(actor.Role, OpJournalReview, ownership) {
		span.SetStatus(codes.Error, "forbidden")
		return dto.JournalResponse{}, ErrForbidden
	}

	if entry.ValidationStatus != models.ValidationStatusMenunggu {
		span.SetStatus(codes.Error, "already_reviewed")
		return dto.JournalResponse{}, ErrAlreadyReviewed
	}

	decision := models.ValidationStatus(payload.Decision)
	if !decision.Decision() {
		return dto.JournalResponse{}, fmt.Errorf("unknown review decision %q", payload.Decision)
	}

	teacher, err := s.teachers.GetByUserID(ctx, actor.UserID)
	if err != nil {
		return dto.JournalResponse{}, fmt.Errorf("failed to load teacher profile: %w", err)
	}

	reviewedAt := s.now().In(s.loc)
	entry.ValidationStatus = decision
	entry.ReviewerNotes = payload.Notes
	entry.ReviewedBy = &teacher.ID
	entry.ReviewedAt = &reviewedAt

	logEntry := s.auditEntry(actor, models.ActivityActionUpdated, fmt.Sprintf("journal entry %s", decision), map[string]interface{}{
		"journal_id":   entry.ID.String(),
		"placement_id": entry.PlacementID.String(),
		"decision":     string(decision),
	})
	logEntry.EntityID = &entry.ID

	if err := s.repo.ReviewWithLog(ctx, &entry, &logEntry); err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			// Someone else landed a decision between our read and write.
			return dto.JournalResponse{}, ErrAlreadyReviewed
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "journal_review_failed")
		return dto.JournalResponse{}, fmt.Errorf("failed to review journal entry: %w", err)
	}

	s.announce(ctx, logEntry)
	observability.JournalReviews().WithLabelValues(string(decision)).Inc()
	s.logger.Info().Str("journal_id", entry.ID.String()).Str("decision", string(decision)).Msg("journal entry reviewed")

	return dto.NewJournalResponse(entry), nil
}

// List returns journal entries scoped by the caller's role: students see
// their own, supervisors see entries of placements they supervise,
// administrators see everything.
func (s *journalService) List(ctx context.Context, actor Actor, req dto.JournalListRequest) (dto.JournalListResponse, error) {
	if !Can(actor.Role, OpJournalList, Ownership{}) {
		return dto.JournalListResponse{}, ErrForbidden
	}

	filter := repository.JournalFilter{
		Page:        req.Page,
		PageSize:    req.PageSize,
		PlacementID: req.PlacementID,
		StudentID:   req.StudentID,
		Status:      models.ValidationStatus(req.Status),
		DateFrom:    req.DateFrom,
		DateTo:      req.DateTo,
	}

	switch actor.Role {
	case models.RoleSiswa:
		student, err := s.students.GetByUserID(ctx, actor.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.JournalListResponse{}, ErrStudentNotFound
			}
			return dto.JournalListResponse{}, fmt.Errorf("failed to load student profile: %w", err)
		}
		filter.StudentID = &student.ID
	case models.RoleGuru:
		teacher, err := s.teachers.GetByUserID(ctx, actor.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.JournalListResponse{}, ErrTeacherNotFound
			}
			return dto.JournalListResponse{}, fmt.Errorf("failed to load teacher profile: %w", err)
		}
		filter.SupervisorID = &teacher.ID
	}

	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.JournalListResponse{}, err
	}

	items := make([]dto.JournalResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.NewJournalResponse(entry))
	}

	return dto.JournalListResponse{
		Items:      items,
		Pagination: paginationMeta(req.Page, req.PageSize, total),
	}, nil
}

func (s *journalService) reviewOwnership(ctx context.Context, actor Actor, placement models.Placement) (Ownership, error) {
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

func (s *journalService) auditEntry(actor Actor, action models.ActivityAction, description string, metadata map[string]interface{}) models.ActivityLog {
	return models.ActivityLog{
		ActorID:     actor.UserID,
		ActorRole:   actor.Role,
		Action:      action,
		EntityType:  "journal_entry",
		Description: description,
		Metadata:    sanitizeMetadata(metadata),
	}
}

func (s *journalService) announce(ctx context.Context, entry models.ActivityLog) {
	if s.announcer != nil {
		s.announcer.Announce(ctx, entry)
	}
}

func (s *journalService) today() time.Time {
	now := s.now().In(s.loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
}
