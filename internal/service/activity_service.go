package service

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/smkdev-id/simagang-api/internal/dto"
	"github.com/smkdev-id/simagang-api/internal/models"
	"github.com/smkdev-id/simagang-api/internal/observability"
	"github.com/smkdev-id/simagang-api/internal/repository"
)

// ActivityAnnouncer fans an already-committed audit entry out to downstream
// consumers. Announcing is best-effort; the committed entry is the source of
// truth.
type ActivityAnnouncer interface {
	Announce(ctx context.Context, entry models.ActivityLog)
}

// ActivityService manages the audit trail: standalone records from external
// collaborators, the admin trash workflow, and queries.
type ActivityService interface {
	ActivityAnnouncer
	Record(ctx context.Context, actor Actor, payload dto.ActivityCreateRequest) (dto.ActivityResponse, error)
	Query(ctx context.Context, actor Actor, req dto.ActivityQueryRequest) (dto.ActivityListResponse, error)
	SoftDelete(ctx context.Context, actor Actor, req dto.ActivityBulkRequest) (int64, error)
	Restore(ctx context.Context, actor Actor, req dto.ActivityBulkRequest) (int64, error)
	PurgeDeleted(ctx context.Context, actor Actor) (int64, error)
}

type activityService struct {
	repo      repository.ActivityLogRepository
	nats      *nats.Conn
	subject   string
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewActivityService constructs the activity log service. The NATS
// connection may be nil; announcements are skipped in that case.
func NewActivityService(repo repository.ActivityLogRepository, natsConn *nats.Conn, subject string, validate *validator.Validate, logger zerolog.Logger) ActivityService {
	if subject == "" {
		subject = "simagang.activities"
	}

	return &activityService{
		repo:      repo,
		nats:      natsConn,
		subject:   subject,
		validator: validate,
		logger:    logger.With().Str("component", "activity_service").Logger(),
		now:       time.Now,
	}
}

func (s *activityService) Record(ctx context.Context, actor Actor, payload dto.ActivityCreateRequest) (dto.ActivityResponse, error) {
	if !Can(actor.Role, OpActivityRecord, Ownership{}) {
		return dto.ActivityResponse{}, ErrForbidden
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.ActivityResponse{}, err
	}

	entry := models.ActivityLog{
		ActorID:     actor.UserID,
		ActorRole:   actor.Role,
		Action:      models.ActivityAction(payload.Action),
		EntityType:  strings.ToLower(strings.TrimSpace(payload.EntityType)),
		EntityID:    payload.EntityID,
		Description: strings.TrimSpace(payload.Description),
		Metadata:    sanitizeMetadata(payload.Metadata),
	}

	if err := s.repo.Create(ctx, &entry); err != nil {
		s.logger.Error().Err(err).Msg("failed to persist activity log")
		return dto.ActivityResponse{}, err
	}

	s.Announce(ctx, entry)

	return dto.NewActivityResponse(entry), nil
}

func (s *activityService) Query(ctx context.Context, actor Actor, req dto.ActivityQueryRequest) (dto.ActivityListResponse, error) {
	if !Can(actor.Role, OpActivityQuery, Ownership{}) {
		return dto.ActivityListResponse{}, ErrForbidden
	}

	filter := repository.ActivityLogFilter{
		Page:        req.Page,
		PageSize:    req.PageSize,
		Action:      models.ActivityAction(strings.TrimSpace(req.Action)),
		EntityType:  strings.ToLower(strings.TrimSpace(req.EntityType)),
		Search:      req.Search,
		ShowDeleted: req.ShowDeleted,
	}

	entries, total, err := s.repo.Query(ctx, filter)
	if err != nil {
		return dto.ActivityListResponse{}, err
	}

	items := make([]dto.ActivityResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.NewActivityResponse(entry))
	}

	return dto.ActivityListResponse{
		Items:      items,
		Pagination: paginationMeta(req.Page, req.PageSize, total),
	}, nil
}

// SoftDelete moves matching active entries to the trash view. Calling it
// again with the same filter is a no-op.
func (s *activityService) SoftDelete(ctx context.Context, actor Actor, req dto.ActivityBulkRequest) (int64, error) {
	if !Can(actor.Role, OpActivityManage, Ownership{}) {
		return 0, ErrForbidden
	}

	affected, err := s.repo.SoftDelete(ctx, bulkFilter(req), s.now())
	if err != nil {
		return 0, err
	}

	s.logger.Info().Int64("affected", affected).Msg("activity log entries moved to trash")
	return affected, nil
}

func (s *activityService) Restore(ctx context.Context, actor Actor, req dto.ActivityBulkRequest) (int64, error) {
	if !Can(actor.Role, OpActivityManage, Ownership{}) {
		return 0, ErrForbidden
	}

	affected, err := s.repo.Restore(ctx, bulkFilter(req))
	if err != nil {
		return 0, err
	}

	s.logger.Info().Int64("affected", affected).Msg("activity log entries restored")
	return affected, nil
}

// PurgeDeleted permanently removes everything in the trash view. There is no
// way back from this one.
func (s *activityService) PurgeDeleted(ctx context.Context, actor Actor) (int64, error) {
	if !Can(actor.Role, OpActivityManage, Ownership{}) {
		return 0, ErrForbidden
	}

	affected, err := s.repo.PurgeDeleted(ctx)
	if err != nil {
		return 0, err
	}

	s.logger.Info().Int64("affected", affected).Msg("soft-deleted activity log entries purged")
	return affected, nil
}

func (s *activityService) Announce(ctx context.Context, entry models.ActivityLog) {
	observability.AuditEvents().WithLabelValues(string(entry.Action)).Inc()

	if s.nats == nil {
		return
	}

	payload, err := json.Marshal(dto.NewActivityResponse(entry))
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode activity event")
		return
	}

	if err := s.nats.Publish(s.subject, payload); err != nil {
		s.logger.Warn().Err(err).Str("subject", s.subject).Msg("failed to publish activity event")
	}
}

func bulkFilter(req dto.ActivityBulkRequest) repository.ActivityBulkFilter {
	return repository.ActivityBulkFilter{
		Action:     models.ActivityAction(strings.TrimSpace(req.Action)),
		EntityType: strings.ToLower(strings.TrimSpace(req.EntityType)),
	}
}

func sanitizeMetadata(metadata map[string]interface{}) datatypes.JSONMap {
	if metadata == nil {
		return datatypes.JSONMap{}
	}

	sanitized := datatypes.JSONMap{}
	for key, value := range metadata {
		lower := strings.ToLower(key)
		if strings.Contains(lower, "email") || strings.Contains(lower, "token") || strings.Contains(lower, "password") {
			sanitized[key] = "***"
			continue
		}
		sanitized[key] = value
	}
	return sanitized
}

func paginationMeta(page, pageSize int, total int64) dto.PaginationMeta {
	meta := dto.PaginationMeta{
		Page:       maxInt(page, 1),
		PageSize:   pageSize,
		TotalItems: total,
	}
	if pageSize > 0 {
		meta.TotalPages = int(math.Ceil(float64(total) / float64(pageSize)))
	} else {
		meta.TotalPages = 1
	}
	return meta
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
