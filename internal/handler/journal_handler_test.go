package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/smkdev-id/simagang-api/internal/dto"
	"github.com/smkdev-id/simagang-api/internal/service"
)

type stubJournalService struct {
	submitErr error
	reviewErr error
	lastList  dto.JournalListRequest
}

func (s *stubJournalService) Submit(_ context.Context, _ service.Actor, _ dto.JournalSubmitRequest) (dto.JournalResponse, error) {
	if s.submitErr != nil {
		return dto.JournalResponse{}, s.submitErr
	}
	return dto.JournalResponse{ID: uuid.New(), ValidationStatus: "menunggu"}, nil
}

func (s *stubJournalService) Review(_ context.Context, _ service.Actor, _ uuid.UUID, _ dto.JournalReviewRequest) (dto.JournalResponse, error) {
	if s.reviewErr != nil {
		return dto.JournalResponse{}, s.reviewErr
	}
	return dto.JournalResponse{ID: uuid.New(), ValidationStatus: "disetujui"}, nil
}

func (s *stubJournalService) List(_ context.Context, _ service.Actor, req dto.JournalListRequest) (dto.JournalListResponse, error) {
	s.lastList = req
	return dto.JournalListResponse{Items: []dto.JournalResponse{}}, nil
}

func newJournalTestApp(svc service.JournalService) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", uuid.New())
		c.Locals("user_role", "guru")
		return c.Next()
	})

	handler := NewJournalHandler(svc, zerolog.New(io.Discard))
	handler.Register(app.Group("/journals"))
	return app
}

func TestJournalHandlerSubmitConflicts(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"no active placement", service.ErrNoActivePlacement, fiber.StatusConflict},
		{"future date", service.ErrFutureDateNotAllowed, fiber.StatusConflict},
		{"short description", service.ErrDescriptionTooShort, fiber.StatusBadRequest},
		{"forbidden", service.ErrForbidden, fiber.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newJournalTestApp(&stubJournalService{submitErr: tc.err})

			body := `{"placement_id":"` + uuid.NewString() + `","date":"2026-02-02","activity_description":"x"}`
			req := httptest.NewRequest(fiber.MethodPost, "/journals/", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestJournalHandlerReviewAlreadyReviewed(t *testing.T) {
	app := newJournalTestApp(&stubJournalService{reviewErr: service.ErrAlreadyReviewed})

	req := httptest.NewRequest(fiber.MethodPatch, "/journals/"+uuid.NewString()+"/review", strings.NewReader(`{"decision":"disetujui"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestJournalHandlerListParsesDateRange(t *testing.T) {
	stub := &stubJournalService{}
	app := newJournalTestApp(stub)

	req := httptest.NewRequest(fiber.MethodGet, "/journals/?date_from=2026-02-01&date_to=2026-02-28&status=menunggu", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.NotNil(t, stub.lastList.DateFrom)
	require.NotNil(t, stub.lastList.DateTo)
	require.Equal(t, "menunggu", stub.lastList.Status)

	req = httptest.NewRequest(fiber.MethodGet, "/journals/?date_from=bukan-tanggal", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
