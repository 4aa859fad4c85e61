package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"github.com/smkdev-id/simagang-api/internal/models"
)

// maxAttachmentSize caps journal attachment uploads at 5 MB. The core treats
// the stored attachment as an opaque URL; these limits live here on the
// caller side.
const maxAttachmentSize = 5 << 20

var allowedAttachmentTypes = []string{
	"image/jpeg",
	"image/png",
	"image/webp",
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// Upload validation errors.
var (
	ErrAttachmentTooLarge    = errors.New("attachment exceeds the 5 MB limit")
	ErrUnsupportedAttachment = errors.New("attachment type must be an image, pdf, or document")
)

// FileUploader stores a blob and returns an opaque URL for it.
type FileUploader interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// UploadService validates and stores journal attachments in the external
// blob store.
type UploadService interface {
	UploadJournalAttachment(ctx context.Context, actor Actor, filename string, reader io.Reader) (string, error)
}

type uploadService struct {
	uploader FileUploader
	logger   zerolog.Logger
}

// NewUploadService constructs the attachment upload service.
func NewUploadService(uploader FileUploader, logger zerolog.Logger) UploadService {
	return &uploadService{
		uploader: uploader,
		logger:   logger.With().Str("component", "upload_service").Logger(),
	}
}

func (s *uploadService) UploadJournalAttachment(ctx context.Context, actor Actor, filename string, reader io.Reader) (string, error) {
	if actor.Role != models.RoleSiswa {
		return "", ErrForbidden
	}

	payload, err := io.ReadAll(io.LimitReader(reader, maxAttachmentSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read attachment: %w", err)
	}
	if len(payload) > maxAttachmentSize {
		return "", ErrAttachmentTooLarge
	}

	detected := mimetype.Detect(payload)
	if !attachmentTypeAllowed(detected.String()) {
		return "", ErrUnsupportedAttachment
	}

	url, err := s.uploader.Upload(ctx, filename, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to store attachment: %w", err)
	}

	s.logger.Info().Str("filename", filename).Str("mime", detected.String()).Msg("journal attachment uploaded")

	return url, nil
}

func attachmentTypeAllowed(mime string) bool {
	for _, allowed := range allowedAttachmentTypes {
		if mime == allowed {
			return true
		}
	}
	return false
}
