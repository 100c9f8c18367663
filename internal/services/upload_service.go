package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"path"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"pulse-chat/internal/domain/message"
	pulse_errors "pulse-chat/pkg/errors"
	"pulse-chat/pkg/logger"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// BlobStore persists attachment bytes and returns a public URL. Implemented
// by the S3 client.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// UploadService validates and stores attachment bytes. It enforces the same
// allow-list and size cap as the message aggregate: both layers validate.
type UploadService struct {
	store BlobStore
	log   *logger.Logger
}

func NewUploadService(store BlobStore, log *logger.Logger) *UploadService {
	return &UploadService{store: store, log: log}
}

// Upload sniffs the real content type, validates it against the attachment
// rules and stores the bytes, returning canonical attachment metadata. The
// declared mime type is advisory only; the sniffed type wins.
func (s *UploadService) Upload(ctx context.Context, uploaderID uuid.UUID, fileName, declaredMime string, data []byte) (message.Attachment, error) {
	if s.store == nil {
		return message.Attachment{}, fmt.Errorf("%w: attachment storage is not configured", pulse_errors.ErrUnavailable)
	}
	if len(data) == 0 {
		return message.Attachment{}, fmt.Errorf("%w: empty upload", pulse_errors.ErrInvalidInput)
	}
	if int64(len(data)) > message.MaxAttachmentBytes {
		return message.Attachment{}, fmt.Errorf("%w: upload exceeds %d bytes", pulse_errors.ErrTooLarge, message.MaxAttachmentBytes)
	}

	detected := mimetype.Detect(data)
	mime := strings.Split(detected.String(), ";")[0]
	if !message.IsAllowedMimeType(mime) {
		return message.Attachment{}, fmt.Errorf("%w: mime type %q is not allowed", pulse_errors.ErrInvalidInput, mime)
	}
	if declaredMime != "" && !strings.EqualFold(strings.Split(declaredMime, ";")[0], mime) {
		s.log.Warnf("upload: declared mime %q differs from detected %q", declaredMime, mime)
	}

	attachment := message.Attachment{
		MimeType:  mime,
		SizeBytes: int64(len(data)),
		FileName:  path.Base(fileName),
	}
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		w, h := int32(cfg.Width), int32(cfg.Height)
		attachment.Width = &w
		attachment.Height = &h
	}

	key := fmt.Sprintf("attachments/%s/%s%s", uploaderID, uuid.New(), detected.Extension())
	url, err := s.store.Put(ctx, key, data, mime)
	if err != nil {
		return message.Attachment{}, fmt.Errorf("%w: storing attachment: %v", pulse_errors.ErrUnavailable, err)
	}
	attachment.URL = url

	if err := attachment.Validate(); err != nil {
		return message.Attachment{}, err
	}
	return attachment, nil
}
