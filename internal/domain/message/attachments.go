package message

import (
	"fmt"

	pulse_errors "pulse-chat/pkg/errors"
)

// MaxAttachmentBytes is the hard size cap per attachment.
const MaxAttachmentBytes = 50 << 20 // 50 MB

// allowedMimeTypes is the image allow-list shared with the upload service.
var allowedMimeTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/gif":  {},
	"image/webp": {},
}

// Attachment is immutable once created. Width and Height are only populated
// for images whose dimensions could be decoded.
type Attachment struct {
	URL       string
	MimeType  string
	SizeBytes int64
	FileName  string
	Width     *int32
	Height    *int32
}

// Validate enforces the mime allow-list and the size cap. A size exactly at
// the cap passes.
func (a Attachment) Validate() error {
	if a.URL == "" {
		return fmt.Errorf("%w: attachment url is required", pulse_errors.ErrInvalidInput)
	}
	if !IsAllowedMimeType(a.MimeType) {
		return fmt.Errorf("%w: mime type %q is not allowed", pulse_errors.ErrInvalidInput, a.MimeType)
	}
	if a.SizeBytes <= 0 {
		return fmt.Errorf("%w: attachment size must be positive", pulse_errors.ErrInvalidInput)
	}
	if a.SizeBytes > MaxAttachmentBytes {
		return fmt.Errorf("%w: attachment exceeds %d bytes", pulse_errors.ErrTooLarge, MaxAttachmentBytes)
	}
	return nil
}

// IsAllowedMimeType reports whether mime is on the attachment allow-list.
func IsAllowedMimeType(mime string) bool {
	_, ok := allowedMimeTypes[mime]
	return ok
}
