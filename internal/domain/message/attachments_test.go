package message

import (
	"errors"
	"testing"

	pulse_errors "pulse-chat/pkg/errors"

	"github.com/stretchr/testify/assert"
)

func TestAttachmentValidate(t *testing.T) {
	a := validAttachment()
	assert.NoError(t, a.Validate())

	a = validAttachment()
	a.URL = ""
	assert.True(t, errors.Is(a.Validate(), pulse_errors.ErrInvalidInput))

	a = validAttachment()
	a.MimeType = "video/mp4"
	assert.True(t, errors.Is(a.Validate(), pulse_errors.ErrInvalidInput))
}

func TestAttachmentSizeCap(t *testing.T) {
	a := validAttachment()
	a.SizeBytes = MaxAttachmentBytes
	assert.NoError(t, a.Validate(), "a size exactly at the cap passes")

	a.SizeBytes = MaxAttachmentBytes + 1
	assert.True(t, errors.Is(a.Validate(), pulse_errors.ErrTooLarge))
}

func TestIsAllowedMimeType(t *testing.T) {
	for _, mime := range []string{"image/jpeg", "image/png", "image/gif", "image/webp"} {
		assert.True(t, IsAllowedMimeType(mime), mime)
	}
	assert.False(t, IsAllowedMimeType("image/svg+xml"))
	assert.False(t, IsAllowedMimeType("application/pdf"))
	assert.False(t, IsAllowedMimeType(""))
}
