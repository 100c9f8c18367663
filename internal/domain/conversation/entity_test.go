package conversation

import (
	"errors"
	"testing"
	"time"

	pulse_errors "pulse-chat/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	creator := uuid.New()
	recipient := uuid.New()
	now := time.Now()

	c, err := New(creator, recipient, now)
	require.NoError(t, err)

	assert.Equal(t, creator, c.CreatedBy)
	assert.True(t, c.IsParticipant(creator))
	assert.True(t, c.IsParticipant(recipient))
	assert.False(t, c.IsParticipant(uuid.New()))
	assert.Len(t, c.ParticipantIDs(), 2)

	events := c.Events()
	require.Len(t, events, 1)
	created, ok := events[0].(Created)
	require.True(t, ok)
	assert.Equal(t, c.ID, created.ConversationID)
	assert.ElementsMatch(t, c.ParticipantIDs(), created.ParticipantIDs)
}

func TestNewRejectsInvalidPairs(t *testing.T) {
	now := time.Now()
	id := uuid.New()

	_, err := New(uuid.Nil, id, now)
	assert.True(t, errors.Is(err, pulse_errors.ErrInvalidInput))

	_, err = New(id, uuid.Nil, now)
	assert.True(t, errors.Is(err, pulse_errors.ErrInvalidInput))

	_, err = New(id, id, now)
	assert.True(t, errors.Is(err, pulse_errors.ErrInvalidInput))
}

func TestMarkReadAdvancesWatermark(t *testing.T) {
	creator := uuid.New()
	recipient := uuid.New()
	base := time.Now()

	c, err := New(creator, recipient, base)
	require.NoError(t, err)
	c.ClearEvents()

	advanced, err := c.MarkRead(creator, base.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, advanced)
	require.NotNil(t, c.LastReadAt(creator))
	assert.Equal(t, base.Add(time.Minute), *c.LastReadAt(creator))
	assert.Len(t, c.Events(), 1)

	// The other participant's watermark is untouched.
	assert.Nil(t, c.LastReadAt(recipient))
}

func TestMarkReadIsMonotonic(t *testing.T) {
	creator := uuid.New()
	recipient := uuid.New()
	base := time.Now()

	c, err := New(creator, recipient, base)
	require.NoError(t, err)
	c.ClearEvents()

	_, err = c.MarkRead(creator, base.Add(time.Hour))
	require.NoError(t, err)
	c.ClearEvents()

	advanced, err := c.MarkRead(creator, base.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, advanced)
	assert.Empty(t, c.Events())
	assert.Equal(t, base.Add(time.Hour), *c.LastReadAt(creator))
}

func TestMarkReadRejectsNonParticipant(t *testing.T) {
	c, err := New(uuid.New(), uuid.New(), time.Now())
	require.NoError(t, err)

	_, err = c.MarkRead(uuid.New(), time.Now())
	assert.True(t, errors.Is(err, pulse_errors.ErrForbidden))
}

func TestTouchUpdatesPreview(t *testing.T) {
	c, err := New(uuid.New(), uuid.New(), time.Now())
	require.NoError(t, err)

	content := "hey"
	at := time.Now().Add(time.Second)
	c.Touch(LastMessage{
		MessageID: uuid.New(),
		SenderID:  c.CreatedBy,
		Content:   &content,
		SentAt:    at,
	}, at)

	require.NotNil(t, c.LastMessage)
	assert.Equal(t, "hey", *c.LastMessage.Content)
	assert.Equal(t, at, c.UpdatedAt)
}
