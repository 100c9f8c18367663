package services

import (
	"context"
	"errors"
	"testing"
	"time"

	pulse_errors "pulse-chat/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := NewAuthService("test-secret")
	userID := uuid.New()

	token, err := svc.IssueAccessToken(userID, time.Hour)
	require.NoError(t, err)

	claims, err := svc.ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
}

func TestParseAccessTokenRejections(t *testing.T) {
	svc := NewAuthService("test-secret")

	_, err := svc.ParseAccessToken("")
	assert.True(t, errors.Is(err, pulse_errors.ErrUnauthorized))

	_, err = svc.ParseAccessToken("not-a-jwt")
	assert.True(t, errors.Is(err, pulse_errors.ErrUnauthorized))

	// Token signed with a different secret.
	other := NewAuthService("other-secret")
	token, err := other.IssueAccessToken(uuid.New(), time.Hour)
	require.NoError(t, err)
	_, err = svc.ParseAccessToken(token)
	assert.True(t, errors.Is(err, pulse_errors.ErrUnauthorized))

	// Expired token.
	token, err = svc.IssueAccessToken(uuid.New(), -time.Minute)
	require.NoError(t, err)
	_, err = svc.ParseAccessToken(token)
	assert.True(t, errors.Is(err, pulse_errors.ErrUnauthorized))
}

func TestUserIDContext(t *testing.T) {
	userID := uuid.New()
	ctx := WithUserID(context.Background(), userID)

	got, ok := UserIDFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, userID, got)

	_, ok = UserIDFromContext(context.Background())
	assert.False(t, ok)
}
