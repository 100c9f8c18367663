package websocket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubPushToUserReachesEveryConnection(t *testing.T) {
	hub := NewHub()
	first := NewClient(nil, "user-a")
	second := NewClient(nil, "user-a")
	other := NewClient(nil, "user-b")

	hub.Register(first)
	hub.Register(second)
	hub.Register(other)

	hub.PushToUser("user-a", []byte("frame"))

	assert.Len(t, first.Send, 1)
	assert.Len(t, second.Send, 1)
	assert.Empty(t, other.Send)
}

func TestHubPushToUnknownUserIsANoOp(t *testing.T) {
	hub := NewHub()
	assert.NotPanics(t, func() {
		hub.PushToUser("nobody", []byte("frame"))
	})
}

func TestHubUnregister(t *testing.T) {
	hub := NewHub()
	first := NewClient(nil, "user-a")
	second := NewClient(nil, "user-a")

	hub.Register(first)
	hub.Register(second)
	require.True(t, hub.IsUserConnected("user-a"))
	assert.Equal(t, 2, hub.ConnectionCount())

	last := hub.Unregister(first)
	assert.False(t, last, "one connection remains")
	assert.True(t, hub.IsUserConnected("user-a"))

	last = hub.Unregister(second)
	assert.True(t, last)

	// The removal is visible the moment Unregister returns, so the
	// caller can trust IsUserConnected for the offline decision.
	assert.False(t, hub.IsUserConnected("user-a"))
	assert.Zero(t, hub.ConnectionCount())

	// Unregistering twice is safe.
	assert.False(t, hub.Unregister(second))
}

func TestClientSendMessageDropsWhenFull(t *testing.T) {
	client := NewClient(nil, "user-a")
	for i := 0; i < sendBuffer; i++ {
		client.SendMessage([]byte("frame"))
	}
	require.Len(t, client.Send, sendBuffer)

	// A slow consumer misses frames instead of blocking the hub.
	assert.NotPanics(t, func() {
		client.SendMessage([]byte("overflow"))
	})
	assert.Len(t, client.Send, sendBuffer)
}
