package httpdto

import "time"

// PresenceResponse reports a user's connectivity. LastSeen is absent
// for users that never connected.
type PresenceResponse struct {
	UserID   string     `json:"user_id"`
	IsOnline bool       `json:"is_online"`
	LastSeen *time.Time `json:"last_seen,omitempty"`
}
