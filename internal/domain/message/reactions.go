package message

import (
	"time"

	"github.com/google/uuid"
)

// ReactionAction is the externally visible outcome of a toggle.
type ReactionAction string

const (
	ReactionActionAdded   ReactionAction = "added"
	ReactionActionRemoved ReactionAction = "removed"
)

// allowedReactions is the fixed emoji set clients may react with.
var allowedReactions = []string{"❤️", "👍", "👎", "😂", "😮", "😢"}

// Reaction is keyed on (MessageID, UserID, Emoji); at most one row per key.
type Reaction struct {
	MessageID uuid.UUID
	UserID    uuid.UUID
	Emoji     string
	CreatedAt time.Time
}

// AllowedReactions returns a copy of the reaction allow-list.
func AllowedReactions() []string {
	out := make([]string, len(allowedReactions))
	copy(out, allowedReactions)
	return out
}

func isAllowedReaction(emoji string) bool {
	for _, allowed := range allowedReactions {
		if emoji == allowed {
			return true
		}
	}
	return false
}
