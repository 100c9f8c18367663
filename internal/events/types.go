package events

// Typed events pushed to live connections. One of several event consumers may
// feed these; the fan-out service only ever emits this set.
const (
	TypeMessageNew          = "message:new"
	TypeMessageUpdated      = "message:updated"
	TypeMessageDeleted      = "message:deleted"
	TypeReactionAdded       = "reaction:added"
	TypeReactionRemoved     = "reaction:removed"
	TypeConversationRead    = "conversation:read"
	TypeConversationCreated = "conversation:created"
	TypeConnectionReady     = "connection:ready"
)

// Redis channel prefix for per-user delivery across instances.
const ChannelPrefixUser = "channel:user:"

// UserChannel returns the pub/sub channel carrying pushes for userID.
func UserChannel(userID string) string {
	return ChannelPrefixUser + userID
}
