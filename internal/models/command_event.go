package models

import "time"

// Audit event types.
const (
	EventLogin      = "LOGIN"
	EventLogout     = "LOGOUT"
	EventACCommand  = "AC_COMMAND"
	EventBlinds     = "BLINDS_COMMAND"
	EventTargetTemp = "TARGET_TEMP"
	EventRoomBlinds = "ROOM_BLINDS"
)

// CommandEvent is a single audit log entry for an operator action against
// the gateway. Only actions are persisted, never polled sensor values.
type CommandEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"` // LOGIN | LOGOUT | AC_COMMAND | BLINDS_COMMAND | TARGET_TEMP | ROOM_BLINDS
	Description string    `json:"description"`
	Metadata    any       `json:"metadata,omitempty"`
}
