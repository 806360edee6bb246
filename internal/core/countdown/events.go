package countdown

import "time"

// EventType defines the type of Deriver event.
type EventType string

const (
	EventActivated     EventType = "activated"
	EventProgress      EventType = "progress"
	EventExpired       EventType = "expired"
	EventDeactivated   EventType = "deactivated"
	EventIdleInterrupt EventType = "idle_interrupt"
	EventIdleError     EventType = "idle_error"
)

// Event represents a countdown update for observers.
type Event struct {
	Type    EventType
	CycleID string
	Display Display
	Message string
	At      time.Time
}
