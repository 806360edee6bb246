package cycles

import (
	"time"

	"cyclekeeper/internal/core/model"
)

// EventType defines the kind of store change.
type EventType string

const (
	EventCycleAdded       EventType = "cycle_added"
	EventCycleInterrupted EventType = "cycle_interrupted"
	EventCycleFinished    EventType = "cycle_finished"
)

// Event describes a committed transition for observers.
type Event struct {
	Type  EventType
	Cycle model.Cycle
	State model.CycleState
	At    time.Time
}
