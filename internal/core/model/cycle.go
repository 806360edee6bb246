package model

import "time"

// CycleStatus describes where a cycle is in its lifecycle.
type CycleStatus string

const (
	CycleActive      CycleStatus = "active"
	CycleInterrupted CycleStatus = "interrupted"
	CycleFinished    CycleStatus = "finished"
)

// Cycle is a single timed task instance.
type Cycle struct {
	ID              string     `json:"id"`
	Task            string     `json:"task"`
	MinutesAmount   int        `json:"minutes_amount"`
	StartDate       time.Time  `json:"start_date"`
	InterruptedDate *time.Time `json:"interrupted_date,omitempty"`
	FinishedDate    *time.Time `json:"finished_date,omitempty"`
}

// TotalSeconds returns the configured duration in seconds.
func (cycle Cycle) TotalSeconds() int {
	return cycle.MinutesAmount * 60
}

// Ended reports whether a terminal date has been stamped.
func (cycle Cycle) Ended() bool {
	return cycle.InterruptedDate != nil || cycle.FinishedDate != nil
}

// Status derives the lifecycle status from the terminal dates.
func (cycle Cycle) Status() CycleStatus {
	switch {
	case cycle.FinishedDate != nil:
		return CycleFinished
	case cycle.InterruptedDate != nil:
		return CycleInterrupted
	default:
		return CycleActive
	}
}

// Clone returns a copy that shares no timestamp pointers with the receiver.
func (cycle Cycle) Clone() Cycle {
	cloned := cycle
	if cycle.InterruptedDate != nil {
		value := *cycle.InterruptedDate
		cloned.InterruptedDate = &value
	}
	if cycle.FinishedDate != nil {
		value := *cycle.FinishedDate
		cloned.FinishedDate = &value
	}
	return cloned
}

// CycleState holds the cycle history and the active cycle reference.
// An empty ActiveCycleID means no cycle is running.
type CycleState struct {
	Cycles        []Cycle `json:"cycles"`
	ActiveCycleID string  `json:"active_cycle_id,omitempty"`
}

// ActiveCycle returns the cycle referenced by ActiveCycleID.
func (state CycleState) ActiveCycle() (Cycle, bool) {
	if state.ActiveCycleID == "" {
		return Cycle{}, false
	}
	for _, cycle := range state.Cycles {
		if cycle.ID == state.ActiveCycleID {
			return cycle, true
		}
	}
	return Cycle{}, false
}

// Clone deep-copies the state.
func (state CycleState) Clone() CycleState {
	cloned := CycleState{ActiveCycleID: state.ActiveCycleID}
	if state.Cycles != nil {
		cloned.Cycles = make([]Cycle, len(state.Cycles))
		for index, cycle := range state.Cycles {
			cloned.Cycles[index] = cycle.Clone()
		}
	}
	return cloned
}
