package cycles

import (
	"time"

	"cyclekeeper/internal/core/model"
)

// Reduce returns the state produced by applying action at now.
// The input state is never modified; unknown or nil actions return it unchanged.
func Reduce(state model.CycleState, action Action, now time.Time) model.CycleState {
	switch action := action.(type) {
	case AddNewCycle:
		next := state.Clone()
		next.Cycles = append(next.Cycles, action.Cycle.Clone())
		next.ActiveCycleID = action.Cycle.ID
		return next
	case InterruptCurrentCycle:
		return stampActive(state, func(cycle *model.Cycle) {
			cycle.InterruptedDate = &now
		})
	case MarkCurrentCycleAsFinished:
		return stampActive(state, func(cycle *model.Cycle) {
			cycle.FinishedDate = &now
		})
	default:
		return state
	}
}

func stampActive(state model.CycleState, stamp func(*model.Cycle)) model.CycleState {
	if state.ActiveCycleID == "" {
		return state
	}
	next := state.Clone()
	for index := range next.Cycles {
		cycle := &next.Cycles[index]
		if cycle.ID == state.ActiveCycleID && !cycle.Ended() {
			stamp(cycle)
		}
	}
	next.ActiveCycleID = ""
	return next
}
