package cycles

import "cyclekeeper/internal/core/model"

// Action is one of the closed set of cycle transitions.
type Action interface {
	isAction()
	Name() string
}

// AddNewCycle appends a cycle and makes it active.
type AddNewCycle struct {
	Cycle model.Cycle
}

// InterruptCurrentCycle stamps the active cycle as interrupted.
type InterruptCurrentCycle struct{}

// MarkCurrentCycleAsFinished stamps the active cycle as finished.
type MarkCurrentCycleAsFinished struct{}

func (AddNewCycle) isAction()                {}
func (InterruptCurrentCycle) isAction()      {}
func (MarkCurrentCycleAsFinished) isAction() {}

func (AddNewCycle) Name() string                { return "add_new_cycle" }
func (InterruptCurrentCycle) Name() string      { return "interrupt_current_cycle" }
func (MarkCurrentCycleAsFinished) Name() string { return "mark_current_cycle_as_finished" }
