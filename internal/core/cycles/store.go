package cycles

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cyclekeeper/internal/core/model"
)

// Store holds the cycle state and applies transitions atomically.
type Store struct {
	mu     sync.Mutex
	state  model.CycleState
	clock  Clock
	events []chan Event
	closed bool
	logger *zap.Logger
}

// NewStore creates an empty store.
func NewStore(clock Clock, logger *zap.Logger) *Store {
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		clock:  clock,
		logger: logger,
	}
}

// NewCycle builds a cycle with a fresh id. Inputs are expected to be validated.
func NewCycle(task string, minutesAmount int, start time.Time) model.Cycle {
	return model.Cycle{
		ID:            uuid.NewString(),
		Task:          task,
		MinutesAmount: minutesAmount,
		StartDate:     start,
	}
}

// Clock returns the store's time source.
func (store *Store) Clock() Clock {
	return store.clock
}

// Dispatch applies action and returns the resulting state.
func (store *Store) Dispatch(action Action) model.CycleState {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.applyLocked(action)
}

func (store *Store) applyLocked(action Action) model.CycleState {
	now := store.clock.Now()
	previous := store.state
	next := Reduce(previous, action, now)
	store.state = next

	event, changed := transitionEvent(previous, next, action, now)
	if !changed {
		if action == nil {
			store.logger.Debug("ignored nil cycle action")
		} else {
			store.logger.Debug("cycle action was a no-op", zap.String("action", action.Name()))
		}
		return next.Clone()
	}

	store.logger.Info("cycle transition",
		zap.String("event", string(event.Type)),
		zap.String("cycle_id", event.Cycle.ID),
		zap.String("task", event.Cycle.Task),
	)
	store.emitLocked(event)
	return next.Clone()
}

// AddNewCycle appends cycle and makes it active.
func (store *Store) AddNewCycle(cycle model.Cycle) {
	store.Dispatch(AddNewCycle{Cycle: cycle})
}

// StartCycle adds cycle only when no other cycle is running and reports whether it did.
func (store *Store) StartCycle(cycle model.Cycle) bool {
	store.mu.Lock()
	defer store.mu.Unlock()
	if _, active := store.state.ActiveCycle(); active {
		store.logger.Debug("refused to start cycle while another is active", zap.String("task", cycle.Task))
		return false
	}
	store.applyLocked(AddNewCycle{Cycle: cycle})
	return true
}

// InterruptCurrentCycle stamps the active cycle as interrupted, if any.
func (store *Store) InterruptCurrentCycle() {
	store.Dispatch(InterruptCurrentCycle{})
}

// MarkCurrentCycleAsFinished stamps the active cycle as finished, if any.
func (store *Store) MarkCurrentCycleAsFinished() {
	store.Dispatch(MarkCurrentCycleAsFinished{})
}

// FinishCycle marks the active cycle as finished only if it is still cycleID.
func (store *Store) FinishCycle(cycleID string) {
	store.dispatchFor(cycleID, MarkCurrentCycleAsFinished{})
}

// InterruptCycle interrupts the active cycle only if it is still cycleID.
func (store *Store) InterruptCycle(cycleID string) {
	store.dispatchFor(cycleID, InterruptCurrentCycle{})
}

func (store *Store) dispatchFor(cycleID string, action Action) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.state.ActiveCycleID != cycleID {
		store.logger.Debug("skipped transition for stale cycle",
			zap.String("action", action.Name()),
			zap.String("cycle_id", cycleID),
		)
		return
	}
	store.applyLocked(action)
}

// State returns a deep copy of the current state.
func (store *Store) State() model.CycleState {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.state.Clone()
}

// ActiveCycle returns the running cycle, if any.
func (store *Store) ActiveCycle() (model.Cycle, bool) {
	store.mu.Lock()
	defer store.mu.Unlock()
	cycle, ok := store.state.ActiveCycle()
	if !ok {
		return model.Cycle{}, false
	}
	return cycle.Clone(), true
}

// Cycles returns the history in insertion order.
func (store *Store) Cycles() []model.Cycle {
	return store.State().Cycles
}

// Subscribe registers a new observer channel.
func (store *Store) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.closed {
		close(ch)
		return ch
	}
	store.events = append(store.events, ch)
	return ch
}

// Close closes all observer channels.
func (store *Store) Close() {
	store.mu.Lock()
	if store.closed {
		store.mu.Unlock()
		return
	}
	store.closed = true
	events := store.events
	store.events = nil
	store.mu.Unlock()

	for _, ch := range events {
		close(ch)
	}
}

func (store *Store) emitLocked(event Event) {
	for _, ch := range store.events {
		select {
		case ch <- event:
		default:
			store.logger.Warn("dropped cycle event for slow observer", zap.String("event", string(event.Type)))
		}
	}
}

func transitionEvent(previous, next model.CycleState, action Action, now time.Time) (Event, bool) {
	switch action := action.(type) {
	case AddNewCycle:
		return Event{Type: EventCycleAdded, Cycle: action.Cycle.Clone(), State: next.Clone(), At: now}, true
	case InterruptCurrentCycle, MarkCurrentCycleAsFinished:
		if previous.ActiveCycleID == "" {
			return Event{}, false
		}
		eventType := EventCycleInterrupted
		if _, finished := action.(MarkCurrentCycleAsFinished); finished {
			eventType = EventCycleFinished
		}
		var stamped model.Cycle
		for _, cycle := range next.Cycles {
			if cycle.ID == previous.ActiveCycleID {
				stamped = cycle.Clone()
				break
			}
		}
		return Event{Type: eventType, Cycle: stamped, State: next.Clone(), At: now}, true
	default:
		return Event{}, false
	}
}
