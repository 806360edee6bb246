package countdown

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"cyclekeeper/internal/core/cycles"
	"cyclekeeper/internal/core/model"
)

// DefaultIdleTitle is shown as the window title while no cycle runs.
const DefaultIdleTitle = "CycleKeeper"

// ActiveCycleReader gives read access to the running cycle.
type ActiveCycleReader interface {
	ActiveCycle() (model.Cycle, bool)
}

// Transitions are the store capabilities the Deriver may invoke.
// Each receives the id of the cycle the ticker was serving.
type Transitions struct {
	Finish    func(cycleID string)
	Interrupt func(cycleID string)
}

// Config contains runtime options for the Deriver.
type Config struct {
	TickInterval       time.Duration
	IdleTitle          string
	IdleInterruptAfter time.Duration
	IdleCheckInterval  time.Duration
	// SetTitle receives the window title whenever it changes. It must not call back into the Deriver.
	SetTitle func(title string)
}

// Deriver turns the active cycle into a live countdown.
type Deriver struct {
	syncMu              sync.Mutex
	mu                  sync.Mutex
	reader              ActiveCycleReader
	transitions         Transitions
	clock               cycles.Clock
	options             Config
	idleChecker         IdleChecker
	idleDisabled        bool
	lastIdleCheck       time.Time
	cycle               model.Cycle
	amountSecondsPassed int
	cancel              context.CancelFunc
	running             bool
	stopped             bool
	title               string
	events              []chan Event
	wg                  sync.WaitGroup
	logger              *zap.Logger
}

// New creates a Deriver reading from reader and finishing cycles through transitions.
func New(reader ActiveCycleReader, transitions Transitions, clock cycles.Clock, options Config, logger *zap.Logger) *Deriver {
	if clock == nil {
		clock = cycles.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Deriver{
		reader:      reader,
		transitions: transitions,
		clock:       clock,
		options:     normalizeConfig(options),
		logger:      logger,
	}
}

func normalizeConfig(options Config) Config {
	if options.TickInterval <= 0 {
		options.TickInterval = time.Second
	}
	if options.IdleTitle == "" {
		options.IdleTitle = DefaultIdleTitle
	}
	if options.IdleCheckInterval <= 0 {
		options.IdleCheckInterval = 5 * time.Second
	}
	return options
}

// SetIdleChecker injects an idle checker.
func (deriver *Deriver) SetIdleChecker(checker IdleChecker) {
	deriver.mu.Lock()
	defer deriver.mu.Unlock()
	deriver.idleChecker = checker
	deriver.idleDisabled = false
}

// UpdateConfig replaces idle options and the title label. The tick interval applies to the next cycle.
func (deriver *Deriver) UpdateConfig(options Config) {
	deriver.mu.Lock()
	defer deriver.mu.Unlock()
	if options.SetTitle == nil {
		options.SetTitle = deriver.options.SetTitle
	}
	deriver.options = normalizeConfig(options)
	deriver.publishTitleLocked()
}

// Subscribe registers a new observer channel.
func (deriver *Deriver) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	deriver.mu.Lock()
	defer deriver.mu.Unlock()
	if deriver.stopped {
		close(ch)
		return ch
	}
	deriver.events = append(deriver.events, ch)
	return ch
}

// Display returns the current countdown values.
func (deriver *Deriver) Display() Display {
	deriver.mu.Lock()
	defer deriver.mu.Unlock()
	return deriver.displayLocked()
}

// Title returns the current window title.
func (deriver *Deriver) Title() string {
	deriver.mu.Lock()
	defer deriver.mu.Unlock()
	return deriver.displayLocked().Title(deriver.options.IdleTitle)
}

// Snapshot returns the display and the window title read under one lock.
func (deriver *Deriver) Snapshot() (Display, string) {
	deriver.mu.Lock()
	defer deriver.mu.Unlock()
	display := deriver.displayLocked()
	return display, display.Title(deriver.options.IdleTitle)
}

// Running reports whether a ticker is live.
func (deriver *Deriver) Running() bool {
	deriver.mu.Lock()
	defer deriver.mu.Unlock()
	return deriver.running
}

// Sync reschedules the ticker when the active cycle changed.
// Any previous ticker is cancelled before a new one starts.
// Concurrent calls are serialized so the last read of the store is the one applied.
func (deriver *Deriver) Sync() {
	deriver.syncMu.Lock()
	defer deriver.syncMu.Unlock()

	cycle, ok := deriver.reader.ActiveCycle()

	deriver.mu.Lock()
	defer deriver.mu.Unlock()
	if deriver.stopped {
		return
	}
	if ok && cycle.ID == deriver.cycle.ID {
		return
	}
	if !ok && deriver.cycle.ID == "" {
		deriver.publishTitleLocked()
		return
	}

	deriver.cancelLocked()
	now := deriver.clock.Now()

	if !ok {
		previousID := deriver.cycle.ID
		deriver.cycle = model.Cycle{}
		deriver.logger.Debug("countdown idle", zap.String("cycle_id", previousID))
		deriver.emitLocked(Event{Type: EventDeactivated, CycleID: previousID, Display: deriver.displayLocked(), At: now})
		deriver.publishTitleLocked()
		return
	}

	deriver.cycle = cycle
	deriver.amountSecondsPassed = 0
	deriver.lastIdleCheck = time.Time{}

	ctx, cancel := context.WithCancel(context.Background())
	deriver.cancel = cancel
	deriver.running = true
	deriver.wg.Add(1)
	go deriver.run(ctx, cycle.ID, deriver.options.TickInterval)

	deriver.logger.Debug("countdown scheduled",
		zap.String("cycle_id", cycle.ID),
		zap.Int("total_seconds", cycle.TotalSeconds()),
	)
	deriver.emitLocked(Event{Type: EventActivated, CycleID: cycle.ID, Display: deriver.displayLocked(), At: now})
	deriver.publishTitleLocked()
}

// Watch calls Sync for every store event until ctx is done or events is closed.
func (deriver *Deriver) Watch(ctx context.Context, events <-chan cycles.Event) {
	deriver.Sync()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-events:
			if !ok {
				return
			}
			deriver.Sync()
		}
	}
}

// Stop cancels the ticker and closes observers.
func (deriver *Deriver) Stop() {
	deriver.mu.Lock()
	if deriver.stopped {
		deriver.mu.Unlock()
		return
	}
	deriver.stopped = true
	deriver.cancelLocked()
	events := deriver.events
	deriver.events = nil
	deriver.mu.Unlock()

	deriver.wg.Wait()
	for _, ch := range events {
		close(ch)
	}
}

func (deriver *Deriver) run(ctx context.Context, cycleID string, interval time.Duration) {
	defer deriver.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !deriver.tick(cycleID, deriver.clock.Now()) {
				return
			}
		}
	}
}

// tick recomputes elapsed time from absolute timestamps and reports whether ticking continues.
func (deriver *Deriver) tick(cycleID string, now time.Time) bool {
	deriver.mu.Lock()
	if deriver.stopped || deriver.cycle.ID != cycleID {
		deriver.mu.Unlock()
		return false
	}

	totalSeconds := deriver.cycle.TotalSeconds()
	secondsDifference := SecondsBetween(now, deriver.cycle.StartDate)
	expired := secondsDifference >= totalSeconds

	// A late tick settles on whichever happened first: the end of the cycle or the idle threshold.
	crossedAt, idle := deriver.idleCrossedLocked(now, !expired)
	if idle && (!expired || crossedAt.Before(deriver.cycle.StartDate.Add(time.Duration(totalSeconds)*time.Second))) {
		deriver.running = false
		deriver.emitLocked(Event{Type: EventIdleInterrupt, CycleID: cycleID, Display: deriver.displayLocked(), At: now})
		deriver.mu.Unlock()
		deriver.logger.Info("cycle interrupted after inactivity",
			zap.String("cycle_id", cycleID),
			zap.Time("idle_since", crossedAt),
		)
		if deriver.transitions.Interrupt != nil {
			deriver.transitions.Interrupt(cycleID)
		}
		return false
	}

	if expired {
		deriver.amountSecondsPassed = totalSeconds
		deriver.running = false
		deriver.emitLocked(Event{Type: EventExpired, CycleID: cycleID, Display: deriver.displayLocked(), At: now})
		deriver.publishTitleLocked()
		deriver.mu.Unlock()
		deriver.logger.Info("cycle expired", zap.String("cycle_id", cycleID))
		if deriver.transitions.Finish != nil {
			deriver.transitions.Finish(cycleID)
		}
		return false
	}

	if secondsDifference < 0 {
		secondsDifference = 0
	}
	deriver.amountSecondsPassed = secondsDifference
	deriver.emitLocked(Event{Type: EventProgress, CycleID: cycleID, Display: deriver.displayLocked(), At: now})
	deriver.publishTitleLocked()
	deriver.mu.Unlock()
	return true
}

// idleCrossedLocked reports whether the user is past the idle threshold and the instant the threshold was crossed.
// With throttle set, checks closer together than IdleCheckInterval are skipped.
func (deriver *Deriver) idleCrossedLocked(now time.Time, throttle bool) (time.Time, bool) {
	if deriver.options.IdleInterruptAfter <= 0 || deriver.idleChecker == nil || deriver.idleDisabled {
		return time.Time{}, false
	}
	if throttle && !deriver.lastIdleCheck.IsZero() && now.Sub(deriver.lastIdleCheck) < deriver.options.IdleCheckInterval {
		return time.Time{}, false
	}
	deriver.lastIdleCheck = now

	idleDuration, err := deriver.idleChecker.IdleDuration()
	if err != nil {
		if errors.Is(err, ErrIdleUnsupported) {
			deriver.idleDisabled = true
		}
		deriver.logger.Warn("idle check failed", zap.Error(err))
		deriver.emitLocked(Event{
			Type:    EventIdleError,
			CycleID: deriver.cycle.ID,
			Display: deriver.displayLocked(),
			Message: err.Error(),
			At:      now,
		})
		return time.Time{}, false
	}
	if idleDuration < deriver.options.IdleInterruptAfter {
		return time.Time{}, false
	}
	return now.Add(deriver.options.IdleInterruptAfter - idleDuration), true
}

func (deriver *Deriver) cancelLocked() {
	if deriver.cancel != nil {
		deriver.cancel()
		deriver.cancel = nil
	}
	deriver.running = false
}

func (deriver *Deriver) displayLocked() Display {
	active := deriver.cycle.ID != ""
	display := Derive(deriver.cycle.TotalSeconds(), deriver.amountSecondsPassed, active)
	display.CycleID = deriver.cycle.ID
	display.Task = deriver.cycle.Task
	return display
}

func (deriver *Deriver) publishTitleLocked() {
	title := deriver.displayLocked().Title(deriver.options.IdleTitle)
	if title == deriver.title {
		return
	}
	deriver.title = title
	if deriver.options.SetTitle != nil {
		deriver.options.SetTitle(title)
	}
}

func (deriver *Deriver) emitLocked(event Event) {
	for _, ch := range deriver.events {
		select {
		case ch <- event:
		default:
		}
	}
}
