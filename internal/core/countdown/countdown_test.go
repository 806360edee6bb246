package countdown

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cyclekeeper/internal/core/cycles"
	"cyclekeeper/internal/core/model"
)

var t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (clock *fakeClock) Now() time.Time {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	return clock.now
}

func (clock *fakeClock) Set(now time.Time) {
	clock.mu.Lock()
	clock.now = now
	clock.mu.Unlock()
}

type titleRecorder struct {
	mu     sync.Mutex
	titles []string
}

func (recorder *titleRecorder) Set(title string) {
	recorder.mu.Lock()
	recorder.titles = append(recorder.titles, title)
	recorder.mu.Unlock()
}

func (recorder *titleRecorder) Last() string {
	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	if len(recorder.titles) == 0 {
		return ""
	}
	return recorder.titles[len(recorder.titles)-1]
}

type fixture struct {
	clock   *fakeClock
	store   *cycles.Store
	deriver *Deriver
	titles  *titleRecorder
}

// newFixture uses an hour-long tick so tests drive ticks by hand.
func newFixture(t *testing.T, options Config) *fixture {
	t.Helper()
	clock := &fakeClock{now: t0}
	store := cycles.NewStore(clock, nil)
	titles := &titleRecorder{}
	if options.TickInterval == 0 {
		options.TickInterval = time.Hour
	}
	options.SetTitle = titles.Set
	deriver := New(store, Transitions{
		Finish:    store.FinishCycle,
		Interrupt: store.InterruptCycle,
	}, clock, options, nil)
	t.Cleanup(deriver.Stop)
	return &fixture{clock: clock, store: store, deriver: deriver, titles: titles}
}

func (f *fixture) start(task string, minutes int) model.Cycle {
	cycle := cycles.NewCycle(task, minutes, f.clock.Now())
	f.store.AddNewCycle(cycle)
	f.deriver.Sync()
	return cycle
}

func TestDerive(t *testing.T) {
	tests := []struct {
		name        string
		total       int
		passed      int
		active      bool
		wantCurrent int
		wantClock   string
	}{
		{name: "fresh cycle", total: 1500, passed: 0, active: true, wantCurrent: 1500, wantClock: "25:00"},
		{name: "ten seconds in", total: 60, passed: 10, active: true, wantCurrent: 50, wantClock: "00:50"},
		{name: "expired", total: 60, passed: 60, active: true, wantCurrent: 0, wantClock: "00:00"},
		{name: "overrun clamps", total: 60, passed: 75, active: true, wantCurrent: 0, wantClock: "00:00"},
		{name: "inactive", total: 60, passed: 10, active: false, wantCurrent: 0, wantClock: "00:00"},
		{name: "long cycle", total: 600 * 60, passed: 1, active: true, wantCurrent: 35999, wantClock: "599:59"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			display := Derive(tt.total, tt.passed, tt.active)
			assert.Equal(t, tt.wantCurrent, display.CurrentSeconds)
			assert.Equal(t, tt.wantClock, display.Clock())
			assert.Equal(t, tt.wantCurrent/60, display.MinutesAmount)
			assert.Equal(t, tt.wantCurrent%60, display.SecondsAmount)
		})
	}
}

func TestSecondsBetweenTruncates(t *testing.T) {
	assert.Equal(t, 10, SecondsBetween(t0.Add(10*time.Second+999*time.Millisecond), t0))
	assert.Equal(t, 0, SecondsBetween(t0.Add(-500*time.Millisecond), t0))
	assert.Equal(t, -2, SecondsBetween(t0.Add(-2*time.Second), t0))
}

func TestDisplayTitleAndProgress(t *testing.T) {
	display := Derive(60, 15, true)
	assert.Equal(t, "00:45", display.Title("idle"))
	assert.InDelta(t, 0.25, display.Progress(), 1e-9)

	idle := Derive(0, 0, false)
	assert.Equal(t, "idle", idle.Title("idle"))
	assert.Zero(t, idle.Progress())
}

func TestTickDerivesFromWallClock(t *testing.T) {
	f := newFixture(t, Config{})
	cycle := f.start("Write docs", 1)

	f.clock.Set(t0.Add(10 * time.Second))
	require.True(t, f.deriver.tick(cycle.ID, f.clock.Now()))

	display := f.deriver.Display()
	assert.Equal(t, 10, display.AmountSecondsPassed)
	assert.Equal(t, 50, display.CurrentSeconds)
	assert.Equal(t, "00", display.Minutes)
	assert.Equal(t, "50", display.Seconds)
	assert.Equal(t, "00:50", f.titles.Last())

	// A delayed tick jumps straight to the wall-clock value.
	f.clock.Set(t0.Add(42 * time.Second))
	require.True(t, f.deriver.tick(cycle.ID, f.clock.Now()))
	assert.Equal(t, 42, f.deriver.Display().AmountSecondsPassed)
}

func TestTickExpiryFinishesCycle(t *testing.T) {
	f := newFixture(t, Config{})
	cycle := f.start("Write docs", 1)
	events := f.deriver.Subscribe(8)

	f.clock.Set(t0.Add(61 * time.Second))
	assert.False(t, f.deriver.tick(cycle.ID, f.clock.Now()))

	display := f.deriver.Display()
	assert.Equal(t, 60, display.AmountSecondsPassed)
	assert.Equal(t, 0, display.CurrentSeconds)
	assert.False(t, f.deriver.Running())

	expired := <-events
	assert.Equal(t, EventExpired, expired.Type)
	assert.Equal(t, "00:00", expired.Display.Clock())

	history := f.store.Cycles()
	require.Len(t, history, 1)
	require.NotNil(t, history[0].FinishedDate)
	assert.Nil(t, history[0].InterruptedDate)
	_, active := f.store.ActiveCycle()
	assert.False(t, active)

	f.deriver.Sync()
	assert.Equal(t, DefaultIdleTitle, f.titles.Last())
	assert.Equal(t, "00:00", f.deriver.Display().Clock())

	// The stale ticker must not revive the cycle.
	assert.False(t, f.deriver.tick(cycle.ID, t0.Add(2*time.Minute)))
}

func TestTwentyFiveMinuteScenario(t *testing.T) {
	f := newFixture(t, Config{})
	cycle := f.start("Write docs", 25)
	assert.Equal(t, "25:00", f.titles.Last())

	f.clock.Set(t0.Add(1500 * time.Second))
	f.deriver.tick(cycle.ID, f.clock.Now())
	f.deriver.Sync()

	state := f.store.State()
	assert.Empty(t, state.ActiveCycleID)
	require.NotNil(t, state.Cycles[0].FinishedDate)
	assert.Equal(t, "00:00", f.deriver.Display().Clock())
}

func TestImmediateInterruptNeverFinishes(t *testing.T) {
	f := newFixture(t, Config{})
	cycle := f.start("Write docs", 1)

	f.store.InterruptCurrentCycle()
	f.deriver.Sync()

	f.clock.Set(t0.Add(5 * time.Minute))
	assert.False(t, f.deriver.tick(cycle.ID, f.clock.Now()))

	history := f.store.Cycles()
	require.NotNil(t, history[0].InterruptedDate)
	assert.WithinDuration(t, t0, *history[0].InterruptedDate, time.Second)
	assert.Nil(t, history[0].FinishedDate)
	assert.False(t, f.deriver.Running())
}

func TestSyncReschedulesOnNewCycle(t *testing.T) {
	f := newFixture(t, Config{})
	first := f.start("first", 1)
	f.clock.Set(t0.Add(20 * time.Second))
	f.deriver.tick(first.ID, f.clock.Now())

	f.store.InterruptCurrentCycle()
	second := f.start("second", 2)

	display := f.deriver.Display()
	assert.Equal(t, "second", display.Task)
	assert.Equal(t, 0, display.AmountSecondsPassed)
	assert.Equal(t, "02:00", display.Clock())
	assert.True(t, f.deriver.Running())

	assert.False(t, f.deriver.tick(first.ID, f.clock.Now()), "ticks for the replaced cycle are dropped")
	assert.True(t, f.deriver.tick(second.ID, f.clock.Now()))
}

func TestRunLoopStopsAfterExpiry(t *testing.T) {
	f := newFixture(t, Config{TickInterval: 5 * time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go f.deriver.Watch(ctx, f.store.Subscribe(8))

	cycle := cycles.NewCycle("quick", 1, t0)
	f.store.AddNewCycle(cycle)
	require.Eventually(t, f.deriver.Running, time.Second, 5*time.Millisecond)

	events := f.deriver.Subscribe(64)
	f.clock.Set(t0.Add(time.Minute))

	require.Eventually(t, func() bool {
		_, active := f.store.ActiveCycle()
		return !active && !f.deriver.Running()
	}, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool {
		return f.titles.Last() == DefaultIdleTitle
	}, time.Second, 5*time.Millisecond)

	drained := 0
	for len(events) > 0 {
		<-events
		drained++
	}
	time.Sleep(30 * time.Millisecond)
	assert.Zero(t, len(events), "no updates after the ticker stopped")
	assert.NotZero(t, drained)
}

type stubIdle struct {
	duration time.Duration
	err      error
	calls    int
}

func (idle *stubIdle) IdleDuration() (time.Duration, error) {
	idle.calls++
	return idle.duration, idle.err
}

func TestIdleInterrupt(t *testing.T) {
	f := newFixture(t, Config{IdleInterruptAfter: 5 * time.Minute, IdleCheckInterval: time.Second})
	idle := &stubIdle{duration: 6 * time.Minute}
	f.deriver.SetIdleChecker(idle)
	cycle := f.start("focus", 30)

	f.clock.Set(t0.Add(10 * time.Second))
	assert.False(t, f.deriver.tick(cycle.ID, f.clock.Now()))

	history := f.store.Cycles()
	require.NotNil(t, history[0].InterruptedDate)
	assert.Nil(t, history[0].FinishedDate)
}

func TestLateTickSettlesOnEarlierEvent(t *testing.T) {
	tests := []struct {
		name            string
		idleAfter       time.Duration
		idleFor         time.Duration
		wantInterrupted bool
	}{
		// Idle threshold crossed at T0+3m, after the cycle ended at T0+1m.
		{name: "expiry first", idleAfter: 5 * time.Minute, idleFor: 5 * time.Minute, wantInterrupted: false},
		// Idle threshold crossed at T0+30s, before the cycle ended.
		{name: "idle first", idleAfter: 30 * time.Second, idleFor: 3 * time.Minute, wantInterrupted: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, Config{IdleInterruptAfter: tt.idleAfter, IdleCheckInterval: time.Second})
			f.deriver.SetIdleChecker(&stubIdle{duration: tt.idleFor})
			cycle := f.start("focus", 1)

			f.clock.Set(t0.Add(3 * time.Minute))
			assert.False(t, f.deriver.tick(cycle.ID, f.clock.Now()))

			history := f.store.Cycles()
			require.Len(t, history, 1)
			if tt.wantInterrupted {
				assert.NotNil(t, history[0].InterruptedDate)
				assert.Nil(t, history[0].FinishedDate)
				return
			}
			assert.NotNil(t, history[0].FinishedDate)
			assert.Nil(t, history[0].InterruptedDate)
		})
	}
}

// gatedReader holds the first armed read until release is closed.
type gatedReader struct {
	store   *cycles.Store
	mu      sync.Mutex
	armed   bool
	read    chan struct{}
	release chan struct{}
}

func (reader *gatedReader) ActiveCycle() (model.Cycle, bool) {
	cycle, ok := reader.store.ActiveCycle()
	reader.mu.Lock()
	armed := reader.armed
	reader.armed = false
	reader.mu.Unlock()
	if armed {
		close(reader.read)
		<-reader.release
	}
	return cycle, ok
}

func TestConcurrentSyncAppliesLatestRead(t *testing.T) {
	clock := &fakeClock{now: t0}
	store := cycles.NewStore(clock, nil)
	reader := &gatedReader{store: store, read: make(chan struct{}), release: make(chan struct{})}
	titles := &titleRecorder{}
	deriver := New(reader, Transitions{Finish: store.FinishCycle, Interrupt: store.InterruptCycle}, clock,
		Config{TickInterval: time.Hour, SetTitle: titles.Set}, nil)
	t.Cleanup(deriver.Stop)

	store.AddNewCycle(cycles.NewCycle("focus", 1, t0))
	reader.armed = true

	firstDone := make(chan struct{})
	go func() {
		deriver.Sync()
		close(firstDone)
	}()
	<-reader.read

	store.InterruptCurrentCycle()
	secondDone := make(chan struct{})
	go func() {
		deriver.Sync()
		close(secondDone)
	}()

	time.Sleep(20 * time.Millisecond)
	close(reader.release)
	<-firstDone
	<-secondDone

	_, active := store.ActiveCycle()
	assert.False(t, active)
	assert.False(t, deriver.Running())
	assert.False(t, deriver.Display().Active)
	assert.Equal(t, DefaultIdleTitle, deriver.Title())
}

func TestDisplayCarriesCycleID(t *testing.T) {
	f := newFixture(t, Config{})
	assert.Empty(t, f.deriver.Display().CycleID)

	cycle := f.start("focus", 1)
	assert.Equal(t, cycle.ID, f.deriver.Display().CycleID)

	f.store.InterruptCurrentCycle()
	f.deriver.Sync()
	assert.Empty(t, f.deriver.Display().CycleID)
}

func TestIdleUnsupportedDisablesChecks(t *testing.T) {
	f := newFixture(t, Config{IdleInterruptAfter: time.Minute, IdleCheckInterval: time.Second})
	idle := &stubIdle{err: ErrIdleUnsupported}
	f.deriver.SetIdleChecker(idle)
	events := f.deriver.Subscribe(8)
	cycle := f.start("focus", 30)
	<-events

	f.clock.Set(t0.Add(2 * time.Second))
	assert.True(t, f.deriver.tick(cycle.ID, f.clock.Now()))
	f.clock.Set(t0.Add(10 * time.Second))
	assert.True(t, f.deriver.tick(cycle.ID, f.clock.Now()))

	assert.Equal(t, 1, idle.calls)
	idleErr := <-events
	assert.Equal(t, EventIdleError, idleErr.Type)
	assert.True(t, errors.Is(idle.err, ErrIdleUnsupported))
}

func TestStopIsTeardown(t *testing.T) {
	f := newFixture(t, Config{})
	events := f.deriver.Subscribe(4)
	f.start("focus", 1)
	require.True(t, f.deriver.Running())

	f.deriver.Stop()
	assert.False(t, f.deriver.Running())
	for range events {
	}

	f.store.InterruptCurrentCycle()
	f.deriver.Sync()
	f.deriver.Stop()
}
