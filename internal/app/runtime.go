package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"go.uber.org/zap"

	"cyclekeeper/internal/config"
	"cyclekeeper/internal/core/countdown"
	"cyclekeeper/internal/core/cycles"
	"cyclekeeper/internal/lifecycle"
	"cyclekeeper/internal/status"
	"cyclekeeper/internal/ui/preferences"
)

// Deps are the platform services a Runtime uses. Nil fields are skipped.
type Deps struct {
	Clock cycles.Clock
	Idle  countdown.IdleChecker
	// Listener serves the status endpoint.
	Listener     net.Listener
	SaveSettings func(settings preferences.Settings) error
	SetAutostart func(enabled bool) error
}

// Runtime owns the cycle store, the countdown and the status endpoint of one process.
type Runtime struct {
	Store     *cycles.Store
	Deriver   *countdown.Deriver
	Lifecycle *lifecycle.Manager

	cfg    *config.Config
	deps   Deps
	logger *zap.Logger
	server *status.Server

	mu       sync.Mutex
	settings preferences.Settings
	setTitle func(title string)
	started  bool
}

// New wires the core components. Call Start to begin ticking and serving.
func New(cfg *config.Config, settings preferences.Settings, deps Deps, logger *zap.Logger) *Runtime {
	if logger == nil {
		logger = zap.NewNop()
	}
	store := cycles.NewStore(deps.Clock, logger.Named("cycles"))
	runtime := &Runtime{
		Store:     store,
		Lifecycle: lifecycle.New(cfg.ShutdownTimeout, logger.Named("lifecycle")),
		cfg:       cfg,
		deps:      deps,
		logger:    logger,
		settings:  settings,
	}
	runtime.Deriver = countdown.New(store, countdown.Transitions{
		Finish:    store.FinishCycle,
		Interrupt: store.InterruptCycle,
	}, store.Clock(), runtime.countdownConfig(), logger.Named("countdown"))
	if deps.Idle != nil {
		runtime.Deriver.SetIdleChecker(deps.Idle)
	}
	if deps.Listener != nil {
		runtime.server = status.NewServer(cfg.AppName, store, runtime.Deriver, logger.Named("status"))
	}
	return runtime
}

// Start launches the countdown watcher and the status endpoint and registers their shutdown.
func (runtime *Runtime) Start(ctx context.Context) {
	runtime.mu.Lock()
	if runtime.started {
		runtime.mu.Unlock()
		return
	}
	runtime.started = true
	runtime.mu.Unlock()

	watchCtx, cancel := context.WithCancel(ctx)
	events := runtime.Store.Subscribe(16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		runtime.Deriver.Watch(watchCtx, events)
	}()

	runtime.Lifecycle.Register("store", func(context.Context) error {
		runtime.Store.Close()
		return nil
	})

	if runtime.server != nil {
		listener := runtime.deps.Listener
		go func() {
			if err := runtime.server.Serve(listener); err != nil {
				runtime.logger.Error("status endpoint stopped", zap.Error(err))
			}
		}()
		runtime.Lifecycle.Register("status", func(context.Context) error {
			return runtime.server.Shutdown()
		})
	}

	runtime.Lifecycle.Register("countdown", func(ctx context.Context) error {
		cancel()
		runtime.Deriver.Stop()
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return fmt.Errorf("stop countdown watcher: %w", ctx.Err())
		}
	})
}

// Shutdown runs every registered shutdown hook once.
func (runtime *Runtime) Shutdown(ctx context.Context) error {
	return runtime.Lifecycle.Shutdown(ctx)
}

// Settings returns the active preferences.
func (runtime *Runtime) Settings() preferences.Settings {
	runtime.mu.Lock()
	defer runtime.mu.Unlock()
	return runtime.settings
}

// SetTitleHandler routes window title changes to fn.
func (runtime *Runtime) SetTitleHandler(fn func(title string)) {
	runtime.mu.Lock()
	runtime.setTitle = fn
	options := runtime.countdownConfigLocked()
	runtime.mu.Unlock()
	runtime.Deriver.UpdateConfig(options)
	if fn != nil {
		fn(runtime.Deriver.Title())
	}
}

// ApplySettings persists settings and applies them to the countdown and autostart.
func (runtime *Runtime) ApplySettings(settings preferences.Settings) error {
	runtime.mu.Lock()
	previous := runtime.settings
	runtime.settings = settings
	options := runtime.countdownConfigLocked()
	runtime.mu.Unlock()

	runtime.Deriver.UpdateConfig(options)

	var result error
	if runtime.deps.SaveSettings != nil {
		if err := runtime.deps.SaveSettings(settings); err != nil {
			result = fmt.Errorf("save settings: %w", err)
		}
	}
	if runtime.deps.SetAutostart != nil && previous.LaunchAtLogin != settings.LaunchAtLogin {
		if err := runtime.deps.SetAutostart(settings.LaunchAtLogin); err != nil {
			result = errors.Join(result, fmt.Errorf("update autostart: %w", err))
		}
	}
	if result != nil {
		runtime.logger.Error("apply settings failed", zap.Error(result))
		return result
	}
	runtime.logger.Info("settings applied",
		zap.String("default_task", settings.DefaultTask),
		zap.Int("default_minutes", settings.DefaultMinutes),
		zap.Bool("idle_interrupt", settings.IdleInterruptEnabled),
	)
	return nil
}

// StartDefaultCycle starts a cycle from the saved defaults when none is running.
func (runtime *Runtime) StartDefaultCycle() bool {
	settings := runtime.Settings()
	cycle := cycles.NewCycle(settings.DefaultTask, settings.DefaultMinutes, runtime.Store.Clock().Now())
	return runtime.Store.StartCycle(cycle)
}

// InterruptActiveCycle interrupts the running cycle, if any.
func (runtime *Runtime) InterruptActiveCycle() bool {
	cycle, active := runtime.Store.ActiveCycle()
	if !active {
		return false
	}
	runtime.Store.InterruptCycle(cycle.ID)
	return true
}

func (runtime *Runtime) countdownConfig() countdown.Config {
	runtime.mu.Lock()
	defer runtime.mu.Unlock()
	return runtime.countdownConfigLocked()
}

func (runtime *Runtime) countdownConfigLocked() countdown.Config {
	options := runtime.settings.CountdownConfig(runtime.cfg.Countdown)
	options.SetTitle = runtime.setTitle
	return options
}
