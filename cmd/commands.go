package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"cyclekeeper/internal/storage"
	"cyclekeeper/internal/tui"
)

type TuiCmd struct {
	Task    string `help:"Task label pre-filled in the form." short:"t"`
	Minutes int    `help:"Cycle length pre-filled in the form." short:"m"`
}

func (c *TuiCmd) Run(appCtx *appContext) error {
	log, err := appCtx.newLogger(false)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	runtime, err := appCtx.newRuntime(log)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runtime.Lifecycle.Listen(cancel)
	runtime.Start(ctx)

	settings := runtime.Settings()
	defaults := tui.Defaults{Task: settings.DefaultTask, Minutes: settings.DefaultMinutes}
	if c.Task != "" {
		defaults.Task = c.Task
	}
	if c.Minutes > 0 {
		defaults.Minutes = c.Minutes
	}

	runErr := tui.Run(ctx, runtime.Store, runtime.Deriver, defaults, appCtx.cfg.Countdown.TickInterval, log.Named("tui"))
	if err := runtime.Shutdown(context.Background()); err != nil {
		log.Error("graceful shutdown error", zap.Error(err))
	}
	return runErr
}

type StatusCmd struct{}

func (c *StatusCmd) Run(appCtx *appContext) error {
	ctx, cancel := context.WithTimeout(context.Background(), clientTimeout)
	defer cancel()

	view, err := appCtx.client().Status(ctx)
	if err != nil {
		return notRunning(appCtx.cfg.AppName, err)
	}
	if !view.Active {
		printf("idle\n")
		return nil
	}
	printf("%s:%s  %s\n", view.Minutes, view.Seconds, view.Task)
	return nil
}

type HistoryCmd struct{}

func (c *HistoryCmd) Run(appCtx *appContext) error {
	ctx, cancel := context.WithTimeout(context.Background(), clientTimeout)
	defer cancel()

	state, err := appCtx.client().Cycles(ctx)
	if err != nil {
		return notRunning(appCtx.cfg.AppName, err)
	}
	if len(state.Cycles) == 0 {
		printf("no cycles yet\n")
		return nil
	}
	for _, cycle := range state.Cycles {
		printf("%s  %-12s %4d min  %s\n",
			cycle.StartDate.Local().Format(time.DateTime),
			cycle.Status(),
			cycle.MinutesAmount,
			cycle.Task,
		)
	}
	return nil
}

type StartCmd struct {
	Task    string `help:"Task label. Defaults to the saved preference." short:"t"`
	Minutes int    `help:"Cycle length in minutes. Defaults to the saved preference." short:"m"`
}

func (c *StartCmd) Run(appCtx *appContext) error {
	task, minutes := c.Task, c.Minutes
	if task == "" || minutes == 0 {
		settings, err := storage.LoadSettings(appCtx.cfg.AppName)
		if err != nil {
			return fmt.Errorf("load settings: %w", err)
		}
		if task == "" {
			task = settings.DefaultTask
		}
		if minutes == 0 {
			minutes = settings.DefaultMinutes
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), clientTimeout)
	defer cancel()

	cycle, err := appCtx.client().Start(ctx, task, minutes)
	if err != nil {
		return notRunning(appCtx.cfg.AppName, err)
	}
	printf("started %q for %d min\n", cycle.Task, cycle.MinutesAmount)
	return nil
}

type InterruptCmd struct{}

func (c *InterruptCmd) Run(appCtx *appContext) error {
	ctx, cancel := context.WithTimeout(context.Background(), clientTimeout)
	defer cancel()

	cycle, err := appCtx.client().Interrupt(ctx)
	if err != nil {
		return notRunning(appCtx.cfg.AppName, err)
	}
	printf("interrupted %q\n", cycle.Task)
	return nil
}
