package main

import (
	"context"
	"fmt"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"go.uber.org/zap"

	"cyclekeeper/internal/core/countdown"
	"cyclekeeper/internal/ui/preferences"
	"cyclekeeper/internal/ui/timer"
	"cyclekeeper/internal/ui/tray"
	"cyclekeeper/resources"
)

type GuiCmd struct {
	Task    string `help:"Task label pre-filled in the window." short:"t"`
	Minutes int    `help:"Cycle length pre-filled in the window." short:"m"`
}

func (c *GuiCmd) Run(appCtx *appContext) error {
	log, err := appCtx.newLogger(true)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	runtime, err := appCtx.newRuntime(log)
	if err != nil {
		return err
	}

	fyneApp := fyneapp.NewWithID("com.cyclekeeper.app")
	fyneApp.SetIcon(resources.TrayIcon(true))

	settings := runtime.Settings()
	defaults := timer.Defaults{Task: settings.DefaultTask, Minutes: settings.DefaultMinutes}
	if c.Task != "" {
		defaults.Task = c.Task
	}
	if c.Minutes > 0 {
		defaults.Minutes = c.Minutes
	}

	timerWindow := timer.New(fyneApp, runtime.Store, runtime.Deriver, defaults, log.Named("timer"))
	runtime.SetTitleHandler(timerWindow.SetTitle)

	prefsWindow := preferences.New(fyneApp, settings, func(updated preferences.Settings) {
		if err := runtime.ApplySettings(updated); err != nil {
			dialog.ShowError(err, timerWindow.Window())
		}
		timerWindow.SetDefaults(timer.Defaults{Task: updated.DefaultTask, Minutes: updated.DefaultMinutes})
	})

	var trayManager *tray.Manager
	desktopApp, hasTray := fyneApp.(desktop.App)
	if hasTray {
		trayManager = tray.New(desktopApp, tray.Callbacks{
			OnShowTimer:    timerWindow.Show,
			OnStartDefault: func() { runtime.StartDefaultCycle() },
			OnInterrupt:    func() { runtime.InterruptActiveCycle() },
			OnPreferences:  prefsWindow.Show,
			OnQuit:         fyneApp.Quit,
		})
		desktopApp.SetSystemTrayIcon(resources.TrayIcon(false))
	} else {
		log.Info("system tray unsupported on this platform")
		timerWindow.QuitOnClose(fyneApp)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runtime.Lifecycle.Listen(func() {
		fyne.Do(fyneApp.Quit)
	})

	events := runtime.Deriver.Subscribe(32)
	runtime.Start(ctx)
	go func() {
		active := false
		for event := range events {
			timerWindow.Refresh()
			if event.Type == countdown.EventIdleInterrupt {
				log.Info("cycle interrupted while away", zap.String("cycle_id", event.CycleID))
			}
			if trayManager == nil {
				continue
			}
			display := event.Display
			iconChanged := display.Active != active
			active = display.Active
			fyne.Do(func() {
				trayManager.Update(display)
				if iconChanged {
					desktopApp.SetSystemTrayIcon(resources.TrayIcon(display.Active))
				}
			})
		}
	}()

	timerWindow.Show()
	fyneApp.Run()

	if err := runtime.Shutdown(context.Background()); err != nil {
		log.Error("graceful shutdown error", zap.Error(err))
	}
	return nil
}
