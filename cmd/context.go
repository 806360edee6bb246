package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"cyclekeeper/internal/app"
	"cyclekeeper/internal/config"
	"cyclekeeper/internal/logger"
	"cyclekeeper/internal/platform"
	"cyclekeeper/internal/status"
	"cyclekeeper/internal/storage"
	"cyclekeeper/internal/ui/preferences"
)

const clientTimeout = 3 * time.Second

type appContext struct {
	cfg *config.Config
}

// newLogger writes to the log directory. stderr is mirrored only when allowed.
func (appCtx *appContext) newLogger(allowStderr bool) (*zap.Logger, error) {
	loggerCfg := logger.Config{
		Level:    appCtx.cfg.Logger.Level,
		Encoding: appCtx.cfg.Logger.Encoding,
		Debug:    appCtx.cfg.Logger.Debug && allowStderr,
	}
	if appCtx.cfg.Logger.Debug {
		loggerCfg.Level = "debug"
	}
	if configDir, err := platform.NewService().GetConfigDir(); err == nil {
		loggerCfg.Dir = filepath.Join(configDir, appCtx.cfg.AppName, "logs")
	}
	log, err := logger.New(loggerCfg)
	if err != nil {
		return nil, err
	}
	if loggerCfg.Dir != "" {
		log.Debug("logging to file", zap.String("path", logger.FilePath(loggerCfg.Dir)))
	}
	return log, nil
}

// newRuntime acquires the single-instance lock and wires the core around it.
func (appCtx *appContext) newRuntime(log *zap.Logger) (*app.Runtime, error) {
	guard, err := platform.AcquireSingleInstance(appCtx.cfg.AppName)
	if err != nil {
		if errors.Is(err, platform.ErrAlreadyRunning) {
			return nil, fmt.Errorf("%s is already running; use the status, start or interrupt commands to control it", appCtx.cfg.AppName)
		}
		return nil, fmt.Errorf("acquire instance lock: %w", err)
	}

	settings, err := storage.LoadSettings(appCtx.cfg.AppName)
	if err != nil {
		log.Warn("using default settings", zap.Error(err))
	}

	service := platform.NewService()
	runtime := app.New(appCtx.cfg, settings, app.Deps{
		Idle:     platform.NewIdleProvider(),
		Listener: guard.Listener(),
		SaveSettings: func(updated preferences.Settings) error {
			return storage.SaveSettings(appCtx.cfg.AppName, updated)
		},
		SetAutostart: func(enabled bool) error {
			return platform.SetAutostart(service, appCtx.cfg.AppName, enabled)
		},
	}, log)

	runtime.Lifecycle.Register("instance_guard", func(_ context.Context) error {
		return guard.Release()
	})
	return runtime, nil
}

func (appCtx *appContext) client() *status.Client {
	return status.NewClient(platform.InstanceAddress(appCtx.cfg.AppName), clientTimeout)
}

func notRunning(appName string, err error) error {
	var apiErr *status.APIError
	if errors.As(err, &apiErr) {
		return err
	}
	return fmt.Errorf("%s does not seem to be running: %w", appName, err)
}

func printf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stdout, format, args...)
}
