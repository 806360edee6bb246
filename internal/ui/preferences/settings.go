package preferences

import (
	"time"

	"cyclekeeper/internal/config"
	"cyclekeeper/internal/core/countdown"
)

// Settings defines editable user preferences.
type Settings struct {
	DefaultTask    string
	DefaultMinutes int

	IdleInterruptEnabled bool
	IdleInterruptAfter   time.Duration

	LaunchAtLogin bool
}

// DefaultSettings returns default settings for CycleKeeper.
func DefaultSettings() Settings {
	return Settings{
		DefaultTask:          "Focus",
		DefaultMinutes:       25,
		IdleInterruptEnabled: false,
		IdleInterruptAfter:   10 * time.Minute,
		LaunchAtLogin:        false,
	}
}

// CountdownConfig merges preferences into the runtime countdown options.
func (settings Settings) CountdownConfig(runtime config.CountdownConfig) countdown.Config {
	options := countdown.Config{
		TickInterval:      runtime.TickInterval,
		IdleTitle:         runtime.IdleTitle,
		IdleCheckInterval: runtime.IdleCheckInterval,
	}
	if settings.IdleInterruptEnabled {
		options.IdleInterruptAfter = settings.IdleInterruptAfter
	}
	return options
}
