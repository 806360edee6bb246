package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// AppName names the config directory, the instance lock and the idle window title.
const AppName = "CycleKeeper"

// Config aggregates runtime settings that are not user preferences.
type Config struct {
	AppName         string
	Countdown       CountdownConfig
	Logger          LoggerConfig
	ShutdownTimeout time.Duration
}

type CountdownConfig struct {
	TickInterval      time.Duration
	IdleTitle         string
	IdleCheckInterval time.Duration
}

type LoggerConfig struct {
	Level    string
	Encoding string
	Debug    bool
}

// Load reads configuration from environment variables (optionally .env)
// and falls back to defaults for anything unset or unparsable.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		AppName: getString("CYCLEKEEPER_APP_NAME", AppName),
		Countdown: CountdownConfig{
			TickInterval:      getDuration("CYCLEKEEPER_TICK_INTERVAL", time.Second),
			IdleTitle:         getString("CYCLEKEEPER_IDLE_TITLE", AppName),
			IdleCheckInterval: getDuration("CYCLEKEEPER_IDLE_CHECK_INTERVAL", 5*time.Second),
		},
		Logger: LoggerConfig{
			Level:    getString("CYCLEKEEPER_LOG_LEVEL", "info"),
			Encoding: getString("CYCLEKEEPER_LOG_ENCODING", "json"),
			Debug:    getBool("CYCLEKEEPER_DEBUG", false),
		},
		ShutdownTimeout: getDuration("CYCLEKEEPER_SHUTDOWN_TIMEOUT", 5*time.Second),
	}

	if cfg.Countdown.TickInterval <= 0 {
		cfg.Countdown.TickInterval = time.Second
	}

	return cfg, nil
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}
