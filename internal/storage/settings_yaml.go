package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cyclekeeper/internal/ui/preferences"
	"cyclekeeper/internal/validation"
	"gopkg.in/yaml.v3"
)

const settingsFileName = "settings.yaml"

type yamlSettings struct {
	DefaultTask          string `yaml:"default_task"`
	DefaultMinutes       int    `yaml:"default_minutes"`
	IdleInterruptEnabled bool   `yaml:"idle_interrupt_enabled"`
	IdleInterruptMinutes int    `yaml:"idle_interrupt_minutes"`
	LaunchAtLogin        bool   `yaml:"launch_at_login"`
}

// LoadSettings reads user preferences from YAML.
// If the config file does not exist, default settings are returned.
func LoadSettings(appName string) (preferences.Settings, error) {
	settings := preferences.DefaultSettings()
	configPath, err := SettingsPath(appName)
	if err != nil {
		return settings, err
	}

	rawData, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}

	applyYamlSettings(&settings, fileData)
	return settings, nil
}

// SaveSettings writes user preferences to YAML.
func SaveSettings(appName string, settings preferences.Settings) error {
	configPath, err := SettingsPath(appName)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	fileData := yamlSettings{
		DefaultTask:          settings.DefaultTask,
		DefaultMinutes:       settings.DefaultMinutes,
		IdleInterruptEnabled: settings.IdleInterruptEnabled,
		IdleInterruptMinutes: int(settings.IdleInterruptAfter / time.Minute),
		LaunchAtLogin:        settings.LaunchAtLogin,
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	if err := os.WriteFile(configPath, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	return nil
}

// SettingsPath returns the preferences file location for appName.
func SettingsPath(appName string) (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appName, settingsFileName), nil
}

func applyYamlSettings(settings *preferences.Settings, fileData yamlSettings) {
	if task, err := validation.Task(fileData.DefaultTask); err == nil {
		settings.DefaultTask = task
	}
	if validation.Minutes(fileData.DefaultMinutes) == nil {
		settings.DefaultMinutes = fileData.DefaultMinutes
	}
	if fileData.IdleInterruptMinutes > 0 {
		settings.IdleInterruptAfter = time.Duration(fileData.IdleInterruptMinutes) * time.Minute
	}

	settings.IdleInterruptEnabled = fileData.IdleInterruptEnabled
	settings.LaunchAtLogin = fileData.LaunchAtLogin
}
