package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cyclekeeper/internal/ui/preferences"
)

const testApp = "CycleKeeperTest"

func isolateConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	t.Setenv("AppData", dir)
	return dir
}

func TestLoadSettingsMissingFileReturnsDefaults(t *testing.T) {
	isolateConfigDir(t)

	settings, err := LoadSettings(testApp)
	require.NoError(t, err)
	assert.Equal(t, preferences.DefaultSettings(), settings)
}

func TestSaveAndLoadSettings(t *testing.T) {
	isolateConfigDir(t)

	saved := preferences.Settings{
		DefaultTask:          "Deep work",
		DefaultMinutes:       50,
		IdleInterruptEnabled: true,
		IdleInterruptAfter:   15 * time.Minute,
		LaunchAtLogin:        true,
	}
	require.NoError(t, SaveSettings(testApp, saved))

	path, err := SettingsPath(testApp)
	require.NoError(t, err)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "default_minutes: 50")

	loaded, err := LoadSettings(testApp)
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)
}

func TestLoadSettingsIgnoresInvalidValues(t *testing.T) {
	isolateConfigDir(t)
	path, err := SettingsPath(testApp)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("default_task: \"  \"\ndefault_minutes: -4\nidle_interrupt_minutes: 0\n"), 0o644))

	settings, err := LoadSettings(testApp)
	require.NoError(t, err)
	defaults := preferences.DefaultSettings()
	assert.Equal(t, defaults.DefaultTask, settings.DefaultTask)
	assert.Equal(t, defaults.DefaultMinutes, settings.DefaultMinutes)
	assert.Equal(t, defaults.IdleInterruptAfter, settings.IdleInterruptAfter)
}

func TestLoadSettingsMalformedYaml(t *testing.T) {
	isolateConfigDir(t)
	path, err := SettingsPath(testApp)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("default_minutes: [unclosed"), 0o644))

	settings, err := LoadSettings(testApp)
	require.Error(t, err)
	assert.Equal(t, preferences.DefaultSettings(), settings)
}
