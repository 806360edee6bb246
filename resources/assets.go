package resources

import (
	"embed"
	"fmt"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

const (
	logoDir = "logo/"

	// LogoActive is shown while a cycle runs.
	LogoActive = "cyclekeeper.svg"
	// LogoIdle is shown while no cycle runs.
	LogoIdle = "cyclekeeper-idle.svg"
)

//go:embed logo/*.svg
var logoFS embed.FS

var logoCache sync.Map

// Logo returns a Fyne resource for the given logo file.
func Logo(fileName string) (fyne.Resource, error) {
	path := logoDir + fileName
	if cached, ok := logoCache.Load(path); ok {
		return cached.(fyne.Resource), nil
	}

	data, err := logoFS.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load resource %s: %w", path, err)
	}

	resource := fyne.NewStaticResource(fileName, data)
	logoCache.Store(path, resource)
	return resource, nil
}

// TrayIcon returns the tray icon for the countdown state, falling back to a theme icon.
func TrayIcon(active bool) fyne.Resource {
	name := LogoIdle
	fallback := theme.HistoryIcon()
	if active {
		name = LogoActive
		fallback = theme.MediaPlayIcon()
	}
	resource, err := Logo(name)
	if err != nil {
		return fallback
	}
	return resource
}
