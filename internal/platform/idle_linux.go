//go:build linux

package platform

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"cyclekeeper/internal/core/countdown"
)

type idleProvider struct {
	xprintidlePath string
	gdbusPath      string
}

func newIdleProvider() countdown.IdleChecker {
	provider := &idleProvider{}
	if path, err := exec.LookPath("xprintidle"); err == nil {
		provider.xprintidlePath = path
	}
	if path, err := exec.LookPath("gdbus"); err == nil {
		provider.gdbusPath = path
	}
	if provider.xprintidlePath == "" && provider.gdbusPath == "" {
		return unsupportedIdleProvider{}
	}
	return provider
}

func (provider *idleProvider) IdleDuration() (time.Duration, error) {
	wayland := strings.EqualFold(os.Getenv("XDG_SESSION_TYPE"), "wayland")
	if provider.xprintidlePath != "" && !wayland {
		output, err := exec.Command(provider.xprintidlePath).Output()
		if err != nil {
			return 0, fmt.Errorf("xprintidle: %w", err)
		}
		return parseIdleMillis(string(output))
	}
	if provider.gdbusPath == "" {
		return 0, countdown.ErrIdleUnsupported
	}

	output, err := exec.Command(provider.gdbusPath,
		"call", "--session",
		"--dest", "org.gnome.Mutter.IdleMonitor",
		"--object-path", "/org/gnome/Mutter/IdleMonitor/Core",
		"--method", "org.gnome.Mutter.IdleMonitor.GetIdletime",
	).Output()
	if err != nil {
		return 0, fmt.Errorf("%w: mutter idle monitor: %v", countdown.ErrIdleUnsupported, err)
	}
	return parseMutterIdle(string(output))
}
