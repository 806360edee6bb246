//go:build darwin

package platform

import (
	"fmt"
	"os/exec"
	"time"

	"cyclekeeper/internal/core/countdown"
)

type idleProvider struct {
	ioregPath string
}

func newIdleProvider() countdown.IdleChecker {
	path, err := exec.LookPath("ioreg")
	if err != nil {
		return unsupportedIdleProvider{}
	}
	return &idleProvider{ioregPath: path}
}

func (provider *idleProvider) IdleDuration() (time.Duration, error) {
	output, err := exec.Command(provider.ioregPath, "-c", "IOHIDSystem", "-d", "4").Output()
	if err != nil {
		return 0, fmt.Errorf("ioreg: %w", err)
	}
	return parseHIDIdleTime(string(output))
}
