package platform

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"cyclekeeper/internal/core/countdown"
)

// NewIdleProvider returns the idle checker for the running OS.
// It reports countdown.ErrIdleUnsupported when no idle source is available.
func NewIdleProvider() countdown.IdleChecker {
	return newIdleProvider()
}

type unsupportedIdleProvider struct{}

func (unsupportedIdleProvider) IdleDuration() (time.Duration, error) {
	return 0, countdown.ErrIdleUnsupported
}

// parseIdleMillis reads the single integer printed by xprintidle.
func parseIdleMillis(output string) (time.Duration, error) {
	value := strings.TrimSpace(output)
	millis, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse idle milliseconds %q: %w", value, err)
	}
	if millis < 0 {
		millis = 0
	}
	return time.Duration(millis) * time.Millisecond, nil
}

// parseMutterIdle reads gdbus output such as "(uint64 4123,)".
func parseMutterIdle(output string) (time.Duration, error) {
	value := strings.TrimSpace(output)
	value = strings.TrimPrefix(value, "(")
	value = strings.TrimSuffix(value, ")")
	value = strings.TrimSuffix(value, ",")
	value = strings.TrimSpace(strings.TrimPrefix(value, "uint64"))
	millis, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse mutter idle time %q: %w", output, err)
	}
	return time.Duration(millis) * time.Millisecond, nil
}

// parseHIDIdleTime extracts HIDIdleTime (nanoseconds) from ioreg output.
func parseHIDIdleTime(output string) (time.Duration, error) {
	for _, line := range strings.Split(output, "\n") {
		if !strings.Contains(line, `"HIDIdleTime"`) {
			continue
		}
		_, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		nanos, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parse HIDIdleTime: %w", err)
		}
		return time.Duration(nanos), nil
	}
	return 0, fmt.Errorf("HIDIdleTime not found in ioreg output")
}
