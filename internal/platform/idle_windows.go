//go:build windows

package platform

import (
	"fmt"
	"syscall"
	"time"
	"unsafe"

	"cyclekeeper/internal/core/countdown"
)

var (
	user32             = syscall.NewLazyDLL("user32.dll")
	kernel32           = syscall.NewLazyDLL("kernel32.dll")
	procGetLastInput   = user32.NewProc("GetLastInputInfo")
	procGetTickCount64 = kernel32.NewProc("GetTickCount64")
)

type lastInputInfo struct {
	cbSize uint32
	dwTime uint32
}

type idleProvider struct{}

func newIdleProvider() countdown.IdleChecker {
	if procGetLastInput.Find() != nil || procGetTickCount64.Find() != nil {
		return unsupportedIdleProvider{}
	}
	return idleProvider{}
}

func (idleProvider) IdleDuration() (time.Duration, error) {
	info := lastInputInfo{cbSize: uint32(unsafe.Sizeof(lastInputInfo{}))}
	if result, _, err := procGetLastInput.Call(uintptr(unsafe.Pointer(&info))); result == 0 {
		return 0, fmt.Errorf("get last input info: %w", err)
	}

	ticks, _, _ := procGetTickCount64.Call()
	// GetLastInputInfo reports a 32-bit tick count, so compare in the same width.
	idleMillis := uint32(ticks) - info.dwTime
	return time.Duration(idleMillis) * time.Millisecond, nil
}
