//go:build windows

package platform

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

const registryRunKey = `HKCU\Software\Microsoft\Windows\CurrentVersion\Run`

func (service *platformService) EnableAutostart(appName, execPath string) error {
	if appName == "" {
		return fmt.Errorf("enable autostart: app name is empty")
	}
	if execPath == "" {
		return fmt.Errorf("enable autostart: exec path is empty")
	}

	value := `"` + strings.Trim(execPath, `"`) + `"`
	if len(LaunchArgs) > 0 {
		value += " " + strings.Join(LaunchArgs, " ")
	}
	return runReg("enable autostart", "add", registryRunKey, "/v", appName, "/t", "REG_SZ", "/d", value, "/f")
}

func (service *platformService) DisableAutostart(appName string) error {
	if appName == "" {
		return fmt.Errorf("disable autostart: app name is empty")
	}
	return runReg("disable autostart", "delete", registryRunKey, "/v", appName, "/f")
}

func runReg(operation string, args ...string) error {
	output, err := exec.Command("reg", args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: reg %s failed: %w: %s", operation, args[0], err, strings.TrimSpace(string(output)))
	}
	return nil
}

func fallbackConfigDir(homeDir string) string {
	return filepath.Join(homeDir, "AppData", "Roaming")
}
