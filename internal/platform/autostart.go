package platform

import (
	"fmt"
	"os"
	"strings"
)

// LaunchArgs are appended to the executable when the OS starts the app at login.
var LaunchArgs = []string{"gui"}

// Service defines OS-specific helpers needed by the application.
type Service interface {
	GetConfigDir() (string, error)
	EnableAutostart(appName, execPath string) error
	DisableAutostart(appName string) error
}

type platformService struct{}

// NewService returns a platform-specific implementation.
func NewService() Service {
	return &platformService{}
}

// GetConfigDir returns the OS-standard configuration directory.
func (service *platformService) GetConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err == nil && configDir != "" {
		return configDir, nil
	}

	homeDir, homeErr := os.UserHomeDir()
	if homeErr != nil {
		if err != nil {
			return "", fmt.Errorf("get config dir: %w", err)
		}
		return "", fmt.Errorf("get config dir: %w", homeErr)
	}

	return fallbackConfigDir(homeDir), nil
}

// SetAutostart enables or disables launching at login.
func SetAutostart(service Service, appName string, enabled bool) error {
	if !enabled {
		return service.DisableAutostart(appName)
	}
	execPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}
	return service.EnableAutostart(appName, execPath)
}

func slugName(appName string) string {
	name := strings.TrimSpace(appName)
	if name == "" {
		name = "cyclekeeper"
	}
	name = strings.ToLower(name)
	return strings.ReplaceAll(name, " ", "-")
}

func quoteIfSpaced(value string) string {
	if strings.Contains(value, " ") && !strings.HasPrefix(value, `"`) {
		return `"` + value + `"`
	}
	return value
}

func commandLine(execPath string, args []string) string {
	parts := []string{quoteIfSpaced(execPath)}
	for _, arg := range args {
		parts = append(parts, quoteIfSpaced(arg))
	}
	return strings.Join(parts, " ")
}

func buildDesktopEntry(appName, execPath string, args []string) string {
	return fmt.Sprintf(
		`[Desktop Entry]
Type=Application
Name=%s
Comment=Task countdown timer
Exec=%s
X-GNOME-Autostart-enabled=true
Terminal=false
`,
		appName,
		commandLine(execPath, args),
	)
}

func launchAgentLabel(appName string) string {
	return "com.cyclekeeper." + slugName(appName)
}

func buildLaunchAgentPlist(label, execPath string, args []string) string {
	var arguments strings.Builder
	for _, value := range append([]string{execPath}, args...) {
		fmt.Fprintf(&arguments, "\t\t<string>%s</string>\n", xmlEscape(value))
	}

	return fmt.Sprintf(
		`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>Label</key>
	<string>%s</string>
	<key>ProgramArguments</key>
	<array>
%s	</array>
	<key>RunAtLoad</key>
	<true/>
</dict>
</plist>
`,
		xmlEscape(label),
		arguments.String(),
	)
}

func xmlEscape(value string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&apos;",
	)
	return replacer.Replace(value)
}
