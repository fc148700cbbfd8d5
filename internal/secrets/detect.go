package secrets

import (
	"os"
	"runtime"
	"strings"
)

// Environment is the snapshot of the desktop session that backend priorities
// are computed from.
type Environment struct {
	GOOS           string
	CurrentDesktop []string // XDG_CURRENT_DESKTOP, split on ':'
	WSL            bool
	Headless       bool
}

// HasDesktop reports whether name is one of the current desktop identifiers.
func (e Environment) HasDesktop(name string) bool {
	for _, d := range e.CurrentDesktop {
		if d == name {
			return true
		}
	}
	return false
}

// DetectEnvironment reads the process environment once.
func DetectEnvironment() Environment {
	env := Environment{
		GOOS:     runtime.GOOS,
		WSL:      IsWSL(),
		Headless: IsHeadless(),
	}
	if desktop := os.Getenv("XDG_CURRENT_DESKTOP"); desktop != "" {
		env.CurrentDesktop = strings.Split(desktop, ":")
	}
	return env
}

// IsWSL returns true if running under Windows Subsystem for Linux.
func IsWSL() bool {
	if runtime.GOOS != "linux" {
		return false
	}

	data, err := os.ReadFile("/proc/version")
	if err != nil {
		return false
	}

	version := strings.ToLower(string(data))
	return strings.Contains(version, "microsoft") || strings.Contains(version, "wsl")
}

// IsHeadless returns true if running without a display server.
// Only applicable on Linux; macOS and Windows are assumed to have a GUI.
func IsHeadless() bool {
	if runtime.GOOS != "linux" {
		return false
	}
	return os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == ""
}
