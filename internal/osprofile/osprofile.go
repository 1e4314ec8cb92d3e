// Package osprofile classifies the host platform and supplies the
// per-platform default clone root.
package osprofile

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Profile identifies the host platform family.
type Profile int

const (
	Unknown Profile = iota
	Linux
	MacOS
	Windows
)

func (p Profile) String() string {
	switch p {
	case Linux:
		return "linux"
	case MacOS:
		return "macos"
	case Windows:
		return "windows"
	}
	return "unknown"
}

// Detect classifies the platform the process is running on.
func Detect() Profile {
	return DetectFrom(runtime.GOOS, KernelVersion())
}

// DetectFrom classifies a platform from an explicit GOOS value and kernel
// version string. WSL reports GOOS "linux" with a Microsoft-tagged kernel
// and collapses into Linux rather than Windows.
func DetectFrom(goos, kernel string) Profile {
	switch goos {
	case "linux":
		return Linux
	case "darwin":
		return MacOS
	case "windows":
		return Windows
	}
	return Unknown
}

// IsWSL reports whether a kernel version string carries the Windows
// Subsystem for Linux marker.
func IsWSL(kernel string) bool {
	return strings.Contains(strings.ToLower(kernel), "microsoft")
}

// DefaultCloneDir returns the platform's conventional project directory
// under the given home directory.
func (p Profile) DefaultCloneDir(home string) string {
	switch p {
	case Linux:
		return filepath.Join(home, "Projects")
	case MacOS:
		return filepath.Join(home, "Development")
	case Windows:
		return filepath.Join(home, "Documents", "Git")
	}
	return filepath.Join(home, "repositories")
}

// KernelVersion reads the kernel release string where one is exposed.
func KernelVersion() string {
	data, err := os.ReadFile("/proc/version")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
