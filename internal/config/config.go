// Package config resolves the run configuration from defaults, an optional
// KEY=VALUE configuration file, and command-line overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/ini.v1"

	"github.com/inovacc/reposync/internal/application"
	"github.com/inovacc/reposync/internal/osprofile"
)

// Recognized configuration file keys.
const (
	KeyVerbosity    = "VERBOSITY"
	KeyMaxRetries   = "MAX_RETRIES"
	KeyRetryDelay   = "RETRY_DELAY"
	KeyLogDir       = "LOG_DIR"
	KeyMaxLogSizeMB = "MAX_LOG_SIZE_MB"
	KeyMaxLogFiles  = "MAX_LOG_FILES"
	KeyCloneDir     = "CLONE_DIR"
)

// Config holds the resolved options. It is immutable for the rest of the
// run once resolution finishes.
type Config struct {
	// Verbosity gates terminal output, 0 (quiet) to 4 (debug)
	Verbosity int

	// MaxRetries is the number of clone attempts per repository
	MaxRetries int

	// RetryDelay is the pause between clone attempts
	RetryDelay time.Duration

	// LogDir receives the main and error logs
	LogDir string

	// MaxLogSizeMB is the rotation threshold for the main log
	MaxLogSizeMB int

	// MaxLogFiles caps retained rotated logs
	MaxLogFiles int

	// CloneDir is the root under which repositories are placed
	CloneDir string
}

// WarnFunc receives resolution warnings. Config loading happens before the
// logger exists (the log directory is itself an option), so the caller
// collects warnings and replays them once logging is up.
type WarnFunc func(format string, args ...any)

// Defaults returns the configuration used when no file and no flags are
// present, with the clone root chosen by OS profile.
func Defaults(profile osprofile.Profile) Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	logDir := filepath.Join(".", "logs")
	if appDir, err := application.GetApplicationDirectory(); err == nil {
		logDir = filepath.Join(appDir, "logs")
	}

	return Config{
		Verbosity:    3,
		MaxRetries:   1,
		RetryDelay:   time.Second,
		LogDir:       filepath.Join(logDir, time.Now().Format("2006-01-02")),
		MaxLogSizeMB: 10,
		MaxLogFiles:  30,
		CloneDir:     profile.DefaultCloneDir(home),
	}
}

// Load resolves the configuration file at path on top of the defaults.
// A missing file is not an error: defaults are returned and a sample
// template is written beside the requested path for the user to copy.
// Malformed or unrecognized entries are warnings, never fatal.
func Load(path string, profile osprofile.Profile, warn WarnFunc) (Config, error) {
	cfg := Defaults(profile)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		example := path + ".example"
		if werr := WriteSample(example, cfg); werr != nil {
			warn("could not write sample configuration %s: %v", example, werr)
		} else {
			warn("no configuration file at %s; sample written to %s", path, example)
		}

		return cfg, nil
	}

	file, err := ini.LoadSources(ini.LoadOptions{SkipUnrecognizableLines: true}, path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read configuration %s: %w", path, err)
	}

	for _, key := range file.Section(ini.DefaultSection).Keys() {
		applyKey(&cfg, key.Name(), key.Value(), warn)
	}

	return cfg, nil
}

func applyKey(cfg *Config, name, value string, warn WarnFunc) {
	switch name {
	case KeyVerbosity:
		if n, ok := parseIntOption(name, value, 0, 4, warn); ok {
			cfg.Verbosity = n
		}
	case KeyMaxRetries:
		if n, ok := parseIntOption(name, value, 1, 100, warn); ok {
			cfg.MaxRetries = n
		}
	case KeyRetryDelay:
		if n, ok := parseIntOption(name, value, 0, 3600, warn); ok {
			cfg.RetryDelay = time.Duration(n) * time.Second
		}
	case KeyLogDir:
		if value == "" {
			warn("ignoring empty %s", name)
			return
		}
		cfg.LogDir = expandHome(value)
	case KeyMaxLogSizeMB:
		if n, ok := parseIntOption(name, value, 1, 10240, warn); ok {
			cfg.MaxLogSizeMB = n
		}
	case KeyMaxLogFiles:
		if n, ok := parseIntOption(name, value, 1, 10000, warn); ok {
			cfg.MaxLogFiles = n
		}
	case KeyCloneDir:
		if value == "" {
			warn("ignoring empty %s", name)
			return
		}
		cfg.CloneDir = expandHome(value)
	default:
		warn("ignoring unrecognized configuration key %q", name)
	}
}

func parseIntOption(name, value string, lo, hi int, warn WarnFunc) (int, bool) {
	n, err := strconv.Atoi(value)
	if err != nil {
		warn("ignoring %s: %q is not a number", name, value)
		return 0, false
	}

	if n < lo || n > hi {
		warn("ignoring %s: %d outside %d-%d", name, n, lo, hi)
		return 0, false
	}

	return n, true
}

// expandHome resolves a leading ~ against the user home directory so config
// files stay portable across machines.
func expandHome(path string) string {
	if path == "~" || len(path) >= 2 && path[0] == '~' && os.IsPathSeparator(path[1]) {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}

		return filepath.Join(home, path[1:])
	}

	return path
}

// WriteSample emits a commented template listing every option with the
// given values as defaults.
func WriteSample(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	content := fmt.Sprintf(`# reposync configuration
# Copy this file next to it without the .example suffix and edit as needed.
# Lines starting with # are comments. Unrecognized keys are ignored.

# Terminal verbosity: 0 (quiet) to 4 (debug). Errors always print.
%s=%d

# Clone attempts per repository.
%s=%d

# Seconds to wait between clone attempts.
%s=%d

# Directory for the main and error logs.
%s=%s

# Rotate the main log once it reaches this size (megabytes).
%s=%d

# Keep at most this many rotated log files.
%s=%d

# Root directory for cloned repositories.
%s=%s
`,
		KeyVerbosity, cfg.Verbosity,
		KeyMaxRetries, cfg.MaxRetries,
		KeyRetryDelay, int(cfg.RetryDelay/time.Second),
		KeyLogDir, cfg.LogDir,
		KeyMaxLogSizeMB, cfg.MaxLogSizeMB,
		KeyMaxLogFiles, cfg.MaxLogFiles,
		KeyCloneDir, cfg.CloneDir,
	)

	return os.WriteFile(path, []byte(content), 0o644)
}
