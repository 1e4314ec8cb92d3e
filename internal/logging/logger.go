// Package logging writes leveled records to a rotating main log and a
// separate error log while mirroring a verbosity-filtered view to the
// terminal.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

const (
	mainLogName  = "reposync.log"
	errorLogName = "reposync-error.log"

	rotateSuffixFormat = "20060102-150405"
	timestampFormat    = "2006-01-02 15:04:05"
)

var levelStyles = map[Level]lipgloss.Style{
	LevelFatal:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
	LevelError:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	LevelWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	LevelInfo:    lipgloss.NewStyle(),
	LevelSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	LevelDebug:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
}

// Options configures a Logger.
type Options struct {
	Dir       string
	Verbosity int
	MaxSizeMB int
	MaxFiles  int

	// Stdout and Stderr receive the terminal mirror. Defaults to the
	// process streams when nil.
	Stdout io.Writer
	Stderr io.Writer
}

// Logger is a single-writer leveled log. It is safe for use from multiple
// goroutines but the program is sequential; the mutex guards rotation
// against interleaved helper calls only.
type Logger struct {
	mu        sync.Mutex
	dir       string
	verbosity int
	maxBytes  int64
	maxFiles  int

	main   *os.File
	errLog *os.File

	stdout io.Writer
	stderr io.Writer

	now func() time.Time
}

// New creates the log directory and both log files. Any failure here is an
// initialization failure; the caller must abort the run rather than
// continue without logs.
func New(opts Options) (*Logger, error) {
	if opts.Dir == "" {
		return nil, fmt.Errorf("log directory not set")
	}

	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", opts.Dir, err)
	}

	main, err := openAppend(filepath.Join(opts.Dir, mainLogName))
	if err != nil {
		return nil, fmt.Errorf("failed to open main log: %w", err)
	}

	errLog, err := openAppend(filepath.Join(opts.Dir, errorLogName))
	if err != nil {
		_ = main.Close()
		return nil, fmt.Errorf("failed to open error log: %w", err)
	}

	maxMB := opts.MaxSizeMB
	if maxMB < 1 {
		maxMB = 10
	}

	maxFiles := opts.MaxFiles
	if maxFiles < 1 {
		maxFiles = 30
	}

	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	return &Logger{
		dir:       opts.Dir,
		verbosity: opts.Verbosity,
		maxBytes:  int64(maxMB) * 1024 * 1024,
		maxFiles:  maxFiles,
		main:      main,
		errLog:    errLog,
		stdout:    stdout,
		stderr:    stderr,
		now:       time.Now,
	}, nil
}

func openAppend(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

// MainLogPath returns the path of the current main log file.
func (l *Logger) MainLogPath() string {
	return filepath.Join(l.dir, mainLogName)
}

// ErrorLogPath returns the path of the error log file.
func (l *Logger) ErrorLogPath() string {
	return filepath.Join(l.dir, errorLogName)
}

// Close flushes and closes both log files.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	err := l.main.Close()
	if cerr := l.errLog.Close(); err == nil {
		err = cerr
	}

	return err
}

func (l *Logger) Fatalf(format string, args ...any)  { l.log(LevelFatal, format, args...) }
func (l *Logger) Errorf(format string, args ...any)  { l.log(LevelError, format, args...) }
func (l *Logger) Warnf(format string, args ...any)   { l.log(LevelWarning, format, args...) }
func (l *Logger) Infof(format string, args ...any)   { l.log(LevelInfo, format, args...) }
func (l *Logger) Successf(format string, args ...any) { l.log(LevelSuccess, format, args...) }
func (l *Logger) Debugf(format string, args ...any)  { l.log(LevelDebug, format, args...) }

// Log appends a record at an explicit level.
func (l *Logger) Log(level Level, format string, args ...any) {
	l.log(level, format, args...)
}

func (l *Logger) log(level Level, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	record := fmt.Sprintf("[%s] [%s] [%s] %s\n",
		l.now().Format(timestampFormat), level, callerRef(3), msg)

	l.mu.Lock()

	l.rotateIfNeeded()

	_, _ = l.main.WriteString(record)

	if level == LevelError || level == LevelFatal {
		_, _ = l.errLog.WriteString(record)
	}

	l.mu.Unlock()

	l.mirror(level, msg)
}

// mirror writes the terminal view. Errors and fatals always reach the
// terminal; everything else is gated by verbosity rank.
func (l *Logger) mirror(level Level, msg string) {
	line := levelStyles[level].Render(fmt.Sprintf("[%s] %s", level, msg)) + "\n"

	switch {
	case level == LevelError || level == LevelFatal:
		_, _ = io.WriteString(l.stderr, line)
	case level.Rank() <= l.verbosity:
		_, _ = io.WriteString(l.stdout, line)
	}
}

// rotateIfNeeded renames the main log with a timestamp suffix once it has
// reached the size threshold, then prunes rotated files beyond the
// retention cap. Both steps degrade to warnings, never failures.
func (l *Logger) rotateIfNeeded() {
	info, err := l.main.Stat()
	if err != nil || info.Size() < l.maxBytes {
		return
	}

	rotated := filepath.Join(l.dir, fmt.Sprintf("reposync-%s.log", l.now().Format(rotateSuffixFormat)))

	_ = l.main.Close()

	if err := os.Rename(l.MainLogPath(), rotated); err != nil {
		l.writeInternalWarning(fmt.Sprintf("log rotation failed: %v", err))
	}

	main, err := openAppend(l.MainLogPath())
	if err != nil {
		// Keep the old handle dead rather than crash mid-run; subsequent
		// writes become no-ops on a closed file.
		l.writeInternalWarning(fmt.Sprintf("failed to reopen main log: %v", err))
		return
	}

	l.main = main

	l.pruneRotated()
}

// pruneRotated deletes the oldest rotated log files beyond the retention
// cap, ordered by modification time.
func (l *Logger) pruneRotated() {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		l.writeInternalWarning(fmt.Sprintf("log retention scan failed: %v", err))
		return
	}

	type rotatedFile struct {
		path string
		mod  time.Time
	}

	var rotated []rotatedFile

	for _, entry := range entries {
		name := entry.Name()
		if name == mainLogName || name == errorLogName {
			continue
		}

		if !strings.HasPrefix(name, "reposync-") || !strings.HasSuffix(name, ".log") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		rotated = append(rotated, rotatedFile{
			path: filepath.Join(l.dir, name),
			mod:  info.ModTime(),
		})
	}

	if len(rotated) <= l.maxFiles {
		return
	}

	sort.Slice(rotated, func(i, j int) bool {
		return rotated[i].mod.Before(rotated[j].mod)
	})

	for _, old := range rotated[:len(rotated)-l.maxFiles] {
		if err := os.Remove(old.path); err != nil {
			l.writeInternalWarning(fmt.Sprintf("failed to delete old log %s: %v", old.path, err))
		}
	}
}

// writeInternalWarning records a logger-internal condition without going
// back through log (the caller already holds the mutex).
func (l *Logger) writeInternalWarning(msg string) {
	record := fmt.Sprintf("[%s] [%s] [%s] %s\n",
		l.now().Format(timestampFormat), LevelWarning, "logging", msg)

	_, _ = l.main.WriteString(record)

	l.mirror(LevelWarning, msg)
}

// callerRef resolves the logging call site as "file.go:line".
func callerRef(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "unknown"
	}

	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}
