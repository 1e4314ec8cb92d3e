package logging

// Level is the closed set of record severities. Severity ordering is
// explicit via Rank; Info and Success share a rank so successes surface at
// the default verbosity.
type Level int

const (
	LevelFatal Level = iota
	LevelError
	LevelWarning
	LevelInfo
	LevelSuccess
	LevelDebug
)

func (l Level) String() string {
	switch l {
	case LevelFatal:
		return "FATAL"
	case LevelError:
		return "ERROR"
	case LevelWarning:
		return "WARNING"
	case LevelInfo:
		return "INFO"
	case LevelSuccess:
		return "SUCCESS"
	case LevelDebug:
		return "DEBUG"
	}
	return "UNKNOWN"
}

// Rank maps a level onto the 0-4 verbosity scale. A record reaches the
// terminal when its rank is at most the configured verbosity.
func (l Level) Rank() int {
	switch l {
	case LevelFatal:
		return 0
	case LevelError:
		return 1
	case LevelWarning:
		return 2
	case LevelInfo, LevelSuccess:
		return 3
	case LevelDebug:
		return 4
	}
	return 4
}
