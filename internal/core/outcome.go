package core

import (
	"time"

	"github.com/inovacc/reposync/internal/repolist"
)

// Kind classifies how an entry ended. Exactly one Outcome per entry.
type Kind int

const (
	Success Kind = iota
	Failure
	Skipped
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case Failure:
		return "failure"
	case Skipped:
		return "skipped"
	}
	return "unknown"
}

// Outcome records the result of processing one repository entry.
type Outcome struct {
	Entry    repolist.Entry
	Target   string
	Action   Action
	Kind     Kind
	Detail   string
	Attempts int
}

// RunContext accumulates per-run state. It is owned solely by the Runner;
// everything else sees it read-only after Run returns.
type RunContext struct {
	Outcomes    []Outcome
	Started     time.Time
	Interrupted bool
}

func (rc *RunContext) record(o Outcome) {
	rc.Outcomes = append(rc.Outcomes, o)
}

// Counts returns the number of outcomes per kind.
func (rc *RunContext) Counts() (success, failed, skipped int) {
	for _, o := range rc.Outcomes {
		switch o.Kind {
		case Success:
			success++
		case Failure:
			failed++
		case Skipped:
			skipped++
		}
	}

	return success, failed, skipped
}

// Failed reports whether any entry ended in Failure; it drives the
// process exit code.
func (rc *RunContext) Failed() bool {
	for _, o := range rc.Outcomes {
		if o.Kind == Failure {
			return true
		}
	}

	return false
}
