package core

import (
	"os"
	"path/filepath"

	"github.com/inovacc/reposync/internal/git"
	"github.com/inovacc/reposync/internal/giturl"
	"github.com/inovacc/reposync/internal/repolist"
)

// Action is the planned treatment for one entry, decided from the state of
// its target directory.
type Action int

const (
	// ActionClone means the target does not exist yet
	ActionClone Action = iota

	// ActionUpdate means the target holds a git checkout to pull
	ActionUpdate

	// ActionConflict means the target exists but is not a checkout
	ActionConflict
)

func (a Action) String() string {
	switch a {
	case ActionClone:
		return "clone"
	case ActionUpdate:
		return "update"
	case ActionConflict:
		return "conflict"
	}
	return "unknown"
}

// PlannedEntry pairs an entry with its computed target and action.
type PlannedEntry struct {
	Entry  repolist.Entry
	Target string
	Action Action
}

// Plan is the ordered set of planned entries for one run.
type Plan struct {
	CloneRoot string
	Entries   []PlannedEntry
}

// BuildPlan computes each entry's target directory under the clone root
// and classifies the action from what is on disk. Order follows the list
// file.
func BuildPlan(entries []repolist.Entry, cloneRoot string) *Plan {
	planned := make([]PlannedEntry, len(entries))

	for i, entry := range entries {
		dir := entry.Dir
		if dir == "" {
			dir = giturl.RepoName(entry.URL)
		}

		target := filepath.Join(cloneRoot, dir)

		planned[i] = PlannedEntry{
			Entry:  entry,
			Target: target,
			Action: classifyTarget(target),
		}
	}

	return &Plan{CloneRoot: cloneRoot, Entries: planned}
}

func classifyTarget(target string) Action {
	info, err := os.Stat(target)
	if err != nil {
		return ActionClone
	}

	if info.IsDir() && git.IsRepo(target) {
		return ActionUpdate
	}

	return ActionConflict
}
