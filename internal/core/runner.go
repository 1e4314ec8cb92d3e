// Package core plans and executes the sequential clone/update run.
package core

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/inovacc/reposync/internal/config"
	"github.com/inovacc/reposync/internal/git"
	"github.com/inovacc/reposync/internal/giturl"
	"github.com/inovacc/reposync/internal/logging"
)

const (
	// primaryBranch and legacyBranch are tried in order when pulling
	primaryBranch = "main"
	legacyBranch  = "master"

	// entryThrottle is a courtesy pause between repositories so a remote
	// host is not hammered; not a correctness requirement
	entryThrottle = 500 * time.Millisecond

	setupHookName = "setup.sh"

	backupTimeFormat = "20060102-150405"
)

// GitOps is the subset of git behavior the runner needs, keyed by
// repository directory so tests can substitute a fake.
type GitOps interface {
	Clone(ctx context.Context, url, target string) error
	Pull(ctx context.Context, dir, branch string) error
	RemoteURL(ctx context.Context, dir string) (string, error)
	SetRemoteURL(ctx context.Context, dir, url string) error
	IsDirty(ctx context.Context, dir string) bool
	Stash(ctx context.Context, dir string) error
	StashPop(ctx context.Context, dir string) error
}

type execGitOps struct{}

func (execGitOps) Clone(ctx context.Context, url, target string) error {
	return git.NewClient().Clone(ctx, url, target)
}

func (execGitOps) Pull(ctx context.Context, dir, branch string) error {
	return git.NewClientForRepo(dir).Pull(ctx, branch)
}

func (execGitOps) RemoteURL(ctx context.Context, dir string) (string, error) {
	return git.NewClientForRepo(dir).RemoteURL(ctx)
}

func (execGitOps) SetRemoteURL(ctx context.Context, dir, url string) error {
	return git.NewClientForRepo(dir).SetRemoteURL(ctx, url)
}

func (execGitOps) IsDirty(ctx context.Context, dir string) bool {
	return git.NewClientForRepo(dir).IsDirty(ctx)
}

func (execGitOps) Stash(ctx context.Context, dir string) error {
	return git.NewClientForRepo(dir).Stash(ctx)
}

func (execGitOps) StashPop(ctx context.Context, dir string) error {
	return git.NewClientForRepo(dir).StashPop(ctx)
}

// Runner executes a plan one entry at a time, strictly in file order.
type Runner struct {
	cfg     config.Config
	log     *logging.Logger
	confirm Confirmer
	ops     GitOps
	dryRun  bool

	sleep func(time.Duration)
	now   func() time.Time
}

// NewRunner builds a runner. A nil confirmer denies every prompt.
func NewRunner(cfg config.Config, log *logging.Logger, confirm Confirmer, dryRun bool) *Runner {
	if confirm == nil {
		confirm = DenyAll{}
	}

	return &Runner{
		cfg:     cfg,
		log:     log,
		confirm: confirm,
		ops:     execGitOps{},
		dryRun:  dryRun,
		sleep:   time.Sleep,
		now:     time.Now,
	}
}

// Run processes every planned entry sequentially. An interrupt (context
// cancellation) stops before the next entry starts; completed outcomes are
// kept so the summary reflects work actually done.
func (r *Runner) Run(ctx context.Context, plan *Plan) *RunContext {
	rc := &RunContext{Started: r.now()}

	for i, pe := range plan.Entries {
		if ctx.Err() != nil {
			r.log.Warnf("interrupted; %d of %d entries processed", i, len(plan.Entries))

			rc.Interrupted = true

			break
		}

		rc.record(r.processEntry(ctx, pe))

		if !r.dryRun && i < len(plan.Entries)-1 {
			r.sleep(entryThrottle)
		}
	}

	return rc
}

func (r *Runner) processEntry(ctx context.Context, pe PlannedEntry) Outcome {
	r.log.Infof("processing %s (%s)", pe.Entry.URL, pe.Action)

	switch pe.Action {
	case ActionUpdate:
		return r.processUpdate(ctx, pe)
	case ActionConflict:
		return r.processConflict(ctx, pe)
	default:
		return r.processClone(ctx, pe)
	}
}

// processUpdate pulls an existing checkout, reconciling remote URL drift
// and uncommitted changes first.
func (r *Runner) processUpdate(ctx context.Context, pe PlannedEntry) Outcome {
	outcome := Outcome{Entry: pe.Entry, Target: pe.Target, Action: ActionUpdate}

	if r.dryRun {
		r.log.Infof("dry-run: would update %s", pe.Target)

		outcome.Kind = Success
		outcome.Detail = "dry-run: update planned"

		return outcome
	}

	remote, err := r.ops.RemoteURL(ctx, pe.Target)
	if err != nil {
		r.log.Warnf("could not read remote URL of %s: %v", pe.Target, err)
	} else if !giturl.Equivalent(remote, pe.Entry.URL) {
		collision := &PathCollisionError{Path: pe.Target, ExpectedURL: pe.Entry.URL, ActualURL: remote}
		r.log.Warnf("%v", collision)

		if r.confirm.Confirm(fmt.Sprintf("Remote of %s is %s; update it to %s?", pe.Target, remote, pe.Entry.URL)) {
			if err := r.ops.SetRemoteURL(ctx, pe.Target, pe.Entry.URL); err != nil {
				r.log.Warnf("failed to update remote URL: %v", err)
			} else {
				r.log.Infof("remote of %s updated to %s", pe.Target, pe.Entry.URL)
			}
		}
	}

	if r.ops.IsDirty(ctx, pe.Target) {
		return r.updateDirty(ctx, pe, outcome)
	}

	if err := r.pullWithFallback(ctx, pe.Target); err != nil {
		r.log.Errorf("update of %s failed: %v", pe.Target, err)

		outcome.Kind = Failure
		outcome.Detail = err.Error()

		return outcome
	}

	r.log.Successf("updated %s", pe.Target)

	outcome.Kind = Success

	return outcome
}

// updateDirty handles uncommitted local changes: only a confirming user
// gets the stash/pull/restore treatment, a batch run leaves developer
// work alone.
func (r *Runner) updateDirty(ctx context.Context, pe PlannedEntry, outcome Outcome) Outcome {
	dirty := &DirtyRepoError{Path: pe.Target}

	if !r.confirm.Confirm(fmt.Sprintf("%s has uncommitted changes. Stash, pull, and restore?", pe.Target)) {
		r.log.Warnf("skipping %s: %v", pe.Target, dirty)

		outcome.Kind = Skipped
		outcome.Detail = dirty.Error()

		return outcome
	}

	if err := r.ops.Stash(ctx, pe.Target); err != nil {
		r.log.Errorf("stash failed for %s: %v", pe.Target, err)

		outcome.Kind = Failure
		outcome.Detail = fmt.Sprintf("stash failed: %v", err)

		return outcome
	}

	pullErr := r.pullWithFallback(ctx, pe.Target)

	if err := r.ops.StashPop(ctx, pe.Target); err != nil {
		r.log.Warnf("failed to restore stashed changes in %s: %v", pe.Target, err)
	}

	if pullErr != nil {
		r.log.Errorf("update of %s failed: %v", pe.Target, pullErr)

		outcome.Kind = Failure
		outcome.Detail = pullErr.Error()

		return outcome
	}

	r.log.Successf("updated %s (local changes restored)", pe.Target)

	outcome.Kind = Success

	return outcome
}

func (r *Runner) pullWithFallback(ctx context.Context, dir string) error {
	err := r.ops.Pull(ctx, dir, primaryBranch)
	if err == nil {
		return nil
	}

	r.log.Debugf("pull of %s from %s failed (%v), trying %s", dir, primaryBranch, err, legacyBranch)

	if fallbackErr := r.ops.Pull(ctx, dir, legacyBranch); fallbackErr == nil {
		return nil
	}

	return err
}

// processConflict deals with a target that exists but is not a checkout.
// The default is to skip; only an explicit confirmation moves the existing
// directory aside to a timestamped backup before cloning.
func (r *Runner) processConflict(ctx context.Context, pe PlannedEntry) Outcome {
	outcome := Outcome{Entry: pe.Entry, Target: pe.Target, Action: ActionConflict}

	if r.dryRun {
		r.log.Infof("dry-run: %s exists and is not a git checkout; would prompt", pe.Target)

		outcome.Kind = Skipped
		outcome.Detail = "dry-run: existing non-git directory"

		return outcome
	}

	if !r.confirm.Confirm(fmt.Sprintf("%s exists but is not a git checkout. Back it up and clone?", pe.Target)) {
		r.log.Warnf("skipping %s: existing non-git directory left untouched", pe.Target)

		outcome.Kind = Skipped
		outcome.Detail = "existing non-git directory left untouched"

		return outcome
	}

	backup := fmt.Sprintf("%s.backup-%s", pe.Target, r.now().Format(backupTimeFormat))

	if err := os.Rename(pe.Target, backup); err != nil {
		r.log.Errorf("failed to move %s aside: %v", pe.Target, err)

		outcome.Kind = Failure
		outcome.Detail = fmt.Sprintf("backup failed: %v", err)

		return outcome
	}

	r.log.Infof("moved %s to %s", pe.Target, backup)

	return r.processClone(ctx, pe)
}

// processClone attempts the clone up to MaxRetries times, removing any
// partial target after a failed attempt.
func (r *Runner) processClone(ctx context.Context, pe PlannedEntry) Outcome {
	outcome := Outcome{Entry: pe.Entry, Target: pe.Target, Action: ActionClone}

	if r.dryRun {
		r.log.Infof("dry-run: would clone %s into %s", pe.Entry.URL, pe.Target)

		outcome.Kind = Success
		outcome.Detail = "dry-run: clone planned"

		return outcome
	}

	if err := os.MkdirAll(filepath.Dir(pe.Target), 0o755); err != nil {
		r.log.Errorf("failed to create parent directory for %s: %v", pe.Target, err)

		outcome.Kind = Failure
		outcome.Detail = err.Error()

		return outcome
	}

	var lastErr error

	for attempt := 1; attempt <= r.cfg.MaxRetries; attempt++ {
		outcome.Attempts = attempt

		err := r.ops.Clone(ctx, pe.Entry.URL, pe.Target)
		if err == nil {
			r.log.Successf("cloned %s into %s", pe.Entry.URL, pe.Target)

			r.runSetupHook(ctx, pe.Target)

			outcome.Kind = Success

			return outcome
		}

		lastErr = err

		// remove the partial checkout so a retry starts clean
		_ = os.RemoveAll(pe.Target)

		r.log.Warnf("clone attempt %d/%d for %s failed: %v", attempt, r.cfg.MaxRetries, pe.Entry.URL, err)

		if attempt < r.cfg.MaxRetries && ctx.Err() == nil {
			r.sleep(r.cfg.RetryDelay)
		}

		if ctx.Err() != nil {
			break
		}
	}

	exhausted := &RetriesExhaustedError{URL: pe.Entry.URL, Attempts: outcome.Attempts, Err: lastErr}
	r.log.Errorf("%v", exhausted)

	outcome.Kind = Failure
	outcome.Detail = exhausted.Error()

	return outcome
}

// runSetupHook executes a recognized setup script at the repository root.
// Informational only; a hook failure never fails the entry.
func (r *Runner) runSetupHook(ctx context.Context, target string) {
	hook := filepath.Join(target, setupHookName)

	if _, err := os.Stat(hook); err != nil {
		return
	}

	r.log.Infof("running setup hook %s", hook)

	cmd := exec.CommandContext(ctx, "sh", setupHookName)
	cmd.Dir = target

	output, err := cmd.CombinedOutput()
	if err != nil {
		r.log.Warnf("setup hook %s failed: %v - %s", hook, err, output)
		return
	}

	r.log.Infof("setup hook %s completed", hook)
}
