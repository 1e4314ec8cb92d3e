package git

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// GitError carries the stderr and exit code of a failed git command.
type GitError struct {
	ExitCode int
	Stderr   string
	Args     []string
	err      error
}

func (e *GitError) Error() string {
	if e.Stderr == "" {
		return fmt.Errorf("git command failed: %w", e.err).Error()
	}
	return fmt.Sprintf("git command failed: %s", strings.TrimSpace(e.Stderr))
}

func (e *GitError) Unwrap() error {
	return e.err
}

// NewGitError creates a GitError from command output and error
func NewGitError(args []string, stderr string, err error) *GitError {
	exitCode := -1

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	}

	return &GitError{
		ExitCode: exitCode,
		Stderr:   stderr,
		Args:     args,
		err:      err,
	}
}

// Common error messages from git
const (
	errMsgNotRepository    = "not a git repository"
	errMsgAuthFailed       = "Authentication failed"
	errMsgPermissionDenied = "Permission denied"
	errMsgRefNotFound      = "couldn't find remote ref"
)

// IsNotRepository checks if the error indicates not a git repository
func IsNotRepository(err error) bool {
	return containsError(err, errMsgNotRepository)
}

// IsAuthRequired checks if the error indicates authentication is required
func IsAuthRequired(err error) bool {
	return containsError(err, errMsgAuthFailed) || containsError(err, errMsgPermissionDenied)
}

// IsRefNotFound checks if the error indicates a ref was not found
func IsRefNotFound(err error) bool {
	return containsError(err, errMsgRefNotFound)
}

// IsNetworkError checks if the error looks like a transient network failure
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}

	indicators := []string{
		"connection refused",
		"connection reset",
		"connection timed out",
		"could not resolve host",
		"network is unreachable",
		"temporary failure",
		"operation timed out",
		"the remote end hung up",
		"early eof",
	}

	msg := strings.ToLower(err.Error())
	for _, indicator := range indicators {
		if strings.Contains(msg, indicator) {
			return true
		}
	}

	return false
}

// containsError checks if the error contains a specific message
func containsError(err error, msg string) bool {
	if err == nil {
		return false
	}

	var gitErr *GitError
	if errors.As(err, &gitErr) {
		return strings.Contains(strings.ToLower(gitErr.Stderr), strings.ToLower(msg))
	}

	return strings.Contains(strings.ToLower(err.Error()), strings.ToLower(msg))
}

// GetExitCode returns the exit code from a git error, or -1 if not available
func GetExitCode(err error) int {
	if err == nil {
		return 0
	}

	var gitErr *GitError
	if errors.As(err, &gitErr) {
		return gitErr.ExitCode
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}

	return -1
}
