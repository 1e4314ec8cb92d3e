package git

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGitErrorMessage(t *testing.T) {
	base := errors.New("exit status 128")

	withStderr := NewGitError([]string{"clone"}, "fatal: repository not found\n", base)
	require.Equal(t, "git command failed: fatal: repository not found", withStderr.Error())

	withoutStderr := NewGitError([]string{"clone"}, "", base)
	require.Equal(t, "git command failed: exit status 128", withoutStderr.Error())

	require.ErrorIs(t, withStderr, base)
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name    string
		stderr  string
		check   func(error) bool
		matches bool
	}{
		{name: "auth failed", stderr: "remote: Authentication failed", check: IsAuthRequired, matches: true},
		{name: "permission denied", stderr: "git@github.com: Permission denied (publickey).", check: IsAuthRequired, matches: true},
		{name: "not auth", stderr: "fatal: repository not found", check: IsAuthRequired, matches: false},
		{name: "ref not found", stderr: "fatal: couldn't find remote ref refs/heads/main", check: IsRefNotFound, matches: true},
		{name: "not a repository", stderr: "fatal: not a git repository", check: IsNotRepository, matches: true},
		{name: "dns failure is network", stderr: "fatal: Could not resolve host: github.com", check: IsNetworkError, matches: true},
		{name: "connection reset is network", stderr: "error: RPC failed; connection reset by peer", check: IsNetworkError, matches: true},
		{name: "auth is not network", stderr: "remote: Authentication failed", check: IsNetworkError, matches: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewGitError([]string{"clone"}, tt.stderr, errors.New("exit status 128"))
			require.Equal(t, tt.matches, tt.check(err))
		})
	}
}

func TestIsNetworkErrorNil(t *testing.T) {
	require.False(t, IsNetworkError(nil))
}

func TestGetExitCode(t *testing.T) {
	require.Equal(t, 0, GetExitCode(nil))
	require.Equal(t, -1, GetExitCode(errors.New("plain")))

	gitErr := &GitError{ExitCode: 128}
	require.Equal(t, 128, GetExitCode(fmt.Errorf("wrapped: %w", gitErr)))
}
