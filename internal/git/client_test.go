package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func requireGit(t *testing.T) {
	t.Helper()

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed, skipping")
	}
}

// setupTestRepo creates a local repository with one commit.
func setupTestRepo(t *testing.T) string {
	t.Helper()
	requireGit(t)

	dir := t.TempDir()

	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir

		output, err := cmd.CombinedOutput()
		require.NoError(t, err, "git %v: %s", args, output)
	}

	run("init", "-b", "main")
	run("config", "user.email", "test@example.com")
	run("config", "user.name", "test")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("hello\n"), 0o644))

	run("add", ".")
	run("commit", "-m", "initial")

	return dir
}

// setupBareRemote creates a bare clone of repoDir usable as an origin.
func setupBareRemote(t *testing.T, repoDir string) string {
	t.Helper()

	bare := filepath.Join(t.TempDir(), "remote.git")

	cmd := exec.Command("git", "clone", "--bare", repoDir, bare)
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "bare clone: %s", output)

	return bare
}

func TestIsRepo(t *testing.T) {
	repo := setupTestRepo(t)
	require.True(t, IsRepo(repo))

	plain := t.TempDir()
	require.False(t, IsRepo(plain))

	// a .git file (worktree pointer) is not a metadata directory
	fake := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(fake, ".git"), []byte("gitdir: elsewhere"), 0o644))
	require.False(t, IsRepo(fake))
}

func TestCloneAndPull(t *testing.T) {
	repo := setupTestRepo(t)
	remote := setupBareRemote(t, repo)

	target := filepath.Join(t.TempDir(), "checkout")

	client := NewClient()
	require.NoError(t, client.Clone(context.Background(), remote, target))
	require.True(t, IsRepo(target))

	pullClient := NewClientForRepo(target)
	require.NoError(t, pullClient.Pull(context.Background(), "main"))
}

func TestPullUnknownBranch(t *testing.T) {
	repo := setupTestRepo(t)
	remote := setupBareRemote(t, repo)

	target := filepath.Join(t.TempDir(), "checkout")

	client := NewClient()
	require.NoError(t, client.Clone(context.Background(), remote, target))

	err := NewClientForRepo(target).Pull(context.Background(), "no-such-branch")
	require.Error(t, err)

	var gitErr *GitError
	require.ErrorAs(t, err, &gitErr)
}

func TestRemoteURL(t *testing.T) {
	repo := setupTestRepo(t)
	remote := setupBareRemote(t, repo)

	target := filepath.Join(t.TempDir(), "checkout")

	client := NewClient()
	require.NoError(t, client.Clone(context.Background(), remote, target))

	url, err := NewClientForRepo(target).RemoteURL(context.Background())
	require.NoError(t, err)
	require.Equal(t, remote, url)
}

func TestSetRemoteURL(t *testing.T) {
	repo := setupTestRepo(t)
	remote := setupBareRemote(t, repo)

	target := filepath.Join(t.TempDir(), "checkout")

	client := NewClient()
	require.NoError(t, client.Clone(context.Background(), remote, target))

	repoClient := NewClientForRepo(target)
	require.NoError(t, repoClient.SetRemoteURL(context.Background(), "https://example.com/new.git"))

	url, err := repoClient.RemoteURL(context.Background())
	require.NoError(t, err)
	require.Equal(t, "https://example.com/new.git", url)
}

func TestIsDirty(t *testing.T) {
	repo := setupTestRepo(t)
	client := NewClientForRepo(repo)

	require.False(t, client.IsDirty(context.Background()))

	require.NoError(t, os.WriteFile(filepath.Join(repo, "scratch.txt"), []byte("wip"), 0o644))
	require.True(t, client.IsDirty(context.Background()))
}

func TestStashRoundTrip(t *testing.T) {
	repo := setupTestRepo(t)
	client := NewClientForRepo(repo)

	require.NoError(t, os.WriteFile(filepath.Join(repo, "README.md"), []byte("edited\n"), 0o644))
	require.True(t, client.IsDirty(context.Background()))

	require.NoError(t, client.Stash(context.Background()))
	require.False(t, client.IsDirty(context.Background()))

	require.NoError(t, client.StashPop(context.Background()))
	require.True(t, client.IsDirty(context.Background()))
}

func TestConfigRemoteURL(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config")

	content := `[core]
	repositoryformatversion = 0
	filemode = true
[remote "origin"]
	url = https://example.com/owner/repo.git
	fetch = +refs/heads/*:refs/remotes/origin/*
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o644))

	url, err := configRemoteURL(configPath)
	require.NoError(t, err)
	require.Equal(t, "https://example.com/owner/repo.git", url)
}

func TestConfigRemoteURLMissingOrigin(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config")

	require.NoError(t, os.WriteFile(configPath, []byte("[core]\n\tbare = false\n"), 0o644))

	_, err := configRemoteURL(configPath)
	require.Error(t, err)
}
