// Package git wraps the git executable for the small set of operations the
// sync run needs.
package git

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
)

// Client runs git commands against one repository directory.
type Client struct {
	GitPath string // Path to git executable
	RepoDir string // Repository directory; empty means process cwd
}

// NewClient creates a git client. A missing git binary surfaces as an
// error on the first command, not here.
func NewClient() *Client {
	gitPath, _ := exec.LookPath("git")

	return &Client{GitPath: gitPath}
}

// NewClientForRepo creates a client bound to a repository directory.
func NewClientForRepo(repoDir string) *Client {
	c := NewClient()
	c.RepoDir = repoDir
	return c
}

// Command creates a git command in the client's repository directory.
// Note: Do not set Stdout/Stderr if you plan to use CombinedOutput()
func (c *Client) Command(ctx context.Context, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, c.GitPath, args...)

	if c.RepoDir != "" {
		cmd.Dir = c.RepoDir
	}

	return cmd
}

// Clone clones a repository into targetPath.
func (c *Client) Clone(ctx context.Context, cloneURL, targetPath string) error {
	cmd := c.Command(ctx, "clone", cloneURL, targetPath)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return NewGitError([]string{"clone"}, string(output), err)
	}

	return nil
}

// Pull fast-forwards the repository from origin on the given branch.
func (c *Client) Pull(ctx context.Context, branch string) error {
	args := []string{"pull", "--ff-only", "origin"}
	if branch != "" {
		args = append(args, branch)
	}

	cmd := c.Command(ctx, args...)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return NewGitError(args, string(output), err)
	}

	return nil
}

// RemoteURL returns the origin remote URL, falling back to reading
// .git/config directly when the git binary call fails.
func (c *Client) RemoteURL(ctx context.Context) (string, error) {
	cmd := c.Command(ctx, "remote", "get-url", "origin")

	output, err := cmd.Output()
	if err == nil {
		return strings.TrimSpace(string(output)), nil
	}

	url, cfgErr := configRemoteURL(filepath.Join(c.RepoDir, ".git", "config"))
	if cfgErr != nil {
		return "", fmt.Errorf("failed to get remote URL: %w", err)
	}

	return url, nil
}

// SetRemoteURL rewrites the origin remote URL.
func (c *Client) SetRemoteURL(ctx context.Context, url string) error {
	cmd := c.Command(ctx, "remote", "set-url", "origin", url)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return NewGitError([]string{"remote", "set-url"}, string(output), err)
	}

	return nil
}

// IsDirty reports whether the worktree has uncommitted changes. Errors
// count as dirty so the caller never pulls over unknown state.
func (c *Client) IsDirty(ctx context.Context) bool {
	cmd := c.Command(ctx, "status", "--porcelain")

	output, err := cmd.Output()
	if err != nil {
		return true
	}

	return len(output) > 0
}

// Stash saves uncommitted changes before an update.
func (c *Client) Stash(ctx context.Context) error {
	args := []string{"stash", "push", "-m", "reposync-autostash"}

	cmd := c.Command(ctx, args...)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return NewGitError(args, string(output), err)
	}

	return nil
}

// StashPop restores changes stashed by Stash.
func (c *Client) StashPop(ctx context.Context) error {
	cmd := c.Command(ctx, "stash", "pop")

	output, err := cmd.CombinedOutput()
	if err != nil {
		return NewGitError([]string{"stash", "pop"}, string(output), err)
	}

	return nil
}

// IsRepo reports whether dir contains a git checkout (a .git metadata
// directory).
func IsRepo(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil && info.IsDir()
}

// remoteSection mirrors the shape of a [remote "..."] block in .git/config.
type remoteSection struct {
	URL   string `ini:"url"`
	Fetch string `ini:"fetch"`
}

// configRemoteURL reads the origin URL straight from .git/config.
func configRemoteURL(configPath string) (string, error) {
	cfg, err := ini.Load(configPath)
	if err != nil {
		return "", err
	}

	sec, err := cfg.GetSection(`remote "origin"`)
	if err != nil {
		return "", fmt.Errorf("no origin remote in %s", configPath)
	}

	var remote remoteSection
	if err := sec.MapTo(&remote); err != nil {
		return "", err
	}

	if remote.URL == "" {
		return "", fmt.Errorf("origin remote in %s has no url", configPath)
	}

	return remote.URL, nil
}
