package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/inovacc/reposync/internal/config"
	"github.com/inovacc/reposync/internal/osprofile"
)

// runCommand executes a fresh root command with the given args and returns
// its captured stdout.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCmd()

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}

// testWorkspace prepares temp list/config/log/clone paths and returns the
// common flag arguments.
func testWorkspace(t *testing.T, listContent string) (listPath string, flags []string) {
	t.Helper()

	dir := t.TempDir()
	listPath = filepath.Join(dir, "repositories.txt")

	if listContent != "" {
		require.NoError(t, os.WriteFile(listPath, []byte(listContent), 0o644))
	}

	configPath := filepath.Join(dir, "reposync.conf")
	configContent := "CLONE_DIR=" + filepath.Join(dir, "clones") + "\n" +
		"LOG_DIR=" + filepath.Join(dir, "logs") + "\n"
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0o644))

	return listPath, []string{"--config", configPath, "--quiet"}
}

func TestDryRunEndToEnd(t *testing.T) {
	listPath, flags := testWorkspace(t, `https://example.com/a.git
https://example.com/b.git custom-b
`)

	out, err := runCommand(t, append([]string{listPath, "--dry-run"}, flags...)...)
	require.NoError(t, err)

	require.Contains(t, out, "Success: 2")
	require.Contains(t, out, "Failure: 0")

	// plan only: nothing cloned
	cloneRoot := filepath.Join(filepath.Dir(listPath), "clones")
	require.NoDirExists(t, filepath.Join(cloneRoot, "a"))
	require.NoDirExists(t, filepath.Join(cloneRoot, "custom-b"))
}

func TestDryRunWritesLogs(t *testing.T) {
	listPath, flags := testWorkspace(t, "https://example.com/a.git\n")

	_, err := runCommand(t, append([]string{listPath, "--dry-run"}, flags...)...)
	require.NoError(t, err)

	logDir := filepath.Join(filepath.Dir(listPath), "logs")

	data, err := os.ReadFile(filepath.Join(logDir, "reposync.log"))
	require.NoError(t, err)
	require.Contains(t, string(data), "dry run")
}

func TestMissingListCreatesSampleAndFails(t *testing.T) {
	listPath, flags := testWorkspace(t, "")

	_, err := runCommand(t, append([]string{listPath, "--dry-run"}, flags...)...)
	require.Error(t, err)

	// the recoverable path leaves a sample behind for the next run
	data, readErr := os.ReadFile(listPath)
	require.NoError(t, readErr)
	require.Contains(t, string(data), "# reposync repository list")
}

func TestListWithOnlyInvalidEntriesFails(t *testing.T) {
	listPath, flags := testWorkspace(t, `# junk only

not-a-url
`)

	_, err := runCommand(t, append([]string{listPath, "--dry-run"}, flags...)...)
	require.Error(t, err)
}

func TestUnknownFlagFails(t *testing.T) {
	_, err := runCommand(t, "--definitely-not-a-flag")
	require.Error(t, err)
}

func TestHelpSucceeds(t *testing.T) {
	out, err := runCommand(t, "--help")
	require.NoError(t, err)
	require.Contains(t, out, "list-file")
	require.Contains(t, out, "--dry-run")
}

func TestApplyOverrides(t *testing.T) {
	cmd := NewRootCmd()
	require.NoError(t, cmd.Flags().Parse([]string{"-r", "5", "-l", "/tmp/elsewhere", "-v", "9"}))

	cfg := config.Defaults(osprofile.Linux)
	applyOverrides(cmd.Flags(), &cfg)

	require.Equal(t, 5, cfg.MaxRetries)
	require.Equal(t, "/tmp/elsewhere", cfg.LogDir)
	require.Equal(t, 4, cfg.Verbosity, "verbosity clamps to 4")
}

func TestQuietWinsOverVerbose(t *testing.T) {
	cmd := NewRootCmd()
	require.NoError(t, cmd.Flags().Parse([]string{"-v", "4", "-q"}))

	cfg := config.Defaults(osprofile.Linux)
	applyOverrides(cmd.Flags(), &cfg)

	require.Equal(t, 0, cfg.Verbosity)
}

func TestNoOverridesKeepsConfig(t *testing.T) {
	cmd := NewRootCmd()
	require.NoError(t, cmd.Flags().Parse(nil))

	cfg := config.Defaults(osprofile.Linux)
	want := cfg

	applyOverrides(cmd.Flags(), &cfg)

	require.Equal(t, want, cfg)
}
