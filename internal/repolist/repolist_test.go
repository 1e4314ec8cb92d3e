package repolist

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type warnCollector struct {
	messages []string
}

func (c *warnCollector) warn(format string, args ...any) {
	c.messages = append(c.messages, fmt.Sprintf(format, args...))
}

func writeList(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "repositories.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestParseWellFormed(t *testing.T) {
	path := writeList(t, `# tools
https://example.com/a.git

https://example.com/b.git custom-b
git@github.com:user/c.git
`)

	var c warnCollector

	entries, err := Parse(path, c.warn)
	require.NoError(t, err)
	require.Empty(t, c.messages)

	require.Equal(t, []Entry{
		{URL: "https://example.com/a.git"},
		{URL: "https://example.com/b.git", Dir: "custom-b"},
		{URL: "git@github.com:user/c.git"},
	}, entries)
}

func TestParseDropsInvalidURLs(t *testing.T) {
	path := writeList(t, `not-a-url
https://example.com/ok.git
ftp://example.com/nope.git
`)

	var c warnCollector

	entries, err := Parse(path, c.warn)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "https://example.com/ok.git", entries[0].URL)
	require.Len(t, c.messages, 2)
}

func TestParseAllFilteredOut(t *testing.T) {
	path := writeList(t, `# only junk

not-a-url
`)

	var c warnCollector

	_, err := Parse(path, c.warn)
	require.ErrorIs(t, err, ErrEmptyList)
	require.Len(t, c.messages, 1)
}

func TestParseMissingFile(t *testing.T) {
	var c warnCollector

	_, err := Parse(filepath.Join(t.TempDir(), "absent.txt"), c.warn)
	require.ErrorIs(t, err, ErrListNotFound)
}

func TestParseIdempotent(t *testing.T) {
	path := writeList(t, `https://example.com/a.git
https://example.com/b.git custom-b
`)

	var c warnCollector

	first, err := Parse(path, c.warn)
	require.NoError(t, err)

	second, err := Parse(path, c.warn)
	require.NoError(t, err)

	require.Equal(t, first, second)
}

func TestParseLeadingWhitespaceAndTabs(t *testing.T) {
	path := writeList(t, "   https://example.com/a.git\thooks\n  # indented comment\n")

	var c warnCollector

	entries, err := Parse(path, c.warn)
	require.NoError(t, err)
	require.Equal(t, []Entry{{URL: "https://example.com/a.git", Dir: "hooks"}}, entries)
}

func TestWriteSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "repositories.txt")
	require.NoError(t, WriteSample(path))

	var c warnCollector

	entries, err := Parse(path, c.warn)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "tools/reposync", entries[1].Dir)
}
