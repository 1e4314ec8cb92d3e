// Package repolist reads the newline-delimited repository list file.
package repolist

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/inovacc/reposync/internal/giturl"
)

// ErrListNotFound indicates the list file is absent. Recoverable: the
// caller writes a sample list and reports the condition instead of
// crashing (the expected first-run path).
var ErrListNotFound = errors.New("repository list file not found")

// ErrEmptyList indicates the file held no usable entries after filtering.
var ErrEmptyList = errors.New("repository list contains no valid entries")

// Entry is one repository to process. Immutable once parsed.
type Entry struct {
	// URL is the clone URL, already validated against the accepted schemes
	URL string

	// Dir optionally overrides the target subdirectory name
	Dir string
}

// WarnFunc receives per-line parse warnings.
type WarnFunc func(format string, args ...any)

// Parse reads the list at path preserving file order. Blank lines and
// #-comments are skipped; lines with an invalid URL are dropped with a
// warning. An empty result is an error.
func Parse(path string, warn WarnFunc) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrListNotFound, path)
		}

		return nil, fmt.Errorf("failed to open repository list %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	var entries []Entry

	scanner := bufio.NewScanner(file)
	lineNo := 0

	for scanner.Scan() {
		lineNo++

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)

		url := fields[0]

		var dir string
		if len(fields) > 1 {
			dir = fields[1]
		}

		if len(fields) > 2 {
			warn("%s:%d: ignoring trailing tokens after %q", path, lineNo, dir)
		}

		if !giturl.IsValid(url) {
			warn("%s:%d: skipping invalid repository URL %q", path, lineNo, url)
			continue
		}

		entries = append(entries, Entry{URL: url, Dir: dir})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read repository list %s: %w", path, err)
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyList, path)
	}

	return entries, nil
}

// WriteSample creates a first-run list file with two illustrative entries.
func WriteSample(path string) error {
	content := `# reposync repository list
# One repository per line:
#   <url> [custom-directory]
# Lines starting with # are ignored.

https://github.com/inovacc/clonr.git
https://github.com/inovacc/reposync.git tools/reposync
`

	return os.WriteFile(path, []byte(content), 0o644)
}
