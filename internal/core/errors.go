package core

import "fmt"

// DirtyRepoError indicates a repository has uncommitted changes
type DirtyRepoError struct {
	Path string
}

func (e *DirtyRepoError) Error() string {
	return fmt.Sprintf("repository has uncommitted changes: %s", e.Path)
}

// PathCollisionError indicates the path exists with different content
type PathCollisionError struct {
	Path        string
	ExpectedURL string
	ActualURL   string
}

func (e *PathCollisionError) Error() string {
	return fmt.Sprintf("path collision: %s contains %s, expected %s",
		e.Path, e.ActualURL, e.ExpectedURL)
}

// RetriesExhaustedError wraps the last failure after all clone attempts
type RetriesExhaustedError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *RetriesExhaustedError) Error() string {
	return fmt.Sprintf("clone of %s failed after %d attempts: %v",
		e.URL, e.Attempts, e.Err)
}

func (e *RetriesExhaustedError) Unwrap() error {
	return e.Err
}
