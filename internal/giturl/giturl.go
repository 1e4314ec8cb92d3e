// Package giturl validates and normalizes git remote URLs, including the
// scp-like ssh shorthand (user@host:path).
package giturl

import (
	"net/url"
	"regexp"
	"strings"
)

var scpLikePattern = regexp.MustCompile(`^[\w.~-]+@[\w.-]+:.+$`)

// IsValid reports whether the string is an acceptable repository URL:
// http, https, git or ssh scheme, or the scp-like ssh shorthand.
func IsValid(u string) bool {
	return isSupportedProtocol(u) || scpLikePattern.MatchString(u)
}

func isSupportedProtocol(u string) bool {
	return strings.HasPrefix(u, "ssh://") ||
		strings.HasPrefix(u, "git+ssh://") ||
		strings.HasPrefix(u, "git://") ||
		strings.HasPrefix(u, "http://") ||
		strings.HasPrefix(u, "git+https://") ||
		strings.HasPrefix(u, "https://")
}

// Parse normalizes git remote urls, including scp-like syntax
// (git@github.com:owner/repo).
func Parse(rawURL string) (*url.URL, error) {
	if !isSupportedProtocol(rawURL) &&
		strings.ContainsRune(rawURL, ':') &&
		// not a Windows path
		!strings.ContainsRune(rawURL, '\\') {
		// support scp-like syntax for ssh protocol
		rawURL = "ssh://" + strings.Replace(rawURL, ":", "/", 1)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}

	switch u.Scheme {
	case "git+https":
		u.Scheme = "https"
	case "git+ssh":
		u.Scheme = "ssh"
	}

	if u.Scheme != "ssh" {
		return u, nil
	}

	if strings.HasPrefix(u.Path, "//") {
		u.Path = strings.TrimPrefix(u.Path, "/")
	}

	u.Host = strings.TrimSuffix(u.Host, ":"+u.Port())

	return u, nil
}

// RepoName extracts the repository basename from a URL, stripping the
// version-control suffix.
func RepoName(rawURL string) string {
	trimmed := strings.TrimSuffix(strings.TrimRight(rawURL, "/"), ".git")

	u, err := Parse(trimmed)
	if err == nil {
		if parts := strings.Split(strings.Trim(u.Path, "/"), "/"); len(parts) > 0 && parts[len(parts)-1] != "" {
			return parts[len(parts)-1]
		}
	}

	// Fallback to basic extraction
	parts := strings.Split(trimmed, "/")

	return parts[len(parts)-1]
}

// Equivalent reports whether two URLs refer to the same repository,
// accounting for scheme shorthand and the .git suffix.
func Equivalent(a, b string) bool {
	return normalize(a) == normalize(b)
}

func normalize(rawURL string) string {
	trimmed := strings.TrimSuffix(strings.TrimRight(rawURL, "/"), ".git")

	u, err := Parse(trimmed)
	if err != nil {
		return strings.ToLower(trimmed)
	}

	host := u.Hostname()
	path := strings.Trim(u.Path, "/")

	return strings.ToLower(host + "/" + path)
}
