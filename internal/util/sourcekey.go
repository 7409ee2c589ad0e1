package util

import (
	"crypto/sha1"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
)

// SourceKey creates a stable identity for an audio source reference.
// Local files are keyed on (absolute path, size, mtime) so an edited file
// gets a new key; remote references are keyed on the URL itself.
func SourceKey(ref string) (string, error) {
	if ref == "" {
		return "", fmt.Errorf("%w: empty source reference", ErrInvalidInput)
	}

	if IsRemoteSource(ref) {
		h := sha1.New()
		fmt.Fprintf(h, "url:%s", ref)
		return fmt.Sprintf("%x", h.Sum(nil)), nil
	}

	abs, err := filepath.Abs(ref)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("failed to stat source: %w", err)
	}

	h := sha1.New()
	fmt.Fprintf(h, "file:%s:%d:%d", abs, info.Size(), info.ModTime().Unix())
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// IsRemoteSource reports whether ref is an http(s) URL rather than a local path
func IsRemoteSource(ref string) bool {
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
