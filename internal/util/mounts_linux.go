//go:build linux

package util

import (
	"fmt"
	"os"
	"path/filepath"
)

// FilesystemOf finds the mount a path lives on by reading /proc/mounts.
// Paths that do not exist yet are resolved through their parent directory.
func FilesystemOf(path string) (*MountInfo, error) {
	abs, err := existingAncestor(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open("/proc/mounts")
	if err != nil {
		return nil, fmt.Errorf("failed to read mounts: %w", err)
	}
	defer f.Close()

	mounts, err := parseMounts(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse mounts: %w", err)
	}
	return mountFor(abs, mounts), nil
}

func existingAncestor(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}
	for {
		if resolved, err := filepath.EvalSymlinks(abs); err == nil {
			return resolved, nil
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return abs, nil
		}
		abs = parent
	}
}
