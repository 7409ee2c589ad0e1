//go:build darwin

package util

import (
	"fmt"
	"path/filepath"
	"syscall"
)

// FilesystemOf reads the filesystem type of path from statfs
func FilesystemOf(path string) (*MountInfo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	var stat syscall.Statfs_t
	for {
		if err := syscall.Statfs(abs, &stat); err == nil {
			break
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return nil, fmt.Errorf("failed to stat filesystem for %s", path)
		}
		abs = parent
	}

	fsType := int8ArrayToString(stat.Fstypename[:])
	return &MountInfo{
		Remote:     IsRemoteFSType(fsType),
		FSType:     fsType,
		MountPoint: int8ArrayToString(stat.Mntonname[:]),
	}, nil
}

// int8ArrayToString converts a null-terminated int8 array to a Go string
func int8ArrayToString(arr []int8) string {
	n := 0
	for n < len(arr) && arr[n] != 0 {
		n++
	}
	b := make([]byte, n)
	for i := 0; i < n; i++ {
		b[i] = byte(arr[i])
	}
	return string(b)
}
