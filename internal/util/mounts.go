package util

import (
	"bufio"
	"io"
	"path/filepath"
	"strings"
)

// MountInfo describes the filesystem a path lives on
type MountInfo struct {
	Remote     bool   // network-mounted (nfs, smb, sshfs...)
	FSType     string // filesystem type name, empty if unknown
	MountPoint string
}

// network filesystem type names, matched as substrings
var remoteFSTypes = []string{"nfs", "cifs", "smb", "ncpfs", "afpfs", "webdav", "fuse.sshfs", "fuse.rclone", "osxfuse"}

// IsRemoteFSType reports whether a filesystem type name is a network filesystem
func IsRemoteFSType(fsType string) bool {
	fsType = strings.ToLower(fsType)
	for _, t := range remoteFSTypes {
		if strings.Contains(fsType, t) {
			return true
		}
	}
	return false
}

// IsRemoteFilesystem reports whether path is on a network filesystem.
// Errors count as local.
func IsRemoteFilesystem(path string) bool {
	info, err := FilesystemOf(path)
	if err != nil {
		return false
	}
	return info.Remote
}

// parseMounts reads /proc/mounts formatted lines into mount point -> fs type
func parseMounts(r io.Reader) (map[string]string, error) {
	mounts := make(map[string]string)
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		// device mountpoint fstype options dump pass
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			continue
		}
		mounts[unescapeMount(fields[1])] = fields[2]
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return mounts, nil
}

// /proc/mounts escapes spaces as \040
func unescapeMount(s string) string {
	return strings.NewReplacer(`\040`, " ", `\011`, "\t", `\134`, `\`).Replace(s)
}

// mountFor picks the longest mount point containing path
func mountFor(path string, mounts map[string]string) *MountInfo {
	info := &MountInfo{}
	for mp, fsType := range mounts {
		if !underMount(path, mp) || len(mp) < len(info.MountPoint) {
			continue
		}
		info.MountPoint = mp
		info.FSType = fsType
	}
	info.Remote = IsRemoteFSType(info.FSType)
	return info
}

func underMount(path, mountPoint string) bool {
	if mountPoint == "/" || path == mountPoint {
		return true
	}
	return strings.HasPrefix(path, strings.TrimSuffix(mountPoint, string(filepath.Separator))+string(filepath.Separator))
}
