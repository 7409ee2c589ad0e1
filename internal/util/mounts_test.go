package util

import (
	"os"
	"strings"
	"testing"
)

const sampleMounts = `sysfs /sys sysfs rw,nosuid 0 0
/dev/sda1 / ext4 rw,relatime 0 0
nas:/export/music /mnt/music nfs4 rw,vers=4.2 0 0
//nas/share /mnt/music\040share cifs rw 0 0
/dev/sdb1 /mnt/musicdata ext4 rw 0 0
broken-line
`

func TestParseMounts(t *testing.T) {
	mounts, err := parseMounts(strings.NewReader(sampleMounts))
	if err != nil {
		t.Fatalf("parseMounts failed: %v", err)
	}

	if mounts["/"] != "ext4" {
		t.Errorf("root fs = %q, want ext4", mounts["/"])
	}
	if mounts["/mnt/music share"] != "cifs" {
		t.Errorf("escaped mount point not decoded: %v", mounts)
	}
	if len(mounts) != 5 {
		t.Errorf("got %d mounts, want 5", len(mounts))
	}
}

func TestMountFor(t *testing.T) {
	mounts, _ := parseMounts(strings.NewReader(sampleMounts))

	tests := []struct {
		path       string
		mountPoint string
		remote     bool
	}{
		{"/home/user/tnote.db", "/", false},
		{"/mnt/music/album/tnote.db", "/mnt/music", true},
		{"/mnt/music", "/mnt/music", true},
		{"/mnt/musicdata/tnote.db", "/mnt/musicdata", false},
		{"/mnt/music share/x.db", "/mnt/music share", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			info := mountFor(tt.path, mounts)
			if info.MountPoint != tt.mountPoint {
				t.Errorf("MountPoint = %q, want %q", info.MountPoint, tt.mountPoint)
			}
			if info.Remote != tt.remote {
				t.Errorf("Remote = %v, want %v (fs %s)", info.Remote, tt.remote, info.FSType)
			}
		})
	}
}

func TestIsRemoteFSType(t *testing.T) {
	for fs, want := range map[string]bool{
		"nfs4":       true,
		"CIFS":       true,
		"smbfs":      true,
		"fuse.sshfs": true,
		"ext4":       false,
		"apfs":       false,
		"":           false,
	} {
		if got := IsRemoteFSType(fs); got != want {
			t.Errorf("IsRemoteFSType(%q) = %v, want %v", fs, got, want)
		}
	}
}

func TestFilesystemOf_TempDir(t *testing.T) {
	info, err := FilesystemOf(os.TempDir())
	if err != nil {
		t.Fatalf("FilesystemOf failed: %v", err)
	}
	t.Logf("temp dir: fs=%q mount=%q remote=%v", info.FSType, info.MountPoint, info.Remote)
}

func TestFilesystemOf_MissingPathUsesParent(t *testing.T) {
	if _, err := FilesystemOf(os.TempDir() + "/does/not/exist/yet.db"); err != nil {
		t.Errorf("FilesystemOf on a missing path failed: %v", err)
	}
}
