//go:build linux || darwin

package fsys

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// DiskFree returns the bytes available to unprivileged callers on the
// filesystem containing path.
func DiskFree(path string) (int64, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, fmt.Errorf("statfs %q: %w", path, err)
	}
	return int64(st.Bavail) * int64(st.Bsize), nil
}
