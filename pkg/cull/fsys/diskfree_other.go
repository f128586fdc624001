//go:build !linux && !darwin

package fsys

import "fmt"

// DiskFree is unavailable on this platform.
func DiskFree(path string) (int64, error) {
	return 0, fmt.Errorf("%w: disk free space query", ErrUnsupportedEnvironment)
}
