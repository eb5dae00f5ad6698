//go:build !linux && !darwin

package wal

import "os"

// fsync falls back to the portable os.File.Sync on platforms without a
// specialized path.
func fsync(f *os.File) error {
	return f.Sync()
}
