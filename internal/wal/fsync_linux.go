//go:build linux

package wal

import "os"

// fsync is a thin wrapper around os.File's Sync(), which maps directly onto
// fsync(2) on Linux.
func fsync(f *os.File) error {
	return f.Sync()
}
