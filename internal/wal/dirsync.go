package wal

import "os"

// fsyncDir fsyncs a directory so that a file creation, rename, or truncation
// within it is durable even if the machine crashes immediately after. On
// most platforms opening a directory for reading and syncing it is
// sufficient; on platforms where that fails we treat it as a best-effort
// no-op rather than failing the caller's otherwise-successful operation.
func fsyncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return nil
	}
	defer d.Close()

	if err := d.Sync(); err != nil {
		return nil
	}
	return nil
}
