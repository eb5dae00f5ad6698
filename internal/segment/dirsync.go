package segment

import (
	"os"

	"github.com/NavyaZaveri/lsm-engine/pkg/errors"
)

// fsyncDir fsyncs a directory so that the rename that makes a new segment
// visible is itself durable across a crash.
func fsyncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "open segment directory for fsync").WithPath(dir)
	}
	defer d.Close()

	if err := d.Sync(); err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "fsync segment directory").WithPath(dir)
	}
	return nil
}
