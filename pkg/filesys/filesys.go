// Package filesys provides the small set of file system operations the
// engine and its subsystems actually need: creating the data directory,
// listing segment files by glob, and checking whether a path exists.
package filesys

import (
	"errors"
	"os"
	"path/filepath"
)

var (
	ErrIsNotDir = errors.New("path isn't a directory")
)

// CreateDir creates a directory at the specified path with the given permissions.
//
// If the directory already exists:
//   - If 'force' is true, it proceeds without error.
//   - If 'force' is false, it returns an error.
//
// It also returns an error if the existing path is a file (not a directory).
func CreateDir(dirPath string, permission os.FileMode, force bool) error {
	// Get file information for the given path.
	stat, err := os.Stat(dirPath)
	// If 'force' is false and the path exists, report that it already
	// exists; any other stat failure is returned as is.
	if !force && !os.IsNotExist(err) {
		if err == nil {
			return os.ErrExist
		}
		return err
	}

	// If the path exists and it's not a directory, return an error.
	if stat != nil && !stat.IsDir() {
		return ErrIsNotDir
	}

	// Create all necessary parent directories if they don't exist, with the specified permissions.
	if err := os.MkdirAll(dirPath, permission); err != nil {
		return err
	}

	// Change the permissions of the newly created directory to 0755 (rwxr-xr-x).
	return os.Chmod(dirPath, 0755)
}

// ReadDir reads the directory specified by `dirName` and returns a list of matching file paths.
// It uses `filepath.Glob` which means `dirName` can contain glob patterns (e.g., "mydir/*.txt").
func ReadDir(dirName string) ([]string, error) {
	files, err := filepath.Glob(dirName)
	return files, err
}

// Exists checks if a file or directory at the given `file` path exists.
// It returns true if the file/directory exists, false if it does not,
// and an error if there's any other issue checking its status.
func Exists(file string) (bool, error) {
	_, err := os.Stat(file)
	if err == nil {
		return true, nil // Path exists.
	}
	// If the error indicates that the file does not exist, return false.
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}
