// Package wal implements the write-ahead log the engine appends every write
// to before it touches the memtable. Every record durable in the store
// passed through here first: Append only returns once the bytes are fsynced,
// and Replay is how a restarted engine rebuilds its memtable after a crash.
package wal

import (
	"io"
	"os"
	"path/filepath"

	"github.com/NavyaZaveri/lsm-engine/internal/codec"
	"github.com/NavyaZaveri/lsm-engine/pkg/errors"
)

// WAL is a single append-only file of codec-encoded records. It is not safe
// for concurrent use; the engine's single-writer model is what makes that
// acceptable.
type WAL struct {
	file *os.File
	path string
}

// Open opens (creating if necessary) the WAL file at path for appending.
func Open(path string) (*WAL, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return nil, errors.ClassifyFileOpenError(err, path, filepath.Base(path))
	}
	return &WAL{file: f, path: path}, nil
}

// Path returns the filesystem path backing this WAL.
func (w *WAL) Path() string {
	return w.path
}

// Append encodes (key, value) and writes it to the log, fsyncing the file
// before returning. A caller that observes a nil error has a durability
// guarantee: the record survives a crash that happens immediately after.
func (w *WAL) Append(key, value []byte) error {
	buf, err := codec.Encode(nil, key, value)
	if err != nil {
		return err
	}
	if _, err := w.file.Write(buf); err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "append wal record").WithPath(w.path)
	}
	if err := fsync(w.file); err != nil {
		return errors.ClassifySyncError(err, filepath.Base(w.path), w.path, w.offset())
	}
	return nil
}

// offset reports the file's current write position, for attaching to sync
// error details. It returns 0 if the position can't be determined.
func (w *WAL) offset() int {
	pos, err := w.file.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0
	}
	return int(pos)
}

// AppendDelete writes a tombstone record for key, with the same durability
// guarantee as Append.
func (w *WAL) AppendDelete(key []byte) error {
	buf := codec.EncodeTombstone(nil, key)
	if _, err := w.file.Write(buf); err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "append wal tombstone").WithPath(w.path)
	}
	if err := fsync(w.file); err != nil {
		return errors.ClassifySyncError(err, filepath.Base(w.path), w.path, w.offset())
	}
	return nil
}

// Truncate discards all records currently in the log and fsyncs both the
// file and its parent directory, so the empty state itself is durable. The
// engine calls this once a memtable drain has been safely written out as
// segment files and the records no longer need WAL-based recovery.
func (w *WAL) Truncate() error {
	if err := w.file.Truncate(0); err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "truncate wal file").WithPath(w.path)
	}
	if _, err := w.file.Seek(0, io.SeekStart); err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "seek wal file after truncate").WithPath(w.path)
	}
	if err := fsync(w.file); err != nil {
		return errors.ClassifySyncError(err, filepath.Base(w.path), w.path, 0)
	}
	return fsyncDir(filepath.Dir(w.path))
}

// Close releases the underlying file descriptor without truncating or
// fsyncing; callers that need durability first call Truncate or rely on the
// fsync already performed by Append.
func (w *WAL) Close() error {
	return w.file.Close()
}

// Replay decodes every record currently in the log, starting from the
// beginning, and invokes fn for each one in order. If the log's tail is
// corrupted or truncated by a crash mid-append, Replay stops at the last
// clean record boundary instead of propagating the decode error, since a
// torn final record is an expected consequence of a crash during Append,
// not a sign of a failed store. fn receives a tombstone as a record with a
// nil Value.
//
// Replay returns the byte offset of the clean prefix it was able to decode.
// A caller that goes on to reopen the log for appending must first truncate
// it to that offset (see TruncateToOffset) — otherwise garbage left by a
// torn tail sits between the clean records and whatever gets appended next,
// and the following restart's Replay stops there, silently losing every
// record appended after it.
func Replay(path string, fn func(codec.Record) error) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, errors.ClassifyFileOpenError(err, path, filepath.Base(path))
	}
	defer f.Close()

	dec := codec.NewDecoder(f)
	for {
		rec, _, err := dec.Next()
		if err == io.EOF {
			return dec.Offset(), nil
		}
		if err != nil {
			// A torn tail record: stop cleanly at the last good boundary
			// rather than failing the whole replay.
			return dec.Offset(), nil
		}
		if err := fn(rec); err != nil {
			return dec.Offset(), err
		}
	}
}

// TruncateToOffset discards everything in the log past offset and fsyncs
// both the file and its parent directory. It is a no-op if the file is
// already exactly offset bytes long, which is the common case where no
// crash happened between the last Append and this call. The engine calls
// this with the clean-prefix offset Replay returned, before reopening the
// log for appending, so a torn tail left by a crashed Append never sits
// between recovered records and newly appended ones.
func TruncateToOffset(path string, offset int64) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.ClassifyFileOpenError(err, path, filepath.Base(path))
	}
	if info.Size() == offset {
		return nil
	}

	f, err := os.OpenFile(path, os.O_RDWR, 0644)
	if err != nil {
		return errors.ClassifyFileOpenError(err, path, filepath.Base(path))
	}
	defer f.Close()

	if err := f.Truncate(offset); err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "truncate wal tail to clean boundary").WithPath(path)
	}
	if err := fsync(f); err != nil {
		return errors.ClassifySyncError(err, filepath.Base(path), path, int(offset))
	}
	return fsyncDir(filepath.Dir(path))
}
