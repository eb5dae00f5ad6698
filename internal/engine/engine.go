// Package engine provides the core coordination logic for the key-value
// store: a memtable backed by a write-ahead log, flushed into an ordered
// set of immutable segments. It is the single place that knows the order
// operations must happen in to keep the write-ahead log, the memtable, and
// the segment set consistent with each other.
//
// The engine assumes a single writer and is not safe for concurrent use
// from multiple goroutines; serializing access is the caller's
// responsibility.
package engine

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/NavyaZaveri/lsm-engine/internal/codec"
	"github.com/NavyaZaveri/lsm-engine/internal/memtable"
	"github.com/NavyaZaveri/lsm-engine/internal/segment"
	"github.com/NavyaZaveri/lsm-engine/internal/wal"
	pkgerrors "github.com/NavyaZaveri/lsm-engine/pkg/errors"
	"github.com/NavyaZaveri/lsm-engine/pkg/filesys"
	"github.com/NavyaZaveri/lsm-engine/pkg/options"
)

// ErrEngineClosed is returned when attempting to perform operations on a
// closed engine.
var ErrEngineClosed = errors.New("operation failed: cannot access closed engine")

// Engine coordinates the memtable, write-ahead log, and segment set that
// together implement the store's durability and read path.
type Engine struct {
	opts   *options.Options
	log    *zap.SugaredLogger
	closed atomic.Bool

	mem  *memtable.Memtable
	wal  *wal.WAL // nil when opts.PersistData is false
	segs *segment.Set

	nextSegmentID uint64
}

// Config holds the parameters needed to initialize a new Engine.
type Config struct {
	Options *options.Options
	Logger  *zap.SugaredLogger
}

// New initializes an Engine per config. When config.Options.PersistData is
// true, it opens (creating if necessary) the data directory, discovers any
// segments left by a previous run, opens the write-ahead log, and replays
// it into a fresh memtable so that writes acknowledged before a crash are
// visible again. When PersistData is false, it starts with empty,
// purely in-memory state.
func New(ctx context.Context, config *Config) (*Engine, error) {
	if config == nil || config.Options == nil || config.Logger == nil {
		return nil, pkgerrors.NewValidationError(
			nil, pkgerrors.ErrorCodeInvalidInput, "engine configuration is required",
		).WithField("config").WithRule("required").WithProvided(config)
	}

	opts := config.Options
	log := config.Logger
	mem := memtable.New()

	if !opts.PersistData {
		log.Infow("starting engine without persistence", "persistData", false)
		return &Engine{opts: opts, log: log, mem: mem, segs: segment.NewEmpty(), nextSegmentID: 1}, nil
	}

	segmentsDirPath := filepath.Join(opts.DataDir, opts.SegmentsDir)
	existingStore, err := filesys.Exists(segmentsDirPath)
	if err != nil {
		return nil, pkgerrors.NewStorageError(err, pkgerrors.ErrorCodeIO, "check for existing segments directory").WithPath(segmentsDirPath)
	}

	if err := filesys.CreateDir(opts.DataDir, 0755, true); err != nil {
		return nil, pkgerrors.ClassifyDirectoryCreationError(err, opts.DataDir)
	}
	if err := filesys.CreateDir(segmentsDirPath, 0755, true); err != nil {
		return nil, pkgerrors.ClassifyDirectoryCreationError(err, segmentsDirPath)
	}

	log.Infow("discovering existing segments", "dataDir", opts.DataDir, "segmentsDir", opts.SegmentsDir, "existingStore", existingStore)
	segs, err := segment.OpenAll(opts.DataDir, opts.SegmentsDir, opts.SegmentPrefix, opts.SparseOffset)
	if err != nil {
		return nil, err
	}
	log.Infow("segments discovered", "count", segs.Len(), "nextSegmentID", segs.NextID())

	walPath := filepath.Join(opts.DataDir, opts.WALName)
	log.Infow("replaying write-ahead log", "path", walPath)
	replayed := 0
	cleanOffset, err := wal.Replay(walPath, func(rec codec.Record) error {
		if rec.IsTombstone() {
			mem.Delete(rec.Key)
		} else {
			mem.Put(rec.Key, rec.Value)
		}
		replayed++
		return nil
	})
	if err != nil {
		segs.Close()
		return nil, err
	}
	log.Infow("write-ahead log replayed", "records", replayed, "cleanOffset", cleanOffset)

	// A crash mid-Append can leave a torn record past cleanOffset. Discard it
	// before reopening for appends, or the next restart's replay would stop
	// there again and silently lose everything written after it.
	if err := wal.TruncateToOffset(walPath, cleanOffset); err != nil {
		segs.Close()
		return nil, err
	}

	w, err := wal.Open(walPath)
	if err != nil {
		segs.Close()
		return nil, err
	}

	return &Engine{
		opts:          opts,
		log:           log,
		mem:           mem,
		wal:           w,
		segs:          segs,
		nextSegmentID: segs.NextID(),
	}, nil
}

// Write durably records (key, value) and applies it to the memtable. If the
// write brings the memtable to its configured capacity, a flush happens
// before Write returns.
func (e *Engine) Write(key, value []byte) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}

	if e.wal != nil {
		if err := e.wal.Append(key, value); err != nil {
			if se, ok := pkgerrors.AsStorageError(err); ok {
				e.log.Errorw("wal append failed", "path", se.Path(), "errorCode", se.Code())
			}
			return err
		}
	}
	e.mem.Put(key, value)

	if uint64(e.mem.Len()) >= e.opts.InMemoryCapacity {
		if err := e.flush(); err != nil {
			return err
		}
	}
	return nil
}

// Read returns the value for key, or found=false if the key has never been
// written (or was written and then deleted). It consults the memtable
// first, falling back to segments newest to oldest.
func (e *Engine) Read(key []byte) (value []byte, found bool, err error) {
	if e.closed.Load() {
		return nil, false, ErrEngineClosed
	}

	if value, found := e.mem.Get(key); found {
		return value, true, nil
	}
	return e.segs.Get(key)
}

// flush drains the memtable and writes it out as one or more new segments —
// in memory only when the engine runs without persistence, or as segment
// files followed by a WAL truncation when it does. A drain larger than
// SegmentSize is split into consecutive SegmentSize-sized groups, each its
// own segment, pushed oldest-group-first so the later (higher-keyed) groups
// of this same flush end up newest, consistent with their higher segment
// IDs.
func (e *Engine) flush() error {
	records := e.mem.DrainOrdered()
	if len(records) == 0 {
		return nil
	}

	chunkSize := int(max(e.opts.SegmentSize, 1))
	for start := 0; start < len(records); start += chunkSize {
		end := min(start+chunkSize, len(records))
		chunk := records[start:end]

		id := e.nextSegmentID
		e.nextSegmentID++

		var seg *segment.Segment
		var err error
		if e.opts.PersistData {
			dir := filepath.Join(e.opts.DataDir, e.opts.SegmentsDir)
			seg, err = segment.CreateFromSorted(dir, e.opts.SegmentPrefix, id, e.opts.SparseOffset, chunk)
		} else {
			seg, err = segment.CreateInMemory(id, e.opts.SparseOffset, chunk)
		}
		if err != nil {
			return err
		}

		e.segs.PushNewest(seg)
		e.log.Infow("flushed memtable chunk", "segmentID", id, "records", len(chunk))
	}

	if e.wal != nil {
		if err := e.wal.Truncate(); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes any buffered writes and releases every resource the engine
// holds. It is idempotent: a second call returns ErrEngineClosed instead of
// repeating the shutdown.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return ErrEngineClosed
	}

	e.log.Infow("closing engine")

	var closeErr error
	if e.mem.Len() > 0 {
		closeErr = multierr.Append(closeErr, e.flush())
	}
	if e.wal != nil {
		closeErr = multierr.Append(closeErr, e.wal.Close())
	}
	closeErr = multierr.Append(closeErr, e.segs.Close())

	if closeErr != nil {
		e.log.Errorw("engine closed with errors", "error", closeErr, "errorCode", pkgerrors.GetErrorCode(closeErr))
	} else {
		e.log.Infow("engine closed successfully")
	}
	return closeErr
}
