// Package options provides data structures and functions for configuring
// the lsm-engine store. It defines every parameter that controls flush
// thresholds, index density, and storage locations, and is the only way
// to obtain a validated Options value ready to hand to engine.New.
package options

import (
	"strings"

	"github.com/NavyaZaveri/lsm-engine/pkg/errors"
)

// Options defines the configuration parameters for the engine. It provides
// control over durability (PersistData), flush behavior (SegmentSize,
// InMemoryCapacity), read cost (SparseOffset), and storage locations.
type Options struct {
	// PersistData controls whether writes are backed by a WAL and segment
	// files on disk. When false the engine operates purely in memory: no
	// WAL is opened, no segment files are written, and a process restart
	// loses all data.
	//
	// Default: true
	PersistData bool `json:"persistData"`

	// DataDir is the base directory under which the WAL file and the
	// segments directory are resolved. Ignored when PersistData is false.
	//
	// Default: current directory (".")
	DataDir string `json:"dataDir"`

	// WALName is the filename of the write-ahead log inside DataDir.
	//
	// Default: "wal.log"
	WALName string `json:"walName"`

	// SegmentsDir is the subdirectory of DataDir where segment files are
	// stored.
	//
	// Default: "segments"
	SegmentsDir string `json:"segmentsDir"`

	// SegmentPrefix is the filename prefix for segment files. The final
	// filename is "<prefix>_<zero-padded sequence>_<timestamp>.seg".
	//
	// Default: "segment"
	SegmentPrefix string `json:"segmentPrefix"`

	// SegmentSize bounds the number of records a single segment file may
	// hold. A memtable drain that exceeds this produces multiple
	// consecutive segments.
	//
	// Default: 4096
	SegmentSize uint64 `json:"segmentSize"`

	// InMemoryCapacity is the memtable flush threshold, counted in
	// records. Once a write brings the memtable to this size, the engine
	// flushes before accepting the next write.
	//
	// Default: 1024
	InMemoryCapacity uint64 `json:"inMemoryCapacity"`

	// SparseOffset controls sparse-index density: every SparseOffset-th
	// record in a segment (counting from the first, which is always
	// indexed) contributes an index entry. Smaller values mean a larger
	// in-memory index and shorter bounded scans on lookup.
	//
	// Default: 64
	SparseOffset uint64 `json:"sparseOffset"`
}

// OptionFunc is a function that mutates an Options value, applied over
// NewDefaultOptions() to build a final configuration.
type OptionFunc func(*Options)

// WithPersistData toggles whether the engine is backed by disk.
func WithPersistData(persist bool) OptionFunc {
	return func(o *Options) { o.PersistData = persist }
}

// WithDataDir sets the base directory where files will be stored.
func WithDataDir(directory string) OptionFunc {
	return func(o *Options) {
		directory = strings.TrimSpace(directory)
		if directory != "" {
			o.DataDir = directory
		}
	}
}

// WithWALName sets the write-ahead log's filename within DataDir.
func WithWALName(name string) OptionFunc {
	return func(o *Options) {
		name = strings.TrimSpace(name)
		if name != "" {
			o.WALName = name
		}
	}
}

// WithSegmentsDir sets the subdirectory used for segment files.
func WithSegmentsDir(directory string) OptionFunc {
	return func(o *Options) {
		directory = strings.TrimSpace(directory)
		if directory != "" {
			o.SegmentsDir = directory
		}
	}
}

// WithSegmentPrefix sets the filename prefix for segment files.
func WithSegmentPrefix(prefix string) OptionFunc {
	return func(o *Options) {
		prefix = strings.TrimSpace(prefix)
		if prefix != "" {
			o.SegmentPrefix = prefix
		}
	}
}

// WithSegmentSize sets the maximum number of records per segment file.
func WithSegmentSize(size uint64) OptionFunc {
	return func(o *Options) { o.SegmentSize = size }
}

// WithInMemoryCapacity sets the memtable flush threshold, in records.
func WithInMemoryCapacity(capacity uint64) OptionFunc {
	return func(o *Options) { o.InMemoryCapacity = capacity }
}

// WithSparseOffset sets the sparse index density.
func WithSparseOffset(offset uint64) OptionFunc {
	return func(o *Options) { o.SparseOffset = offset }
}

// Validate checks an Options value for the configuration errors spec'd as
// build-time failures: zero-valued thresholds and a missing data directory
// when persistence is requested. It never mutates o.
func (o *Options) Validate() error {
	if o.SparseOffset == 0 {
		return errors.NewConfigurationValidationError("SparseOffset", "must be greater than zero")
	}
	if o.InMemoryCapacity == 0 {
		return errors.NewConfigurationValidationError("InMemoryCapacity", "must be greater than zero")
	}
	if o.SegmentSize == 0 {
		return errors.NewConfigurationValidationError("SegmentSize", "must be greater than zero")
	}
	if o.PersistData && strings.TrimSpace(o.DataDir) == "" {
		return errors.NewConfigurationValidationError("DataDir", "must be set when PersistData is true")
	}
	if o.PersistData && strings.TrimSpace(o.WALName) == "" {
		return errors.NewConfigurationValidationError("WALName", "must be set when PersistData is true")
	}
	if o.PersistData && strings.TrimSpace(o.SegmentsDir) == "" {
		return errors.NewConfigurationValidationError("SegmentsDir", "must be set when PersistData is true")
	}
	return nil
}
