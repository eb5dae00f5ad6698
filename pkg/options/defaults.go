package options

const (
	// DefaultSegmentSize is the default maximum number of records a
	// segment file may hold before the flush that produced it rolls over
	// to the next one.
	DefaultSegmentSize uint64 = 4096

	// DefaultInMemoryCapacity is the default memtable flush threshold, in
	// records.
	DefaultInMemoryCapacity uint64 = 1024

	// DefaultSparseOffset is the default sparse-index density: every 64th
	// record in a segment gets an index entry.
	DefaultSparseOffset uint64 = 64

	// DefaultWALName is the default write-ahead log filename.
	DefaultWALName = "wal.log"

	// DefaultSegmentsDir is the default subdirectory for segment files.
	DefaultSegmentsDir = "segments"

	// DefaultSegmentPrefix is the default filename prefix for segment files.
	DefaultSegmentPrefix = "segment"

	// DefaultDataDir is used when PersistData is true but no directory was
	// configured explicitly.
	DefaultDataDir = "."
)

// NewDefaultOptions returns the baseline configuration every Builder starts
// from before functional options are applied.
func NewDefaultOptions() Options {
	return Options{
		PersistData:      true,
		DataDir:          DefaultDataDir,
		WALName:          DefaultWALName,
		SegmentsDir:      DefaultSegmentsDir,
		SegmentPrefix:    DefaultSegmentPrefix,
		SegmentSize:      DefaultSegmentSize,
		InMemoryCapacity: DefaultInMemoryCapacity,
		SparseOffset:     DefaultSparseOffset,
	}
}

// Builder collects configuration values via chained With* calls and applies
// documented defaults for anything left unspecified. Build is the only way
// to obtain a validated Options value; an invalid configuration (a
// zero-valued threshold, or a missing path when PersistData is true) fails
// the build instead of producing an Options an Engine could be started
// from.
type Builder struct {
	opts Options
}

// NewBuilder starts a Builder from the documented defaults.
func NewBuilder() *Builder {
	return &Builder{opts: NewDefaultOptions()}
}

func (b *Builder) apply(fns ...OptionFunc) *Builder {
	for _, fn := range fns {
		fn(&b.opts)
	}
	return b
}

// Apply applies raw OptionFuncs directly, for callers (like pkg/lsm.Open)
// that accept functional options from their own callers rather than going
// through the named With* methods.
func (b *Builder) Apply(fns ...OptionFunc) *Builder {
	return b.apply(fns...)
}

// WithPersistData toggles whether the engine is backed by disk.
func (b *Builder) WithPersistData(persist bool) *Builder {
	return b.apply(WithPersistData(persist))
}

// WithDataDir sets the base directory where files will be stored.
func (b *Builder) WithDataDir(directory string) *Builder {
	return b.apply(WithDataDir(directory))
}

// WithWALName sets the write-ahead log's filename within DataDir.
func (b *Builder) WithWALName(name string) *Builder {
	return b.apply(WithWALName(name))
}

// WithSegmentsDir sets the subdirectory used for segment files.
func (b *Builder) WithSegmentsDir(directory string) *Builder {
	return b.apply(WithSegmentsDir(directory))
}

// WithSegmentPrefix sets the filename prefix for segment files.
func (b *Builder) WithSegmentPrefix(prefix string) *Builder {
	return b.apply(WithSegmentPrefix(prefix))
}

// WithSegmentSize sets the maximum number of records per segment file.
func (b *Builder) WithSegmentSize(size uint64) *Builder {
	return b.apply(WithSegmentSize(size))
}

// WithInMemoryCapacity sets the memtable flush threshold, in records.
func (b *Builder) WithInMemoryCapacity(capacity uint64) *Builder {
	return b.apply(WithInMemoryCapacity(capacity))
}

// WithSparseOffset sets the sparse index density.
func (b *Builder) WithSparseOffset(offset uint64) *Builder {
	return b.apply(WithSparseOffset(offset))
}

// Build validates the accumulated configuration and returns it, or the
// ValidationError describing the first offending field.
func (b *Builder) Build() (Options, error) {
	if err := b.opts.Validate(); err != nil {
		return Options{}, err
	}
	return b.opts, nil
}
