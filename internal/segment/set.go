package segment

import (
	"path/filepath"

	"go.uber.org/multierr"

	"github.com/NavyaZaveri/lsm-engine/pkg/errors"
	"github.com/NavyaZaveri/lsm-engine/pkg/seginfo"
)

// Set is the ordered collection of a store's on-disk segments, held
// newest-first so Get can stop at the first segment that has an answer for
// a key without consulting older, shadowed data.
type Set struct {
	dir       string
	prefix    string
	sparseOff uint64
	nextID    uint64
	segments  []*Segment // index 0 is newest
}

// NewEmpty returns a Set with no segments, for an engine running without
// persistence: flushes still produce segments via CreateInMemory, but
// there is no directory to discover them from on startup.
func NewEmpty() *Set {
	return &Set{nextID: 1}
}

// OpenAll discovers every segment file already present under
// dataDir/segmentsDir and opens them, newest first. Called once at engine
// startup to reconstruct the on-disk state of a previous run.
func OpenAll(dataDir, segmentsDir, prefix string, sparseOffset uint64) (*Set, error) {
	dir := filepath.Join(dataDir, segmentsDir)
	paths, err := seginfo.ListSegmentPaths(dataDir, segmentsDir, prefix)
	if err != nil {
		return nil, errors.NewStorageError(err, errors.ErrorCodeIO, "list existing segments").WithPath(dir)
	}

	set := &Set{dir: dir, prefix: prefix, sparseOff: sparseOffset, nextID: 1}

	// paths is ascending (oldest first); open in that order then reverse so
	// segments[0] ends up newest.
	for _, p := range paths {
		id, err := seginfo.ParseSegmentID(p, prefix)
		if err != nil {
			return nil, errors.NewIndexError(err, errors.ErrorCodeIndexTimestampExtraction, "parse segment id").
				WithDetail("path", p)
		}
		seg, err := Open(p, id, sparseOffset)
		if err != nil {
			return nil, err
		}
		set.segments = append(set.segments, seg)
		if id >= set.nextID {
			set.nextID = id + 1
		}
	}
	for i, j := 0, len(set.segments)-1; i < j; i, j = i+1, j-1 {
		set.segments[i], set.segments[j] = set.segments[j], set.segments[i]
	}

	return set, nil
}

// NextID returns the sequence number the next flushed segment should use.
func (s *Set) NextID() uint64 {
	return s.nextID
}

// PushNewest adds seg to the set as the newest segment. The engine calls
// this immediately after a flush produces a new segment file.
func (s *Set) PushNewest(seg *Segment) {
	s.segments = append([]*Segment{seg}, s.segments...)
	if seg.ID() >= s.nextID {
		s.nextID = seg.ID() + 1
	}
}

// Get searches segments newest to oldest and returns the first answer
// found. found=true with a nil value means the key was deleted after its
// last write; the caller must treat that as absent rather than continuing
// to search older segments.
func (s *Set) Get(key []byte) (value []byte, found bool, err error) {
	for _, seg := range s.segments {
		value, found, err = seg.Get(key)
		if err != nil {
			return nil, false, err
		}
		if found {
			return value, true, nil
		}
	}
	return nil, false, nil
}

// Len returns the number of segments currently open.
func (s *Set) Len() int {
	return len(s.segments)
}

// Close closes every segment's file handle, aggregating any failures into a
// single error via multierr rather than stopping at the first one.
func (s *Set) Close() error {
	var err error
	for _, seg := range s.segments {
		err = multierr.Append(err, seg.Close())
	}
	return err
}
