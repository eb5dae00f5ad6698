// Package segment implements the immutable, sorted runs the engine flushes
// a drained memtable into. Each segment pairs its record data with a sparse
// in-memory index, so a lookup costs one binary search plus a short bounded
// scan instead of reading the whole thing. A segment's data lives either in
// a file (when the engine persists) or entirely in memory (when it
// doesn't); both share the same lookup path over an io.ReaderAt.
package segment

import (
	"bytes"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/NavyaZaveri/lsm-engine/internal/codec"
	"github.com/NavyaZaveri/lsm-engine/internal/memtable"
	"github.com/NavyaZaveri/lsm-engine/pkg/errors"
	"github.com/NavyaZaveri/lsm-engine/pkg/seginfo"
)

// indexEntry is one sparse-index sample: the key at the start of a record
// and that record's byte offset within the segment's data.
type indexEntry struct {
	key    []byte
	offset int64
}

// Segment is a single immutable sorted run of records, with a sparse index
// held in memory for fast lookups. Once created, a Segment is never written
// to again.
type Segment struct {
	id     uint64
	path   string // empty for an in-memory segment
	data   io.ReaderAt
	closer io.Closer // nil for an in-memory segment
	sparse []indexEntry
}

// ID returns the segment's sequence number. Higher IDs are newer.
func (s *Segment) ID() uint64 {
	return s.id
}

// Path returns the segment's backing file path, or "" if it is in-memory.
func (s *Segment) Path() string {
	return s.path
}

// encodeSorted serializes records (ascending by key) into a contiguous
// byte buffer using the wire format from internal/codec, sampling a sparse
// index entry every sparseOffset records along the way.
func encodeSorted(records []memtable.Record, sparseOffset uint64) ([]byte, []indexEntry, error) {
	stride := max(sparseOffset, 1)
	sparse := make([]indexEntry, 0, len(records)/int(stride)+1)

	var buf []byte
	for i, rec := range records {
		if uint64(i)%stride == 0 {
			sparse = append(sparse, indexEntry{key: rec.Key, offset: int64(len(buf))})
		}

		var err error
		if rec.Tombstone {
			buf = codec.EncodeTombstone(buf, rec.Key)
		} else {
			buf, err = codec.Encode(buf, rec.Key, rec.Value)
			if err != nil {
				return nil, nil, err
			}
		}
	}
	return buf, sparse, nil
}

// CreateInMemory builds a segment entirely in memory, without touching
// disk. Used when the engine runs with persistence disabled: the sparse
// index and flush-threshold behavior are identical to the file-backed
// path, only the backing storage differs.
func CreateInMemory(id uint64, sparseOffset uint64, records []memtable.Record) (*Segment, error) {
	buf, sparse, err := encodeSorted(records, sparseOffset)
	if err != nil {
		return nil, err
	}
	return &Segment{id: id, data: bytes.NewReader(buf), sparse: sparse}, nil
}

// CreateFromSorted writes records (already sorted ascending by key, as
// produced by memtable.DrainOrdered) into a new segment file in dir. The
// file is built in a temporary location and atomically renamed into place
// only once every byte is fsynced, so a crash mid-write never leaves a
// partially-written file visible under its final name.
func CreateFromSorted(dir, prefix string, id uint64, sparseOffset uint64, records []memtable.Record) (*Segment, error) {
	buf, sparse, err := encodeSorted(records, sparseOffset)
	if err != nil {
		return nil, err
	}

	finalName := seginfo.GenerateName(id, prefix)
	finalPath := filepath.Join(dir, finalName)
	tmpPath := finalPath + ".tmp"

	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, errors.ClassifyFileOpenError(err, tmpPath, finalName)
	}

	if _, err := f.Write(buf); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return nil, errors.NewStorageError(err, errors.ErrorCodeIO, "write segment data").WithPath(tmpPath)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return nil, errors.ClassifySyncError(err, finalName, tmpPath, len(buf))
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return nil, errors.NewStorageError(err, errors.ErrorCodeIO, "close segment temp file").WithPath(tmpPath)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return nil, errors.NewStorageError(err, errors.ErrorCodeIO, "rename segment into place").
			WithPath(finalPath).WithFileName(finalName)
	}
	if err := fsyncDir(dir); err != nil {
		return nil, err
	}

	rf, err := os.Open(finalPath)
	if err != nil {
		return nil, errors.ClassifyFileOpenError(err, finalPath, finalName)
	}

	return &Segment{id: id, path: finalPath, data: rf, closer: rf, sparse: sparse}, nil
}

// Open loads an existing segment file from disk, rebuilding its sparse
// index by scanning every record once. Used during engine startup to
// reconstruct the segment set from whatever files are present in the
// segments directory.
func Open(path string, id uint64, sparseOffset uint64) (*Segment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.ClassifyFileOpenError(err, path, filepath.Base(path))
	}

	dec := codec.NewDecoder(f)
	stride := max(sparseOffset, 1)
	var sparse []indexEntry
	var count uint64
	for {
		startOffset := dec.Offset()
		rec, _, err := dec.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			f.Close()
			return nil, err
		}
		if count%stride == 0 {
			sparse = append(sparse, indexEntry{key: rec.Key, offset: startOffset})
		}
		count++
	}

	return &Segment{id: id, path: path, data: f, closer: f, sparse: sparse}, nil
}

// Get searches the segment for key. found=true with a nil value means key
// was present but tombstoned in this segment; the caller must not fall
// through to older segments in that case.
func (s *Segment) Get(key []byte) (value []byte, found bool, err error) {
	if len(s.sparse) == 0 {
		return nil, false, nil
	}

	// Largest indexed key <= target.
	i := sort.Search(len(s.sparse), func(i int) bool {
		return bytes.Compare(s.sparse[i].key, key) > 0
	})
	if i == 0 {
		return nil, false, nil
	}
	startOffset := s.sparse[i-1].offset

	sr := io.NewSectionReader(s.data, startOffset, math.MaxInt64-startOffset)
	dec := codec.NewDecoder(sr)

	for {
		rec, _, err := dec.Next()
		if err == io.EOF {
			return nil, false, nil
		}
		if err != nil {
			return nil, false, err
		}

		cmp := bytes.Compare(rec.Key, key)
		if cmp == 0 {
			if rec.IsTombstone() {
				return nil, true, nil
			}
			return rec.Value, true, nil
		}
		if cmp > 0 {
			// Records are sorted ascending; once we pass the target key
			// without a match, it isn't in this segment.
			return nil, false, nil
		}
	}
}

// Close releases the segment's backing file handle, if any. In-memory
// segments have nothing to release.
func (s *Segment) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}
