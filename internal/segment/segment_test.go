package segment_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/NavyaZaveri/lsm-engine/internal/memtable"
	"github.com/NavyaZaveri/lsm-engine/internal/segment"
)

func sortedRecords(pairs ...[2]string) []memtable.Record {
	recs := make([]memtable.Record, len(pairs))
	for i, p := range pairs {
		recs[i] = memtable.Record{Key: []byte(p[0]), Value: []byte(p[1])}
	}
	return recs
}

func TestCreateFromSortedThenGet(t *testing.T) {
	dir := t.TempDir()

	recs := sortedRecords([2]string{"a", "1"}, [2]string{"b", "2"}, [2]string{"c", "3"})
	seg, err := segment.CreateFromSorted(dir, "segment", 1, 2, recs)
	require.NoError(t, err)
	defer seg.Close()

	v, found, err := seg.Get([]byte("b"))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "2", string(v))

	_, found, err = seg.Get([]byte("z"))
	require.NoError(t, err)
	require.False(t, found)
}

func TestCreateFromSortedPersistsTombstones(t *testing.T) {
	dir := t.TempDir()

	recs := []memtable.Record{
		{Key: []byte("a"), Value: []byte("1")},
		{Key: []byte("b"), Tombstone: true},
	}
	seg, err := segment.CreateFromSorted(dir, "segment", 1, 1, recs)
	require.NoError(t, err)
	defer seg.Close()

	v, found, err := seg.Get([]byte("b"))
	require.NoError(t, err)
	require.True(t, found)
	require.Nil(t, v)
}

func TestOpenRebuildsSparseIndex(t *testing.T) {
	dir := t.TempDir()

	var recs []memtable.Record
	for i := 0; i < 50; i++ {
		recs = append(recs, memtable.Record{
			Key:   []byte(fmt.Sprintf("key-%03d", i)),
			Value: []byte(fmt.Sprintf("val-%03d", i)),
		})
	}
	seg, err := segment.CreateFromSorted(dir, "segment", 1, 4, recs)
	require.NoError(t, err)
	require.NoError(t, seg.Close())

	reopened, err := segment.Open(seg.Path(), 1, 4)
	require.NoError(t, err)
	defer reopened.Close()

	v, found, err := reopened.Get([]byte("key-037"))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "val-037", string(v))
}

func TestCreateInMemoryNeverTouchesDisk(t *testing.T) {
	recs := sortedRecords([2]string{"a", "1"}, [2]string{"b", "2"})
	seg, err := segment.CreateInMemory(1, 1, recs)
	require.NoError(t, err)
	require.Equal(t, "", seg.Path())
	defer seg.Close()

	v, found, err := seg.Get([]byte("a"))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "1", string(v))
}

func TestSetGetSearchesNewestFirst(t *testing.T) {
	dataDir := t.TempDir()
	segmentsDir := "segments"
	require.NoError(t, os.MkdirAll(filepath.Join(dataDir, segmentsDir), 0755))

	older, err := segment.CreateFromSorted(filepath.Join(dataDir, segmentsDir), "segment", 1, 8,
		sortedRecords([2]string{"k", "old"}))
	require.NoError(t, err)
	require.NoError(t, older.Close())

	newer, err := segment.CreateFromSorted(filepath.Join(dataDir, segmentsDir), "segment", 2, 8,
		sortedRecords([2]string{"k", "new"}))
	require.NoError(t, err)
	require.NoError(t, newer.Close())

	set, err := segment.OpenAll(dataDir, segmentsDir, "segment", 8)
	require.NoError(t, err)
	defer set.Close()

	v, found, err := set.Get([]byte("k"))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "new", string(v))
	require.Equal(t, uint64(3), set.NextID())
}
