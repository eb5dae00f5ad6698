package wal_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/NavyaZaveri/lsm-engine/internal/codec"
	"github.com/NavyaZaveri/lsm-engine/internal/wal"
)

func TestAppendThenReplayRecoversRecords(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wal.log")

	w, err := wal.Open(path)
	require.NoError(t, err)

	require.NoError(t, w.Append([]byte("a"), []byte("1")))
	require.NoError(t, w.Append([]byte("b"), []byte("2")))
	require.NoError(t, w.AppendDelete([]byte("a")))
	require.NoError(t, w.Close())

	var got []codec.Record
	_, err = wal.Replay(path, func(r codec.Record) error {
		got = append(got, r)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, "a", string(got[0].Key))
	require.Equal(t, "1", string(got[0].Value))
	require.True(t, got[2].IsTombstone())
}

func TestReplayMissingFileIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	offset, err := wal.Replay(filepath.Join(dir, "absent.log"), func(codec.Record) error {
		t.Fatal("fn should not be called")
		return nil
	})
	require.NoError(t, err)
	require.Zero(t, offset)
}

func TestReplayStopsAtTornTailRecord(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wal.log")

	w, err := wal.Open(path)
	require.NoError(t, err)
	require.NoError(t, w.Append([]byte("complete"), []byte("value")))
	require.NoError(t, w.Close())

	cleanSize, err := os.Stat(path)
	require.NoError(t, err)

	// Simulate a crash mid-append by appending a partial record by hand.
	f, err := os.OpenFile(path, os.O_RDWR|os.O_APPEND, 0644)
	require.NoError(t, err)
	_, err = f.Write([]byte{0x05, 0x00, 0x00, 0x00, 'h', 'e'})
	require.NoError(t, err)
	require.NoError(t, f.Close())

	var got []codec.Record
	offset, err := wal.Replay(path, func(r codec.Record) error {
		got = append(got, r)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "complete", string(got[0].Key))
	require.Equal(t, cleanSize.Size(), offset)
}

func TestTruncateToOffsetDiscardsTornTail(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wal.log")

	w, err := wal.Open(path)
	require.NoError(t, err)
	require.NoError(t, w.Append([]byte("complete"), []byte("value")))
	require.NoError(t, w.Close())

	cleanInfo, err := os.Stat(path)
	require.NoError(t, err)
	cleanSize := cleanInfo.Size()

	f, err := os.OpenFile(path, os.O_RDWR|os.O_APPEND, 0644)
	require.NoError(t, err)
	_, err = f.Write([]byte{0x05, 0x00, 0x00, 0x00, 'h', 'e'})
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.NoError(t, wal.TruncateToOffset(path, cleanSize))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, cleanSize, info.Size())

	// A write appended after truncation must not be preceded by the
	// discarded garbage: a full replay now recovers exactly two records.
	w2, err := wal.Open(path)
	require.NoError(t, err)
	require.NoError(t, w2.Append([]byte("after"), []byte("crash")))
	require.NoError(t, w2.Close())

	var got []codec.Record
	offset, err := wal.Replay(path, func(r codec.Record) error {
		got = append(got, r)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "complete", string(got[0].Key))
	require.Equal(t, "after", string(got[1].Key))

	info, err = os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, info.Size(), offset)
}

func TestTruncateToOffsetMissingFileIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, wal.TruncateToOffset(filepath.Join(dir, "absent.log"), 0))
}

func TestTruncateEmptiesTheLog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wal.log")

	w, err := wal.Open(path)
	require.NoError(t, err)
	require.NoError(t, w.Append([]byte("k"), []byte("v")))
	require.NoError(t, w.Truncate())
	require.NoError(t, w.Close())

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Zero(t, info.Size())
}
