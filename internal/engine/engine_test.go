package engine_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/NavyaZaveri/lsm-engine/internal/engine"
	"github.com/NavyaZaveri/lsm-engine/pkg/options"
)

func newTestEngine(t *testing.T, persist bool) *engine.Engine {
	t.Helper()

	builder := options.NewBuilder().
		WithSegmentSize(2).
		WithInMemoryCapacity(1).
		WithSparseOffset(2).
		WithPersistData(persist)

	if persist {
		dir := t.TempDir()
		builder = builder.WithDataDir(dir)
	}

	opts, err := builder.Build()
	require.NoError(t, err)

	eng, err := engine.New(context.Background(), &engine.Config{
		Options: &opts,
		Logger:  zap.NewNop().Sugar(),
	})
	require.NoError(t, err)
	return eng
}

// TestReadmeExampleInMemory reproduces the README walkthrough scenario:
// overwritten keys resolve to their latest value even once every write has
// been flushed to its own segment.
func TestReadmeExampleInMemory(t *testing.T) {
	eng := newTestEngine(t, false)
	defer eng.Close()

	require.NoError(t, eng.Write([]byte("k1"), []byte("v1")))
	require.NoError(t, eng.Write([]byte("k2"), []byte("k2")))
	require.NoError(t, eng.Write([]byte("k1"), []byte("v_1_1")))
	require.NoError(t, eng.Write([]byte("k3"), []byte("v3")))

	v, found, err := eng.Read([]byte("k1"))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "v_1_1", string(v))

	v, found, err = eng.Read([]byte("k2"))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "k2", string(v))

	v, found, err = eng.Read([]byte("k3"))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "v3", string(v))

	_, found, err = eng.Read([]byte("k4"))
	require.NoError(t, err)
	require.False(t, found)
}

func TestWriteThenReadBeforeFlush(t *testing.T) {
	opts, err := options.NewBuilder().
		WithPersistData(false).
		WithInMemoryCapacity(1000).
		WithSegmentSize(1000).
		WithSparseOffset(4).
		Build()
	require.NoError(t, err)

	eng, err := engine.New(context.Background(), &engine.Config{Options: &opts, Logger: zap.NewNop().Sugar()})
	require.NoError(t, err)
	defer eng.Close()

	require.NoError(t, eng.Write([]byte("a"), []byte("1")))
	v, found, err := eng.Read([]byte("a"))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "1", string(v))
}

func TestDurabilityAcrossRestart(t *testing.T) {
	dir := t.TempDir()

	open := func() *engine.Engine {
		opts, err := options.NewBuilder().
			WithPersistData(true).
			WithDataDir(dir).
			WithInMemoryCapacity(2).
			WithSegmentSize(100).
			WithSparseOffset(4).
			Build()
		require.NoError(t, err)

		eng, err := engine.New(context.Background(), &engine.Config{Options: &opts, Logger: zap.NewNop().Sugar()})
		require.NoError(t, err)
		return eng
	}

	eng := open()
	require.NoError(t, eng.Write([]byte("durable"), []byte("value")))
	require.NoError(t, eng.Close())

	restarted := open()
	defer restarted.Close()

	v, found, err := restarted.Read([]byte("durable"))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "value", string(v))
}

func TestFlushProducesSegmentFileOnDisk(t *testing.T) {
	dir := t.TempDir()
	opts, err := options.NewBuilder().
		WithPersistData(true).
		WithDataDir(dir).
		WithInMemoryCapacity(1).
		WithSegmentSize(100).
		WithSparseOffset(1).
		Build()
	require.NoError(t, err)

	eng, err := engine.New(context.Background(), &engine.Config{Options: &opts, Logger: zap.NewNop().Sugar()})
	require.NoError(t, err)
	defer eng.Close()

	require.NoError(t, eng.Write([]byte("x"), []byte("y")))

	matches, err := filepath.Glob(filepath.Join(dir, opts.SegmentsDir, opts.SegmentPrefix+"*.seg"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
}

func TestFlushChunksDrainIntoMultipleSegmentsBySegmentSize(t *testing.T) {
	dir := t.TempDir()
	opts, err := options.NewBuilder().
		WithPersistData(true).
		WithDataDir(dir).
		WithInMemoryCapacity(5).
		WithSegmentSize(2).
		WithSparseOffset(1).
		Build()
	require.NoError(t, err)

	eng, err := engine.New(context.Background(), &engine.Config{Options: &opts, Logger: zap.NewNop().Sugar()})
	require.NoError(t, err)
	defer eng.Close()

	keys := []string{"a", "b", "c", "d", "e"}
	for _, k := range keys {
		require.NoError(t, eng.Write([]byte(k), []byte(k+"-value")))
	}

	// 5 records at SegmentSize=2 must produce 3 segments (2, 2, 1), never one.
	matches, err := filepath.Glob(filepath.Join(dir, opts.SegmentsDir, opts.SegmentPrefix+"*.seg"))
	require.NoError(t, err)
	require.Len(t, matches, 3)

	for _, k := range keys {
		v, found, err := eng.Read([]byte(k))
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, k+"-value", string(v))
	}
}

func TestReadMissingKeyReturnsNotFound(t *testing.T) {
	eng := newTestEngine(t, false)
	defer eng.Close()

	_, found, err := eng.Read([]byte("nope"))
	require.NoError(t, err)
	require.False(t, found)
}

func TestCloseIsIdempotentAndRejectsFurtherWrites(t *testing.T) {
	eng := newTestEngine(t, false)
	require.NoError(t, eng.Close())
	require.ErrorIs(t, eng.Close(), engine.ErrEngineClosed)
	require.ErrorIs(t, eng.Write([]byte("a"), []byte("b")), engine.ErrEngineClosed)
}
