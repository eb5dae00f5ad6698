package lsm_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/NavyaZaveri/lsm-engine/pkg/lsm"
	"github.com/NavyaZaveri/lsm-engine/pkg/options"
)

func TestOpenWriteReadClose(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	db, err := lsm.Open(ctx, "lsm_test",
		options.WithPersistData(true),
		options.WithDataDir(dir),
		options.WithInMemoryCapacity(2),
		options.WithSegmentSize(100),
		options.WithSparseOffset(4),
	)
	require.NoError(t, err)

	require.NoError(t, db.Write(ctx, "hello", []byte("world")))

	v, found, err := db.Read(ctx, "hello")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "world", string(v))

	_, found, err = db.Read(ctx, "missing")
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, db.Close(ctx))
}

func TestOpenRejectsInvalidOptions(t *testing.T) {
	_, err := lsm.Open(context.Background(), "lsm_test", options.WithInMemoryCapacity(0))
	require.Error(t, err)
}
