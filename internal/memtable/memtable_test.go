package memtable_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/NavyaZaveri/lsm-engine/internal/memtable"
)

func TestPutThenGet(t *testing.T) {
	m := memtable.New()
	m.Put([]byte("a"), []byte("1"))

	v, ok := m.Get([]byte("a"))
	require.True(t, ok)
	require.Equal(t, "1", string(v))

	_, ok = m.Get([]byte("missing"))
	require.False(t, ok)
}

func TestOverwriteDoesNotGrowLen(t *testing.T) {
	m := memtable.New()
	m.Put([]byte("a"), []byte("1"))
	m.Put([]byte("a"), []byte("2"))
	require.Equal(t, 1, m.Len())

	v, _ := m.Get([]byte("a"))
	require.Equal(t, "2", string(v))
}

func TestDeleteShadowsWithoutReducingLen(t *testing.T) {
	m := memtable.New()
	m.Put([]byte("a"), []byte("1"))
	m.Delete([]byte("a"))

	v, ok := m.Get([]byte("a"))
	require.True(t, ok)
	require.Nil(t, v)
	require.Equal(t, 1, m.Len())
}

func TestDrainOrderedSortsAscendingAndResets(t *testing.T) {
	m := memtable.New()
	m.Put([]byte("c"), []byte("3"))
	m.Put([]byte("a"), []byte("1"))
	m.Delete([]byte("b"))

	records := m.DrainOrdered()
	require.Len(t, records, 3)
	require.Equal(t, "a", string(records[0].Key))
	require.Equal(t, "b", string(records[1].Key))
	require.True(t, records[1].Tombstone)
	require.Equal(t, "c", string(records[2].Key))

	require.Equal(t, 0, m.Len())
}
