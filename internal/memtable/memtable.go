// Package memtable implements the engine's in-memory write buffer: a
// mutable, unordered map that tracks its own record count so the engine
// knows when to flush, and can drain its contents as an ascending,
// tombstone-aware sequence ready to become a segment file.
package memtable

import "sort"

// entry is a value paired with whether it represents a tombstone, so Get and
// DrainOrdered can distinguish "never written" from "written then deleted"
// without relying on a nil/non-nil convention that a caller could misuse.
type entry struct {
	value     []byte
	tombstone bool
}

// Memtable is an unordered, in-memory key-value buffer. It is not safe for
// concurrent use; the engine's single-writer model is what makes that
// acceptable.
type Memtable struct {
	entries map[string]entry
}

// New returns an empty Memtable.
func New() *Memtable {
	return &Memtable{entries: make(map[string]entry)}
}

// Put inserts or overwrites key's value. Overwriting an existing key does
// not change Len.
func (m *Memtable) Put(key, value []byte) {
	m.entries[string(key)] = entry{value: value}
}

// Delete records a tombstone for key. Deleting a key not previously present
// still occupies a slot, matching a segment-backed store where a delete of
// an unknown key must still be recorded to shadow any older value on disk.
func (m *Memtable) Delete(key []byte) {
	m.entries[string(key)] = entry{tombstone: true}
}

// Get returns the value for key and whether it was found. A tombstoned key
// reports found=true with a nil value, distinct from a key absent from the
// memtable entirely (found=false): the caller must not fall through to
// older segments for a tombstoned key.
func (m *Memtable) Get(key []byte) (value []byte, found bool) {
	e, ok := m.entries[string(key)]
	if !ok {
		return nil, false
	}
	if e.tombstone {
		return nil, true
	}
	return e.value, true
}

// Len reports the number of distinct keys currently buffered. The engine
// compares this against its configured flush threshold; capacity is counted
// in records, not bytes.
func (m *Memtable) Len() int {
	return len(m.entries)
}

// Record is one (key, value) pair produced by DrainOrdered. Tombstone marks
// a deletion, the counterpart of codec.Record.IsTombstone, keeping the
// memtable independent of the codec package.
type Record struct {
	Key       []byte
	Value     []byte
	Tombstone bool
}

// DrainOrdered returns every buffered record sorted ascending by key and
// resets the memtable to empty. The engine calls this once, at flush time,
// to hand a sorted run to the segment writer; because the map is scanned
// and sorted in one pass rather than kept sorted on every Put, ordinary
// writes stay O(1).
func (m *Memtable) DrainOrdered() []Record {
	records := make([]Record, 0, len(m.entries))
	for k, e := range m.entries {
		records = append(records, Record{Key: []byte(k), Value: e.value, Tombstone: e.tombstone})
	}
	sort.Slice(records, func(i, j int) bool {
		return string(records[i].Key) < string(records[j].Key)
	})
	m.entries = make(map[string]entry)
	return records
}
