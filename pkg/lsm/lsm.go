// Package lsm is the public entry point for the embeddable ordered
// key-value store: a log-structured merge engine combining a memtable, a
// write-ahead log, and immutable sorted segment files. Open a DB, write
// and read keys, and Close it when done.
package lsm

import (
	"context"

	"github.com/NavyaZaveri/lsm-engine/internal/engine"
	"github.com/NavyaZaveri/lsm-engine/pkg/logger"
	"github.com/NavyaZaveri/lsm-engine/pkg/options"
)

// DB is a handle to an open store. It is not safe for concurrent use by
// multiple goroutines; callers must serialize their own access.
type DB struct {
	engine *engine.Engine
}

// Open builds an Options value from opts (applied over the documented
// defaults), validates it, and starts an Engine from it. service names the
// logger scope; pass whatever identifies this store instance in your logs.
func Open(ctx context.Context, service string, opts ...options.OptionFunc) (*DB, error) {
	log := logger.New(service)

	built, err := options.NewBuilder().Apply(opts...).Build()
	if err != nil {
		return nil, err
	}

	eng, err := engine.New(ctx, &engine.Config{Logger: log, Options: &built})
	if err != nil {
		return nil, err
	}

	return &DB{engine: eng}, nil
}

// Write stores value under key, durably if the store was opened with
// persistence enabled.
func (db *DB) Write(ctx context.Context, key string, value []byte) error {
	return db.engine.Write([]byte(key), value)
}

// Read returns the value stored under key. found is false if the key has
// never been written.
func (db *DB) Read(ctx context.Context, key string) (value []byte, found bool, err error) {
	return db.engine.Read([]byte(key))
}

// Close flushes any buffered writes and releases every resource the store
// holds.
func (db *DB) Close(ctx context.Context) error {
	return db.engine.Close()
}
