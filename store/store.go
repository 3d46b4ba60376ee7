/*
Package store persists text fields.

Fields are stored as JSON records, preserving run order, run ids, texts and
every style facet that has been set. Loading a record re-validates the
invariants of its run sequence; records violating them are rejected.

Two backends are provided: an in-process map, which mirrors the browser's
local storage of the résumé editor, and Redis.

# BSD 3-Clause License

# Copyright (c) Norbert Pillmayer

For details please refer to the LICENSE file.
*/
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/npillmayer/richtext"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'richtext'
func tracer() tracing.Trace {
	return tracing.Select("richtext")
}

// StoreError is an error type for package store.
type StoreError string

func (e StoreError) Error() string {
	return string(e)
}

// ErrNotFound is flagged when loading or deleting a key without a record.
const ErrNotFound = StoreError("no field stored for key")

// Store saves and loads text fields under string keys.
type Store interface {
	Save(ctx context.Context, key string, f *richtext.Field) error
	Load(ctx context.Context, key string) (*richtext.Field, error)
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
}

func encode(f *richtext.Field) ([]byte, error) {
	if f == nil {
		return nil, richtext.ErrIllegalArguments
	}
	return json.Marshal(f)
}

func decode(key string, data []byte, engine *richtext.Engine) (*richtext.Field, error) {
	f := richtext.NewField(key, richtext.Sequence{}, engine)
	if err := json.Unmarshal(data, f); err != nil {
		tracer().Errorf("store: record for key %q is corrupt: %v", key, err)
		return nil, fmt.Errorf("loading %q: %w", key, err)
	}
	return f, nil
}

// --- Memory ----------------------------------------------------------------

// MemoryStore keeps records in memory. It is safe for concurrent use.
type MemoryStore struct {
	mx      sync.RWMutex
	records map[string][]byte
	engine  *richtext.Engine
}

var _ Store = &MemoryStore{}

// NewMemoryStore creates an empty in-memory store. Loaded fields operate with
// engine, which may be nil to select the default engine.
func NewMemoryStore(engine *richtext.Engine) *MemoryStore {
	return &MemoryStore{
		records: make(map[string][]byte),
		engine:  engine,
	}
}

// Save is part of interface Store.
func (ms *MemoryStore) Save(ctx context.Context, key string, f *richtext.Field) error {
	data, err := encode(f)
	if err != nil {
		return err
	}
	ms.mx.Lock()
	defer ms.mx.Unlock()
	ms.records[key] = data
	return nil
}

// Load is part of interface Store.
func (ms *MemoryStore) Load(ctx context.Context, key string) (*richtext.Field, error) {
	ms.mx.RLock()
	data, ok := ms.records[key]
	ms.mx.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	return decode(key, data, ms.engine)
}

// Delete is part of interface Store.
func (ms *MemoryStore) Delete(ctx context.Context, key string) error {
	ms.mx.Lock()
	defer ms.mx.Unlock()
	if _, ok := ms.records[key]; !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	delete(ms.records, key)
	return nil
}

// Keys is part of interface Store. Keys are returned in sorted order.
func (ms *MemoryStore) Keys(ctx context.Context) ([]string, error) {
	ms.mx.RLock()
	defer ms.mx.RUnlock()
	keys := make([]string, 0, len(ms.records))
	for k := range ms.records {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
