package kv

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryStore keeps records in a map. Values are copied in and out so callers
// never share buffers with the store.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[key]
	if !ok {
		return Record{}, ErrNotFound
	}
	return cloneRecord(rec), nil
}

func (s *MemoryStore) Put(ctx context.Context, key string, value []byte) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	version := s.records[key].Version + 1
	s.records[key] = Record{Key: key, Value: cloneBytes(value), Version: version}
	return version, nil
}

func (s *MemoryStore) ScanPrefix(ctx context.Context, prefix string) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]Record, 0)
	for key, rec := range s.records {
		if strings.HasPrefix(key, prefix) {
			items = append(items, cloneRecord(rec))
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Key < items[j].Key })
	return items, nil
}

func (s *MemoryStore) CompareAndSwap(ctx context.Context, key string, expected int64, value []byte) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current := s.records[key].Version
	if current != expected {
		return current, ErrVersionConflict
	}
	version := current + 1
	s.records[key] = Record{Key: key, Value: cloneBytes(value), Version: version}
	return version, nil
}

func (s *MemoryStore) Close() error {
	return nil
}

func cloneRecord(rec Record) Record {
	rec.Value = cloneBytes(rec.Value)
	return rec
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
