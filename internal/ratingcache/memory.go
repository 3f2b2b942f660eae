package ratingcache

import (
	"context"
	"sync"
)

// MemoryStore keeps records in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

func (m *MemoryStore) Load(_ context.Context, key string) (Record, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	record, ok := m.records[key]
	if !ok {
		return Record{}, false, nil
	}
	return Record{Data: record.Data.Clone(), Timestamp: record.Timestamp}, true, nil
}

func (m *MemoryStore) Save(_ context.Context, key string, record Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[key] = Record{Data: record.Data.Clone(), Timestamp: record.Timestamp}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, keys ...string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for _, key := range keys {
		if _, ok := m.records[key]; ok {
			delete(m.records, key)
			removed++
		}
	}
	return removed, nil
}

func (m *MemoryStore) All(_ context.Context) (map[string]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]Record, len(m.records))
	for key, record := range m.records {
		out[key] = Record{Data: record.Data.Clone(), Timestamp: record.Timestamp}
	}
	return out, nil
}

func (m *MemoryStore) Close() error { return nil }
