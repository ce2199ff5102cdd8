package store

import (
	"context"
	"sync"
)

// Memory is an in-memory Store with the same ordering semantics as the
// SQLite backend. Used by tests; also handy as a throwaway store for
// ephemeral dev runs.
type Memory struct {
	mu      sync.RWMutex
	buckets map[string]map[string][]byte
	order   map[string][]string

	// forcedErr, when set, is returned by every mutating call. Lets tests
	// simulate a full or broken device store.
	forcedErr error
}

func NewMemory() *Memory {
	return &Memory{
		buckets: make(map[string]map[string][]byte),
		order:   make(map[string][]string),
	}
}

// FailWrites makes subsequent Put/Delete calls return err. Pass nil to heal.
func (m *Memory) FailWrites(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forcedErr = err
}

func (m *Memory) Get(_ context.Context, bucket, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.buckets[bucket][key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), value...), nil
}

func (m *Memory) GetAll(_ context.Context, bucket string) ([][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	values := make([][]byte, 0, len(m.order[bucket]))
	for _, key := range m.order[bucket] {
		values = append(values, append([]byte(nil), m.buckets[bucket][key]...))
	}
	return values, nil
}

func (m *Memory) Put(_ context.Context, bucket, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.forcedErr != nil {
		return m.forcedErr
	}
	if m.buckets[bucket] == nil {
		m.buckets[bucket] = make(map[string][]byte)
	}
	if _, exists := m.buckets[bucket][key]; !exists {
		m.order[bucket] = append(m.order[bucket], key)
	}
	m.buckets[bucket][key] = append([]byte(nil), value...)
	return nil
}

func (m *Memory) Delete(_ context.Context, bucket, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.forcedErr != nil {
		return m.forcedErr
	}
	if _, exists := m.buckets[bucket][key]; !exists {
		return nil
	}
	delete(m.buckets[bucket], key)
	keys := m.order[bucket]
	for i, k := range keys {
		if k == key {
			m.order[bucket] = append(keys[:i], keys[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Memory) Count(_ context.Context, bucket string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.buckets[bucket]), nil
}

func (m *Memory) Close() error { return nil }

var _ Store = (*Memory)(nil)
