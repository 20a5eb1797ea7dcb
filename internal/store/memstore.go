package store

import "sync"

// MemStore is an in-memory Store used by tests and ephemeral deployments.
type MemStore struct {
	mu          sync.Mutex
	values      map[string][]byte
	subscribers []func(key string)
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{values: make(map[string][]byte)}
}

// Get returns the stored bytes for key.
func (m *MemStore) Get(key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.values[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, true, nil
}

// Set stores a copy of data under key and notifies subscribers.
func (m *MemStore) Set(key string, data []byte) error {
	m.mu.Lock()
	cp := make([]byte, len(data))
	copy(cp, data)
	m.values[key] = cp
	subs := make([]func(string), len(m.subscribers))
	copy(subs, m.subscribers)
	m.mu.Unlock()

	for _, fn := range subs {
		fn(key)
	}
	return nil
}

// Subscribe registers a change observer.
func (m *MemStore) Subscribe(fn func(key string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers = append(m.subscribers, fn)
}

// Corrupt overwrites a key with non-JSON bytes. Test helper for exercising
// the degrade-to-empty path.
func (m *MemStore) Corrupt(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = []byte("{not json")
}
