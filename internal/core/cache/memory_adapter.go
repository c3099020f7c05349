package cache

import (
	"container/list"
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryAdapter implements the Cache interface with a bounded in-process
// store. Entries expire lazily on read; when the store is full, the
// least-recently-inserted entry is evicted to admit a new one. Safe for
// concurrent use.
type MemoryAdapter struct {
	mu         sync.Mutex
	maxEntries int
	entries    map[string]*list.Element
	order      *list.List // insertion order, oldest at front
	now        func() time.Time
}

type memoryEntry struct {
	key       string
	value     []byte
	expiresAt time.Time // zero means no expiration
}

// NewMemoryAdapter creates an in-memory cache adapter holding at most
// maxEntries values. A non-positive maxEntries falls back to 1000.
func NewMemoryAdapter(maxEntries int) *MemoryAdapter {
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	return &MemoryAdapter{
		maxEntries: maxEntries,
		entries:    make(map[string]*list.Element),
		order:      list.New(),
		now:        time.Now,
	}
}

// Get retrieves a value by key. Expired entries are removed and reported
// as not found.
func (m *MemoryAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	elem, ok := m.entries[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}

	entry := elem.Value.(*memoryEntry)
	if !entry.expiresAt.IsZero() && m.now().After(entry.expiresAt) {
		m.removeLocked(elem)
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}

	return entry.value, nil
}

// Set stores a value, unconditionally overwriting any existing entry for
// the key. TTL of 0 means no expiration.
func (m *MemoryAdapter) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = m.now().Add(ttl)
	}

	if elem, ok := m.entries[key]; ok {
		entry := elem.Value.(*memoryEntry)
		entry.value = value
		entry.expiresAt = expiresAt
		m.order.MoveToBack(elem)
		return nil
	}

	if m.order.Len() >= m.maxEntries {
		if oldest := m.order.Front(); oldest != nil {
			m.removeLocked(oldest)
		}
	}

	elem := m.order.PushBack(&memoryEntry{key: key, value: value, expiresAt: expiresAt})
	m.entries[key] = elem
	return nil
}

// Delete removes a value by key. Deleting an absent key is not an error.
func (m *MemoryAdapter) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if elem, ok := m.entries[key]; ok {
		m.removeLocked(elem)
	}
	return nil
}

// Ping always succeeds for the in-process store.
func (m *MemoryAdapter) Ping(ctx context.Context) error {
	return nil
}

// Close drops all entries.
func (m *MemoryAdapter) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = make(map[string]*list.Element)
	m.order.Init()
	return nil
}

// Len returns the current number of entries, expired or not.
func (m *MemoryAdapter) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.order.Len()
}

func (m *MemoryAdapter) removeLocked(elem *list.Element) {
	entry := elem.Value.(*memoryEntry)
	m.order.Remove(elem)
	delete(m.entries, entry.key)
}
