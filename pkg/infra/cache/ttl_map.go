package cache

import (
	"sort"
	"sync"
	"time"
)

type ttlEntry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTLMap is a thread-safe map whose entries expire ttl after their last Set.
type TTLMap[V any] struct {
	mu   sync.RWMutex
	data map[string]*ttlEntry[V]
	ttl  time.Duration
	now  func() time.Time
}

func NewTTLMap[V any](ttl time.Duration) *TTLMap[V] {
	return &TTLMap[V]{
		data: make(map[string]*ttlEntry[V]),
		ttl:  ttl,
		now:  time.Now,
	}
}

// Get returns the value if present and not expired. Expired entries are
// removed lazily.
func (m *TTLMap[V]) Get(key string) (V, bool) {
	var zero V
	m.mu.RLock()
	entry, exists := m.data[key]
	if !exists {
		m.mu.RUnlock()
		return zero, false
	}
	expired := m.now().After(entry.expiresAt)
	value := entry.value
	m.mu.RUnlock()

	if expired {
		m.mu.Lock()
		if current, ok := m.data[key]; ok && m.now().After(current.expiresAt) {
			delete(m.data, key)
		}
		m.mu.Unlock()
		return zero, false
	}
	return value, true
}

func (m *TTLMap[V]) Set(key string, value V) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = &ttlEntry[V]{
		value:     value,
		expiresAt: m.now().Add(m.ttl),
	}
}

func (m *TTLMap[V]) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
}

// Keys returns the live keys in sorted order.
func (m *TTLMap[V]) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	now := m.now()
	keys := make([]string, 0, len(m.data))
	for k, e := range m.data {
		if !now.After(e.expiresAt) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Sweep drops every expired entry and reports how many were removed.
func (m *TTLMap[V]) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	removed := 0
	for k, e := range m.data {
		if now.After(e.expiresAt) {
			delete(m.data, k)
			removed++
		}
	}
	return removed
}

func (m *TTLMap[V]) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]*ttlEntry[V])
}
