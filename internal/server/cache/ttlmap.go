// Package cache provides the in-process expiring map behind the memory
// backends of the key-exchange and credential stores.
package cache

import (
	"context"
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

func (e entry[V]) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// TTLMap is a mutex-guarded map whose entries disappear after their TTL.
// Expired entries are invisible to Get and are reclaimed lazily or by Sweep.
// Values are stored and returned by value.
type TTLMap[V any] struct {
	mu    sync.RWMutex
	items map[string]entry[V]
	now   func() time.Time
}

func NewTTLMap[V any]() *TTLMap[V] {
	return &TTLMap[V]{items: make(map[string]entry[V]), now: time.Now}
}

// WithClock replaces the time source. Intended for tests.
func (m *TTLMap[V]) WithClock(now func() time.Time) *TTLMap[V] {
	m.now = now
	return m
}

// Set stores v under key. A non-positive ttl means the entry never expires.
func (m *TTLMap[V]) Set(key string, v V, ttl time.Duration) {
	e := entry[V]{value: v}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}

	m.mu.Lock()
	m.items[key] = e
	m.mu.Unlock()
}

func (m *TTLMap[V]) Get(key string) (V, bool) {
	m.mu.RLock()
	e, ok := m.items[key]
	m.mu.RUnlock()

	if !ok {
		var zero V
		return zero, false
	}
	if e.expired(m.now()) {
		m.mu.Lock()
		if cur, ok := m.items[key]; ok && cur.expired(m.now()) {
			delete(m.items, key)
		}
		m.mu.Unlock()

		var zero V
		return zero, false
	}
	return e.value, true
}

// Take removes key and returns the value it held, if still live.
func (m *TTLMap[V]) Take(key string) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.items[key]
	delete(m.items, key)
	if !ok || e.expired(m.now()) {
		var zero V
		return zero, false
	}
	return e.value, true
}

func (m *TTLMap[V]) Delete(keys ...string) {
	m.mu.Lock()
	for _, k := range keys {
		delete(m.items, k)
	}
	m.mu.Unlock()
}

// Sweep drops every expired entry and reports how many were removed.
func (m *TTLMap[V]) Sweep() int {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for k, e := range m.items {
		if e.expired(now) {
			delete(m.items, k)
			n++
		}
	}
	return n
}

// Len counts entries including ones that expired but were not swept yet.
func (m *TTLMap[V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// Sweeper is anything with expiring state to reclaim.
type Sweeper interface {
	Sweep() int
}

// RunJanitor sweeps every s on each tick until ctx is done.
func RunJanitor(ctx context.Context, interval time.Duration, s ...Sweeper) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			for _, sw := range s {
				sw.Sweep()
			}
		case <-ctx.Done():
			return
		}
	}
}
