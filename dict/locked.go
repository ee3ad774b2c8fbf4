package dict

import (
	"iter"
	"sync"
)

// Locked guards a HashTable with a read/write mutex so it can be shared
// between goroutines. Lookups take the read lock, mutations the write lock.
type Locked[K comparable, V any] struct {
	mu sync.RWMutex
	t  *HashTable[K, V]
}

// NewLocked creates an empty table behind a mutex.
func NewLocked[K comparable, V any](opts ...Option) *Locked[K, V] {
	return &Locked[K, V]{t: New[K, V](opts...)}
}

func (l *Locked[K, V]) Add(key K, value V) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.t.Add(key, value)
}

func (l *Locked[K, V]) Remove(key K) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.t.Remove(key)
}

func (l *Locked[K, V]) Set(key K, value V) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.t.Set(key, value)
}

func (l *Locked[K, V]) Get(key K) (V, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.t.Get(key)
}

func (l *Locked[K, V]) ContainsKey(key K) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.t.ContainsKey(key)
}

func (l *Locked[K, V]) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.t.Count()
}

func (l *Locked[K, V]) Capacity() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.t.Capacity()
}

// Range calls fn for every entry while holding the read lock. fn must not
// call back into l with a mutating method.
func (l *Locked[K, V]) Range(fn func(K, V) bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for k, v := range l.t.All() {
		if !fn(k, v) {
			return
		}
	}
}

// Snapshot returns the live entries as a sequence detached from the table.
func (l *Locked[K, V]) Snapshot() iter.Seq2[K, V] {
	l.mu.RLock()
	entries := make([]Entry[K, V], 0, l.t.Count())
	for k, v := range l.t.All() {
		entries = append(entries, Entry[K, V]{Key: k, Value: v})
	}
	l.mu.RUnlock()

	return func(yield func(K, V) bool) {
		for _, e := range entries {
			if !yield(e.Key, e.Value) {
				return
			}
		}
	}
}
