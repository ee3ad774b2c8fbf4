package dict

import (
	"fmt"
	"iter"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Entry is one key/value pair as stored in a slot. A Deleted entry is a
// tombstone: its key stays readable but it is no longer part of the table.
type Entry[K comparable, V any] struct {
	Key     K
	Value   V
	Deleted bool
}

// slot is one cell of the table. used=false means the slot never held an
// entry.
type slot[K comparable, V any] struct {
	entry Entry[K, V]
	used  bool
}

func (s slot[K, V]) live() bool {
	return s.used && !s.entry.Deleted
}

// SlotState is the logical state of one slot.
type SlotState uint8

const (
	SlotEmpty SlotState = iota
	SlotOccupied
	SlotTombstone
)

func (s SlotState) String() string {
	switch s {
	case SlotEmpty:
		return "empty"
	case SlotOccupied:
		return "occupied"
	case SlotTombstone:
		return "tombstone"
	}
	return fmt.Sprintf("SlotState(%d)", uint8(s))
}

// Stats is a point-in-time summary of a table.
type Stats struct {
	Capacity   int
	Count      int
	Tombstones int
	Load       float64
	Policy     StepPolicy
}

// HashTable maps unique keys to values using open addressing with double
// hashing over a flat slot array. Removed keys leave tombstones, which are
// reclaimed when the table grows. The table never shrinks.
//
// A HashTable is not safe for concurrent use; see Locked.
type HashTable[K comparable, V any] struct {
	slots      []slot[K, V]
	hashes     hashPair[K]
	count      int
	tombstones int
	fillFactor float64
	policy     StepPolicy
	logger     *zap.Logger
}

// New returns an empty table. Without options it has DefaultCapacity slots,
// DefaultFillFactor, the Linear step policy and DefaultHash.
func New[K comparable, V any](opts ...Option) *HashTable[K, V] {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	hash := HashFunc[K](DefaultHash[K])
	if cfg.hash != nil {
		if h, ok := cfg.hash.(HashFunc[K]); ok {
			hash = h
		} else {
			cfg.logger.Warn("hasher does not match key type, using default hash",
				zap.String("hasher", fmt.Sprintf("%T", cfg.hash)))
		}
	}
	return newTable[K, V](cfg.capacity, hash, cfg.fillFactor, cfg.policy, cfg.logger)
}

func newTable[K comparable, V any](capacity int, hash HashFunc[K], fillFactor float64, policy StepPolicy, logger *zap.Logger) *HashTable[K, V] {
	return &HashTable[K, V]{
		slots:      make([]slot[K, V], capacity),
		hashes:     newHashPair(hash, capacity),
		fillFactor: fillFactor,
		policy:     policy,
		logger:     logger,
	}
}

func (t *HashTable[K, V]) probe(key K) probe {
	sum := t.hashes.hash(key)
	return probe{
		home:     t.hashes.primary(sum),
		stride:   1 + t.hashes.secondary(sum),
		capacity: t.hashes.capacity,
		policy:   t.policy,
	}
}

// find returns the slot index of the live entry for key.
func (t *HashTable[K, V]) find(key K) (int, bool) {
	p := t.probe(key)
	for {
		i, ok := p.next()
		if !ok {
			return 0, false
		}
		s := t.slots[i]
		if !s.used {
			return 0, false
		}
		if !s.entry.Deleted && s.entry.Key == key {
			return i, true
		}
	}
}

// insert places key in the first free slot of its probe sequence without
// looking at the fill factor. It returns the slot it wrote and that slot's
// previous contents so Add can undo the write.
func (t *HashTable[K, V]) insert(key K, value V) (int, slot[K, V], error) {
	p := t.probe(key)
	free := -1
	for {
		i, ok := p.next()
		if !ok {
			break
		}
		s := t.slots[i]
		if !s.used {
			if free < 0 {
				free = i
			}
			break
		}
		if s.entry.Deleted {
			// keep walking: the key may still be live further along.
			if free < 0 {
				free = i
			}
			continue
		}
		if s.entry.Key == key {
			return 0, slot[K, V]{}, errors.Wrapf(ErrDuplicateKey, "add %v", key)
		}
	}

	if free < 0 {
		t.logger.Debug("probe budget exhausted",
			zap.Int("capacity", len(t.slots)),
			zap.Int("count", t.count),
			zap.Stringer("policy", t.policy))
		return 0, slot[K, V]{}, errors.Wrapf(ErrTableFull, "add %v: no free slot after %d probes", key, p.probes())
	}

	prev := t.slots[free]
	if prev.used {
		t.tombstones--
	}
	t.slots[free] = slot[K, V]{entry: Entry[K, V]{Key: key, Value: value}, used: true}
	t.count++
	return free, prev, nil
}

func (t *HashTable[K, V]) overloaded() bool {
	return float64(t.count)/float64(len(t.slots)) >= t.fillFactor
}

// grow moves every live entry into a table of the next scheduled capacity.
// t is only modified once all entries were reinserted.
func (t *HashTable[K, V]) grow() error {
	next, ok := nextCapacity(len(t.slots))
	if !ok {
		return errors.Wrapf(ErrCapacityExhausted, "grow past %d slots", len(t.slots))
	}

	grown := newTable[K, V](next, t.hashes.hash, t.fillFactor, t.policy, t.logger)
	for _, s := range t.slots {
		if !s.live() {
			continue
		}
		if err := grown.Add(s.entry.Key, s.entry.Value); err != nil {
			return errors.Wrapf(err, "rehash into %d slots", next)
		}
	}

	t.logger.Debug("table grown",
		zap.Int("from", len(t.slots)),
		zap.Int("to", len(grown.slots)),
		zap.Int("count", grown.count),
		zap.Int("tombstones_dropped", t.tombstones))

	t.slots = grown.slots
	t.hashes = grown.hashes
	t.count = grown.count
	t.tombstones = grown.tombstones
	return nil
}

// Add inserts key with value. It fails with ErrDuplicateKey if key is
// already present and never overwrites; use Set for that. After inserting,
// Add grows the table once Count/Capacity reaches the fill factor. If growing
// fails the insertion is undone and the error returned.
func (t *HashTable[K, V]) Add(key K, value V) error {
	i, prev, err := t.insert(key, value)
	if err != nil {
		return err
	}
	if !t.overloaded() {
		return nil
	}
	if err := t.grow(); err != nil {
		t.slots[i] = prev
		t.count--
		if prev.used {
			t.tombstones++
		}
		t.logger.Debug("add rolled back", zap.Error(err))
		return err
	}
	return nil
}

// Remove tombstones the entry for key. Removing a key that is absent or
// already removed fails with ErrKeyNotFound.
func (t *HashTable[K, V]) Remove(key K) error {
	i, ok := t.find(key)
	if !ok {
		return errors.Wrapf(ErrKeyNotFound, "remove %v", key)
	}
	s := t.slots[i]
	s.entry.Deleted = true
	t.slots[i] = s
	t.count--
	t.tombstones++
	return nil
}

// ContainsKey reports whether key is present.
func (t *HashTable[K, V]) ContainsKey(key K) bool {
	_, ok := t.find(key)
	return ok
}

// Get returns the value stored for key.
func (t *HashTable[K, V]) Get(key K) (V, error) {
	i, ok := t.find(key)
	if !ok {
		var zero V
		return zero, errors.Wrapf(ErrKeyNotFound, "get %v", key)
	}
	return t.slots[i].entry.Value, nil
}

// Set replaces the value of an existing key.
func (t *HashTable[K, V]) Set(key K, value V) error {
	i, ok := t.find(key)
	if !ok {
		return errors.Wrapf(ErrKeyNotFound, "set %v", key)
	}
	s := t.slots[i]
	s.entry.Value = value
	t.slots[i] = s
	return nil
}

// Count returns the number of live entries.
func (t *HashTable[K, V]) Count() int {
	return t.count
}

// Capacity returns the number of slots.
func (t *HashTable[K, V]) Capacity() int {
	return len(t.slots)
}

func (t *HashTable[K, V]) FillFactor() float64 {
	return t.fillFactor
}

func (t *HashTable[K, V]) Policy() StepPolicy {
	return t.policy
}

// Tombstones returns the number of removed entries still occupying slots.
func (t *HashTable[K, V]) Tombstones() int {
	return t.tombstones
}

func (t *HashTable[K, V]) Stats() Stats {
	return Stats{
		Capacity:   len(t.slots),
		Count:      t.count,
		Tombstones: t.tombstones,
		Load:       float64(t.count) / float64(len(t.slots)),
		Policy:     t.policy,
	}
}

// All yields every live entry in slot order. The order is stable while the
// table is not modified. Modifying the table during iteration is not
// supported.
func (t *HashTable[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, s := range t.slots {
			if s.live() && !yield(s.entry.Key, s.entry.Value) {
				return
			}
		}
	}
}

// Keys yields every live key in slot order.
func (t *HashTable[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for k := range t.All() {
			if !yield(k) {
				return
			}
		}
	}
}

// Values yields every live value in slot order.
func (t *HashTable[K, V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		for _, v := range t.All() {
			if !yield(v) {
				return
			}
		}
	}
}

// SlotStates returns the state of every slot, indexed like the table.
func (t *HashTable[K, V]) SlotStates() []SlotState {
	states := make([]SlotState, len(t.slots))
	for i, s := range t.slots {
		switch {
		case !s.used:
			states[i] = SlotEmpty
		case s.entry.Deleted:
			states[i] = SlotTombstone
		default:
			states[i] = SlotOccupied
		}
	}
	return states
}

// ProbePath returns the slot indices a lookup of key visits, in order. The
// last index is where the lookup stopped: the key's slot, the first empty
// slot, or the end of the probe budget.
func (t *HashTable[K, V]) ProbePath(key K) []int {
	var path []int
	p := t.probe(key)
	for {
		i, ok := p.next()
		if !ok {
			return path
		}
		path = append(path, i)
		s := t.slots[i]
		if !s.used || (!s.entry.Deleted && s.entry.Key == key) {
			return path
		}
	}
}
