package dict

import "iter"

type sentinel struct{}

// Set is a collection of unique elements backed by a HashTable.
type Set[T comparable] struct {
	data *HashTable[T, sentinel]
}

// NewSet creates a new Set. It accepts the same options as New.
func NewSet[T comparable](opts ...Option) *Set[T] {
	return &Set[T]{
		data: New[T, sentinel](opts...),
	}
}

// Add inserts e. Adding an element twice fails with ErrDuplicateKey.
func (s *Set[T]) Add(e T) error {
	return s.data.Add(e, sentinel{})
}

// Contains checks if e is in the set
func (s *Set[T]) Contains(e T) bool {
	return s.data.ContainsKey(e)
}

// Remove deletes e, failing with ErrKeyNotFound if it is absent.
func (s *Set[T]) Remove(e T) error {
	return s.data.Remove(e)
}

func (s *Set[T]) Len() int {
	return s.data.Count()
}

// All yields the elements in slot order.
func (s *Set[T]) All() iter.Seq[T] {
	return s.data.Keys()
}
