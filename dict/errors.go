package dict

import "errors"

var (
	// ErrDuplicateKey is returned by Add when the key is already live.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrKeyNotFound is returned by Remove, Get and Set for keys that are not live.
	ErrKeyNotFound = errors.New("key not found")
	// ErrTableFull is returned when the probe budget runs out without reaching a free slot.
	ErrTableFull = errors.New("hash table full")
	// ErrCapacityExhausted is returned when a resize is needed past the last scheduled prime.
	ErrCapacityExhausted = errors.New("capacity exhausted")
)
