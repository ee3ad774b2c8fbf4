package dict

import (
	"encoding/binary"
	"math"
	"reflect"

	"github.com/cespare/xxhash/v2"
)

// HashFunc maps a key to a deterministic 64-bit hash. It must return the same
// value for equal keys for as long as the key lives in a table.
type HashFunc[K any] func(K) uint64

// Hasher is implemented by key types that carry their own hash.
type Hasher interface {
	Hash() uint64
}

// DefaultHash is the hash used when no WithHasher option is given. Keys that
// are equal under == always hash alike.
//
// Integer keys hash to their own value, so small sequential keys land in
// sequential slots. Strings go through xxhash. Floats hash their bits with
// -0 folded onto +0. Structs and arrays combine the hashes of their fields.
func DefaultHash[K comparable](key K) uint64 {
	switch k := any(key).(type) {
	case Hasher:
		return k.Hash()
	case int:
		return uint64(k)
	case int64:
		return uint64(k)
	case int32:
		return uint64(k)
	case uint:
		return uint64(k)
	case uint64:
		return k
	case uint32:
		return uint64(k)
	case string:
		return xxhash.Sum64String(k)
	case bool:
		if k {
			return 1
		}
		return 0
	case float64:
		return floatHash(k)
	case float32:
		return floatHash(float64(k))
	}
	return hashValue(reflect.ValueOf(key))
}

func floatHash(f float64) uint64 {
	if f == 0 {
		return 0
	}
	return math.Float64bits(f)
}

func hashValue(v reflect.Value) uint64 {
	switch v.Kind() {
	case reflect.Invalid:
		// nil interface key
		return 0
	case reflect.Bool:
		if v.Bool() {
			return 1
		}
		return 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return uint64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint()
	case reflect.Float32, reflect.Float64:
		return floatHash(v.Float())
	case reflect.Complex64, reflect.Complex128:
		c := v.Complex()
		return combineHashes([]uint64{floatHash(real(c)), floatHash(imag(c))})
	case reflect.String:
		return xxhash.Sum64String(v.String())
	case reflect.Pointer, reflect.Chan, reflect.UnsafePointer:
		return uint64(v.Pointer())
	case reflect.Interface:
		if v.IsNil() {
			return 0
		}
		return hashValue(v.Elem())
	case reflect.Array:
		sums := make([]uint64, v.Len())
		for i := range sums {
			sums[i] = hashValue(v.Index(i))
		}
		return combineHashes(sums)
	case reflect.Struct:
		sums := make([]uint64, 0, v.NumField())
		for i := 0; i < v.NumField(); i++ {
			// == ignores blank fields
			if v.Type().Field(i).Name == "_" {
				continue
			}
			sums = append(sums, hashValue(v.Field(i)))
		}
		return combineHashes(sums)
	}
	// func, map and slice kinds are not comparable and never reach here
	return 0
}

func combineHashes(sums []uint64) uint64 {
	buf := make([]byte, 0, 8*len(sums))
	for _, s := range sums {
		buf = binary.LittleEndian.AppendUint64(buf, s)
	}
	return xxhash.Sum64(buf)
}

// hashPair holds the two capacity-derived hash functions of a table.
type hashPair[K any] struct {
	hash     HashFunc[K]
	capacity uint64
}

func newHashPair[K any](hash HashFunc[K], capacity int) hashPair[K] {
	return hashPair[K]{hash: hash, capacity: uint64(capacity)}
}

// primary is h1(key) = hash(key) mod capacity.
func (h hashPair[K]) primary(sum uint64) uint64 {
	return sum % h.capacity
}

// secondary is h2(key) = hash(key) mod (capacity-1).
func (h hashPair[K]) secondary(sum uint64) uint64 {
	return sum % (h.capacity - 1)
}
