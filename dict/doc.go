/*
Package dict implements a generic hash table using open addressing with
double hashing.

Keys live directly in a flat slot array. A lookup starts at the primary hash
h1 = hash(key) mod capacity and, on collision, walks

	place[i] = (h1 + step(i) * (1 + h2)) mod capacity

where h2 = hash(key) mod (capacity-1) and step(i) is i (Linear) or i*i
(Quadratic). At most capacity slots are visited. Linear, the default, reaches
every slot of a prime capacity table.

Remove leaves a tombstone so that later lookups keep walking past it. When
Count/Capacity reaches the fill factor, the table grows to the next prime of
a fixed schedule and reinserts its live entries, dropping tombstones.

Basic usage:

	t := dict.New[int, string](dict.WithCapacity(19))
	if err := t.Add(1, "x"); err != nil {
		return err
	}
	v, err := t.Get(1)
	for k, v := range t.All() {
		fmt.Println(k, v)
	}

Failures are reported as errors wrapping ErrDuplicateKey, ErrKeyNotFound,
ErrTableFull or ErrCapacityExhausted; match them with errors.Is.
*/
package dict
