package dict

// primes is the growth schedule. Every capacity the table grows into is
// taken from here, which keeps capacity-1 (the step modulus) non-zero.
var primes = []int{
	7, 19, 61, 167, 359, 857, 1721, 3469,
	7103, 14177, 29063, 50833, 99991, 331777, 614657, 1336337, 4477457,
	8503057, 29986577, 45212107, 99990001, 126247697,
}

const (
	DefaultCapacity   = 7
	DefaultFillFactor = 0.77
)

// nextCapacity returns the first scheduled prime strictly greater than cur.
func nextCapacity(cur int) (int, bool) {
	for _, p := range primes {
		if p > cur {
			return p, true
		}
	}
	return 0, false
}

// Schedule returns a copy of the prime capacities the table grows through.
func Schedule() []int {
	out := make([]int, len(primes))
	copy(out, primes)
	return out
}
