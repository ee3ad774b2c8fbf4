package dict

import (
	"fmt"
	"strings"
)

// StepPolicy chooses how the probe step grows between attempts.
type StepPolicy uint8

const (
	// Linear steps by 1, 2, 3, ... multiples of the secondary hash. With a
	// prime capacity the walk visits every slot.
	Linear StepPolicy = iota
	// Quadratic steps by successive squares: 1, 4, 9, 16, ...
	// With a prime capacity the squares reach only (capacity+1)/2 distinct
	// slots, so Add can fail with ErrTableFull above a load of 0.5.
	Quadratic
)

func (p StepPolicy) String() string {
	switch p {
	case Quadratic:
		return "quadratic"
	case Linear:
		return "linear"
	}
	return fmt.Sprintf("StepPolicy(%d)", uint8(p))
}

// ParseStepPolicy is the inverse of StepPolicy.String, case-insensitive.
func ParseStepPolicy(s string) (StepPolicy, error) {
	switch strings.ToLower(s) {
	case "quadratic", "q":
		return Quadratic, nil
	case "linear", "l":
		return Linear, nil
	}
	return 0, fmt.Errorf("unknown step policy %q", s)
}

// step returns step(i) reduced mod capacity.
func (p StepPolicy) step(i, capacity uint64) uint64 {
	if p == Linear {
		return i % capacity
	}
	return (i * i) % capacity
}

// probe walks place[0], place[1], ... for one key. The budget is capacity
// probes in total; next reports false once it is spent.
//
//	place[0] = h1
//	place[i] = (h1 + step(i) * (1 + h2)) mod capacity
type probe struct {
	home     uint64
	stride   uint64
	capacity uint64
	policy   StepPolicy
	i        uint64
}

func (p *probe) next() (int, bool) {
	if p.i >= p.capacity {
		return 0, false
	}
	var place uint64
	if p.i == 0 {
		place = p.home
	} else {
		place = (p.home + p.policy.step(p.i, p.capacity)*p.stride) % p.capacity
	}
	p.i++
	return int(place), true
}

// probes returns how many slots the walk has visited so far.
func (p *probe) probes() int {
	return int(p.i)
}
