package dict

import "go.uber.org/zap"

// Config holds the construction parameters of a HashTable.
type Config struct {
	// capacity is the initial slot count. Values below 2 select
	// DefaultCapacity. It is used as given; only growth consults the
	// prime schedule.
	capacity int

	// fillFactor is the count/capacity ratio at which Add grows the table.
	// Must be in (0, 1].
	fillFactor float64

	policy StepPolicy

	// hash holds a HashFunc[K] for the table's key type, or nil.
	hash any

	logger *zap.Logger
}

// Option configures a HashTable.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		capacity:   DefaultCapacity,
		fillFactor: DefaultFillFactor,
		policy:     Linear,
		logger:     zap.NewNop(),
	}
}

// WithCapacity sets the initial number of slots. Values below 2 are ignored.
func WithCapacity(capacity int) Option {
	return func(c *Config) {
		if capacity >= 2 {
			c.capacity = capacity
		}
	}
}

// WithFillFactor sets the load at which the table grows. Values outside
// (0, 1] are ignored.
func WithFillFactor(f float64) Option {
	return func(c *Config) {
		if f > 0 && f <= 1 {
			c.fillFactor = f
		}
	}
}

// WithStepPolicy selects the probe step policy. Linear is the default;
// Quadratic needs a fill factor of at most 0.5 to stay clear of ErrTableFull.
func WithStepPolicy(p StepPolicy) Option {
	return func(c *Config) {
		if p == Linear || p == Quadratic {
			c.policy = p
		}
	}
}

// WithHasher sets a custom key hash. Passing nil keeps DefaultHash. The key
// type of h must match the table's key type; a mismatched hasher is ignored.
//
// Usage:
//
//	t := dict.New[string, int](dict.WithHasher(func(s string) uint64 {
//		return uint64(len(s))
//	}))
func WithHasher[K any](h func(K) uint64) Option {
	return func(c *Config) {
		if h != nil {
			c.hash = HashFunc[K](h)
		}
	}
}

// WithLogger attaches a logger for growth and probe diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(c *Config) {
		if l != nil {
			c.logger = l
		}
	}
}
