package prefetch

import "fmt"

// Config holds the construction-time parameters of a stream prefetcher.
type Config struct {
	// NumStreams is the number of streams that can be tracked at the same
	// time.
	NumStreams int

	// UnitFilterSize is the number of entries of each unit-stride filter.
	UnitFilterSize int

	// NonUnitFilterSize is the number of entries of the non-unit-stride
	// filter.
	NonUnitFilterSize int

	// TrainMisses is the number of confirmations a filter entry needs before
	// a stream is allocated.
	TrainMisses int

	// NumStartupPfs is the number of prefetches issued when a stream is
	// allocated. It is also the number of recent look-aheads that a stream
	// covers.
	NumStartupPfs int

	// CrossPage allows streams to prefetch across page boundaries.
	CrossPage bool

	Log2BlockSize int
	Log2PageSize  int
}

// DefaultConfig returns the default prefetcher configuration.
func DefaultConfig() Config {
	return Config{
		NumStreams:        4,
		UnitFilterSize:    8,
		NonUnitFilterSize: 8,
		TrainMisses:       4,
		NumStartupPfs:     1,
		CrossPage:         false,
		Log2BlockSize:     6,
		Log2PageSize:      12,
	}
}

// Validate checks if the configuration can be used to build a prefetcher.
func (c Config) Validate() error {
	switch {
	case c.NumStreams <= 0:
		return fmt.Errorf("number of streams must be positive, got %d",
			c.NumStreams)
	case c.UnitFilterSize <= 0:
		return fmt.Errorf("unit filter size must be positive, got %d",
			c.UnitFilterSize)
	case c.NonUnitFilterSize <= 0:
		return fmt.Errorf("non-unit filter size must be positive, got %d",
			c.NonUnitFilterSize)
	case c.TrainMisses <= 0:
		return fmt.Errorf("train misses must be positive, got %d",
			c.TrainMisses)
	case c.NumStartupPfs < 0 || c.NumStartupPfs > MaxPfInflight:
		return fmt.Errorf("number of startup prefetches must be in [0, %d], got %d",
			MaxPfInflight, c.NumStartupPfs)
	case c.Log2BlockSize < 0 || c.Log2BlockSize > c.Log2PageSize:
		return fmt.Errorf("block size 2^%d does not fit in page size 2^%d",
			c.Log2BlockSize, c.Log2PageSize)
	case c.Log2PageSize >= 64:
		return fmt.Errorf("page size 2^%d is too large", c.Log2PageSize)
	}

	return nil
}

// BlockSize returns the cache line size in bytes.
func (c Config) BlockSize() uint64 {
	return 1 << c.Log2BlockSize
}

// PageSize returns the page size in bytes.
func (c Config) PageSize() uint64 {
	return 1 << c.Log2PageSize
}
