package prefetch

import (
	"log"

	"github.com/sarchlab/streampf/sim"
)

// Builder can build stream prefetchers.
type Builder struct {
	config     Config
	controller Controller
}

// MakeBuilder creates a new builder with the default configuration.
func MakeBuilder() Builder {
	return Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the whole configuration of the builder.
func (b Builder) WithConfig(config Config) Builder {
	b.config = config
	return b
}

// WithController sets the cache controller that owns the prefetcher.
func (b Builder) WithController(controller Controller) Builder {
	b.controller = controller
	return b
}

// WithNumStreams sets the number of streams.
func (b Builder) WithNumStreams(n int) Builder {
	b.config.NumStreams = n
	return b
}

// WithUnitFilterSize sets the number of entries in each unit-stride filter.
func (b Builder) WithUnitFilterSize(n int) Builder {
	b.config.UnitFilterSize = n
	return b
}

// WithNonUnitFilterSize sets the number of entries in the non-unit-stride
// filter.
func (b Builder) WithNonUnitFilterSize(n int) Builder {
	b.config.NonUnitFilterSize = n
	return b
}

// WithTrainMisses sets the number of confirmations needed to allocate a
// stream.
func (b Builder) WithTrainMisses(n int) Builder {
	b.config.TrainMisses = n
	return b
}

// WithNumStartupPfs sets the number of prefetches issued when a stream is
// allocated.
func (b Builder) WithNumStartupPfs(n int) Builder {
	b.config.NumStartupPfs = n
	return b
}

// WithCrossPage sets whether streams may prefetch across page boundaries.
func (b Builder) WithCrossPage(crossPage bool) Builder {
	b.config.CrossPage = crossPage
	return b
}

// WithLog2BlockSize sets the cache line size.
func (b Builder) WithLog2BlockSize(n int) Builder {
	b.config.Log2BlockSize = n
	return b
}

// WithLog2PageSize sets the page size.
func (b Builder) WithLog2PageSize(n int) Builder {
	b.config.Log2PageSize = n
	return b
}

// Build creates a new prefetcher. It panics if the configuration is invalid
// or no controller is given.
func (b Builder) Build(name string) *Prefetcher {
	sim.NameMustBeValid(name)

	if b.controller == nil {
		log.Panicf("prefetcher %s requires a controller", name)
	}

	if err := b.config.Validate(); err != nil {
		log.Panicf("invalid configuration for prefetcher %s: %v", name, err)
	}

	p := &Prefetcher{
		name:           name,
		config:         b.config,
		controller:     b.controller,
		unitFilter:     newFIFO[unitFilterEntry](b.config.UnitFilterSize),
		negativeFilter: newFIFO[unitFilterEntry](b.config.UnitFilterSize),
		nonUnitFilter:  newFIFO[nonUnitFilterEntry](b.config.NonUnitFilterSize),
		streams:        make([]stream, b.config.NumStreams),
	}

	return p
}
