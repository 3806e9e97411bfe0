package cachectrl

import (
	"log"

	"github.com/sarchlab/streampf/mem/cachectrl/internal/inflight"
	"github.com/sarchlab/streampf/mem/cachectrl/internal/tagging"
	"github.com/sarchlab/streampf/mem/prefetch"
	"github.com/sarchlab/streampf/sim"
)

// Builder can build cache controllers.
type Builder struct {
	engine sim.Engine
	freq   sim.Freq

	log2BlockSize      int
	wayAssociativity   int
	byteSize           uint64
	numInflight        int
	memLatency         int
	prefetchQueueSize  int
	prefetchIssueWidth int
	trainWithPC        bool

	enablePrefetcher  bool
	prefetcherBuilder prefetch.Builder
}

// MakeBuilder creates a builder with a 32KB 4-way cache and a stream
// prefetcher with the default configuration.
func MakeBuilder() Builder {
	return Builder{
		freq:               1 * sim.GHz,
		log2BlockSize:      6,
		wayAssociativity:   4,
		byteSize:           32 * 1024,
		numInflight:        16,
		memLatency:         100,
		prefetchQueueSize:  16,
		prefetchIssueWidth: 1,
		trainWithPC:        true,
		enablePrefetcher:   true,
		prefetcherBuilder:  prefetch.MakeBuilder(),
	}
}

// WithEngine sets the engine of the builder.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of the controller.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithLog2BlockSize sets the cache line size. The prefetcher uses the same
// line size.
func (b Builder) WithLog2BlockSize(n int) Builder {
	b.log2BlockSize = n
	return b
}

// WithWayAssociativity sets the number of ways in a set.
func (b Builder) WithWayAssociativity(n int) Builder {
	b.wayAssociativity = n
	return b
}

// WithByteSize sets the capacity of the cache.
func (b Builder) WithByteSize(byteSize uint64) Builder {
	b.byteSize = byteSize
	return b
}

// WithNumInflight sets the number of lines that can be fetched at the same
// time.
func (b Builder) WithNumInflight(n int) Builder {
	b.numInflight = n
	return b
}

// WithMemLatency sets the number of cycles to fetch a line from the lower
// level memory.
func (b Builder) WithMemLatency(cycles int) Builder {
	b.memLatency = cycles
	return b
}

// WithPrefetchQueueSize sets the number of prefetches that can wait to be
// issued.
func (b Builder) WithPrefetchQueueSize(n int) Builder {
	b.prefetchQueueSize = n
	return b
}

// WithPrefetchIssueWidth sets the number of prefetches issued per cycle.
func (b Builder) WithPrefetchIssueWidth(n int) Builder {
	b.prefetchIssueWidth = n
	return b
}

// WithTrainWithPC sets whether the prefetcher is trained through the
// PC-aware observations, which ignore instruction fetches and stores.
func (b Builder) WithTrainWithPC(trainWithPC bool) Builder {
	b.trainWithPC = trainWithPC
	return b
}

// WithPrefetcher sets the builder used to create the prefetcher.
func (b Builder) WithPrefetcher(pb prefetch.Builder) Builder {
	b.enablePrefetcher = true
	b.prefetcherBuilder = pb
	return b
}

// WithoutPrefetcher builds a controller that never prefetches.
func (b Builder) WithoutPrefetcher() Builder {
	b.enablePrefetcher = false
	return b
}

// Build creates a cache controller. If a prefetcher is enabled, it is named
// after the controller with a ".Prefetcher" suffix.
func (b Builder) Build(name string) *Comp {
	if b.engine == nil {
		log.Panicf("cache controller %s requires an engine", name)
	}

	blockSize := 1 << b.log2BlockSize
	b.mustBeFullSets(blockSize)
	b.mustBePositive("number of in-flight lines", b.numInflight)
	b.mustBePositive("prefetch queue size", b.prefetchQueueSize)
	b.mustBePositive("prefetch issue width", b.prefetchIssueWidth)
	b.mustBePositive("memory latency", b.memLatency)

	c := new(Comp)
	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)

	numSets := int(b.byteSize / uint64(blockSize*b.wayAssociativity))
	c.log2BlockSize = b.log2BlockSize
	c.tags = tagging.NewTagArray(numSets, b.wayAssociativity, blockSize)
	c.victimFinder = tagging.NewLRUVictimFinder()
	c.inflight = inflight.NewTable(b.numInflight)
	c.prefetchQueue = sim.NewBuffer(name+".PrefetchQueue", b.prefetchQueueSize)
	c.prefetchIssueWidth = b.prefetchIssueWidth
	c.memLatency = b.memLatency
	c.trainWithPC = b.trainWithPC

	if b.enablePrefetcher {
		p := b.prefetcherBuilder.
			WithController(c).
			WithLog2BlockSize(b.log2BlockSize).
			Build(name + ".Prefetcher")
		c.streamPrefetcher = p
		c.Prefetcher = p
	}

	return c
}

func (b Builder) mustBeFullSets(blockSize int) {
	if b.wayAssociativity <= 0 {
		log.Panicf("way associativity must be positive, got %d",
			b.wayAssociativity)
	}

	setSize := uint64(blockSize * b.wayAssociativity)
	if b.byteSize == 0 || b.byteSize%setSize != 0 {
		log.Panic("cache must have a integer number of sets")
	}
}

func (b Builder) mustBePositive(what string, n int) {
	if n <= 0 {
		log.Panicf("%s must be positive, got %d", what, n)
	}
}
