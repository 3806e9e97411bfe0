package workload

import (
	"log"

	"github.com/sarchlab/streampf/mem/cachectrl"
	"github.com/sarchlab/streampf/mem/prefetch"
	"github.com/sarchlab/streampf/sim"
)

// A Cache serves the demand accesses of a driver.
type Cache interface {
	Access(addr uint64, t prefetch.RequestType, pc uint64) cachectrl.AccessResult
}

// A Driver is a component that replays a workload into a cache, a fixed
// number of accesses per cycle. An access that the cache cannot accept is
// retried in the next cycle, which stalls the accesses behind it.
type Driver struct {
	*sim.TickingComponent

	cache            Cache
	workload         Workload
	accessesPerCycle int

	pending    Access
	hasPending bool
	done       bool

	numIssued uint64
	numStalls uint64
}

// Start schedules the first tick of the driver.
func (d *Driver) Start() {
	d.TickNow()
}

// Done returns true if all the accesses of the workload are issued.
func (d *Driver) Done() bool {
	return d.done
}

// NumIssued returns the number of accesses that the cache has accepted.
func (d *Driver) NumIssued() uint64 {
	return d.numIssued
}

// NumStalls returns the number of cycles in which the driver is stalled.
func (d *Driver) NumStalls() uint64 {
	return d.numStalls
}

// Tick issues accesses to the cache.
func (d *Driver) Tick() bool {
	if d.done {
		return false
	}

	for i := 0; i < d.accessesPerCycle; i++ {
		if !d.hasPending {
			a, ok := d.workload.Next()
			if !ok {
				d.done = true
				return i > 0
			}

			d.pending = a
			d.hasPending = true
		}

		result := d.cache.Access(d.pending.Address, d.pending.Type, d.pending.PC)
		if result == cachectrl.AccessBlocked {
			d.numStalls++

			// Keep ticking so that the access is retried.
			return true
		}

		d.hasPending = false
		d.numIssued++
	}

	return true
}

// DriverBuilder can build drivers.
type DriverBuilder struct {
	engine           sim.Engine
	freq             sim.Freq
	cache            Cache
	workload         Workload
	accessesPerCycle int
}

// MakeDriverBuilder creates a builder for drivers that issue one access per
// cycle.
func MakeDriverBuilder() DriverBuilder {
	return DriverBuilder{
		freq:             1 * sim.GHz,
		accessesPerCycle: 1,
	}
}

// WithEngine sets the engine.
func (b DriverBuilder) WithEngine(engine sim.Engine) DriverBuilder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency.
func (b DriverBuilder) WithFreq(freq sim.Freq) DriverBuilder {
	b.freq = freq
	return b
}

// WithCache sets the cache to drive.
func (b DriverBuilder) WithCache(cache Cache) DriverBuilder {
	b.cache = cache
	return b
}

// WithWorkload sets the accesses to replay.
func (b DriverBuilder) WithWorkload(w Workload) DriverBuilder {
	b.workload = w
	return b
}

// WithAccessesPerCycle sets the number of accesses issued per cycle.
func (b DriverBuilder) WithAccessesPerCycle(n int) DriverBuilder {
	b.accessesPerCycle = n
	return b
}

// Build creates a driver.
func (b DriverBuilder) Build(name string) *Driver {
	if b.engine == nil || b.cache == nil || b.workload == nil {
		log.Panicf("driver %s requires an engine, a cache, and a workload",
			name)
	}

	if b.accessesPerCycle <= 0 {
		log.Panicf("driver %s must issue at least one access per cycle",
			name)
	}

	d := &Driver{
		cache:            b.cache,
		workload:         b.workload,
		accessesPerCycle: b.accessesPerCycle,
	}
	d.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, d)

	return d
}
