// Package prefetch provides a stream prefetcher that can be attached to a
// cache controller.
//
// The prefetcher watches the demand misses and hits reported by the
// controller. Accesses that are not explained by an existing stream train
// three filters: one for ascending unit strides, one for descending unit
// strides, and one for constant non-unit strides within a page. Once a filter
// entry is confirmed enough times, it is promoted to a stream, which keeps
// asking the controller to prefetch the next lines of the pattern as long as
// the prefetched lines are consumed.
package prefetch

import (
	"github.com/sarchlab/streampf/sim"
)

// A Prefetcher is a stream prefetcher owned by a single cache controller.
// All the methods must be called from the simulation goroutine.
type Prefetcher struct {
	sim.HookableBase

	name       string
	config     Config
	controller Controller

	unitFilter     *fifo[unitFilterEntry]
	negativeFilter *fifo[unitFilterEntry]
	nonUnitFilter  *fifo[nonUnitFilterEntry]
	streams        []stream

	stats Stats
}

// Name returns the name of the prefetcher.
func (p *Prefetcher) Name() string {
	return p.name
}

// Config returns the configuration that the prefetcher is built with.
func (p *Prefetcher) Config() Config {
	return p.config
}

// Stats returns a copy of the counters.
func (p *Prefetcher) Stats() Stats {
	return p.stats
}

// ResetStats sets all the counters to zero.
func (p *Prefetcher) ResetStats() {
	p.stats = Stats{}
}

// ObserveMiss is called by the controller when a demand access misses.
func (p *Prefetcher) ObserveMiss(addr uint64, t RequestType) {
	p.observeMiss(addr, t, 0)
}

// ObserveMissWithPC is the same as ObserveMiss, except that it ignores
// instruction fetches and stores. The PC is only used for tracing.
func (p *Prefetcher) ObserveMissWithPC(addr uint64, t RequestType, pc uint64) {
	if isIgnoredByPCTraining(t) {
		return
	}

	p.observeMiss(addr, t, pc)
}

func (p *Prefetcher) observeMiss(addr uint64, t RequestType, pc uint64) {
	lineAddr := p.lineAddress(addr)
	p.stats.MissObserved++
	p.invokeObservationHook(ObservationMiss, lineAddr, t, pc)

	index, offset := p.findCoveringStream(lineAddr)
	if index >= 0 {
		switch p.streams[index].lookahead[offset] {
		case lookaheadCompleted:
			// The line was prefetched too early and has been evicted
			// before being used.
			p.stats.MissedPrefetchedBlocks++
		case lookaheadIssued:
			// The prefetch is on its way, but the demand request arrived
			// first.
			p.stats.PartialHits++
			p.issueNextPrefetch(lineAddr, index)
		default:
			// The request is still waiting in the controller.
		}

		return
	}

	p.train(lineAddr, t)
}

// ObserveHitWithPC is called by the controller when a demand access hits on
// a line that was not brought in by a prefetch. Instruction fetches and
// stores are ignored.
func (p *Prefetcher) ObserveHitWithPC(addr uint64, t RequestType, pc uint64) {
	if isIgnoredByPCTraining(t) {
		return
	}

	lineAddr := p.lineAddress(addr)
	p.stats.UnprefetchedHits++
	p.invokeObservationHook(ObservationHit, lineAddr, t, pc)

	index, _ := p.findCoveringStream(lineAddr)
	if index >= 0 {
		p.issueNextPrefetch(lineAddr, index)
		return
	}

	p.train(lineAddr, t)
}

// ObservePfMiss is called when a demand access arrives for a line whose
// prefetch has been issued but not completed.
func (p *Prefetcher) ObservePfMiss(addr uint64) {
	lineAddr := p.lineAddress(addr)
	p.stats.PartialHits++
	p.invokeObservationHook(ObservationPfMiss, lineAddr, 0, 0)

	p.issueNextPrefetch(lineAddr, -1)
}

// ObservePfHit is called when a demand access hits a prefetched line for the
// first time.
func (p *Prefetcher) ObservePfHit(addr uint64) {
	lineAddr := p.lineAddress(addr)
	p.stats.Hits++
	p.stats.PrefetchedHits++
	p.invokeObservationHook(ObservationPfHit, lineAddr, 0, 0)

	p.issueNextPrefetch(lineAddr, -1)
}

// ObservePfEvictUnused is called when a prefetched line is evicted before
// being used.
func (p *Prefetcher) ObservePfEvictUnused(addr uint64) {
	p.stats.UnusedPrefetchedBlocks++
	p.invokeObservationHook(
		ObservationPfEvictUnused, p.lineAddress(addr), 0, 0)
}

// ObservePfAlreadyCached is called when a prefetch is requested for a line
// that is already in the cache.
func (p *Prefetcher) ObservePfAlreadyCached(addr uint64) {
	p.stats.PrefetchAlreadyCachedBlocks++
	p.invokeObservationHook(
		ObservationPfAlreadyCached, p.lineAddress(addr), 0, 0)
}

// NotifyPrefetchIssued is called when the controller sends a prefetch to the
// lower level memory.
func (p *Prefetcher) NotifyPrefetchIssued(addr uint64) {
	p.setLookaheadState(p.lineAddress(addr), lookaheadIssued)
}

// NotifyPrefetchCompleted is called when the data of a prefetch has been
// filled into the cache.
func (p *Prefetcher) NotifyPrefetchCompleted(addr uint64) {
	p.setLookaheadState(p.lineAddress(addr), lookaheadCompleted)
}

func isIgnoredByPCTraining(t RequestType) bool {
	return t == RequestTypeIFetch || t == RequestTypeStore
}

func (p *Prefetcher) lineAddress(addr uint64) uint64 {
	return addr &^ (p.config.BlockSize() - 1)
}

func (p *Prefetcher) pageAddress(addr uint64) uint64 {
	return addr &^ (p.config.PageSize() - 1)
}

// nextStrideAddress moves addr by stride cache lines. Addresses wrap around
// at the ends of the address space.
func (p *Prefetcher) nextStrideAddress(addr uint64, stride int64) uint64 {
	return addr + uint64(stride<<p.config.Log2BlockSize)
}
