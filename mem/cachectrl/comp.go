// Package cachectrl provides a cache controller that hosts a stream
// prefetcher.
//
// The controller keeps the tags of a set-associative cache but not the data.
// Demand accesses are served immediately if they hit. Missing lines, as well
// as the lines requested by the prefetcher, are fetched from a lower level
// memory with a fixed latency. The controller reports every outcome to the
// prefetcher, so that the prefetcher can train and extend its streams.
package cachectrl

import (
	"log"

	"github.com/sarchlab/streampf/mem/cachectrl/internal/inflight"
	"github.com/sarchlab/streampf/mem/cachectrl/internal/tagging"
	"github.com/sarchlab/streampf/mem/prefetch"
	"github.com/sarchlab/streampf/sim"
)

// HookPosAccess is triggered after a demand access is served. The item is an
// AccessRecord.
var HookPosAccess = &sim.HookPos{Name: "CacheAccess"}

// An AccessRecord describes a demand access and its result.
type AccessRecord struct {
	Address uint64
	PC      uint64
	Type    prefetch.RequestType
	Result  AccessResult
}

// A Comp is a cache controller.
type Comp struct {
	*sim.TickingComponent

	// Prefetcher receives the access outcomes. It can be nil.
	Prefetcher Prefetcher

	streamPrefetcher *prefetch.Prefetcher

	log2BlockSize      int
	tags               tagging.TagArray
	victimFinder       tagging.VictimFinder
	inflight           inflight.Table
	prefetchQueue      sim.Buffer
	prefetchIssueWidth int
	memLatency         int
	trainWithPC        bool

	stats Stats
}

// StreamPrefetcher returns the prefetcher built with the controller. It
// returns nil if the controller is built without a prefetcher.
func (c *Comp) StreamPrefetcher() *prefetch.Prefetcher {
	return c.streamPrefetcher
}

// Stats returns a copy of the controller counters.
func (c *Comp) Stats() Stats {
	return c.stats
}

// NumInflight returns the number of lines being fetched.
func (c *Comp) NumInflight() int {
	return c.inflight.Len()
}

// NumPendingPrefetches returns the number of prefetches waiting to be issued.
func (c *Comp) NumPendingPrefetches() int {
	return c.prefetchQueue.Size()
}

// Handle processes the events scheduled for the controller.
func (c *Comp) Handle(e sim.Event) error {
	switch e := e.(type) {
	case *fillEvent:
		c.fill(e)
	default:
		return c.TickingComponent.Handle(e)
	}

	return nil
}

// Tick issues the queued prefetches.
func (c *Comp) Tick() bool {
	madeProgress := false

	for i := 0; i < c.prefetchIssueWidth; i++ {
		if !c.issuePrefetch() {
			break
		}

		madeProgress = true
	}

	return madeProgress
}

func (c *Comp) issuePrefetch() bool {
	item := c.prefetchQueue.Peek()
	if item == nil {
		return false
	}

	req := item.(prefetchReq)

	if _, found := c.tags.Lookup(req.addr); found {
		c.prefetchQueue.Pop()
		c.observePfAlreadyCached(req.addr)

		return true
	}

	if _, found := c.inflight.Lookup(req.addr); found {
		c.prefetchQueue.Pop()
		c.stats.MergedPrefetches++

		return true
	}

	if c.inflight.IsFull() {
		return false
	}

	c.prefetchQueue.Pop()
	c.fetch(req.addr, true)

	if c.Prefetcher != nil {
		c.Prefetcher.NotifyPrefetchIssued(req.addr)
	}

	return true
}

// EnqueuePrefetch queues a prefetch request. Requests for cached lines are
// reported back to the prefetcher and requests that find the queue full are
// dropped.
func (c *Comp) EnqueuePrefetch(addr uint64, t prefetch.RequestType) {
	lineAddr := c.lineAddress(addr)

	if _, found := c.tags.Lookup(lineAddr); found {
		c.observePfAlreadyCached(lineAddr)
		return
	}

	if !c.prefetchQueue.CanPush() {
		c.stats.DroppedPrefetches++
		return
	}

	c.prefetchQueue.Push(prefetchReq{addr: lineAddr, reqType: t})
	c.TickLater()
}

// Access serves a demand access from the core.
func (c *Comp) Access(
	addr uint64,
	t prefetch.RequestType,
	pc uint64,
) AccessResult {
	lineAddr := c.lineAddress(addr)

	result := c.access(lineAddr, t, pc)
	c.recordAccess(lineAddr, t, pc, result)

	return result
}

func (c *Comp) access(
	lineAddr uint64,
	t prefetch.RequestType,
	pc uint64,
) AccessResult {
	if block, found := c.tags.Lookup(lineAddr); found {
		c.tags.Visit(block)

		if block.IsPrefetched {
			block.IsPrefetched = false
			c.tags.Update(block)

			if c.Prefetcher != nil {
				c.Prefetcher.ObservePfHit(lineAddr)
			}

			return AccessPrefetchHit
		}

		if c.Prefetcher != nil && c.trainWithPC {
			c.Prefetcher.ObserveHitWithPC(lineAddr, t, pc)
		}

		return AccessHit
	}

	if entry, found := c.inflight.Lookup(lineAddr); found {
		entry.NumDemands++

		if entry.IsPrefetch && entry.NumDemands == 1 && c.Prefetcher != nil {
			c.Prefetcher.ObservePfMiss(lineAddr)
		}

		return AccessMergedMiss
	}

	if c.inflight.IsFull() {
		return AccessBlocked
	}

	c.fetch(lineAddr, false)
	c.observeMiss(lineAddr, t, pc)

	return AccessMiss
}

func (c *Comp) recordAccess(
	lineAddr uint64,
	t prefetch.RequestType,
	pc uint64,
	result AccessResult,
) {
	switch result {
	case AccessHit, AccessPrefetchHit:
		c.stats.Accesses++
		c.stats.Hits++
	case AccessMiss, AccessMergedMiss:
		c.stats.Accesses++
		c.stats.Misses++
	case AccessBlocked:
		c.stats.BlockedAccesses++
	}

	if c.NumHooks() == 0 {
		return
	}

	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    HookPosAccess,
		Item: AccessRecord{
			Address: lineAddr,
			PC:      pc,
			Type:    t,
			Result:  result,
		},
	})
}

func (c *Comp) observeMiss(lineAddr uint64, t prefetch.RequestType, pc uint64) {
	if c.Prefetcher == nil {
		return
	}

	if c.trainWithPC {
		c.Prefetcher.ObserveMissWithPC(lineAddr, t, pc)
		return
	}

	c.Prefetcher.ObserveMiss(lineAddr, t)
}

func (c *Comp) observePfAlreadyCached(lineAddr uint64) {
	if c.Prefetcher != nil {
		c.Prefetcher.ObservePfAlreadyCached(lineAddr)
	}
}

func (c *Comp) fetch(lineAddr uint64, isPrefetch bool) {
	_, err := c.inflight.AddEntry(lineAddr, isPrefetch)
	if err != nil {
		log.Panic(err)
	}

	now := c.CurrentTime()
	evt := newFillEvent(c.Freq.NCyclesLater(c.memLatency, now), c, lineAddr)
	c.Engine.Schedule(evt)
}

func (c *Comp) fill(e *fillEvent) {
	entry, err := c.inflight.RemoveEntry(e.addr)
	if err != nil {
		log.Panic(err)
	}

	victim := c.victimFinder.FindVictim(c.tags, e.addr)
	if victim.IsValid && victim.IsPrefetched && c.Prefetcher != nil {
		c.Prefetcher.ObservePfEvictUnused(victim.Tag)
	}

	victim.Tag = e.addr
	victim.IsValid = true
	victim.IsPrefetched = entry.IsPrefetch && entry.NumDemands == 0
	c.tags.Update(victim)
	c.tags.Visit(victim)

	if entry.IsPrefetch {
		c.stats.PrefetchFills++

		if c.Prefetcher != nil {
			c.Prefetcher.NotifyPrefetchCompleted(e.addr)
		}
	}

	if c.prefetchQueue.Size() > 0 {
		c.TickLater()
	}
}

func (c *Comp) lineAddress(addr uint64) uint64 {
	return addr >> c.log2BlockSize << c.log2BlockSize
}

type fillEvent struct {
	*sim.EventBase
	addr uint64
}

func newFillEvent(t sim.VTimeInSec, handler sim.Handler, addr uint64) *fillEvent {
	return &fillEvent{
		EventBase: sim.NewEventBase(t, handler),
		addr:      addr,
	}
}
