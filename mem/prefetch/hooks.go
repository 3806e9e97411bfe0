package prefetch

import (
	"github.com/sarchlab/streampf/sim"
)

// A list of hook positions that the prefetcher triggers.
var (
	// HookPosStreamAllocated is triggered when a filter entry is promoted
	// to a stream. The item is a StreamEvent.
	HookPosStreamAllocated = &sim.HookPos{Name: "PrefetchStreamAllocated"}

	// HookPosStreamReleased is triggered when a stream becomes invalid. The
	// item is a StreamEvent.
	HookPosStreamReleased = &sim.HookPos{Name: "PrefetchStreamReleased"}

	// HookPosPrefetchIssued is triggered when a prefetch is handed to the
	// controller. The item is a PrefetchEvent.
	HookPosPrefetchIssued = &sim.HookPos{Name: "PrefetchIssued"}

	// HookPosPrefetchObserved is triggered when the controller reports an access
	// outcome. The item is an Observation.
	HookPosPrefetchObserved = &sim.HookPos{Name: "PrefetchObserved"}
)

// Reasons for a stream to be released.
const (
	ReleaseReasonReplaced     = "replaced"
	ReleaseReasonPageCrossing = "page_crossing"
)

// ObservationKind tells which notification the controller has sent.
type ObservationKind string

// A list of observation kinds.
const (
	ObservationMiss            ObservationKind = "miss"
	ObservationHit             ObservationKind = "hit"
	ObservationPfMiss          ObservationKind = "pf_miss"
	ObservationPfHit           ObservationKind = "pf_hit"
	ObservationPfEvictUnused   ObservationKind = "pf_evict_unused"
	ObservationPfAlreadyCached ObservationKind = "pf_already_cached"
)

// A StreamEvent describes a stream that is allocated or released.
type StreamEvent struct {
	Slot    int
	Address uint64
	Stride  int64
	Type    RequestType
	Cycle   uint64
	Reason  string
}

// A PrefetchEvent describes a prefetch request sent to the controller.
type PrefetchEvent struct {
	Slot    int
	Address uint64
	Stride  int64
	Type    RequestType
	Cycle   uint64
}

// An Observation describes an access outcome reported by the controller.
type Observation struct {
	Kind    ObservationKind
	Address uint64
	PC      uint64
	Type    RequestType
	Cycle   uint64
}

func (p *Prefetcher) invokeStreamHook(
	pos *sim.HookPos,
	index int,
	reason string,
) {
	if p.NumHooks() == 0 {
		return
	}

	s := &p.streams[index]
	p.InvokeHook(sim.HookCtx{
		Domain: p,
		Pos:    pos,
		Item: StreamEvent{
			Slot:    index,
			Address: s.address,
			Stride:  s.stride,
			Type:    s.reqType,
			Cycle:   p.controller.CurrentCycle(),
			Reason:  reason,
		},
	})
}

func (p *Prefetcher) invokePrefetchHook(index int, lineAddr uint64) {
	if p.NumHooks() == 0 {
		return
	}

	s := &p.streams[index]
	p.InvokeHook(sim.HookCtx{
		Domain: p,
		Pos:    HookPosPrefetchIssued,
		Item: PrefetchEvent{
			Slot:    index,
			Address: lineAddr,
			Stride:  s.stride,
			Type:    s.reqType,
			Cycle:   p.controller.CurrentCycle(),
		},
	})
}

func (p *Prefetcher) invokeObservationHook(
	kind ObservationKind,
	lineAddr uint64,
	t RequestType,
	pc uint64,
) {
	if p.NumHooks() == 0 {
		return
	}

	p.InvokeHook(sim.HookCtx{
		Domain: p,
		Pos:    HookPosPrefetchObserved,
		Item: Observation{
			Kind:    kind,
			Address: lineAddr,
			PC:      pc,
			Type:    t,
			Cycle:   p.controller.CurrentCycle(),
		},
	})
}
