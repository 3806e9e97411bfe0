package prefetch

type lookaheadState uint8

const (
	lookaheadNone lookaheadState = iota
	lookaheadQueued
	lookaheadIssued
	lookaheadCompleted
)

func (s lookaheadState) String() string {
	switch s {
	case lookaheadQueued:
		return "queued"
	case lookaheadIssued:
		return "issued"
	case lookaheadCompleted:
		return "completed"
	default:
		return "none"
	}
}

// A stream follows one access pattern. The address is the last line that has
// been handed to the controller, and lookahead[j] tracks the request for the
// line j strides behind it.
type stream struct {
	address   uint64
	stride    int64
	useTime   uint64
	isValid   bool
	reqType   RequestType
	lookahead [MaxPfInflight]lookaheadState
}

// advance records that a new look-ahead request for addr is queued.
func (s *stream) advance(addr uint64) {
	copy(s.lookahead[1:], s.lookahead[:MaxPfInflight-1])
	s.lookahead[0] = lookaheadQueued
	s.address = addr
}

// findCoveringStream returns the index of the first valid stream that has
// recently requested lineAddr, together with how many strides the line is
// behind the stream head. The index is -1 if no stream covers the line.
func (p *Prefetcher) findCoveringStream(lineAddr uint64) (index, offset int) {
	for i := range p.streams {
		s := &p.streams[i]
		if !s.isValid {
			continue
		}

		for j := 0; j < p.config.NumStartupPfs; j++ {
			if p.nextStrideAddress(s.address, -s.stride*int64(j)) == lineAddr {
				return i, j
			}
		}
	}

	return -1, 0
}

// lruIndex returns the slot to use for a new stream. Invalid slots are
// preferred. Otherwise, the stream that is used least recently is replaced.
func (p *Prefetcher) lruIndex() int {
	lru := 0

	for i := range p.streams {
		if !p.streams[i].isValid {
			return i
		}

		if p.streams[i].useTime < p.streams[lru].useTime {
			lru = i
		}
	}

	return lru
}

// initializeStream allocates a stream that starts at addr and issues the
// startup prefetches.
func (p *Prefetcher) initializeStream(addr uint64, stride int64, t RequestType) {
	index := p.lruIndex()
	s := &p.streams[index]

	if s.isValid {
		p.releaseStream(index, ReleaseReasonReplaced)
	}

	p.stats.AllocatedStreams++

	*s = stream{
		address: p.lineAddress(addr),
		stride:  stride,
		useTime: p.controller.CurrentCycle(),
		isValid: true,
		reqType: t,
	}

	p.invokeStreamHook(HookPosStreamAllocated, index, "")

	for k := 0; k < p.config.NumStartupPfs; k++ {
		next := p.nextStrideAddress(s.address, stride)
		if !p.checkPageCrossing(index, next) {
			return
		}

		p.requestPrefetch(index, next)
	}
}

// issueNextPrefetch extends a stream by one line. If index is negative, the
// stream is found by the line address.
func (p *Prefetcher) issueNextPrefetch(lineAddr uint64, index int) {
	if index < 0 {
		index, _ = p.findCoveringStream(lineAddr)
	}

	// The stream may have been replaced or released while the prefetch was
	// in flight.
	if index < 0 {
		p.stats.PrefetchNextButStreamReleased++
		return
	}

	s := &p.streams[index]
	next := p.nextStrideAddress(s.address, s.stride)

	if !p.checkPageCrossing(index, next) {
		return
	}

	s.useTime = p.controller.CurrentCycle()
	p.requestPrefetch(index, next)
}

// checkPageCrossing returns false and releases the stream if the stream is
// not allowed to move to next.
func (p *Prefetcher) checkPageCrossing(index int, next uint64) bool {
	s := &p.streams[index]
	if p.pageAddress(s.address) == p.pageAddress(next) {
		return true
	}

	if !p.config.CrossPage {
		p.releaseStream(index, ReleaseReasonPageCrossing)
		return false
	}

	p.stats.PagesCrossed++

	return true
}

func (p *Prefetcher) requestPrefetch(index int, lineAddr uint64) {
	s := &p.streams[index]
	s.advance(lineAddr)

	p.stats.PrefetchesRequested++
	p.invokePrefetchHook(index, lineAddr)
	p.controller.EnqueuePrefetch(lineAddr, s.reqType)
}

func (p *Prefetcher) releaseStream(index int, reason string) {
	p.invokeStreamHook(HookPosStreamReleased, index, reason)
	p.streams[index].isValid = false
}

// setLookaheadState updates the state of the look-ahead request for lineAddr
// if a stream still tracks it.
func (p *Prefetcher) setLookaheadState(lineAddr uint64, state lookaheadState) {
	index, offset := p.findCoveringStream(lineAddr)
	if index < 0 {
		return
	}

	s := &p.streams[index]
	if s.lookahead[offset] < state {
		s.lookahead[offset] = state
	}
}
