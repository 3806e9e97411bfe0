package prefetch

// Stats holds the counters of a prefetcher.
type Stats struct {
	MissObserved                  uint64
	AllocatedStreams              uint64
	PrefetchesRequested           uint64
	PrefetchedHits                uint64
	UnprefetchedHits              uint64
	PartialHits                   uint64
	UnusedPrefetchedBlocks        uint64
	PrefetchAlreadyCachedBlocks   uint64
	PrefetchNextButStreamReleased uint64
	PagesCrossed                  uint64
	Hits                          uint64
	MissedPrefetchedBlocks        uint64
}

// A StatEntry is a named counter, used for reporting.
type StatEntry struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Value       uint64 `json:"value"`
}

// Entries lists all the counters with their report names.
func (s Stats) Entries() []StatEntry {
	return []StatEntry{
		{"miss_observed", "number of misses observed", s.MissObserved},
		{"allocated_streams",
			"number of streams allocated for prefetching",
			s.AllocatedStreams},
		{"prefetches_requested", "number of prefetch requests made",
			s.PrefetchesRequested},
		{"prefetched_hits",
			"number of prefetched blocks accessed for the first time",
			s.PrefetchedHits},
		{"unprefetched_hits", "number of hits on blocks that are not prefetched",
			s.UnprefetchedHits},
		{"partial_hits",
			"number of misses observed for a block being prefetched",
			s.PartialHits},
		{"unused_prefetched_blocks",
			"number of prefetched blocks evicted without being used",
			s.UnusedPrefetchedBlocks},
		{"prefetch_already_cached_blocks",
			"number of prefetches for blocks that are already cached",
			s.PrefetchAlreadyCachedBlocks},
		{"prefetch_next_but_stream_released",
			"number of prefetch extensions whose stream is already released",
			s.PrefetchNextButStreamReleased},
		{"pages_crossed", "number of prefetches across pages", s.PagesCrossed},
		{"hits", "number of prefetched blocks accessed for the first time",
			s.Hits},
		{"misses_on_prefetched_blocks",
			"number of misses for blocks that were prefetched, yet missed",
			s.MissedPrefetchedBlocks},
	}
}

// Accuracy returns the fraction of prefetches that have been used by demand
// accesses. It returns 0 if no prefetch has been requested.
func (s Stats) Accuracy() float64 {
	if s.PrefetchesRequested == 0 {
		return 0
	}

	return float64(s.PrefetchedHits+s.PartialHits) /
		float64(s.PrefetchesRequested)
}
