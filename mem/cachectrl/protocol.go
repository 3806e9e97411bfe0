package cachectrl

import (
	"github.com/sarchlab/streampf/mem/prefetch"
)

// AccessResult tells how a demand access is served.
type AccessResult int

// A list of access results.
const (
	// AccessHit means the line is in the cache.
	AccessHit AccessResult = iota

	// AccessPrefetchHit means the line is in the cache because of a
	// prefetch and this is the first demand access to it.
	AccessPrefetchHit

	// AccessMiss means the line is not in the cache and a fetch is started.
	AccessMiss

	// AccessMergedMiss means the line is being fetched already.
	AccessMergedMiss

	// AccessBlocked means the access cannot be accepted now and should be
	// retried in a later cycle.
	AccessBlocked
)

var accessResultNames = []string{
	"hit", "prefetch-hit", "miss", "merged-miss", "blocked",
}

func (r AccessResult) String() string {
	if int(r) < len(accessResultNames) {
		return accessResultNames[r]
	}

	return "unknown"
}

// Prefetcher is the part of a prefetcher that the controller notifies.
type Prefetcher interface {
	ObserveMiss(addr uint64, t prefetch.RequestType)
	ObserveMissWithPC(addr uint64, t prefetch.RequestType, pc uint64)
	ObserveHitWithPC(addr uint64, t prefetch.RequestType, pc uint64)
	ObservePfMiss(addr uint64)
	ObservePfHit(addr uint64)
	ObservePfEvictUnused(addr uint64)
	ObservePfAlreadyCached(addr uint64)
	NotifyPrefetchIssued(addr uint64)
	NotifyPrefetchCompleted(addr uint64)
}

// Stats holds the counters of a controller.
type Stats struct {
	Accesses          uint64
	Hits              uint64
	Misses            uint64
	BlockedAccesses   uint64
	PrefetchFills     uint64
	DroppedPrefetches uint64
	MergedPrefetches  uint64
}

// HitRate returns the fraction of the accepted accesses that hit in the
// cache.
func (s Stats) HitRate() float64 {
	if s.Hits+s.Misses == 0 {
		return 0
	}

	return float64(s.Hits) / float64(s.Hits+s.Misses)
}

type prefetchReq struct {
	addr    uint64
	reqType prefetch.RequestType
}
