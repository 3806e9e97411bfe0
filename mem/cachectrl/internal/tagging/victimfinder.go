package tagging

// A VictimFinder decides which block should be evicted.
type VictimFinder interface {
	FindVictim(tags TagArray, lineAddr uint64) Block
}

// LRUVictimFinder evicts the least recently used block.
type LRUVictimFinder struct {
}

// NewLRUVictimFinder returns a newly constructed lru evictor
func NewLRUVictimFinder() *LRUVictimFinder {
	e := new(LRUVictimFinder)
	return e
}

// FindVictim returns an empty block if there is one in the set. Otherwise, it
// returns the least recently used block.
func (e *LRUVictimFinder) FindVictim(tags TagArray, lineAddr uint64) Block {
	set, _ := tags.GetSet(lineAddr)

	for _, wayID := range set.LRUQueue {
		block := set.Blocks[wayID]

		if !block.IsValid {
			return block
		}
	}

	return set.Blocks[set.LRUQueue[0]]
}
