// Package tagging keeps track of the cache lines stored in a cache.
package tagging

import "fmt"

// A TagArray is the directory of a set-associative cache.
type TagArray interface {
	Lookup(lineAddr uint64) (Block, bool)
	Update(block Block)
	Visit(block Block)
	GetSet(lineAddr uint64) (set *Set, setID int)
	NumSets() int
	NumWays() int
	Reset()
}

// NewTagArray creates a tag array with all the blocks invalid.
func NewTagArray(numSets, numWays, blockSize int) TagArray {
	if numSets <= 0 || numWays <= 0 || blockSize <= 0 {
		panic(fmt.Sprintf("invalid tag array geometry %d x %d x %d",
			numSets, numWays, blockSize))
	}

	t := &tagArrayImpl{
		numSets:   numSets,
		numWays:   numWays,
		blockSize: blockSize,
	}

	t.Reset()

	return t
}

// A Block of a cache is the information that is associated with a cache line
type Block struct {
	Tag     uint64
	SetID   int
	WayID   int
	IsValid bool

	// IsPrefetched is set when the line is brought in by a prefetch and is
	// cleared by the first demand access.
	IsPrefetched bool
}

// A Set is a list of blocks where a certain piece memory can be stored at.
// LRUQueue lists the way IDs from the least recently used to the most
// recently used.
type Set struct {
	Blocks   []Block
	LRUQueue []int
}

type tagArrayImpl struct {
	numSets   int
	numWays   int
	blockSize int
	sets      []Set
}

// TotalSize returns the maximum number of bytes can be stored in the cache
func (d *tagArrayImpl) TotalSize() uint64 {
	return uint64(d.numSets) * uint64(d.numWays) * uint64(d.blockSize)
}

func (d *tagArrayImpl) NumSets() int {
	return d.numSets
}

func (d *tagArrayImpl) NumWays() int {
	return d.numWays
}

// GetSet returns the set that a certain address should be stored at.
func (d *tagArrayImpl) GetSet(lineAddr uint64) (set *Set, setID int) {
	setID = int(lineAddr / uint64(d.blockSize) % uint64(d.numSets))
	set = &d.sets[setID]

	return
}

// Lookup finds the valid block that holds lineAddr.
func (d *tagArrayImpl) Lookup(lineAddr uint64) (Block, bool) {
	set, _ := d.GetSet(lineAddr)
	for _, block := range set.Blocks {
		if block.IsValid && block.Tag == lineAddr {
			return block, true
		}
	}

	return Block{}, false
}

// Update overwrites the block at the block's set and way.
func (d *tagArrayImpl) Update(block Block) {
	d.sets[block.SetID].Blocks[block.WayID] = block
}

// Visit moves the block to the end of the LRUQueue
func (d *tagArrayImpl) Visit(block Block) {
	set := &d.sets[block.SetID]
	newLRUQueue := make([]int, 0, len(set.LRUQueue))

	for _, b := range set.LRUQueue {
		if b != block.WayID {
			newLRUQueue = append(newLRUQueue, b)
		}
	}

	newLRUQueue = append(newLRUQueue, block.WayID)

	set.LRUQueue = newLRUQueue
}

// Reset will mark all the blocks in the directory invalid
func (d *tagArrayImpl) Reset() {
	d.sets = make([]Set, d.numSets)
	for i := 0; i < d.numSets; i++ {
		for j := 0; j < d.numWays; j++ {
			block := Block{
				IsValid: false,
				SetID:   i,
				WayID:   j,
			}

			d.sets[i].Blocks = append(d.sets[i].Blocks, block)
			d.sets[i].LRUQueue = append(d.sets[i].LRUQueue, j)
		}
	}
}
