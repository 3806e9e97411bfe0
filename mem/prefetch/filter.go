package prefetch

type unitFilterEntry struct {
	addr uint64
	hits int
}

type nonUnitFilterEntry struct {
	addr   uint64
	stride int64
	hits   int
}

func (e *nonUnitFilterEntry) clear() {
	e.addr = 0
	e.stride = 0
	e.hits = 0
}

// train feeds a line address that is not covered by any stream to the
// filters. The filters are tried in order and the first one that consumes
// the observation stops the search.
func (p *Prefetcher) train(lineAddr uint64, t RequestType) {
	if p.accessUnitFilter(p.unitFilter, lineAddr, 1, t) {
		return
	}

	if p.accessUnitFilter(p.negativeFilter, lineAddr, -1, t) {
		return
	}

	p.accessNonUnitFilter(lineAddr, t)
}

// accessUnitFilter looks for an entry that predicted lineAddr in a unit-stride
// filter. The step is +1 for the ascending filter and -1 for the descending
// one.
func (p *Prefetcher) accessUnitFilter(
	filter *fifo[unitFilterEntry],
	lineAddr uint64,
	step int64,
	t RequestType,
) bool {
	for i := 0; i < filter.Len(); i++ {
		entry := filter.At(i)
		if entry.addr != lineAddr {
			continue
		}

		entry.addr = p.nextStrideAddress(entry.addr, step)
		entry.hits++

		if entry.hits >= p.config.TrainMisses {
			p.initializeStream(lineAddr, step, t)
		}

		return true
	}

	filter.PushBack(unitFilterEntry{
		addr: p.nextStrideAddress(lineAddr, step),
	})

	return false
}

// accessNonUnitFilter detects a constant stride among the accesses to the
// same page.
func (p *Prefetcher) accessNonUnitFilter(lineAddr uint64, t RequestType) bool {
	pageAddr := p.pageAddress(lineAddr)

	for i := 0; i < p.nonUnitFilter.Len(); i++ {
		entry := p.nonUnitFilter.At(i)
		if p.pageAddress(entry.addr) != pageAddr {
			continue
		}

		delta := int64(lineAddr - entry.addr)

		// Repeated accesses to the same line do not say anything about the
		// stride. The entry is left untouched, including its address.
		if delta == 0 {
			return false
		}

		if delta == entry.stride {
			entry.hits++

			if entry.hits > p.config.TrainMisses {
				strideInLines := entry.stride / int64(p.config.BlockSize())
				entry.clear()
				p.initializeStream(lineAddr, strideInLines, t)
			}
		} else {
			entry.hits = 0
		}

		entry.addr = lineAddr
		entry.stride = delta

		return true
	}

	p.nonUnitFilter.PushBack(nonUnitFilterEntry{addr: lineAddr})

	return false
}
