package prefetch

import (
	"fmt"
	"io"
)

// FilterEntryState is a read-only view of a filter entry.
type FilterEntryState struct {
	Address uint64 `json:"address"`
	Stride  int64  `json:"stride"`
	Hits    int    `json:"hits"`
}

// StreamState is a read-only view of a stream slot.
type StreamState struct {
	Address   uint64   `json:"address"`
	Stride    int64    `json:"stride"`
	Valid     bool     `json:"valid"`
	UseTime   uint64   `json:"use_time"`
	Type      string   `json:"type"`
	Lookahead []string `json:"lookahead"`
}

// State is a snapshot of the tables of a prefetcher.
type State struct {
	Name           string             `json:"name"`
	UnitFilter     []FilterEntryState `json:"unit_filter"`
	NegativeFilter []FilterEntryState `json:"negative_filter"`
	NonUnitFilter  []FilterEntryState `json:"non_unit_filter"`
	Streams        []StreamState      `json:"streams"`
}

// State returns a snapshot of the filters and the streams.
func (p *Prefetcher) State() State {
	s := State{
		Name:           p.name,
		UnitFilter:     unitFilterState(p.unitFilter, 1),
		NegativeFilter: unitFilterState(p.negativeFilter, -1),
		NonUnitFilter:  make([]FilterEntryState, 0, p.nonUnitFilter.Len()),
		Streams:        make([]StreamState, 0, len(p.streams)),
	}

	for i := 0; i < p.nonUnitFilter.Len(); i++ {
		e := p.nonUnitFilter.At(i)
		s.NonUnitFilter = append(s.NonUnitFilter, FilterEntryState{
			Address: e.addr,
			Stride:  e.stride,
			Hits:    e.hits,
		})
	}

	for i := range p.streams {
		st := &p.streams[i]

		lookahead := make([]string, MaxPfInflight)
		for j, la := range st.lookahead {
			lookahead[j] = la.String()
		}

		s.Streams = append(s.Streams, StreamState{
			Address:   st.address,
			Stride:    st.stride,
			Valid:     st.isValid,
			UseTime:   st.useTime,
			Type:      st.reqType.String(),
			Lookahead: lookahead,
		})
	}

	return s
}

func unitFilterState(
	filter *fifo[unitFilterEntry],
	step int64,
) []FilterEntryState {
	entries := make([]FilterEntryState, 0, filter.Len())

	for i := 0; i < filter.Len(); i++ {
		e := filter.At(i)
		entries = append(entries, FilterEntryState{
			Address: e.addr,
			Stride:  step,
			Hits:    e.hits,
		})
	}

	return entries
}

// Print writes the content of the filters and the streams to w. The output
// is meant for humans and its format may change.
func (p *Prefetcher) Print(w io.Writer) {
	s := p.State()

	fmt.Fprintf(w, "%s Prefetcher State\n", s.Name)

	fmt.Fprintf(w, "unit table:\n")
	for _, e := range s.UnitFilter {
		fmt.Fprintf(w, "%#x\n", e.Address)
	}

	fmt.Fprintf(w, "negative table:\n")
	for _, e := range s.NegativeFilter {
		fmt.Fprintf(w, "%#x\n", e.Address)
	}

	fmt.Fprintf(w, "non-unit table:\n")
	for _, e := range s.NonUnitFilter {
		fmt.Fprintf(w, "%#x %d %d\n", e.Address, e.Stride, e.Hits)
	}

	fmt.Fprintf(w, "streams:\n")
	for _, st := range s.Streams {
		fmt.Fprintf(w, "%#x %d %t %d\n",
			st.Address, st.Stride, st.Valid, st.UseTime)
	}
}
