package prefetch

import (
	"fmt"
	"log"

	"github.com/sarchlab/streampf/datarecording"
	"github.com/sarchlab/streampf/sim"
)

// A logTracer prints the decisions of a prefetcher.
type logTracer struct {
	logger *log.Logger
}

// NewLogTracer creates a hook that writes one line for every stream and
// prefetch event to the logger.
func NewLogTracer(logger *log.Logger) sim.Hook {
	return &logTracer{logger: logger}
}

func (t *logTracer) Func(ctx sim.HookCtx) {
	name := ""
	if n, ok := ctx.Domain.(sim.Named); ok {
		name = n.Name()
	}

	switch item := ctx.Item.(type) {
	case StreamEvent:
		t.logger.Printf("%d, %s, %s, slot %d, 0x%x, stride %d, %s %s\n",
			item.Cycle, name, ctx.Pos.Name, item.Slot, item.Address,
			item.Stride, item.Type, item.Reason)
	case PrefetchEvent:
		t.logger.Printf("%d, %s, %s, slot %d, 0x%x, %s\n",
			item.Cycle, name, ctx.Pos.Name, item.Slot, item.Address,
			item.Type)
	case Observation:
		t.logger.Printf("%d, %s, %s, %s, 0x%x, pc 0x%x\n",
			item.Cycle, name, ctx.Pos.Name, item.Kind, item.Address,
			item.PC)
	}
}

type streamEntry struct {
	ID         string
	Prefetcher string
	What       string
	Time       float64
	Cycle      uint64
	Slot       int
	Address    string
	Stride     int64
	Type       string
	Reason     string
}

type requestEntry struct {
	ID         string
	Prefetcher string
	Time       float64
	Cycle      uint64
	Slot       int
	Address    string
	Stride     int64
	Type       string
}

type statEntry struct {
	Prefetcher string
	Name       string
	Value      uint64
}

// A dbTracer records the stream and prefetch events into a database.
type dbTracer struct {
	timeTeller   sim.TimeTeller
	dataRecorder datarecording.DataRecorder
}

// NewDBTracer creates a hook that records allocated and released streams in
// the prefetch_streams table and the prefetch requests in the
// prefetch_requests table.
func NewDBTracer(
	dataRecorder datarecording.DataRecorder,
	timeTeller sim.TimeTeller,
) sim.Hook {
	t := &dbTracer{
		timeTeller:   timeTeller,
		dataRecorder: dataRecorder,
	}

	t.dataRecorder.CreateTable("prefetch_streams", streamEntry{})
	t.dataRecorder.CreateTable("prefetch_requests", requestEntry{})

	return t
}

func (t *dbTracer) Func(ctx sim.HookCtx) {
	name := ""
	if n, ok := ctx.Domain.(sim.Named); ok {
		name = n.Name()
	}

	switch item := ctx.Item.(type) {
	case StreamEvent:
		t.dataRecorder.InsertData("prefetch_streams", streamEntry{
			ID:         sim.GetIDGenerator().Generate(),
			Prefetcher: name,
			What:       ctx.Pos.Name,
			Time:       float64(t.timeTeller.CurrentTime()),
			Cycle:      item.Cycle,
			Slot:       item.Slot,
			Address:    hexAddress(item.Address),
			Stride:     item.Stride,
			Type:       item.Type.String(),
			Reason:     item.Reason,
		})
	case PrefetchEvent:
		t.dataRecorder.InsertData("prefetch_requests", requestEntry{
			ID:         sim.GetIDGenerator().Generate(),
			Prefetcher: name,
			Time:       float64(t.timeTeller.CurrentTime()),
			Cycle:      item.Cycle,
			Slot:       item.Slot,
			Address:    hexAddress(item.Address),
			Stride:     item.Stride,
			Type:       item.Type.String(),
		})
	}
}

// RecordStats writes all the counters of a prefetcher into the
// prefetch_stats table. The table is created if it does not exist yet.
func RecordStats(
	dataRecorder datarecording.DataRecorder,
	prefetcherName string,
	stats Stats,
) {
	if !hasTable(dataRecorder, "prefetch_stats") {
		dataRecorder.CreateTable("prefetch_stats", statEntry{})
	}

	for _, e := range stats.Entries() {
		dataRecorder.InsertData("prefetch_stats", statEntry{
			Prefetcher: prefetcherName,
			Name:       e.Name,
			Value:      e.Value,
		})
	}
}

// hexAddress formats an address for a database column. SQLite integers are
// signed, so addresses with the top bit set cannot be stored as numbers.
func hexAddress(addr uint64) string {
	return fmt.Sprintf("%#x", addr)
}

func hasTable(dataRecorder datarecording.DataRecorder, name string) bool {
	for _, t := range dataRecorder.ListTables() {
		if t == name {
			return true
		}
	}

	return false
}
