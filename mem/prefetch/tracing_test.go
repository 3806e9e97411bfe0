package prefetch

import (
	"bytes"
	"context"
	"log"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/streampf/datarecording"
	"github.com/sarchlab/streampf/sim"
)

var _ = Describe("Tracing", func() {
	var (
		mockCtrl   *gomock.Controller
		controller *MockController
		recorder   *MockDataRecorder
		timeTeller *MockTimeTeller
		p          *Prefetcher
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		controller = NewMockController(mockCtrl)
		recorder = NewMockDataRecorder(mockCtrl)
		timeTeller = NewMockTimeTeller(mockCtrl)

		controller.EXPECT().CurrentCycle().Return(uint64(3)).AnyTimes()
		controller.EXPECT().EnqueuePrefetch(gomock.Any(), gomock.Any()).
			AnyTimes()
		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(1.5)).
			AnyTimes()

		p = MakeBuilder().
			WithController(controller).
			WithTrainMisses(1).
			Build("Prefetcher")
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should log the prefetcher decisions", func() {
		buf := new(bytes.Buffer)
		p.AcceptHook(NewLogTracer(log.New(buf, "", 0)))

		p.ObserveMissWithPC(0, RequestTypeLoad, 0x400)
		p.ObserveMissWithPC(64, RequestTypeLoad, 0x404)

		out := buf.String()
		Expect(out).To(ContainSubstring(
			"3, Prefetcher, PrefetchObserved, miss, 0x40, pc 0x404"))
		Expect(out).To(ContainSubstring(
			"3, Prefetcher, PrefetchStreamAllocated, slot 0, 0x40, stride 1"))
		Expect(out).To(ContainSubstring(
			"3, Prefetcher, PrefetchIssued, slot 0, 0x80, LD"))
	})

	It("should record streams and requests", func() {
		var streams []streamEntry
		var requests []requestEntry

		recorder.EXPECT().CreateTable("prefetch_streams", streamEntry{})
		recorder.EXPECT().CreateTable("prefetch_requests", requestEntry{})
		recorder.EXPECT().
			InsertData("prefetch_streams", gomock.Any()).
			Do(func(_ string, e any) {
				streams = append(streams, e.(streamEntry))
			})
		recorder.EXPECT().
			InsertData("prefetch_requests", gomock.Any()).
			Do(func(_ string, e any) {
				requests = append(requests, e.(requestEntry))
			})

		p.AcceptHook(NewDBTracer(recorder, timeTeller))

		p.ObserveMiss(0, RequestTypeLoad)
		p.ObserveMiss(64, RequestTypeLoad)

		Expect(streams).To(HaveLen(1))
		Expect(streams[0].Prefetcher).To(Equal("Prefetcher"))
		Expect(streams[0].What).To(Equal("PrefetchStreamAllocated"))
		Expect(streams[0].Time).To(Equal(1.5))
		Expect(streams[0].Address).To(Equal("0x40"))

		Expect(requests).To(HaveLen(1))
		Expect(requests[0].Address).To(Equal("0x80"))
		Expect(requests[0].Cycle).To(Equal(uint64(3)))
		Expect(requests[0].Type).To(Equal("LD"))
	})

	It("should record the statistics", func() {
		var names []string

		recorder.EXPECT().ListTables().Return(nil)
		recorder.EXPECT().CreateTable("prefetch_stats", statEntry{})
		recorder.EXPECT().
			InsertData("prefetch_stats", gomock.Any()).
			Do(func(_ string, e any) {
				names = append(names, e.(statEntry).Name)
			}).
			Times(len(Stats{}.Entries()))

		RecordStats(recorder, "Prefetcher", Stats{PrefetchesRequested: 2})

		Expect(names).To(ContainElement("prefetches_requested"))
	})

	It("should not create the statistics table twice", func() {
		recorder.EXPECT().ListTables().Return([]string{"prefetch_stats"})
		recorder.EXPECT().
			InsertData("prefetch_stats", gomock.Any()).
			AnyTimes()

		RecordStats(recorder, "Prefetcher", Stats{})
	})

	It("should store addresses below zero after a stream wraps", func() {
		path := filepath.Join(GinkgoT().TempDir(), "trace")
		db := datarecording.New(path)

		p = MakeBuilder().
			WithController(controller).
			WithTrainMisses(2).
			WithNumStartupPfs(4).
			WithCrossPage(true).
			Build("Prefetcher")
		p.AcceptHook(NewDBTracer(db, timeTeller))

		p.ObserveMiss(256, RequestTypeLoad)
		p.ObserveMiss(192, RequestTypeLoad)
		p.ObserveMiss(128, RequestTypeLoad)

		Expect(p.Stats().PrefetchesRequested).To(Equal(uint64(4)))
		Expect(p.Stats().PagesCrossed).To(Equal(uint64(1)))
		Expect(func() { db.Flush() }).NotTo(Panic())
		Expect(db.Close()).To(Succeed())

		reader, err := datarecording.NewReader(path + ".sqlite3")
		Expect(err).NotTo(HaveOccurred())
		defer reader.Close()

		reader.MapTable("prefetch_requests", requestEntry{})
		rows, total, err := reader.Query(context.Background(),
			"prefetch_requests", datarecording.QueryParams{OrderBy: "rowid"})
		Expect(err).NotTo(HaveOccurred())
		Expect(total).To(Equal(4))

		var addrs []string
		for _, r := range rows {
			addrs = append(addrs, r.(*requestEntry).Address)
		}

		Expect(addrs).To(Equal([]string{
			"0x40", "0x0", "0xffffffffffffffc0", "0xffffffffffffff80",
		}))
	})
})
