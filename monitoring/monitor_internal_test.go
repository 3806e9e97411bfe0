package monitoring

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/sarchlab/streampf/mem/cachectrl"
	"github.com/sarchlab/streampf/mem/prefetch"
	"github.com/sarchlab/streampf/sim"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type countingEngine struct {
	*sim.SerialEngine
	pauses    int
	continues int
}

func (e *countingEngine) Pause() {
	e.pauses++
	e.SerialEngine.Pause()
}

func (e *countingEngine) Continue() {
	e.continues++
	e.SerialEngine.Continue()
}

var _ = Describe("Monitor", func() {
	var (
		engine *sim.SerialEngine
		comp   *cachectrl.Comp
		m      *Monitor
	)

	get := func(url string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, url, nil)
		m.router().ServeHTTP(rec, req)

		return rec
	}

	BeforeEach(func() {
		engine = sim.NewSerialEngine()
		comp = cachectrl.MakeBuilder().
			WithEngine(engine).
			WithPrefetcher(prefetch.MakeBuilder().WithTrainMisses(1)).
			Build("L1")

		m = NewMonitor()
		m.RegisterEngine(engine)
		m.RegisterComponent(comp)
		m.RegisterPrefetcher(comp.StreamPrefetcher())
	})

	It("should register components and their buffers", func() {
		Expect(m.components).To(HaveLen(1))
		Expect(m.buffers).To(HaveLen(1))
		Expect(m.buffers[0].Name()).To(Equal("L1.PrefetchQueue"))
	})

	It("should not accept reserved port numbers", func() {
		m.WithPortNumber(80)
		Expect(m.portNumber).To(Equal(0))

		m.WithPortNumber(8080)
		Expect(m.portNumber).To(Equal(8080))
	})

	It("should report the current time", func() {
		rec := get("/api/now")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(Equal(`{"now":0.0000000000}`))
	})

	It("should pause and continue the engine", func() {
		Expect(get("/api/pause").Code).To(Equal(http.StatusOK))
		Expect(get("/api/continue").Code).To(Equal(http.StatusOK))

		comp.Access(0x40, prefetch.RequestTypeLoad, 0x400)
		Expect(engine.Run()).To(Succeed())
	})

	It("should list components", func() {
		var names []string
		rec := get("/api/list_components")

		Expect(json.Unmarshal(rec.Body.Bytes(), &names)).To(Succeed())
		Expect(names).To(Equal([]string{"L1"}))
	})

	It("should report a component while holding the engine", func() {
		counting := &countingEngine{SerialEngine: engine}
		m.RegisterEngine(counting)

		rec := get("/api/component/L1")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(counting.pauses).To(Equal(1))
		Expect(counting.continues).To(Equal(1))
	})

	It("should return 404 for unknown components", func() {
		rec := get("/api/component/L2")

		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})

	Context("when reporting on prefetchers", func() {
		BeforeEach(func() {
			comp.Access(0x40, prefetch.RequestTypeLoad, 0x400)
			comp.Access(0x80, prefetch.RequestTypeLoad, 0x400)
			Expect(engine.Run()).To(Succeed())
		})

		It("should list prefetchers", func() {
			var names []string
			rec := get("/api/list_prefetchers")

			Expect(json.Unmarshal(rec.Body.Bytes(), &names)).To(Succeed())
			Expect(names).To(Equal([]string{"L1.Prefetcher"}))
		})

		It("should report statistics", func() {
			var entries []prefetch.StatEntry
			rec := get("/api/prefetcher/L1.Prefetcher/stats")

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(json.Unmarshal(rec.Body.Bytes(), &entries)).To(Succeed())
			Expect(entries).To(ContainElement(prefetch.StatEntry{
				Name:        "miss_observed",
				Description: "number of misses observed",
				Value:       2,
			}))
		})

		It("should dump the tables as JSON", func() {
			var state prefetch.State
			rec := get("/api/prefetcher/L1.Prefetcher/dump")

			Expect(json.Unmarshal(rec.Body.Bytes(), &state)).To(Succeed())
			Expect(state).To(Equal(comp.StreamPrefetcher().State()))
		})

		It("should dump the tables as text", func() {
			rec := get("/api/prefetcher/L1.Prefetcher/dump?format=text")

			Expect(rec.Body.String()).
				To(HavePrefix("L1.Prefetcher Prefetcher State\n"))
		})

		It("should hold the engine while reading a prefetcher", func() {
			counting := &countingEngine{SerialEngine: engine}
			m.RegisterEngine(counting)

			get("/api/prefetcher/L1.Prefetcher/stats")
			get("/api/prefetcher/L1.Prefetcher/dump")
			get("/api/prefetcher/L1.Prefetcher/dump?format=text")

			Expect(counting.pauses).To(Equal(3))
			Expect(counting.continues).To(Equal(3))

			comp.Access(0xc0, prefetch.RequestTypeLoad, 0x400)
			Expect(engine.Run()).To(Succeed())
		})

		It("should keep a user pause while reading a prefetcher", func() {
			counting := &countingEngine{SerialEngine: engine}
			m.RegisterEngine(counting)

			get("/api/pause")
			rec := get("/api/prefetcher/L1.Prefetcher/stats")

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(counting.pauses).To(Equal(1))
			Expect(counting.continues).To(Equal(0))

			get("/api/continue")
			Expect(counting.continues).To(Equal(1))
		})

		It("should return 404 for unknown prefetchers", func() {
			rec := get("/api/prefetcher/L2.Prefetcher/stats")

			Expect(rec.Code).To(Equal(http.StatusNotFound))
		})
	})

	It("should list progress bars", func() {
		bar := m.CreateProgressBar("Accesses", 10)
		bar.IncrementInProgress(3)
		bar.MoveInProgressToFinished(2)

		var bars []ProgressBarSnapshot
		rec := get("/api/progress")
		Expect(json.Unmarshal(rec.Body.Bytes(), &bars)).To(Succeed())
		Expect(bars).To(HaveLen(1))
		Expect(bars[0].Name).To(Equal("Accesses"))
		Expect(bars[0].Total).To(Equal(uint64(10)))
		Expect(bars[0].Finished).To(Equal(uint64(2)))
		Expect(bars[0].InProgress).To(Equal(uint64(1)))

		m.CompleteProgressBar(bar)

		rec = get("/api/progress")
		Expect(json.Unmarshal(rec.Body.Bytes(), &bars)).To(Succeed())
		Expect(bars).To(BeEmpty())
	})

	It("should report buffer levels", func() {
		rec := get("/api/hangdetector/buffers")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(Equal(
			`[{"buffer":"L1.PrefetchQueue","level":0,"cap":16}]`))
	})

	It("should reject unknown sort methods", func() {
		rec := get("/api/hangdetector/buffers?sort=name")

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("should reject malformed limits", func() {
		rec := get("/api/hangdetector/buffers?limit=abc")

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("should sort and select buffers", func() {
		small := sim.NewBuffer("Small", 2)
		large := sim.NewBuffer("Large", 8)
		empty := sim.NewBuffer("Empty", 4)
		small.Push(1)
		large.Push(1)
		large.Push(2)
		m.buffers = []sim.Buffer{empty, small, large}

		byPercent := m.sortAndSelectBuffers("percent", 0, 0)
		Expect(byPercent).To(Equal([]sim.Buffer{small, large, empty}))

		byLevel := m.sortAndSelectBuffers("level", 0, 0)
		Expect(byLevel).To(Equal([]sim.Buffer{large, small, empty}))

		Expect(m.sortAndSelectBuffers("level", 1, 1)).
			To(Equal([]sim.Buffer{small}))
		Expect(m.sortAndSelectBuffers("level", 5, 2)).
			To(Equal([]sim.Buffer{empty}))
		Expect(m.sortAndSelectBuffers("level", 0, 10)).To(BeEmpty())
	})

	It("should serve the page", func() {
		rec := get("/")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(HavePrefix("<!DOCTYPE html>"))
	})
})
