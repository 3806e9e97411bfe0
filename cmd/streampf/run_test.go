package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/streampf/workload"
)

func runBuilt(opts runOptions) simulation {
	w, err := workload.New(opts.workload, opts.accesses, opts.seed)
	Expect(err).ToNot(HaveOccurred())

	s := buildSimulation(opts, w)
	s.driver.Start()
	Expect(s.engine.Run()).To(Succeed())
	Expect(s.driver.Done()).To(BeTrue())

	return s
}

var _ = Describe("Run", func() {
	var opts runOptions

	BeforeEach(func() {
		opts = defaultRunOptions()
		opts.accesses = 4096
		opts.memLatency = 4
		opts.numStartupPfs = 4
	})

	It("should reduce the misses of a sequential scan", func() {
		opts.noPrefetch = true
		baseline := runBuilt(opts)

		opts.noPrefetch = false
		prefetched := runBuilt(opts)

		Expect(baseline.cache.StreamPrefetcher()).To(BeNil())
		Expect(baseline.cache.Stats().Accesses).To(Equal(uint64(4096)))
		Expect(prefetched.cache.Stats().Accesses).To(Equal(uint64(4096)))
		Expect(prefetched.cache.Stats().Misses).
			To(BeNumerically("<", baseline.cache.Stats().Misses))

		ps := prefetched.cache.StreamPrefetcher().Stats()
		Expect(ps.AllocatedStreams).To(BeNumerically(">", 0))
		Expect(ps.PrefetchedHits).To(BeNumerically(">", 0))
	})

	It("should print the statistics and the tables", func() {
		opts.dump = true
		buf := new(bytes.Buffer)

		Expect(runSimulation(opts, buf)).To(Succeed())

		Expect(buf.String()).To(ContainSubstring("L1 Cache Stats\n"))
		Expect(buf.String()).To(MatchRegexp(`accesses\s+4096\n`))
		Expect(buf.String()).To(ContainSubstring("L1.Prefetcher Stats\n"))
		Expect(buf.String()).
			To(ContainSubstring("L1.Prefetcher Prefetcher State\n"))
	})

	It("should not print prefetcher statistics without a prefetcher", func() {
		opts.noPrefetch = true
		opts.dump = true
		buf := new(bytes.Buffer)

		Expect(runSimulation(opts, buf)).To(Succeed())

		Expect(buf.String()).To(ContainSubstring("L1 Cache Stats\n"))
		Expect(buf.String()).ToNot(ContainSubstring("L1.Prefetcher"))
	})

	It("should reject invalid prefetcher configurations", func() {
		opts.trainMisses = 0

		err := runSimulation(opts, new(bytes.Buffer))

		Expect(err).To(MatchError(ContainSubstring("train misses")))
	})

	It("should reject unknown workloads", func() {
		opts.workload = "zigzag"

		err := runSimulation(opts, new(bytes.Buffer))

		Expect(err).To(MatchError(ContainSubstring("unknown workload")))
	})

	It("should replay traces", func() {
		trace := new(bytes.Buffer)
		for i := 0; i < 100; i++ {
			fmt.Fprintf(trace, "0x400 %#x LD\n", 0x10000+i*64)
		}

		path := filepath.Join(GinkgoT().TempDir(), "trace.txt")
		Expect(os.WriteFile(path, trace.Bytes(), 0o600)).To(Succeed())
		opts.trace = path
		buf := new(bytes.Buffer)

		Expect(runSimulation(opts, buf)).To(Succeed())

		Expect(buf.String()).To(MatchRegexp(`accesses\s+100\n`))
	})

	It("should report malformed traces", func() {
		path := filepath.Join(GinkgoT().TempDir(), "trace.txt")
		Expect(os.WriteFile(path, []byte("0x400 zz LD\n"), 0o600)).
			To(Succeed())
		opts.trace = path

		err := runSimulation(opts, new(bytes.Buffer))

		Expect(err).To(MatchError(ContainSubstring("trace line 1")))
	})

	It("should record the run into a database", func() {
		opts.accesses = 1024
		opts.db = filepath.Join(GinkgoT().TempDir(), "run")

		Expect(runSimulation(opts, new(bytes.Buffer))).To(Succeed())

		buf := new(bytes.Buffer)
		err := printRecordedReport(
			context.Background(), opts.db+".sqlite3", buf)

		Expect(err).ToNot(HaveOccurred())
		Expect(buf.String()).To(ContainSubstring("Command: "))
		Expect(buf.String()).To(MatchRegexp(`L1 accesses\s+1024\n`))
		Expect(buf.String()).
			To(MatchRegexp(`L1\.Prefetcher allocated_streams\s+[1-9]`))
	})
})
