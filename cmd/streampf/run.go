package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/sarchlab/streampf/datarecording"
	"github.com/sarchlab/streampf/mem/cachectrl"
	"github.com/sarchlab/streampf/mem/prefetch"
	"github.com/sarchlab/streampf/monitoring"
	"github.com/sarchlab/streampf/sim"
	"github.com/sarchlab/streampf/workload"
	"github.com/spf13/cobra"
)

type runOptions struct {
	workload string
	accesses int
	seed     int64
	trace    string

	freqMHz          float64
	accessesPerCycle int

	log2BlockSize      int
	cacheSize          uint64
	ways               int
	numInflight        int
	memLatency         int
	prefetchQueueSize  int
	prefetchIssueWidth int
	noPCTraining       bool

	noPrefetch        bool
	numStreams        int
	unitFilterSize    int
	nonUnitFilterSize int
	trainMisses       int
	numStartupPfs     int
	crossPage         bool
	log2PageSize      int

	dump        bool
	verbose     bool
	db          string
	monitor     bool
	monitorPort int
	openBrowser bool
	parallelIDs bool
}

var runOpts runOptions

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a workload through a cache with a stream prefetcher",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runSimulation(runOpts, cmd.OutOrStdout())
	},
}

// defaultRunOptions returns the options used when no flag or environment
// variable sets them.
func defaultRunOptions() runOptions {
	cfg := prefetch.DefaultConfig()

	return runOptions{
		workload:           "sequential",
		accesses:           10000,
		seed:               1,
		freqMHz:            1000,
		accessesPerCycle:   1,
		log2BlockSize:      cfg.Log2BlockSize,
		cacheSize:          32 * 1024,
		ways:               4,
		numInflight:        16,
		memLatency:         100,
		prefetchQueueSize:  16,
		prefetchIssueWidth: 1,
		numStreams:         cfg.NumStreams,
		unitFilterSize:     cfg.UnitFilterSize,
		nonUnitFilterSize:  cfg.NonUnitFilterSize,
		trainMisses:        cfg.TrainMisses,
		numStartupPfs:      cfg.NumStartupPfs,
		crossPage:          cfg.CrossPage,
		log2PageSize:       cfg.Log2PageSize,
	}
}

func init() {
	d := defaultRunOptions()
	f := runCmd.Flags()

	f.StringVar(&runOpts.workload, "workload", d.workload,
		fmt.Sprintf("The built-in workload to run, one of %v.",
			workload.Names()))
	f.IntVar(&runOpts.accesses, "accesses", d.accesses,
		"The number of accesses generated by the workload.")
	f.Int64Var(&runOpts.seed, "seed", d.seed,
		"The seed of the random workloads.")
	f.StringVar(&runOpts.trace, "trace", d.trace,
		"Replay the accesses in a trace file instead of a built-in workload.")

	f.Float64Var(&runOpts.freqMHz, "freq-mhz", d.freqMHz,
		"The frequency of the cache and the driver, in MHz.")
	f.IntVar(&runOpts.accessesPerCycle, "accesses-per-cycle", d.accessesPerCycle,
		"The number of accesses the driver sends every cycle.")

	f.IntVar(&runOpts.log2BlockSize, "log2-block-size", d.log2BlockSize,
		"The log2 of the cache line size in bytes.")
	f.Uint64Var(&runOpts.cacheSize, "cache-size", d.cacheSize,
		"The capacity of the cache in bytes.")
	f.IntVar(&runOpts.ways, "ways", d.ways,
		"The associativity of the cache.")
	f.IntVar(&runOpts.numInflight, "num-inflight", d.numInflight,
		"The number of lines that can be fetched at the same time.")
	f.IntVar(&runOpts.memLatency, "mem-latency", d.memLatency,
		"The number of cycles to fetch a line from memory.")
	f.IntVar(&runOpts.prefetchQueueSize, "prefetch-queue-size", d.prefetchQueueSize,
		"The number of prefetches that can wait to be issued.")
	f.IntVar(&runOpts.prefetchIssueWidth, "prefetch-issue-width", d.prefetchIssueWidth,
		"The number of prefetches issued every cycle.")
	f.BoolVar(&runOpts.noPCTraining, "no-pc-training", false,
		"Report misses without the PC and do not train on hits.")

	f.BoolVar(&runOpts.noPrefetch, "no-prefetch", false,
		"Run the cache without a prefetcher.")
	f.IntVar(&runOpts.numStreams, "num-streams", d.numStreams,
		"The number of streams the prefetcher tracks.")
	f.IntVar(&runOpts.unitFilterSize, "unit-filter-size", d.unitFilterSize,
		"The number of entries of the unit-stride filters.")
	f.IntVar(&runOpts.nonUnitFilterSize, "non-unit-filter-size",
		d.nonUnitFilterSize,
		"The number of entries of the non-unit-stride filter.")
	f.IntVar(&runOpts.trainMisses, "train-misses", d.trainMisses,
		"The number of confirmations before a stream is allocated.")
	f.IntVar(&runOpts.numStartupPfs, "num-startup-pfs", d.numStartupPfs,
		"The number of prefetches issued when a stream is allocated.")
	f.BoolVar(&runOpts.crossPage, "cross-page", d.crossPage,
		"Allow streams to cross page boundaries.")
	f.IntVar(&runOpts.log2PageSize, "log2-page-size", d.log2PageSize,
		"The log2 of the page size in bytes.")

	f.BoolVar(&runOpts.dump, "dump", false,
		"Print the prefetcher tables after the run.")
	f.BoolVar(&runOpts.verbose, "verbose", false,
		"Log the stream and prefetch decisions to stderr.")
	f.StringVar(&runOpts.db, "db", "",
		"Record the run into the given SQLite database (without extension).")
	f.BoolVar(&runOpts.monitor, "monitor", false,
		"Serve the monitor while the simulation runs.")
	f.IntVar(&runOpts.monitorPort, "monitor-port", 0,
		"The port of the monitor. A random port is used if not set.")
	f.BoolVar(&runOpts.openBrowser, "open-browser", false,
		"Open the monitor in the default browser.")
	f.BoolVar(&runOpts.parallelIDs, "parallel-ids", false,
		"Use globally unique IDs instead of sequential ones.")

	rootCmd.AddCommand(runCmd)
}

func (o runOptions) prefetchConfig() prefetch.Config {
	return prefetch.Config{
		NumStreams:        o.numStreams,
		UnitFilterSize:    o.unitFilterSize,
		NonUnitFilterSize: o.nonUnitFilterSize,
		TrainMisses:       o.trainMisses,
		NumStartupPfs:     o.numStartupPfs,
		CrossPage:         o.crossPage,
		Log2BlockSize:     o.log2BlockSize,
		Log2PageSize:      o.log2PageSize,
	}
}

type simulation struct {
	engine *sim.SerialEngine
	cache  *cachectrl.Comp
	driver *workload.Driver
}

func buildSimulation(opts runOptions, w workload.Workload) simulation {
	engine := sim.NewSerialEngine()
	freq := sim.Freq(opts.freqMHz) * sim.MHz

	builder := cachectrl.MakeBuilder().
		WithEngine(engine).
		WithFreq(freq).
		WithLog2BlockSize(opts.log2BlockSize).
		WithByteSize(opts.cacheSize).
		WithWayAssociativity(opts.ways).
		WithNumInflight(opts.numInflight).
		WithMemLatency(opts.memLatency).
		WithPrefetchQueueSize(opts.prefetchQueueSize).
		WithPrefetchIssueWidth(opts.prefetchIssueWidth).
		WithTrainWithPC(!opts.noPCTraining)

	if opts.noPrefetch {
		builder = builder.WithoutPrefetcher()
	} else {
		builder = builder.WithPrefetcher(
			prefetch.MakeBuilder().WithConfig(opts.prefetchConfig()))
	}

	cache := builder.Build("L1")

	driver := workload.MakeDriverBuilder().
		WithEngine(engine).
		WithFreq(freq).
		WithCache(cache).
		WithWorkload(w).
		WithAccessesPerCycle(opts.accessesPerCycle).
		Build("Driver")

	return simulation{
		engine: engine,
		cache:  cache,
		driver: driver,
	}
}

// openWorkload returns the accesses to replay and the function to call when
// the replay finishes.
func openWorkload(opts runOptions) (workload.Workload, func() error, error) {
	if opts.trace == "" {
		w, err := workload.New(opts.workload, opts.accesses, opts.seed)
		return w, func() error { return nil }, err
	}

	file, err := os.Open(opts.trace)
	if err != nil {
		return nil, nil, err
	}

	reader := workload.NewTraceReader(file)
	finish := func() error {
		defer file.Close()
		return reader.Err()
	}

	return reader, finish, nil
}

func runSimulation(opts runOptions, out io.Writer) error {
	if !opts.noPrefetch {
		if err := opts.prefetchConfig().Validate(); err != nil {
			return err
		}
	}

	if opts.parallelIDs {
		sim.UseParallelIDGenerator()
	}

	w, finishWorkload, err := openWorkload(opts)
	if err != nil {
		return err
	}

	s := buildSimulation(opts, w)
	p := s.cache.StreamPrefetcher()

	if opts.verbose && p != nil {
		p.AcceptHook(prefetch.NewLogTracer(log.New(os.Stderr, "", 0)))
	}

	var recorder datarecording.DataRecorder
	var execRecorder *datarecording.ExecRecorder

	if opts.db != "" {
		recorder = datarecording.New(opts.db)
		execRecorder = datarecording.NewExecRecorder(recorder)
		execRecorder.Start()

		if p != nil {
			p.AcceptHook(prefetch.NewDBTracer(recorder, s.engine))
		}
	}

	if opts.monitor {
		startMonitor(opts, s)
	}

	s.driver.Start()

	if err := s.engine.Run(); err != nil {
		return err
	}

	s.engine.Finished()

	if err := finishWorkload(); err != nil {
		return err
	}

	printReport(out, s)

	if opts.dump && p != nil {
		fmt.Fprintln(out)
		p.Print(out)
	}

	if recorder != nil {
		recordResults(recorder, s)
		execRecorder.End()

		if err := recorder.Close(); err != nil {
			return err
		}
	}

	return nil
}

func startMonitor(opts runOptions, s simulation) {
	m := monitoring.NewMonitor().
		WithPortNumber(opts.monitorPort).
		WithBrowser(opts.openBrowser)

	m.RegisterEngine(s.engine)
	m.RegisterComponent(s.cache)
	m.RegisterComponent(s.driver)

	if p := s.cache.StreamPrefetcher(); p != nil {
		m.RegisterPrefetcher(p)
	}

	total := uint64(0)
	if opts.trace == "" {
		total = uint64(opts.accesses)
	}

	bar := m.CreateProgressBar("Accesses", total)
	s.engine.AcceptHook(&progressHook{bar: bar, driver: s.driver})
	s.engine.RegisterSimulationEndHandler(progressEndHandler{m: m, bar: bar})

	m.StartServer()
}

// progressHook moves the progress bar as the driver issues accesses.
type progressHook struct {
	bar      *monitoring.ProgressBar
	driver   *workload.Driver
	reported uint64
}

func (h *progressHook) Func(ctx sim.HookCtx) {
	if ctx.Pos != sim.HookPosAfterEvent {
		return
	}

	issued := h.driver.NumIssued()
	if issued > h.reported {
		h.bar.IncrementFinished(issued - h.reported)
		h.reported = issued
	}
}

type progressEndHandler struct {
	m   *monitoring.Monitor
	bar *monitoring.ProgressBar
}

func (h progressEndHandler) Handle(_ sim.VTimeInSec) {
	h.m.CompleteProgressBar(h.bar)
}

func printReport(out io.Writer, s simulation) {
	cs := s.cache.Stats()

	fmt.Fprintf(out, "%s Cache Stats\n", s.cache.Name())
	fmt.Fprintf(out, "  %-36s %d\n", "accesses", cs.Accesses)
	fmt.Fprintf(out, "  %-36s %d\n", "hits", cs.Hits)
	fmt.Fprintf(out, "  %-36s %d\n", "misses", cs.Misses)
	fmt.Fprintf(out, "  %-36s %d\n", "blocked_accesses", cs.BlockedAccesses)
	fmt.Fprintf(out, "  %-36s %d\n", "prefetch_fills", cs.PrefetchFills)
	fmt.Fprintf(out, "  %-36s %d\n", "dropped_prefetches", cs.DroppedPrefetches)
	fmt.Fprintf(out, "  %-36s %d\n", "merged_prefetches", cs.MergedPrefetches)
	fmt.Fprintf(out, "  %-36s %.4f\n", "hit_rate", cs.HitRate())
	fmt.Fprintf(out, "  %-36s %d\n", "driver_stalls", s.driver.NumStalls())

	p := s.cache.StreamPrefetcher()
	if p == nil {
		return
	}

	ps := p.Stats()

	fmt.Fprintf(out, "%s Stats\n", p.Name())
	for _, e := range ps.Entries() {
		fmt.Fprintf(out, "  %-36s %d\n", e.Name, e.Value)
	}
	fmt.Fprintf(out, "  %-36s %.4f\n", "accuracy", ps.Accuracy())
}

type cacheStatEntry struct {
	Component string
	Name      string
	Value     uint64
}

func recordResults(recorder datarecording.DataRecorder, s simulation) {
	cs := s.cache.Stats()
	name := s.cache.Name()

	recorder.CreateTable("cache_stats", cacheStatEntry{})
	for _, e := range []cacheStatEntry{
		{name, "accesses", cs.Accesses},
		{name, "hits", cs.Hits},
		{name, "misses", cs.Misses},
		{name, "blocked_accesses", cs.BlockedAccesses},
		{name, "prefetch_fills", cs.PrefetchFills},
		{name, "dropped_prefetches", cs.DroppedPrefetches},
		{name, "merged_prefetches", cs.MergedPrefetches},
	} {
		recorder.InsertData("cache_stats", e)
	}

	if p := s.cache.StreamPrefetcher(); p != nil {
		prefetch.RecordStats(recorder, p.Name(), p.Stats())
	}
}
