// Package monitoring turns a running simulation into a web server, so that
// the progress and the prefetcher state can be inspected while it runs.
package monitoring

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"

	// Enable profiling
	_ "net/http/pprof"
	"os"
	"reflect"
	"runtime/pprof"
	"sort"
	"strconv"
	"sync"
	"time"
	"unsafe"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/sarchlab/streampf/mem/prefetch"
	"github.com/sarchlab/streampf/monitoring/web"
	"github.com/sarchlab/streampf/sim"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"
)

// A Prefetcher is a prefetcher that the monitor can report on.
type Prefetcher interface {
	Name() string
	Stats() prefetch.Stats
	State() prefetch.State
	Print(w io.Writer)
}

// Monitor can turn a simulation into a server and allows external monitoring
// and controlling of the simulation.
//
// Handlers that read component or prefetcher state hold the engine paused
// while they take a snapshot.
type Monitor struct {
	engine      sim.Engine
	pauseLock   sync.Mutex
	paused      bool
	components  []sim.Component
	buffers     []sim.Buffer
	prefetchers []Prefetcher
	portNumber  int
	openBrowser bool

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithBrowser makes the monitor open the page in the default browser once the
// server starts.
func (m *Monitor) WithBrowser(open bool) *Monitor {
	m.openBrowser = open
	return m
}

// RegisterEngine registers the engine that is used in the simulation.
func (m *Monitor) RegisterEngine(e sim.Engine) {
	m.engine = e
}

// RegisterComponent register a component to be monitored. The buffers that
// the component holds directly are registered as well.
func (m *Monitor) RegisterComponent(c sim.Component) {
	m.components = append(m.components, c)

	m.registerBuffers(c)
}

func (m *Monitor) registerBuffers(c any) {
	v := reflect.ValueOf(c)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return
	}

	v = v.Elem()
	bufferType := reflect.TypeOf((*sim.Buffer)(nil)).Elem()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		if field.Type() != bufferType {
			continue
		}

		buf := reflect.NewAt(
			field.Type(),
			unsafe.Pointer(field.UnsafeAddr()),
		).Elem().Interface()

		if buf != nil {
			m.buffers = append(m.buffers, buf.(sim.Buffer))
		}
	}
}

// RegisterPrefetcher registers a prefetcher whose statistics and tables can
// be queried.
func (m *Monitor) RegisterPrefetcher(p Prefetcher) {
	m.prefetchers = append(m.prefetchers, p)
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        sim.GetIDGenerator().Generate(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar from the list of bars to show.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

func (m *Monitor) router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/pause", m.pauseEngine)
	r.HandleFunc("/api/continue", m.continueEngine)
	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/list_components", m.listComponents)
	r.HandleFunc("/api/component/{name}", m.listComponentDetails)
	r.HandleFunc("/api/hangdetector/buffers", m.hangDetectorBuffers)
	r.HandleFunc("/api/list_prefetchers", m.listPrefetchers)
	r.HandleFunc("/api/prefetcher/{name}/stats", m.prefetcherStats)
	r.HandleFunc("/api/prefetcher/{name}/dump", m.prefetcherDump)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.PathPrefix("/debug/pprof/").Handler(http.DefaultServeMux)
	r.PathPrefix("/").Handler(http.FileServer(web.GetAssets()))

	return r
}

// StartServer starts the monitor as a web server and returns the port that it
// listens on.
func (m *Monitor) StartServer() int {
	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	port := listener.Addr().(*net.TCPAddr).Port
	url := fmt.Sprintf("http://localhost:%d", port)
	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", url)

	r := m.router()

	go func() {
		err := http.Serve(listener, r)
		dieOnErr(err)
	}()

	if m.openBrowser {
		if err := browser.OpenURL(url); err != nil {
			fmt.Fprintf(os.Stderr, "Cannot open browser: %v\n", err)
		}
	}

	return port
}

func (m *Monitor) pauseEngine(w http.ResponseWriter, _ *http.Request) {
	m.pauseLock.Lock()
	m.engine.Pause()
	m.paused = true
	m.pauseLock.Unlock()

	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) continueEngine(w http.ResponseWriter, _ *http.Request) {
	m.pauseLock.Lock()
	m.engine.Continue()
	m.paused = false
	m.pauseLock.Unlock()

	_, err := w.Write(nil)
	dieOnErr(err)
}

// snapshot runs f between two events. An engine paused by the user stays
// paused.
func (m *Monitor) snapshot(f func()) {
	m.pauseLock.Lock()
	defer m.pauseLock.Unlock()

	if m.engine == nil || m.paused {
		f()
		return
	}

	m.engine.Pause()
	defer m.engine.Continue()

	f()
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	now := m.engine.CurrentTime()
	fmt.Fprintf(w, "{\"now\":%.10f}", now)
}

func (m *Monitor) listComponents(w http.ResponseWriter, _ *http.Request) {
	names := make([]string, 0, len(m.components))
	for _, c := range m.components {
		names = append(names, c.Name())
	}

	writeJSON(w, names)
}

func (m *Monitor) listComponentDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	component := m.findComponentOr404(w, name)
	if component == nil {
		return
	}

	buf := new(bytes.Buffer)
	serializer := goseth.NewSerializer()
	serializer.SetRoot(component)
	serializer.SetMaxDepth(1)

	var err error
	m.snapshot(func() { err = serializer.Serialize(buf) })
	dieOnErr(err)

	_, err = buf.WriteTo(w)
	dieOnErr(err)
}

func (m *Monitor) hangDetectorBuffers(w http.ResponseWriter, r *http.Request) {
	sortMethod, limit, offset, err := buffersParseParams(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	sortedBuffers := m.sortAndSelectBuffers(sortMethod, limit, offset)

	fmt.Fprintf(w, "[")
	for i, b := range sortedBuffers {
		if i > 0 {
			fmt.Fprint(w, ",")
		}

		fmt.Fprintf(w, "{\"buffer\":\"%s\",\"level\":%d,\"cap\":%d}",
			b.Name(), b.Size(), b.Capacity())
	}

	fmt.Fprint(w, "]")
}

func buffersParseParams(
	r *http.Request,
) (sortMethod string, limit, offset int, err error) {
	query := r.URL.Query()

	sortMethod = query.Get("sort")
	if sortMethod == "" {
		sortMethod = "percent"
	}

	if sortMethod != "level" && sortMethod != "percent" {
		return "", 0, 0, fmt.Errorf(
			"invalid sort method %q, allowed values are `level` and `percent`",
			sortMethod)
	}

	limit, err = intParam(query.Get("limit"))
	if err != nil {
		return "", 0, 0, err
	}

	offset, err = intParam(query.Get("offset"))
	if err != nil {
		return "", 0, 0, err
	}

	if limit < 0 || offset < 0 {
		return "", 0, 0, errors.New("limit and offset must not be negative")
	}

	return sortMethod, limit, offset, nil
}

func intParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}

	return strconv.Atoi(s)
}

func bufferPercent(b sim.Buffer) float64 {
	if b.Capacity() == 0 {
		return 0
	}

	return float64(b.Size()) / float64(b.Capacity())
}

// sortAndSelectBuffers orders the buffers from the fullest. A zero limit
// selects all the buffers after offset.
func (m *Monitor) sortAndSelectBuffers(
	sortMethod string,
	limit, offset int,
) []sim.Buffer {
	sortedBuffers := make([]sim.Buffer, len(m.buffers))
	copy(sortedBuffers, m.buffers)

	byLevel := func(i, j int) int {
		return sortedBuffers[i].Size() - sortedBuffers[j].Size()
	}
	byPercent := func(i, j int) int {
		pi := bufferPercent(sortedBuffers[i])
		pj := bufferPercent(sortedBuffers[j])

		switch {
		case pi > pj:
			return 1
		case pi < pj:
			return -1
		default:
			return 0
		}
	}

	primary, secondary := byPercent, byLevel
	if sortMethod == "level" {
		primary, secondary = byLevel, byPercent
	}

	sort.SliceStable(sortedBuffers, func(i, j int) bool {
		if c := primary(i, j); c != 0 {
			return c > 0
		}

		return secondary(i, j) > 0
	})

	if offset > len(sortedBuffers) {
		offset = len(sortedBuffers)
	}

	end := len(sortedBuffers)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	return sortedBuffers[offset:end]
}

func (m *Monitor) findComponentOr404(
	w http.ResponseWriter,
	name string,
) sim.Component {
	for _, c := range m.components {
		if c.Name() == name {
			return c
		}
	}

	w.WriteHeader(http.StatusNotFound)
	_, err := w.Write([]byte("Component not found"))
	dieOnErr(err)

	return nil
}

func (m *Monitor) findPrefetcherOr404(
	w http.ResponseWriter,
	r *http.Request,
) Prefetcher {
	name := mux.Vars(r)["name"]

	for _, p := range m.prefetchers {
		if p.Name() == name {
			return p
		}
	}

	w.WriteHeader(http.StatusNotFound)
	_, err := w.Write([]byte("Prefetcher not found"))
	dieOnErr(err)

	return nil
}

func (m *Monitor) listPrefetchers(w http.ResponseWriter, _ *http.Request) {
	names := make([]string, 0, len(m.prefetchers))
	for _, p := range m.prefetchers {
		names = append(names, p.Name())
	}

	writeJSON(w, names)
}

func (m *Monitor) prefetcherStats(w http.ResponseWriter, r *http.Request) {
	p := m.findPrefetcherOr404(w, r)
	if p == nil {
		return
	}

	var entries []prefetch.StatEntry

	m.snapshot(func() { entries = p.Stats().Entries() })

	writeJSON(w, entries)
}

// prefetcherDump reports the filters and the stream table. The text format
// is the same as the one printed at the end of a run.
func (m *Monitor) prefetcherDump(w http.ResponseWriter, r *http.Request) {
	p := m.findPrefetcherOr404(w, r)
	if p == nil {
		return
	}

	if r.URL.Query().Get("format") == "text" {
		buf := new(bytes.Buffer)
		m.snapshot(func() { p.Print(buf) })

		w.Header().Set("Content-Type", "text/plain")
		_, err := buf.WriteTo(w)
		dieOnErr(err)

		return
	}

	var state prefetch.State

	m.snapshot(func() { state = p.State() })

	writeJSON(w, state)
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	bars := make([]ProgressBarSnapshot, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		bars = append(bars, b.Snapshot())
	}
	m.progressBarsLock.Unlock()

	writeJSON(w, bars)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	dieOnErr(err)

	cpuPercent, err := proc.CPUPercent()
	dieOnErr(err)

	memoryInfo, err := proc.MemoryInfo()
	dieOnErr(err)

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memoryInfo.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")

	err := json.NewEncoder(w).Encode(v)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
