// Package monitoring serves the state of a running simulation over HTTP.
package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/rs/xid"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/cohsim/mem/cache/coherence"
	"github.com/sarchlab/cohsim/mem/trace"
	"github.com/sarchlab/cohsim/timing"
)

// Monitor can turn a simulation into a server that reports the content of the
// cache levels, the access statistics, and the progress of the run.
type Monitor struct {
	lock       sync.Mutex
	hierarchy  *coherence.Hierarchy
	stats      *trace.StatsTracer
	portNumber int

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar

	server   *http.Server
	listener net.Listener
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

// RegisterHierarchy registers the hierarchy to report. The hierarchy can be
// registered after the server starts.
func (m *Monitor) RegisterHierarchy(h *coherence.Hierarchy) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.hierarchy = h
}

// RegisterStatsTracer registers the tracer that counts the accesses.
func (m *Monitor) RegisterStatsTracer(t *trace.StatsTracer) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.stats = t
}

func (m *Monitor) registeredHierarchy() *coherence.Hierarchy {
	m.lock.Lock()
	defer m.lock.Unlock()

	return m.hierarchy
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        xid.New().String(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar to be shown on the webpage.
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

// Handler returns the HTTP routes of the monitor.
func (m *Monitor) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/", m.index)
	r.HandleFunc("/api/config", m.reportConfig)
	r.HandleFunc("/api/levels", m.listLevels)
	r.HandleFunc("/api/level/{name}", m.listLevelDetails)
	r.HandleFunc("/api/field/{json}", m.listFieldValue)
	r.HandleFunc("/api/stats", m.reportStats)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)

	return r
}

// StartServer starts the monitor as a web server and returns its URL.
func (m *Monitor) StartServer() string {
	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	m.listener = listener
	m.server = &http.Server{
		Handler:           m.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)

	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", url)

	go func() {
		err := m.server.Serve(listener)
		if !errors.Is(err, http.ErrServerClosed) {
			dieOnErr(err)
		}
	}()

	return url
}

// OpenBrowser opens the monitor page in the default browser.
func (m *Monitor) OpenBrowser(url string) {
	err := browser.OpenURL(url)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot open browser: %v\n", err)
	}
}

// StopServer shuts down the web server, if it is running.
func (m *Monitor) StopServer(ctx context.Context) error {
	if m.server == nil {
		return nil
	}

	return m.server.Shutdown(ctx)
}

func (m *Monitor) index(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	fmt.Fprint(w, "<html><body><h1>cohsim</h1><ul>")

	for _, api := range []string{
		"config", "levels", "stats", "progress", "resource", "profile",
	} {
		fmt.Fprintf(w, "<li><a href=\"/api/%s\">%s</a></li>", api, api)
	}

	fmt.Fprint(w, "</ul></body></html>")
}

func (m *Monitor) hierarchyOr404(w http.ResponseWriter) *coherence.Hierarchy {
	h := m.registeredHierarchy()
	if h == nil {
		w.WriteHeader(http.StatusNotFound)
		_, err := w.Write([]byte("Hierarchy not built yet"))
		dieOnErr(err)
	}

	return h
}

func (m *Monitor) reportConfig(w http.ResponseWriter, _ *http.Request) {
	h := m.hierarchyOr404(w)
	if h == nil {
		return
	}

	writeJSON(w, h.Config())
}

func (m *Monitor) listLevels(w http.ResponseWriter, _ *http.Request) {
	h := m.hierarchyOr404(w)
	if h == nil {
		return
	}

	writeJSON(w, h.LevelNames())
}

func (m *Monitor) findLevelOr404(
	w http.ResponseWriter,
	name string,
) (coherence.LevelSnapshot, bool) {
	h := m.hierarchyOr404(w)
	if h == nil {
		return coherence.LevelSnapshot{}, false
	}

	snapshot, found := h.Snapshot(name)
	if !found {
		w.WriteHeader(http.StatusNotFound)
		_, err := w.Write([]byte("Level not found"))
		dieOnErr(err)
	}

	return snapshot, found
}

func (m *Monitor) listLevelDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	snapshot, found := m.findLevelOr404(w, name)
	if !found {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(&snapshot)
	serializer.SetMaxDepth(3)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

type fieldReq struct {
	LevelName string `json:"level_name,omitempty"`
	FieldName string `json:"field_name,omitempty"`
}

func (m *Monitor) listFieldValue(w http.ResponseWriter, r *http.Request) {
	jsonString := mux.Vars(r)["json"]
	req := fieldReq{}

	err := json.Unmarshal([]byte(jsonString), &req)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	snapshot, found := m.findLevelOr404(w, req.LevelName)
	if !found {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(&snapshot)
	serializer.SetMaxDepth(1)

	err = serializer.SetEntryPoint(strings.Split(req.FieldName, "."))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	err = serializer.Serialize(w)
	dieOnErr(err)
}

type statsRsp struct {
	trace.Stats

	L2HitRate float64 `json:"l2_hit_rate"`
	L3HitRate float64 `json:"l3_hit_rate"`
}

func (m *Monitor) reportStats(w http.ResponseWriter, _ *http.Request) {
	m.lock.Lock()
	tracer := m.stats
	m.lock.Unlock()

	if tracer == nil {
		w.WriteHeader(http.StatusNotFound)
		_, err := w.Write([]byte("Statistics not collected"))
		dieOnErr(err)

		return
	}

	stats := tracer.Stats()

	writeJSON(w, statsRsp{
		Stats:     stats,
		L2HitRate: stats.HitRate(timing.OpL2Hit, timing.OpL2Miss),
		L3HitRate: stats.HitRate(timing.OpL3Hit, timing.OpL3Miss),
	})
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	bars := make([]progressRsp, 0, len(m.progressBars))

	for _, b := range m.progressBars {
		bars = append(bars, b.snapshot())
	}
	m.progressBarsLock.Unlock()

	writeJSON(w, bars)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
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
	data, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")

	_, err = w.Write(data)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
