// Package monitor serves a small status endpoint for a running driver. The
// driver publishes snapshots and events into the Monitor; handlers only read
// those copies, never the tracker or the remote process.
package monitor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/shirou/gopsutil/process"

	"ffsplit/splits"
)

// recentEvents is how many events the ring keeps for /api/events.
const recentEvents = 64

// Status is the driver's published state.
type Status struct {
	Process   string `json:"process"`
	PID       int    `json:"pid"`
	Attached  bool   `json:"attached"`
	Ticks     uint64 `json:"ticks"`
	InBattle  bool   `json:"in_battle"`
	Encounter string `json:"encounter"`
	LastEvent string `json:"last_event"`
}

// EventRecord is one tracked event as shown by /api/events. Split says
// whether the settings filter forwarded it.
type EventRecord struct {
	Time  time.Time `json:"time"`
	Event string    `json:"event"`
	Split bool      `json:"split"`
}

type Monitor struct {
	listen string
	addr   string
	log    *logger.Logger

	mu     sync.Mutex
	status Status
	events []EventRecord
}

func New(listen string) *Monitor {
	return &Monitor{
		listen: listen,
		log:    logger.NewLogger(coloransi.Color(coloransi.Black, coloransi.ColorTeal, "monitor")),
	}
}

// Publish replaces the status snapshot handlers serve. A nil Monitor drops
// everything, which is how the endpoint stays disabled without the driver
// branching on it.
func (m *Monitor) Publish(s Status) {
	if m == nil {
		return
	}

	m.mu.Lock()
	m.status = s
	m.mu.Unlock()
}

// RecordEvent appends to the event ring, dropping the oldest past capacity.
func (m *Monitor) RecordEvent(ev splits.Event, split bool) {
	if m == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.events = append(m.events, EventRecord{
		Time:  time.Now(),
		Event: ev.String(),
		Split: split,
	})
	if len(m.events) > recentEvents {
		m.events = m.events[len(m.events)-recentEvents:]
	}
}

// Start binds the listen address and serves in the background. With
// openBrowser the status page is opened in the default browser.
func (m *Monitor) Start(openBrowser bool) error {
	listener, err := net.Listen("tcp", m.listen)
	if err != nil {
		return fmt.Errorf("monitor: listen %s: %w", m.listen, err)
	}
	m.addr = listener.Addr().String()

	url := "http://" + m.addr
	m.log.Infoln("serving on", url)

	router := m.routes()
	go func() {
		if err := http.Serve(listener, router); err != nil {
			m.log.Warn("server stopped:", err)
		}
	}()

	if openBrowser {
		if err := browser.OpenURL(url); err != nil {
			m.log.Warn("browser:", err)
		}
	}
	return nil
}

// Addr returns the bound address once Start has succeeded.
func (m *Monitor) Addr() string {
	return m.addr
}

func (m *Monitor) routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/status", m.handleStatus)
	r.HandleFunc("/api/events", m.handleEvents)
	r.HandleFunc("/api/resource", m.handleResource)
	r.HandleFunc("/api/profile", m.handleProfile)
	r.HandleFunc("/", m.handleIndex)
	return r
}

func (m *Monitor) handleStatus(w http.ResponseWriter, _ *http.Request) {
	m.mu.Lock()
	s := m.status
	m.mu.Unlock()

	writeJSON(w, s)
}

func (m *Monitor) handleEvents(w http.ResponseWriter, _ *http.Request) {
	m.mu.Lock()
	events := make([]EventRecord, len(m.events))
	copy(events, m.events)
	m.mu.Unlock()

	writeJSON(w, events)
}

type resourceRsp struct {
	Which      string  `json:"which"`
	PID        int     `json:"pid"`
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

// handleResource reports CPU and RSS of the attached game process, or of the
// driver itself when nothing is attached.
func (m *Monitor) handleResource(w http.ResponseWriter, _ *http.Request) {
	m.mu.Lock()
	pid := m.status.PID
	attached := m.status.Attached
	m.mu.Unlock()

	which := "target"
	if !attached || pid == 0 {
		which = "self"
		pid = os.Getpid()
	}

	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	cpuPercent, err := proc.CPUPercent()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	mem, err := proc.MemoryInfo()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, resourceRsp{
		Which:      which,
		PID:        pid,
		CPUPercent: cpuPercent,
		MemorySize: mem.RSS,
	})
}

type profileRsp struct {
	DurationSeconds float64        `json:"duration_seconds"`
	Samples         int            `json:"samples"`
	Top             []profileEntry `json:"top"`
}

type profileEntry struct {
	Function string `json:"function"`
	Flat     int64  `json:"flat"`
}

// handleProfile captures a CPU profile for ?seconds=n and returns the
// heaviest leaf functions.
func (m *Monitor) handleProfile(w http.ResponseWriter, r *http.Request) {
	seconds := parseSeconds(r.URL.Query().Get("seconds"))

	var buf bytes.Buffer
	if err := pprof.StartCPUProfile(&buf); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	time.Sleep(time.Duration(seconds) * time.Second)
	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, summarize(prof))
}

// parseSeconds clamps the requested profile duration to something safe.
func parseSeconds(raw string) int {
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds < 1 {
		return 1
	}
	if seconds > 30 {
		return 30
	}
	return seconds
}

func summarize(prof *profile.Profile) profileRsp {
	rsp := profileRsp{
		DurationSeconds: float64(prof.DurationNanos) / float64(time.Second),
		Samples:         len(prof.Sample),
	}

	valueIndex := len(prof.SampleType) - 1
	flat := make(map[string]int64)
	for _, s := range prof.Sample {
		if len(s.Location) == 0 || valueIndex >= len(s.Value) {
			continue
		}
		name := "unknown"
		if lines := s.Location[0].Line; len(lines) > 0 && lines[0].Function != nil {
			name = lines[0].Function.Name
		}
		flat[name] += s.Value[valueIndex]
	}

	for name, v := range flat {
		rsp.Top = append(rsp.Top, profileEntry{Function: name, Flat: v})
	}
	sort.Slice(rsp.Top, func(i, j int) bool {
		return rsp.Top[i].Flat > rsp.Top[j].Flat
	})
	if len(rsp.Top) > 10 {
		rsp.Top = rsp.Top[:10]
	}
	return rsp
}

func (m *Monitor) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, indexPage)
}

func writeJSON(w http.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

const indexPage = `<!doctype html>
<html>
<head><title>ffsplit</title></head>
<body>
<h1>ffsplit</h1>
<h2>status</h2>
<pre id="status"></pre>
<h2>recent events</h2>
<pre id="events"></pre>
<script>
async function refresh() {
	const status = await (await fetch("/api/status")).json();
	document.getElementById("status").textContent = JSON.stringify(status, null, 2);
	const events = await (await fetch("/api/events")).json();
	document.getElementById("events").textContent = JSON.stringify(events, null, 2);
}
refresh();
setInterval(refresh, 1000);
</script>
</body>
</html>
`
