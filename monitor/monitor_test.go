package monitor_test

import (
	"encoding/json"
	"net/http"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ffsplit/game"
	"ffsplit/monitor"
	"ffsplit/splits"
)

func startMonitor(t *testing.T) *monitor.Monitor {
	t.Helper()

	m := monitor.New("127.0.0.1:0")
	require.NoError(t, m.Start(false))
	require.NotEmpty(t, m.Addr())
	return m
}

func getJSON(t *testing.T, m *monitor.Monitor, path string, out any) {
	t.Helper()

	rsp, err := http.Get("http://" + m.Addr() + path)
	require.NoError(t, err)
	defer rsp.Body.Close()

	require.Equal(t, http.StatusOK, rsp.StatusCode)
	require.NoError(t, json.NewDecoder(rsp.Body).Decode(out))
}

func TestStatusRoundTrip(t *testing.T) {
	m := startMonitor(t)

	m.Publish(monitor.Status{
		Process:   "FINAL FANTASY.exe",
		PID:       4242,
		Attached:  true,
		Ticks:     1200,
		InBattle:  true,
		Encounter: "Garland",
		LastEvent: "BattleWon(Garland)",
	})

	var got monitor.Status
	getJSON(t, m, "/api/status", &got)

	assert.Equal(t, "FINAL FANTASY.exe", got.Process)
	assert.Equal(t, 4242, got.PID)
	assert.True(t, got.Attached)
	assert.Equal(t, uint64(1200), got.Ticks)
	assert.True(t, got.InBattle)
	assert.Equal(t, "Garland", got.Encounter)
	assert.Equal(t, "BattleWon(Garland)", got.LastEvent)
}

func TestEventRingDropsOldest(t *testing.T) {
	m := startMonitor(t)

	for i := 0; i < 70; i++ {
		ev := splits.Event{Kind: splits.BattleWon, Monster: game.Monster(i)}
		m.RecordEvent(ev, i%2 == 0)
	}

	var events []monitor.EventRecord
	getJSON(t, m, "/api/events", &events)

	require.Len(t, events, 64)
	assert.Equal(t, "BattleWon(Monster(6))", events[0].Event)
	assert.Equal(t, "BattleWon(Monster(69))", events[63].Event)
	assert.False(t, events[63].Split)
}

func TestResourceFallsBackToSelf(t *testing.T) {
	m := startMonitor(t)

	var got struct {
		Which      string  `json:"which"`
		PID        int     `json:"pid"`
		CPUPercent float64 `json:"cpu_percent"`
		MemorySize uint64  `json:"memory_size"`
	}
	getJSON(t, m, "/api/resource", &got)

	assert.Equal(t, "self", got.Which)
	assert.Equal(t, os.Getpid(), got.PID)
	assert.NotZero(t, got.MemorySize)
}

func TestProfileClampsBadSeconds(t *testing.T) {
	if testing.Short() {
		t.Skip("captures a one second CPU profile")
	}

	m := startMonitor(t)

	var got struct {
		DurationSeconds float64 `json:"duration_seconds"`
		Samples         int     `json:"samples"`
	}
	getJSON(t, m, "/api/profile?seconds=junk", &got)

	assert.Greater(t, got.DurationSeconds, 0.0)
}

func TestIndexPage(t *testing.T) {
	m := startMonitor(t)

	rsp, err := http.Get("http://" + m.Addr() + "/")
	require.NoError(t, err)
	defer rsp.Body.Close()

	assert.Equal(t, http.StatusOK, rsp.StatusCode)
	assert.Contains(t, rsp.Header.Get("Content-Type"), "text/html")
}
