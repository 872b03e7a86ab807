package runlog

import (
	"time"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"

	"ffsplit/process"
	"ffsplit/splits"
)

const (
	eventsTable = "events"
	marksTable  = "marks"
)

// EventRow is one forwarded split event.
type EventRow struct {
	Time    string
	Kind    string
	Monster uint32
	Item    uint32
}

// MarkRow is an attach to or detach from the target process.
type MarkRow struct {
	Time string
	Mark string
	PID  int64
}

// Log is the driver-facing recorder. A nil Log drops everything, which is
// how recording stays disabled without the driver branching on it.
type Log struct {
	rec *Recorder
	log *logger.Logger
}

// NewLog opens the event database and creates both tables.
func NewLog(path string) (*Log, error) {
	rec, err := Open(path)
	if err != nil {
		return nil, err
	}
	if err := rec.CreateTable(eventsTable, EventRow{}); err != nil {
		rec.Close()
		return nil, err
	}
	if err := rec.CreateTable(marksTable, MarkRow{}); err != nil {
		rec.Close()
		return nil, err
	}

	l := &Log{
		rec: rec,
		log: logger.NewLogger(coloransi.Color(coloransi.Black, coloransi.ColorLimeGreen, "runlog")),
	}
	l.log.Infoln("recording to", rec.Path())
	return l, nil
}

// Path returns the database filename, or empty when recording is disabled.
func (l *Log) Path() string {
	if l == nil {
		return ""
	}
	return l.rec.Path()
}

// Event records one forwarded event. Failures are logged and dropped; a run
// never stops over bookkeeping.
func (l *Log) Event(ev splits.Event) {
	if l == nil {
		return
	}
	row := EventRow{
		Time:    time.Now().Format(time.RFC3339Nano),
		Kind:    ev.Kind.String(),
		Monster: uint32(ev.Monster),
		Item:    uint32(ev.Item),
	}
	if err := l.rec.Insert(eventsTable, row); err != nil {
		l.log.Warn("event not recorded:", err)
	}
}

// Attach marks the driver attaching to a process.
func (l *Log) Attach(pid process.ProcessID) {
	l.mark("attach", pid)
}

// Detach marks losing the process.
func (l *Log) Detach(pid process.ProcessID) {
	l.mark("detach", pid)
}

func (l *Log) mark(kind string, pid process.ProcessID) {
	if l == nil {
		return
	}
	row := MarkRow{
		Time: time.Now().Format(time.RFC3339Nano),
		Mark: kind,
		PID:  int64(pid),
	}
	if err := l.rec.Insert(marksTable, row); err != nil {
		l.log.Warn("mark not recorded:", err)
	}
}

// Flush pushes buffered rows to disk.
func (l *Log) Flush() {
	if l == nil {
		return
	}
	if err := l.rec.Flush(); err != nil {
		l.log.Warn("flush failed:", err)
	}
}

// Close flushes and closes the database.
func (l *Log) Close() {
	if l == nil {
		return
	}
	if err := l.rec.Close(); err != nil {
		l.log.Warn("close failed:", err)
	}
}
