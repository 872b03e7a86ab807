package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
	"github.com/joho/godotenv"
	gops "github.com/shirou/gopsutil/process"
	"github.com/spf13/cobra"

	"ffsplit/game"
	"ffsplit/il2cpp"
	"ffsplit/livesplit"
	"ffsplit/monitor"
	"ffsplit/process"
	"ffsplit/procfind"
	"ffsplit/runlog"
	"ffsplit/settings"
	"ffsplit/splits"
	"ffsplit/watcher"
)

var runConfigPath string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Attach to the game and run the split loop",
	RunE:  runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&runConfigPath, "config", "ffsplit.yaml", "settings file")
}

// driver owns everything outside the tracker: poll timing, event routing,
// and the attach/detach cycle.
type driver struct {
	cfg    settings.Settings
	table  il2cpp.Table
	log    *logger.Logger
	client *livesplit.Client
	events *runlog.Log
	mon    *monitor.Monitor
	last   string
}

func runRun(cmd *cobra.Command, args []string) error {
	// .env overrides are optional; only a malformed file is an error.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	cfg, err := settings.Load(runConfigPath)
	if err != nil {
		return err
	}
	applyEnv(&cfg)

	table, err := il2cpp.LoadTable(cfg.Offsets)
	if err != nil {
		return err
	}

	d := &driver{
		cfg:   cfg,
		table: table,
		log:   logger.NewLogger(coloransi.Color(coloransi.Black, coloransi.BrightCyan, "run")),
	}

	if cfg.LiveSplit != "" {
		d.client = livesplit.Dial(cfg.LiveSplit)
		defer d.client.Close()
	}
	if cfg.Log.EventsDB != "" {
		d.events, err = runlog.NewLog(cfg.Log.EventsDB)
		if err != nil {
			return err
		}
		defer d.events.Close()
	}
	if cfg.Monitor.Listen != "" {
		d.mon = monitor.New(cfg.Monitor.Listen)
		if err := d.mon.Start(cfg.Monitor.OpenBrowser); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for {
		d.mon.Publish(monitor.Status{Process: cfg.Process})
		d.log.Infoln("waiting for", cfg.Process)

		pid, err := procfind.WaitFor(ctx, cfg.Process, time.Second)
		if err != nil {
			if ctx.Err() != nil {
				d.log.Infoln("shutting down")
				return nil
			}
			return err
		}

		d.session(ctx, process.ProcessID(pid))
		if ctx.Err() != nil {
			d.log.Infoln("shutting down")
			return nil
		}
	}
}

func applyEnv(cfg *settings.Settings) {
	if v := os.Getenv("FFSPLIT_PROCESS"); v != "" {
		cfg.Process = v
	}
	if v := os.Getenv("FFSPLIT_OFFSETS"); v != "" {
		cfg.Offsets = v
	}
	if v := os.Getenv("FFSPLIT_LIVESPLIT"); v != "" {
		cfg.LiveSplit = v
	}
	if v := os.Getenv("FFSPLIT_MONITOR"); v != "" {
		cfg.Monitor.Listen = v
	}
}

// session runs one attachment from open to process exit or shutdown.
func (d *driver) session(ctx context.Context, pid process.ProcessID) {
	proc := newPlatformProcess()
	if err := proc.Open(pid); err != nil {
		d.log.Warn("open pid", pid, "failed:", err)
		// Pause so a process we cannot open does not spin the attach loop.
		select {
		case <-ctx.Done():
		case <-time.After(2 * time.Second):
		}
		return
	}
	defer proc.Close()

	d.log.Infoln("attached to", d.cfg.Process, "pid", pid)
	d.events.Attach(pid)
	defer d.events.Detach(pid)

	resolver, ok := d.waitForModule(ctx, proc)
	if !ok {
		return
	}

	data := game.New(resolver)
	tracker := splits.NewTracker(data)
	var title watcher.Watcher[bool]

	ticker := time.NewTicker(d.cfg.TickInterval())
	defer ticker.Stop()

	var ticks uint64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		ticks++
		if ticks%uint64(d.cfg.TickHz) == 0 {
			if !pidAlive(pid) {
				d.log.Infoln("process exited, detaching")
				return
			}
			// The managed heap grows over a run; keep the map current so
			// reads into fresh segments pass the validity check.
			if err := proc.UpdateMemoryMap(); err != nil {
				d.log.Warn("memory map:", err)
				return
			}
		}

		// A new-game fade-out restarts the run: fresh tracker state, then
		// the start event. Read errors leave the edge undetected this poll.
		if fade, err := data.TitleFadeOut(proc); err == nil {
			title.Update(fade)
			if pair, ok := title.Pair(); ok && pair.ChangedTo(true) {
				tracker = splits.NewTracker(data)
				d.handle(splits.Event{Kind: splits.RunStart})
			}
		}

		if ev, ok := tracker.Poll(proc); ok {
			d.handle(ev)
		}

		d.publish(pid, ticks, tracker)
	}
}

// waitForModule retries until the scripting module is mapped; the game maps
// it well after launch, while videos and shader warmup run.
func (d *driver) waitForModule(ctx context.Context, proc process.Process) (*il2cpp.TableResolver, bool) {
	for {
		if err := proc.UpdateMemoryMap(); err != nil {
			d.log.Warn("memory map:", err)
			return nil, false
		}

		resolver, err := il2cpp.NewTableResolver(d.table, proc)
		if err == nil {
			d.log.Infoln(d.table.Module, "at", resolver.Base())
			return resolver, true
		}
		d.log.Debugln("waiting for", d.table.Module+":", err)

		select {
		case <-ctx.Done():
			return nil, false
		case <-time.After(time.Second):
		}
	}
}

func (d *driver) handle(ev splits.Event) {
	split := d.cfg.Filter(ev)
	if split {
		d.log.Infoln("split:", ev)
	} else {
		d.log.Infoln("event (no split):", ev)
	}

	d.events.Event(ev)
	d.mon.RecordEvent(ev, split)
	d.last = ev.String()

	if !split {
		return
	}
	switch ev.Kind {
	case splits.RunStart:
		d.client.Reset()
		d.client.StartTimer()
	default:
		d.client.Split()
	}
}

func (d *driver) publish(pid process.ProcessID, ticks uint64, tracker *splits.Tracker) {
	status := monitor.Status{
		Process:   d.cfg.Process,
		PID:       int(pid),
		Attached:  true,
		Ticks:     ticks,
		InBattle:  tracker.InBattle(),
		LastEvent: d.last,
	}
	if m, ok := tracker.Encounter(); ok {
		status.Encounter = m.String()
	}
	d.mon.Publish(status)
}

func pidAlive(pid process.ProcessID) bool {
	alive, err := gops.PidExists(int32(pid))
	return err == nil && alive
}
