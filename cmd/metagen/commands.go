package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/stretching-coach-ai/metagen"
)

// command binds subcommand handlers to the loaded configuration.
type command struct {
	global   *GlobalFlags
	cfg      *metagen.Config
	closeLog func()
}

// init loads the config and installs the launcher's own logger. It runs
// as the root PersistentPreRunE.
func (c *command) init() error {
	cfg, err := metagen.LoadConfig(c.global.ConfigPath)
	if err != nil {
		return err
	}
	c.cfg = cfg

	logCfg := cfg.Log
	if c.global.LogLevel != "" {
		logCfg.Level = c.global.LogLevel
	}
	if c.global.NoColor {
		logCfg.NoColor = true
	}
	c.closeLog = metagen.SetupLogger(logCfg)
	return nil
}

// close flushes the launcher's log file writer. It runs as the root
// PersistentPostRun once a subcommand returns.
func (c *command) close() {
	if c.closeLog != nil {
		c.closeLog()
		c.closeLog = nil
	}
}

// baseSpec resolves the launch spec from config with defaults applied.
func (c *command) baseSpec() (metagen.Spec, error) {
	spec, err := c.cfg.Spec()
	if err != nil {
		return metagen.Spec{}, err
	}
	spec.ApplyDefaults()
	return spec, nil
}

// Launch resolves arguments, spawns the generator detached, and returns
// as soon as the spawn succeeded. Precedence: positional > flag > config
// > default.
func (c *command) Launch(f LaunchFlags, args []string) error {
	spec, err := c.baseSpec()
	if err != nil {
		return err
	}
	if f.Generator != "" {
		spec.Generator = f.Generator
	}
	if f.WorkDir != "" {
		spec.WorkDir = f.WorkDir
	}
	if f.Input != "" {
		spec.Input = f.Input
	}
	if f.Output != "" {
		spec.Output = f.Output
	}
	if f.Limit != 0 {
		spec.Limit = f.Limit
	}
	if len(args) > 0 && args[0] != "" {
		spec.Input = args[0]
	}
	if len(args) > 1 && args[1] != "" {
		spec.Output = args[1]
	}
	if len(args) > 2 && args[2] != "" {
		limit, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid limit %q: %w", args[2], err)
		}
		spec.Limit = limit
	}

	fmt.Printf("Input file:  %s\n", spec.Input)
	fmt.Printf("Output file: %s\n", spec.Output)
	if spec.Limit > 0 {
		fmt.Printf("Limit:       %d items\n", spec.Limit)
	} else {
		fmt.Printf("Limit:       process all items\n")
	}

	j, err := metagen.Launch(spec)
	if err != nil {
		return err
	}

	fmt.Printf("Log file:    %s\n", j.LogPath)
	fmt.Printf("Started %s with PID %d\n", spec.Name, j.PID)
	fmt.Println("To follow progress:")
	fmt.Printf("  tail -f %s\n", j.LogPath)
	fmt.Println("To stop the job:")
	fmt.Printf("  kill %d\n", j.PID)

	c.recordEvent(metagen.EventLaunch, *j)
	return nil
}

// Status reports liveness of a launched job.
func (c *command) Status(f StatusFlags) error {
	spec, err := c.baseSpec()
	if err != nil {
		return err
	}
	switch {
	case f.PID > 0:
		printJSON(metagen.StatusByPID(f.PID))
		return nil
	case f.JobID != "":
		j, err := metagen.JobByID(spec.LogDir, f.JobID)
		if err != nil {
			return fmt.Errorf("job %s not found: %w", f.JobID, err)
		}
		printJSON(j.Status())
		return nil
	default:
		j, err := metagen.LatestJob(spec.LogDir)
		if err == nil {
			printJSON(j.Status())
			return nil
		}
		// No records yet; fall back to the shared last-PID file.
		pid, perr := metagen.ReadLastPID(spec.PIDFile)
		if perr != nil {
			return fmt.Errorf("no launched job found: %w", perr)
		}
		printJSON(metagen.StatusByPID(pid))
		return nil
	}
}

// Stop terminates a launched job, defaulting to the last-PID file.
func (c *command) Stop(f StopFlags) error {
	spec, err := c.baseSpec()
	if err != nil {
		return err
	}
	pid := f.PID
	if pid <= 0 {
		pid, err = metagen.ReadLastPID(spec.PIDFile)
		if err != nil {
			return fmt.Errorf("no PID to stop: %w", err)
		}
	}
	wait := f.Wait
	if wait <= 0 {
		wait = 5 * time.Second
	}
	if err := metagen.Stop(pid, wait); err != nil {
		return err
	}
	fmt.Printf("Stopped PID %d\n", pid)

	j := metagen.Job{PID: pid}
	if latest, lerr := metagen.LatestJob(spec.LogDir); lerr == nil && latest.PID == pid {
		j = *latest
	}
	c.recordEvent(metagen.EventStop, j)
	return nil
}

// Logs prints the newest job log path and its trailing lines.
func (c *command) Logs(f LogsFlags) error {
	spec, err := c.baseSpec()
	if err != nil {
		return err
	}
	path, err := newestLog(spec.LogDir, spec.Name)
	if err != nil {
		return err
	}
	fmt.Printf("Log file: %s\n", path)
	if f.Follow {
		fmt.Println("To follow:")
		fmt.Printf("  tail -f %s\n", path)
		return nil
	}
	lines, err := lastLines(path, f.Lines)
	if err != nil {
		return err
	}
	for _, line := range lines {
		fmt.Println(line)
	}
	return nil
}

// History lists recent launch/stop events from the audit sink.
func (c *command) History(f HistoryFlags) error {
	if !c.cfg.History.Enabled {
		return fmt.Errorf("history is disabled in config")
	}
	events, err := metagen.ListHistory(context.Background(), c.cfg.History.DSN, f.N)
	if err != nil {
		return err
	}
	printJSON(events)
	return nil
}

// Serve runs the HTTP API until interrupted.
func (c *command) Serve(f ServeFlags) error {
	spec, err := c.baseSpec()
	if err != nil {
		return err
	}
	listen := f.Listen
	if listen == "" {
		listen = c.cfg.Serve.Listen
	}
	basePath := f.BasePath
	if basePath == "" {
		basePath = c.cfg.Serve.BasePath
	}
	if err := metagen.RegisterMetricsDefault(); err != nil {
		return err
	}

	var sink metagen.HistorySink
	if c.cfg.History.Enabled {
		sink, err = metagen.NewHistorySink(c.cfg.History.DSN)
		if err != nil {
			return fmt.Errorf("open history sink: %w", err)
		}
		defer func() { _ = sink.Close() }()
	}

	srv := metagen.NewHTTPServer(listen, basePath, spec, sink)
	slog.Info("serving metagen API", "addr", listen, "base_path", basePath)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	slog.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

// recordEvent appends to the audit sink; failures are logged, never fatal.
func (c *command) recordEvent(t metagen.HistoryEventType, j metagen.Job) {
	if !c.cfg.History.Enabled {
		return
	}
	sink, err := metagen.NewHistorySink(c.cfg.History.DSN)
	if err != nil {
		slog.Warn("history sink unavailable", "dsn", c.cfg.History.DSN, "error", err)
		return
	}
	defer func() { _ = sink.Close() }()
	e := metagen.HistoryEvent{Type: t, OccurredAt: time.Now(), Job: j}
	if err := sink.Send(context.Background(), e); err != nil {
		slog.Warn("history sink send failed", "event", string(t), "job", j.ID, "error", err)
	}
}
