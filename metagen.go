// Package metagen launches and tracks the stretching-data metadata
// generator as a detached background job. It is the library behind the
// metagen CLI and is embeddable: launch a run, probe its status, stop it,
// and audit past runs.
package metagen

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	cfg "github.com/stretching-coach-ai/metagen/internal/config"
	"github.com/stretching-coach-ai/metagen/internal/detect"
	"github.com/stretching-coach-ai/metagen/internal/history"
	hsqlite "github.com/stretching-coach-ai/metagen/internal/history/sqlite"
	"github.com/stretching-coach-ai/metagen/internal/job"
	"github.com/stretching-coach-ai/metagen/internal/logger"
	"github.com/stretching-coach-ai/metagen/internal/metrics"
	"github.com/stretching-coach-ai/metagen/internal/pidfile"
	iapi "github.com/stretching-coach-ai/metagen/internal/server"
)

// Re-export core types for external consumers.
// These are aliases so conversions are zero-cost.

type Spec = job.Spec

type Job = job.Job

type Status = job.Status

type Config = cfg.Config

type HistoryEvent = history.Event

type HistoryEventType = history.EventType

type HistorySink = history.Sink

const (
	EventLaunch = history.EventLaunch
	EventStop   = history.EventStop
)

type LogConfig = logger.Config

// Launch starts the generator described by spec as a detached background
// process and returns immediately after the spawn.
func Launch(spec Spec) (*Job, error) { return job.Launch(spec) }

// Stop terminates a previously launched job, escalating to SIGKILL after wait.
func Stop(pid int, wait time.Duration) error { return job.Stop(pid, wait) }

// StatusByPID probes liveness of an arbitrary pid with no job record.
func StatusByPID(pid int) Status {
	j := Job{PID: pid}
	if ts := detect.StartTimeUnix(pid); ts > 0 {
		j.StartedAt = time.Unix(ts, 0)
	}
	return j.Status()
}

// LatestJob returns the most recently launched job's record from logDir.
func LatestJob(logDir string) (*Job, error) { return job.LatestRecord(logDir) }

// JobByID loads a specific job record from logDir.
func JobByID(logDir, id string) (*Job, error) { return job.ReadRecord(logDir, id) }

// ReadLastPID reads the shared last-PID file.
func ReadLastPID(path string) (int, error) { return pidfile.ReadLast(path) }

// LoadConfig reads the TOML configuration; an empty path yields defaults.
func LoadConfig(path string) (*Config, error) { return cfg.Load(path) }

// NewHistorySink opens the SQLite audit sink for the given DSN.
func NewHistorySink(dsn string) (HistorySink, error) { return hsqlite.New(dsn) }

// ListHistory returns the n most recent events from the SQLite sink at dsn.
func ListHistory(ctx context.Context, dsn string, n int) ([]HistoryEvent, error) {
	sink, err := hsqlite.New(dsn)
	if err != nil {
		return nil, err
	}
	defer func() { _ = sink.Close() }()
	return sink.ListRecent(ctx, n)
}

// NewHTTPServer starts an HTTP server exposing the launch/status API and
// Prometheus metrics. base supplies launch defaults; sink may be nil.
func NewHTTPServer(addr, basePath string, base Spec, sink HistorySink) *http.Server {
	return iapi.NewServer(addr, iapi.NewRouter(base, sink, basePath))
}

// Metrics helpers (public facade)

func RegisterMetrics(r prometheus.Registerer) error { return metrics.Register(r) }
func RegisterMetricsDefault() error                 { return metrics.RegisterDefault() }

// SetupLogger installs the default slog logger per c and returns a closer
// for the rotating file writer.
func SetupLogger(c LogConfig) func() { return logger.Setup(c) }
