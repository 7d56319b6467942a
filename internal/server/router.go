package server

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stretching-coach-ai/metagen/internal/history"
	"github.com/stretching-coach-ai/metagen/internal/job"
	"github.com/stretching-coach-ai/metagen/internal/metrics"
)

// Router provides embeddable HTTP handlers for launching and inspecting
// metadata-generation jobs.
// Endpoints:
//
//	POST {basePath}/launch   body: {"input":..,"output":..,"limit":..}
//	POST {basePath}/stop     query: pid=...&wait=5s (both optional)
//	GET  {basePath}/status   status of the most recently launched job
//	GET  {basePath}/jobs     query: n=20, recent history events
//	GET  /metrics            Prometheus metrics
//
// basePath may be empty or start with '/'; no trailing slash.
type Router struct {
	base     job.Spec
	sink     history.Sink
	basePath string
}

// NewRouter constructs a Router. base supplies launch defaults (generator
// command, data paths, log dir); sink may be nil when history is disabled.
func NewRouter(base job.Spec, sink history.Sink, basePath string) *Router {
	return &Router{base: base, sink: sink, basePath: sanitizeBase(basePath)}
}

// Handler returns an http.Handler powered by gin that can be mounted in
// any server/mux.
func (r *Router) Handler() http.Handler {
	g := gin.New()
	g.Use(gin.Recovery())
	group := g.Group(r.basePath)
	group.POST("/launch", r.handleLaunch)
	group.POST("/stop", r.handleStop)
	group.GET("/status", r.handleStatus)
	group.GET("/jobs", r.handleJobs)
	g.GET("/metrics", gin.WrapH(metrics.Handler()))
	return g
}

// NewServer starts a standalone HTTP server on addr using this router.
func NewServer(addr string, r *Router) *http.Server {
	server := &http.Server{
		Addr:              addr,
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() { _ = server.ListenAndServe() }()
	return server
}

// --- Handlers ---

type errorResp struct {
	Error string `json:"error"`
}

type launchReq struct {
	Input  string `json:"input"`
	Output string `json:"output"`
	Limit  int    `json:"limit"`
}

func (r *Router) handleLaunch(c *gin.Context) {
	var req launchReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResp{Error: "invalid JSON: " + err.Error()})
		return
	}
	if req.Limit < 0 {
		c.JSON(http.StatusBadRequest, errorResp{Error: "limit cannot be negative"})
		return
	}
	spec := r.base
	if req.Input != "" {
		spec.Input = req.Input
	}
	if req.Output != "" {
		spec.Output = req.Output
	}
	spec.Limit = req.Limit

	j, err := job.Launch(spec)
	if err != nil {
		metrics.IncLaunchFailure(r.jobName())
		c.JSON(http.StatusInternalServerError, errorResp{Error: err.Error()})
		return
	}
	metrics.IncLaunch(r.jobName())
	r.record(c, history.EventLaunch, *j)
	c.JSON(http.StatusOK, j)
}

func (r *Router) handleStatus(c *gin.Context) {
	latest, err := job.LatestRecord(r.logDir())
	if err != nil {
		c.JSON(http.StatusNotFound, errorResp{Error: "no launched job found"})
		return
	}
	st := latest.Status()
	metrics.SetRunning(r.jobName(), st.Running)
	c.JSON(http.StatusOK, st)
}

func (r *Router) handleStop(c *gin.Context) {
	wait := 5 * time.Second
	if w := c.Query("wait"); w != "" {
		d, err := time.ParseDuration(w)
		if err != nil || d <= 0 {
			c.JSON(http.StatusBadRequest, errorResp{Error: "invalid wait duration"})
			return
		}
		wait = d
	}
	latest, err := job.LatestRecord(r.logDir())
	if err != nil {
		c.JSON(http.StatusNotFound, errorResp{Error: "no launched job found"})
		return
	}
	if err := job.Stop(latest.PID, wait); err != nil {
		c.JSON(http.StatusInternalServerError, errorResp{Error: err.Error()})
		return
	}
	metrics.IncStop(r.jobName())
	r.record(c, history.EventStop, *latest)
	c.JSON(http.StatusOK, gin.H{"stopped": latest.PID})
}

func (r *Router) handleJobs(c *gin.Context) {
	lister, ok := r.sink.(history.Lister)
	if !ok || r.sink == nil {
		c.JSON(http.StatusNotFound, errorResp{Error: "history disabled"})
		return
	}
	n := 20
	if q := c.Query("n"); q != "" {
		if v, err := parsePositive(q); err == nil {
			n = v
		}
	}
	events, err := lister.ListRecent(c.Request.Context(), n)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResp{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, events)
}

func (r *Router) record(c *gin.Context, t history.EventType, j job.Job) {
	if r.sink == nil {
		return
	}
	e := history.Event{Type: t, OccurredAt: time.Now(), Job: j}
	if err := r.sink.Send(c.Request.Context(), e); err != nil {
		slog.Warn("history sink send failed", "event", string(t), "job", j.ID, "error", err)
	}
}

func (r *Router) logDir() string {
	if r.base.LogDir != "" {
		return r.base.LogDir
	}
	return job.DefaultLogDir
}

func (r *Router) jobName() string {
	if r.base.Name != "" {
		return r.base.Name
	}
	return job.DefaultName
}

func sanitizeBase(basePath string) string {
	bp := strings.TrimSpace(basePath)
	if bp == "" {
		return ""
	}
	if !strings.HasPrefix(bp, "/") {
		bp = "/" + bp
	}
	return strings.TrimRight(bp, "/")
}
