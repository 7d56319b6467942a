package job

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/stretching-coach-ai/metagen/internal/detect"
	"github.com/stretching-coach-ai/metagen/internal/pidfile"
)

// RecordDirName is the directory under the log dir holding per-job records.
const RecordDirName = "jobs"

// Job is the durable record of one launched generator run. One JSON file
// per job is written under <log_dir>/jobs/, keyed by the generated id, so
// concurrent launches never clobber each other's records. The shared
// last-PID file remains last-write-wins.
type Job struct {
	ID        string    `json:"id"`
	PID       int       `json:"pid"`
	Generator string    `json:"generator"`
	Input     string    `json:"input"`
	Output    string    `json:"output"`
	Limit     int       `json:"limit,omitempty"`
	WorkDir   string    `json:"work_dir,omitempty"`
	LogPath   string    `json:"log_path"`
	StartedAt time.Time `json:"started_at"`
}

// Status reports the observed state of a previously launched job.
type Status struct {
	Job        Job       `json:"job"`
	Running    bool      `json:"running"`
	DetectedBy string    `json:"detected_by,omitempty"`
	CheckedAt  time.Time `json:"checked_at"`
}

// Launch starts the generator as a detached background process. It ensures
// the output and log directories, redirects the child's stdout and stderr
// to the timestamped log file, records the PID, and returns without
// waiting for the child. The child's eventual exit status is not observed
// here; the log file is the only window into the run.
func Launch(spec Spec) (*Job, error) {
	spec.ApplyDefaults()
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	outDir := filepath.Dir(spec.Output)
	if err := os.MkdirAll(outDir, 0o750); err != nil {
		return nil, fmt.Errorf("create output dir %s: %w", outDir, err)
	}
	if err := os.MkdirAll(filepath.Join(spec.LogDir, RecordDirName), 0o750); err != nil {
		return nil, fmt.Errorf("create log dir %s: %w", spec.LogDir, err)
	}

	started := time.Now()
	logPath := spec.LogPath(started)
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", logPath, err)
	}

	cmd := spec.BuildCommand()
	if spec.WorkDir != "" {
		cmd.Dir = spec.WorkDir
	}
	if len(spec.Env) > 0 {
		cmd.Env = append(os.Environ(), spec.Env...)
	}
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	configureSysProcAttr(cmd)

	if err := cmd.Start(); err != nil {
		_ = logFile.Close()
		return nil, fmt.Errorf("start generator: %w", err)
	}
	// The child holds its own descriptor after Start; drop the parent copy.
	_ = logFile.Close()
	pid := cmd.Process.Pid
	// Reap the child when it exits so a long-lived launcher (serve mode)
	// does not accumulate zombies. Nothing consumes the result; the run's
	// outcome is only visible in its log file.
	go func() { _ = cmd.Wait() }()

	j := &Job{
		ID:        uuid.NewString(),
		PID:       pid,
		Generator: spec.Generator,
		Input:     spec.Input,
		Output:    spec.Output,
		Limit:     spec.Limit,
		WorkDir:   spec.WorkDir,
		LogPath:   logPath,
		StartedAt: started,
	}

	// The spawn already succeeded; tracking-file failures must not turn a
	// running job into a launch error.
	if err := pidfile.WriteLast(spec.PIDFile, pid); err != nil {
		slog.Warn("write pid file failed", "path", spec.PIDFile, "pid", pid, "error", err)
	}
	if err := j.writeRecord(spec.LogDir); err != nil {
		slog.Warn("write job record failed", "job", j.ID, "error", err)
	}
	return j, nil
}

// Status probes liveness of the job's PID.
func (j *Job) Status() Status {
	alive, how := detect.Alive(j.PID)
	return Status{Job: *j, Running: alive, DetectedBy: how, CheckedAt: time.Now()}
}

func (j *Job) writeRecord(logDir string) error {
	b, err := json.MarshalIndent(j, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(logDir, RecordDirName, j.ID+".json")
	if err := os.WriteFile(path, append(b, '\n'), 0o600); err != nil {
		return fmt.Errorf("write job record %s: %w", path, err)
	}
	return nil
}

// ReadRecord loads a job record by id from the log dir.
func ReadRecord(logDir, id string) (*Job, error) {
	path := filepath.Join(logDir, RecordDirName, id+".json")
	b, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	var j Job
	if err := json.Unmarshal(b, &j); err != nil {
		return nil, fmt.Errorf("parse job record %s: %w", path, err)
	}
	return &j, nil
}

// LatestRecord returns the most recently started job record, or an error
// when no records exist.
func LatestRecord(logDir string) (*Job, error) {
	dir := filepath.Join(logDir, RecordDirName)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	jobs := make([]*Job, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		j, err := ReadRecord(logDir, e.Name()[:len(e.Name())-len(".json")])
		if err != nil {
			continue
		}
		jobs = append(jobs, j)
	}
	if len(jobs) == 0 {
		return nil, fmt.Errorf("no job records in %s", dir)
	}
	sort.Slice(jobs, func(a, b int) bool { return jobs[a].StartedAt.After(jobs[b].StartedAt) })
	return jobs[0], nil
}
