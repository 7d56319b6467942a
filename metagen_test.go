package metagen

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func requireUnix(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("unix-only test")
	}
}

func testSpec(t *testing.T, body string) Spec {
	t.Helper()
	dir := t.TempDir()
	script := filepath.Join(dir, "gen.sh")
	if err := os.WriteFile(script, []byte("#!/bin/sh\n"+body+"\n"), 0o750); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return Spec{
		Generator: "/bin/sh " + script,
		Input:     filepath.Join(dir, "in.json"),
		Output:    filepath.Join(dir, "out", "enhanced.json"),
		LogDir:    filepath.Join(dir, "logs"),
	}
}

func TestLaunchStatusStopRoundtrip(t *testing.T) {
	requireUnix(t)
	spec := testSpec(t, "sleep 3")

	j, err := Launch(spec)
	if err != nil {
		t.Fatalf("Launch: %v", err)
	}
	if !j.Status().Running {
		t.Fatalf("launched job not running")
	}

	pid, err := ReadLastPID(filepath.Join(spec.LogDir, "last_pid.txt"))
	if err != nil {
		t.Fatalf("ReadLastPID: %v", err)
	}
	if pid != j.PID {
		t.Fatalf("last pid %d != job pid %d", pid, j.PID)
	}

	latest, err := LatestJob(spec.LogDir)
	if err != nil {
		t.Fatalf("LatestJob: %v", err)
	}
	if latest.ID != j.ID {
		t.Fatalf("latest job %s != launched %s", latest.ID, j.ID)
	}

	if err := Stop(j.PID, 2*time.Second); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && j.Status().Running {
		time.Sleep(50 * time.Millisecond)
	}
	if j.Status().Running {
		t.Fatalf("job still running after Stop")
	}
}

func TestStatusByPIDUnknown(t *testing.T) {
	requireUnix(t)
	st := StatusByPID(1<<22 + 7919)
	if st.Running {
		t.Fatalf("nonexistent pid reported running")
	}
}

func TestHistoryFacade(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "history.db")
	sink, err := NewHistorySink(dsn)
	if err != nil {
		t.Fatalf("NewHistorySink: %v", err)
	}
	e := HistoryEvent{
		Type:       EventLaunch,
		OccurredAt: time.Now(),
		Job:        Job{ID: "facade-test", PID: 42, Input: "a", Output: "b", LogPath: "c"},
	}
	if err := sink.Send(context.Background(), e); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	events, err := ListHistory(context.Background(), dsn, 5)
	if err != nil {
		t.Fatalf("ListHistory: %v", err)
	}
	if len(events) != 1 || events[0].Job.ID != "facade-test" {
		t.Fatalf("history roundtrip failed: %+v", events)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	c, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	spec, err := c.Spec()
	if err != nil {
		t.Fatalf("Spec: %v", err)
	}
	spec.ApplyDefaults()
	if spec.Input == "" || spec.Output == "" || spec.Generator == "" {
		t.Fatalf("defaults incomplete: %+v", spec)
	}
}
