package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretching-coach-ai/metagen/internal/history"
	"github.com/stretching-coach-ai/metagen/internal/job"
)

func event(t history.EventType, id string, pid int, at time.Time) history.Event {
	return history.Event{
		Type:       t,
		OccurredAt: at,
		Job: job.Job{
			ID:      id,
			PID:     pid,
			Input:   "in.json",
			Output:  "out.json",
			Limit:   10,
			LogPath: "logs/metadata_generation_20250225_104413.log",
		},
	}
}

func TestSendAndListRecent(t *testing.T) {
	sink, err := New(":memory:")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() { _ = sink.Close() }()

	ctx := context.Background()
	base := time.Date(2025, 2, 25, 10, 0, 0, 0, time.UTC)
	for i, e := range []history.Event{
		event(history.EventLaunch, "job-1", 100, base),
		event(history.EventStop, "job-1", 100, base.Add(time.Minute)),
		event(history.EventLaunch, "job-2", 200, base.Add(2*time.Minute)),
	} {
		if err := sink.Send(ctx, e); err != nil {
			t.Fatalf("Send %d: %v", i, err)
		}
	}

	events, err := sink.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("event count: got %d want 3", len(events))
	}
	// Newest first.
	if events[0].Job.ID != "job-2" || events[0].Type != history.EventLaunch {
		t.Fatalf("ordering wrong, first is %+v", events[0])
	}
	if events[2].Job.ID != "job-1" || events[2].Type != history.EventLaunch {
		t.Fatalf("ordering wrong, last is %+v", events[2])
	}
	if events[0].Job.Limit != 10 || events[0].Job.PID != 200 {
		t.Fatalf("fields not persisted: %+v", events[0].Job)
	}
}

func TestListRecentLimit(t *testing.T) {
	sink, err := New(":memory:")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() { _ = sink.Close() }()

	ctx := context.Background()
	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		if err := sink.Send(ctx, event(history.EventLaunch, "job", 100+i, base.Add(time.Duration(i)*time.Second))); err != nil {
			t.Fatalf("Send: %v", err)
		}
	}
	events, err := sink.ListRecent(ctx, 2)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("limit ignored: got %d events", len(events))
	}
	if events[0].Job.PID != 104 {
		t.Fatalf("expected newest first, got pid %d", events[0].Job.PID)
	}
}

func TestNewFileDSN(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	sink, err := New("sqlite://" + path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := sink.Send(context.Background(), event(history.EventLaunch, "j", 1, time.Now())); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestNewEmptyDSN(t *testing.T) {
	if _, err := New("  "); err == nil {
		t.Fatalf("empty DSN accepted")
	}
}
