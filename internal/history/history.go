package history

import (
	"context"
	"time"

	"github.com/stretching-coach-ai/metagen/internal/job"
)

// EventType defines the kind of lifecycle event.
type EventType string

const (
	EventLaunch EventType = "launch"
	EventStop   EventType = "stop"
)

// Event is one launch or stop of a generator job, as persisted to the
// audit trail.
type Event struct {
	Type       EventType `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Job        job.Job   `json:"job"`
}

// Sink is a destination for history events. Implementations must be safe
// for concurrent use. Sink failures never abort a launch that already
// succeeded; callers log and move on.
type Sink interface {
	Send(ctx context.Context, e Event) error
	Close() error
}

// Lister is implemented by sinks that can report recent events back.
type Lister interface {
	ListRecent(ctx context.Context, n int) ([]Event, error)
}
