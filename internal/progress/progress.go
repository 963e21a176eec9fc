// Package progress carries percentage/status events from sync operations to
// whatever presents them.
package progress

import (
	"log/slog"
	"sync"
	"time"
)

// Event is a single progress update. Percent is nominally 0-100 but may
// exceed 100 when a size estimate undershoots.
type Event struct {
	Percent float64 `json:"percent"`
	Status  string  `json:"status"`
}

// Sink receives progress events. Delivery is best-effort: an error returned
// by Emit is logged by the caller and never aborts the operation.
type Sink interface {
	Emit(percent float64, status string) error
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(percent float64, status string) error

func (f SinkFunc) Emit(percent float64, status string) error { return f(percent, status) }

// Discard is a Sink that drops every event.
var Discard Sink = SinkFunc(func(float64, string) error { return nil })

// Reporter delivers events to a Sink and logs delivery failures.
// The zero value discards events.
type Reporter struct {
	Sink   Sink
	Logger *slog.Logger
}

// Report emits one event.
func (r Reporter) Report(percent float64, status string) {
	if r.Sink == nil {
		return
	}
	if err := r.Sink.Emit(percent, status); err != nil && r.Logger != nil {
		r.Logger.Warn("progress update failed", "status", status, "err", err)
	}
}

// Throttle lets at most one event through per interval.
type Throttle struct {
	Interval time.Duration
	now      func() time.Time
	last     time.Time
	started  bool
}

// NewThrottle returns a Throttle whose interval starts now.
func NewThrottle(interval time.Duration) *Throttle {
	t := &Throttle{Interval: interval, now: time.Now}
	t.last = t.now()
	t.started = true
	return t
}

// Ready reports whether enough time has passed since the last accepted
// event, and if so records now as the last one.
func (t *Throttle) Ready() bool {
	if t.now == nil {
		t.now = time.Now
	}
	now := t.now()
	if !t.started || now.Sub(t.last) >= t.Interval {
		t.last = now
		t.started = true
		return true
	}
	return false
}

// Recorder is a Sink that keeps every event. Safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Emit(percent float64, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Percent: percent, Status: status})
	return nil
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Last returns the most recent event and false when none was recorded.
func (r *Recorder) Last() (Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return Event{}, false
	}
	return r.events[len(r.events)-1], true
}
