package progress

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReporterDeliversEvents(t *testing.T) {
	rec := &Recorder{}
	r := Reporter{Sink: rec}

	r.Report(10, "Downloading zip...")
	r.Report(100, "Extracting zip...")

	events := rec.Events()
	require.Len(t, events, 2)
	assert.Equal(t, Event{Percent: 10, Status: "Downloading zip..."}, events[0])

	last, ok := rec.Last()
	require.True(t, ok)
	assert.Equal(t, 100.0, last.Percent)
}

func TestReporterLogsDeliveryFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	failing := SinkFunc(func(float64, string) error {
		return errors.New("window closed")
	})

	r := Reporter{Sink: failing, Logger: logger}
	r.Report(50, "Applying patch incr-3...")

	assert.Contains(t, buf.String(), "progress update failed")
	assert.Contains(t, buf.String(), "window closed")
}

func TestReporterZeroValue(t *testing.T) {
	var r Reporter
	r.Report(1, "ignored")
}

func TestRecorderEmpty(t *testing.T) {
	_, ok := (&Recorder{}).Last()
	assert.False(t, ok)
}

func TestThrottle(t *testing.T) {
	clock := time.Unix(0, 0)
	th := &Throttle{Interval: 100 * time.Millisecond, now: func() time.Time { return clock }}

	assert.True(t, th.Ready(), "first call passes")
	assert.False(t, th.Ready(), "same instant is throttled")

	clock = clock.Add(99 * time.Millisecond)
	assert.False(t, th.Ready())

	clock = clock.Add(1 * time.Millisecond)
	assert.True(t, th.Ready(), "interval elapsed")
	assert.False(t, th.Ready())
}

func TestNewThrottleStartsClosed(t *testing.T) {
	th := NewThrottle(time.Hour)
	assert.False(t, th.Ready())

	zero := NewThrottle(0)
	assert.True(t, zero.Ready())
}
