// Package clock models wall-clock elapsed time across running/stopped
// spans, grounded on the teacher's injectable Clock/ClockFunc/SystemClock
// trio (internal/reference/agent_runtime_ports_teacher.go.txt) so tests can
// freeze time without reaching for time.Sleep.
package clock

import "time"

// Source supplies "now". Production code uses SystemClock; tests use a
// SourceFunc wrapping a plain func value.
type Source interface {
	Now() time.Time
}

// SourceFunc adapts a function to Source.
type SourceFunc func() time.Time

func (f SourceFunc) Now() time.Time { return f() }

// SystemClock is the real wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// TimeSpan is one open-or-closed interval of running time.
type TimeSpan struct {
	Start time.Time
	Stop  *time.Time
}

// Elapsed returns Stop-Start, or now-Start if the span is still open.
func (s TimeSpan) Elapsed(now time.Time) time.Duration {
	if s.Stop != nil {
		return s.Stop.Sub(s.Start)
	}
	return now.Sub(s.Start)
}

// Clock holds an ordered list of spans. IsRunning is derived from whether
// the last span is still open.
type Clock struct {
	source Source
	spans  []TimeSpan
}

// New creates a stopped clock driven by source. A nil source defaults to
// SystemClock.
func New(source Source) *Clock {
	if source == nil {
		source = SystemClock{}
	}
	return &Clock{source: source}
}

// Now returns the clock's current wall time.
func (c *Clock) Now() time.Time { return c.source.Now() }

// IsRunning reports whether the last span is still open.
func (c *Clock) IsRunning() bool {
	if len(c.spans) == 0 {
		return false
	}
	return c.spans[len(c.spans)-1].Stop == nil
}

// Start appends a new open span. Starting an already-running clock is
// idempotent: it returns now without mutating state (§4.2 failure policy).
func (c *Clock) Start() time.Time {
	now := c.source.Now()
	if c.IsRunning() {
		return now
	}
	c.spans = append(c.spans, TimeSpan{Start: now})
	return now
}

// Stop closes the last open span. Stopping an idle clock is idempotent.
func (c *Clock) Stop() time.Time {
	now := c.source.Now()
	if !c.IsRunning() {
		return now
	}
	last := &c.spans[len(c.spans)-1]
	last.Stop = &now
	return now
}

// Elapsed sums every closed span plus the open span's running time, if any.
func (c *Clock) Elapsed() time.Duration {
	now := c.source.Now()
	var total time.Duration
	for _, s := range c.spans {
		total += s.Elapsed(now)
	}
	return total
}

// Spans returns a defensive copy of the recorded spans, for history/debug
// observers.
func (c *Clock) Spans() []TimeSpan {
	out := make([]TimeSpan, len(c.spans))
	copy(out, c.spans)
	return out
}
