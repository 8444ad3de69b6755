package behavior

import (
	"time"

	"github.com/SergeiGolos/wod-wiki-runtime/internal/action"
	"github.com/SergeiGolos/wod-wiki-runtime/internal/fragment"
	"github.com/SergeiGolos/wod-wiki-runtime/internal/memory"
)

// SpanStatus is a TrackedSpan's lifecycle state (§3).
type SpanStatus int

const (
	StatusActive SpanStatus = iota
	StatusCompleted
	StatusFailed
	StatusSkipped
)

// TimeSegment is a contiguous slice of a TrackedSpan's running time — used
// by RoundSpanBehavior for per-round timing within a single block's
// overall span.
type TimeSegment struct {
	Start time.Time
	End   *time.Time
}

// TrackedSpan is a per-block execution history record (§3).
type TrackedSpan struct {
	ID           string
	BlockID      memory.Key
	ParentSpanID string
	Type         string
	Label        string
	StartTime    time.Time
	EndTime      *time.Time
	Status       SpanStatus
	Metrics      fragment.RuntimeMetric
	Segments     []TimeSegment
}

// Log is the append-only execution log a HistoryBehavior appends to on
// dispose. It is owned by the ScriptRuntime and handed to every
// HistoryBehavior at construction.
type Log struct {
	entries []TrackedSpan
}

// NewLog creates an empty history log.
func NewLog() *Log { return &Log{} }

// Append adds span to the log.
func (l *Log) Append(span TrackedSpan) { l.entries = append(l.entries, span) }

// Entries returns every logged span, oldest first.
func (l *Log) Entries() []TrackedSpan {
	out := make([]TrackedSpan, len(l.entries))
	copy(out, l.entries)
	return out
}

// HistoryBehavior opens a public TrackedSpan at mount and closes it at
// unmount, appending to Log on dispose (§4.5).
type HistoryBehavior struct {
	NoopBehavior

	Log  *Log
	Type string

	spanRef memory.Reference[TrackedSpan]
}

// NewHistory builds a HistoryBehavior backed by log.
func NewHistory(log *Log, spanType string) *HistoryBehavior {
	return &HistoryBehavior{Log: log, Type: spanType}
}

func (hb *HistoryBehavior) OnMount(h Host) []action.Action {
	parentSpanID, _ := h.ParentSpanID()
	span := TrackedSpan{
		ID:           string(h.Key()),
		BlockID:      h.Key(),
		ParentSpanID: parentSpanID,
		Type:         hb.Type,
		Label:        h.Label(),
		StartTime:    h.Now(),
		Status:       StatusActive,
		Metrics:      h.CompiledMetrics(),
	}
	hb.spanRef = memory.AllocatePublic(h.MemoryContext(), "history:span", span)
	return nil
}

// Span returns the current in-memory span value, for RoundSpanBehavior and
// external inspectors.
func (hb *HistoryBehavior) Span(h Host) (TrackedSpan, bool) {
	return memory.Get(h.MemoryContext().Store(), hb.spanRef)
}

func (hb *HistoryBehavior) OnUnmount(h Host) []action.Action {
	span, ok := hb.Span(h)
	if !ok {
		return nil
	}
	now := h.Now()
	span.EndTime = &now
	span.Status = StatusCompleted
	memory.Set(h.MemoryContext().Store(), hb.spanRef, span)
	return nil
}

func (hb *HistoryBehavior) OnDispose(h Host) {
	if span, ok := hb.Span(h); ok {
		hb.Log.Append(span)
	}
}
