package behavior

import (
	"time"

	"github.com/SergeiGolos/wod-wiki-runtime/internal/action"
	"github.com/SergeiGolos/wod-wiki-runtime/internal/memory"
)

// RoundSpanBehavior opens one TimeSegment on the owning HistoryBehavior's
// TrackedSpan per round and closes the previous segment on each
// "rounds:changed" event, plus closes the final open segment at unmount
// (§4.5 RoundSpanBehavior).
type RoundSpanBehavior struct {
	NoopBehavior

	History *HistoryBehavior

	segmentsRef memory.Reference[[]TimeSegment]
}

// NewRoundSpan builds a RoundSpanBehavior layered on top of history, whose
// TrackedSpan receives the opened/closed segments. history must already be
// mounted on the same block (its OnMount must run first in the behavior
// list) so its spanRef exists before RoundSpanBehavior opens a segment.
func NewRoundSpan(history *HistoryBehavior) *RoundSpanBehavior {
	return &RoundSpanBehavior{History: history}
}

func (r *RoundSpanBehavior) OnMount(h Host) []action.Action {
	ctx := h.MemoryContext()
	r.segmentsRef = memory.AllocatePublic(ctx, "history:segments", nil)

	owner := h.Key()
	r.openSegment(h)
	return []action.Action{
		registerAction(owner, "rounds:changed", action.ScopeActive, r.onRoundChanged(h)),
	}
}

func (r *RoundSpanBehavior) onRoundChanged(h Host) action.HandlerFunc {
	return func(string, any, time.Time) []action.Action {
		r.closeCurrentSegment(h)
		r.openSegment(h)
		return nil
	}
}

func (r *RoundSpanBehavior) openSegment(h Host) {
	store := h.MemoryContext().Store()
	segments, _ := memory.Get(store, r.segmentsRef)
	segments = append(segments, TimeSegment{Start: h.Now()})
	memory.Set(store, r.segmentsRef, segments)
	r.syncHistory(h, segments)
}

func (r *RoundSpanBehavior) closeCurrentSegment(h Host) {
	store := h.MemoryContext().Store()
	segments, ok := memory.Get(store, r.segmentsRef)
	if !ok || len(segments) == 0 {
		return
	}
	last := len(segments) - 1
	if segments[last].End == nil {
		now := h.Now()
		segments[last].End = &now
	}
	memory.Set(store, r.segmentsRef, segments)
	r.syncHistory(h, segments)
}

func (r *RoundSpanBehavior) syncHistory(h Host, segments []TimeSegment) {
	if r.History == nil {
		return
	}
	span, ok := r.History.Span(h)
	if !ok {
		return
	}
	span.Segments = segments
	memory.Set(h.MemoryContext().Store(), r.History.spanRef, span)
}

func (r *RoundSpanBehavior) OnUnmount(h Host) []action.Action {
	r.closeCurrentSegment(h)
	return nil
}
