package behavior

import (
	"time"

	"github.com/SergeiGolos/wod-wiki-runtime/internal/action"
	"github.com/SergeiGolos/wod-wiki-runtime/internal/clock"
	"github.com/SergeiGolos/wod-wiki-runtime/internal/fragment"
	"github.com/SergeiGolos/wod-wiki-runtime/internal/memory"
)

// TimerBehavior tracks elapsed (count-up) or remaining (count-down) time
// for a block, publishing isRunning ("timer:isRunning") and the elapsed
// duration ("timer:elapsed") as public cells so descendants can read them;
// the clock's individual time spans are not published (§4.5 TimerBehavior).
type TimerBehavior struct {
	NoopBehavior

	Direction  fragment.Direction
	DurationMs int64 // only meaningful when Direction == fragment.Down

	clk          *clock.Clock
	isRunningRef memory.Reference[bool]
	elapsedRef   memory.Reference[time.Duration]
	completed    bool
}

// NewTimer builds a TimerBehavior. durationMs is ignored for count-up
// timers.
func NewTimer(dir fragment.Direction, durationMs int64) *TimerBehavior {
	return &TimerBehavior{Direction: dir, DurationMs: durationMs}
}

func (t *TimerBehavior) OnMount(h Host) []action.Action {
	ctx := h.MemoryContext()
	t.clk = clock.New(clock.SourceFunc(h.Now))
	t.clk.Start()

	t.isRunningRef = memory.AllocatePublic(ctx, "timer:isRunning", true)
	t.elapsedRef = memory.AllocatePublic(ctx, "timer:elapsed", time.Duration(0))

	owner := h.Key()
	return []action.Action{
		registerAction(owner, "tick", action.ScopeActive, t.onTick(ctx)),
		registerAction(owner, "pause", action.ScopeActive, t.onPause(ctx)),
		registerAction(owner, "resume", action.ScopeActive, t.onResume(ctx)),
		registerAction(owner, "start", action.ScopeActive, t.onResume(ctx)),
		registerAction(owner, "stop", action.ScopeActive, t.onPause(ctx)),
		emitAction(owner, "timer:start", nil),
	}
}

func (t *TimerBehavior) onTick(ctx *memory.Context) action.HandlerFunc {
	return func(_ string, _ any, _ time.Time) []action.Action {
		owner := ctx.Owner()
		elapsed := t.clk.Elapsed()
		acts := []action.Action{
			memorySetAction(owner, t.elapsedRef.Untyped(), elapsed),
		}
		if t.Direction == fragment.Down && !t.completed {
			remaining := t.remaining(elapsed)
			if remaining <= 0 {
				t.completed = true
				acts = append(acts, emitAction(owner, "timer:complete", nil))
			}
		}
		return acts
	}
}

func (t *TimerBehavior) onPause(ctx *memory.Context) action.HandlerFunc {
	return func(string, any, time.Time) []action.Action {
		owner := ctx.Owner()
		t.clk.Stop()
		return []action.Action{
			memorySetAction(owner, t.isRunningRef.Untyped(), false),
			emitAction(owner, "timer:pause", nil),
		}
	}
}

func (t *TimerBehavior) onResume(ctx *memory.Context) action.HandlerFunc {
	return func(string, any, time.Time) []action.Action {
		owner := ctx.Owner()
		t.clk.Start()
		return []action.Action{
			memorySetAction(owner, t.isRunningRef.Untyped(), true),
			emitAction(owner, "timer:resume", nil),
		}
	}
}

// Completed reports whether a countdown timer has reached zero (always
// false for count-up timers). Strategies wire this into a sibling
// CompletionBehavior's predicate so "timer:complete" actually pops the
// block it completes.
func (t *TimerBehavior) Completed() bool { return t.completed }

// remaining returns duration-elapsed clamped to zero, never negative
// (§4.5 / §8 boundary behavior).
func (t *TimerBehavior) remaining(elapsed time.Duration) time.Duration {
	r := time.Duration(t.DurationMs)*time.Millisecond - elapsed
	if r < 0 {
		return 0
	}
	return r
}

// DisplayTime rounds elapsed (or, for countdown, remaining) to 0.1s, per
// "getDisplayTime() rounds to 0.1s" (§4.5).
func (t *TimerBehavior) DisplayTime() time.Duration {
	elapsed := t.clk.Elapsed()
	d := elapsed
	if t.Direction == fragment.Down {
		d = t.remaining(elapsed)
	}
	return d.Round(100 * time.Millisecond)
}

func (t *TimerBehavior) OnUnmount(h Host) []action.Action {
	t.clk.Stop()
	return []action.Action{emitAction(h.Key(), "timer:stop", nil)}
}
