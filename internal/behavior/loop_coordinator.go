package behavior

import (
	"time"

	"github.com/SergeiGolos/wod-wiki-runtime/internal/action"
	"github.com/SergeiGolos/wod-wiki-runtime/internal/clock"
	"github.com/SergeiGolos/wod-wiki-runtime/internal/memory"
)

// LoopMode discriminates the four LoopCoordinatorBehavior configs (§4.5).
type LoopMode int

const (
	ModeFixed LoopMode = iota
	ModeRepScheme
	ModeTimeBound
	ModeInterval
)

// LoopConfig is the unified configuration for LoopCoordinatorBehavior. Only
// the fields relevant to Mode are meaningful.
type LoopConfig struct {
	Mode LoopMode

	TotalRounds int   // Fixed, Interval
	Reps        []int // RepScheme; len(Reps) becomes TotalRounds

	IntervalDurationMs int64 // Interval (EMOM)
}

// LoopCoordinatorBehavior is the unified child-loop engine: it owns the
// index/position/rounds state machine (§4.5) and never touches the JIT
// compiler directly — it emits a push *intent* (child group index) and
// lets the orchestrator resolve and compile the actual statements.
type LoopCoordinatorBehavior struct {
	NoopBehavior

	Config LoopConfig

	index        int // -1 = pre-first-advance
	repsRef      memory.Reference[int]
	roundsRef    memory.Reference[int]
	clk          *clock.Clock
	lastInterval int64
}

// NewLoopCoordinator builds a LoopCoordinatorBehavior with index=-1.
func NewLoopCoordinator(cfg LoopConfig) *LoopCoordinatorBehavior {
	if cfg.Mode == ModeRepScheme {
		cfg.TotalRounds = len(cfg.Reps)
	}
	return &LoopCoordinatorBehavior{Config: cfg, index: -1}
}

// Position returns index mod |childGroups|.
func (l *LoopCoordinatorBehavior) Position(groupCount int) int {
	if groupCount <= 0 {
		return 0
	}
	return l.index % groupCount
}

// Rounds returns floor(index/|childGroups|).
func (l *LoopCoordinatorBehavior) Rounds(groupCount int) int {
	if groupCount <= 0 {
		return 0
	}
	return l.index / groupCount
}

// Index exposes the raw coordinator index (for tests asserting the §8
// universal invariant directly).
func (l *LoopCoordinatorBehavior) Index() int { return l.index }

func (l *LoopCoordinatorBehavior) OnMount(h Host) []action.Action {
	ctx := h.MemoryContext()
	l.repsRef = memory.AllocatePublic(ctx, "metric:reps", 0)
	l.roundsRef = memory.AllocatePublic(ctx, "metric:rounds", 0)

	var acts []action.Action
	if l.Config.Mode == ModeInterval {
		l.clk = clock.New(clock.SourceFunc(h.Now))
		l.clk.Start()
		acts = append(acts, registerAction(h.Key(), "tick", action.ScopeActive, l.onIntervalTick(h)))
	}

	// "pre-advance to index 0 and emit a push of the first child group"
	if pushActs := l.advance(h); pushActs != nil {
		acts = append(acts, pushActs...)
	}
	return acts
}

func (l *LoopCoordinatorBehavior) OnNext(h Host) []action.Action {
	return l.advance(h)
}

// advance increments index and, while a valid position remains, emits a
// push of the child at the new position plus the reps/rounds memory
// writes; on the last valid position it also emits rounds:complete and
// reps:complete. Once the loop is exhausted it emits nothing — the owning
// block's CompletionBehavior/next hook is responsible for popping once the
// loop stops producing pushes.
func (l *LoopCoordinatorBehavior) advance(h Host) []action.Action {
	groupCount := h.ChildGroupCount()
	newIndex := l.index + 1

	if l.isComplete(newIndex, groupCount) {
		l.index = newIndex
		return nil
	}

	prevRound := l.Rounds(groupCount)
	l.index = newIndex
	position := l.Position(groupCount)
	round := l.Rounds(groupCount)

	owner := h.Key()
	acts := []action.Action{pushChildGroupAction(owner, position)}

	reps := l.repsForRound(round)
	acts = append(acts, memorySetAction(owner, l.repsRef.Untyped(), reps))
	acts = append(acts, memorySetAction(owner, l.roundsRef.Untyped(), round))

	if round != prevRound || l.index == 0 {
		acts = append(acts, emitAction(owner, "rounds:changed", round))
	}

	if l.willCompleteAfter(l.index, groupCount) {
		acts = append(acts, emitAction(owner, "rounds:complete", round))
		acts = append(acts, emitAction(owner, "reps:complete", reps))
	}

	return acts
}

func (l *LoopCoordinatorBehavior) isComplete(index, groupCount int) bool {
	switch l.Config.Mode {
	case ModeTimeBound:
		return false
	case ModeFixed, ModeRepScheme, ModeInterval:
		if groupCount <= 0 {
			return true
		}
		return index >= l.Config.TotalRounds*groupCount
	default:
		return true
	}
}

// willCompleteAfter reports whether the *next* advance would complete the
// loop, i.e. whether `index` is the last valid index.
func (l *LoopCoordinatorBehavior) willCompleteAfter(index, groupCount int) bool {
	switch l.Config.Mode {
	case ModeTimeBound:
		return false
	case ModeFixed, ModeRepScheme, ModeInterval:
		if groupCount <= 0 {
			return true
		}
		return index == l.Config.TotalRounds*groupCount-1
	default:
		return true
	}
}

func (l *LoopCoordinatorBehavior) repsForRound(round int) int {
	if l.Config.Mode != ModeRepScheme || len(l.Config.Reps) == 0 {
		return 0
	}
	return l.Config.Reps[round%len(l.Config.Reps)]
}

// onIntervalTick drives EMOM-style boundary crossings: a fresh child is
// pushed whenever elapsed crosses a multiple of IntervalDurationMs
// (§4.5 Interval / scenario 3).
func (l *LoopCoordinatorBehavior) onIntervalTick(h Host) action.HandlerFunc {
	return func(string, any, time.Time) []action.Action {
		elapsedMs := l.clk.Elapsed().Milliseconds()
		if l.Config.IntervalDurationMs <= 0 {
			return nil
		}
		boundary := elapsedMs / l.Config.IntervalDurationMs
		if boundary <= l.lastInterval {
			return nil
		}
		l.lastInterval = boundary
		return l.advance(h)
	}
}

// IsComplete reports whether the coordinator has exhausted its configured
// rounds (never true for TimeBound).
func (l *LoopCoordinatorBehavior) IsComplete(groupCount int) bool {
	return l.isComplete(l.index+1, groupCount) && l.index >= 0
}
