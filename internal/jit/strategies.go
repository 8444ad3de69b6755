package jit

import (
	"github.com/SergeiGolos/wod-wiki-runtime/internal/behavior"
	"github.com/SergeiGolos/wod-wiki-runtime/internal/block"
	"github.com/SergeiGolos/wod-wiki-runtime/internal/fragment"
	"github.com/SergeiGolos/wod-wiki-runtime/internal/memory"
	"github.com/SergeiGolos/wod-wiki-runtime/internal/statement"
	"github.com/SergeiGolos/wod-wiki-runtime/internal/wrerrors"
)

// NewDefaultCompiler builds a Compiler with the six canonical strategies
// registered lowest-priority first, so Compile's reverse scan visits them
// in exactly the §4.8 precedence order (TimeBoundRounds, Interval, Timer,
// Rounds, Group, Effort).
func NewDefaultCompiler(cacheSize int) *Compiler {
	c := NewCompiler(cacheSize)
	c.Register(EffortStrategy{})
	c.Register(GroupStrategy{})
	c.Register(RoundsStrategy{})
	c.Register(TimerStrategy{})
	c.Register(IntervalStrategy{})
	c.Register(TimeBoundRoundsStrategy{})
	return c
}

// newLoopBundle attaches the common loop-bearing behavior set — loop
// coordinator, history, round-span, action layer, and a completion
// behavior that pops once the coordinator has exhausted its rounds — to a
// freshly built Block.
func newLoopBundle(b *block.Block, ctx CompileContext, coord *behavior.LoopCoordinatorBehavior) {
	hist := behavior.NewHistory(ctx.History, "rounds")
	b.Attach(
		hist,
		coord,
		behavior.NewRoundSpan(hist),
		behavior.NewActionLayer(),
		behavior.NewCompletion(func(h behavior.Host) bool {
			return coord.IsComplete(h.ChildGroupCount())
		}, false),
	)
}

// newLeafBundle attaches the behavior set for a leaf block with no
// children: history, action layer, and a completion behavior that pops as
// soon as its own OnNext runs once.
func newLeafBundle(b *block.Block, ctx CompileContext) {
	hist := behavior.NewHistory(ctx.History, "leaf")
	b.Attach(
		hist,
		behavior.NewActionLayer(),
		behavior.NewCompletion(func(behavior.Host) bool { return true }, false),
	)
}

// --- 1. TimeBoundRounds ---

// TimeBoundRoundsStrategy matches a Timer co-occurring with either a
// Rounds fragment or an "AMRAP" Action: a countdown timer wrapping a
// TimeBound-mode child loop (§4.8 priority 1).
type TimeBoundRoundsStrategy struct{}

func (TimeBoundRoundsStrategy) Name() string { return "TimeBoundRounds" }

func (TimeBoundRoundsStrategy) Match(stmts []statement.Statement) bool {
	fs := stmts[0].Fragments
	if !fragment.HasKind(fs, fragment.KindTimer) {
		return false
	}
	return fragment.HasKind(fs, fragment.KindRounds) || fragment.ActionContains(fs, "AMRAP")
}

func (TimeBoundRoundsStrategy) Compile(stmts []statement.Statement, ctx CompileContext) (*block.Block, error) {
	fs := stmts[0].Fragments
	ms, dir, _ := fragment.ExtractTimerMs(fs)
	if ms <= 0 {
		return nil, wrerrors.NewValidationError("timer.value_ms", "duration must be positive")
	}

	b := block.New(block.Config{
		Key:             ctx.NextKey(),
		SourceIDs:       sourceIDs(stmts),
		BlockType:       "TimeBoundRounds",
		Label:           deriveLabel(fs),
		Store:           ctx.Store,
		Fragments:       fs,
		CompiledMetrics: fragment.Compile(stmts[0].ID, fs),
		ChildGroups:     deriveChildGroups(stmts),
		Now:             ctx.Now,
	})

	timer := behavior.NewTimer(dir, ms)
	coord := behavior.NewLoopCoordinator(behavior.LoopConfig{Mode: behavior.ModeTimeBound})

	hist := behavior.NewHistory(ctx.History, "timebound-rounds")
	b.Attach(
		hist,
		timer,
		coord,
		behavior.NewRoundSpan(hist),
		behavior.NewActionLayer(),
		behavior.NewCompletion(func(behavior.Host) bool { return timer.Completed() }, false, "timer:complete"),
	)
	return b, nil
}

// --- 2. Interval (EMOM) ---

// IntervalStrategy matches a Timer co-occurring with an "EMOM" Action
// (§4.8 priority 2).
type IntervalStrategy struct{}

func (IntervalStrategy) Name() string { return "Interval" }

func (IntervalStrategy) Match(stmts []statement.Statement) bool {
	fs := stmts[0].Fragments
	return fragment.HasKind(fs, fragment.KindTimer) && fragment.ActionContains(fs, "EMOM")
}

func (IntervalStrategy) Compile(stmts []statement.Statement, ctx CompileContext) (*block.Block, error) {
	fs := stmts[0].Fragments
	totalMs, dir, _ := fragment.ExtractTimerMs(fs)
	childGroups := deriveChildGroups(stmts)

	rounds, ok := fragment.ExtractRounds(fs)
	intervalMs := int64(60_000)
	totalRounds := int(totalMs / intervalMs)
	if ok && rounds.Count > 0 {
		totalRounds = rounds.Count
	}
	if totalRounds <= 0 {
		return nil, wrerrors.NewValidationError("interval.totalRounds", "must be >= 1")
	}

	b := block.New(block.Config{
		Key:             ctx.NextKey(),
		SourceIDs:       sourceIDs(stmts),
		BlockType:       "Interval",
		Label:           deriveLabel(fs),
		Store:           ctx.Store,
		Fragments:       fs,
		CompiledMetrics: fragment.Compile(stmts[0].ID, fs),
		ChildGroups:     childGroups,
		Now:             ctx.Now,
	})

	timer := behavior.NewTimer(dir, totalMs)
	coord := behavior.NewLoopCoordinator(behavior.LoopConfig{
		Mode:               behavior.ModeInterval,
		TotalRounds:        totalRounds,
		IntervalDurationMs: intervalMs,
	})

	hist := behavior.NewHistory(ctx.History, "interval")
	b.Attach(
		hist,
		timer,
		coord,
		behavior.NewRoundSpan(hist),
		behavior.NewActionLayer(),
		behavior.NewCompletion(func(h behavior.Host) bool {
			return timer.Completed() && coord.IsComplete(h.ChildGroupCount())
		}, false, "timer:complete"),
	)
	return b, nil
}

// --- 3. Timer ---

// TimerStrategy matches any remaining Timer fragment: a TimerBlock, leaf
// or with a Fixed{1} child group (§4.8 priority 3).
type TimerStrategy struct{}

func (TimerStrategy) Name() string { return "Timer" }

func (TimerStrategy) Match(stmts []statement.Statement) bool {
	return fragment.HasKind(stmts[0].Fragments, fragment.KindTimer)
}

func (TimerStrategy) Compile(stmts []statement.Statement, ctx CompileContext) (*block.Block, error) {
	fs := stmts[0].Fragments
	ms, dir, _ := fragment.ExtractTimerMs(fs)

	b := block.New(block.Config{
		Key:             ctx.NextKey(),
		SourceIDs:       sourceIDs(stmts),
		BlockType:       "Timer",
		Label:           deriveLabel(fs),
		Store:           ctx.Store,
		Fragments:       fs,
		CompiledMetrics: fragment.Compile(stmts[0].ID, fs),
		ChildGroups:     deriveChildGroups(stmts),
		Now:             ctx.Now,
	})

	timer := behavior.NewTimer(dir, ms)

	if len(b.ChildGroups) == 0 {
		hist := behavior.NewHistory(ctx.History, "timer-leaf")
		b.Attach(
			hist,
			timer,
			behavior.NewActionLayer(),
			behavior.NewCompletion(func(behavior.Host) bool { return timer.Completed() }, false, "timer:complete"),
		)
		return b, nil
	}

	coord := behavior.NewLoopCoordinator(behavior.LoopConfig{Mode: behavior.ModeFixed, TotalRounds: 1})
	b.Attach(timer)
	newLoopBundle(b, ctx, coord)
	return b, nil
}

// --- 4. Rounds ---

// RoundsStrategy matches a Rounds fragment without a Timer: a RoundsBlock
// in Fixed or RepScheme mode (§4.8 priority 4).
type RoundsStrategy struct{}

func (RoundsStrategy) Name() string { return "Rounds" }

func (RoundsStrategy) Match(stmts []statement.Statement) bool {
	fs := stmts[0].Fragments
	return fragment.HasKind(fs, fragment.KindRounds) && !fragment.HasKind(fs, fragment.KindTimer)
}

func (RoundsStrategy) Compile(stmts []statement.Statement, ctx CompileContext) (*block.Block, error) {
	fs := stmts[0].Fragments
	spec, _ := fragment.ExtractRounds(fs)

	cfg := behavior.LoopConfig{Mode: behavior.ModeFixed, TotalRounds: 1}
	if spec.IsScheme {
		for _, r := range spec.Reps {
			if r <= 0 {
				return nil, wrerrors.NewValidationError("rounds.reps", "every rep-scheme value must be > 0")
			}
		}
		cfg = behavior.LoopConfig{Mode: behavior.ModeRepScheme, Reps: spec.Reps}
	} else if spec.Count > 0 {
		cfg.TotalRounds = spec.Count
	} else {
		return nil, wrerrors.NewValidationError("rounds.totalRounds", "must be >= 1")
	}

	b := block.New(block.Config{
		Key:             ctx.NextKey(),
		SourceIDs:       sourceIDs(stmts),
		BlockType:       "Rounds",
		Label:           deriveLabel(fs),
		Store:           ctx.Store,
		Fragments:       fs,
		CompiledMetrics: fragment.Compile(stmts[0].ID, fs),
		ChildGroups:     deriveChildGroups(stmts),
		Now:             ctx.Now,
	})

	coord := behavior.NewLoopCoordinator(cfg)
	newLoopBundle(b, ctx, coord)
	return b, nil
}

// --- 5. Group ---

// GroupStrategy matches a statement with non-empty children but no
// Timer/Rounds: a plain Fixed{1} container (§4.8 priority 5).
type GroupStrategy struct{}

func (GroupStrategy) Name() string { return "Group" }

func (GroupStrategy) Match(stmts []statement.Statement) bool {
	fs := stmts[0].Fragments
	return len(stmts[0].Children) > 0 &&
		!fragment.HasKind(fs, fragment.KindTimer) &&
		!fragment.HasKind(fs, fragment.KindRounds)
}

func (GroupStrategy) Compile(stmts []statement.Statement, ctx CompileContext) (*block.Block, error) {
	fs := stmts[0].Fragments

	b := block.New(block.Config{
		Key:             ctx.NextKey(),
		SourceIDs:       sourceIDs(stmts),
		BlockType:       "Group",
		Label:           deriveLabel(fs),
		Store:           ctx.Store,
		Fragments:       fs,
		CompiledMetrics: fragment.Compile(stmts[0].ID, fs),
		ChildGroups:     deriveChildGroups(stmts),
		Now:             ctx.Now,
	})

	coord := behavior.NewLoopCoordinator(behavior.LoopConfig{Mode: behavior.ModeFixed, TotalRounds: 1})
	newLoopBundle(b, ctx, coord)
	return b, nil
}

// --- 6. Effort ---

// EffortStrategy is the catch-all fallback: no Timer, no Rounds — a leaf
// effort block (§4.8 priority 6).
type EffortStrategy struct{}

func (EffortStrategy) Name() string { return "Effort" }

func (EffortStrategy) Match(stmts []statement.Statement) bool {
	fs := stmts[0].Fragments
	return !fragment.HasKind(fs, fragment.KindTimer) && !fragment.HasKind(fs, fragment.KindRounds)
}

func (EffortStrategy) Compile(stmts []statement.Statement, ctx CompileContext) (*block.Block, error) {
	fs := stmts[0].Fragments
	metrics := inheritPublicReps(ctx.Store, fragment.Compile(stmts[0].ID, fs))

	b := block.New(block.Config{
		Key:             ctx.NextKey(),
		SourceIDs:       sourceIDs(stmts),
		BlockType:       "Effort",
		Label:           deriveLabel(fs),
		Store:           ctx.Store,
		Fragments:       fs,
		CompiledMetrics: metrics,
		ChildGroups:     deriveChildGroups(stmts),
		Now:             ctx.Now,
	})

	newLeafBundle(b, ctx)
	return b, nil
}

// inheritPublicReps implements §4.8/§8 scenario 5: a leaf with no explicit
// Repetitions fragment searches public memory for the latest "metric:reps"
// cell and inherits it. Inherit only adds a kind that is absent, so a leaf
// that already carries its own Repetitions metric is left untouched.
func inheritPublicReps(store *memory.Store, m fragment.RuntimeMetric) fragment.RuntimeMetric {
	ctx := memory.NewContext(store, memory.RuntimeOwner)
	reps, ok := memory.SearchPublicLatest[int](ctx, "metric:reps")
	if !ok {
		return m
	}
	m.Values = fragment.ApplyRules(m.Values, fragment.Inherit{
		Values: []fragment.MetricValue{{Kind: fragment.MetricRepetitions, Value: float64(reps), Unit: "reps"}},
	})
	return m
}
