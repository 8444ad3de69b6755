// Package runtime implements the Script Runtime orchestrator (spec.md
// §4.9): the single owner of the script, stack, memory store, clock,
// event bus, and JIT compiler, driving the Phased Action Pipeline to
// quiescence on every handle() call.
package runtime

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/SergeiGolos/wod-wiki-runtime/internal/action"
	"github.com/SergeiGolos/wod-wiki-runtime/internal/behavior"
	"github.com/SergeiGolos/wod-wiki-runtime/internal/block"
	"github.com/SergeiGolos/wod-wiki-runtime/internal/clock"
	"github.com/SergeiGolos/wod-wiki-runtime/internal/eventbus"
	"github.com/SergeiGolos/wod-wiki-runtime/internal/jit"
	"github.com/SergeiGolos/wod-wiki-runtime/internal/memory"
	"github.com/SergeiGolos/wod-wiki-runtime/internal/obsmetrics"
	"github.com/SergeiGolos/wod-wiki-runtime/internal/obstrace"
	"github.com/SergeiGolos/wod-wiki-runtime/internal/stack"
	"github.com/SergeiGolos/wod-wiki-runtime/internal/statement"
	"github.com/SergeiGolos/wod-wiki-runtime/internal/wrerrors"
)

const defaultMaxIterations = 100

// DisplayItem is one entry on the external display stack a driver (CLI,
// TUI, websocket bridge) reads to render the current block tree.
type DisplayItem struct {
	BlockKey memory.Key
	Label    string
}

// ScriptRuntime owns every long-lived collaborator for one running script
// (§4.9). Multiple independent instances may coexist in one process so
// long as no reference crosses between them (§9).
type ScriptRuntime struct {
	script   statement.Script
	st       *stack.Stack
	store    *memory.Store
	clk      *clock.Clock
	bus      *eventbus.Bus
	compiler *jit.Compiler
	history  *behavior.Log

	maxIterations int
	now           func() time.Time
	logger        *slog.Logger
	tracer        trace.Tracer
	metrics       *obsmetrics.Metrics

	errs    []error
	display []DisplayItem
}

// Option configures a ScriptRuntime at construction.
type Option func(*ScriptRuntime)

// WithTracer stores an OpenTelemetry tracer on the runtime. Block lifecycle
// hook spans are started by obstrace.StartHook on the global OpenTelemetry
// tracer, not on this one.
func WithTracer(t trace.Tracer) Option {
	return func(rt *ScriptRuntime) { rt.tracer = t }
}

// WithMetrics attaches a Prometheus metrics bundle.
func WithMetrics(m *obsmetrics.Metrics) Option {
	return func(rt *ScriptRuntime) { rt.metrics = m }
}

// WithLogger overrides the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(rt *ScriptRuntime) { rt.logger = l }
}

// WithMaxIterations overrides the Action Pipeline's max_iterations bound
// (default 100, §4.4).
func WithMaxIterations(n int) Option {
	return func(rt *ScriptRuntime) {
		if n > 0 {
			rt.maxIterations = n
		}
	}
}

// WithNow overrides the wall-clock source, for deterministic tests.
func WithNow(now func() time.Time) Option {
	return func(rt *ScriptRuntime) { rt.now = now }
}

// WithMatchCacheSize sizes the JIT compiler's strategy match cache.
func WithMatchCacheSize(n int) Option {
	return func(rt *ScriptRuntime) { rt.compiler = jit.NewDefaultCompiler(n) }
}

// New builds a ScriptRuntime for script. The stack starts empty; call
// Start to compile and push the root block.
func New(script statement.Script, opts ...Option) *ScriptRuntime {
	rt := &ScriptRuntime{
		script:        script,
		store:         memory.NewStore(),
		maxIterations: defaultMaxIterations,
		now:           time.Now,
		history:       behavior.NewLog(),
		logger:        slog.Default(),
	}
	rt.st = stack.New(func() time.Time { return rt.now() })
	rt.clk = clock.New(clock.SourceFunc(func() time.Time { return rt.now() }))
	rt.bus = eventbus.New(rt.currentKey, rt.ownerOrder)
	rt.compiler = jit.NewDefaultCompiler(256)

	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

func (rt *ScriptRuntime) currentKey() (memory.Key, bool) {
	cur := rt.st.Current()
	if cur == nil {
		return "", false
	}
	return cur.Key, true
}

func (rt *ScriptRuntime) ownerOrder() []memory.Key {
	blocks := rt.st.BlocksTopFirst()
	keys := make([]memory.Key, len(blocks))
	for i, b := range blocks {
		keys[i] = b.Key
	}
	return keys
}

func (rt *ScriptRuntime) compileCtx() jit.CompileContext {
	return jit.CompileContext{
		Store:   rt.store,
		Now:     rt.now,
		NextKey: memory.NewKey,
		History: rt.history,
	}
}

// Errors returns every error recorded since construction, in order.
func (rt *ScriptRuntime) Errors() []error {
	out := make([]error, len(rt.errs))
	copy(out, rt.errs)
	return out
}

func (rt *ScriptRuntime) recordError(err error) {
	if err == nil {
		return
	}
	rt.errs = append(rt.errs, err)
	if wrerrors.IsBehaviorError(err) && rt.metrics != nil {
		rt.metrics.BehaviorErrors.Inc()
	}
	rt.logger.Error("runtime error", "error", err)
}

// Stack exposes the live stack for read-only inspection by drivers.
func (rt *ScriptRuntime) Stack() *stack.Stack { return rt.st }

// Store exposes the live memory store for read-only inspection by drivers.
func (rt *ScriptRuntime) Store() *memory.Store { return rt.store }

// Display returns a snapshot of the external display stack, root-first.
func (rt *ScriptRuntime) Display() []DisplayItem {
	out := make([]DisplayItem, len(rt.display))
	copy(out, rt.display)
	return out
}

// IsComplete reports whether the stack is empty or holds only the root
// block (§4.9).
func (rt *ScriptRuntime) IsComplete() bool {
	return rt.st.Depth() <= 1
}

// Start compiles the script's root sibling group and pushes it, driving
// the resulting mount actions through the pipeline. Must be called exactly
// once before Handle.
func (rt *ScriptRuntime) Start() error {
	stmts, err := rt.script.Resolve(rt.script.Root)
	if err != nil {
		rt.recordError(err)
		return err
	}
	blk, err := rt.compiler.Compile(stmts, rt.compileCtx())
	if err != nil {
		rt.recordError(err)
		return err
	}
	acts := rt.pushBlock(blk)
	return rt.processAllPhases(acts)
}

// Handle dispatches a named external event through the bus and drains the
// resulting actions through the Phased Action Pipeline, returning only
// after the pipeline reaches quiescence or overflows (§4.9).
func (rt *ScriptRuntime) Handle(name string, data any) error {
	acts := rt.dispatchEvent(name, data)
	return rt.processAllPhases(acts)
}

// dispatchEvent runs name through the event bus and, for "next" — the one
// event every block reacts to directly rather than through a registered
// handler (§4.6 "mount → next* → unmount → dispose") — also invokes the
// current stack top's Next(), merging both sets of produced actions (§4.9).
func (rt *ScriptRuntime) dispatchEvent(name string, data any) []action.Action {
	ev := eventbus.Event{Name: name, Timestamp: rt.now(), Data: data}
	if rt.metrics != nil {
		rt.metrics.EventsDispatched.Inc()
	}
	acts := rt.bus.Dispatch(ev)

	if name == "next" {
		if cur := rt.st.Current(); cur != nil {
			acts = append(acts, cur.Next()...)
		}
	}
	return acts
}

// pushBlock pushes blk onto the stack and invokes its Mount hook,
// returning the actions it produced for the caller to enqueue (§4.9
// "pushBlock: push to stack, invoke mount, enqueue mount actions").
func (rt *ScriptRuntime) pushBlock(blk *block.Block) []action.Action {
	_, span := obstrace.StartHook(context.Background(), "mount", blk.Key, blk.BlockType)
	rt.st.Push(blk)
	acts := blk.Mount()
	obstrace.MarkResult(span, nil)
	if rt.metrics != nil {
		rt.metrics.BlocksMounted.Inc()
		rt.metrics.StackDepth.Set(float64(rt.st.Depth()))
	}
	return acts
}

// popBlock unmounts and pops the block identified by key, which must be
// the current stack top, then disposes it (§4.9 "popBlock: invoke
// unmount, pop, enqueue unmount actions, then schedule dispose"). A
// mismatched key is a no-op recorded as a StackStateError (§7).
func (rt *ScriptRuntime) popBlock(key memory.Key) []action.Action {
	cur := rt.st.Current()
	if cur == nil || cur.Key != key {
		rt.recordError(wrerrors.NewStackStateError("pop", "target is not the current stack top"))
		return nil
	}

	_, span := obstrace.StartHook(context.Background(), "unmount", cur.Key, cur.BlockType)
	acts := cur.Unmount()
	obstrace.MarkResult(span, nil)

	popped, ok := rt.st.Pop()
	if !ok {
		return acts
	}

	_, disposeSpan := obstrace.StartHook(context.Background(), "dispose", popped.Key, popped.BlockType)
	popped.Dispose()
	rt.bus.DeregisterOwner(popped.Key)
	obstrace.MarkResult(disposeSpan, nil)

	if rt.metrics != nil {
		rt.metrics.BlocksDisposed.Inc()
		rt.metrics.StackDepth.Set(float64(rt.st.Depth()))
	}
	return acts
}

// pushChildGroup resolves child group groupIndex of the current block via
// the script, JIT-compiles it, and pushes the result (§4.8/§4.9).
func (rt *ScriptRuntime) pushChildGroup(parentKey memory.Key, groupIndex int) []action.Action {
	parent := rt.st.Current()
	if parent == nil || parent.Key != parentKey {
		rt.recordError(wrerrors.NewStackStateError("push-child-group", "parent is not the current stack top"))
		return nil
	}
	if groupIndex < 0 || groupIndex >= len(parent.ChildGroups) {
		rt.recordError(wrerrors.NewStackStateError("push-child-group", "group index out of range"))
		return nil
	}

	stmts, err := rt.script.Resolve(parent.ChildGroups[groupIndex])
	if err != nil {
		rt.recordError(err)
		return nil
	}

	blk, err := rt.compiler.Compile(stmts, rt.compileCtx())
	if err != nil {
		rt.recordError(err)
		return nil
	}

	return rt.pushBlock(blk)
}
