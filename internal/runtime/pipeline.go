package runtime

import (
	"fmt"

	"github.com/SergeiGolos/wod-wiki-runtime/internal/action"
	"github.com/SergeiGolos/wod-wiki-runtime/internal/eventbus"
	"github.com/SergeiGolos/wod-wiki-runtime/internal/memory"
	"github.com/SergeiGolos/wod-wiki-runtime/internal/wrerrors"
)

// numPhases is action.Stack+1 — the pipeline never buckets Immediate
// actions (§4.4 "bypasses the queue; executed inline when enqueued").
const numPhases = int(action.Stack) + 1

// processAllPhases drains actions phase by phase (Display → Stack),
// collecting everything each phase's executors produce into a side buffer
// so those new actions land in the *next* outer iteration rather than the
// current pass (§4.4). The outer loop reruns until every bucket is empty
// or max_iterations is hit, at which point PipelineOverflowError is fatal
// for this handle call (§4.4/§7).
func (rt *ScriptRuntime) processAllPhases(initial []action.Action) error {
	var buckets [numPhases][]action.Action
	rt.enqueue(initial, &buckets)

	iterations := 0
	for {
		if bucketsEmpty(buckets) {
			rt.observeIterations(iterations)
			return nil
		}
		iterations++
		if iterations > rt.maxIterations {
			err := wrerrors.NewPipelineOverflowError(rt.maxIterations)
			rt.recordError(err)
			rt.observeIterations(iterations)
			return err
		}

		var produced []action.Action
		for phase := action.Display; int(phase) < numPhases; phase++ {
			drained := buckets[phase]
			buckets[phase] = nil
			for _, a := range drained {
				produced = append(produced, rt.execute(a)...)
			}
		}
		buckets = [numPhases][]action.Action{}
		rt.enqueue(produced, &buckets)
	}
}

func (rt *ScriptRuntime) observeIterations(n int) {
	if rt.metrics != nil {
		rt.metrics.PipelineIterations.Observe(float64(n))
	}
}

func bucketsEmpty(buckets [numPhases][]action.Action) bool {
	for _, b := range buckets {
		if len(b) > 0 {
			return false
		}
	}
	return true
}

// enqueue routes acts into their phase bucket, except Immediate actions
// which execute inline right away.
func (rt *ScriptRuntime) enqueue(acts []action.Action, buckets *[numPhases][]action.Action) {
	for _, a := range acts {
		if a.Phase == action.Immediate {
			rt.execute(a)
			continue
		}
		buckets[a.Phase] = append(buckets[a.Phase], a)
	}
}

// execute runs the single executor matching a.Kind, recovering from any
// panic inside it so one bad action never aborts the rest of its bucket
// (§4.4 "Errors thrown by an action are caught, logged, and do not abort
// the remaining actions in the same bucket").
func (rt *ScriptRuntime) execute(a action.Action) (produced []action.Action) {
	defer func() {
		if r := recover(); r != nil {
			rt.recordError(wrerrors.NewBehaviorError(string(a.BlockKey), kindName(a.Kind), panicError(r)))
		}
	}()

	switch a.Kind {
	case action.KindDisplayPush:
		p := a.Payload.(action.DisplayPushPayload)
		rt.display = append(rt.display, DisplayItem{BlockKey: a.BlockKey, Label: p.Label})

	case action.KindDisplayPop:
		rt.popDisplay(a.BlockKey)

	case action.KindMemorySet:
		p := a.Payload.(action.MemorySetPayload)
		rt.store.SetRaw(p.Ref, p.Value)

	case action.KindMemoryRelease:
		p := a.Payload.(action.MemoryReleasePayload)
		memory.ReleaseRaw(rt.store, p.Ref)

	case action.KindSideEffectLog:
		p := a.Payload.(action.SideEffectLogPayload)
		rt.logger.Info(p.Message, toArgs(p.Fields)...)

	case action.KindEventEmit:
		p := a.Payload.(action.EventEmitPayload)
		produced = rt.dispatchEvent(p.Name, p.Data)

	case action.KindStackPushChildGroup:
		p := a.Payload.(action.StackPushChildGroupPayload)
		produced = rt.pushChildGroup(a.BlockKey, p.GroupIndex)

	case action.KindStackPushRoot:
		stmts, err := rt.script.Resolve(rt.script.Root)
		if err != nil {
			rt.recordError(err)
			return nil
		}
		blk, err := rt.compiler.Compile(stmts, rt.compileCtx())
		if err != nil {
			rt.recordError(err)
			return nil
		}
		produced = rt.pushBlock(blk)

	case action.KindStackPop:
		produced = rt.popBlock(a.BlockKey)

	case action.KindRegisterHandler:
		p := a.Payload.(action.RegisterHandlerPayload)
		rt.registerHandler(a.BlockKey, p)
	}

	return produced
}

func (rt *ScriptRuntime) popDisplay(key memory.Key) {
	for i := len(rt.display) - 1; i >= 0; i-- {
		if rt.display[i].BlockKey == key {
			rt.display = append(rt.display[:i], rt.display[i+1:]...)
			return
		}
	}
}

// registerHandler bridges a behavior-produced action.HandlerFunc to an
// eventbus.Handler, the one place in the codebase that connects the two
// packages (§9 "keeps the dependency graph a DAG").
func (rt *ScriptRuntime) registerHandler(owner memory.Key, p action.RegisterHandlerPayload) {
	scope := eventbus.ScopeActive
	if p.Scope == action.ScopeBubble {
		scope = eventbus.ScopeBubble
	}
	fn := p.Fn
	rt.bus.Register(p.EventName, owner, scope, func(ev eventbus.Event) eventbus.Result {
		return eventbus.Result{Actions: fn(ev.Name, ev.Data, ev.Timestamp), ShouldContinue: true}
	})
}

func toArgs(fields map[string]any) []any {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return args
}

func panicError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("panic: %v", r)
}

// kindName gives action.Kind values a stable label for error messages
// without adding a String method to the data-only action package.
func kindName(k action.Kind) string {
	names := [...]string{
		"display-push", "display-pop", "memory-set", "memory-release",
		"side-effect-log", "event-emit", "stack-push-child-group",
		"stack-push-root", "stack-pop", "register-handler",
	}
	if int(k) < 0 || int(k) >= len(names) {
		return "unknown"
	}
	return names[k]
}
