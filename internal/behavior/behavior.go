// Package behavior implements the composable lifecycle hooks attached to
// blocks (spec.md §4.5). A Behavior never imports block, jit, or the
// orchestrator: it only sees a Host (the minimal facade a block exposes
// about itself) and communicates outward exclusively through returned
// action.Action values, including registering further event reactions via
// action.HandlerFunc closures. This is the Go translation of "Behaviors
// must not retain references to the runtime or stack beyond the current
// invocation."
package behavior

import (
	"time"

	"github.com/SergeiGolos/wod-wiki-runtime/internal/action"
	"github.com/SergeiGolos/wod-wiki-runtime/internal/fragment"
	"github.com/SergeiGolos/wod-wiki-runtime/internal/memory"
)

// Host is everything a Behavior may observe about the block it is
// attached to.
type Host interface {
	Key() memory.Key
	Label() string
	ParentKey() (memory.Key, bool)
	ParentSpanID() (string, bool)
	MemoryContext() *memory.Context
	Fragments() []fragment.Fragment
	CompiledMetrics() fragment.RuntimeMetric
	ChildGroupCount() int
	Now() time.Time
}

// Behavior is a bundle of optional lifecycle hooks. Concrete behaviors
// embed NoopBehavior so they only need to implement the hooks they use.
type Behavior interface {
	OnMount(h Host) []action.Action
	OnNext(h Host) []action.Action
	OnUnmount(h Host) []action.Action
	OnDispose(h Host)
}

// NoopBehavior supplies no-op implementations of every hook; concrete
// behaviors embed it and override only what they need, mirroring the
// spec's "optional hooks" contract without requiring every behavior to
// hand-write four empty methods.
type NoopBehavior struct{}

func (NoopBehavior) OnMount(Host) []action.Action   { return nil }
func (NoopBehavior) OnNext(Host) []action.Action    { return nil }
func (NoopBehavior) OnUnmount(Host) []action.Action { return nil }
func (NoopBehavior) OnDispose(Host)                 {}

// registerAction builds the Stack-independent RegisterHandler action a
// behavior uses to react to named events outside of OnNext (tick, pause,
// resume, start, stop, reps:update, …).
func registerAction(owner memory.Key, eventName string, scope action.HandlerScope, fn action.HandlerFunc) action.Action {
	return action.Action{
		Phase:    action.Event,
		Kind:     action.KindRegisterHandler,
		BlockKey: owner,
		Payload:  action.RegisterHandlerPayload{EventName: eventName, Scope: scope, Fn: fn},
	}
}

func emitAction(owner memory.Key, name string, data any) action.Action {
	return action.Action{
		Phase:    action.Event,
		Kind:     action.KindEventEmit,
		BlockKey: owner,
		Payload:  action.EventEmitPayload{Name: name, Data: data},
	}
}

func popAction(owner memory.Key) action.Action {
	return action.Action{Phase: action.Stack, Kind: action.KindStackPop, BlockKey: owner, Payload: action.StackPopPayload{}}
}

func pushChildGroupAction(owner memory.Key, groupIndex int) action.Action {
	return action.Action{
		Phase:    action.Stack,
		Kind:     action.KindStackPushChildGroup,
		BlockKey: owner,
		Payload:  action.StackPushChildGroupPayload{GroupIndex: groupIndex},
	}
}

func memorySetAction(owner memory.Key, ref memory.RawReference, value any) action.Action {
	return action.Action{Phase: action.Memory, Kind: action.KindMemorySet, BlockKey: owner, Payload: action.MemorySetPayload{Ref: ref, Value: value}}
}
