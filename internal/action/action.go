// Package action defines the data-only Action/Phase contract driven by the
// Action Pipeline (spec.md §4.4). Actions never carry closures over the
// runtime — they carry a Phase, a Kind, the BlockKey that produced them,
// and a typed Payload — so that Behaviors (and anything else that
// produces actions) never need to import the packages that execute them.
// This keeps the dependency graph a DAG: behavior/block/jit produce
// Actions; only the orchestrator package interprets Kind.
package action

import (
	"time"

	"github.com/SergeiGolos/wod-wiki-runtime/internal/memory"
)

// Phase is the fixed execution order of the pipeline (§4.4).
type Phase int

const (
	Immediate Phase = iota
	Display
	Memory
	SideEffect
	Event
	Stack

	phaseCount
)

func (p Phase) String() string {
	switch p {
	case Immediate:
		return "immediate"
	case Display:
		return "display"
	case Memory:
		return "memory"
	case SideEffect:
		return "side-effect"
	case Event:
		return "event"
	case Stack:
		return "stack"
	default:
		return "unknown"
	}
}

// Kind discriminates the shape of Payload. The orchestrator switches on
// Kind; nothing else needs to.
type Kind int

const (
	KindDisplayPush Kind = iota
	KindDisplayPop
	KindMemorySet
	KindMemoryRelease
	KindSideEffectLog
	KindEventEmit
	KindStackPushChildGroup
	KindStackPushRoot
	KindStackPop
	KindRegisterHandler
)

// Action is one unit of deferred (or, for Immediate, inline) work.
type Action struct {
	Phase    Phase
	Kind     Kind
	BlockKey memory.Key
	Payload  any
}

// DisplayPushPayload requests the external display stack push a label for
// BlockKey — conventionally appended by Block.Mount (§4.6).
type DisplayPushPayload struct {
	Label string
}

// DisplayPopPayload requests the external display stack pop BlockKey's
// label — conventionally appended by Block.Unmount (§4.6).
type DisplayPopPayload struct{}

// MemorySetPayload asks the orchestrator to write Value through Ref during
// the Memory phase.
type MemorySetPayload struct {
	Ref   memory.RawReference
	Value any
}

// MemoryReleasePayload asks the orchestrator to release Ref during the
// Memory phase.
type MemoryReleasePayload struct {
	Ref memory.RawReference
}

// SideEffectLogPayload carries a free-form log line for telemetry/sound
// side effects (§4.4 phase 3).
type SideEffectLogPayload struct {
	Message string
	Fields  map[string]any
}

// EventEmitPayload re-dispatches a derived named event through the bus
// (§4.4 phase 5).
type EventEmitPayload struct {
	Name string
	Data any
}

// StackPushChildGroupPayload asks the orchestrator to JIT-compile child
// group GroupIndex of the block identified by BlockKey (the parent whose
// LoopCoordinatorBehavior produced it) and push the result.
type StackPushChildGroupPayload struct {
	GroupIndex int
}

// StackPopPayload asks the orchestrator to pop the block identified by
// BlockKey. The block must be the current stack top when the Stack phase
// runs (as it is when a CompletionBehavior targets its own block from
// within onNext); otherwise the pop is a no-op recorded as a
// StackStateError.
type StackPopPayload struct{}

// HandlerFunc is a type-erased event reaction closure a Behavior builds at
// OnMount time (capturing whatever memory references it needs) and hands
// to the orchestrator via a RegisterHandler action — this is how
// TimerBehavior reacts to "tick" and ActionLayerBehavior reacts to
// fragment-derived action names without ever importing eventbus.
type HandlerFunc func(eventName string, data any, timestamp time.Time) []Action

// RegisterHandlerPayload asks the event bus to register Fn for EventName,
// owned by BlockKey, scoped per Scope — used by TimerBehavior,
// CompletionBehavior, and ActionLayerBehavior to expose fragment-derived
// actions without the core knowing about UI widgets.
type RegisterHandlerPayload struct {
	EventName string
	Scope     HandlerScope
	Fn        HandlerFunc
}

// HandlerScope mirrors eventbus.Scope without importing eventbus, keeping
// action acyclic; the orchestrator translates it 1:1.
type HandlerScope int

const (
	ScopeActive HandlerScope = iota
	ScopeBubble
)
