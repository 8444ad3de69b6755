// Package eventbus dispatches named events to scoped handlers and collects
// the Actions they return (spec.md §4.3).
package eventbus

import (
	"time"

	"github.com/SergeiGolos/wod-wiki-runtime/internal/action"
	"github.com/SergeiGolos/wod-wiki-runtime/internal/memory"
)

// Event is one unit dispatched through the bus.
type Event struct {
	Name      string
	Timestamp time.Time
	Data      any
}

// Scope controls when a handler fires relative to the current stack top.
type Scope int

const (
	// ScopeActive fires only when the dispatch-time current block key
	// equals the handler's owner.
	ScopeActive Scope = iota
	// ScopeBubble fires whenever the event name matches, regardless of
	// which block is current — used by ancestors observing descendants.
	ScopeBubble
)

// Result lets a handler stop further dispatch of the same event within its
// own owner level by returning ShouldContinue=false.
type Result struct {
	Actions         []action.Action
	ShouldContinue  bool
}

// Handler reacts to an Event and returns zero or more Actions.
type Handler func(ev Event) Result

type registration struct {
	pattern string // "*" or an exact event name
	handler Handler
	owner   memory.Key
	scope   Scope
}

// CurrentKeyFunc reports the key of the block currently on top of the
// stack, so the bus can implement ScopeActive without importing the stack
// package.
type CurrentKeyFunc func() (memory.Key, bool)

// OwnerOrderFunc returns owner keys from top-of-stack to root, the
// dispatch-order the spec mandates ("owners are visited top of stack →
// root", §4.3).
type OwnerOrderFunc func() []memory.Key

// Bus is the process-local event dispatcher for one ScriptRuntime.
type Bus struct {
	regs       []*registration
	currentKey CurrentKeyFunc
	ownerOrder OwnerOrderFunc
}

// New builds a Bus. currentKey/ownerOrder are supplied by the orchestrator
// once the stack exists; both may be nil until then (dispatch is then a
// no-op for active-scope handlers).
func New(currentKey CurrentKeyFunc, ownerOrder OwnerOrderFunc) *Bus {
	return &Bus{currentKey: currentKey, ownerOrder: ownerOrder}
}

// Register subscribes handler to pattern ("*" or an exact event name),
// owned by owner, with the given dispatch scope.
func (b *Bus) Register(pattern string, owner memory.Key, scope Scope, handler Handler) {
	b.regs = append(b.regs, &registration{pattern: pattern, handler: handler, owner: owner, scope: scope})
}

// DeregisterOwner removes every handler owned by owner — invoked when a
// block disposes (§4.3 lifecycle).
func (b *Bus) DeregisterOwner(owner memory.Key) {
	kept := b.regs[:0]
	for _, r := range b.regs {
		if r.owner != owner {
			kept = append(kept, r)
		}
	}
	b.regs = kept
}

// Dispatch runs every matching handler for ev, in owner order (top of
// stack → root), and returns the concatenation of their Actions in the
// order produced. A handler returning ShouldContinue=false stops further
// dispatch to handlers of the *same owner* for this event, but other
// owners still run.
func (b *Bus) Dispatch(ev Event) []action.Action {
	order := b.ownersInDispatchOrder()
	var out []action.Action

	for _, owner := range order {
		for _, r := range b.regs {
			if r.owner != owner {
				continue
			}
			if !matches(r.pattern, ev.Name) {
				continue
			}
			if !b.fires(r, owner) {
				continue
			}
			res := r.handler(ev)
			out = append(out, res.Actions...)
			if !res.ShouldContinue {
				break
			}
		}
	}

	// Handlers whose owner never appears in ownerOrder (e.g. the runtime
	// itself, RuntimeOwner) still get a pass so process-global listeners
	// fire even with an empty stack. Scope and the per-owner stop rule apply
	// here as in the ordered pass.
	stopped := map[memory.Key]bool{}
	for _, r := range b.regs {
		if containsKey(order, r.owner) || stopped[r.owner] {
			continue
		}
		if !matches(r.pattern, ev.Name) {
			continue
		}
		if !b.fires(r, r.owner) {
			continue
		}
		res := r.handler(ev)
		out = append(out, res.Actions...)
		if !res.ShouldContinue {
			stopped[r.owner] = true
		}
	}

	return out
}

func (b *Bus) fires(r *registration, owner memory.Key) bool {
	if r.scope == ScopeActive {
		if b.currentKey == nil {
			return false
		}
		cur, ok := b.currentKey()
		return ok && cur == owner
	}
	return true // ScopeBubble always fires when the pattern matches
}

func (b *Bus) ownersInDispatchOrder() []memory.Key {
	if b.ownerOrder == nil {
		return nil
	}
	return b.ownerOrder()
}

func matches(pattern, name string) bool {
	return pattern == "*" || pattern == name
}

func containsKey(keys []memory.Key, k memory.Key) bool {
	for _, x := range keys {
		if x == k {
			return true
		}
	}
	return false
}
