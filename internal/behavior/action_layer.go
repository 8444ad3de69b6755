package behavior

import (
	"time"

	"github.com/SergeiGolos/wod-wiki-runtime/internal/action"
	"github.com/SergeiGolos/wod-wiki-runtime/internal/fragment"
	"github.com/SergeiGolos/wod-wiki-runtime/internal/memory"
)

// UserAction is a single control surfaced to an external driver (CLI/TUI,
// websocket bridge, …) for the block it is attached to — "what can the
// athlete do right now" (§4.5 ActionLayerBehavior).
type UserAction struct {
	Name  string // event name this action emits when invoked, e.g. "next", "pause"
	Label string
}

// RegisterEventHandlerRequest is the payload an external driver sends on
// the "register-event-handler" event to attach a transient reaction to one
// of this block's fragment-derived action names (e.g. "pause") without the
// core ever needing to know about the driver's UI widgets (spec.md §6).
type RegisterEventHandlerRequest struct {
	EventName string
	Scope     action.HandlerScope
	Fn        action.HandlerFunc
}

// ActionLayerBehavior derives the available UserActions from the block's
// fragments and publishes them to memory so a driver can read and offer
// them without reaching into behavior internals. It also lets a driver
// register its own transient handler for one of those action names.
type ActionLayerBehavior struct {
	NoopBehavior

	actionsRef memory.Reference[[]UserAction]
}

// NewActionLayer builds an ActionLayerBehavior.
func NewActionLayer() *ActionLayerBehavior {
	return &ActionLayerBehavior{}
}

func (a *ActionLayerBehavior) OnMount(h Host) []action.Action {
	ctx := h.MemoryContext()
	actions := deriveActions(h.Fragments())
	a.actionsRef = memory.AllocatePublic(ctx, "actions:available", actions)

	owner := h.Key()
	return []action.Action{
		registerAction(owner, "register-event-handler", action.ScopeActive, a.onRegisterEventHandler(owner)),
	}
}

// onRegisterEventHandler relays a driver's RegisterEventHandlerRequest into
// a real RegisterHandler action against this block's owner key, so the
// driver never needs to import action/eventbus to wire its own reaction to
// a surfaced UserAction.
func (a *ActionLayerBehavior) onRegisterEventHandler(owner memory.Key) action.HandlerFunc {
	return func(_ string, data any, _ time.Time) []action.Action {
		req, ok := data.(RegisterEventHandlerRequest)
		if !ok {
			return nil
		}
		return []action.Action{registerAction(owner, req.EventName, req.Scope, req.Fn)}
	}
}

// Actions returns the currently published UserActions.
func (a *ActionLayerBehavior) Actions(h Host) []UserAction {
	actions, _ := memory.Get(h.MemoryContext().Store(), a.actionsRef)
	return actions
}

// Publish overwrites the published action list — used when a block's
// available controls change mid-life (e.g. a timer finishing removes
// "pause").
func (a *ActionLayerBehavior) Publish(h Host, actions []UserAction) {
	memory.Set(h.MemoryContext().Store(), a.actionsRef, actions)
}

// deriveActions maps a block's compiled fragments to the controls an
// athlete can invoke against it. Every block gets "next"; a Timer fragment
// additionally offers pause/resume.
func deriveActions(fragments []fragment.Fragment) []UserAction {
	actions := []UserAction{{Name: "next", Label: "Next"}}
	for _, f := range fragments {
		if f.Kind == fragment.KindTimer {
			actions = append(actions,
				UserAction{Name: "pause", Label: "Pause"},
				UserAction{Name: "resume", Label: "Resume"},
			)
			break
		}
	}
	return actions
}
