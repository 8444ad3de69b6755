package behavior

import (
	"time"

	"github.com/SergeiGolos/wod-wiki-runtime/internal/action"
)

// Predicate decides whether a block has completed. It sees only what Host
// exposes, plus an explicit completion signal surface (e.g. "has the
// attached LoopCoordinatorBehavior run dry?") supplied by the block
// assembler as a closure — CompletionBehavior itself carries no knowledge
// of sibling behaviors.
type Predicate func(h Host) bool

// CompletionBehavior pops its block once Predicate holds, triggered by any
// of EventTriggers (default: just "next", i.e. the block's own OnNext
// hook) (§4.5).
type CompletionBehavior struct {
	NoopBehavior

	Predicate      Predicate
	EventTriggers  []string // event names (besides "next") that re-check Predicate
	CheckOnPush    bool     // if false, OnMount never checks (leaf blocks avoid self-pop during mount recursion)
}

// NewCompletion builds a CompletionBehavior. checkOnPush=false is the
// default leaf-block posture the spec calls out explicitly.
func NewCompletion(pred Predicate, checkOnPush bool, triggers ...string) *CompletionBehavior {
	return &CompletionBehavior{Predicate: pred, EventTriggers: triggers, CheckOnPush: checkOnPush}
}

func (c *CompletionBehavior) OnMount(h Host) []action.Action {
	acts := c.registerTriggers(h)
	if !c.CheckOnPush {
		return acts
	}
	return append(acts, c.check(h)...)
}

func (c *CompletionBehavior) OnNext(h Host) []action.Action {
	return c.check(h)
}

func (c *CompletionBehavior) check(h Host) []action.Action {
	if c.Predicate == nil || !c.Predicate(h) {
		return nil
	}
	return []action.Action{popAction(h.Key())}
}

// registerTriggers hooks CompletionBehavior into any extra named events
// (beyond "next", which OnNext already covers) it should re-check on.
func (c *CompletionBehavior) registerTriggers(h Host) []action.Action {
	var acts []action.Action
	for _, name := range c.EventTriggers {
		name := name
		acts = append(acts, registerAction(h.Key(), name, action.ScopeActive, func(string, any, time.Time) []action.Action {
			return c.check(h)
		}))
	}
	return acts
}
