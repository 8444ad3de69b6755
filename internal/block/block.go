// Package block implements the Runtime Block (spec.md §4.6): the concrete
// stack unit that owns a memory context, an ordered list of behaviors, and
// the compiled fragments/metrics produced by the JIT compiler. Block
// satisfies behavior.Host structurally, so behavior never needs to import
// this package.
package block

import (
	"time"

	"github.com/SergeiGolos/wod-wiki-runtime/internal/action"
	"github.com/SergeiGolos/wod-wiki-runtime/internal/behavior"
	"github.com/SergeiGolos/wod-wiki-runtime/internal/fragment"
	"github.com/SergeiGolos/wod-wiki-runtime/internal/memory"
)

// NowFunc lets the block read wall time through the runtime's clock
// source rather than time.Now directly, so tests can freeze time.
type NowFunc func() time.Time

// Block is a compiled, stack-resident unit representing one statement (or
// compiled group of statements) (§3 Block).
type Block struct {
	Key       memory.Key
	SourceIDs []int
	BlockType string
	Label     string

	Context   *memory.Context
	Behaviors []behavior.Behavior

	Fragments       []fragment.Fragment
	CompiledMetrics fragment.RuntimeMetric
	ChildGroups     [][]int

	now NowFunc

	parent       *Block
	parentSpanID string

	disposed bool
}

// Config groups the construction-time fields a JIT strategy supplies when
// building a Block.
type Config struct {
	Key             memory.Key
	SourceIDs       []int
	BlockType       string
	Label           string
	Store           *memory.Store
	Fragments       []fragment.Fragment
	CompiledMetrics fragment.RuntimeMetric
	ChildGroups     [][]int
	Now             NowFunc
}

// New builds a Block with a fresh memory.Context scoped to cfg.Key. The
// caller attaches Behaviors afterward (behaviors are assembled by the JIT
// strategy, which knows the fragment shape).
func New(cfg Config) *Block {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Block{
		Key:             cfg.Key,
		SourceIDs:       cfg.SourceIDs,
		BlockType:       cfg.BlockType,
		Label:           cfg.Label,
		Context:         memory.NewContext(cfg.Store, cfg.Key),
		Fragments:       cfg.Fragments,
		CompiledMetrics: cfg.CompiledMetrics,
		ChildGroups:     cfg.ChildGroups,
		now:             now,
	}
}

// Attach appends behaviors to the block's behavior list, in invocation
// order.
func (b *Block) Attach(behaviors ...behavior.Behavior) {
	b.Behaviors = append(b.Behaviors, behaviors...)
}

// SetParent links b to its stack parent, recording the parent's span id
// (if its behaviors include a HistoryBehavior) for child TrackedSpans.
// Called by the stack on push; not meant to be cached beyond the current
// tenure on the stack (§9 "recompute from the stack on demand").
func (b *Block) SetParent(parent *Block) {
	b.parent = parent
	if parent == nil {
		b.parentSpanID = ""
		return
	}
	parentHost := parent.Host()
	for _, bh := range parent.Behaviors {
		if hb, ok := bh.(*behavior.HistoryBehavior); ok {
			if span, ok := hb.Span(parentHost); ok {
				b.parentSpanID = span.ID
			}
			break
		}
	}
}

// Parent returns the block's current stack parent, or nil at the root.
func (b *Block) Parent() *Block { return b.parent }

// --- behavior.Host ---

func (b *Block) ParentKey() (memory.Key, bool) {
	if b.parent == nil {
		return "", false
	}
	return b.parent.Key, true
}

func (b *Block) ParentSpanID() (string, bool) {
	if b.parentSpanID == "" {
		return "", false
	}
	return b.parentSpanID, true
}

func (b *Block) MemoryContext() *memory.Context { return b.Context }
func (b *Block) ChildGroupCount() int           { return len(b.ChildGroups) }
func (b *Block) Now() time.Time                 { return b.now() }

// behavior.Host requires a Key() method; Go forbids a method and a field
// sharing one name on the same type, and Block.Key is a plain exported
// field (matching the teacher's preference for data-first structs over
// getters). hostView adapts Block to behavior.Host around that clash.
type hostView struct{ b *Block }

func (h hostView) Key() memory.Key                        { return h.b.Key }
func (h hostView) Label() string                           { return h.b.Label }
func (h hostView) ParentKey() (memory.Key, bool)           { return h.b.ParentKey() }
func (h hostView) ParentSpanID() (string, bool)            { return h.b.ParentSpanID() }
func (h hostView) MemoryContext() *memory.Context          { return h.b.MemoryContext() }
func (h hostView) Fragments() []fragment.Fragment          { return h.b.Fragments }
func (h hostView) CompiledMetrics() fragment.RuntimeMetric { return h.b.CompiledMetrics }
func (h hostView) ChildGroupCount() int                    { return h.b.ChildGroupCount() }
func (h hostView) Now() time.Time                          { return h.b.Now() }

// Host returns the behavior.Host view of this block.
func (b *Block) Host() behavior.Host { return hostView{b: b} }

// --- lifecycle ---

// Mount delegates to every behavior's OnMount in order, concatenating
// actions, then appends the conventional display-push action (§4.6).
func (b *Block) Mount() []action.Action {
	var acts []action.Action
	h := b.Host()
	for _, bh := range b.Behaviors {
		acts = append(acts, bh.OnMount(h)...)
	}
	acts = append(acts, action.Action{
		Phase:    action.Display,
		Kind:     action.KindDisplayPush,
		BlockKey: b.Key,
		Payload:  action.DisplayPushPayload{Label: b.Label},
	})
	return acts
}

// Next delegates to every behavior's OnNext in order.
func (b *Block) Next() []action.Action {
	var acts []action.Action
	h := b.Host()
	for _, bh := range b.Behaviors {
		acts = append(acts, bh.OnNext(h)...)
	}
	return acts
}

// Unmount delegates to every behavior's OnUnmount in order, then appends
// the conventional display-pop action.
func (b *Block) Unmount() []action.Action {
	var acts []action.Action
	h := b.Host()
	for _, bh := range b.Behaviors {
		acts = append(acts, bh.OnUnmount(h)...)
	}
	acts = append(acts, action.Action{
		Phase:    action.Display,
		Kind:     action.KindDisplayPop,
		BlockKey: b.Key,
		Payload:  action.DisplayPopPayload{},
	})
	return acts
}

// Dispose releases all memory owned by the block's context and notifies
// every behavior's OnDispose. Idempotent — a second call is a no-op — and
// never panics, matching §4.6's "must be idempotent and must not throw".
func (b *Block) Dispose() {
	if b.disposed {
		return
	}
	b.disposed = true
	h := b.Host()
	for _, bh := range b.Behaviors {
		bh.OnDispose(h)
	}
	b.Context.Dispose()
	b.parent = nil
}

// Disposed reports whether Dispose has already run.
func (b *Block) Disposed() bool { return b.disposed }
