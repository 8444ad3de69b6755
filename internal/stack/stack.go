// Package stack implements the Runtime Stack (spec.md §4.7): the ordered
// LIFO of blocks the orchestrator drives, with parent linkage on push and
// an explicit pop-without-dispose ownership handoff.
package stack

import (
	"time"

	"github.com/SergeiGolos/wod-wiki-runtime/internal/block"
	"github.com/SergeiGolos/wod-wiki-runtime/internal/memory"
)

// ObservationType discriminates the events a Stack emits to subscribers.
type ObservationType int

const (
	ObservePush ObservationType = iota
	ObservePop
	ObserveClear
)

// Observation is emitted on push/pop/clear (§4.7).
type Observation struct {
	Type       ObservationType
	Block      *block.Block // nil for ObserveClear
	StackDepth int
	Timestamp  time.Time
}

// Observer receives stack observations synchronously.
type Observer func(Observation)

// NowFunc supplies the wall time stamped onto observations.
type NowFunc func() time.Time

// Stack is the ordered LIFO of blocks. The last element is top/current.
type Stack struct {
	blocks    []*block.Block
	observers []Observer
	now       NowFunc
}

// New creates an empty Stack. now defaults to time.Now.
func New(now NowFunc) *Stack {
	if now == nil {
		now = time.Now
	}
	return &Stack{now: now}
}

// Subscribe registers an Observer, returning an unsubscribe function.
func (s *Stack) Subscribe(obs Observer) func() {
	s.observers = append(s.observers, obs)
	idx := len(s.observers) - 1
	return func() {
		if idx < len(s.observers) {
			s.observers[idx] = nil
		}
	}
}

func (s *Stack) notify(o Observation) {
	for _, obs := range s.observers {
		if obs != nil {
			obs(o)
		}
	}
}

// Push sets blk's parent to the previous current and appends blk to the
// top of the stack.
func (s *Stack) Push(blk *block.Block) {
	if cur := s.Current(); cur != nil {
		blk.SetParent(cur)
	}
	s.blocks = append(s.blocks, blk)
	s.notify(Observation{Type: ObservePush, Block: blk, StackDepth: s.Depth(), Timestamp: s.now()})
}

// Pop removes and returns the top block WITHOUT disposing it — the caller
// owns the dispose call exactly once (§4.7 ownership handoff). Returns
// nil, false on an empty stack.
func (s *Stack) Pop() (*block.Block, bool) {
	if len(s.blocks) == 0 {
		return nil, false
	}
	last := len(s.blocks) - 1
	blk := s.blocks[last]
	s.blocks = s.blocks[:last]
	s.notify(Observation{Type: ObservePop, Block: blk, StackDepth: s.Depth(), Timestamp: s.now()})
	return blk, true
}

// Current returns the top block, or nil if the stack is empty.
func (s *Stack) Current() *block.Block {
	if len(s.blocks) == 0 {
		return nil
	}
	return s.blocks[len(s.blocks)-1]
}

// Blocks returns blocks bottom-first (root first, current last).
func (s *Stack) Blocks() []*block.Block {
	out := make([]*block.Block, len(s.blocks))
	copy(out, s.blocks)
	return out
}

// BlocksTopFirst returns blocks current-first, root last.
func (s *Stack) BlocksTopFirst() []*block.Block {
	out := s.Blocks()
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Depth returns the number of blocks currently on the stack.
func (s *Stack) Depth() int { return len(s.blocks) }

// IsEmpty reports whether the stack has no blocks.
func (s *Stack) IsEmpty() bool { return len(s.blocks) == 0 }

// Clear drops every block reference without disposing any of them — same
// handoff contract as Pop, batched. Callers that need clean teardown must
// dispose every returned block themselves.
func (s *Stack) Clear() []*block.Block {
	out := s.blocks
	s.blocks = nil
	s.notify(Observation{Type: ObserveClear, StackDepth: 0, Timestamp: s.now()})
	return out
}

// FindByKey returns the block with the given key, if present.
func (s *Stack) FindByKey(key memory.Key) (*block.Block, bool) {
	for _, blk := range s.blocks {
		if blk.Key == key {
			return blk, true
		}
	}
	return nil, false
}

// GetParentBlocks returns every block except the current one, bottom-first.
func (s *Stack) GetParentBlocks() []*block.Block {
	if len(s.blocks) == 0 {
		return nil
	}
	out := make([]*block.Block, len(s.blocks)-1)
	copy(out, s.blocks[:len(s.blocks)-1])
	return out
}

// GetRoot returns the bottom-most block, or nil if empty.
func (s *Stack) GetRoot() *block.Block {
	if len(s.blocks) == 0 {
		return nil
	}
	return s.blocks[0]
}
