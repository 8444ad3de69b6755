package stack

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SergeiGolos/wod-wiki-runtime/internal/block"
	"github.com/SergeiGolos/wod-wiki-runtime/internal/memory"
)

func newTestBlockWithKey(store *memory.Store, key memory.Key) *block.Block {
	return block.New(block.Config{Key: key, BlockType: "effort", Label: string(key), Store: store})
}

func TestPushSetsParentToPreviousCurrent(t *testing.T) {
	store := memory.NewStore()
	s := New(nil)
	root := newTestBlockWithKey(store, "root")
	child := newTestBlockWithKey(store, "child")

	s.Push(root)
	s.Push(child)

	assert.Equal(t, root, child.Parent())
	assert.Nil(t, root.Parent())
}

func TestPopDoesNotDisposeTheReturnedBlock(t *testing.T) {
	store := memory.NewStore()
	s := New(nil)
	blk := newTestBlockWithKey(store, "b1")
	s.Push(blk)

	popped, ok := s.Pop()
	require.True(t, ok)
	assert.Same(t, blk, popped)
	assert.False(t, popped.Disposed(), "Pop must hand off dispose ownership, never dispose itself")
}

func TestPopOnEmptyStackReturnsFalse(t *testing.T) {
	s := New(nil)
	blk, ok := s.Pop()
	assert.False(t, ok)
	assert.Nil(t, blk)
}

func TestClearDropsAllBlocksWithoutDisposing(t *testing.T) {
	store := memory.NewStore()
	s := New(nil)
	a := newTestBlockWithKey(store, "a")
	b := newTestBlockWithKey(store, "b")
	s.Push(a)
	s.Push(b)

	cleared := s.Clear()

	assert.Len(t, cleared, 2)
	assert.True(t, s.IsEmpty())
	assert.False(t, a.Disposed())
	assert.False(t, b.Disposed())
}

func TestBlocksTopFirstReversesBlocks(t *testing.T) {
	store := memory.NewStore()
	s := New(nil)
	a := newTestBlockWithKey(store, "a")
	b := newTestBlockWithKey(store, "b")
	c := newTestBlockWithKey(store, "c")
	s.Push(a)
	s.Push(b)
	s.Push(c)

	bottomFirst := s.Blocks()
	topFirst := s.BlocksTopFirst()

	require.Len(t, bottomFirst, 3)
	require.Len(t, topFirst, 3)
	assert.Equal(t, []*block.Block{a, b, c}, bottomFirst)
	assert.Equal(t, []*block.Block{c, b, a}, topFirst)
}

func TestGetParentBlocksExcludesCurrent(t *testing.T) {
	store := memory.NewStore()
	s := New(nil)
	a := newTestBlockWithKey(store, "a")
	b := newTestBlockWithKey(store, "b")
	c := newTestBlockWithKey(store, "c")
	s.Push(a)
	s.Push(b)
	s.Push(c)

	parents := s.GetParentBlocks()

	assert.Equal(t, []*block.Block{a, b}, parents)
}

func TestGetRootReturnsBottomMostBlock(t *testing.T) {
	store := memory.NewStore()
	s := New(nil)
	assert.Nil(t, s.GetRoot())

	a := newTestBlockWithKey(store, "a")
	b := newTestBlockWithKey(store, "b")
	s.Push(a)
	s.Push(b)

	assert.Same(t, a, s.GetRoot())
}

func TestFindByKeyLocatesBlockAnywhereInStack(t *testing.T) {
	store := memory.NewStore()
	s := New(nil)
	a := newTestBlockWithKey(store, "a")
	b := newTestBlockWithKey(store, "b")
	s.Push(a)
	s.Push(b)

	found, ok := s.FindByKey("a")
	require.True(t, ok)
	assert.Same(t, a, found)

	_, ok = s.FindByKey("missing")
	assert.False(t, ok)
}

func TestSubscribeReceivesPushPopClearObservationsInOrder(t *testing.T) {
	store := memory.NewStore()
	fixed := time.Unix(500, 0)
	s := New(func() time.Time { return fixed })
	var observed []ObservationType
	unsubscribe := s.Subscribe(func(o Observation) {
		observed = append(observed, o.Type)
		assert.Equal(t, fixed, o.Timestamp)
	})

	blk := newTestBlockWithKey(store, "a")
	s.Push(blk)
	s.Pop()
	s.Clear()

	assert.Equal(t, []ObservationType{ObservePush, ObservePop, ObserveClear}, observed)

	unsubscribe()
	s.Push(newTestBlockWithKey(store, "b"))
	assert.Len(t, observed, 3, "unsubscribed observer must not be notified again")
}

func TestPushObservationReportsCurrentDepth(t *testing.T) {
	store := memory.NewStore()
	s := New(nil)
	var depths []int
	s.Subscribe(func(o Observation) {
		if o.Type == ObservePush {
			depths = append(depths, o.StackDepth)
		}
	})

	s.Push(newTestBlockWithKey(store, "a"))
	s.Push(newTestBlockWithKey(store, "b"))

	assert.Equal(t, []int{1, 2}, depths)
}
