package runtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SergeiGolos/wod-wiki-runtime/internal/fragment"
	"github.com/SergeiGolos/wod-wiki-runtime/internal/statement"
	"github.com/SergeiGolos/wod-wiki-runtime/internal/wrerrors"
)

// groupWithOneEffort builds a two-statement script: a root Group wrapping
// a single Effort leaf, mirroring the simplest real §8 shape a driver
// would push through Start/Handle.
func groupWithOneEffort() statement.Script {
	return statement.Script{
		Root: []int{1},
		Statements: map[int]statement.Statement{
			1: {
				ID:        1,
				Fragments: []fragment.Fragment{{Kind: fragment.KindText, Text: "workout"}},
				Children:  [][]int{{2}},
			},
			2: {
				ID:        2,
				Fragments: []fragment.Fragment{{Kind: fragment.KindEffort, Name: "Run"}},
			},
		},
	}
}

func TestStartPushesRootAndDisplaysIt(t *testing.T) {
	rt := New(groupWithOneEffort())

	err := rt.Start()

	require.NoError(t, err)
	// The root Group's LoopCoordinatorBehavior pre-advances to index 0 on
	// OnMount and pushes its sole child group synchronously, within the
	// same processAllPhases call Start() drives — so the stack already
	// holds both the root and its first child by the time Start returns.
	assert.Equal(t, 2, rt.Stack().Depth())
	// Every mounted block pushes one display item. The root carries only a
	// Text fragment, so its derived label is the "block" fallback.
	require.Len(t, rt.Display(), 2)
	assert.Equal(t, "block", rt.Display()[0].Label)
	assert.Equal(t, "Run", rt.Display()[1].Label)
}

func TestNextEventDrivesChildThroughMountAndCompletion(t *testing.T) {
	rt := New(groupWithOneEffort())
	require.NoError(t, rt.Start())

	err := rt.Handle("next", nil)

	require.NoError(t, err)
	assert.Empty(t, rt.Errors())
	assert.True(t, rt.IsComplete(), "root's only child group is Fixed{1}; after one productive next the loop is exhausted")
}

func TestIsCompleteReflectsStackDepth(t *testing.T) {
	rt := New(groupWithOneEffort())
	assert.True(t, rt.IsComplete(), "before Start, the stack is empty")

	require.NoError(t, rt.Start())
	assert.False(t, rt.IsComplete(), "depth 2 (root plus its pre-advanced first child) is not yet complete")
}

func TestStartReturnsErrorForUnresolvableRoot(t *testing.T) {
	rt := New(statement.Script{Root: []int{99}, Statements: map[int]statement.Statement{}})

	err := rt.Start()

	require.Error(t, err)
	assert.NotEmpty(t, rt.Errors())
}

func TestHandleUnknownEventNameIsANoOp(t *testing.T) {
	rt := New(groupWithOneEffort())
	require.NoError(t, rt.Start())

	err := rt.Handle("no-such-event", nil)

	assert.NoError(t, err)
}

func TestWithNowOverridesWallClockSource(t *testing.T) {
	fixed := time.Unix(12345, 0)
	rt := New(groupWithOneEffort(), WithNow(func() time.Time { return fixed }))

	require.NoError(t, rt.Start())

	assert.Equal(t, fixed, rt.Stack().Current().Now())
}

func TestWithMaxIterationsBoundsPipelineOverflow(t *testing.T) {
	// With max_iterations 1, Start's first pass pushes the Effort child,
	// whose mount actions need a second pass, so Start always overflows.
	rt := New(groupWithOneEffort(), WithMaxIterations(1))

	err := rt.Start()

	require.Error(t, err)
	assert.True(t, wrerrors.IsPipelineOverflowError(err))
}
