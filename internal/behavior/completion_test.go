package behavior

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SergeiGolos/wod-wiki-runtime/internal/action"
	"github.com/SergeiGolos/wod-wiki-runtime/internal/memory"
)

func TestCompletionOnNextPopsWhenPredicateHolds(t *testing.T) {
	host := newFakeHost(memory.NewStore(), "b1", 0)
	c := NewCompletion(func(Host) bool { return true }, false)

	acts := c.OnNext(host)

	require.Len(t, acts, 1)
	assert.Equal(t, action.KindStackPop, acts[0].Kind)
	assert.Equal(t, memory.Key("b1"), acts[0].BlockKey)
}

func TestCompletionOnNextDoesNothingWhenPredicateFalse(t *testing.T) {
	host := newFakeHost(memory.NewStore(), "b1", 0)
	c := NewCompletion(func(Host) bool { return false }, false)

	acts := c.OnNext(host)

	assert.Empty(t, acts)
}

func TestCompletionCheckOnPushGatesMountTimeCheck(t *testing.T) {
	host := newFakeHost(memory.NewStore(), "b1", 0)

	leaf := NewCompletion(func(Host) bool { return true }, false)
	assert.Empty(t, leaf.OnMount(host), "checkOnPush=false must never pop at mount time")

	eager := NewCompletion(func(Host) bool { return true }, true)
	acts := eager.OnMount(host)
	require.Len(t, acts, 1)
	assert.Equal(t, action.KindStackPop, acts[0].Kind)
}

func TestCompletionEventTriggersReEvaluatePredicate(t *testing.T) {
	host := newFakeHost(memory.NewStore(), "b1", 0)
	done := false
	c := NewCompletion(func(Host) bool { return done }, false, "timer:complete")

	mountActs := c.OnMount(host)
	trigger, ok := findHandler(mountActs, "timer:complete")
	require.True(t, ok)

	assert.Empty(t, trigger("timer:complete", nil, host.Now()))

	done = true
	acts := trigger("timer:complete", nil, host.Now())
	require.Len(t, acts, 1)
	assert.Equal(t, action.KindStackPop, acts[0].Kind)
}
