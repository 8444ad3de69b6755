package behavior

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SergeiGolos/wod-wiki-runtime/internal/action"
	"github.com/SergeiGolos/wod-wiki-runtime/internal/memory"
)

func eventNames(acts []action.Action) []string {
	var names []string
	for _, a := range acts {
		if a.Kind == action.KindEventEmit {
			names = append(names, a.Payload.(action.EventEmitPayload).Name)
		}
	}
	return names
}

func pushPosition(t *testing.T, acts []action.Action) int {
	t.Helper()
	for _, a := range acts {
		if a.Kind == action.KindStackPushChildGroup {
			return a.Payload.(action.StackPushChildGroupPayload).GroupIndex
		}
	}
	t.Fatal("no push-child-group action found")
	return -1
}

// applyMemorySets performs the Memory-phase writes in acts against store,
// as the runtime's pipeline would.
func applyMemorySets(store *memory.Store, acts []action.Action) {
	for _, a := range acts {
		if a.Kind == action.KindMemorySet {
			p := a.Payload.(action.MemorySetPayload)
			store.SetRaw(p.Ref, p.Value)
		}
	}
}

func TestLoopCoordinatorFixedModeRunsExactlyTotalRoundsTimes(t *testing.T) {
	host := newFakeHost(memory.NewStore(), "b1", 1)
	coord := NewLoopCoordinator(LoopConfig{Mode: ModeFixed, TotalRounds: 3})

	mountActs := coord.OnMount(host)
	assert.Equal(t, 0, pushPosition(t, mountActs))
	assert.Contains(t, eventNames(mountActs), "rounds:changed")
	assert.False(t, coord.IsComplete(1))

	coord.OnNext(host)
	assert.False(t, coord.IsComplete(1))

	lastActs := coord.OnNext(host)
	assert.Contains(t, eventNames(lastActs), "rounds:complete")
	assert.Contains(t, eventNames(lastActs), "reps:complete")
	assert.True(t, coord.IsComplete(1))

	exhausted := coord.OnNext(host)
	assert.Empty(t, exhausted)
}

func TestLoopCoordinatorPositionCyclesThroughChildGroups(t *testing.T) {
	host := newFakeHost(memory.NewStore(), "b1", 2)
	coord := NewLoopCoordinator(LoopConfig{Mode: ModeFixed, TotalRounds: 2})

	first := coord.OnMount(host)
	assert.Equal(t, 0, pushPosition(t, first))

	second := coord.OnNext(host)
	assert.Equal(t, 1, pushPosition(t, second))

	third := coord.OnNext(host)
	assert.Equal(t, 0, pushPosition(t, third))
}

func TestLoopCoordinatorRepSchemeDerivesTotalRoundsFromLen(t *testing.T) {
	host := newFakeHost(memory.NewStore(), "b1", 1)
	coord := NewLoopCoordinator(LoopConfig{Mode: ModeRepScheme, Reps: []int{21, 15, 9}})

	assert.Equal(t, 3, coord.Config.TotalRounds)

	applyMemorySets(host.ctx.Store(), coord.OnMount(host))
	reps0, ok := memory.Get(host.ctx.Store(), coord.repsRef)
	require.True(t, ok)
	assert.Equal(t, 21, reps0)

	applyMemorySets(host.ctx.Store(), coord.OnNext(host))
	reps1, ok := memory.Get(host.ctx.Store(), coord.repsRef)
	require.True(t, ok)
	assert.Equal(t, 15, reps1)
}

func TestLoopCoordinatorTimeBoundNeverSelfCompletes(t *testing.T) {
	host := newFakeHost(memory.NewStore(), "b1", 1)
	coord := NewLoopCoordinator(LoopConfig{Mode: ModeTimeBound})

	for i := 0; i < 50; i++ {
		coord.OnNext(host)
	}

	assert.False(t, coord.IsComplete(1))
}

func TestLoopCoordinatorIntervalAdvancesOnTickBoundary(t *testing.T) {
	store := memory.NewStore()
	host := newFakeHost(store, "b1", 1)
	coord := NewLoopCoordinator(LoopConfig{Mode: ModeInterval, TotalRounds: 3, IntervalDurationMs: 60000})

	mountActs := coord.OnMount(host)
	tick, ok := findHandler(mountActs, "tick")
	require.True(t, ok)

	// Within the first minute: no additional push.
	host.advanceNow(30 * time.Second)
	assert.Empty(t, tick("tick", nil, host.Now()))

	// Crossing the first full minute: one push.
	host.advanceNow(31 * time.Second)
	produced := tick("tick", nil, host.Now())
	assert.Equal(t, 0, pushPosition(t, produced))
}
