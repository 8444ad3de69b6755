package fragment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileIsPureAndOrderPreserving(t *testing.T) {
	fs := []Fragment{
		{Kind: KindEffort, Name: "Thrusters"},
		{Kind: KindRepetitions, Reps: 21},
		{Kind: KindResistance, Amount: 45, Unit: "lb"},
	}

	m1 := Compile(1, fs)
	m2 := Compile(1, fs)

	require.Equal(t, m1, m2)
	assert.Equal(t, "Thrusters", m1.ExerciseID)
	require.Len(t, m1.Values, 3)
	assert.Equal(t, MetricEffort, m1.Values[0].Kind)
	assert.Equal(t, MetricRepetitions, m1.Values[1].Kind)
	assert.Equal(t, MetricResistance, m1.Values[2].Kind)
}

func TestCompileRoundsSchemeExpandsToRepetitions(t *testing.T) {
	fs := []Fragment{{Kind: KindRounds, Values: []int{21, 15, 9}}}
	m := Compile(1, fs)

	require.Len(t, m.Values, 4)
	assert.Equal(t, MetricRounds, m.Values[0].Kind)
	assert.Equal(t, float64(3), m.Values[0].Value)
	for i, want := range []float64{21, 15, 9} {
		assert.Equal(t, MetricRepetitions, m.Values[i+1].Kind)
		assert.Equal(t, want, m.Values[i+1].Value)
	}
}

func TestCompileRoundsCountIsMultiplierNotScheme(t *testing.T) {
	fs := []Fragment{{Kind: KindRounds, Count: 5}}
	m := Compile(1, fs)

	require.Len(t, m.Values, 1)
	assert.Equal(t, MetricRepetitions, m.Values[0].Kind)
	assert.Equal(t, float64(5), m.Values[0].Value)
}

func TestCompileTimerDownIsNegative(t *testing.T) {
	fs := []Fragment{{Kind: KindTimer, ValueMs: 1200000, Direction: Down}}
	m := Compile(1, fs)

	require.Len(t, m.Values, 1)
	assert.Equal(t, float64(-1200000), m.Values[0].Value)
}

func TestExtractRoundsScheme(t *testing.T) {
	spec, ok := ExtractRounds([]Fragment{{Kind: KindRounds, Values: []int{21, 15, 9}}})
	require.True(t, ok)
	assert.True(t, spec.IsScheme)
	assert.Equal(t, []int{21, 15, 9}, spec.Reps)
}

func TestExtractRoundsCount(t *testing.T) {
	spec, ok := ExtractRounds([]Fragment{{Kind: KindRounds, Count: 4}})
	require.True(t, ok)
	assert.False(t, spec.IsScheme)
	assert.Equal(t, 4, spec.Count)
}

func TestExtractTimerMsAlwaysPositive(t *testing.T) {
	ms, dir, ok := ExtractTimerMs([]Fragment{{Kind: KindTimer, ValueMs: -60000, Direction: Down}})
	require.True(t, ok)
	assert.Equal(t, int64(60000), ms)
	assert.Equal(t, Down, dir)
}

func TestActionContainsIsCaseSensitiveSubstring(t *testing.T) {
	fs := []Fragment{{Kind: KindAction, Name: "20:00 AMRAP"}}
	assert.True(t, ActionContains(fs, "AMRAP"))
	assert.False(t, ActionContains(fs, "amrap"))
	assert.False(t, ActionContains(fs, "EMOM"))
}

func TestInheritOnlyAddsAbsentKinds(t *testing.T) {
	values := []MetricValue{{Kind: MetricRepetitions, Value: 10, Unit: "reps"}}
	rule := Inherit{Values: []MetricValue{{Kind: MetricRepetitions, Value: 21, Unit: "reps"}}}

	out := ApplyRules(values, rule)
	require.Len(t, out, 1)
	assert.Equal(t, float64(10), out[0].Value, "explicit value must win over inherited")
}

func TestInheritAddsWhenAbsent(t *testing.T) {
	rule := Inherit{Values: []MetricValue{{Kind: MetricRepetitions, Value: 21, Unit: "reps"}}}
	out := ApplyRules(nil, rule)

	require.Len(t, out, 1)
	assert.Equal(t, float64(21), out[0].Value)
}

func TestOverrideReplacesMatchingKind(t *testing.T) {
	values := []MetricValue{{Kind: MetricResistance, Value: 45, Unit: "lb"}}
	rule := Override{Values: []MetricValue{{Kind: MetricResistance, Value: 20, Unit: "kg"}}}

	out := ApplyRules(values, rule)
	require.Len(t, out, 1)
	assert.Equal(t, "kg", out[0].Unit)
}

func TestIgnoreDropsMatchingKind(t *testing.T) {
	values := []MetricValue{
		{Kind: MetricResistance, Value: 45, Unit: "lb"},
		{Kind: MetricRepetitions, Value: 10, Unit: "reps"},
	}
	out := ApplyRules(values, Ignore{Kinds: []MetricKind{MetricResistance}})

	require.Len(t, out, 1)
	assert.Equal(t, MetricRepetitions, out[0].Kind)
}

func TestApplyRulesThreadsInOrder(t *testing.T) {
	values := []MetricValue{{Kind: MetricResistance, Value: 45, Unit: "lb"}}
	out := ApplyRules(values,
		Override{Values: []MetricValue{{Kind: MetricResistance, Value: 20, Unit: "kg"}}},
		Ignore{Kinds: []MetricKind{MetricResistance}},
		Inherit{Values: []MetricValue{{Kind: MetricResistance, Value: 5, Unit: "kg"}}},
	)

	require.Len(t, out, 1)
	assert.Equal(t, float64(5), out[0].Value)
}
