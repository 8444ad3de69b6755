package fragment

import "github.com/SergeiGolos/wod-wiki-runtime/internal/clock"

// MetricKind enumerates the normalized metric vocabulary (§3).
type MetricKind int

const (
	MetricTime MetricKind = iota
	MetricRepetitions
	MetricResistance
	MetricDistance
	MetricRounds
	MetricCalories
	MetricTimestamp
	MetricHeartRate
	MetricCadence
	MetricPower
	MetricEffort
	MetricAction
)

// MetricValue is one normalized value within a RuntimeMetric, carrying
// its own unit so downstream consumers need not guess (e.g. "ms" vs "s").
type MetricValue struct {
	Kind  MetricKind
	Value float64
	Unit  string
}

// RuntimeMetric accumulates during execution, one per block (§3).
type RuntimeMetric struct {
	SourceID   int
	ExerciseID string
	Values     []MetricValue
	TimeSpans  []clock.TimeSpan
}

// ValuesOfKind returns every value of kind k, in authoring order.
func (m RuntimeMetric) ValuesOfKind(k MetricKind) []MetricValue {
	var out []MetricValue
	for _, v := range m.Values {
		if v.Kind == k {
			out = append(out, v)
		}
	}
	return out
}

// Compile turns the fragments of one statement into an ordered,
// order-preserving RuntimeMetric (§4.8 "Metric extraction during
// compile"). Compile is a pure function of its input: the same fragments
// always produce the same values in the same order (§8).
func Compile(sourceID int, fs []Fragment) RuntimeMetric {
	m := RuntimeMetric{SourceID: sourceID}

	for _, f := range fs {
		switch f.Kind {
		case KindTimer:
			ms := f.ValueMs
			if f.Direction == Down && ms > 0 {
				ms = -ms
			}
			m.Values = append(m.Values, MetricValue{Kind: MetricTime, Value: float64(ms), Unit: "ms"})

		case KindRounds:
			if len(f.Values) > 0 {
				// Rounds("(a-b-c)") -> rounds(n), repetitions(a), repetitions(b), ...
				m.Values = append(m.Values, MetricValue{Kind: MetricRounds, Value: float64(len(f.Values)), Unit: "rounds"})
				for _, v := range f.Values {
					m.Values = append(m.Values, MetricValue{Kind: MetricRepetitions, Value: float64(v), Unit: "reps"})
				}
			} else if f.Count > 0 {
				// Rounds("(n)") is a multiplier, not a rep scheme — §4.8.
				m.Values = append(m.Values, MetricValue{Kind: MetricRepetitions, Value: float64(f.Count), Unit: "reps"})
			}

		case KindRepetitions:
			m.Values = append(m.Values, MetricValue{Kind: MetricRepetitions, Value: float64(f.Reps), Unit: "reps"})

		case KindResistance:
			m.Values = append(m.Values, MetricValue{Kind: MetricResistance, Value: f.Amount, Unit: f.Unit})

		case KindDistance:
			m.Values = append(m.Values, MetricValue{Kind: MetricDistance, Value: f.Amount, Unit: f.Unit})

		case KindEffort:
			m.Values = append(m.Values, MetricValue{Kind: MetricEffort, Value: 0, Unit: f.Name})
			if m.ExerciseID == "" {
				m.ExerciseID = f.Name
			}

		case KindAction:
			m.Values = append(m.Values, MetricValue{Kind: MetricAction, Value: 0, Unit: f.Name})

		case KindLap, KindText:
			// No metric contribution; Lap affects loop/round structure
			// (jit/behavior), Text is descriptive only.
		}
	}

	return m
}

// RoundsSpec is the normalized shape of a Rounds fragment, used by the
// Rounds/TimeBoundRounds/Interval strategies to build a LoopCoordinator
// config without re-parsing fragments.
type RoundsSpec struct {
	IsScheme bool
	Reps     []int // non-empty for a scheme (any length), nil for a plain count
	Count    int
}

// ExtractRounds finds the first Rounds fragment and normalizes it.
func ExtractRounds(fs []Fragment) (RoundsSpec, bool) {
	f, ok := Find(fs, KindRounds)
	if !ok {
		return RoundsSpec{}, false
	}
	if len(f.Values) > 0 {
		return RoundsSpec{IsScheme: true, Reps: append([]int(nil), f.Values...)}, true
	}
	return RoundsSpec{Count: f.Count}, true
}

// ExtractTimerMs returns the timer duration in milliseconds (always
// positive) and its direction.
func ExtractTimerMs(fs []Fragment) (ms int64, dir Direction, ok bool) {
	f, found := Find(fs, KindTimer)
	if !found {
		return 0, Up, false
	}
	v := f.ValueMs
	if v < 0 {
		v = -v
	}
	return v, f.Direction, true
}
