package fragment

// InheritanceRule is one of the three composable rules applied, in order,
// against a parent block's published metrics during compile (§4.8).
type InheritanceRule interface {
	Apply(values []MetricValue) []MetricValue
}

// Override replaces every metric of a matching kind with the provided
// values.
type Override struct{ Values []MetricValue }

func (o Override) Apply(values []MetricValue) []MetricValue {
	kinds := kindSet(o.Values)
	out := filterOut(values, kinds)
	return append(out, o.Values...)
}

// Ignore drops every metric of the given kinds.
type Ignore struct{ Kinds []MetricKind }

func (ig Ignore) Apply(values []MetricValue) []MetricValue {
	set := make(map[MetricKind]bool, len(ig.Kinds))
	for _, k := range ig.Kinds {
		set[k] = true
	}
	var out []MetricValue
	for _, v := range values {
		if !set[v.Kind] {
			out = append(out, v)
		}
	}
	return out
}

// Inherit adds the given metric only if no value of that kind is already
// present.
type Inherit struct{ Values []MetricValue }

func (in Inherit) Apply(values []MetricValue) []MetricValue {
	present := make(map[MetricKind]bool)
	for _, v := range values {
		present[v.Kind] = true
	}
	out := append([]MetricValue(nil), values...)
	for _, v := range in.Values {
		if !present[v.Kind] {
			out = append(out, v)
			present[v.Kind] = true
		}
	}
	return out
}

// ApplyRules threads values through rules in order, as compile does
// against the parent block's published metrics (§4.8).
func ApplyRules(values []MetricValue, rules ...InheritanceRule) []MetricValue {
	for _, r := range rules {
		values = r.Apply(values)
	}
	return values
}

func kindSet(values []MetricValue) map[MetricKind]bool {
	set := make(map[MetricKind]bool, len(values))
	for _, v := range values {
		set[v.Kind] = true
	}
	return set
}

func filterOut(values []MetricValue, kinds map[MetricKind]bool) []MetricValue {
	var out []MetricValue
	for _, v := range values {
		if !kinds[v.Kind] {
			out = append(out, v)
		}
	}
	return out
}
