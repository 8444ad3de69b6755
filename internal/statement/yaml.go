package statement

import (
	"fmt"

	"github.com/SergeiGolos/wod-wiki-runtime/internal/fragment"
	"gopkg.in/yaml.v3"
)

// yamlScript is the on-disk fixture shape for authoring scripts by hand in
// tests and examples, decoded with yaml.v3 the way the teacher's config
// loader decodes layered YAML documents.
type yamlScript struct {
	Root       []int                  `yaml:"root"`
	Statements []yamlStatement        `yaml:"statements"`
}

type yamlStatement struct {
	ID        int             `yaml:"id"`
	Children  [][]int         `yaml:"children"`
	Line      int             `yaml:"line"`
	Column    int             `yaml:"column"`
	Fragments []yamlFragment  `yaml:"fragments"`
}

type yamlFragment struct {
	Kind      string  `yaml:"kind"`
	Image     string  `yaml:"image,omitempty"`
	ValueMs   int64   `yaml:"value_ms,omitempty"`
	Direction string  `yaml:"direction,omitempty"`
	Count     int     `yaml:"count,omitempty"`
	Values    []int   `yaml:"values,omitempty"`
	Reps      int     `yaml:"reps,omitempty"`
	Amount    float64 `yaml:"amount,omitempty"`
	Unit      string  `yaml:"unit,omitempty"`
	Name      string  `yaml:"name,omitempty"`
	Text      string  `yaml:"text,omitempty"`
	Lap       string  `yaml:"lap,omitempty"`
}

// LoadYAML decodes a Script from a YAML document of the shape yamlScript
// describes. It does not validate; call Script.Validate separately.
func LoadYAML(data []byte) (Script, error) {
	var doc yamlScript
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Script{}, fmt.Errorf("decode script yaml: %w", err)
	}

	script := Script{Statements: make(map[int]Statement, len(doc.Statements)), Root: doc.Root}
	for _, ys := range doc.Statements {
		frs := make([]fragment.Fragment, 0, len(ys.Fragments))
		for _, yf := range ys.Fragments {
			fr, err := decodeFragment(yf)
			if err != nil {
				return Script{}, fmt.Errorf("statement %d: %w", ys.ID, err)
			}
			frs = append(frs, fr)
		}
		script.Statements[ys.ID] = Statement{
			ID:        ys.ID,
			Fragments: frs,
			Children:  ys.Children,
			Meta:      Meta{Line: ys.Line, Column: ys.Column},
		}
	}
	return script, nil
}

func decodeFragment(yf yamlFragment) (fragment.Fragment, error) {
	switch yf.Kind {
	case "timer":
		dir := fragment.Up
		if yf.Direction == "down" {
			dir = fragment.Down
		}
		return fragment.Fragment{Kind: fragment.KindTimer, Image: yf.Image, ValueMs: yf.ValueMs, Direction: dir}, nil
	case "rounds":
		return fragment.Fragment{Kind: fragment.KindRounds, Count: yf.Count, Values: yf.Values}, nil
	case "repetitions":
		return fragment.Fragment{Kind: fragment.KindRepetitions, Reps: yf.Reps}, nil
	case "resistance":
		return fragment.Fragment{Kind: fragment.KindResistance, Amount: yf.Amount, Unit: yf.Unit}, nil
	case "distance":
		return fragment.Fragment{Kind: fragment.KindDistance, Amount: yf.Amount, Unit: yf.Unit}, nil
	case "effort":
		return fragment.Fragment{Kind: fragment.KindEffort, Name: yf.Name}, nil
	case "action":
		return fragment.Fragment{Kind: fragment.KindAction, Name: yf.Name}, nil
	case "lap":
		mode := fragment.LapNone
		switch yf.Lap {
		case "compose":
			mode = fragment.LapCompose
		case "round":
			mode = fragment.LapRound
		}
		return fragment.Fragment{Kind: fragment.KindLap, Lap: mode}, nil
	case "text":
		return fragment.Fragment{Kind: fragment.KindText, Text: yf.Text}, nil
	default:
		return fragment.Fragment{}, fmt.Errorf("unknown fragment kind %q", yf.Kind)
	}
}
