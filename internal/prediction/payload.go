package prediction

import (
	"github.com/tidwall/gjson"

	"bracketbuddy/internal/pkg/convert"
)

// Parse validates raw against the payload schema and converts the point
// sequences to numbers according to opts. Length agreement between the
// sequences is left to the chart extractor.
func Parse(raw []byte, opts ParseOptions) (Payload, error) {
	if !gjson.ValidBytes(raw) {
		return Payload{}, payloadErr("", -1, "invalid json", nil)
	}
	if err := validateShape(raw); err != nil {
		return Payload{}, err
	}
	root := gjson.ParseBytes(raw)

	home, err := parsePoints(root.Get("home_points"), "home_points", opts.Lenient)
	if err != nil {
		return Payload{}, err
	}
	away, err := parsePoints(root.Get("away_points"), "away_points", opts.Lenient)
	if err != nil {
		return Payload{}, err
	}
	p := Payload{HomePoints: home, AwayPoints: away, Summary: parseSummary(root)}

	colors := root.Get("scatter_color")
	switch {
	case colors.Exists():
		p.Colors = make([]string, 0, len(colors.Array()))
		colors.ForEach(func(_, v gjson.Result) bool {
			p.Colors = append(p.Colors, v.Str)
			return true
		})
	case opts.Palette != nil:
		p.Colors = deriveColors(home, away, *opts.Palette)
		p.ColorsDerived = true
	default:
		return Payload{}, payloadErr("scatter_color", -1, "missing", nil)
	}
	return p, nil
}

func parsePoints(arr gjson.Result, field string, lenient bool) ([]float64, error) {
	items := arr.Array()
	out := make([]float64, len(items))
	for i, item := range items {
		if lenient {
			out[i] = convert.LooseNumber(item)
			continue
		}
		v, err := convert.StrictNumber(item)
		if err != nil {
			return nil, payloadErr(field, i, "not a finite number", err)
		}
		out[i] = v
	}
	return out, nil
}

func deriveColors(home, away []float64, palette Palette) []string {
	n := len(home)
	if len(away) < n {
		n = len(away)
	}
	colors := make([]string, n)
	for i := 0; i < n; i++ {
		colors[i] = palette.colorFor(home[i], away[i])
	}
	return colors
}

// parseSummary reads the optional aggregates; unparsable values are dropped.
func parseSummary(root gjson.Result) Summary {
	read := func(key string) *float64 {
		v := root.Get(key)
		if !v.Exists() {
			return nil
		}
		f, err := convert.StrictNumber(v)
		if err != nil {
			return nil
		}
		return &f
	}
	return Summary{
		EstWinPct: read("est_win_pct"),
		Spread:    read("spread"),
		OverUnder: read("over_under"),
	}
}
