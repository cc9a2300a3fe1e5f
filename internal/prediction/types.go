// Package prediction fetches and parses matchup prediction payloads.
package prediction

import (
	"fmt"
	"strings"
)

// Selection is the four dropdown values identifying a matchup. Values are
// opaque: they are only used as URL segments and label text.
type Selection struct {
	HomeTeam string `json:"home_team" form:"home_team"`
	HomeYear string `json:"home_year" form:"home_year"`
	AwayTeam string `json:"away_team" form:"away_team"`
	AwayYear string `json:"away_year" form:"away_year"`
}

// Normalize trims surrounding whitespace from every field.
func (s Selection) Normalize() Selection {
	return Selection{
		HomeTeam: strings.TrimSpace(s.HomeTeam),
		HomeYear: strings.TrimSpace(s.HomeYear),
		AwayTeam: strings.TrimSpace(s.AwayTeam),
		AwayYear: strings.TrimSpace(s.AwayYear),
	}
}

// Complete reports an error naming the first empty field; an empty value
// cannot form a path segment.
func (s Selection) Complete() error {
	fields := []struct{ name, val string }{
		{"home_team", s.HomeTeam},
		{"home_year", s.HomeYear},
		{"away_team", s.AwayTeam},
		{"away_year", s.AwayYear},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.val) == "" {
			return fmt.Errorf("%w: %s is empty", ErrIncompleteSelection, f.name)
		}
	}
	return nil
}

func (s Selection) String() string {
	return fmt.Sprintf("%s %s vs %s %s", s.HomeYear, s.HomeTeam, s.AwayYear, s.AwayTeam)
}

// Payload is a parsed prediction response. HomePoints, AwayPoints and Colors
// are index aligned: element i of each describes one simulated game.
type Payload struct {
	HomePoints []float64
	AwayPoints []float64
	Colors     []string
	// ColorsDerived is set when scatter_color was absent and colors came from the palette.
	ColorsDerived bool
	Summary       Summary
}

// Summary carries the optional aggregate fields the prediction backend returns.
type Summary struct {
	EstWinPct *float64 `json:"est_win_pct,omitempty"`
	Spread    *float64 `json:"spread,omitempty"`
	OverUnder *float64 `json:"over_under,omitempty"`
}

func (s Summary) Empty() bool {
	return s.EstWinPct == nil && s.Spread == nil && s.OverUnder == nil
}

// Palette colors samples by outcome when the payload has no scatter_color.
type Palette struct {
	HomeWin string
	AwayWin string
	Tie     string
}

func (p Palette) colorFor(home, away float64) string {
	switch {
	case home > away:
		return p.HomeWin
	case away > home:
		return p.AwayWin
	default:
		return p.Tie
	}
}

// ParseOptions selects the coercion policy for point values.
type ParseOptions struct {
	// Lenient turns unparsable point values into NaN instead of failing.
	Lenient bool
	// Palette, when set, derives colors for payloads missing scatter_color.
	Palette *Palette
}

// Result is the outcome of one sequenced fetch.
type Result struct {
	Seq       uint64
	Selection Selection
	Payload   Payload
	Err       error
}
