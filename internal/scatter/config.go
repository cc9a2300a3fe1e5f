package scatter

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"bracketbuddy/internal/prediction"
)

// AxisConfig labels one axis and carries its suggested bounds.
type AxisConfig struct {
	Label        string  `json:"label"`
	SuggestedMin float64 `json:"suggested_min"`
	SuggestedMax float64 `json:"suggested_max"`
}

// Tooltip formats a hovered point as "<year> <team>: <x>, <year> <team>: <y>".
type Tooltip struct {
	HomeLabel string `json:"home_label"`
	AwayLabel string `json:"away_label"`
}

// Format rounds both coordinates half away from zero for display; the data keeps full precision.
func (t Tooltip) Format(p Point) string {
	return fmt.Sprintf("%s: %s, %s: %s", t.HomeLabel, RoundDisplay(p.X), t.AwayLabel, RoundDisplay(p.Y))
}

// Config is everything a surface needs besides the data itself.
type Config struct {
	Title         string     `json:"title"`
	Subtitle      string     `json:"subtitle,omitempty"`
	XAxis         AxisConfig `json:"x_axis"`
	YAxis         AxisConfig `json:"y_axis"`
	Tooltip       Tooltip    `json:"tooltip"`
	LegendVisible bool       `json:"legend_visible"`
}

// TooltipLabel is the text shown when hovering p.
func (c Config) TooltipLabel(p Point) string {
	return c.Tooltip.Format(p)
}

// BuildConfig assembles labels and bounds for sel. The legend is always hidden
// because point color already carries the distinction.
func BuildConfig(sel prediction.Selection, r AxisRange, summary prediction.Summary) Config {
	home := strings.TrimSpace(sel.HomeYear + " " + sel.HomeTeam)
	away := strings.TrimSpace(sel.AwayYear + " " + sel.AwayTeam)
	return Config{
		Title:    fmt.Sprintf("%s vs %s", home, away),
		Subtitle: summaryLine(summary),
		XAxis: AxisConfig{
			Label:        home + " Points",
			SuggestedMin: r.Min,
			SuggestedMax: r.Max,
		},
		YAxis: AxisConfig{
			Label:        away + " Points",
			SuggestedMin: r.Min,
			SuggestedMax: r.Max,
		},
		Tooltip:       Tooltip{HomeLabel: home, AwayLabel: away},
		LegendVisible: false,
	}
}

// RoundDisplay renders v as an integer string.
func RoundDisplay(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	}
	return decimal.NewFromFloat(v).Round(0).String()
}

func summaryLine(s prediction.Summary) string {
	parts := make([]string, 0, 3)
	if s.Spread != nil {
		parts = append(parts, "Spread "+signed(*s.Spread, 1))
	}
	if s.OverUnder != nil {
		parts = append(parts, "O/U "+decimal.NewFromFloat(*s.OverUnder).StringFixed(1))
	}
	if s.EstWinPct != nil {
		parts = append(parts, "Win% "+signed(*s.EstWinPct, 0))
	}
	return strings.Join(parts, " | ")
}

func signed(v float64, places int32) string {
	d := decimal.NewFromFloat(v)
	out := d.StringFixed(places)
	if d.IsPositive() {
		return "+" + out
	}
	return out
}
