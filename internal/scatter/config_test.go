package scatter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"bracketbuddy/internal/prediction"
)

var dukeVsUNC = prediction.Selection{HomeTeam: "Duke", HomeYear: "2020", AwayTeam: "UNC", AwayYear: "2021"}

func TestBuildConfig(t *testing.T) {
	cfg := BuildConfig(dukeVsUNC, AxisRange{Min: 55, Max: 92}, prediction.Summary{})

	assert.Equal(t, "2020 Duke Points", cfg.XAxis.Label)
	assert.Equal(t, "2021 UNC Points", cfg.YAxis.Label)
	assert.Equal(t, cfg.XAxis.SuggestedMin, cfg.YAxis.SuggestedMin)
	assert.Equal(t, cfg.XAxis.SuggestedMax, cfg.YAxis.SuggestedMax)
	assert.Equal(t, 55.0, cfg.XAxis.SuggestedMin)
	assert.Equal(t, 92.0, cfg.YAxis.SuggestedMax)
	assert.False(t, cfg.LegendVisible)
	assert.Equal(t, "2020 Duke vs 2021 UNC", cfg.Title)
	assert.Empty(t, cfg.Subtitle)
}

func TestTooltipLabel_Rounds(t *testing.T) {
	cfg := BuildConfig(dukeVsUNC, AxisRange{Min: 60, Max: 80}, prediction.Summary{})
	assert.Equal(t, "2020 Duke: 74, 2021 UNC: 68", cfg.TooltipLabel(Point{X: 73.6, Y: 68.2}))
	assert.Equal(t, "2020 Duke: 73, 2021 UNC: 69", cfg.TooltipLabel(Point{X: 72.5, Y: 68.5}))
}

func TestRoundDisplay(t *testing.T) {
	assert.Equal(t, "74", RoundDisplay(73.6))
	assert.Equal(t, "-3", RoundDisplay(-2.5))
	assert.Equal(t, "NaN", RoundDisplay(nan()))
}

func TestBuildConfig_Subtitle(t *testing.T) {
	spread, ou, win := 3.46, 145.12, -20.0
	cfg := BuildConfig(dukeVsUNC, AxisRange{}, prediction.Summary{Spread: &spread, OverUnder: &ou, EstWinPct: &win})
	assert.Equal(t, "Spread +3.5 | O/U 145.1 | Win% -20", cfg.Subtitle)
}
