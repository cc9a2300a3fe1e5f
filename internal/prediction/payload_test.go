package prediction

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bracketbuddy/internal/pkg/convert"
)

func TestParse_NumbersAndStrings(t *testing.T) {
	raw := []byte(`{
		"home_points": ["70.4", 80],
		"away_points": [65, "75.9"],
		"scatter_color": ["red", "blue"],
		"est_win_pct": "20",
		"spread": "3.5",
		"over_under": "145.1"
	}`)
	p, err := Parse(raw, ParseOptions{})
	require.NoError(t, err)
	assert.Equal(t, []float64{70.4, 80}, p.HomePoints)
	assert.Equal(t, []float64{65, 75.9}, p.AwayPoints)
	assert.Equal(t, []string{"red", "blue"}, p.Colors)
	assert.False(t, p.ColorsDerived)
	require.NotNil(t, p.Summary.Spread)
	assert.Equal(t, 3.5, *p.Summary.Spread)
	assert.Equal(t, 145.1, *p.Summary.OverUnder)
	assert.Equal(t, 20.0, *p.Summary.EstWinPct)
}

func TestParse_StrictRejectsNonNumeric(t *testing.T) {
	raw := []byte(`{"home_points": [70, "n/a"], "away_points": [65, 75], "scatter_color": ["red", "blue"]}`)
	_, err := Parse(raw, ParseOptions{})
	var pe *PayloadError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "home_points", pe.Field)
	assert.Equal(t, 1, pe.Index)
	assert.ErrorIs(t, err, convert.ErrNotNumeric)
}

func TestParse_LenientPropagatesNaN(t *testing.T) {
	raw := []byte(`{"home_points": [70, "n/a"], "away_points": [65, 75], "scatter_color": ["red", "blue"]}`)
	p, err := Parse(raw, ParseOptions{Lenient: true})
	require.NoError(t, err)
	assert.Equal(t, 70.0, p.HomePoints[0])
	assert.True(t, math.IsNaN(p.HomePoints[1]))
}

func TestParse_MissingKeys(t *testing.T) {
	t.Run("points", func(t *testing.T) {
		_, err := Parse([]byte(`{"home_points": [1]}`), ParseOptions{})
		var pe *PayloadError
		require.True(t, errors.As(err, &pe))
		assert.Equal(t, "schema violation", pe.Reason)
	})

	t.Run("colors without palette", func(t *testing.T) {
		_, err := Parse([]byte(`{"home_points": [1], "away_points": [2]}`), ParseOptions{})
		var pe *PayloadError
		require.True(t, errors.As(err, &pe))
		assert.Equal(t, "scatter_color", pe.Field)
		assert.Equal(t, "missing", pe.Reason)
	})

	t.Run("colors derived from palette", func(t *testing.T) {
		palette := &Palette{HomeWin: "green", AwayWin: "red", Tie: "gray"}
		p, err := Parse([]byte(`{"home_points": [80, 60, 70], "away_points": [70, 75, 70]}`), ParseOptions{Palette: palette})
		require.NoError(t, err)
		assert.True(t, p.ColorsDerived)
		assert.Equal(t, []string{"green", "red", "gray"}, p.Colors)
	})
}

func TestParse_SchemaRejectsWrongTypes(t *testing.T) {
	_, err := Parse([]byte(`{"home_points": [1, {"x": 2}], "away_points": [2, 3], "scatter_color": ["a", "b"]}`), ParseOptions{})
	var pe *PayloadError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "home_points", pe.Field)
	assert.Equal(t, 1, pe.Index)

	_, err = Parse([]byte(`not json`), ParseOptions{})
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "invalid json", pe.Reason)
}

func TestParse_SummaryIgnoresGarbage(t *testing.T) {
	p, err := Parse([]byte(`{"home_points": [], "away_points": [], "scatter_color": [], "spread": "wide"}`), ParseOptions{})
	require.NoError(t, err)
	assert.True(t, p.Summary.Empty())
}
