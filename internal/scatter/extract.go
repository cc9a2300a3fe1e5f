package scatter

import (
	"fmt"
	"math"

	"bracketbuddy/internal/prediction"
)

// Extract zips the payload into points, passes colors through and computes the
// shared axis range. NaN values propagate into the range rather than being skipped.
func Extract(p prediction.Payload) (Series, error) {
	n := len(p.HomePoints)
	if n == 0 {
		return Series{}, &prediction.PayloadError{Field: "home_points", Index: -1, Reason: "no samples"}
	}
	if len(p.AwayPoints) != n {
		return Series{}, &prediction.PayloadError{
			Field:  "away_points",
			Index:  -1,
			Reason: fmt.Sprintf("length %d does not match home_points length %d", len(p.AwayPoints), n),
		}
	}
	if len(p.Colors) != n {
		return Series{}, &prediction.PayloadError{
			Field:  "scatter_color",
			Index:  -1,
			Reason: fmt.Sprintf("length %d does not match home_points length %d", len(p.Colors), n),
		}
	}

	minHome, maxHome := bounds(p.HomePoints)
	minAway, maxAway := bounds(p.AwayPoints)
	points := make([]Point, n)
	for i := range points {
		points[i] = Point{X: p.HomePoints[i], Y: p.AwayPoints[i]}
	}
	colors := make([]string, n)
	copy(colors, p.Colors)
	return Series{
		Points: points,
		Colors: colors,
		Range: AxisRange{
			Min: math.Min(minHome, minAway),
			Max: math.Max(maxHome, maxAway),
		},
	}, nil
}

// bounds uses math.Min/Max so a single NaN poisons the result.
func bounds(values []float64) (lo, hi float64) {
	lo, hi = values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}
