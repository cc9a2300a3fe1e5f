// Package scatter turns prediction payloads into scatter chart data and
// configuration, and manages the lifetime of a drawn chart.
package scatter

import "math"

// Point is one simulated game: X is the home score, Y the away score.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// AxisRange is the single bound shared by both axes so the plot is square
// and the equal-score diagonal is meaningful.
type AxisRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

func (r AxisRange) Finite() bool {
	return !math.IsNaN(r.Min) && !math.IsNaN(r.Max) && !math.IsInf(r.Min, 0) && !math.IsInf(r.Max, 0)
}

// Series is the extracted plot data. Points and Colors are index aligned.
type Series struct {
	Points []Point   `json:"points"`
	Colors []string  `json:"colors"`
	Range  AxisRange `json:"range"`
}
