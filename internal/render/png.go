package render

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"bracketbuddy/internal/scatter"
)

var errNoPoints = errors.New("frame has no points")

// RenderPNG draws a frame as a static PNG. The equal-score diagonal is drawn
// under the points.
func RenderPNG(frame scatter.Frame, style Style) ([]byte, error) {
	style = style.withDefaults()
	pts := frame.Series.Points
	if len(pts) == 0 {
		return nil, errNoPoints
	}
	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	for i, p := range pts {
		xs[i] = p.X
		ys[i] = p.Y
	}
	colors := make([]drawing.Color, len(pts))
	for i := range pts {
		raw := ""
		if i < len(frame.Series.Colors) {
			raw = frame.Series.Colors[i]
		}
		colors[i] = ParseColor(raw)
	}
	cfg := frame.Config
	xr := plotRange(cfg.XAxis)

	graph := chart.Chart{
		Title:  cfg.Title,
		Width:  style.Width,
		Height: style.Height,
		Background: chart.Style{
			Padding:   chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20},
			FillColor: hexColor(colorBackground),
		},
		Canvas: chart.Style{FillColor: hexColor(colorBackground)},
		TitleStyle: chart.Style{
			FontColor: hexColor(colorTextPrimary),
		},
		XAxis: chart.XAxis{
			Name:           cfg.XAxis.Label,
			NameStyle:      axisTextStyle(),
			Style:          axisTextStyle(),
			Range:          xr,
			ValueFormatter: roundedFormatter,
		},
		YAxis: chart.YAxis{
			Name:           cfg.YAxis.Label,
			NameStyle:      axisTextStyle(),
			Style:          axisTextStyle(),
			Range:          plotRange(cfg.YAxis),
			ValueFormatter: roundedFormatter,
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name: "even",
				Style: chart.Style{
					StrokeColor:     hexColor(colorDiagonal),
					StrokeWidth:     1,
					StrokeDashArray: []float64{4, 4},
				},
				XValues: []float64{xr.Min, xr.Max},
				YValues: []float64{xr.Min, xr.Max},
			},
			chart.ContinuousSeries{
				Name: cfg.XAxis.Label,
				Style: chart.Style{
					StrokeWidth: chart.Disabled,
					DotWidth:    float64(style.PointSize) / 2,
					DotColorProvider: func(_, _ chart.Range, index int, _, _ float64) drawing.Color {
						if index < 0 || index >= len(colors) {
							return ParseColor("")
						}
						return colors[index]
					},
				},
				XValues: xs,
				YValues: ys,
			},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render png: %w", err)
	}
	return buf.Bytes(), nil
}

// go-chart refuses a zero-width range, which a single sample produces.
func plotRange(a scatter.AxisConfig) *chart.ContinuousRange {
	lo, hi := a.SuggestedMin, a.SuggestedMax
	if hi <= lo {
		lo, hi = lo-1, lo+1
	}
	return &chart.ContinuousRange{Min: lo, Max: hi}
}

func axisTextStyle() chart.Style {
	return chart.Style{FontColor: hexColor(colorTextSecondary)}
}

func roundedFormatter(v any) string {
	if f, ok := v.(float64); ok {
		return scatter.RoundDisplay(f)
	}
	return fmt.Sprintf("%v", v)
}

// ParseColor accepts CSS names known to go-chart, #hex (3 or 6 digits), rgb()
// and rgba(). Anything else falls back to neutral gray. The tokens come from
// the upstream payload, so nothing malformed reaches go-chart's parsers.
func ParseColor(raw string) drawing.Color {
	raw = strings.ToLower(strings.TrimSpace(raw))
	switch {
	case raw == "":
		return hexColor(colorFallback)
	case strings.HasPrefix(raw, "#"):
		if hex := raw[1:]; validHex(hex) {
			return drawing.ColorFromHex(hex)
		}
		return hexColor(colorFallback)
	case strings.HasPrefix(raw, "rgb"):
		if c, ok := parseRGB(raw); ok {
			return c
		}
		return hexColor(colorFallback)
	}
	if c := drawing.ColorFromKnown(raw); !c.IsZero() {
		return c
	}
	return hexColor(colorFallback)
}

// parseRGB reads rgb(r, g, b) and rgba(r, g, b, a) with a in [0, 1].
func parseRGB(raw string) (drawing.Color, bool) {
	var body string
	var want int
	switch {
	case strings.HasPrefix(raw, "rgba(") && strings.HasSuffix(raw, ")"):
		body, want = raw[len("rgba("):len(raw)-1], 4
	case strings.HasPrefix(raw, "rgb(") && strings.HasSuffix(raw, ")"):
		body, want = raw[len("rgb("):len(raw)-1], 3
	default:
		return drawing.Color{}, false
	}
	parts := strings.Split(body, ",")
	if len(parts) != want {
		return drawing.Color{}, false
	}
	var channels [3]uint8
	for i := 0; i < 3; i++ {
		v, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil || v < 0 || v > 255 {
			return drawing.Color{}, false
		}
		channels[i] = uint8(v)
	}
	alpha := uint8(255)
	if want == 4 {
		a, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil || math.IsNaN(a) || a < 0 || a > 1 {
			return drawing.Color{}, false
		}
		alpha = uint8(math.Round(a * 255))
	}
	return drawing.Color{R: channels[0], G: channels[1], B: channels[2], A: alpha}, true
}

// PNGSurface renders every frame it is given and keeps the latest image.
type PNGSurface struct {
	style Style

	mu       sync.RWMutex
	image    []byte
	revision int
}

func NewPNGSurface(style Style) *PNGSurface {
	return &PNGSurface{style: style.withDefaults()}
}

func (s *PNGSurface) Draw(frame scatter.Frame) error {
	img, err := RenderPNG(frame, s.style)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.image = img
	s.revision = frame.Revision
	s.mu.Unlock()
	return nil
}

// Image returns the last rendered PNG and its frame revision.
func (s *PNGSurface) Image() ([]byte, int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.image, s.revision, s.image != nil
}
