// Package render draws scatter frames onto concrete surfaces: an echarts page
// for the browser, a static PNG, and a headless-browser snapshot of the page.
package render

import (
	"fmt"
	"strings"

	"github.com/wcharczuk/go-chart/v2/drawing"

	"bracketbuddy/internal/config"
)

const (
	colorBackground    = "#0b1220"
	colorTextPrimary   = "#eceff4"
	colorTextSecondary = "#9ca3af"
	colorDiagonal      = "#475569"
	colorFallback      = "#9ca3af"
)

// hexColor converts one of the palette constants above. Payload colors go
// through ParseColor instead.
func hexColor(s string) drawing.Color {
	hex := strings.TrimPrefix(s, "#")
	if !validHex(hex) {
		return drawing.ColorFromHex(strings.TrimPrefix(colorFallback, "#"))
	}
	return drawing.ColorFromHex(hex)
}

// validHex accepts the 3 and 6 digit forms ColorFromHex can slice safely.
func validHex(hex string) bool {
	if len(hex) != 3 && len(hex) != 6 {
		return false
	}
	for _, r := range hex {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// Style is the presentation shared by every surface.
type Style struct {
	Width      int
	Height     int
	PointSize  int
	AssetsHost string
}

// StyleFromConfig reads the chart and render sections.
func StyleFromConfig(chart config.ChartConfig, r config.RenderConfig) Style {
	return Style{
		Width:      chart.Width,
		Height:     chart.Height,
		PointSize:  chart.PointSize,
		AssetsHost: r.AssetsHost,
	}.withDefaults()
}

func (s Style) withDefaults() Style {
	if s.Width <= 0 {
		s.Width = 900
	}
	if s.Height <= 0 {
		s.Height = 900
	}
	if s.PointSize <= 0 {
		s.PointSize = 8
	}
	return s
}

func (s Style) widthPx() string  { return fmt.Sprintf("%dpx", s.Width) }
func (s Style) heightPx() string { return fmt.Sprintf("%dpx", s.Height) }
