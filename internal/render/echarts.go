package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"bracketbuddy/internal/scatter"
)

// jsFuncMarker wraps JS function bodies inside go-echarts options until the
// page template unquotes them.
const jsFuncMarker = "__f__"

// Each data value is [home, away, color, tooltip]. Color and tooltip are
// precomputed so the browser shows exactly what Config.TooltipLabel produces.
var (
	itemColorFunc = opts.FuncOpts(`function (p) { return p.value[2]; }`)
	tooltipFunc   = opts.FuncOpts(`function (p) { return p.value[3]; }`)
)

// BuildScatter turns a frame into a go-echarts scatter chart.
func BuildScatter(frame scatter.Frame, style Style) *charts.Scatter {
	style = style.withDefaults()
	cfg := frame.Config
	sc := charts.NewScatter()
	sc.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle:       cfg.Title,
			Width:           style.widthPx(),
			Height:          style.heightPx(),
			BackgroundColor: colorBackground,
			AssetsHost:      style.AssetsHost,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:         cfg.Title,
			Subtitle:      cfg.Subtitle,
			Left:          "center",
			TitleStyle:    &opts.TextStyle{Color: colorTextPrimary, FontSize: 18},
			SubtitleStyle: &opts.TextStyle{Color: colorTextSecondary},
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(cfg.LegendVisible)}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:      opts.Bool(true),
			Trigger:   "item",
			Formatter: tooltipFunc,
		}),
		charts.WithXAxisOpts(xAxisOpts(cfg.XAxis)),
		charts.WithYAxisOpts(yAxisOpts(cfg.YAxis)),
	)
	sc.AddSeries(cfg.XAxis.Label, scatterData(frame),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: string(itemColorFunc)}),
	)
	return sc
}

func xAxisOpts(a scatter.AxisConfig) opts.XAxis {
	return opts.XAxis{
		Name:      a.Label,
		Type:      "value",
		Min:       a.SuggestedMin,
		Max:       a.SuggestedMax,
		AxisLabel: &opts.AxisLabel{Color: colorTextSecondary},
		SplitLine: gridLines(),
	}
}

func yAxisOpts(a scatter.AxisConfig) opts.YAxis {
	return opts.YAxis{
		Name:      a.Label,
		Type:      "value",
		Min:       a.SuggestedMin,
		Max:       a.SuggestedMax,
		AxisLabel: &opts.AxisLabel{Color: colorTextSecondary},
		SplitLine: gridLines(),
	}
}

func gridLines() *opts.SplitLine {
	return &opts.SplitLine{Show: opts.Bool(true), LineStyle: &opts.LineStyle{Color: colorTextSecondary, Opacity: opts.Float(0.15)}}
}

func scatterData(frame scatter.Frame) []opts.ScatterData {
	data := make([]opts.ScatterData, len(frame.Series.Points))
	for i, p := range frame.Series.Points {
		color := colorFallback
		if i < len(frame.Series.Colors) && strings.TrimSpace(frame.Series.Colors[i]) != "" {
			color = frame.Series.Colors[i]
		}
		data[i] = opts.ScatterData{
			Value: []any{p.X, p.Y, color, frame.Config.TooltipLabel(p)},
		}
	}
	return data
}

// RenderPage renders the standalone HTML page for a frame.
func RenderPage(frame scatter.Frame, style Style) ([]byte, error) {
	var buf bytes.Buffer
	if err := BuildScatter(frame, style).Render(&buf); err != nil {
		return nil, fmt.Errorf("render echarts page: %w", err)
	}
	return buf.Bytes(), nil
}

// OptionJSON returns the echarts option object for a frame. Function values
// stay as source strings; the viewer page revives them before setOption.
func OptionJSON(frame scatter.Frame, style Style) (json.RawMessage, error) {
	sc := BuildScatter(frame, style)
	sc.Validate()
	raw, err := json.Marshal(sc.JSON())
	if err != nil {
		return nil, fmt.Errorf("encode echarts option: %w", err)
	}
	return json.RawMessage(bytes.ReplaceAll(raw, []byte(jsFuncMarker), nil)), nil
}

// EChartsSurface keeps the rendered page and option of the last drawn frame.
type EChartsSurface struct {
	style Style

	mu     sync.RWMutex
	frame  scatter.Frame
	page   []byte
	option json.RawMessage
}

func NewEChartsSurface(style Style) *EChartsSurface {
	return &EChartsSurface{style: style.withDefaults()}
}

func (s *EChartsSurface) Draw(frame scatter.Frame) error {
	commit, err := s.Stage(frame)
	if err != nil {
		return err
	}
	commit()
	return nil
}

// Stage renders frame without publishing it; Page and Option keep returning
// the previous frame until commit runs.
func (s *EChartsSurface) Stage(frame scatter.Frame) (func(), error) {
	page, err := RenderPage(frame, s.style)
	if err != nil {
		return nil, err
	}
	option, err := OptionJSON(frame, s.style)
	if err != nil {
		return nil, err
	}
	return func() {
		s.mu.Lock()
		s.frame = frame
		s.page = page
		s.option = option
		s.mu.Unlock()
	}, nil
}

// Page returns the last rendered HTML page, or false before the first Draw.
func (s *EChartsSurface) Page() ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.page, s.page != nil
}

// Option returns the last echarts option and the revision it belongs to.
func (s *EChartsSurface) Option() (json.RawMessage, int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.option, s.frame.Revision, s.option != nil
}
