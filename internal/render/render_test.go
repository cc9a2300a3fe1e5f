package render

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"bracketbuddy/internal/prediction"
	"bracketbuddy/internal/scatter"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func sampleFrame(t *testing.T) scatter.Frame {
	t.Helper()
	sel := prediction.Selection{HomeTeam: "Duke", HomeYear: "2020", AwayTeam: "UNC", AwayYear: "2021"}
	frame, err := scatter.Prepare(prediction.Payload{
		HomePoints: []float64{70, 80, 73.6},
		AwayPoints: []float64{65, 75, 68.4},
		Colors:     []string{"red", "#34d399", "blue"},
	}, sel)
	require.NoError(t, err)
	frame.Revision = 1
	return frame
}

func TestOptionJSON(t *testing.T) {
	frame := sampleFrame(t)
	raw, err := OptionJSON(frame, Style{})
	require.NoError(t, err)

	assert.NotContains(t, string(raw), jsFuncMarker)
	assert.Equal(t, float64(65), gjson.GetBytes(raw, "xAxis.0.min").Float())
	assert.Equal(t, float64(80), gjson.GetBytes(raw, "xAxis.0.max").Float())
	assert.Equal(t, float64(65), gjson.GetBytes(raw, "yAxis.0.min").Float())
	assert.Equal(t, float64(80), gjson.GetBytes(raw, "yAxis.0.max").Float())
	assert.Equal(t, "2020 Duke Points", gjson.GetBytes(raw, "xAxis.0.name").String())
	assert.Equal(t, "2021 UNC Points", gjson.GetBytes(raw, "yAxis.0.name").String())

	data := gjson.GetBytes(raw, "series.0.data").Array()
	require.Len(t, data, 3)
	assert.Equal(t, "#34d399", data[1].Get("value.2").String())
	assert.Equal(t, "2020 Duke: 74, 2021 UNC: 68", data[2].Get("value.3").String())
	assert.Contains(t, gjson.GetBytes(raw, "series.0.itemStyle.color").String(), "p.value[2]")
}

func TestEChartsSurface(t *testing.T) {
	s := NewEChartsSurface(Style{Width: 640, Height: 640})
	_, ok := s.Page()
	assert.False(t, ok)

	frame := sampleFrame(t)
	require.NoError(t, s.Draw(frame))

	page, ok := s.Page()
	require.True(t, ok)
	assert.Contains(t, string(page), "2020 Duke vs 2021 UNC")
	assert.Contains(t, string(page), "640px")

	opt, rev, ok := s.Option()
	require.True(t, ok)
	assert.Equal(t, 1, rev)
	assert.True(t, gjson.ValidBytes(opt))
}

func TestRenderPNG(t *testing.T) {
	img, err := RenderPNG(sampleFrame(t), Style{Width: 400, Height: 400})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, pngMagic))

	_, err = RenderPNG(scatter.Frame{}, Style{})
	assert.ErrorIs(t, err, errNoPoints)
}

func TestRenderPNG_SinglePoint(t *testing.T) {
	frame, err := scatter.Prepare(prediction.Payload{
		HomePoints: []float64{70},
		AwayPoints: []float64{70},
		Colors:     []string{"gray"},
	}, prediction.Selection{HomeTeam: "A", HomeYear: "1", AwayTeam: "B", AwayYear: "2"})
	require.NoError(t, err)

	img, err := RenderPNG(frame, Style{Width: 300, Height: 300})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, pngMagic))
}

func TestPNGSurface(t *testing.T) {
	s := NewPNGSurface(Style{Width: 300, Height: 300})
	require.NoError(t, s.Draw(sampleFrame(t)))
	img, rev, ok := s.Image()
	require.True(t, ok)
	assert.Equal(t, 1, rev)
	assert.True(t, bytes.HasPrefix(img, pngMagic))
}

func TestParseColor(t *testing.T) {
	fallback := ParseColor("")
	assert.Equal(t, uint8(0x9c), fallback.R)

	red := ParseColor(" Red ")
	assert.Equal(t, uint8(255), red.R)
	assert.Equal(t, uint8(0), red.G)

	hex := ParseColor("#34d399")
	assert.Equal(t, uint8(0x34), hex.R)
	assert.Equal(t, uint8(0xd3), hex.G)

	short := ParseColor("#fff")
	assert.Equal(t, uint8(255), short.B)

	assert.Equal(t, fallback, ParseColor("#12"))
	assert.Equal(t, fallback, ParseColor("#zzzzzz"))
	assert.Equal(t, fallback, ParseColor("chartreuse-ish"))

	rgba := ParseColor("rgba(10, 20, 30, 0.5)")
	assert.Equal(t, uint8(10), rgba.R)
	assert.Equal(t, uint8(30), rgba.B)
	assert.Equal(t, uint8(128), rgba.A)
	assert.Equal(t, uint8(200), ParseColor("rgb(200,0,0)").R)
}

func TestParseColor_MalformedTokensFallBack(t *testing.T) {
	fallback := ParseColor("")
	for _, raw := range []string{"#", "#12", "#abcd", "#1234 5", "#12345", "#1234567", "rgb(1,2)", "rgb(1,2,3", "rgba(1,2,3,7)", "rgb(300,0,0)", "rgb(a,b,c)"} {
		t.Run(raw, func(t *testing.T) {
			var got drawing.Color
			require.NotPanics(t, func() { got = ParseColor(raw) })
			assert.Equal(t, fallback, got)
		})
	}
}

func TestRenderPNG_MalformedColors(t *testing.T) {
	frame, err := scatter.Prepare(prediction.Payload{
		HomePoints: []float64{70, 80},
		AwayPoints: []float64{65, 75},
		Colors:     []string{"#12", "#abcd"},
	}, prediction.Selection{HomeTeam: "A", HomeYear: "1", AwayTeam: "B", AwayYear: "2"})
	require.NoError(t, err)

	var img []byte
	require.NotPanics(t, func() { img, err = RenderPNG(frame, Style{Width: 300, Height: 300}) })
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, pngMagic))
}

func TestFanout(t *testing.T) {
	var seen []int
	ok := scatter.SurfaceFunc(func(f scatter.Frame) error { seen = append(seen, f.Revision); return nil })
	boom := errors.New("boom")
	bad := scatter.SurfaceFunc(func(scatter.Frame) error { return boom })

	err := Fanout{ok, nil, bad, ok}.Draw(scatter.Frame{Revision: 3})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []int{3, 3}, seen)

	assert.NoError(t, Fanout{ok}.Draw(scatter.Frame{Revision: 4}))
}

func TestFanout_StagedSurfacesWaitForEveryDraw(t *testing.T) {
	echarts := NewEChartsSurface(Style{Width: 400, Height: 400})
	first := sampleFrame(t)
	require.NoError(t, Fanout{echarts}.Draw(first))

	boom := errors.New("boom")
	bad := scatter.SurfaceFunc(func(scatter.Frame) error { return boom })
	next := sampleFrame(t)
	next.Revision = 2
	err := Fanout{echarts, bad}.Draw(next)
	require.ErrorIs(t, err, boom)

	_, rev, ok := echarts.Option()
	require.True(t, ok)
	assert.Equal(t, 1, rev)

	require.NoError(t, Fanout{echarts}.Draw(next))
	_, rev, _ = echarts.Option()
	assert.Equal(t, 2, rev)
}

func TestSnapshotDisabled(t *testing.T) {
	s := NewSnapshotSurface(context.Background(), Style{}, false, 0)
	assert.ErrorIs(t, s.Draw(sampleFrame(t)), ErrSnapshotDisabled)
	_, ok := s.Image()
	assert.False(t, ok)
}
