package scatter

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"bracketbuddy/internal/prediction"
)

func nan() float64 { return math.NaN() }

type MockSurface struct {
	mock.Mock
}

func (m *MockSurface) Draw(frame Frame) error {
	args := m.Called(frame)
	return args.Error(0)
}

func firstPayload() prediction.Payload {
	return prediction.Payload{
		HomePoints: []float64{70, 80, 91},
		AwayPoints: []float64{65, 75, 58},
		Colors:     []string{"red", "blue", "red"},
	}
}

func secondPayload() prediction.Payload {
	return prediction.Payload{
		HomePoints: []float64{61},
		AwayPoints: []float64{77},
		Colors:     []string{"green"},
	}
}

func TestInitializeThenUpdate_ReplacesEverything(t *testing.T) {
	surface := new(MockSurface)
	surface.On("Draw", mock.Anything).Return(nil)

	chart, err := Initialize(surface, firstPayload(), dukeVsUNC)
	require.NoError(t, err)
	assert.Equal(t, 1, chart.Frame().Revision)
	assert.Len(t, chart.Frame().Series.Points, 3)

	other := prediction.Selection{HomeTeam: "Kansas", HomeYear: "2019", AwayTeam: "Baylor", AwayYear: "2021"}
	require.NoError(t, chart.Update(secondPayload(), other))

	frame := chart.Frame()
	assert.Equal(t, 2, frame.Revision)
	assert.Equal(t, []Point{{X: 61, Y: 77}}, frame.Series.Points)
	assert.Equal(t, []string{"green"}, frame.Series.Colors)
	assert.Equal(t, AxisRange{Min: 61, Max: 77}, frame.Series.Range)
	assert.Equal(t, "2019 Kansas Points", frame.Config.XAxis.Label)
	assert.Equal(t, "2019 Kansas: 61, 2021 Baylor: 77", frame.Config.TooltipLabel(frame.Series.Points[0]))

	surface.AssertNumberOfCalls(t, "Draw", 2)
	last := surface.Calls[1].Arguments.Get(0).(Frame)
	assert.Equal(t, frame, last)
}

func TestUpdate_WithoutInitialize(t *testing.T) {
	var chart *Chart
	assert.ErrorIs(t, chart.Update(firstPayload(), dukeVsUNC), ErrNotInitialized)
	assert.ErrorIs(t, chart.Redraw(), ErrNotInitialized)
	assert.ErrorIs(t, (&Chart{}).Update(firstPayload(), dukeVsUNC), ErrNotInitialized)
}

func TestInitialize_RejectsNonFiniteRange(t *testing.T) {
	surface := new(MockSurface)
	payload := firstPayload()
	payload.AwayPoints[1] = nan()

	_, err := Initialize(surface, payload, dukeVsUNC)
	assert.ErrorIs(t, err, ErrNonFiniteRange)
	surface.AssertNotCalled(t, "Draw", mock.Anything)
}

func TestUpdate_KeepsFrameOnFailure(t *testing.T) {
	surface := new(MockSurface)
	surface.On("Draw", mock.Anything).Return(nil).Once()
	chart, err := Initialize(surface, firstPayload(), dukeVsUNC)
	require.NoError(t, err)
	before := chart.Frame()

	bad := secondPayload()
	bad.Colors = nil
	var pe *prediction.PayloadError
	assert.True(t, errors.As(chart.Update(bad, dukeVsUNC), &pe))
	assert.Equal(t, before, chart.Frame())

	surface.On("Draw", mock.Anything).Return(errors.New("socket closed")).Once()
	assert.Error(t, chart.Update(secondPayload(), dukeVsUNC))
	assert.Equal(t, before, chart.Frame())
}

func TestInitialize_RequiresSurface(t *testing.T) {
	_, err := Initialize(nil, firstPayload(), dukeVsUNC)
	assert.ErrorIs(t, err, ErrNoSurface)
}

func TestSurfaceFunc(t *testing.T) {
	var got Frame
	chart, err := Initialize(SurfaceFunc(func(f Frame) error { got = f; return nil }), firstPayload(), dukeVsUNC)
	require.NoError(t, err)
	assert.Equal(t, chart.Frame(), got)
}
