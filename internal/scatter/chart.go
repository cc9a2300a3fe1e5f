package scatter

import (
	"fmt"
	"sync"

	"bracketbuddy/internal/prediction"
)

// Frame is one complete drawable state of a chart.
type Frame struct {
	Revision  int                  `json:"revision"`
	Selection prediction.Selection `json:"selection"`
	Series    Series               `json:"series"`
	Config    Config               `json:"config"`
}

// Surface is where a chart is drawn. Draw receives the full frame every time,
// so a surface never has to merge with what it showed before.
type Surface interface {
	Draw(frame Frame) error
}

// SurfaceFunc adapts a function to Surface.
type SurfaceFunc func(Frame) error

func (f SurfaceFunc) Draw(frame Frame) error { return f(frame) }

// Chart is the handle returned by Initialize and required by Update.
type Chart struct {
	mu      sync.Mutex
	surface Surface
	frame   Frame
}

// Prepare runs extraction and config assembly without touching any chart.
func Prepare(payload prediction.Payload, sel prediction.Selection) (Frame, error) {
	series, err := Extract(payload)
	if err != nil {
		return Frame{}, err
	}
	if !series.Range.Finite() {
		return Frame{}, fmt.Errorf("%w: min=%v max=%v", ErrNonFiniteRange, series.Range.Min, series.Range.Max)
	}
	return Frame{
		Selection: sel,
		Series:    series,
		Config:    BuildConfig(sel, series.Range, payload.Summary),
	}, nil
}

// Initialize creates a chart bound to surface and draws the first frame.
func Initialize(surface Surface, payload prediction.Payload, sel prediction.Selection) (*Chart, error) {
	if surface == nil {
		return nil, ErrNoSurface
	}
	frame, err := Prepare(payload, sel)
	if err != nil {
		return nil, err
	}
	frame.Revision = 1
	if err := surface.Draw(frame); err != nil {
		return nil, fmt.Errorf("drawing initial chart failed: %w", err)
	}
	return &Chart{surface: surface, frame: frame}, nil
}

// Update replaces data and config on an existing chart and redraws it. Nothing
// from the previous payload survives. On any error the chart keeps its prior frame.
func (c *Chart) Update(payload prediction.Payload, sel prediction.Selection) error {
	if c == nil {
		return ErrNotInitialized
	}
	frame, err := Prepare(payload, sel)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.surface == nil {
		return ErrNotInitialized
	}
	frame.Revision = c.frame.Revision + 1
	if err := c.surface.Draw(frame); err != nil {
		return fmt.Errorf("redrawing chart failed: %w", err)
	}
	c.frame = frame
	return nil
}

// Frame returns the frame currently on display.
func (c *Chart) Frame() Frame {
	if c == nil {
		return Frame{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frame
}

// Redraw draws the current frame again, e.g. after a surface subscriber joins.
func (c *Chart) Redraw() error {
	if c == nil {
		return ErrNotInitialized
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.surface == nil {
		return ErrNotInitialized
	}
	return c.surface.Draw(c.frame)
}
