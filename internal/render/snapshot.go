package render

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"bracketbuddy/internal/logger"
	"bracketbuddy/internal/scatter"
)

// ErrSnapshotDisabled is returned when snapshots are switched off in config.
var ErrSnapshotDisabled = errors.New("snapshot rendering disabled")

var (
	headlessOnce sync.Once
	headlessErr  error
)

// EnsureHeadlessAvailable starts a browser once to find out whether snapshots can work at all.
func EnsureHeadlessAvailable(ctx context.Context) error {
	headlessOnce.Do(func() {
		if ctx == nil {
			ctx = context.Background()
		}
		parent, cancel := chromedp.NewContext(ctx)
		defer cancel()
		headlessErr = chromedp.Run(parent)
		if headlessErr != nil {
			logger.Named("render").Warnf("headless browser unavailable: %v", headlessErr)
		}
	})
	return headlessErr
}

// SnapshotSurface screenshots the echarts page of each frame in a headless
// browser, so the PNG matches what viewers see.
type SnapshotSurface struct {
	ctx     context.Context
	style   Style
	timeout time.Duration
	enabled bool

	mu    sync.RWMutex
	image []byte
}

func NewSnapshotSurface(ctx context.Context, style Style, enabled bool, timeout time.Duration) *SnapshotSurface {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &SnapshotSurface{ctx: ctx, style: style.withDefaults(), timeout: timeout, enabled: enabled}
}

func (s *SnapshotSurface) Draw(frame scatter.Frame) error {
	if !s.enabled {
		return ErrSnapshotDisabled
	}
	if err := EnsureHeadlessAvailable(s.ctx); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	page, err := RenderPage(frame, s.style)
	if err != nil {
		return err
	}
	img, err := renderHTMLToPNG(s.ctx, page, s.style.Width, s.style.Height, s.timeout)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	s.mu.Lock()
	s.image = img
	s.mu.Unlock()
	return nil
}

func (s *SnapshotSurface) Image() ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.image, s.image != nil
}

func renderHTMLToPNG(ctx context.Context, html []byte, width, height int, timeout time.Duration) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	parent, cancel := chromedp.NewContext(ctx)
	defer cancel()

	timeoutCtx, cancelTimeout := context.WithTimeout(parent, timeout)
	defer cancelTimeout()

	dataURI := "data:text/html;base64," + base64.StdEncoding.EncodeToString(html)
	var screenshot []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(width), int64(height)),
		chromedp.Navigate(dataURI),
		chromedp.WaitReady("body", chromedp.ByQuery),
		// echarts animates the first paint
		chromedp.Sleep(1200 * time.Millisecond),
		chromedp.FullScreenshot(&screenshot, 0),
	}
	if err := chromedp.Run(timeoutCtx, tasks...); err != nil {
		return nil, err
	}
	return screenshot, nil
}
