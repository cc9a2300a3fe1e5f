// Package session keeps one chart per viewer and serializes its updates.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"gorm.io/datatypes"

	"bracketbuddy/internal/logger"
	"bracketbuddy/internal/pkg/text"
	"bracketbuddy/internal/prediction"
	"bracketbuddy/internal/render"
	"bracketbuddy/internal/scatter"
	"bracketbuddy/internal/store/model"
)

const maxRecordedError = 512

// Recorder stores render attempts. store.RenderRepository satisfies it.
type Recorder interface {
	Insert(ctx context.Context, rec *model.RenderModel) error
}

// Outcome describes a committed render.
type Outcome struct {
	Seq   uint64
	Frame scatter.Frame
}

// Session owns a chart handle and the surfaces it draws on.
type Session struct {
	ID        string
	CreatedAt time.Time

	fetcher  prediction.Fetcher
	recorder Recorder
	echarts  *render.EChartsSurface
	hub      *Hub
	surface  scatter.Surface
	seq      prediction.Sequencer
	log      *logger.Component

	// mu serializes chart mutation; a Refresh holds it only while committing.
	mu     sync.Mutex
	chart  *scatter.Chart
	closed bool

	inflightMu sync.Mutex
	inflight   context.CancelFunc

	lastSeen atomic.Int64
}

func newSession(id string, fetcher prediction.Fetcher, style render.Style, recorder Recorder, now time.Time) *Session {
	hub := NewHub(id)
	echarts := render.NewEChartsSurface(style)
	s := &Session{
		ID:        id,
		CreatedAt: now,
		fetcher:   fetcher,
		recorder:  recorder,
		echarts:   echarts,
		hub:       hub,
		surface:   render.Fanout{echarts, hubSurface{hub: hub, style: style}},
		log:       logger.Named("session").With("session", id),
	}
	s.touch(now)
	return s
}

func (s *Session) touch(now time.Time) { s.lastSeen.Store(now.UnixNano()) }

// LastSeen is the last time the session was used over HTTP.
func (s *Session) LastSeen() time.Time { return time.Unix(0, s.lastSeen.Load()) }

func (s *Session) Hub() *Hub { return s.hub }

func (s *Session) ECharts() *render.EChartsSurface { return s.echarts }

// Frame returns what is on display, or ErrNotInitialized before the first render.
func (s *Session) Frame() (scatter.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.chart == nil {
		return scatter.Frame{}, scatter.ErrNotInitialized
	}
	return s.chart.Frame(), nil
}

// Refresh fetches the prediction for sel and draws it, initializing the chart
// on first use and updating it in place afterwards. A newer Refresh cancels
// the fetch of an older one; a reply that arrives after it was superseded is
// discarded with prediction.ErrStaleResponse.
func (s *Session) Refresh(ctx context.Context, sel prediction.Selection) (Outcome, error) {
	sel = sel.Normalize()
	if err := sel.Complete(); err != nil {
		return Outcome{}, err
	}
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return Outcome{}, ErrClosed
	}
	seq, fetchCtx, cancel := s.beginFetch(ctx)
	defer s.endFetch(seq, cancel)

	payload, err := s.fetcher.Fetch(fetchCtx, sel)
	if err != nil {
		if !s.seq.IsLatest(seq) {
			err = fmt.Errorf("%w: %v", prediction.ErrStaleResponse, err)
		}
		s.fail(ctx, seq, sel, err)
		return Outcome{Seq: seq}, err
	}

	s.mu.Lock()
	frame, err := s.commitLocked(seq, payload, sel)
	s.mu.Unlock()
	if err != nil {
		s.fail(ctx, seq, sel, err)
		return Outcome{Seq: seq}, err
	}
	s.record(ctx, seq, sel, frame, nil)
	s.log.Infof("seq=%d rev=%d %s points=%d", seq, frame.Revision, sel, len(frame.Series.Points))
	return Outcome{Seq: seq, Frame: frame}, nil
}

func (s *Session) commitLocked(seq uint64, payload prediction.Payload, sel prediction.Selection) (scatter.Frame, error) {
	if s.closed {
		return scatter.Frame{}, ErrClosed
	}
	if err := s.seq.Accept(seq); err != nil {
		return scatter.Frame{}, err
	}
	if s.chart == nil {
		chart, err := scatter.Initialize(s.surface, payload, sel)
		if err != nil {
			return scatter.Frame{}, err
		}
		s.chart = chart
		return chart.Frame(), nil
	}
	if err := s.chart.Update(payload, sel); err != nil {
		return scatter.Frame{}, err
	}
	return s.chart.Frame(), nil
}

// beginFetch issues the next sequence number and cancels the previous fetch
// in one critical section, so the fetch left running always holds the latest seq.
func (s *Session) beginFetch(ctx context.Context) (uint64, context.Context, context.CancelFunc) {
	fetchCtx, cancel := context.WithCancel(ctx)
	s.inflightMu.Lock()
	defer s.inflightMu.Unlock()
	seq := s.seq.Next()
	if s.inflight != nil {
		s.inflight()
	}
	s.inflight = cancel
	return seq, fetchCtx, cancel
}

func (s *Session) endFetch(seq uint64, cancel context.CancelFunc) {
	s.inflightMu.Lock()
	if s.seq.IsLatest(seq) {
		s.inflight = nil
	}
	s.inflightMu.Unlock()
	cancel()
}

func (s *Session) fail(ctx context.Context, seq uint64, sel prediction.Selection, err error) {
	kind := ErrorKind(err)
	if kind == KindStale {
		s.log.Debugf("seq=%d dropped: %v", seq, err)
	} else {
		s.log.Warnf("seq=%d %s failed (%s): %v", seq, sel, kind, err)
		s.hub.Broadcast(Message{Type: MessageChartError, Error: &ErrorBody{Kind: kind, Message: err.Error()}})
	}
	s.record(ctx, seq, sel, scatter.Frame{}, err)
}

func (s *Session) record(ctx context.Context, seq uint64, sel prediction.Selection, frame scatter.Frame, err error) {
	if s.recorder == nil {
		return
	}
	rec := &model.RenderModel{
		SessionID: s.ID,
		Seq:       seq,
		Revision:  frame.Revision,
		HomeTeam:  sel.HomeTeam,
		HomeYear:  sel.HomeYear,
		AwayTeam:  sel.AwayTeam,
		AwayYear:  sel.AwayYear,
		Points:    len(frame.Series.Points),
		Outcome:   ErrorKind(err),
		Timestamp: time.Now().UnixMilli(),
	}
	if err != nil {
		rec.Error = text.Truncate(err.Error(), maxRecordedError)
	}
	if frame.Revision > 0 {
		lo, hi := frame.Series.Range.Min, frame.Series.Range.Max
		details, mErr := json.Marshal(model.RenderDetails{
			Title:  frame.Config.Title,
			XLabel: frame.Config.XAxis.Label,
			YLabel: frame.Config.YAxis.Label,
			Min:    &lo,
			Max:    &hi,
		})
		if mErr == nil {
			rec.Details = datatypes.JSON(details)
		}
	}
	// the caller may have hung up; the row is still wanted
	recCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.recorder.Insert(recCtx, rec); err != nil {
		s.log.Warnf("record render failed: %v", err)
	}
}

// Close cancels any in-flight fetch and disconnects viewers.
func (s *Session) Close() {
	s.inflightMu.Lock()
	if s.inflight != nil {
		s.inflight()
		s.inflight = nil
	}
	s.inflightMu.Unlock()
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.hub.Close()
}

// IsStale reports whether err means the reply was superseded rather than failed.
func IsStale(err error) bool {
	return errors.Is(err, prediction.ErrStaleResponse)
}
