package session

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"bracketbuddy/internal/config"
	"bracketbuddy/internal/logger"
	"bracketbuddy/internal/prediction"
	"bracketbuddy/internal/render"
)

// Manager tracks live sessions and evicts idle ones.
type Manager struct {
	fetcher  prediction.Fetcher
	style    render.Style
	recorder Recorder
	idleTTL  time.Duration
	interval time.Duration
	now      func() time.Time
	log      *logger.Component

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager(fetcher prediction.Fetcher, style render.Style, recorder Recorder, cfg config.SessionConfig) *Manager {
	return &Manager{
		fetcher:  fetcher,
		style:    style,
		recorder: recorder,
		idleTTL:  cfg.IdleTTL(),
		interval: cfg.JanitorInterval(),
		now:      time.Now,
		log:      logger.Named("sessions"),
		sessions: make(map[string]*Session),
	}
}

// Create registers a new empty session. Its chart is drawn by the first Refresh.
func (m *Manager) Create() *Session {
	s := newSession(uuid.NewString(), m.fetcher, m.style, m.recorder, m.now())
	m.mu.Lock()
	m.sessions[s.ID] = s
	total := len(m.sessions)
	m.mu.Unlock()
	m.log.Infof("session %s created (total: %d)", s.ID, total)
	return s
}

// Get looks a session up and marks it as used.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrUnknownSession
	}
	s.touch(m.now())
	return s, nil
}

func (m *Manager) Remove(id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		s.Close()
	}
	return ok
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// IDs lists session ids, oldest first.
func (m *Manager) IDs() []string {
	m.mu.RLock()
	list := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		list = append(list, s)
	}
	m.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	ids := make([]string, len(list))
	for i, s := range list {
		ids[i] = s.ID
	}
	return ids
}

// Sweep closes sessions idle for longer than the TTL. A session with a
// connected viewer is never idle.
func (m *Manager) Sweep() int {
	cutoff := m.now().Add(-m.idleTTL)
	var evicted []*Session
	m.mu.Lock()
	for id, s := range m.sessions {
		if s.hub.Count() > 0 || s.LastSeen().After(cutoff) {
			continue
		}
		delete(m.sessions, id)
		evicted = append(evicted, s)
	}
	m.mu.Unlock()
	for _, s := range evicted {
		s.Close()
		m.log.Infof("session %s evicted after %s idle", s.ID, m.idleTTL)
	}
	return len(evicted)
}

// RunJanitor sweeps on every interval until ctx is done, then closes all sessions.
func (m *Manager) RunJanitor(ctx context.Context) error {
	interval := m.interval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			m.closeAll()
			return nil
		case <-ticker.C:
			m.Sweep()
		}
	}
}

func (m *Manager) closeAll() {
	m.mu.Lock()
	all := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()
	for _, s := range all {
		s.Close()
	}
}
