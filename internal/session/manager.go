package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"TmhnaDash/api/model"
	"TmhnaDash/api/pane"
	"TmhnaDash/api/role"
	"TmhnaDash/internal/logger"
)

// DefaultTTL is how long an idle workspace is kept.
const DefaultTTL = 8 * time.Hour

// Manager owns every live workspace. Role and notice flags are written
// through to the Store when one is configured.
type Manager struct {
	sessions map[string]*Session
	mu       sync.Mutex
	ttl      time.Duration
	store    Store
	now      func() time.Time
}

func NewManager(ttl time.Duration, store Store) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		store:    store,
		now:      time.Now,
	}
}

func (m *Manager) newSession(id string, r role.Role) *Session {
	now := m.now()
	return &Session{
		ID:        id,
		Role:      r,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
		Panes:     pane.NewTracker(),
		approved:  make(map[role.Brand][]model.ApprovedRow),
		notices:   make(map[role.Brand]bool),
	}
}

// CreateSession starts a workspace with a fresh id.
func (m *Manager) CreateSession(ctx context.Context, r role.Role) *Session {
	s := m.newSession(generateSessionID(), r)
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	m.persist(ctx, s)
	return s
}

// GetSession returns a live workspace and extends its expiry. A workspace
// unknown to this process is restored from the store when possible.
func (m *Manager) GetSession(ctx context.Context, sessionID string) (*Session, bool) {
	if sessionID == "" {
		return nil, false
	}
	m.mu.Lock()
	s, exists := m.sessions[sessionID]
	if exists && m.now().After(s.ExpiresAt) {
		delete(m.sessions, sessionID)
		exists = false
	}
	if exists {
		s.ExpiresAt = m.now().Add(m.ttl)
		m.mu.Unlock()
		return s, true
	}
	m.mu.Unlock()

	if m.store == nil {
		return nil, false
	}
	st, ok, err := m.store.Load(ctx, sessionID)
	if err != nil {
		logger.WithFields(logrus.Fields{"session": sessionID}).WithError(err).Error("workspace restore failed")
		return nil, false
	}
	if !ok {
		return nil, false
	}
	s = m.newSession(sessionID, role.Parse(st.Role))
	for _, b := range st.Notices {
		if brand, err := role.ParseBrand(b); err == nil {
			s.notices[brand] = true
		}
	}
	m.mu.Lock()
	if existing, ok := m.sessions[sessionID]; ok {
		s = existing
	} else {
		m.sessions[sessionID] = s
	}
	m.mu.Unlock()
	return s, true
}

// SetRole switches the workspace persona. Cached rows belong to the old
// role, so they are dropped and outstanding pane loads go stale.
func (m *Manager) SetRole(ctx context.Context, s *Session, r role.Role) {
	s.commitMu.Lock()
	s.mu.Lock()
	changed := s.Role != r
	s.Role = r
	s.mu.Unlock()
	if changed {
		s.ClearCaches()
		s.Panes.Invalidate()
	}
	s.commitMu.Unlock()
	m.persist(ctx, s)
}

// MarkNotice records that the mapping request for brand was sent. It
// returns false when it had already been sent in this workspace.
func (m *Manager) MarkNotice(ctx context.Context, s *Session, brand role.Brand) bool {
	s.mu.Lock()
	if s.notices[brand] {
		s.mu.Unlock()
		return false
	}
	s.notices[brand] = true
	s.mu.Unlock()
	m.persist(ctx, s)
	return true
}

// ClearNotice releases a flag taken by MarkNotice whose request was not
// delivered, so the controller can retry.
func (m *Manager) ClearNotice(ctx context.Context, s *Session, brand role.Brand) {
	s.mu.Lock()
	delete(s.notices, brand)
	s.mu.Unlock()
	m.persist(ctx, s)
}

// CleanupExpiredSessions drops idle workspaces and returns how many went.
func (m *Manager) CleanupExpiredSessions() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	now := m.now()
	for id, s := range m.sessions {
		if now.After(s.ExpiresAt) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

// Others returns the ids of every live workspace except id.
func (m *Manager) Others(id string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.sessions))
	for sid := range m.sessions {
		if sid != id {
			out = append(out, sid)
		}
	}
	return out
}

func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) TTL() time.Duration { return m.ttl }

func (m *Manager) persist(ctx context.Context, s *Session) {
	if m.store == nil {
		return
	}
	if err := m.store.Save(ctx, s.ID, s.state(), m.ttl); err != nil {
		logger.WithFields(logrus.Fields{"session": s.ID}).WithError(err).Error("workspace persist failed")
	}
}

func generateSessionID() string {
	return uuid.NewString()
}
