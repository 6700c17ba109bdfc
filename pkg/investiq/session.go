package investiq

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	defaultSessionTTL  = 30 * time.Minute
	maxSessionHistory  = 20
	sessionSweepPeriod = time.Minute
)

// SessionTurn is one completed exchange in a session.
type SessionTurn struct {
	Query  StockQuery `json:"query"`
	Reply  string     `json:"reply"`
	At     time.Time  `json:"at"`
	Ticker string     `json:"ticker,omitempty"`
}

// Session holds per-conversation state. All access goes through the manager's
// lock; sessions hold no lock of their own.
type Session struct {
	ID         string        `json:"id"`
	CreatedAt  time.Time     `json:"created_at"`
	LastActive time.Time     `json:"last_active"`
	LastTicker string        `json:"last_ticker,omitempty"`
	History    []SessionTurn `json:"history"`

	// Advisory per-session overview cache keyed by ticker. Dropped with the
	// session; never shared across sessions.
	overviews map[string]*StockOverview
}

// SessionManager keeps sessions in memory with a TTL. There is no background
// goroutine; expired sessions are swept lazily when the manager is touched.
type SessionManager struct {
	mu        sync.Mutex
	sessions  map[string]*Session
	ttl       time.Duration
	lastSweep time.Time
	now       func() time.Time
}

// NewSessionManager constructs a manager. ttl <= 0 uses the default.
func NewSessionManager(ttl time.Duration) *SessionManager {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionManager{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Touch returns the session for id, creating one when id is empty or unknown
// or expired. The second return reports whether a new session was created.
func (m *SessionManager) Touch(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweepLocked()

	now := m.now()
	if id != "" {
		if s, ok := m.sessions[id]; ok && !m.expiredLocked(s) {
			s.LastActive = now
			return s, false
		}
	}

	s := &Session{
		ID:         uuid.NewString(),
		CreatedAt:  now,
		LastActive: now,
	}
	m.sessions[s.ID] = s
	return s, true
}

// Record appends a completed turn to the session's history, bounding its
// length, and updates the last resolved ticker.
func (m *SessionManager) Record(id string, turn SessionTurn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return
	}
	s.History = append(s.History, turn)
	if len(s.History) > maxSessionHistory {
		s.History = s.History[len(s.History)-maxSessionHistory:]
	}
	if turn.Ticker != "" {
		s.LastTicker = turn.Ticker
	}
	s.LastActive = m.now()
}

// LastTicker reports the session's most recently resolved ticker, or "" when
// the session is unknown, expired, or has not resolved one yet.
func (m *SessionManager) LastTicker(id string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || m.expiredLocked(s) {
		return ""
	}
	return s.LastTicker
}

// CachedOverview returns the session's cached overview for a ticker.
func (m *SessionManager) CachedOverview(id, ticker string) (*StockOverview, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || m.expiredLocked(s) {
		return nil, false
	}
	o, ok := s.overviews[ticker]
	return o, ok
}

// StoreOverview caches an overview in the session for reuse within it.
func (m *SessionManager) StoreOverview(id, ticker string, o *StockOverview) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return
	}
	if s.overviews == nil {
		s.overviews = make(map[string]*StockOverview)
	}
	s.overviews[ticker] = o
}

// Delete removes a session. Deleting an unknown id is a no-op that reports
// false.
func (m *SessionManager) Delete(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return false
	}
	delete(m.sessions, id)
	return true
}

// Len reports the live session count after sweeping.
func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweepLocked()
	return len(m.sessions)
}

func (m *SessionManager) expiredLocked(s *Session) bool {
	return m.now().Sub(s.LastActive) > m.ttl
}

// sweepLocked drops expired sessions, at most once per sweep period.
func (m *SessionManager) sweepLocked() {
	now := m.now()
	if now.Sub(m.lastSweep) < sessionSweepPeriod {
		return
	}
	m.lastSweep = now
	for id, s := range m.sessions {
		if m.expiredLocked(s) {
			delete(m.sessions, id)
		}
	}
}
