package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/songwd/calassist/internal/agent"
	"github.com/songwd/calassist/internal/instrumentation"
	"github.com/songwd/calassist/internal/logging"
)

// DefaultSessionTimeout is how long a session may sit idle before the
// cleanup pass removes it.
const DefaultSessionTimeout = 24 * time.Hour

// session holds one conversation's state. The mutex serializes turns so
// a session never interleaves two exchanges.
type session struct {
	id         string
	history    *agent.History
	lastAccess time.Time
	turnMu     sync.Mutex
}

// SessionManager tracks web chat sessions by uuid. Each session owns a
// capped history; idle sessions are pruned periodically.
type SessionManager struct {
	sessions       map[string]*session
	mu             sync.RWMutex
	cleanupTicker  *time.Ticker
	cleanupDone    chan struct{}
	sessionTimeout time.Duration
	metrics        *instrumentation.Metrics
	logger         *slog.Logger
}

// NewSessionManager creates a session manager with the default timeout.
// metrics may be nil.
func NewSessionManager(metrics *instrumentation.Metrics, logger *slog.Logger) *SessionManager {
	return NewSessionManagerWithTimeout(DefaultSessionTimeout, metrics, logger)
}

// NewSessionManagerWithTimeout creates a session manager with a custom
// idle timeout.
func NewSessionManagerWithTimeout(timeout time.Duration, metrics *instrumentation.Metrics, logger *slog.Logger) *SessionManager {
	if logger == nil {
		logger = slog.Default()
	}

	m := &SessionManager{
		sessions:       make(map[string]*session),
		cleanupTicker:  time.NewTicker(10 * time.Minute),
		cleanupDone:    make(chan struct{}),
		sessionTimeout: timeout,
		metrics:        metrics,
		logger:         logger,
	}

	go m.cleanupExpiredSessions()

	return m
}

// Acquire returns the session for id, creating a new one when id is
// empty or unknown. The returned id is the one the client should send on
// the next request.
func (m *SessionManager) Acquire(ctx context.Context, id string) (string, *session) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id != "" {
		if s, ok := m.sessions[id]; ok {
			s.lastAccess = time.Now()
			return id, s
		}
	}

	newID := uuid.NewString()
	s := &session{
		id:         newID,
		history:    agent.NewHistory(agent.WebHistoryLimit),
		lastAccess: time.Now(),
	}
	m.sessions[newID] = s
	m.metrics.SessionStarted(ctx)
	m.logger.Debug("session created", logging.Session(newID))
	return newID, s
}

// Count returns the number of live sessions.
func (m *SessionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Remove drops a session.
func (m *SessionManager) Remove(ctx context.Context, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; ok {
		delete(m.sessions, id)
		m.metrics.SessionEnded(ctx)
	}
}

// cleanupExpiredSessions periodically removes idle sessions.
func (m *SessionManager) cleanupExpiredSessions() {
	for {
		select {
		case <-m.cleanupTicker.C:
			m.mu.Lock()
			now := time.Now()
			expired := 0
			for id, s := range m.sessions {
				if now.Sub(s.lastAccess) > m.sessionTimeout {
					delete(m.sessions, id)
					m.metrics.SessionEnded(context.Background())
					expired++
				}
			}
			m.mu.Unlock()
			if expired > 0 {
				m.logger.Info("cleaned up expired sessions", slog.Int("count", expired))
			}
		case <-m.cleanupDone:
			return
		}
	}
}

// Stop halts the cleanup goroutine.
func (m *SessionManager) Stop() {
	if m.cleanupTicker != nil {
		m.cleanupTicker.Stop()
	}
	if m.cleanupDone != nil {
		close(m.cleanupDone)
	}
}
