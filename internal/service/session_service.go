package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"futurecustomer/internal/workflow"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionMetrics tracks open sessions
type SessionMetrics interface {
	SessionOpened()
	SessionClosed()
}

// Session is one user's workflow
type Session struct {
	ID        string
	Machine   *workflow.Machine
	CreatedAt time.Time

	mu       sync.Mutex
	lastSeen time.Time
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

// LastSeen returns the time of the last access
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// SessionService keeps workflow sessions in memory and evicts idle ones
type SessionService struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	ttl         time.Duration
	metrics     SessionMetrics
	broadcaster Broadcaster
	logger      *slog.Logger
	now         func() time.Time
}

// NewSessionService creates a session registry. Sessions idle for longer than
// ttl are removed by Sweep.
func NewSessionService(ttl time.Duration, metrics SessionMetrics, logger *slog.Logger) *SessionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionService{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		metrics:  metrics,
		logger:   logger.With("component", "sessions"),
		now:      time.Now,
	}
}

// SetBroadcaster sets the WebSocket broadcaster
func (s *SessionService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Open registers a session around its machine
func (s *SessionService) Open(id string, m *workflow.Machine) *Session {
	now := s.now()
	sess := &Session{ID: id, Machine: m, CreatedAt: now, lastSeen: now}

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.SessionOpened()
	}
	s.logger.Info("session opened", "session", id)
	return sess
}

// Get returns a session and marks it as active
func (s *SessionService) Get(id string) (*Session, error) {
	sess, ok := s.Lookup(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.touch(s.now())
	return sess, nil
}

// Lookup returns a session without marking it as active
func (s *SessionService) Lookup(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// Close ends a session, cancelling its timers and dropping its connections
func (s *SessionService) Close(id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	s.release(sess, "closed")
	return nil
}

// Count returns the number of open sessions
func (s *SessionService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep removes sessions idle since before now minus the TTL
func (s *SessionService) Sweep(now time.Time) int {
	cutoff := now.Add(-s.ttl)

	var expired []*Session
	s.mu.Lock()
	for id, sess := range s.sessions {
		if sess.LastSeen().Before(cutoff) {
			expired = append(expired, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range expired {
		s.release(sess, "expired")
	}
	return len(expired)
}

// RunJanitor sweeps idle sessions every interval until ctx is done
func (s *SessionService) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(s.now()); n > 0 {
				s.logger.Info("evicted idle sessions", "count", n, "remaining", s.Count())
			}
		}
	}
}

func (s *SessionService) release(sess *Session, reason string) {
	sess.Machine.Reset()
	if s.broadcaster != nil {
		s.broadcaster.BroadcastToSession(sess.ID, EventSessionClosed, map[string]string{"reason": reason})
		s.broadcaster.DisconnectSession(sess.ID)
	}
	if s.metrics != nil {
		s.metrics.SessionClosed()
	}
	s.logger.Info("session ended", "session", sess.ID, "reason", reason)
}
