package conversation

import (
	"context"
	"sync"
	"time"

	"voice-assistant/internal/common/logger"
)

// Store indexes live sessions by ID for hosts that serve many users.
type Store struct {
	mu        sync.Mutex
	sessions  map[string]*Session
	responder Responder
	idleTTL   time.Duration
	clock     func() time.Time
	logger    logger.Logger
}

func NewStore(responder Responder, idleTTL time.Duration, log logger.Logger) *Store {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Store{
		sessions:  make(map[string]*Session),
		responder: responder,
		idleTTL:   idleTTL,
		clock:     time.Now,
		logger:    log,
	}
}

// Get returns the session for id, or a new one when id is empty or unknown.
func (s *Store) Get(id string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[id]; ok && id != "" {
		return sess
	}
	sess := newSession(s.responder, s.logger, s.clock)
	s.sessions[sess.ID()] = sess
	return sess
}

// Lookup returns an existing session only.
func (s *Store) Lookup(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Prune drops sessions idle for longer than the store's TTL. A zero TTL keeps everything.
func (s *Store) Prune() int {
	if s.idleTTL <= 0 {
		return 0
	}
	now := s.clock()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		snap := sess.Snapshot()
		if snap.IsIdle(now, s.idleTTL) {
			delete(s.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		s.logger.Debug("pruned idle sessions", map[string]interface{}{"count": removed})
	}
	return removed
}

// RunPruner calls Prune every interval until ctx is done.
func (s *Store) RunPruner(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Prune()
		}
	}
}
