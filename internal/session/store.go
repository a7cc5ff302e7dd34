package session

import (
	"sync"
	"time"

	"github.com/fjod/go_pharmacy/internal/events"
	"github.com/fjod/go_pharmacy/internal/logger"
	"github.com/google/uuid"
)

const (
	// DefaultTTL is how long an idle session is kept.
	DefaultTTL = 30 * time.Minute

	// DefaultCleanupInterval is how often the background cleanup runs.
	DefaultCleanupInterval = time.Minute
)

type Config struct {
	TTL             time.Duration
	CleanupInterval time.Duration
}

// Store keeps sessions in memory. Nothing survives a restart.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	ttl   time.Duration
	sinks []events.Sink // attached to every new session's bus
	log   *logger.Logger
	now   func() time.Time

	stopCleanup chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
}

// NewStore starts the expiry loop; call Close to stop it. Every sink receives the events of
// every session.
func NewStore(cfg Config, log *logger.Logger, sinks ...events.Sink) *Store {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = DefaultCleanupInterval
	}
	if log == nil {
		log = logger.NewNop()
	}
	s := &Store{
		sessions:    make(map[string]*Session),
		ttl:         cfg.TTL,
		sinks:       sinks,
		log:         log.With("component", "sessions"),
		now:         time.Now,
		stopCleanup: make(chan struct{}),
	}

	s.wg.Add(1)
	go s.cleanupLoop(cfg.CleanupInterval)

	return s
}

func (s *Store) cleanupLoop(interval time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.expireSessions()
		case <-s.stopCleanup:
			return
		}
	}
}

// expireSessions drops sessions idle for longer than the TTL. A checkout still submitting
// is cancelled, which leaves the cart as it was.
func (s *Store) expireSessions() int {
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	var expired []*Session
	for id, sess := range s.sessions {
		if sess.LastSeen().Before(cutoff) {
			expired = append(expired, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range expired {
		sess.LeaveCheckout()
		s.log.Debug("session expired", "session_id", sess.ID)
	}
	return len(expired)
}

func (s *Store) Create() *Session {
	sess := newSession(uuid.NewString(), s.now())
	for _, sink := range s.sinks {
		sess.Bus.Subscribe(sink)
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	s.log.Debug("session created", "session_id", sess.ID)
	return sess
}

// Get returns the session and marks it as seen.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.touch(s.now())
	return sess, nil
}

// GetOrCreate returns the session for id, or a new one when id is empty or unknown.
func (s *Store) GetOrCreate(id string) (sess *Session, created bool) {
	if id != "" {
		if sess, err := s.Get(id); err == nil {
			return sess, false
		}
	}
	return s.Create(), true
}

func (s *Store) Delete(id string) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if ok {
		sess.LeaveCheckout()
	}
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Store) Close() {
	s.stopOnce.Do(func() { close(s.stopCleanup) })
	s.wg.Wait()
}
