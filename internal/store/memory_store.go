package store

import (
	"sync"
	"time"

	"github.com/fjod/yume/internal/basket"
	"go.uber.org/zap"
)

const (
	// DefaultSessionTTL is how long an idle basket lives before it is discarded
	DefaultSessionTTL = 30 * time.Minute

	// DefaultCleanupInterval is how often the background cleanup runs
	DefaultCleanupInterval = time.Minute
)

type session struct {
	basket   *basket.Basket
	lastSeen time.Time
}

// MemoryStore implements SessionStore with in-memory storage
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*session

	ttl      time.Duration
	interval time.Duration
	onCreate func(sessionID string, b *basket.Basket)
	now      func() time.Time
	logger   *zap.Logger

	stopCleanup chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
}

type Option func(*MemoryStore)

// WithTTL sets the idle lifetime of a session
func WithTTL(ttl time.Duration) Option {
	return func(s *MemoryStore) { s.ttl = ttl }
}

// WithCleanupInterval sets how often expired sessions are swept
func WithCleanupInterval(d time.Duration) Option {
	return func(s *MemoryStore) { s.interval = d }
}

// WithOnCreate registers a hook that runs once for every new basket,
// before the basket is handed to any caller.
func WithOnCreate(fn func(sessionID string, b *basket.Basket)) Option {
	return func(s *MemoryStore) { s.onCreate = fn }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *MemoryStore) { s.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) { s.now = now }
}

// NewMemoryStore creates a new in-memory session store
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		sessions:    make(map[string]*session),
		ttl:         DefaultSessionTTL,
		interval:    DefaultCleanupInterval,
		now:         time.Now,
		logger:      zap.NewNop(),
		stopCleanup: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	// Start background cleanup goroutine
	s.wg.Add(1)
	go s.cleanupLoop()

	return s
}

// cleanupLoop periodically discards idle sessions
func (s *MemoryStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
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

// expireSessions removes every session idle for longer than the TTL
func (s *MemoryStore) expireSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	expired := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) > s.ttl {
			delete(s.sessions, id)
			expired++
		}
	}
	if expired > 0 {
		s.logger.Info("expired idle sessions",
			zap.Int("expired", expired),
			zap.Int("remaining", len(s.sessions)))
	}
	return expired
}

// Basket returns the basket for sessionID, creating it on first use
func (s *MemoryStore) Basket(sessionID string) (*basket.Basket, error) {
	if sessionID == "" {
		return nil, ErrSessionIDRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[sessionID]; ok {
		sess.lastSeen = s.now()
		return sess.basket, nil
	}

	b := basket.New()
	if s.onCreate != nil {
		s.onCreate(sessionID, b)
	}
	s.sessions[sessionID] = &session{basket: b, lastSeen: s.now()}
	s.logger.Debug("session created", zap.String("session_id", sessionID))
	return b, nil
}

// Delete discards the basket of sessionID
func (s *MemoryStore) Delete(sessionID string) error {
	if sessionID == "" {
		return ErrSessionIDRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, sessionID)
	return nil
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Close stops the background cleanup and waits for it to finish
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopCleanup) })
	s.wg.Wait()
	return nil
}
