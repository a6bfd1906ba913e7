package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/scoutchat/scout/internal/log"
)

// Idle eviction defaults.
const (
	// DefaultIdleTTL is how long a session may sit untouched before the
	// manager evicts it.
	DefaultIdleTTL = 30 * time.Minute

	// defaultSweepInterval is how often the eviction loop runs.
	defaultSweepInterval = time.Minute
)

// ErrSessionNotFound indicates an unknown or evicted session ID.
var ErrSessionNotFound = errors.New("session not found")

// ManagerConfig contains the parameters for creating a Manager.
type ManagerConfig struct {
	Build  BuildFunc
	Logger log.Logger

	TurnTimeout   time.Duration // zero = DefaultTurnTimeout
	IdleTTL       time.Duration // zero = DefaultIdleTTL
	SweepInterval time.Duration // zero = one minute
}

// Manager owns the live sessions, keyed by ID. Sessions hold API keys in
// memory only, so eviction is the sole cleanup path besides explicit reset.
type Manager struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session

	build         BuildFunc
	logger        log.Logger
	turnTimeout   time.Duration
	idleTTL       time.Duration
	sweepInterval time.Duration

	wg sync.WaitGroup
}

// NewManager creates an empty session manager.
func NewManager(cfg ManagerConfig) (*Manager, error) {
	if cfg.Build == nil {
		return nil, errors.New("build func is required")
	}
	if cfg.Logger == nil {
		return nil, errors.New("logger is required")
	}

	idleTTL := cfg.IdleTTL
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}
	sweep := cfg.SweepInterval
	if sweep <= 0 {
		sweep = defaultSweepInterval
	}

	return &Manager{
		sessions:      make(map[uuid.UUID]*Session),
		build:         cfg.Build,
		logger:        cfg.Logger,
		turnTimeout:   cfg.TurnTimeout,
		idleTTL:       idleTTL,
		sweepInterval: sweep,
	}, nil
}

// Create adds a new empty session and returns it.
func (m *Manager) Create() (*Session, error) {
	s, err := New(Config{
		Build:       m.build,
		Logger:      m.logger,
		TurnTimeout: m.turnTimeout,
	})
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	m.logger.Info("session created", "session_id", s.ID)
	return s, nil
}

// Get returns the session for the given ID.
func (m *Manager) Get(id uuid.UUID) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Remove drops the session. Its credentials become unreachable.
func (m *Manager) Remove(id uuid.UUID) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// StartEviction launches the idle-eviction loop. It stops when ctx is
// canceled; Wait blocks until it has stopped.
func (m *Manager) StartEviction(ctx context.Context) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		ticker := time.NewTicker(m.sweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.evictIdle(time.Now())
			}
		}
	}()
}

// Wait blocks until the eviction loop has stopped.
func (m *Manager) Wait() {
	m.wg.Wait()
}

// evictIdle removes sessions idle past the TTL.
func (m *Manager) evictIdle(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, s := range m.sessions {
		if now.Sub(s.LastActive()) > m.idleTTL {
			delete(m.sessions, id)
			m.logger.Info("evicted idle session", "session_id", id)
		}
	}
}
