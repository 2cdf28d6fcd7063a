package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/scheme-mitra/backend/internal/metrics"
	"github.com/scheme-mitra/backend/internal/scheme"
	"github.com/scheme-mitra/backend/pkg/logger"
)

// ErrSessionNotFound is returned for explicit lookups of ids that do
// not exist. An evicted id is indistinguishable from one never
// issued.
var ErrSessionNotFound = errors.New("session not found")

// EntitySource supplies the processed catalog table for ranking.
type EntitySource interface {
	Entities() []scheme.Entity
}

type Config struct {
	IdleTimeout   time.Duration
	SweepInterval time.Duration
}

// Manager owns the in-memory session table. It is constructed once
// and injected into every handler; there is no package-level state.
//
// Concurrent turns against the same session id race on profile
// merges and history appends; the design accepts last-write-wins
// there rather than per-session locking. The table itself is always
// consistent under the mutex.
type Manager struct {
	catalog       EntitySource
	idleTimeout   time.Duration
	sweepInterval time.Duration

	mu       sync.RWMutex
	sessions map[string]*scheme.Session
}

func NewManager(catalog EntitySource, cfg Config) *Manager {
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 30 * time.Minute
	}
	if cfg.SweepInterval == 0 {
		cfg.SweepInterval = 5 * time.Minute
	}

	return &Manager{
		catalog:       catalog,
		idleTimeout:   cfg.IdleTimeout,
		sweepInterval: cfg.SweepInterval,
		sessions:      make(map[string]*scheme.Session),
	}
}

// Resolve returns the session for the given id, creating a fresh one
// when the id is empty or unknown. Newly supplied profile fields are
// merged into the existing profile, but only where nothing is set
// yet.
func (m *Manager) Resolve(sessionID string, profile *scheme.Profile, language string) *scheme.Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sessionID != "" {
		if sess, ok := m.sessions[sessionID]; ok {
			mergeProfile(sess.Profile, profile)
			if sess.Language == "" {
				sess.Language = language
			}
			return sess
		}
	}

	now := time.Now()
	sess := &scheme.Session{
		ID:         uuid.New().String(),
		Profile:    &scheme.Profile{},
		Language:   language,
		CreatedAt:  now,
		LastActive: now,
	}
	mergeProfile(sess.Profile, profile)
	m.sessions[sess.ID] = sess

	metrics.ActiveSessions.Set(float64(len(m.sessions)))
	logger.Debug("Session created", zap.String("session_id", sess.ID))
	return sess
}

// Get looks up an existing session without creating one.
func (m *Manager) Get(sessionID string) (*scheme.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sess, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (m *Manager) Delete(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	metrics.ActiveSessions.Set(float64(len(m.sessions)))
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Run drives the periodic eviction sweep until the context is
// cancelled. It is meant to be started once as a background
// goroutine alongside the request handlers.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

func (m *Manager) sweep() {
	cutoff := time.Now().Add(-m.idleTimeout)

	m.mu.Lock()
	evicted := 0
	for id, sess := range m.sessions {
		if sess.LastActive.Before(cutoff) {
			delete(m.sessions, id)
			evicted++
		}
	}
	remaining := len(m.sessions)
	m.mu.Unlock()

	if evicted > 0 {
		metrics.SessionsEvicted.Add(float64(evicted))
		metrics.ActiveSessions.Set(float64(remaining))
		logger.Info("Idle sessions evicted",
			zap.Int("evicted", evicted),
			zap.Int("remaining", remaining),
		)
	}
}

// mergeProfile copies fields from src into dst, filling only what is
// missing. Set fields are never overwritten.
func mergeProfile(dst, src *scheme.Profile) {
	if dst == nil || src == nil {
		return
	}
	if dst.BusinessType == "" {
		dst.BusinessType = src.BusinessType
	}
	if dst.BusinessStage == "" {
		dst.BusinessStage = src.BusinessStage
	}
	if dst.Location.State == "" {
		dst.Location.State = src.Location.State
	}
	if dst.Location.IsRural == nil {
		dst.Location.IsRural = src.Location.IsRural
	}
	if dst.Category == "" {
		dst.Category = src.Category
	}
	if dst.Gender == "" {
		dst.Gender = src.Gender
	}
	if len(dst.Interests) == 0 {
		dst.Interests = append([]string(nil), src.Interests...)
	}
}
