// Package session keeps per-upload conversion state and its scratch files.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/henkan/internal/models"
)

// ErrNotFound is returned when a session ID is unknown or expired.
var ErrNotFound = errors.New("session not found")

// Store holds active upload sessions in memory. Each session owns a scratch
// directory under workDir; removing a session removes its files.
type Store struct {
	workDir string
	ttl     time.Duration
	logger  *zap.Logger

	mu       sync.Mutex
	sessions map[string]*models.Upload
	done     chan struct{}
	stopOnce sync.Once
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets a logger for reaper debug output.
func WithLogger(l *zap.Logger) StoreOption {
	return func(s *Store) { s.logger = l }
}

// NewStore creates a session store rooted at workDir. Sessions older than
// ttl are removed by the reaper once Start is called.
func NewStore(workDir string, ttl time.Duration, opts ...StoreOption) (*Store, error) {
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}
	s := &Store{
		workDir:  workDir,
		ttl:      ttl,
		sessions: make(map[string]*models.Upload),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Create allocates a new session with a fresh ID and scratch directory.
// The returned Upload is the live record: the caller may fill in its fields
// until the ID is handed out, after which writes go through store methods.
func (s *Store) Create(filename string, kind models.UploadKind) (*models.Upload, error) {
	id := uuid.New().String()
	dir := filepath.Join(s.workDir, id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	up := &models.Upload{
		ID:        id,
		Filename:  filename,
		Kind:      kind,
		CreatedAt: time.Now(),
	}
	s.mu.Lock()
	s.sessions[id] = up
	s.mu.Unlock()
	return up, nil
}

// Dir returns the scratch directory of a session.
func (s *Store) Dir(id string) string {
	return filepath.Join(s.workDir, id)
}

// Get returns a snapshot of the session with the given ID. Concurrent
// requests against the same session each see a consistent copy; mutations
// go through SetDatabase.
func (s *Store) Get(id string) (*models.Upload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	up, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	snapshot := *up
	return &snapshot, nil
}

// SetDatabase records the converted database for a session.
func (s *Store) SetDatabase(id, path, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	up, ok := s.sessions[id]
	if !ok {
		return ErrNotFound
	}
	up.DatabasePath = path
	up.DatabaseName = name
	return nil
}

// Remove deletes a session and its scratch directory.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	return os.RemoveAll(s.Dir(id))
}

// Count returns the number of active sessions.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Start runs the TTL reaper until Stop is called. A zero or negative TTL
// disables reaping.
func (s *Store) Start() {
	if s.ttl <= 0 {
		return
	}
	interval := s.ttl / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.done:
				return
			case <-ticker.C:
				s.reap()
			}
		}
	}()
}

// Stop shuts down the reaper. Session files are left for the next reap or
// process restart.
func (s *Store) Stop() {
	s.stopOnce.Do(func() { close(s.done) })
}

func (s *Store) reap() {
	cutoff := time.Now().Add(-s.ttl)
	var expired []string
	s.mu.Lock()
	for id, up := range s.sessions {
		if up.CreatedAt.Before(cutoff) {
			expired = append(expired, id)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()
	for _, id := range expired {
		if err := os.RemoveAll(s.Dir(id)); err != nil && s.logger != nil {
			s.logger.Warn("session cleanup failed", zap.String("id", id), zap.Error(err))
		}
	}
	if len(expired) > 0 && s.logger != nil {
		s.logger.Debug("sessions reaped", zap.Int("count", len(expired)))
	}
}
