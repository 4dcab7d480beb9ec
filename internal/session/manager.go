package session

import (
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/andyrewlee/termcore/internal/logging"
	"github.com/andyrewlee/termcore/internal/safego"
)

// ErrNotFound is returned for an unknown session id.
var ErrNotFound = errors.New("session: not found")

// Manager tracks live sessions by id.
type Manager struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

// NewManager returns an empty Manager.
func NewManager() *Manager {
	return &Manager{sessions: make(map[uuid.UUID]*Session)}
}

// Create starts a session and registers it. The session is dropped from the
// manager once its child exits.
func (m *Manager) Create(opts Options) (*Session, error) {
	s, err := Start(opts)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	safego.Go("session-reaper", func() {
		<-s.Done()
		m.remove(s.ID)
	})
	return s, nil
}

// Get looks up a session.
func (m *Manager) Get(id uuid.UUID) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// List returns the live sessions, oldest first.
func (m *Manager) List() []*Session {
	m.mu.RLock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Created.Equal(out[j].Created) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].Created.Before(out[j].Created)
	})
	return out
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close terminates one session and forgets it.
func (m *Manager) Close(id uuid.UUID) error {
	s, err := m.Get(id)
	if err != nil {
		return err
	}
	s.Close()
	m.remove(id)
	return nil
}

// CloseAll terminates every session.
func (m *Manager) CloseAll() {
	for _, s := range m.List() {
		s.Close()
		m.remove(s.ID)
	}
}

func (m *Manager) remove(id uuid.UUID) {
	m.mu.Lock()
	if _, ok := m.sessions[id]; ok {
		delete(m.sessions, id)
		logging.Debug("session %s: removed", id)
	}
	m.mu.Unlock()
}
