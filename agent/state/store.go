package state

import (
	"context"
	"errors"
	"strings"
	"sync"
)

var ErrStateNotFound = errors.New("session state not found")

// Store is the session registry used by the orchestrator. Implementations
// must be safe for concurrent use; the stored pointer keeps single-owner
// semantics, the store only indexes it.
type Store interface {
	Load(ctx context.Context, sessionID string) (*SessionState, error)
	Save(ctx context.Context, st *SessionState) error
	Delete(ctx context.Context, sessionID string) error
}

// MemoryStore keeps sessions in-process. Interview sessions never outlive
// the process by contract, so no external persistence backs it.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*SessionState
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*SessionState)}
}

func (m *MemoryStore) Load(_ context.Context, sessionID string) (*SessionState, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, ErrInvalidSession
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrStateNotFound
	}
	return st, nil
}

func (m *MemoryStore) Save(_ context.Context, st *SessionState) error {
	if st == nil {
		return ErrNilSessionState
	}
	if strings.TrimSpace(st.SessionID) == "" {
		return ErrInvalidSession
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[st.SessionID] = st
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}
