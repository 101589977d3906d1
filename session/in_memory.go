package session

import (
	"sync"

	"github.com/hupe1980/agentlite/ledger"
)

// Store persists conversation ledgers keyed by session id so multi-turn
// callers can restore state between runs.
type Store interface {
	// Get returns a snapshot of the session's ledger, or a fresh empty
	// ledger for an unknown session id.
	Get(sessionID string) (*ledger.Ledger, error)
	// Save stores a snapshot of the ledger under the session id,
	// overwriting any previous state.
	Save(sessionID string, l *ledger.Ledger) error
	// Delete removes the session. Deleting an unknown id is a no-op.
	Delete(sessionID string) error
}

// InMemoryStore is a volatile Store implementation keeping ledgers in a
// process local map. It is safe for concurrent access and best suited for
// tests or ephemeral demo servers. Ledgers are snapshotted on both Save and
// Get to prevent external mutation of internal state.
type InMemoryStore struct {
	mu      sync.RWMutex
	ledgers map[string]*ledger.Ledger
}

var _ Store = (*InMemoryStore)(nil)

// NewInMemoryStore constructs an empty in-memory session store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{ledgers: make(map[string]*ledger.Ledger)}
}

// Get returns the session's ledger snapshot. Unknown ids yield a fresh empty
// ledger; nothing is stored until Save.
func (s *InMemoryStore) Get(sessionID string) (*ledger.Ledger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if l, ok := s.ledgers[sessionID]; ok {
		return snapshot(l)
	}
	return ledger.New(), nil
}

// Save stores a snapshot of the provided ledger under the session id.
func (s *InMemoryStore) Save(sessionID string, l *ledger.Ledger) error {
	snap, err := snapshot(l)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledgers[sessionID] = snap
	return nil
}

// Delete removes the session's ledger.
func (s *InMemoryStore) Delete(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ledgers, sessionID)
	return nil
}

// snapshot deep-copies a ledger through its document form. The summary is
// carried over separately since documents hold steps only.
func snapshot(l *ledger.Ledger) (*ledger.Ledger, error) {
	doc, err := l.Export()
	if err != nil {
		return nil, err
	}
	snap, err := ledger.Import(doc)
	if err != nil {
		return nil, err
	}
	snap.SetSummary(l.Summary())
	return snap, nil
}
