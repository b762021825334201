// Single-session manager: a new file load supersedes the previous one.

package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/jetview/jetview/internal/catalog"
	"github.com/jetview/jetview/internal/config"
	"github.com/jetview/jetview/internal/jet"
	"github.com/maruel/ksid"
)

// ErrNoSession is returned when no database is loaded or the presented
// session ID belongs to a superseded load.
var ErrNoSession = errors.New("session: no such session")

// Manager holds the single current session. The viewer handles exactly
// one open file at a time; opening a new one closes its predecessor.
type Manager struct {
	mu  sync.RWMutex
	cur *Session
}

// NewManager returns an empty manager.
func NewManager() *Manager {
	return &Manager{}
}

// Open creates a session over an opened reader and makes it current,
// closing any predecessor.
func (m *Manager) Open(ctx context.Context, fileName string, r jet.Reader, cat *catalog.Catalog, limits config.Limits) *Session {
	s := New(fileName, r, cat, limits)
	m.mu.Lock()
	prev := m.cur
	m.cur = s
	m.mu.Unlock()
	if prev != nil {
		if err := prev.Close(); err != nil {
			slog.WarnContext(ctx, "Failed to close superseded session", "err", err)
		}
	}
	return s
}

// Current returns the current session, or nil.
func (m *Manager) Current() *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cur
}

// Close closes the current session, if any.
func (m *Manager) Close() error {
	m.mu.Lock()
	cur := m.cur
	m.cur = nil
	m.mu.Unlock()
	if cur == nil {
		return nil
	}
	return cur.Close()
}

// Get returns the current session if id matches it. A mismatched ID
// means the caller holds a token for a superseded load.
func (m *Manager) Get(id ksid.ID) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.cur == nil || m.cur.id != id {
		return nil, ErrNoSession
	}
	return m.cur, nil
}
