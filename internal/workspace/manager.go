package workspace

import (
	"sync"
	"time"
)

type managed struct {
	ws       *Workspace
	lastSeen time.Time
}

// Manager owns the workspaces of all browser sessions.
type Manager struct {
	mu         sync.Mutex
	workspaces map[string]*managed
	now        func() time.Time
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{
		workspaces: make(map[string]*managed),
		now:        time.Now,
	}
}

// Get returns the workspace for id, creating it on first use.
func (m *Manager) Get(id string) *Workspace {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.workspaces[id]
	if !ok {
		entry = &managed{ws: New(id)}
		m.workspaces[id] = entry
	}
	entry.lastSeen = m.now()
	return entry.ws
}

// Each calls fn for every workspace.
func (m *Manager) Each(fn func(*Workspace)) {
	m.mu.Lock()
	list := make([]*Workspace, 0, len(m.workspaces))
	for _, entry := range m.workspaces {
		list = append(list, entry.ws)
	}
	m.mu.Unlock()

	for _, ws := range list {
		fn(ws)
	}
}

// Len returns the number of live workspaces.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.workspaces)
}

// Reap drops workspaces not used for longer than maxIdle and returns how
// many were dropped.
func (m *Manager) Reap(maxIdle time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-maxIdle)
	n := 0
	for id, entry := range m.workspaces {
		if entry.lastSeen.Before(cutoff) {
			delete(m.workspaces, id)
			n++
		}
	}
	return n
}
