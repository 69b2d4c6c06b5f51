package api

import (
	"sync"

	"github.com/pagelingo/pagelingo/internal/session"
)

// Registry tracks live sessions by ID. It doubles as the pipeline
// notifier so handlers always see the latest snapshot without touching
// the orchestrator's single writer.
type Registry struct {
	mu    sync.RWMutex
	snaps map[string]session.Snapshot
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{snaps: make(map[string]session.Snapshot)}
}

// SessionUpdated stores the latest snapshot for its session.
func (r *Registry) SessionUpdated(snap session.Snapshot) {
	r.mu.Lock()
	r.snaps[snap.ID] = snap
	r.mu.Unlock()
}

// Get returns the latest snapshot for a session.
func (r *Registry) Get(id string) (session.Snapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snap, ok := r.snaps[id]
	return snap, ok
}

// List returns all known snapshots.
func (r *Registry) List() []session.Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]session.Snapshot, 0, len(r.snaps))
	for _, snap := range r.snaps {
		out = append(out, snap)
	}
	return out
}
