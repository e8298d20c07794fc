package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/comigor/sentiment-go/internal/logger"
)

// ErrSessionNotFound is returned by Registry.Get for unknown ids.
var ErrSessionNotFound = errors.New("session not found")

// Factory builds a controller for a new session id.
type Factory func(id string) *Controller

type entry struct {
	ctrl     *Controller
	lastSeen time.Time
}

// Registry holds one independent Controller per client (browser, MCP peer).
// Every lookup refreshes the session's last-seen time; Sweep drops sessions
// that have been idle too long.
type Registry struct {
	factory Factory
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

// NewRegistry creates an empty registry.
func NewRegistry(factory Factory) *Registry {
	return &Registry{factory: factory, now: time.Now, sessions: make(map[string]*entry)}
}

// Create starts a new session under a fresh uuid.
func (r *Registry) Create() *Controller {
	id := uuid.NewString()
	c := r.factory(id)

	r.mu.Lock()
	r.sessions[id] = &entry{ctrl: c, lastSeen: r.now()}
	r.mu.Unlock()
	return c
}

// Get returns the session with the given id.
func (r *Registry) Get(id string) (*Controller, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	e.lastSeen = r.now()
	return e.ctrl, nil
}

// GetOrCreate returns the session for id, or a new one when id is unknown.
// The boolean reports whether a session was created.
func (r *Registry) GetOrCreate(id string) (*Controller, bool) {
	if id != "" {
		if c, err := r.Get(id); err == nil {
			return c, false
		}
	}
	return r.Create(), true
}

// Delete ends a session. Its state is dropped.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// Len is the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep deletes sessions not seen for longer than idle and returns how many
// were removed. Sessions with a request in flight are kept.
func (r *Registry) Sweep(idle time.Duration) int {
	cutoff := r.now().Add(-idle)

	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, e := range r.sessions {
		if e.lastSeen.After(cutoff) || e.ctrl.Snapshot().Loading() {
			continue
		}
		delete(r.sessions, id)
		removed++
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (r *Registry) RunSweeper(ctx context.Context, interval, idle time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := r.Sweep(idle); n > 0 {
				logger.L.Info("expired idle sessions", "removed", n, "live", r.Len())
			}
		}
	}
}
