package realtime

import (
	"sync"

	"go.uber.org/zap"
)

// Registry tracks the single open dashboard stream per project. It is
// process-local state: it does not survive restarts and is not shared
// between horizontally scaled instances, so each instance only serves the
// dashboards connected to it directly.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]*Client
	log   *zap.Logger
}

// NewRegistry creates an empty connection registry
func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{
		conns: make(map[string]*Client),
		log:   log,
	}
}

// Register stores client as the project's stream, replacing any previous
// one. The replaced stream is not actively evicted; it discovers the
// replacement through its own lifecycle.
func (r *Registry) Register(projectID string, client *Client) {
	r.mu.Lock()
	replaced := r.conns[projectID] != nil
	r.conns[projectID] = client
	total := len(r.conns)
	r.mu.Unlock()

	r.log.Info("Realtime stream registered",
		zap.String("project_id", projectID),
		zap.Bool("replaced", replaced),
		zap.Int("total_streams", total))
}

// Unregister removes the project's mapping if it still points at client.
// The identity check keeps a replaced stream's deferred cleanup from
// evicting its successor. Idempotent; unknown keys are a no-op.
func (r *Registry) Unregister(projectID string, client *Client) {
	r.mu.Lock()
	current, ok := r.conns[projectID]
	if ok && current == client {
		delete(r.conns, projectID)
	}
	total := len(r.conns)
	r.mu.Unlock()

	if ok && current == client {
		r.log.Info("Realtime stream unregistered",
			zap.String("project_id", projectID),
			zap.Int("total_streams", total))
	}
}

// Lookup returns the project's stream handle, if one is open.
func (r *Registry) Lookup(projectID string) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	client, ok := r.conns[projectID]
	return client, ok
}

// Len reports the number of open streams.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
