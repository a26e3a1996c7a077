package sessions

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/timeboard/internal/common"
	"github.com/dmitrijs2005/timeboard/internal/logging"
	"github.com/dmitrijs2005/timeboard/internal/server/auth"
	"github.com/dmitrijs2005/timeboard/internal/server/repositories/events"
)

// Gauge receives the number of live workspaces after every change.
type Gauge interface {
	SetSessions(n int)
}

type entry struct {
	ws       *Workspace
	lastSeen time.Time
}

// Registry maps session ids to workspaces.
type Registry struct {
	mu    sync.Mutex
	items map[string]*entry

	secretKey []byte
	ttl       time.Duration
	now       func() time.Time
	newRepo   func() events.Repository
	logger    logging.Logger
	gauge     Gauge
}

// NewRegistry creates a registry whose workspaces live ttl past their last
// access. gauge may be nil.
func NewRegistry(secretKey []byte, ttl time.Duration, logger logging.Logger, gauge Gauge) *Registry {
	return &Registry{
		items:     make(map[string]*entry),
		secretKey: secretKey,
		ttl:       ttl,
		now:       time.Now,
		newRepo:   func() events.Repository { return events.NewMemoryRepository() },
		logger:    logger.With("module", "sessions"),
		gauge:     gauge,
	}
}

// Open creates an empty workspace and returns it with its signed token.
func (r *Registry) Open(ctx context.Context) (*Workspace, string, error) {
	id := uuid.NewString()

	token, err := auth.GenerateToken(id, r.secretKey, r.ttl)
	if err != nil {
		return nil, "", fmt.Errorf("sign session token: %w", err)
	}

	ws := newWorkspace(id, r.newRepo())

	r.mu.Lock()
	r.items[id] = &entry{ws: ws, lastSeen: r.now()}
	n := len(r.items)
	r.mu.Unlock()

	r.report(n)
	r.logger.Info(ctx, "session opened", "session", id)

	return ws, token, nil
}

// Get returns the workspace for id and marks it as used. A missing or idle
// workspace yields common.ErrSessionExpired.
func (r *Registry) Get(ctx context.Context, id string) (*Workspace, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.items[id]
	if !ok || r.idle(e) {
		return nil, fmt.Errorf("session %s: %w", id, common.ErrSessionExpired)
	}
	e.lastSeen = r.now()
	return e.ws, nil
}

// Resolve verifies token and returns its workspace.
func (r *Registry) Resolve(ctx context.Context, token string) (*Workspace, error) {
	id, err := auth.GetSessionIDFromToken(token, r.secretKey)
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

// Refresh issues a new token for a live workspace, extending the cookie
// lifetime along with the idle window.
func (r *Registry) Refresh(ws *Workspace) (string, error) {
	return auth.GenerateToken(ws.ID(), r.secretKey, r.ttl)
}

// Close drops a workspace immediately.
func (r *Registry) Close(ctx context.Context, id string) {
	r.mu.Lock()
	_, ok := r.items[id]
	delete(r.items, id)
	n := len(r.items)
	r.mu.Unlock()

	if ok {
		r.report(n)
		r.logger.Info(ctx, "session closed", "session", id)
	}
}

// Len returns the number of workspaces held, including idle ones not yet swept.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// Sweep evicts idle workspaces and returns how many were dropped.
func (r *Registry) Sweep(ctx context.Context) int {
	r.mu.Lock()
	var evicted []string
	for id, e := range r.items {
		if r.idle(e) {
			delete(r.items, id)
			evicted = append(evicted, id)
		}
	}
	n := len(r.items)
	r.mu.Unlock()

	if len(evicted) > 0 {
		r.report(n)
		r.logger.Info(ctx, "sessions evicted", "count", len(evicted), "live", n)
	}
	return len(evicted)
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	r.logger.Info(ctx, "session janitor started", "interval", interval, "ttl", r.ttl)
	for {
		select {
		case <-ctx.Done():
			r.logger.Info(ctx, "session janitor stopped")
			return
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}

func (r *Registry) idle(e *entry) bool {
	return r.now().Sub(e.lastSeen) > r.ttl
}

func (r *Registry) report(n int) {
	if r.gauge != nil {
		r.gauge.SetSessions(n)
	}
}
