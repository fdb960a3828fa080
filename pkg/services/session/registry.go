package session

import (
	"context"
	"sync"
	"time"

	"github.com/de-tools/route-trends/pkg/services/orchestrator"
	"github.com/google/uuid"
)

// Registry keeps one Session per browser.
type Registry struct {
	client orchestrator.Client
	opts   Options
	now    func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry(client orchestrator.Client, opts Options) *Registry {
	return &Registry{
		client:   client,
		opts:     opts,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Get returns the session for id and marks it as seen.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if ok {
		s.touch(r.now())
	}
	return s, ok
}

func (r *Registry) Create() *Session {
	s := New(uuid.NewString(), r.client, r.opts)
	s.touch(r.now())

	r.mu.Lock()
	r.sessions[s.ID()] = s
	r.mu.Unlock()
	return s
}

// GetOrCreate returns the session for id, or a new one if id is unknown.
func (r *Registry) GetOrCreate(id string) (*Session, bool) {
	if s, ok := r.Get(id); ok {
		return s, false
	}
	return r.Create(), true
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Evict closes sessions not seen for longer than idle. Sessions with an
// analysis in flight are kept. It returns how many were closed.
func (r *Registry) Evict(idle time.Duration) int {
	now := r.now()

	r.mu.Lock()
	var stale []*Session
	for id, s := range r.sessions {
		if s.idleSince(now) > idle && !s.Busy() {
			stale = append(stale, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range stale {
		s.Close()
	}
	return len(stale)
}

// Run evicts idle sessions every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, idle, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Evict(idle); n > 0 {
				r.opts.Logger.Debug().Int("evicted", n).Int("remaining", r.Len()).Msg("idle sessions evicted")
			}
		}
	}
}

// Close unmounts every session.
func (r *Registry) Close() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
