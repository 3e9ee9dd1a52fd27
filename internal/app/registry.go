package app

import (
	"slices"
	"sync"

	"github.com/rs/zerolog/log"
)

// SessionID is the client token a browser session is bound to.
type SessionID string

// Session is anything the registry can own and tear down.
type Session interface {
	Close()
}

type sessionEntry[S Session] struct {
	Session S
}

// Registry binds client sessions to the composites serving them.
type Registry[S Session] struct {
	mu       sync.RWMutex
	sessions map[SessionID]*sessionEntry[S]
}

func NewRegistry[S Session]() *Registry[S] {
	return &Registry[S]{sessions: make(map[SessionID]*sessionEntry[S])}
}

// GetOrCreate returns the session bound to sid, creating it with create
// when there is none. created reports whether create ran.
func (r *Registry[S]) GetOrCreate(sid SessionID, create func() S) (sess S, created bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.sessions[sid]; ok {
		return e.Session, false
	}
	sess = create()
	r.sessions[sid] = &sessionEntry[S]{Session: sess}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("bound session")
	return sess, true
}

func (r *Registry[S]) Get(sid SessionID) (S, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.sessions[sid]; ok {
		return e.Session, true
	}
	var zero S
	return zero, false
}

// Unbind removes and closes the session for sid.
func (r *Registry[S]) Unbind(sid SessionID) bool {
	r.mu.Lock()
	e, ok := r.sessions[sid]
	delete(r.sessions, sid)
	r.mu.Unlock()
	if !ok {
		return false
	}
	e.Session.Close()
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("unbind session")
	return true
}

func (r *Registry[S]) IDs() []SessionID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]SessionID, 0, len(r.sessions))
	for sid := range r.sessions {
		out = append(out, sid)
	}
	slices.Sort(out)
	return out
}

func (r *Registry[S]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// CloseAll unbinds and closes every session.
func (r *Registry[S]) CloseAll() {
	for _, sid := range r.IDs() {
		r.Unbind(sid)
	}
}
