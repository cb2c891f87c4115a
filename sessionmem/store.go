// Package sessionmem provides a cookie-backed in-memory session manager. It
// exists so the examples and tests have a working session collaborator;
// production deployments plug in the host application's own session
// subsystem instead.
package sessionmem

import (
	"context"
	"net/http"
	"sync"

	"github.com/google/uuid"
)

// Session is a mutable key-value mapping scoped to one visitor.
type Session struct {
	mu     sync.RWMutex
	values map[string]string
}

func newSession() *Session {
	return &Session{values: make(map[string]string)}
}

// Get returns the value stored under key.
func (s *Session) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Set stores value under key.
func (s *Session) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// Manager keeps sessions in memory, keyed by a random ID carried in a cookie.
type Manager struct {
	mu         sync.RWMutex
	cookieName string
	sessions   map[string]*Session
}

// NewManager returns a Manager using cookieName for the session cookie
// ("sid" when empty).
func NewManager(cookieName string) *Manager {
	if cookieName == "" {
		cookieName = "sid"
	}
	return &Manager{
		cookieName: cookieName,
		sessions:   make(map[string]*Session),
	}
}

// Load returns the session for the request, creating one (and setting the
// session cookie on the response) when none exists yet.
func (m *Manager) Load(w http.ResponseWriter, r *http.Request) *Session {
	if s := m.Lookup(r); s != nil {
		return s
	}

	id := uuid.NewString()
	s := newSession()
	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return s
}

// Lookup returns the request's session, or nil when the request carries no
// cookie for a known session.
func (m *Manager) Lookup(r *http.Request) *Session {
	c, err := r.Cookie(m.cookieName)
	if err != nil || c.Value == "" {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[c.Value]
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

type ctxKey struct{}

// Attach is a middleware that loads (or creates) the request's session and
// stores it in the request context for FromContext.
func (m *Manager) Attach(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := m.Load(w, r)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, s)))
	})
}

// FromContext returns the session stored by Attach, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}
