// Package identity resolves the current principal: the signed-in user on
// whose behalf reads and mutations run. Consumers depend on the Provider
// interface; process-local sessions use Static, token-authenticated flows
// go through the Firebase verifier.
package identity

import "sync"

// Provider reports the principal of the current session.
type Provider interface {
	// CurrentPrincipal returns the signed-in principal id, or false when
	// nobody is signed in.
	CurrentPrincipal() (string, bool)
}

// Static is an in-process session holder. Safe for concurrent use.
type Static struct {
	mu sync.RWMutex
	id string
}

// NewStatic returns a session already signed in as id. An empty id means
// signed out.
func NewStatic(id string) *Static {
	return &Static{id: id}
}

// SignIn binds the session to id, replacing any prior principal.
func (s *Static) SignIn(id string) {
	s.mu.Lock()
	s.id = id
	s.mu.Unlock()
}

// SignOut clears the session.
func (s *Static) SignOut() {
	s.mu.Lock()
	s.id = ""
	s.mu.Unlock()
}

func (s *Static) CurrentPrincipal() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id, s.id != ""
}
