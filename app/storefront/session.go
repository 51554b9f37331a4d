package storefront

import "sync"

// Session holds the admin's bearer credential. Clear is the single teardown
// operation: after it, Token returns "" until a new login. It reports
// whether a credential was actually dropped.
type Session interface {
	Token() string
	Clear() bool
}

// MemorySession is a goroutine-safe in-process Session.
type MemorySession struct {
	mu      sync.Mutex
	token   string
	onClear []func()
}

func NewMemorySession(token string) *MemorySession {
	return &MemorySession{token: token}
}

func (s *MemorySession) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *MemorySession) Set(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

// OnClear registers fn to run when a held credential is cleared.
func (s *MemorySession) OnClear(fn func()) {
	s.mu.Lock()
	s.onClear = append(s.onClear, fn)
	s.mu.Unlock()
}

// Clear drops the credential. Hooks run only on the transition from a held
// credential to none, so concurrent failures tear down once.
func (s *MemorySession) Clear() bool {
	s.mu.Lock()
	if s.token == "" {
		s.mu.Unlock()
		return false
	}
	s.token = ""
	hooks := append([]func(){}, s.onClear...)
	s.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
	return true
}
