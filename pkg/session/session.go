// Package session tracks who an API consumer is signed in as.
//
// A Session moves between three states:
//
//	Anonymous ──Begin──▶ Authenticating ──Complete──▶ Authenticated
//	    ▲                      │                           │
//	    └────────Fail──────────┘◀──────────End─────────────┘
//
// A stored token survives in Anonymous state so a later Begin can restore
// the user behind it. Fail and End always drop the token.
package session

import (
	"errors"
	"fmt"
	"sync"
)

type State int

const (
	Anonymous State = iota
	Authenticating
	Authenticated
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ErrInvalidTransition is returned when an event does not apply to the
// current state.
var ErrInvalidTransition = errors.New("session: invalid transition")

// User is the signed-in identity as the API reports it.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// Snapshot is a consistent copy of a Session at one instant.
type Snapshot struct {
	State State
	Token string
	User  *User
}

type Session struct {
	mu       sync.RWMutex
	state    State
	token    string
	user     *User
	onChange func(from, to State)
}

type Option func(*Session)

// WithToken seeds the session with a previously stored token.
func WithToken(token string) Option {
	return func(s *Session) { s.token = token }
}

// OnChange registers fn to run after every state change. fn runs outside the
// session lock and may read the session.
func OnChange(fn func(from, to State)) Option {
	return func(s *Session) { s.onChange = fn }
}

func New(opts ...Option) *Session {
	s := &Session{state: Anonymous}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Token returns the current bearer token, which may be a stored one that has
// not been verified yet.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) User() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{State: s.state, Token: s.token}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	return snap
}

// Begin starts a sign-in or a restore. It fails while another one is in
// flight. Signing in again from Authenticated is allowed and keeps the current
// user until Complete or Fail.
func (s *Session) Begin() error {
	return s.transition(func() (State, error) {
		if s.state == Authenticating {
			return s.state, fmt.Errorf("%w: already authenticating", ErrInvalidTransition)
		}
		return Authenticating, nil
	})
}

// Complete records the verified token and user.
func (s *Session) Complete(token string, u User) error {
	if token == "" {
		return errors.New("session: empty token")
	}
	return s.transition(func() (State, error) {
		if s.state != Authenticating {
			return s.state, fmt.Errorf("%w: complete from %s", ErrInvalidTransition, s.state)
		}
		s.token = token
		s.user = &u
		return Authenticated, nil
	})
}

// Fail abandons a sign-in or restore and clears any stored credentials.
func (s *Session) Fail() error {
	return s.transition(func() (State, error) {
		if s.state != Authenticating {
			return s.state, fmt.Errorf("%w: fail from %s", ErrInvalidTransition, s.state)
		}
		s.token = ""
		s.user = nil
		return Anonymous, nil
	})
}

// End signs out from any state.
func (s *Session) End() {
	_ = s.transition(func() (State, error) {
		s.token = ""
		s.user = nil
		return Anonymous, nil
	})
}

func (s *Session) transition(apply func() (State, error)) error {
	s.mu.Lock()
	from := s.state
	to, err := apply()
	if err == nil {
		s.state = to
	}
	fn := s.onChange
	s.mu.Unlock()

	if err != nil {
		return err
	}
	if fn != nil && from != to {
		fn(from, to)
	}
	return nil
}
