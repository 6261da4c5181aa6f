package session_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/synergia/erp-api/pkg/session"
)

func TestSession_SignInLifecycle(t *testing.T) {
	var changes [][2]session.State
	s := session.New(session.OnChange(func(from, to session.State) {
		changes = append(changes, [2]session.State{from, to})
	}))

	if s.State() != session.Anonymous {
		t.Fatalf("expected anonymous, got %s", s.State())
	}
	if err := s.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := s.Complete("tok", session.User{ID: "u1", Email: "a@b.co", Role: "ADMIN"}); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	snap := s.Snapshot()
	if snap.State != session.Authenticated || snap.Token != "tok" || snap.User == nil || snap.User.ID != "u1" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}

	s.End()
	if s.State() != session.Anonymous || s.Token() != "" {
		t.Fatalf("End should clear the session, got %s token=%q", s.State(), s.Token())
	}
	if _, ok := s.User(); ok {
		t.Fatal("End should clear the user")
	}

	want := [][2]session.State{
		{session.Anonymous, session.Authenticating},
		{session.Authenticating, session.Authenticated},
		{session.Authenticated, session.Anonymous},
	}
	if len(changes) != len(want) {
		t.Fatalf("expected %d changes, got %v", len(want), changes)
	}
	for i := range want {
		if changes[i] != want[i] {
			t.Fatalf("change %d: expected %v, got %v", i, want[i], changes[i])
		}
	}
}

func TestSession_FailClearsStoredToken(t *testing.T) {
	s := session.New(session.WithToken("stale"))
	if s.Token() != "stale" || s.State() != session.Anonymous {
		t.Fatalf("stored token should be kept in anonymous state")
	}

	if err := s.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := s.Fail(); err != nil {
		t.Fatalf("Fail: %v", err)
	}
	if s.Token() != "" || s.State() != session.Anonymous {
		t.Fatalf("Fail should drop the token, got %q in %s", s.Token(), s.State())
	}
}

func TestSession_InvalidTransitions(t *testing.T) {
	s := session.New()

	if err := s.Complete("tok", session.User{}); !errors.Is(err, session.ErrInvalidTransition) {
		t.Fatalf("Complete from anonymous: expected ErrInvalidTransition, got %v", err)
	}
	if err := s.Fail(); !errors.Is(err, session.ErrInvalidTransition) {
		t.Fatalf("Fail from anonymous: expected ErrInvalidTransition, got %v", err)
	}

	if err := s.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := s.Begin(); !errors.Is(err, session.ErrInvalidTransition) {
		t.Fatalf("second Begin: expected ErrInvalidTransition, got %v", err)
	}
	if err := s.Complete("", session.User{}); err == nil {
		t.Fatal("Complete with an empty token should fail")
	}
	if s.State() != session.Authenticating {
		t.Fatalf("failed events must not change state, got %s", s.State())
	}
}

func TestSession_ReauthenticateKeepsUserUntilComplete(t *testing.T) {
	s := session.New()
	_ = s.Begin()
	_ = s.Complete("t1", session.User{ID: "u1"})

	if err := s.Begin(); err != nil {
		t.Fatalf("Begin from authenticated: %v", err)
	}
	if u, ok := s.User(); !ok || u.ID != "u1" {
		t.Fatalf("user should survive until Complete, got %+v ok=%v", u, ok)
	}
	if err := s.Complete("t2", session.User{ID: "u2"}); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if u, _ := s.User(); u.ID != "u2" || s.Token() != "t2" {
		t.Fatalf("expected u2/t2, got %s/%s", u.ID, s.Token())
	}
}

func TestSession_ConcurrentBeginAdmitsOne(t *testing.T) {
	s := session.New()

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.Begin() == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if ok != 1 {
		t.Fatalf("expected exactly one Begin to win, got %d", ok)
	}
}

func TestState_String(t *testing.T) {
	if session.Authenticating.String() != "authenticating" {
		t.Fatalf("unexpected: %s", session.Authenticating)
	}
	if session.State(9).String() != "State(9)" {
		t.Fatalf("unexpected: %s", session.State(9))
	}
}
