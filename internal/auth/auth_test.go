package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestIssuerRoundTrip(t *testing.T) {
	issuer := NewIssuer("0123456789abcdef", time.Hour)

	token, err := issuer.Issue(User{ID: "user-1", Email: "ana@example.com"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	user, err := issuer.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if user.ID != "user-1" || user.Email != "ana@example.com" {
		t.Fatalf("unexpected user: %#v", user)
	}
}

func TestIssuerRejects(t *testing.T) {
	issuer := NewIssuer("0123456789abcdef", time.Hour)
	other := NewIssuer("fedcba9876543210", time.Hour)

	expired := NewIssuer("0123456789abcdef", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	foreign, _ := other.Issue(User{ID: "user-1"})
	stale, _ := expired.Issue(User{ID: "user-1"})
	anonymous, _ := issuer.Issue(User{})

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-token"},
		{name: "wrong secret", token: foreign},
		{name: "expired", token: stale},
		{name: "missing subject", token: anonymous},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if _, err := issuer.Parse(tc.token); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("Parse() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestSessionLifecycle(t *testing.T) {
	issuer := NewIssuer("0123456789abcdef", time.Hour)
	session := NewSession(issuer)
	ctx := context.Background()

	if u, err := session.CurrentUser(ctx); err != nil || u != nil {
		t.Fatalf("expected signed out session, got %v, %v", u, err)
	}

	var events []Event
	unsubscribe := session.Subscribe(func(ev Event) {
		// Handlers may query the session.
		u, _ := session.CurrentUser(ctx)
		if ev.Type == SignedIn && (u == nil || u.ID != ev.User.ID) {
			t.Errorf("handler saw stale identity: %v", u)
		}
		events = append(events, ev)
	})

	token, _ := issuer.Issue(User{ID: "user-1"})
	if _, err := session.SignIn(token); err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	u, err := session.CurrentUser(ctx)
	if err != nil || u == nil || u.ID != "user-1" {
		t.Fatalf("CurrentUser after sign in = %v, %v", u, err)
	}

	session.SignOut()
	if u, _ := session.CurrentUser(ctx); u != nil {
		t.Fatalf("expected no identity after sign out")
	}

	unsubscribe()
	unsubscribe()
	_, _ = session.SignIn(token)

	if len(events) != 2 || events[0].Type != SignedIn || events[1].Type != SignedOut {
		t.Fatalf("unexpected events: %#v", events)
	}
}

func TestSessionSignInRejectsInvalidToken(t *testing.T) {
	session := NewSession(NewIssuer("0123456789abcdef", time.Hour))

	called := false
	session.Subscribe(func(Event) { called = true })

	if _, err := session.SignIn("bogus"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("SignIn() error = %v, want ErrInvalidToken", err)
	}
	if called {
		t.Fatalf("subscribers must not be notified for rejected tokens")
	}
}
