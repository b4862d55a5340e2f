package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"mediaplayer/internal/auth"
	"mediaplayer/internal/store"
)

type stubStore struct {
	created  []string
	user     store.User
	authErr  error
	password string
}

func (s *stubStore) CreateUser(_ context.Context, email, _ string) (store.User, error) {
	s.created = append(s.created, email)
	return store.User{ID: "u1", Email: email}, nil
}

func (s *stubStore) Authenticate(_ context.Context, _, password string) (store.User, error) {
	if s.authErr != nil {
		return store.User{}, s.authErr
	}
	if password != s.password {
		return store.User{}, store.ErrInvalidCredentials
	}
	return s.user, nil
}

func newTestService(st *stubStore) (Service, *auth.Session) {
	issuer := auth.NewIssuer("0123456789abcdef0123", time.Hour)
	session := auth.NewSession(issuer)
	return New(st, issuer, session), session
}

func TestSignupValidation(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "valid", email: "ana@example.com", password: "long enough"},
		{name: "bad email", email: "not-an-email", password: "long enough", wantErr: ErrInvalidEmail},
		{name: "short password", email: "ana@example.com", password: "short", wantErr: ErrWeakPassword},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			st := &stubStore{}
			svc, _ := newTestService(st)

			_, err := svc.Signup(context.Background(), tc.email, tc.password)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("err = %v, want %v", err, tc.wantErr)
				}
				if len(st.created) != 0 {
					t.Fatal("store must not be called on invalid input")
				}
				return
			}
			if err != nil {
				t.Fatalf("Signup: %v", err)
			}
			if len(st.created) != 1 {
				t.Fatalf("created = %v", st.created)
			}
		})
	}
}

func TestLoginSignsSessionIn(t *testing.T) {
	st := &stubStore{user: store.User{ID: "u1", Email: "ana@example.com"}, password: "correct horse"}
	svc, session := newTestService(st)

	var events []auth.EventType
	defer session.Subscribe(func(ev auth.Event) { events = append(events, ev.Type) })()

	token, err := svc.Login(context.Background(), "ana@example.com", "correct horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token == "" {
		t.Fatal("expected token")
	}

	current, err := session.CurrentUser(context.Background())
	if err != nil || current == nil || current.ID != "u1" {
		t.Fatalf("current user = %#v, err = %v", current, err)
	}

	if err := svc.SignOut(context.Background()); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if len(events) != 2 || events[0] != auth.SignedIn || events[1] != auth.SignedOut {
		t.Fatalf("events = %v", events)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	st := &stubStore{password: "correct horse"}
	svc, session := newTestService(st)

	if _, err := svc.Login(context.Background(), "ana@example.com", "wrong"); !errors.Is(err, store.ErrInvalidCredentials) {
		t.Fatalf("err = %v", err)
	}
	if u, _ := session.CurrentUser(context.Background()); u != nil {
		t.Fatal("session must stay signed out")
	}
}

func TestCancelledContext(t *testing.T) {
	svc, _ := newTestService(&stubStore{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := svc.Signup(ctx, "ana@example.com", "long enough"); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
	if _, err := svc.SignIn(ctx, "token"); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}
