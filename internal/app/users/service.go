package users

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"mediaplayer/internal/auth"
	"mediaplayer/internal/store"
)

// MinPasswordLength is the shortest password accepted at signup.
const MinPasswordLength = 8

var (
	// ErrInvalidEmail rejects malformed email addresses.
	ErrInvalidEmail = errors.New("invalid email address")
	// ErrWeakPassword rejects passwords shorter than MinPasswordLength.
	ErrWeakPassword = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
)

// Store describes the persistence operations required by the user service.
type Store interface {
	CreateUser(ctx context.Context, email, password string) (store.User, error)
	Authenticate(ctx context.Context, email, password string) (store.User, error)
}

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	Issue(user auth.User) (string, error)
}

// Session tracks the identity signed in to the player.
type Session interface {
	SignIn(token string) (auth.User, error)
	SignOut()
}

// Service exposes account workflows.
type Service interface {
	Signup(ctx context.Context, email, password string) (store.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	SignIn(ctx context.Context, token string) (auth.User, error)
	SignOut(ctx context.Context) error
}

type service struct {
	store   Store
	issuer  TokenIssuer
	session Session
}

// New wires a Service backed by the provided Store.
func New(store Store, issuer TokenIssuer, session Session) Service {
	return &service{store: store, issuer: issuer, session: session}
}

func (s *service) Signup(ctx context.Context, email, password string) (store.User, error) {
	if err := ctx.Err(); err != nil {
		return store.User{}, err
	}
	email = strings.TrimSpace(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return store.User{}, ErrInvalidEmail
	}
	if len(password) < MinPasswordLength {
		return store.User{}, ErrWeakPassword
	}
	return s.store.CreateUser(ctx, email, password)
}

// Login checks credentials, issues a token and signs the session in with it.
func (s *service) Login(ctx context.Context, email, password string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	user, err := s.store.Authenticate(ctx, email, password)
	if err != nil {
		return "", err
	}
	token, err := s.issuer.Issue(auth.User{ID: user.ID, Email: user.Email})
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	if _, err := s.session.SignIn(token); err != nil {
		return "", fmt.Errorf("sign in: %w", err)
	}
	return token, nil
}

func (s *service) SignIn(ctx context.Context, token string) (auth.User, error) {
	if err := ctx.Err(); err != nil {
		return auth.User{}, err
	}
	return s.session.SignIn(token)
}

func (s *service) SignOut(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.session.SignOut()
	return nil
}
