package auth

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// EventType names an auth state change.
type EventType string

const (
	SignedIn  EventType = "SIGNED_IN"
	SignedOut EventType = "SIGNED_OUT"
)

// Event is delivered to subscribers on every auth state change.
type Event struct {
	Type EventType
	User *User
}

// Session holds the identity currently signed in to the player process.
type Session struct {
	issuer *Issuer

	mu          sync.Mutex
	user        *User
	token       string
	subscribers map[int]func(Event)
	nextID      int
}

// NewSession returns a signed-out Session that validates tokens with issuer.
func NewSession(issuer *Issuer) *Session {
	return &Session{issuer: issuer, subscribers: make(map[int]func(Event))}
}

// CurrentUser returns the signed-in identity, or nil when signed out.
func (s *Session) CurrentUser(ctx context.Context) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return nil, nil
	}
	if _, err := s.issuer.Parse(s.token); err != nil {
		// Expired tokens no longer count as an identity.
		return nil, nil
	}
	u := *s.user
	return &u, nil
}

// SignIn validates token, makes its user current and notifies subscribers.
func (s *Session) SignIn(token string) (User, error) {
	user, err := s.issuer.Parse(token)
	if err != nil {
		return User{}, err
	}

	s.mu.Lock()
	s.user = &user
	s.token = token
	handlers := s.snapshotLocked()
	s.mu.Unlock()

	log.Info().Str("user_id", user.ID).Msg("session signed in")
	u := user
	dispatch(handlers, Event{Type: SignedIn, User: &u})
	return user, nil
}

// SignOut clears the identity and notifies subscribers.
func (s *Session) SignOut() {
	s.mu.Lock()
	s.user = nil
	s.token = ""
	handlers := s.snapshotLocked()
	s.mu.Unlock()

	log.Info().Msg("session signed out")
	dispatch(handlers, Event{Type: SignedOut})
}

// Subscribe registers fn for auth state changes. The returned func releases
// the subscription and is safe to call more than once.
func (s *Session) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, id)
			s.mu.Unlock()
		})
	}
}

func (s *Session) snapshotLocked() []func(Event) {
	handlers := make([]func(Event), 0, len(s.subscribers))
	for id := 0; id < s.nextID; id++ {
		if fn, ok := s.subscribers[id]; ok {
			handlers = append(handlers, fn)
		}
	}
	return handlers
}

// Handlers run outside the session lock so they may query CurrentUser.
func dispatch(handlers []func(Event), ev Event) {
	for _, fn := range handlers {
		fn(ev)
	}
}
