// Package library owns the media library state: the playlist collection, the
// current playlist and item, and the play/pause flag. It is the only writer of
// that state and the only component that persists playlists remotely.
package library

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"mediaplayer/internal/auth"
	"mediaplayer/shared/go/models"
)

var (
	// ErrNotAuthenticated is returned when an operation needs a signed-in user.
	ErrNotAuthenticated = errors.New("user not authenticated")
	// ErrInvalidName is returned for blank playlist names.
	ErrInvalidName = errors.New("playlist name is required")
)

// Store captures the remote persistence the library relies on.
type Store interface {
	ListPlaylists(ctx context.Context, ownerID string) ([]models.Playlist, error)
	ListItems(ctx context.Context, playlistID string) ([]models.MediaItem, error)
	UpsertPlaylist(ctx context.Context, playlist models.Playlist) error
	UpsertItems(ctx context.Context, playlistID string, items []models.MediaItem) error
	DeleteItem(ctx context.Context, itemID string) error
}

// Identity reports the signed-in user and auth state changes.
type Identity interface {
	CurrentUser(ctx context.Context) (*auth.User, error)
	Subscribe(fn func(auth.Event)) (unsubscribe func())
}

// Notifier shows blocking notices to the user.
type Notifier interface {
	Alert(message string)
}

// Handles creates ephemeral playable handles for local files.
type Handles interface {
	Register(name, contentType string, content io.Reader) (string, error)
}

// LocalFile is a file picked by the user.
type LocalFile struct {
	Name        string
	ContentType string
	Content     io.Reader
}

// State is a snapshot of the library for rendering.
type State struct {
	Playlists       []models.Playlist `json:"playlists"`
	CurrentPlaylist models.Playlist   `json:"currentPlaylist"`
	CurrentMedia    *models.MediaItem `json:"currentMedia"`
	IsPlaying       bool              `json:"isPlaying"`
	Loading         bool              `json:"loading"`
}

// Option customises a Manager.
type Option func(*Manager)

// WithLogger replaces the component logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// WithIDGenerator replaces the generator used for new item and playlist ids.
func WithIDGenerator(fn func() string) Option {
	return func(m *Manager) { m.newID = fn }
}

// Manager is the single authority over library state. Operations are
// serialised; remote writes run in the background after the local change.
type Manager struct {
	store    Store
	identity Identity
	notifier Notifier
	handles  Handles
	logger   zerolog.Logger
	newID    func() string

	mu        sync.Mutex
	playlists []models.Playlist
	currentID string
	mediaID   string
	playing   bool
	loading   bool
	// gen invalidates in-flight loads when a newer load or reset starts.
	gen uint64

	syncs       sync.WaitGroup
	unsubscribe func()
}

// New returns a Manager holding the default playlist. Call Start to load the
// signed-in user's playlists and follow auth changes.
func New(store Store, identity Identity, notifier Notifier, handles Handles, opts ...Option) *Manager {
	m := &Manager{
		store:    store,
		identity: identity,
		notifier: notifier,
		handles:  handles,
		logger:   log.With().Str("component", "library").Logger(),
		newID:    uuid.NewString,
		loading:  true,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.resetLocked()
	return m
}

// Start subscribes to auth changes and performs the initial sync.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.unsubscribe == nil {
		m.unsubscribe = m.identity.Subscribe(m.handleAuthEvent)
	}
	m.mu.Unlock()

	return m.Resync(ctx)
}

// Close releases the auth subscription and waits for pending remote writes.
func (m *Manager) Close() {
	m.mu.Lock()
	unsubscribe := m.unsubscribe
	m.unsubscribe = nil
	m.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	m.syncs.Wait()
}

// Wait blocks until every dispatched remote write has finished.
func (m *Manager) Wait() {
	m.syncs.Wait()
}

func (m *Manager) handleAuthEvent(ev auth.Event) {
	switch ev.Type {
	case auth.SignedIn:
		if err := m.Resync(context.Background()); err != nil {
			m.logger.Error().Err(err).Msg("resync after sign in failed")
		}
	case auth.SignedOut:
		m.Reset()
	}
}
