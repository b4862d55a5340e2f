package library

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"mediaplayer/internal/auth"
	"mediaplayer/shared/go/models"
)

type fakeStore struct {
	mu        sync.Mutex
	calls     []string
	playlists []models.Playlist
	items     map[string][]models.MediaItem

	listErr   error
	itemsErr  map[string]error
	upsertErr error
	itemsUErr error
	deleteErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{items: map[string][]models.MediaItem{}, itemsErr: map[string]error{}}
}

func (s *fakeStore) record(call string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
}

func (s *fakeStore) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *fakeStore) ListPlaylists(_ context.Context, ownerID string) ([]models.Playlist, error) {
	s.record("ListPlaylists " + ownerID)
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []models.Playlist
	for _, p := range s.playlists {
		if p.UserID == ownerID {
			out = append(out, p.Clone())
		}
	}
	return out, nil
}

func (s *fakeStore) ListItems(_ context.Context, playlistID string) ([]models.MediaItem, error) {
	s.record("ListItems " + playlistID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.itemsErr[playlistID]; err != nil {
		return nil, err
	}
	return append([]models.MediaItem(nil), s.items[playlistID]...), nil
}

func (s *fakeStore) UpsertPlaylist(_ context.Context, p models.Playlist) error {
	s.record("UpsertPlaylist " + p.ID)
	return s.upsertErr
}

func (s *fakeStore) UpsertItems(_ context.Context, playlistID string, items []models.MediaItem) error {
	s.record(fmt.Sprintf("UpsertItems %s %d", playlistID, len(items)))
	return s.itemsUErr
}

func (s *fakeStore) DeleteItem(_ context.Context, itemID string) error {
	s.record("DeleteItem " + itemID)
	return s.deleteErr
}

type fakeIdentity struct {
	mu       sync.Mutex
	user     *auth.User
	err      error
	handlers []func(auth.Event)
	released int
}

func (f *fakeIdentity) CurrentUser(context.Context) (*auth.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if f.user == nil {
		return nil, nil
	}
	u := *f.user
	return &u, nil
}

func (f *fakeIdentity) Subscribe(fn func(auth.Event)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers = append(f.handlers, fn)
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.handlers = nil
		f.released++
	}
}

func (f *fakeIdentity) emit(ev auth.Event) {
	f.mu.Lock()
	if ev.Type == auth.SignedIn {
		f.user = ev.User
	} else {
		f.user = nil
	}
	handlers := slices.Clone(f.handlers)
	f.mu.Unlock()
	for _, fn := range handlers {
		fn(ev)
	}
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Alert(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
}

func (n *recordingNotifier) Messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

type fakeHandles struct {
	next int
	fail map[string]bool
}

func (h *fakeHandles) Register(name, _ string, content io.Reader) (string, error) {
	if h.fail[name] {
		return "", errors.New("disk full")
	}
	if content != nil {
		if _, err := io.Copy(io.Discard, content); err != nil {
			return "", err
		}
	}
	h.next++
	return fmt.Sprintf("/blobs/handle-%d", h.next), nil
}

// sequentialIDs yields canonical v4 UUIDs in a predictable order.
func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("00000000-0000-4000-8000-%012d", n)
	}
}

type harness struct {
	store    *fakeStore
	identity *fakeIdentity
	notifier *recordingNotifier
	handles  *fakeHandles
	manager  *Manager
}

func newHarness() *harness {
	h := &harness{
		store:    newFakeStore(),
		identity: &fakeIdentity{},
		notifier: &recordingNotifier{},
		handles:  &fakeHandles{fail: map[string]bool{}},
	}
	h.manager = New(h.store, h.identity, h.notifier, h.handles,
		WithLogger(zerolog.Nop()),
		WithIDGenerator(sequentialIDs()),
	)
	return h
}

const (
	userID      = "11111111-1111-4111-8111-111111111111"
	playlistOne = "22222222-2222-4222-8222-222222222222"
	playlistTwo = "33333333-3333-4333-8333-333333333333"
)

func item(id string) models.MediaItem {
	return models.MediaItem{ID: id, Name: id, Type: models.MediaTypeAudio, URL: "/blobs/" + id}
}

// seed installs a playlist for userID with the given items in the remote store.
func (h *harness) seed(playlistID, name string, ids ...string) {
	h.store.playlists = append(h.store.playlists, models.Playlist{ID: playlistID, Name: name, UserID: userID})
	items := make([]models.MediaItem, 0, len(ids))
	for _, id := range ids {
		items = append(items, item(id))
	}
	h.store.items[playlistID] = items
}

// signedInWith starts the manager signed in, with one remote playlist holding ids.
func signedInWith(t testing.TB, ids ...string) *harness {
	t.Helper()
	h := newHarness()
	h.identity.user = &auth.User{ID: userID, Email: "user@example.com"}
	h.seed(playlistOne, "Mix", ids...)
	if err := h.manager.Start(context.Background()); err != nil {
		h.manager.Close()
		t.Fatalf("Start: %v", err)
	}
	return h
}

func currentID(s State) string {
	if s.CurrentMedia == nil {
		return ""
	}
	return s.CurrentMedia.ID
}
