package library

import (
	"context"
	"fmt"
	"sync"
	"time"

	"mediaplayer/internal/metrics"
	"mediaplayer/shared/go/models"
)

// Resync rebuilds the library from the remote store for the signed-in user,
// or resets it when nobody is signed in. Playlists whose items fail to load
// are dropped; a failure to list playlists leaves the state untouched.
func (m *Manager) Resync(ctx context.Context) error {
	gen := m.beginLoad()

	user, err := m.identity.CurrentUser(ctx)
	if err != nil {
		m.finishLoad(gen)
		return fmt.Errorf("query identity: %w", err)
	}
	if user == nil {
		m.apply(gen, m.resetLocked)
		return nil
	}

	playlists, err := m.fetchPlaylists(ctx, user.ID)
	if err != nil {
		m.logger.Error().Err(err).Str("user_id", user.ID).Msg("error loading playlists")
		m.finishLoad(gen)
		return err
	}

	m.apply(gen, func() {
		if len(playlists) == 0 {
			m.resetLocked()
			return
		}
		m.playlists = playlists
		m.selectPlaylistLocked(playlists[0].ID)
	})
	return nil
}

// Reset discards all state and returns to the default playlist.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.gen++
	m.resetLocked()
	m.loading = false
	m.observeLocked("reset")
}

func (m *Manager) beginLoad() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.gen++
	m.loading = true
	return m.gen
}

func (m *Manager) finishLoad(gen uint64) {
	m.apply(gen, func() {})
}

// apply runs fn and clears the loading flag unless a newer load or reset
// superseded gen.
func (m *Manager) apply(gen uint64, fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if gen != m.gen {
		return
	}
	fn()
	m.loading = false
	m.observeLocked("sync")
}

func (m *Manager) fetchPlaylists(ctx context.Context, ownerID string) ([]models.Playlist, error) {
	var playlists []models.Playlist
	err := m.remote("list_playlists", func() error {
		var err error
		playlists, err = m.store.ListPlaylists(ctx, ownerID)
		return err
	})
	if err != nil {
		return nil, err
	}

	loaded := make([]*models.Playlist, len(playlists))
	var wg sync.WaitGroup
	for i := range playlists {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p := playlists[i]
			var items []models.MediaItem
			err := m.remote("list_items", func() error {
				var err error
				items, err = m.store.ListItems(ctx, p.ID)
				return err
			})
			if err != nil {
				m.logger.Error().Err(err).Str("playlist_id", p.ID).Msg("error loading playlist items")
				return
			}
			if items == nil {
				items = []models.MediaItem{}
			}
			p.Items = items
			loaded[i] = &p
		}(i)
	}
	wg.Wait()

	valid := make([]models.Playlist, 0, len(loaded))
	for _, p := range loaded {
		if p != nil {
			valid = append(valid, *p)
		}
	}
	return valid, nil
}

// dispatch runs fn in the background. Callers apply their local change first
// and pass in copies so fn never touches shared state.
func (m *Manager) dispatch(fn func(ctx context.Context)) {
	m.syncs.Add(1)
	go func() {
		defer m.syncs.Done()
		fn(context.Background())
	}()
}

// savePlaylist upserts the playlist row then its items. It refuses playlists
// without a real owner or a canonical UUID id. Failures are logged and shown
// to the user; the local state is kept as is.
func (m *Manager) savePlaylist(ctx context.Context, p models.Playlist) {
	if !p.Persistable() {
		m.logger.Warn().Str("playlist_id", p.ID).Str("user_id", p.UserID).Msg("playlist without owner or valid id, not saved")
		return
	}

	if err := m.remote("upsert_playlist", func() error {
		return m.store.UpsertPlaylist(ctx, p)
	}); err != nil {
		m.logger.Error().Err(err).Str("playlist_id", p.ID).Msg("error saving playlist")
		m.notifier.Alert(err.Error())
		return
	}

	if err := m.remote("upsert_items", func() error {
		return m.store.UpsertItems(ctx, p.ID, p.Items)
	}); err != nil {
		m.logger.Error().Err(err).Str("playlist_id", p.ID).Msg("error saving playlist items")
		m.notifier.Alert(err.Error())
	}
}

func (m *Manager) deleteItem(ctx context.Context, itemID string) {
	if err := m.remote("delete_item", func() error {
		return m.store.DeleteItem(ctx, itemID)
	}); err != nil {
		m.logger.Error().Err(err).Str("item_id", itemID).Msg("error deleting playlist item")
	}
}

func (m *Manager) remote(operation string, fn func() error) error {
	start := time.Now()
	err := fn()
	metrics.ObserveRemote(operation, time.Since(start).Seconds(), err)
	return err
}
