package store

import (
	"context"
	"errors"
	"sync"

	"mediaplayer/shared/go/models"
)

// MemoryStore keeps playlists in process memory. It implements the same
// playlist operations as Store and is used for offline runs and tests.
type MemoryStore struct {
	mu        sync.RWMutex
	playlists []models.Playlist
	items     map[string][]models.MediaItem
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string][]models.MediaItem)}
}

// ListPlaylists returns the playlists owned by a user, oldest first.
func (m *MemoryStore) ListPlaylists(_ context.Context, ownerID string) ([]models.Playlist, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]models.Playlist, 0)
	for _, playlist := range m.playlists {
		if playlist.UserID == ownerID {
			clone := playlist
			clone.Items = []models.MediaItem{}
			result = append(result, clone)
		}
	}
	return result, nil
}

// ListItems returns the items of a playlist in creation order.
func (m *MemoryStore) ListItems(_ context.Context, playlistID string) ([]models.MediaItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rows := m.items[playlistID]
	result := make([]models.MediaItem, 0, len(rows))
	for _, item := range rows {
		result = append(result, item.Clone())
	}
	return result, nil
}

// UpsertPlaylist inserts or renames a playlist.
func (m *MemoryStore) UpsertPlaylist(_ context.Context, playlist models.Playlist) error {
	if playlist.ID == "" {
		return errors.New("playlist id is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.playlists {
		if m.playlists[i].ID == playlist.ID {
			m.playlists[i].Name = playlist.Name
			m.playlists[i].UserID = playlist.UserID
			return nil
		}
	}
	m.playlists = append(m.playlists, models.Playlist{ID: playlist.ID, Name: playlist.Name, UserID: playlist.UserID})
	return nil
}

// UpsertItems writes item rows for a playlist. Existing rows keep their
// creation order; rows moved from another playlist are detached from it.
func (m *MemoryStore) UpsertItems(_ context.Context, playlistID string, items []models.MediaItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, item := range items {
		if m.updateRow(playlistID, item) {
			continue
		}
		m.detach(item.ID)
		m.items[playlistID] = append(m.items[playlistID], item.Clone())
	}
	return nil
}

// DeleteItem removes an item row wherever it lives.
func (m *MemoryStore) DeleteItem(_ context.Context, itemID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.detach(itemID)
	return nil
}

func (m *MemoryStore) updateRow(playlistID string, item models.MediaItem) bool {
	rows := m.items[playlistID]
	for i := range rows {
		if rows[i].ID == item.ID {
			rows[i] = item.Clone()
			return true
		}
	}
	return false
}

func (m *MemoryStore) detach(itemID string) {
	for playlistID, rows := range m.items {
		for i := range rows {
			if rows[i].ID == itemID {
				m.items[playlistID] = append(rows[:i:i], rows[i+1:]...)
				return
			}
		}
	}
}
