package library

import (
	"context"
	"fmt"
	"strings"

	"mediaplayer/internal/metrics"
	"mediaplayer/internal/youtube"
	"mediaplayer/shared/go/models"
)

// DefaultYouTubeTitle names YouTube items added without a title.
const DefaultYouTubeTitle = "YouTube Video"

// Snapshot returns a copy of the current state.
func (m *Manager) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	state := State{
		Playlists: make([]models.Playlist, len(m.playlists)),
		IsPlaying: m.playing,
		Loading:   m.loading,
	}
	for i, p := range m.playlists {
		state.Playlists[i] = p.Clone()
	}
	current := m.currentLocked()
	state.CurrentPlaylist = current.Clone()
	if idx := current.IndexOf(m.mediaID); m.mediaID != "" && idx >= 0 {
		item := current.Items[idx].Clone()
		state.CurrentMedia = &item
	}
	return state
}

// AddLocalMedia appends the audio and video files to the current playlist and
// returns the created items. Other files are skipped. Adding to the default
// playlist first creates a local playlist that is never persisted remotely.
func (m *Manager) AddLocalMedia(files []LocalFile) []models.MediaItem {
	items := make([]models.MediaItem, 0, len(files))
	for _, f := range files {
		kind, ok := models.MediaTypeFromContentType(f.ContentType)
		if !ok {
			continue
		}
		url, err := m.handles.Register(f.Name, f.ContentType, f.Content)
		if err != nil {
			m.logger.Error().Err(err).Str("file", f.Name).Msg("error creating local handle")
			continue
		}
		items = append(items, models.MediaItem{
			ID:   m.newID(),
			Name: f.Name,
			Type: kind,
			URL:  url,
		})
	}
	if len(items) == 0 {
		return items
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.currentID == models.DefaultPlaylistID {
		local := models.Playlist{
			ID:     m.newID(),
			Name:   models.LocalPlaylistName,
			Items:  []models.MediaItem{},
			UserID: models.OwnerLocal,
		}
		m.playlists = append(m.playlists, local)
		m.currentID = local.ID
	}

	current := m.currentLocked()
	for _, item := range items {
		current.Items = append(current.Items, item.Clone())
	}
	if m.mediaID == "" {
		m.mediaID = items[0].ID
	}
	m.observeLocked("add_local_media")
	return items
}

// AddYouTube appends a YouTube video to the current playlist and saves the
// playlist in the background. Invalid links leave the state untouched.
func (m *Manager) AddYouTube(rawURL, title string) (models.MediaItem, error) {
	videoID, err := youtube.VideoID(strings.TrimSpace(rawURL))
	if err != nil {
		return models.MediaItem{}, err
	}
	if title = strings.TrimSpace(title); title == "" {
		title = DefaultYouTubeTitle
	}

	item := models.MediaItem{
		ID:        m.newID(),
		Name:      title,
		Type:      models.MediaTypeYouTube,
		URL:       youtube.EmbedURL(videoID),
		Thumbnail: youtube.ThumbnailURL(videoID),
	}

	m.mu.Lock()
	current := m.currentLocked()
	current.Items = append(current.Items, item)
	if m.mediaID == "" {
		m.mediaID = item.ID
	}
	saved := current.Clone()
	m.observeLocked("add_youtube")
	m.mu.Unlock()

	m.dispatch(func(ctx context.Context) { m.savePlaylist(ctx, saved) })
	return item, nil
}

// RemoveItem drops an item from the current playlist. Removing the current
// item selects the new first item and pauses. The row delete is always sent;
// the playlist save still refuses unsaved playlists. It reports whether the
// item existed.
func (m *Manager) RemoveItem(itemID string) bool {
	m.mu.Lock()
	current := m.currentLocked()
	idx := current.IndexOf(itemID)
	if idx < 0 {
		m.mu.Unlock()
		return false
	}

	current.Items = append(current.Items[:idx:idx], current.Items[idx+1:]...)
	if m.mediaID == itemID {
		m.mediaID = ""
		if len(current.Items) > 0 {
			m.mediaID = current.Items[0].ID
		}
		m.playing = false
	}
	saved := current.Clone()
	m.observeLocked("remove_item")
	m.mu.Unlock()

	m.dispatch(func(ctx context.Context) {
		m.deleteItem(ctx, itemID)
		m.savePlaylist(ctx, saved)
	})
	return true
}

// CreatePlaylist adds an empty playlist owned by the signed-in user, makes it
// current and saves it in the background.
func (m *Manager) CreatePlaylist(ctx context.Context, name string) (models.Playlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Playlist{}, ErrInvalidName
	}

	user, err := m.identity.CurrentUser(ctx)
	if err != nil {
		return models.Playlist{}, fmt.Errorf("query identity: %w", err)
	}
	if user == nil {
		m.notifier.Alert(ErrNotAuthenticated.Error())
		return models.Playlist{}, ErrNotAuthenticated
	}

	playlist := models.Playlist{
		ID:     m.newID(),
		Name:   name,
		Items:  []models.MediaItem{},
		UserID: user.ID,
	}

	m.mu.Lock()
	m.playlists = append(m.playlists, playlist)
	m.currentID = playlist.ID
	m.mediaID = ""
	m.playing = false
	m.observeLocked("create_playlist")
	m.mu.Unlock()

	saved := playlist.Clone()
	m.dispatch(func(ctx context.Context) { m.savePlaylist(ctx, saved) })
	return playlist.Clone(), nil
}

// SwitchPlaylist makes the playlist with id current and starts its first item.
func (m *Manager) SwitchPlaylist(playlistID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.indexOfPlaylistLocked(playlistID) < 0 {
		return false
	}
	m.selectPlaylistLocked(playlistID)
	m.observeLocked("switch_playlist")
	return true
}

// Play makes an item of the current playlist current and starts playback.
func (m *Manager) Play(itemID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.currentLocked().IndexOf(itemID) < 0 {
		return false
	}
	m.mediaID = itemID
	m.playing = true
	m.observeLocked("play")
	return true
}

// TogglePlayPause flips the play state when an item is loaded and returns
// the resulting state.
func (m *Manager) TogglePlayPause() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.mediaID != "" {
		m.playing = !m.playing
		m.observeLocked("toggle")
	}
	return m.playing
}

// SetPlaying is the player's handshake: it forces Paused while an item loads
// or when playback is rejected, and resumes once the item is ready.
func (m *Manager) SetPlaying(playing bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if playing && m.mediaID == "" {
		return m.playing
	}
	m.playing = playing
	m.observeLocked("set_playing")
	return m.playing
}

// Next advances to the following item, wrapping around.
func (m *Manager) Next() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.stepLocked(1, "next")
}

// Previous goes back one item, wrapping around.
func (m *Manager) Previous() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.stepLocked(-1, "previous")
}

// ItemEnded handles the end of playback: pause, then move to the next item.
func (m *Manager) ItemEnded() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.playing = false
	m.stepLocked(1, "ended")
}

// MarkLoaded records the duration reported by the player for an item.
func (m *Manager) MarkLoaded(itemID string, durationSeconds float64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	current := m.currentLocked()
	idx := current.IndexOf(itemID)
	if idx < 0 || durationSeconds < 0 {
		return false
	}
	d := durationSeconds
	current.Items[idx].Duration = &d
	m.observeLocked("loaded")
	return true
}

func (m *Manager) stepLocked(delta int, op string) bool {
	current := m.currentLocked()
	n := len(current.Items)
	if m.mediaID == "" || n <= 1 {
		return false
	}
	idx := current.IndexOf(m.mediaID)
	if idx < 0 {
		return false
	}
	m.mediaID = current.Items[((idx+delta)%n+n)%n].ID
	m.observeLocked(op)
	return true
}

func (m *Manager) resetLocked() {
	def := models.DefaultPlaylist()
	m.playlists = []models.Playlist{def}
	m.currentID = def.ID
	m.mediaID = ""
	m.playing = false
}

// selectPlaylistLocked makes id current, loads its first item and plays when
// there is one.
func (m *Manager) selectPlaylistLocked(id string) {
	m.currentID = id
	current := m.currentLocked()
	m.mediaID = ""
	m.playing = false
	if len(current.Items) > 0 {
		m.mediaID = current.Items[0].ID
		m.playing = true
	}
}

// currentLocked returns the current playlist, restoring the default playlist
// if the current id went missing.
func (m *Manager) currentLocked() *models.Playlist {
	if idx := m.indexOfPlaylistLocked(m.currentID); idx >= 0 {
		return &m.playlists[idx]
	}
	m.resetLocked()
	return &m.playlists[0]
}

func (m *Manager) indexOfPlaylistLocked(id string) int {
	for i := range m.playlists {
		if m.playlists[i].ID == id {
			return i
		}
	}
	return -1
}

func (m *Manager) observeLocked(op string) {
	metrics.LibraryOperationsTotal.WithLabelValues(op).Inc()
	if idx := m.indexOfPlaylistLocked(m.currentID); idx >= 0 {
		metrics.LibraryItems.Set(float64(len(m.playlists[idx].Items)))
	}
}
