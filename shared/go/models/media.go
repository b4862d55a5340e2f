package models

import (
	"strings"

	"github.com/google/uuid"
)

// MediaType is the closed set of playable item kinds.
type MediaType string

const (
	MediaTypeAudio   MediaType = "audio"
	MediaTypeVideo   MediaType = "video"
	MediaTypeYouTube MediaType = "youtube"
)

const (
	// DefaultPlaylistID identifies the unsaved playlist shown before any data loads.
	DefaultPlaylistID = "default"
	// DefaultPlaylistName is the display name of the default playlist.
	DefaultPlaylistName = "Default Playlist"
	// OwnerDefault marks the default playlist's owner.
	OwnerDefault = "default"
	// OwnerLocal marks playlists created from local files; they never leave the process.
	OwnerLocal = "local"
	// LocalPlaylistName names playlists materialised from local files.
	LocalPlaylistName = "My Playlist"
)

// MediaItem is a single playable entry of a playlist.
type MediaItem struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Type      MediaType `json:"type" db:"type"`
	URL       string    `json:"url" db:"url"`
	Thumbnail string    `json:"thumbnail,omitempty" db:"thumbnail"`
	Duration  *float64  `json:"duration,omitempty" db:"duration"`
}

// Playlist is a named, ordered collection of media items.
type Playlist struct {
	ID     string      `json:"id" db:"id"`
	Name   string      `json:"name" db:"name"`
	Items  []MediaItem `json:"items"`
	UserID string      `json:"user_id,omitempty" db:"user_id"`
}

// DefaultPlaylist returns a fresh copy of the sentinel playlist.
func DefaultPlaylist() Playlist {
	return Playlist{
		ID:     DefaultPlaylistID,
		Name:   DefaultPlaylistName,
		Items:  []MediaItem{},
		UserID: OwnerDefault,
	}
}

// Clone returns a deep copy of the playlist.
func (p Playlist) Clone() Playlist {
	clone := p
	clone.Items = make([]MediaItem, len(p.Items))
	for i, item := range p.Items {
		clone.Items[i] = item.Clone()
	}
	return clone
}

// IndexOf returns the position of the item with the given id, or -1.
func (p Playlist) IndexOf(itemID string) int {
	for i, item := range p.Items {
		if item.ID == itemID {
			return i
		}
	}
	return -1
}

// Persistable reports whether the playlist may be written to the remote store:
// it needs a real owner and a canonical UUID id.
func (p Playlist) Persistable() bool {
	switch p.UserID {
	case "", OwnerDefault, OwnerLocal:
		return false
	}
	return IsCanonicalUUID(p.ID)
}

// Clone returns a copy of the item that shares no pointers with the original.
func (m MediaItem) Clone() MediaItem {
	clone := m
	if m.Duration != nil {
		d := *m.Duration
		clone.Duration = &d
	}
	return clone
}

// MediaTypeFromContentType infers the item kind from a declared MIME type.
// Only audio and video content is accepted.
func MediaTypeFromContentType(contentType string) (MediaType, bool) {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	switch {
	case strings.HasPrefix(ct, "video/"):
		return MediaTypeVideo, true
	case strings.HasPrefix(ct, "audio/"):
		return MediaTypeAudio, true
	default:
		return "", false
	}
}

// IsCanonicalUUID reports whether id is a 36 character hyphenated UUID with
// version 1-5 and the RFC 4122 variant.
func IsCanonicalUUID(id string) bool {
	if len(id) != 36 {
		return false
	}
	u, err := uuid.Parse(id)
	if err != nil {
		return false
	}
	if v := u.Version(); v < 1 || v > 5 {
		return false
	}
	return u.Variant() == uuid.RFC4122
}
