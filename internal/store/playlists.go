package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mediaplayer/shared/go/models"
)

// ListPlaylists returns the playlists owned by a user, oldest first. Items are
// not loaded; see ListItems.
func (s *Store) ListPlaylists(ctx context.Context, ownerID string) ([]models.Playlist, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, user_id
		FROM playlists
		WHERE user_id = $1
		ORDER BY created_at ASC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list playlists: %w", err)
	}
	defer rows.Close()

	playlists := make([]models.Playlist, 0)
	for rows.Next() {
		var playlist models.Playlist
		if err := rows.Scan(&playlist.ID, &playlist.Name, &playlist.UserID); err != nil {
			return nil, fmt.Errorf("scan playlist: %w", err)
		}
		playlist.Items = []models.MediaItem{}
		playlists = append(playlists, playlist)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playlists: %w", err)
	}
	return playlists, nil
}

// ListItems returns the items of a playlist in creation order.
func (s *Store) ListItems(ctx context.Context, playlistID string) ([]models.MediaItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, type, url, COALESCE(thumbnail, ''), duration
		FROM playlist_items
		WHERE playlist_id = $1
		ORDER BY created_at ASC, position ASC`, playlistID)
	if err != nil {
		return nil, fmt.Errorf("list playlist items: %w", err)
	}
	defer rows.Close()

	items := make([]models.MediaItem, 0)
	for rows.Next() {
		var (
			item     models.MediaItem
			duration sql.NullFloat64
		)
		if err := rows.Scan(&item.ID, &item.Name, &item.Type, &item.URL, &item.Thumbnail, &duration); err != nil {
			return nil, fmt.Errorf("scan playlist item: %w", err)
		}
		if duration.Valid {
			d := duration.Float64
			item.Duration = &d
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playlist items: %w", err)
	}
	return items, nil
}

// UpsertPlaylist inserts the playlist row or updates its name and owner.
func (s *Store) UpsertPlaylist(ctx context.Context, playlist models.Playlist) error {
	if playlist.ID == "" {
		return errors.New("playlist id is required")
	}
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO playlists (id, name, user_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, user_id = EXCLUDED.user_id, updated_at = NOW()`,
		playlist.ID, playlist.Name, playlist.UserID); err != nil {
		return fmt.Errorf("upsert playlist: %w", err)
	}
	return nil
}

// UpsertItems writes every item row tagged with the owning playlist id.
// Existing rows keep their creation time.
func (s *Store) UpsertItems(ctx context.Context, playlistID string, items []models.MediaItem) (err error) {
	if len(items) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO playlist_items (id, playlist_id, position, name, type, url, thumbnail, duration)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE
		SET playlist_id = EXCLUDED.playlist_id, position = EXCLUDED.position, name = EXCLUDED.name,
			url = EXCLUDED.url, thumbnail = EXCLUDED.thumbnail, duration = EXCLUDED.duration`)
	if err != nil {
		return fmt.Errorf("prepare upsert playlist item: %w", err)
	}
	defer stmt.Close()

	for idx, item := range items {
		if _, err = stmt.ExecContext(
			ctx,
			item.ID,
			playlistID,
			idx,
			item.Name,
			string(item.Type),
			item.URL,
			nullIfEmpty(item.Thumbnail),
			nullIfNil(item.Duration),
		); err != nil {
			return fmt.Errorf("upsert playlist item: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit playlist items: %w", err)
	}
	return nil
}

// DeleteItem removes a single item row. Deleting a missing row is not an error.
func (s *Store) DeleteItem(ctx context.Context, itemID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM playlist_items WHERE id = $1`, itemID); err != nil {
		return fmt.Errorf("delete playlist item: %w", err)
	}
	return nil
}

func nullIfEmpty(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}

func nullIfNil(value *float64) interface{} {
	if value == nil {
		return nil
	}
	return *value
}
