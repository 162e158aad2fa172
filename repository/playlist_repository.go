package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"musicfy/model"
)

// PlaylistRepository defines the interface for playlist data operations,
// including membership management.
type PlaylistRepository interface {
	CreatePlaylist(ctx context.Context, playlist *model.Playlist) (int64, error)
	GetPlaylistByID(ctx context.Context, id int64) (*model.Playlist, error)
	GetPlaylistsByUserID(ctx context.Context, userID int64) ([]*model.Playlist, error)
	UpdatePlaylist(ctx context.Context, playlist *model.Playlist) error
	DeletePlaylist(ctx context.Context, id int64) error

	AddSongToPlaylist(ctx context.Context, playlistID, songID int64) error
	RemoveSongFromPlaylist(ctx context.Context, playlistID, songID int64) error
	GetPlaylistSongs(ctx context.Context, playlistID int64) ([]*model.Song, error)
}

const playlistColumns = "id, user_id, name, description, created_at, updated_at"

// mysqlPlaylistRepository implements PlaylistRepository for MySQL.
type mysqlPlaylistRepository struct {
	db *sql.DB
}

// NewMySQLPlaylistRepository creates a new mysqlPlaylistRepository.
func NewMySQLPlaylistRepository(db *sql.DB) PlaylistRepository {
	return &mysqlPlaylistRepository{db: db}
}

// CreatePlaylist inserts a new playlist owned by playlist.UserID.
func (r *mysqlPlaylistRepository) CreatePlaylist(ctx context.Context, playlist *model.Playlist) (int64, error) {
	query := "INSERT INTO playlists (user_id, name, description, created_at, updated_at) VALUES (?, ?, ?, NOW(), NOW())"

	res, err := r.db.ExecContext(ctx, query, playlist.UserID, playlist.Name, playlist.Description)
	if err != nil {
		return 0, fmt.Errorf("failed to insert playlist: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for playlist: %w", err)
	}
	return id, nil
}

// GetPlaylistByID retrieves a playlist by its ID, or (nil, nil) when absent.
func (r *mysqlPlaylistRepository) GetPlaylistByID(ctx context.Context, id int64) (*model.Playlist, error) {
	query := "SELECT " + playlistColumns + " FROM playlists WHERE id = ?"

	playlist := &model.Playlist{}
	var description sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&playlist.ID, &playlist.UserID, &playlist.Name, &description, &playlist.CreatedAt, &playlist.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // playlist not found
		}
		return nil, fmt.Errorf("failed to scan playlist row for ID %d: %w", id, err)
	}
	playlist.Description = description.String
	return playlist, nil
}

// GetPlaylistsByUserID lists a user's playlists, newest first.
func (r *mysqlPlaylistRepository) GetPlaylistsByUserID(ctx context.Context, userID int64) ([]*model.Playlist, error) {
	query := "SELECT " + playlistColumns + " FROM playlists WHERE user_id = ? ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	var playlists []*model.Playlist
	for rows.Next() {
		playlist := &model.Playlist{}
		var description sql.NullString
		if err := rows.Scan(&playlist.ID, &playlist.UserID, &playlist.Name, &description, &playlist.CreatedAt, &playlist.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan playlist row: %w", err)
		}
		playlist.Description = description.String
		playlists = append(playlists, playlist)
	}
	return playlists, rows.Err()
}

// UpdatePlaylist rewrites the mutable fields of a playlist.
func (r *mysqlPlaylistRepository) UpdatePlaylist(ctx context.Context, playlist *model.Playlist) error {
	query := "UPDATE playlists SET name = ?, description = ?, updated_at = NOW() WHERE id = ?"
	if _, err := r.db.ExecContext(ctx, query, playlist.Name, playlist.Description, playlist.ID); err != nil {
		return fmt.Errorf("failed to update playlist %d: %w", playlist.ID, err)
	}
	return nil
}

// DeletePlaylist removes a playlist and its membership rows.
func (r *mysqlPlaylistRepository) DeletePlaylist(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM playlist_songs WHERE playlist_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete playlist memberships: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM playlists WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete playlist %d: %w", id, err)
	}

	return tx.Commit()
}

// AddSongToPlaylist appends a song to a playlist. Duplicate membership
// surfaces as ErrDuplicateEntry.
//
// The next position is computed with INSERT ... SELECT over the same table;
// MySQL allows that form (error 1093 forbids a scalar subquery on the
// insert's target table inside VALUES). The aggregate yields exactly one
// row even when the playlist is still empty.
func (r *mysqlPlaylistRepository) AddSongToPlaylist(ctx context.Context, playlistID, songID int64) error {
	query := `INSERT INTO playlist_songs (id, playlist_id, song_id, position, created_at)
		SELECT ?, ?, ?, COALESCE(MAX(position), -1) + 1, NOW()
		FROM playlist_songs WHERE playlist_id = ?`

	if _, err := r.db.ExecContext(ctx, query, uuid.NewString(), playlistID, songID, playlistID); err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateEntry
		}
		return fmt.Errorf("failed to add song %d to playlist %d: %w", songID, playlistID, err)
	}
	return nil
}

// RemoveSongFromPlaylist removes a membership row.
func (r *mysqlPlaylistRepository) RemoveSongFromPlaylist(ctx context.Context, playlistID, songID int64) error {
	query := "DELETE FROM playlist_songs WHERE playlist_id = ? AND song_id = ?"
	if _, err := r.db.ExecContext(ctx, query, playlistID, songID); err != nil {
		return fmt.Errorf("failed to remove song %d from playlist %d: %w", songID, playlistID, err)
	}
	return nil
}

// GetPlaylistSongs resolves the playlist's songs in position order.
func (r *mysqlPlaylistRepository) GetPlaylistSongs(ctx context.Context, playlistID int64) ([]*model.Song, error) {
	query := `SELECT s.id, s.user_id, s.title, s.audio_url, s.cover_image, s.duration, s.created_at, s.updated_at
		FROM songs s
		JOIN playlist_songs ps ON ps.song_id = s.id
		WHERE ps.playlist_id = ?
		ORDER BY ps.position ASC`

	rows, err := r.db.QueryContext(ctx, query, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlist songs: %w", err)
	}
	defer rows.Close()

	var songs []*model.Song
	for rows.Next() {
		song, err := scanSong(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan playlist song row: %w", err)
		}
		songs = append(songs, song)
	}
	return songs, rows.Err()
}
