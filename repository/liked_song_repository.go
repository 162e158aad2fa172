package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"musicfy/model"
)

// LikedSongRepository defines the interface for a user's liked-songs set.
// The set is implicitly owned by the user, so callers only gate on
// authentication, not ownership.
type LikedSongRepository interface {
	GetLikedSongs(ctx context.Context, userID int64) ([]*model.Song, error)
	GetLikedSongIDs(ctx context.Context, userID int64) ([]int64, error)
	AddLikedSong(ctx context.Context, userID, songID int64) error
	RemoveLikedSong(ctx context.Context, userID, songID int64) error
}

// mysqlLikedSongRepository implements LikedSongRepository for MySQL.
type mysqlLikedSongRepository struct {
	db *sql.DB
}

// NewMySQLLikedSongRepository creates a new mysqlLikedSongRepository.
func NewMySQLLikedSongRepository(db *sql.DB) LikedSongRepository {
	return &mysqlLikedSongRepository{db: db}
}

// GetLikedSongs resolves the user's liked songs, most recently liked first.
func (r *mysqlLikedSongRepository) GetLikedSongs(ctx context.Context, userID int64) ([]*model.Song, error) {
	query := `SELECT s.id, s.user_id, s.title, s.audio_url, s.cover_image, s.duration, s.created_at, s.updated_at
		FROM songs s
		JOIN liked_songs ls ON ls.song_id = s.id
		WHERE ls.user_id = ?
		ORDER BY ls.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query liked songs: %w", err)
	}
	defer rows.Close()

	var songs []*model.Song
	for rows.Next() {
		song, err := scanSong(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan liked song row: %w", err)
		}
		songs = append(songs, song)
	}
	return songs, rows.Err()
}

// GetLikedSongIDs returns just the liked song ids, for cache fills.
func (r *mysqlLikedSongRepository) GetLikedSongIDs(ctx context.Context, userID int64) ([]int64, error) {
	query := "SELECT song_id FROM liked_songs WHERE user_id = ?"

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query liked song ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan liked song id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// AddLikedSong records a like. Liking the same song twice surfaces as
// ErrDuplicateEntry.
func (r *mysqlLikedSongRepository) AddLikedSong(ctx context.Context, userID, songID int64) error {
	query := "INSERT INTO liked_songs (id, user_id, song_id, created_at) VALUES (?, ?, ?, NOW())"

	if _, err := r.db.ExecContext(ctx, query, uuid.NewString(), userID, songID); err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateEntry
		}
		return fmt.Errorf("failed to like song %d for user %d: %w", songID, userID, err)
	}
	return nil
}

// RemoveLikedSong deletes a like if present.
func (r *mysqlLikedSongRepository) RemoveLikedSong(ctx context.Context, userID, songID int64) error {
	query := "DELETE FROM liked_songs WHERE user_id = ? AND song_id = ?"
	if _, err := r.db.ExecContext(ctx, query, userID, songID); err != nil {
		return fmt.Errorf("failed to unlike song %d for user %d: %w", songID, userID, err)
	}
	return nil
}
