package repository

import (
	"context"
	"database/sql"
	"fmt"

	"musicfy/model"
)

// SongRepository defines the interface for song data operations.
type SongRepository interface {
	CreateSong(ctx context.Context, song *model.Song) (int64, error)
	GetSongByID(ctx context.Context, id int64) (*model.Song, error)
	GetAllSongs(ctx context.Context) ([]*model.Song, error)
	GetSongsByUserID(ctx context.Context, userID int64) ([]*model.Song, error)
	UpdateSong(ctx context.Context, song *model.Song) error
	DeleteSong(ctx context.Context, id int64) error
}

const songColumns = "id, user_id, title, audio_url, cover_image, duration, created_at, updated_at"

// mysqlSongRepository implements SongRepository for MySQL.
type mysqlSongRepository struct {
	db *sql.DB
}

// NewMySQLSongRepository creates a new mysqlSongRepository.
func NewMySQLSongRepository(db *sql.DB) SongRepository {
	return &mysqlSongRepository{db: db}
}

// CreateSong inserts a new song owned by song.UserID.
func (r *mysqlSongRepository) CreateSong(ctx context.Context, song *model.Song) (int64, error) {
	query := "INSERT INTO songs (user_id, title, audio_url, cover_image, duration, created_at, updated_at) VALUES (?, ?, ?, ?, ?, NOW(), NOW())"

	res, err := r.db.ExecContext(ctx, query, song.UserID, song.Title, song.AudioURL, song.CoverImage, song.Duration)
	if err != nil {
		return 0, fmt.Errorf("failed to insert song: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for song: %w", err)
	}
	return id, nil
}

func scanSong(scan func(dest ...interface{}) error) (*model.Song, error) {
	song := &model.Song{}
	var cover sql.NullString
	err := scan(&song.ID, &song.UserID, &song.Title, &song.AudioURL, &cover, &song.Duration, &song.CreatedAt, &song.UpdatedAt)
	if err != nil {
		return nil, err
	}
	song.CoverImage = cover.String
	return song, nil
}

// GetSongByID retrieves a song by its ID, or (nil, nil) when absent.
func (r *mysqlSongRepository) GetSongByID(ctx context.Context, id int64) (*model.Song, error) {
	query := "SELECT " + songColumns + " FROM songs WHERE id = ?"
	song, err := scanSong(r.db.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // song not found
		}
		return nil, fmt.Errorf("failed to scan song row for ID %d: %w", id, err)
	}
	return song, nil
}

func (r *mysqlSongRepository) querySongs(ctx context.Context, query string, args ...interface{}) ([]*model.Song, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query songs: %w", err)
	}
	defer rows.Close()

	var songs []*model.Song
	for rows.Next() {
		song, err := scanSong(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan song row: %w", err)
		}
		songs = append(songs, song)
	}
	return songs, rows.Err()
}

// GetAllSongs lists the whole catalog, newest first.
func (r *mysqlSongRepository) GetAllSongs(ctx context.Context) ([]*model.Song, error) {
	query := "SELECT " + songColumns + " FROM songs ORDER BY created_at DESC"
	return r.querySongs(ctx, query)
}

// GetSongsByUserID lists the songs owned by a user, newest first.
func (r *mysqlSongRepository) GetSongsByUserID(ctx context.Context, userID int64) ([]*model.Song, error) {
	query := "SELECT " + songColumns + " FROM songs WHERE user_id = ? ORDER BY created_at DESC"
	return r.querySongs(ctx, query, userID)
}

// UpdateSong rewrites the mutable fields of a song. The owner column is
// never updated.
func (r *mysqlSongRepository) UpdateSong(ctx context.Context, song *model.Song) error {
	query := "UPDATE songs SET title = ?, audio_url = ?, cover_image = ?, duration = ?, updated_at = NOW() WHERE id = ?"
	if _, err := r.db.ExecContext(ctx, query, song.Title, song.AudioURL, song.CoverImage, song.Duration, song.ID); err != nil {
		return fmt.Errorf("failed to update song %d: %w", song.ID, err)
	}
	return nil
}

// DeleteSong removes a song and its membership rows.
func (r *mysqlSongRepository) DeleteSong(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM playlist_songs WHERE song_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete playlist memberships for song %d: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM liked_songs WHERE song_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete likes for song %d: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM songs WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete song %d: %w", id, err)
	}

	return tx.Commit()
}
