package model

import "time"

// Playlist belongs to exactly one user.
type Playlist struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID      int64     `json:"userId" gorm:"index;not null"`
	Name        string    `json:"name" gorm:"size:255;not null"`
	Description string    `json:"description,omitempty" gorm:"type:text"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PlaylistSong is a membership row: one song at one position in one playlist.
type PlaylistSong struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	PlaylistID int64     `json:"playlistId" gorm:"uniqueIndex:uq_playlist_song;not null"`
	SongID     int64     `json:"songId" gorm:"uniqueIndex:uq_playlist_song;not null"`
	Position   int       `json:"position"`
	CreatedAt  time.Time `json:"createdAt"`
}

// PlaylistWithSongs bundles a playlist and its resolved songs in order.
type PlaylistWithSongs struct {
	Playlist Playlist `json:"playlist"`
	Songs    []*Song  `json:"songs"`
}
