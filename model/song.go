package model

import "time"

// Song represents a track in the catalog. UserID is the owning user (the
// uploading artist); only the owner may modify or delete the record.
type Song struct {
	ID         int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID     int64     `json:"userId" gorm:"index;not null"`
	Title      string    `json:"title" gorm:"size:255;not null"`
	AudioURL   string    `json:"audioUrl" gorm:"size:767;not null;column:audio_url"`
	CoverImage string    `json:"coverImage,omitempty" gorm:"size:767;column:cover_image"`
	Duration   float32   `json:"duration,omitempty"` // seconds
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// LikedSong links a user to a song they liked. Rows are identified by a
// uuid so likes survive renumbering of either side.
type LikedSong struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	UserID    int64     `json:"userId" gorm:"uniqueIndex:uq_user_song;not null"`
	SongID    int64     `json:"songId" gorm:"uniqueIndex:uq_user_song;not null"`
	CreatedAt time.Time `json:"createdAt"`
}
