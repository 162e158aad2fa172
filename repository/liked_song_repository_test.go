package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/require"
)

func newLikedRepo(t *testing.T) (LikedSongRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewMySQLLikedSongRepository(db), mock
}

func TestGetLikedSongs(t *testing.T) {
	repo, mock := newLikedRepo(t)

	now := time.Now()
	mock.ExpectQuery("FROM songs s").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(songRowColumns()).
			AddRow(9, 2, "latest like", "http://files/c.mp3", nil, float32(70), now, now).
			AddRow(4, 2, "older like", "http://files/d.mp3", nil, float32(60), now, now))

	songs, err := repo.GetLikedSongs(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, songs, 2)
	require.Equal(t, "latest like", songs[0].Title)
}

func TestGetLikedSongIDs(t *testing.T) {
	repo, mock := newLikedRepo(t)

	mock.ExpectQuery("SELECT song_id FROM liked_songs").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"song_id"}).AddRow(9).AddRow(4))

	ids, err := repo.GetLikedSongIDs(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, []int64{9, 4}, ids)
}

func TestAddLikedSong(t *testing.T) {
	repo, mock := newLikedRepo(t)

	mock.ExpectExec("INSERT INTO liked_songs").
		WithArgs(sqlmock.AnyArg(), int64(1), int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.AddLikedSong(context.Background(), 1, 9))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddLikedSong_Duplicate(t *testing.T) {
	repo, mock := newLikedRepo(t)

	mock.ExpectExec("INSERT INTO liked_songs").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	err := repo.AddLikedSong(context.Background(), 1, 9)
	require.ErrorIs(t, err, ErrDuplicateEntry)
}

func TestRemoveLikedSong(t *testing.T) {
	repo, mock := newLikedRepo(t)

	mock.ExpectExec("DELETE FROM liked_songs").
		WithArgs(int64(1), int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.RemoveLikedSong(context.Background(), 1, 9))
	require.NoError(t, mock.ExpectationsWereMet())
}
