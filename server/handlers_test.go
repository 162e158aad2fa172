package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sort"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"musicfy/cache"
	"musicfy/config"
	"musicfy/core/auth"
	"musicfy/model"
	"musicfy/repository"
)

func TestMain(m *testing.M) {
	if err := auth.Configure(auth.Config{Secret: "handler-test-secret"}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// In-memory repository fakes. They honor the (nil, nil) not-found convention
// of the MySQL implementations so handler status mapping is exercised the
// same way.

type fakeUserRepo struct {
	users  map[int64]*model.User
	nextID int64
	err    error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int64]*model.User{}, nextID: 1}
}

func (r *fakeUserRepo) CreateUser(_ context.Context, user *model.User) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	for _, existing := range r.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return 0, repository.ErrDuplicateUser
		}
	}
	id := r.nextID
	r.nextID++
	u := *user
	u.ID = id
	r.users[id] = &u
	return id, nil
}

func (r *fakeUserRepo) GetUserByID(_ context.Context, id int64) (*model.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	if u, ok := r.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, nil
}

func (r *fakeUserRepo) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetUserByIdentifier(ctx context.Context, identifier string) (*model.User, error) {
	if u, err := r.GetUserByEmail(ctx, identifier); u != nil || err != nil {
		return u, err
	}
	return r.GetUserByUsername(ctx, identifier)
}

func (r *fakeUserRepo) UpdatePasswordHash(_ context.Context, userID int64, passwordHash string) error {
	if u, ok := r.users[userID]; ok {
		u.PasswordHash = passwordHash
	}
	return nil
}

type fakeSongRepo struct {
	songs   map[int64]*model.Song
	nextID  int64
	deleted []int64
	err     error
}

func newFakeSongRepo() *fakeSongRepo {
	return &fakeSongRepo{songs: map[int64]*model.Song{}, nextID: 1}
}

func (r *fakeSongRepo) CreateSong(_ context.Context, song *model.Song) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	id := r.nextID
	r.nextID++
	s := *song
	s.ID = id
	r.songs[id] = &s
	return id, nil
}

func (r *fakeSongRepo) GetSongByID(_ context.Context, id int64) (*model.Song, error) {
	if r.err != nil {
		return nil, r.err
	}
	if s, ok := r.songs[id]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, nil
}

func (r *fakeSongRepo) GetAllSongs(_ context.Context) ([]*model.Song, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []*model.Song
	for _, s := range r.songs {
		copied := *s
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeSongRepo) GetSongsByUserID(ctx context.Context, userID int64) ([]*model.Song, error) {
	all, err := r.GetAllSongs(ctx)
	if err != nil {
		return nil, err
	}
	var out []*model.Song
	for _, s := range all {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSongRepo) UpdateSong(_ context.Context, song *model.Song) error {
	if r.err != nil {
		return r.err
	}
	copied := *song
	r.songs[song.ID] = &copied
	return nil
}

func (r *fakeSongRepo) DeleteSong(_ context.Context, id int64) error {
	if r.err != nil {
		return r.err
	}
	delete(r.songs, id)
	r.deleted = append(r.deleted, id)
	return nil
}

type fakePlaylistRepo struct {
	playlists map[int64]*model.Playlist
	members   map[int64][]int64 // playlistID -> songIDs in order
	nextID    int64
	songRepo  *fakeSongRepo
	addErr    error
}

func newFakePlaylistRepo(songs *fakeSongRepo) *fakePlaylistRepo {
	return &fakePlaylistRepo{
		playlists: map[int64]*model.Playlist{},
		members:   map[int64][]int64{},
		nextID:    1,
		songRepo:  songs,
	}
}

func (r *fakePlaylistRepo) CreatePlaylist(_ context.Context, playlist *model.Playlist) (int64, error) {
	id := r.nextID
	r.nextID++
	p := *playlist
	p.ID = id
	r.playlists[id] = &p
	return id, nil
}

func (r *fakePlaylistRepo) GetPlaylistByID(_ context.Context, id int64) (*model.Playlist, error) {
	if p, ok := r.playlists[id]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, nil
}

func (r *fakePlaylistRepo) GetPlaylistsByUserID(_ context.Context, userID int64) ([]*model.Playlist, error) {
	var out []*model.Playlist
	for _, p := range r.playlists {
		if p.UserID == userID {
			copied := *p
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakePlaylistRepo) UpdatePlaylist(_ context.Context, playlist *model.Playlist) error {
	copied := *playlist
	r.playlists[playlist.ID] = &copied
	return nil
}

func (r *fakePlaylistRepo) DeletePlaylist(_ context.Context, id int64) error {
	delete(r.playlists, id)
	delete(r.members, id)
	return nil
}

func (r *fakePlaylistRepo) AddSongToPlaylist(_ context.Context, playlistID, songID int64) error {
	if r.addErr != nil {
		return r.addErr
	}
	r.members[playlistID] = append(r.members[playlistID], songID)
	return nil
}

func (r *fakePlaylistRepo) RemoveSongFromPlaylist(_ context.Context, playlistID, songID int64) error {
	kept := r.members[playlistID][:0]
	for _, id := range r.members[playlistID] {
		if id != songID {
			kept = append(kept, id)
		}
	}
	r.members[playlistID] = kept
	return nil
}

func (r *fakePlaylistRepo) GetPlaylistSongs(ctx context.Context, playlistID int64) ([]*model.Song, error) {
	var out []*model.Song
	for _, id := range r.members[playlistID] {
		song, err := r.songRepo.GetSongByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if song != nil {
			out = append(out, song)
		}
	}
	return out, nil
}

type fakeLikedRepo struct {
	liked  map[int64][]int64 // userID -> songIDs, newest first
	addErr error
}

func newFakeLikedRepo() *fakeLikedRepo {
	return &fakeLikedRepo{liked: map[int64][]int64{}}
}

func (r *fakeLikedRepo) GetLikedSongs(ctx context.Context, userID int64) ([]*model.Song, error) {
	var out []*model.Song
	for _, id := range r.liked[userID] {
		out = append(out, &model.Song{ID: id, Title: fmt.Sprintf("song-%d", id)})
	}
	return out, nil
}

func (r *fakeLikedRepo) GetLikedSongIDs(_ context.Context, userID int64) ([]int64, error) {
	return append([]int64(nil), r.liked[userID]...), nil
}

func (r *fakeLikedRepo) AddLikedSong(_ context.Context, userID, songID int64) error {
	if r.addErr != nil {
		return r.addErr
	}
	r.liked[userID] = append([]int64{songID}, r.liked[userID]...)
	return nil
}

func (r *fakeLikedRepo) RemoveLikedSong(_ context.Context, userID, songID int64) error {
	kept := r.liked[userID][:0]
	for _, id := range r.liked[userID] {
		if id != songID {
			kept = append(kept, id)
		}
	}
	r.liked[userID] = kept
	return nil
}

// testEnv bundles a handler with its fakes.
type testEnv struct {
	handler *APIHandler
	users   *fakeUserRepo
	songs   *fakeSongRepo
	lists   *fakePlaylistRepo
	liked   *fakeLikedRepo
}

func newTestEnv() *testEnv {
	users := newFakeUserRepo()
	songs := newFakeSongRepo()
	lists := newFakePlaylistRepo(songs)
	liked := newFakeLikedRepo()

	cfg := &config.Config{MinPasswordLength: 6}
	handler := NewAPIHandler(nil, users, songs, lists, liked, cache.NewLikedCache(nil), nil, cfg)
	return &testEnv{handler: handler, users: users, songs: songs, lists: lists, liked: liked}
}

// authed attaches a user identity to a request the way AuthMiddleware does.
func authed(r *http.Request, user *model.User) *http.Request {
	ctx := context.WithValue(r.Context(), contextKeyUserID, user.ID)
	ctx = context.WithValue(ctx, contextKeyUsername, user.Username)
	ctx = context.WithValue(ctx, contextKeyIsArtist, user.IsArtist)
	return r.WithContext(ctx)
}

func jsonRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestHealthHandler(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectPing()

	env := newTestEnv()
	env.handler.db = db

	rec := httptest.NewRecorder()
	env.handler.HealthHandler(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Equal(t, "ok", body["status"])
	require.Equal(t, "ok", body["database"])
	require.Equal(t, false, body["cache"])
	require.Equal(t, false, body["storage"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthHandler_DatabaseDown(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectPing().WillReturnError(fmt.Errorf("connection refused"))

	env := newTestEnv()
	env.handler.db = db

	rec := httptest.NewRecorder()
	env.handler.HealthHandler(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Equal(t, "degraded", body["status"])
	require.Equal(t, "unreachable", body["database"])
}
