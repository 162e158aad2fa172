package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"musicfy/core/auth"
	"musicfy/logger"
	"musicfy/model"
	"musicfy/repository"
)

// PlaylistRequest is the JSON body for creating or updating a playlist.
type PlaylistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// GetPlaylistsHandler lists the authenticated user's playlists.
func (h *APIHandler) GetPlaylistsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	playlists, err := h.playlistRepo.GetPlaylistsByUserID(r.Context(), userID)
	if err != nil {
		logger.Error("[Playlists] failed to list playlists",
			logger.Int64("userId", userID),
			logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to get playlists")
		return
	}

	if playlists == nil {
		playlists = []*model.Playlist{}
	}
	respondJSON(w, http.StatusOK, playlists)
}

// CreatePlaylistHandler creates a playlist owned by the authenticated user.
func (h *APIHandler) CreatePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req PlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		respondFieldErrors(w, http.StatusBadRequest, "Playlist name is required", map[string]string{
			"name": "Playlist name is required",
		})
		return
	}

	playlist := &model.Playlist{
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
	}

	id, err := h.playlistRepo.CreatePlaylist(r.Context(), playlist)
	if err != nil {
		logger.Error("[Playlists] failed to create playlist",
			logger.Int64("userId", userID),
			logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to create playlist")
		return
	}
	playlist.ID = id

	logger.Info("[Playlists] playlist created",
		logger.Int64("playlistId", id),
		logger.Int64("userId", userID),
		logger.String("name", playlist.Name))

	respondJSON(w, http.StatusCreated, playlist)
}

// GetPlaylistHandler returns one playlist with its songs in order. Any
// authenticated user may read; only the owner may mutate.
func (h *APIHandler) GetPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	playlist, ok := h.loadPlaylist(w, r)
	if !ok {
		return
	}

	songs, err := h.playlistRepo.GetPlaylistSongs(r.Context(), playlist.ID)
	if err != nil {
		logger.Error("[Playlists] failed to load playlist songs",
			logger.Int64("playlistId", playlist.ID),
			logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to get playlist")
		return
	}
	if songs == nil {
		songs = []*model.Song{}
	}

	respondJSON(w, http.StatusOK, model.PlaylistWithSongs{Playlist: *playlist, Songs: songs})
}

// UpdatePlaylistHandler rewrites name/description. Owner only.
func (h *APIHandler) UpdatePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	userID, playlist, ok := h.loadOwnedPlaylist(w, r)
	if !ok {
		return
	}

	var req PlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name != "" {
		playlist.Name = req.Name
	}
	if req.Description != "" {
		playlist.Description = req.Description
	}

	if err := h.playlistRepo.UpdatePlaylist(r.Context(), playlist); err != nil {
		logger.Error("[Playlists] failed to update playlist",
			logger.Int64("playlistId", playlist.ID),
			logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to update playlist")
		return
	}

	logger.Info("[Playlists] playlist updated",
		logger.Int64("playlistId", playlist.ID),
		logger.Int64("userId", userID))
	respondJSON(w, http.StatusOK, playlist)
}

// DeletePlaylistHandler removes a playlist and its memberships. Owner only.
func (h *APIHandler) DeletePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	userID, playlist, ok := h.loadOwnedPlaylist(w, r)
	if !ok {
		return
	}

	if err := h.playlistRepo.DeletePlaylist(r.Context(), playlist.ID); err != nil {
		logger.Error("[Playlists] failed to delete playlist",
			logger.Int64("playlistId", playlist.ID),
			logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to delete playlist")
		return
	}

	logger.Info("[Playlists] playlist deleted",
		logger.Int64("playlistId", playlist.ID),
		logger.Int64("userId", userID))
	w.WriteHeader(http.StatusNoContent)
}

// AddSongToPlaylistHandler appends a song to the playlist. Owner only.
func (h *APIHandler) AddSongToPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	_, playlist, ok := h.loadOwnedPlaylist(w, r)
	if !ok {
		return
	}

	var req struct {
		SongID int64 `json:"songId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SongID == 0 {
		respondError(w, http.StatusBadRequest, "Song ID is required")
		return
	}

	song, err := h.songRepo.GetSongByID(r.Context(), req.SongID)
	if err != nil {
		logger.Error("[Playlists] failed to look up song", logger.Int64("songId", req.SongID), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if song == nil {
		respondError(w, http.StatusNotFound, "Song not found")
		return
	}

	if err := h.playlistRepo.AddSongToPlaylist(r.Context(), playlist.ID, song.ID); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			respondError(w, http.StatusConflict, "Song is already in the playlist")
			return
		}
		logger.Error("[Playlists] failed to add song",
			logger.Int64("playlistId", playlist.ID),
			logger.Int64("songId", song.ID),
			logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to add song to playlist")
		return
	}

	logger.Info("[Playlists] song added",
		logger.Int64("playlistId", playlist.ID),
		logger.Int64("songId", song.ID))
	w.WriteHeader(http.StatusNoContent)
}

// RemoveSongFromPlaylistHandler removes a membership row. Owner only.
func (h *APIHandler) RemoveSongFromPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	_, playlist, ok := h.loadOwnedPlaylist(w, r)
	if !ok {
		return
	}

	songID, err := strconv.ParseInt(mux.Vars(r)["songId"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid song ID")
		return
	}

	if err := h.playlistRepo.RemoveSongFromPlaylist(r.Context(), playlist.ID, songID); err != nil {
		logger.Error("[Playlists] failed to remove song",
			logger.Int64("playlistId", playlist.ID),
			logger.Int64("songId", songID),
			logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to remove song from playlist")
		return
	}

	logger.Info("[Playlists] song removed",
		logger.Int64("playlistId", playlist.ID),
		logger.Int64("songId", songID))
	w.WriteHeader(http.StatusNoContent)
}

// loadPlaylist resolves the {id} path variable to a playlist.
func (h *APIHandler) loadPlaylist(w http.ResponseWriter, r *http.Request) (*model.Playlist, bool) {
	playlistID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid playlist ID")
		return nil, false
	}

	playlist, err := h.playlistRepo.GetPlaylistByID(r.Context(), playlistID)
	if err != nil {
		logger.Error("[Playlists] failed to look up playlist",
			logger.Int64("playlistId", playlistID),
			logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return nil, false
	}
	if playlist == nil {
		respondError(w, http.StatusNotFound, "Playlist not found")
		return nil, false
	}
	return playlist, true
}

// loadOwnedPlaylist resolves the playlist and enforces ownership for a
// mutation. Absence and non-ownership stay distinct: 404 vs 403.
func (h *APIHandler) loadOwnedPlaylist(w http.ResponseWriter, r *http.Request) (int64, *model.Playlist, bool) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return 0, nil, false
	}

	playlist, ok := h.loadPlaylist(w, r)
	if !ok {
		return 0, nil, false
	}

	if !auth.CanMutate(userID, playlist.UserID) {
		logger.Warn("[Playlists] mutation forbidden",
			logger.Int64("playlistId", playlist.ID),
			logger.Int64("userId", userID),
			logger.Int64("ownerId", playlist.UserID))
		respondError(w, http.StatusForbidden, "You do not own this playlist")
		return 0, nil, false
	}
	return userID, playlist, true
}
