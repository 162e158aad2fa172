package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"musicfy/logger"
	"musicfy/model"
	"musicfy/repository"
)

// Liked songs are implicitly owned by the requesting user, so these routes
// need authentication but no ownership check.

// GetLikedSongsHandler returns the user's liked songs, newest like first.
func (h *APIHandler) GetLikedSongsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	songs, err := h.likedRepo.GetLikedSongs(r.Context(), userID)
	if err != nil {
		logger.Error("[Likes] failed to list liked songs",
			logger.Int64("userId", userID),
			logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to get liked songs")
		return
	}
	if songs == nil {
		songs = []*model.Song{}
	}

	// Refresh the id cache while the full rows are in hand.
	ids := make([]int64, 0, len(songs))
	for _, s := range songs {
		ids = append(ids, s.ID)
	}
	if err := h.likedCache.SetSongIDs(r.Context(), userID, ids); err != nil {
		logger.Warn("[Likes] failed to refresh cache", logger.ErrorField(err))
	}

	respondJSON(w, http.StatusOK, songs)
}

// GetLikedSongIDsHandler returns just the liked song ids. Served from the
// redis set when warm; on a miss the database fills it.
func (h *APIHandler) GetLikedSongIDsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if ids, hit := h.likedCache.GetSongIDs(r.Context(), userID); hit {
		respondJSON(w, http.StatusOK, ids)
		return
	}

	ids, err := h.likedRepo.GetLikedSongIDs(r.Context(), userID)
	if err != nil {
		logger.Error("[Likes] failed to list liked song ids",
			logger.Int64("userId", userID),
			logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to get liked songs")
		return
	}
	if ids == nil {
		ids = []int64{}
	}

	if err := h.likedCache.SetSongIDs(r.Context(), userID, ids); err != nil {
		logger.Warn("[Likes] failed to fill cache", logger.ErrorField(err))
	}

	respondJSON(w, http.StatusOK, ids)
}

// AddLikedSongHandler records a like for an existing song.
func (h *APIHandler) AddLikedSongHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
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
		logger.Error("[Likes] failed to look up song", logger.Int64("songId", req.SongID), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if song == nil {
		respondError(w, http.StatusNotFound, "Song not found")
		return
	}

	if err := h.likedRepo.AddLikedSong(r.Context(), userID, song.ID); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			respondError(w, http.StatusConflict, "Song is already liked")
			return
		}
		logger.Error("[Likes] failed to like song",
			logger.Int64("userId", userID),
			logger.Int64("songId", song.ID),
			logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to like song")
		return
	}
	h.likedCache.Invalidate(r.Context(), userID)

	logger.Info("[Likes] song liked",
		logger.Int64("userId", userID),
		logger.Int64("songId", song.ID))
	w.WriteHeader(http.StatusNoContent)
}

// RemoveLikedSongHandler removes a like.
func (h *APIHandler) RemoveLikedSongHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	songID, err := strconv.ParseInt(mux.Vars(r)["songId"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid song ID")
		return
	}

	if err := h.likedRepo.RemoveLikedSong(r.Context(), userID, songID); err != nil {
		logger.Error("[Likes] failed to unlike song",
			logger.Int64("userId", userID),
			logger.Int64("songId", songID),
			logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to unlike song")
		return
	}
	h.likedCache.Invalidate(r.Context(), userID)

	logger.Info("[Likes] song unliked",
		logger.Int64("userId", userID),
		logger.Int64("songId", songID))
	w.WriteHeader(http.StatusNoContent)
}
