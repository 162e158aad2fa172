package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"musicfy/core/auth"
	"musicfy/logger"
	"musicfy/model"
)

// SongRequest is the JSON body for creating or updating a song.
type SongRequest struct {
	Title      string  `json:"title"`
	AudioURL   string  `json:"audioUrl"`
	CoverImage string  `json:"coverImage"`
	Duration   float32 `json:"duration"`
}

// GetSongsHandler lists the catalog, optionally filtered to one uploader
// via ?user=<id>.
func (h *APIHandler) GetSongsHandler(w http.ResponseWriter, r *http.Request) {
	var (
		songs []*model.Song
		err   error
	)

	if userParam := r.URL.Query().Get("user"); userParam != "" {
		userID, parseErr := strconv.ParseInt(userParam, 10, 64)
		if parseErr != nil {
			respondError(w, http.StatusBadRequest, "Invalid user ID")
			return
		}
		songs, err = h.songRepo.GetSongsByUserID(r.Context(), userID)
	} else {
		songs, err = h.songRepo.GetAllSongs(r.Context())
	}
	if err != nil {
		logger.Error("[Songs] failed to list songs", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to get songs")
		return
	}

	if songs == nil {
		songs = []*model.Song{}
	}
	respondJSON(w, http.StatusOK, songs)
}

// GetSongHandler returns a single song by id.
func (h *APIHandler) GetSongHandler(w http.ResponseWriter, r *http.Request) {
	song, ok := h.loadSong(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, song)
}

// CreateSongHandler creates a song owned by the authenticated user. A
// multipart request uploads the audio (and optional cover) to object
// storage; a JSON request supplies ready-made URLs.
func (h *APIHandler) CreateSongHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	song := &model.Song{UserID: userID}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if !h.fillSongFromUpload(w, r, song) {
			return
		}
	} else {
		var req SongRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		song.Title = req.Title
		song.AudioURL = req.AudioURL
		song.CoverImage = req.CoverImage
		song.Duration = req.Duration
	}

	fieldErrs := map[string]string{}
	if strings.TrimSpace(song.Title) == "" {
		fieldErrs["title"] = "Please provide a title."
	}
	if song.AudioURL == "" {
		fieldErrs["audioUrl"] = "Please provide an audio file."
	}
	if len(fieldErrs) > 0 {
		respondFieldErrors(w, http.StatusBadRequest, "Title and audio file are required", fieldErrs)
		return
	}

	id, err := h.songRepo.CreateSong(r.Context(), song)
	if err != nil {
		logger.Error("[Songs] failed to create song",
			logger.Int64("userId", userID),
			logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to create song")
		return
	}
	song.ID = id

	logger.Info("[Songs] song created",
		logger.Int64("songId", id),
		logger.Int64("userId", userID),
		logger.String("title", song.Title))

	respondJSON(w, http.StatusCreated, song)
}

// fillSongFromUpload streams the multipart audio/cover files into object
// storage and fills the song's URLs and metadata. Reports success; on
// failure the response has already been written.
func (h *APIHandler) fillSongFromUpload(w http.ResponseWriter, r *http.Request, song *model.Song) bool {
	if h.store == nil {
		respondError(w, http.StatusServiceUnavailable, "File storage is not available")
		return false
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil { // 32MB in memory, rest spills to disk
		respondError(w, http.StatusBadRequest, "Failed to parse multipart form")
		return false
	}

	song.Title = r.FormValue("title")
	if d := r.FormValue("duration"); d != "" {
		if duration, err := strconv.ParseFloat(d, 32); err == nil {
			song.Duration = float32(duration)
		}
	}

	audioFile, audioHeader, err := r.FormFile("audioFile")
	if err != nil {
		respondFieldErrors(w, http.StatusBadRequest, "Missing 'audioFile' in form", map[string]string{
			"audioFile": "Please provide an audio file.",
		})
		return false
	}
	defer audioFile.Close()

	audioURL, err := h.store.UploadAudio(r.Context(), audioHeader.Filename,
		contentTypeOrDefault(audioHeader.Header.Get("Content-Type"), "audio/mpeg"),
		audioFile, audioHeader.Size)
	if err != nil {
		logger.Error("[Songs] audio upload failed", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to store audio file")
		return false
	}
	song.AudioURL = audioURL

	if coverFile, coverHeader, err := r.FormFile("coverFile"); err == nil {
		defer coverFile.Close()
		coverURL, err := h.store.UploadCover(r.Context(), coverHeader.Filename,
			contentTypeOrDefault(coverHeader.Header.Get("Content-Type"), "image/jpeg"),
			coverFile, coverHeader.Size)
		if err != nil {
			logger.Error("[Songs] cover upload failed", logger.ErrorField(err))
			respondError(w, http.StatusInternalServerError, "Failed to store cover image")
			return false
		}
		song.CoverImage = coverURL
	}

	return true
}

func contentTypeOrDefault(ct, fallback string) string {
	if ct == "" {
		return fallback
	}
	return ct
}

// UpdateSongHandler rewrites a song's metadata. Owner only.
func (h *APIHandler) UpdateSongHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	song, ok := h.loadSong(w, r)
	if !ok {
		return
	}
	if !auth.CanMutate(userID, song.UserID) {
		logger.Warn("[Songs] update forbidden",
			logger.Int64("songId", song.ID),
			logger.Int64("userId", userID),
			logger.Int64("ownerId", song.UserID))
		respondError(w, http.StatusForbidden, "You do not own this song")
		return
	}

	var req SongRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Title != "" {
		song.Title = req.Title
	}
	if req.AudioURL != "" {
		song.AudioURL = req.AudioURL
	}
	if req.CoverImage != "" {
		song.CoverImage = req.CoverImage
	}
	if req.Duration > 0 {
		song.Duration = req.Duration
	}

	if err := h.songRepo.UpdateSong(r.Context(), song); err != nil {
		logger.Error("[Songs] failed to update song",
			logger.Int64("songId", song.ID),
			logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to update song")
		return
	}

	logger.Info("[Songs] song updated", logger.Int64("songId", song.ID))
	respondJSON(w, http.StatusOK, song)
}

// DeleteSongHandler removes a song; stored media objects are removed on a
// best-effort basis. Owner only.
func (h *APIHandler) DeleteSongHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	song, ok := h.loadSong(w, r)
	if !ok {
		return
	}
	if !auth.CanMutate(userID, song.UserID) {
		logger.Warn("[Songs] delete forbidden",
			logger.Int64("songId", song.ID),
			logger.Int64("userId", userID),
			logger.Int64("ownerId", song.UserID))
		respondError(w, http.StatusForbidden, "You do not own this song")
		return
	}

	if err := h.songRepo.DeleteSong(r.Context(), song.ID); err != nil {
		logger.Error("[Songs] failed to delete song",
			logger.Int64("songId", song.ID),
			logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to delete song")
		return
	}

	if h.store != nil {
		if err := h.store.RemoveByURL(r.Context(), song.AudioURL); err != nil {
			logger.Warn("[Songs] failed to remove audio object", logger.ErrorField(err))
		}
		if song.CoverImage != "" {
			if err := h.store.RemoveByURL(r.Context(), song.CoverImage); err != nil {
				logger.Warn("[Songs] failed to remove cover object", logger.ErrorField(err))
			}
		}
	}

	logger.Info("[Songs] song deleted", logger.Int64("songId", song.ID))
	w.WriteHeader(http.StatusNoContent)
}

// loadSong resolves the {id} path variable to a song. On failure the
// response has already been written and ok is false.
func (h *APIHandler) loadSong(w http.ResponseWriter, r *http.Request) (*model.Song, bool) {
	vars := mux.Vars(r)
	songID, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid song ID")
		return nil, false
	}

	song, err := h.songRepo.GetSongByID(r.Context(), songID)
	if err != nil {
		logger.Error("[Songs] failed to look up song", logger.Int64("songId", songID), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return nil, false
	}
	if song == nil {
		respondError(w, http.StatusNotFound, "Song not found")
		return nil, false
	}
	return song, true
}
