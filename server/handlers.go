package server

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"musicfy/cache"
	"musicfy/config"
	"musicfy/repository"
	"musicfy/storage"
)

// APIHandler carries the injected collaborators for all API routes.
type APIHandler struct {
	db           *sql.DB
	userRepo     repository.UserRepository
	songRepo     repository.SongRepository
	playlistRepo repository.PlaylistRepository
	likedRepo    repository.LikedSongRepository
	likedCache   *cache.LikedCache
	store        *storage.Storage
	cfg          *config.Config
}

// NewAPIHandler creates a new API handler. likedCache and store may be nil;
// the affected routes degrade (cache misses, uploads rejected).
func NewAPIHandler(
	db *sql.DB,
	userRepo repository.UserRepository,
	songRepo repository.SongRepository,
	playlistRepo repository.PlaylistRepository,
	likedRepo repository.LikedSongRepository,
	likedCache *cache.LikedCache,
	store *storage.Storage,
	cfg *config.Config,
) *APIHandler {
	return &APIHandler{
		db:           db,
		userRepo:     userRepo,
		songRepo:     songRepo,
		playlistRepo: playlistRepo,
		likedRepo:    likedRepo,
		likedCache:   likedCache,
		store:        store,
		cfg:          cfg,
	}
}

// errorResponse is the JSON error envelope: a top-level message plus an
// optional per-field breakdown.
type errorResponse struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Message: message})
}

func respondFieldErrors(w http.ResponseWriter, status int, message string, fields map[string]string) {
	respondJSON(w, status, errorResponse{Message: message, Errors: fields})
}

// HealthHandler reports process health: database reachability plus whether
// the optional collaborators were wired at startup.
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	dbStatus := "ok"
	code := http.StatusOK

	if err := h.db.PingContext(r.Context()); err != nil {
		status = "degraded"
		dbStatus = "unreachable"
		code = http.StatusInternalServerError
	}

	respondJSON(w, code, map[string]interface{}{
		"status":   status,
		"database": dbStatus,
		"cache":    h.likedCache.Available(),
		"storage":  h.store != nil,
	})
}
