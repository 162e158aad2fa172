package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"musicfy/cache"
	"musicfy/config"
	"musicfy/core/auth"
	"musicfy/db"
	"musicfy/logger"
	"musicfy/repository"
	"musicfy/storage"
)

// Start wires the collaborators and runs the HTTP server until SIGINT or
// SIGTERM. The database is required; redis and object storage are optional
// and their routes degrade when absent.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.InfoLevel,
		OutputPath: cfg.LogPath,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	})

	if err := auth.Configure(auth.Config{
		Secret:            cfg.JWTSecret,
		TokenTTL:          time.Duration(cfg.JWTTTLHours) * time.Hour,
		BcryptCost:        cfg.BcryptCost,
		MinPasswordLength: cfg.MinPasswordLength,
	}); err != nil {
		logger.Fatal("Refusing to start without a JWT secret", logger.ErrorField(err))
	}

	conn, err := db.Connect(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", logger.ErrorField(err))
	}
	defer conn.Close()
	logger.Info("Connected to database")

	if err := db.Migrate(cfg); err != nil {
		logger.Fatal("Failed to migrate database schema", logger.ErrorField(err))
	}

	redisClient, err := cache.Connect(cfg)
	if err != nil {
		logger.Warn("Redis unavailable, liked-song cache disabled", logger.ErrorField(err))
	} else {
		defer redisClient.Close()
		logger.Info("Connected to Redis")
	}
	likedCache := cache.NewLikedCache(redisClient)

	store, err := storage.New(cfg)
	if err != nil {
		logger.Warn("Object storage unavailable, uploads disabled", logger.ErrorField(err))
		store = nil
	} else {
		logger.Info("Connected to object storage", logger.String("bucket", cfg.MinioBucket))
	}

	userRepo := repository.NewMySQLUserRepository(conn)
	songRepo := repository.NewMySQLSongRepository(conn)
	playlistRepo := repository.NewMySQLPlaylistRepository(conn)
	likedRepo := repository.NewMySQLLikedSongRepository(conn)

	apiHandler := NewAPIHandler(conn, userRepo, songRepo, playlistRepo, likedRepo, likedCache, store, cfg)

	router := mux.NewRouter()

	// CORS middleware
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Max-Age", "86400")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	router.HandleFunc("/api/health", apiHandler.HealthHandler).Methods(http.MethodGet)

	// Authentication
	router.HandleFunc("/api/auth/register", apiHandler.RegisterHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/login", apiHandler.LoginHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/user/{id}", apiHandler.GetUserProfileHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/auth/password", apiHandler.AuthMiddleware(apiHandler.ChangePasswordHandler)).Methods(http.MethodPost)

	// Songs
	router.HandleFunc("/api/songs", apiHandler.GetSongsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/songs", apiHandler.AuthMiddleware(apiHandler.CreateSongHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/songs/{id}", apiHandler.GetSongHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/songs/{id}", apiHandler.AuthMiddleware(apiHandler.UpdateSongHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/songs/{id}", apiHandler.AuthMiddleware(apiHandler.DeleteSongHandler)).Methods(http.MethodDelete)

	// Playlists
	router.HandleFunc("/api/playlists", apiHandler.AuthMiddleware(apiHandler.GetPlaylistsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/playlists", apiHandler.AuthMiddleware(apiHandler.CreatePlaylistHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/playlists/{id}", apiHandler.AuthMiddleware(apiHandler.GetPlaylistHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/playlists/{id}", apiHandler.AuthMiddleware(apiHandler.UpdatePlaylistHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/playlists/{id}", apiHandler.AuthMiddleware(apiHandler.DeletePlaylistHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/playlists/{id}/songs", apiHandler.AuthMiddleware(apiHandler.AddSongToPlaylistHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/playlists/{id}/songs/{songId}", apiHandler.AuthMiddleware(apiHandler.RemoveSongFromPlaylistHandler)).Methods(http.MethodDelete)

	// Liked songs
	router.HandleFunc("/api/likes", apiHandler.AuthMiddleware(apiHandler.GetLikedSongsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/likes/ids", apiHandler.AuthMiddleware(apiHandler.GetLikedSongIDsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/likes", apiHandler.AuthMiddleware(apiHandler.AddLikedSongHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/likes/{songId}", apiHandler.AuthMiddleware(apiHandler.RemoveLikedSongHandler)).Methods(http.MethodDelete)

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Server starting", logger.String("addr", cfg.ServerAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", logger.ErrorField(err))
		}
	}()

	<-stop
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}

	logger.Info("Server stopped")
}
