package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"musicfy/core/auth"
	"musicfy/logger"
	"musicfy/model"
	"musicfy/repository"
)

// RegisterRequest is the allow-list for registration. Nothing outside these
// fields reaches the user record.
type RegisterRequest struct {
	Email           string `json:"email"`
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	IsArtist        bool   `json:"isArtist"`
}

// LoginRequest is the login request body. Identifier takes either a
// username or an email; the legacy email/username fields are accepted too.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Email      string `json:"email"`
	Username   string `json:"username"`
	Password   string `json:"password"`
}

// authResponse pairs a sanitized user with a fresh token.
type authResponse struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

const invalidCredentialsMsg = "Invalid credentials"

// RegisterHandler handles user registration requests.
func (h *APIHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	fieldErrs := map[string]string{}
	if req.Email == "" {
		fieldErrs["email"] = "Email is required"
	} else if !emailPattern.MatchString(req.Email) {
		fieldErrs["email"] = "Please enter a valid email address"
	}
	if req.Username == "" {
		fieldErrs["username"] = "Username is required"
	} else if len(req.Username) < 3 {
		fieldErrs["username"] = "Username must be at least 3 characters long"
	}
	if req.Password == "" {
		fieldErrs["password"] = "Password is required"
	}
	if req.ConfirmPassword != "" && req.Password != req.ConfirmPassword {
		fieldErrs["confirmPassword"] = "Passwords do not match"
	}
	if len(fieldErrs) > 0 {
		respondFieldErrors(w, http.StatusBadRequest, "Email, password, and username are required", fieldErrs)
		return
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrWeakPassword) {
			respondFieldErrors(w, http.StatusUnprocessableEntity, "Password is too weak", map[string]string{
				"password": fmt.Sprintf("Password must be at least %d characters long", h.cfg.MinPasswordLength),
			})
			return
		}
		logger.Error("[Register] failed to hash password", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to process password")
		return
	}

	user := &model.User{
		Username:     req.Username,
		Email:        strings.ToLower(req.Email),
		PasswordHash: hashedPassword,
		IsArtist:     req.IsArtist,
	}

	userID, err := h.userRepo.CreateUser(r.Context(), user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			logger.Warn("[Register] username or email already exists",
				logger.String("username", req.Username),
				logger.String("email", user.Email))
			respondError(w, http.StatusConflict, "Username or email already exists")
			return
		}
		logger.Error("[Register] failed to create user", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}
	user.ID = userID

	token, err := auth.GenerateToken(user)
	if err != nil {
		logger.Error("[Register] failed to generate token", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	logger.Info("[Register] user created",
		logger.Int64("userId", userID),
		logger.String("username", user.Username))

	respondJSON(w, http.StatusCreated, authResponse{User: user, Token: token})
}

// LoginHandler handles user login requests. Unknown identifiers and wrong
// passwords produce identical responses so accounts cannot be enumerated.
func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	identifier := req.Identifier
	if identifier == "" {
		identifier = req.Email
	}
	if identifier == "" {
		identifier = req.Username
	}
	if identifier == "" || req.Password == "" {
		respondFieldErrors(w, http.StatusBadRequest, "Email/Username and password are required", map[string]string{
			"identifier": "Email/Username is required",
		})
		return
	}

	user, err := h.userRepo.GetUserByIdentifier(r.Context(), identifier)
	if err != nil {
		logger.Error("[Login] failed to look up user", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if user == nil {
		logger.Warn("[Login] unknown identifier")
		respondError(w, http.StatusUnauthorized, invalidCredentialsMsg)
		return
	}

	if !auth.VerifyPassword(req.Password, user.PasswordHash) {
		logger.Warn("[Login] password verification failed", logger.Int64("userId", user.ID))
		respondError(w, http.StatusUnauthorized, invalidCredentialsMsg)
		return
	}

	token, err := auth.GenerateToken(user)
	if err != nil {
		logger.Error("[Login] failed to generate token", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	logger.Info("[Login] login successful", logger.Int64("userId", user.ID))
	respondJSON(w, http.StatusOK, authResponse{User: user, Token: token})
}

// GetUserProfileHandler returns a public user profile by id. The password
// hash never serializes.
func (h *APIHandler) GetUserProfileHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	user, err := h.userRepo.GetUserByID(r.Context(), userID)
	if err != nil {
		logger.Error("[Profile] failed to look up user", logger.Int64("userId", userID), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if user == nil {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// ChangePasswordRequest carries a password change for the authenticated user.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangePasswordHandler verifies the current password and stores a new
// hash. This is the only route that rewrites the password column.
func (h *APIHandler) ChangePasswordHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		respondError(w, http.StatusBadRequest, "Current and new password are required")
		return
	}

	user, err := h.userRepo.GetUserByID(r.Context(), userID)
	if err != nil || user == nil {
		logger.Error("[ChangePassword] failed to load user", logger.Int64("userId", userID), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if !auth.VerifyPassword(req.CurrentPassword, user.PasswordHash) {
		respondError(w, http.StatusUnauthorized, invalidCredentialsMsg)
		return
	}

	newHash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		if errors.Is(err, auth.ErrWeakPassword) {
			respondError(w, http.StatusUnprocessableEntity, "Password is too weak")
			return
		}
		logger.Error("[ChangePassword] failed to hash password", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to process password")
		return
	}

	if err := h.userRepo.UpdatePasswordHash(r.Context(), userID, newHash); err != nil {
		logger.Error("[ChangePassword] failed to update hash", logger.Int64("userId", userID), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	logger.Info("[ChangePassword] password updated", logger.Int64("userId", userID))
	w.WriteHeader(http.StatusNoContent)
}

type contextKey string

const (
	contextKeyUserID   contextKey = "userID"
	contextKeyUsername contextKey = "username"
	contextKeyIsArtist contextKey = "isArtist"
)

// AuthMiddleware gates a route behind a valid Bearer token. On success the
// resolved user's identity is attached to the request context.
func (h *APIHandler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			respondError(w, http.StatusUnauthorized, "Authorization header is required")
			return
		}

		// Exactly "Bearer <token>"; anything else is rejected before the
		// token is even parsed.
		const prefix = "Bearer "
		if !strings.HasPrefix(authHeader, prefix) {
			respondError(w, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}

		claims, err := auth.ParseToken(strings.TrimPrefix(authHeader, prefix))
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrTokenExpired):
				respondError(w, http.StatusUnauthorized, "Token has expired")
			default:
				respondError(w, http.StatusUnauthorized, "Invalid token")
			}
			return
		}

		user, err := h.resolveUser(r.Context(), claims)
		if err != nil {
			logger.Error("[Auth] failed to resolve user", logger.ErrorField(err))
			respondError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		if user == nil {
			respondError(w, http.StatusUnauthorized, "User not found")
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyUserID, user.ID)
		ctx = context.WithValue(ctx, contextKeyUsername, user.Username)
		ctx = context.WithValue(ctx, contextKeyIsArtist, user.IsArtist)

		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// resolveUser loads the user record behind a set of claims. The id is the
// primary key; the username/email snapshot is only consulted when the id
// does not resolve, to reconcile tokens minted by the previous encoding.
func (h *APIHandler) resolveUser(ctx context.Context, claims *auth.Claims) (*model.User, error) {
	if claims.UserID > 0 {
		user, err := h.userRepo.GetUserByID(ctx, claims.UserID)
		if err != nil || user != nil {
			return user, err
		}
	}
	if claims.Username != "" {
		user, err := h.userRepo.GetUserByUsername(ctx, claims.Username)
		if err != nil || user != nil {
			return user, err
		}
	}
	if claims.Email != "" {
		return h.userRepo.GetUserByEmail(ctx, claims.Email)
	}
	return nil, nil
}

// GetUserIDFromContext extracts the user ID from the request context.
func GetUserIDFromContext(ctx context.Context) (int64, error) {
	userID, ok := ctx.Value(contextKeyUserID).(int64)
	if !ok {
		return 0, fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

// GetUsernameFromContext extracts the username from the request context.
func GetUsernameFromContext(ctx context.Context) (string, error) {
	username, ok := ctx.Value(contextKeyUsername).(string)
	if !ok {
		return "", fmt.Errorf("username not found in context")
	}
	return username, nil
}
