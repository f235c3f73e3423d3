package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"brewdayService/internal/auth"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authRepo auth.AuthRepository
	jwt      *auth.JWTManager
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authRepo auth.AuthRepository, jwt *auth.JWTManager) *AuthHandler {
	return &AuthHandler{
		authRepo: authRepo,
		jwt:      jwt,
	}
}

// RegisterUser handles user registration
func (h *AuthHandler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req auth.NewUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON", "Failed to parse request body")
		return
	}

	user, err := h.authRepo.CreateUser(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserExists):
			writeError(w, http.StatusConflict, "User already exists", err.Error())
		case errors.Is(err, auth.ErrValidation):
			writeError(w, http.StatusBadRequest, "Validation error", err.Error())
		default:
			log.Printf("Failed to create user: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to create user", "Internal server error")
		}
		return
	}

	response := auth.UserRegistrationResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	}
	if h.jwt.Enabled() {
		token, err := h.jwt.GenerateJWT(user)
		if err != nil {
			log.Printf("Failed to generate JWT token: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to generate token", "Internal server error")
			return
		}
		response.Token = token
	}

	writeJSON(w, http.StatusCreated, response)
}

// LoginUser handles user authentication
func (h *AuthHandler) LoginUser(w http.ResponseWriter, r *http.Request) {
	var creds auth.UserLoginCredentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON", "Failed to parse request body")
		return
	}

	if strings.TrimSpace(creds.Username) == "" {
		writeError(w, http.StatusBadRequest, "Validation error", "Username is required")
		return
	}
	if strings.TrimSpace(creds.Password) == "" {
		writeError(w, http.StatusBadRequest, "Validation error", "Password is required")
		return
	}

	if !h.jwt.Enabled() {
		writeError(w, http.StatusServiceUnavailable, "Authentication disabled", "No JWT secret configured")
		return
	}

	user, err := h.authRepo.AuthenticateUser(r.Context(), &creds)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "Invalid credentials", "Username or password is incorrect")
			return
		}
		log.Printf("Authentication error: %v", err)
		writeError(w, http.StatusInternalServerError, "Authentication failed", "Internal server error")
		return
	}

	token, err := h.jwt.GenerateJWT(user)
	if err != nil {
		log.Printf("Failed to generate JWT token: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to generate token", "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, auth.UserLoginResponse{Token: token})
}

// GetProfile returns the signed-in user
func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	_, username, ok := auth.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized", "User information not found in context")
		return
	}

	user, err := h.authRepo.GetUserInfo(r.Context(), username)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "Not found", err.Error())
			return
		}
		log.Printf("Failed to get user info: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to get user info", "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, user)
}
