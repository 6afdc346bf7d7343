package controllers

import (
	"log/slog"
	"net/http"

	"quillpost/app/services"
)

// AuthController handles registration, login and the current-user lookup.
type AuthController struct {
	authService *services.AuthService
	logger      *slog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService *services.AuthService, logger *slog.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		logger:      ensureLogger(logger),
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account and returns {user, token}.
func (ac *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		sendError(w, r, ac.logger, err)
		return
	}

	session, err := ac.authService.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		sendError(w, r, ac.logger, err)
		return
	}
	sendJSON(w, http.StatusCreated, session)
}

// Login exchanges credentials for {user, token}.
func (ac *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		sendError(w, r, ac.logger, err)
		return
	}

	session, err := ac.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		sendError(w, r, ac.logger, err)
		return
	}
	sendJSON(w, http.StatusOK, session)
}

// Me returns the authenticated user.
func (ac *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		sendError(w, r, ac.logger, err)
		return
	}

	user, err := ac.authService.CurrentUser(r.Context(), userID)
	if err != nil {
		sendError(w, r, ac.logger, err)
		return
	}
	sendJSON(w, http.StatusOK, user)
}
