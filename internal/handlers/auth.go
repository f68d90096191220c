package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/sessions"

	"southcoast-promotion/internal/middleware"
	"southcoast-promotion/internal/models"
	"southcoast-promotion/internal/services"
)

// AuthHandler handles registration, login and logout
type AuthHandler struct {
	auth  *services.AuthService
	store sessions.Store
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth *services.AuthService, store sessions.Store) *AuthHandler {
	return &AuthHandler{auth: auth, store: store}
}

// Register creates a customer account and logs it in
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.UserCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.auth.Register(&req)
	if err != nil {
		if errors.Is(err, models.ErrDuplicateEntry) {
			respondError(w, http.StatusConflict, "an account with that email already exists")
			return
		}
		respondServiceError(w, err)
		return
	}

	if err := h.logIn(w, r, user); err != nil {
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies credentials and starts a session
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.auth.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			respondError(w, http.StatusUnauthorized, err.Error())
			return
		}
		respondServiceError(w, err)
		return
	}

	if err := h.logIn(w, r, user); err != nil {
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// Logout ends the session
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, err := h.store.Get(r, middleware.SessionName)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "session error")
		return
	}

	session.Options.MaxAge = -1
	if err := session.Save(r, w); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to save session")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// Me returns the logged-in user
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "not logged in")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) logIn(w http.ResponseWriter, r *http.Request, user *models.User) error {
	session, err := h.store.Get(r, middleware.SessionName)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "session error")
		return err
	}

	session.Values["user_id"] = user.ID
	if err := session.Save(r, w); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to save session")
		return err
	}
	return nil
}
