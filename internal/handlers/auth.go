package handlers

import (
	"errors"
	"net/http"

	"photofeed-backend/internal/middleware"
	"photofeed-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// AuthHandler handles registration, login, logout and friend management.
type AuthHandler struct {
	userService    *services.UserService
	sessionService *services.SessionService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(userService *services.UserService, sessionService *services.SessionService) *AuthHandler {
	return &AuthHandler{
		userService:    userService,
		sessionService: sessionService,
	}
}

// ShowRegister handles GET /auth/register
func (h *AuthHandler) ShowRegister(w http.ResponseWriter, r *http.Request) {
	renderPage(w, "register.html", nil)
}

// ShowLogin handles GET /auth/login
func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	renderPage(w, "login.html", nil)
}

// ShowAddFriend handles GET /auth/add-friend
func (h *AuthHandler) ShowAddFriend(w http.ResponseWriter, r *http.Request) {
	renderPage(w, "add_friend.html", nil)
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	form := formValues(r, "email", "username", "password")

	user, err := h.userService.Register(ctx, form["email"], form["username"], form["password"])
	if err != nil {
		if errors.Is(err, services.ErrAccountExists) {
			respondError(w, "account already exists", http.StatusBadRequest)
			return
		}
		log.Error().Err(err).Msg("Failed to register user")
		respondError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	log.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("User registered")

	h.startSession(w, r, user.ID)
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	form := formValues(r, "email", "password")

	user, err := h.userService.Login(ctx, form["email"], form["password"])
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoSuchAccount):
			respondError(w, "no such account", http.StatusBadRequest)
		case errors.Is(err, services.ErrWrongPassword):
			respondError(w, "wrong password", http.StatusBadRequest)
		default:
			log.Error().Err(err).Msg("Failed to log in user")
			respondError(w, "internal server error", http.StatusInternalServerError)
		}
		return
	}

	log.Info().Str("user_id", user.ID).Msg("User logged in")

	h.startSession(w, r, user.ID)
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookie); err == nil {
		if err := h.sessionService.Destroy(r.Context(), cookie.Value); err != nil {
			log.Error().Err(err).Msg("Failed to destroy session")
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	http.Redirect(w, r, middleware.LoginPath, http.StatusFound)
}

// AddFriend handles POST /auth/add-friend
func (h *AuthHandler) AddFriend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.GetUser(ctx)
	form := formValues(r, "username")

	friend, err := h.userService.AddFriend(ctx, user.ID, form["username"])
	if err != nil {
		if errors.Is(err, services.ErrFriendNotFound) {
			respondError(w, "friend not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to add friend")
		respondError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	log.Info().
		Str("user_id", user.ID).
		Str("friend_id", friend.ID).
		Msg("Friend added")

	http.Redirect(w, r, "/posts", http.StatusFound)
}

// UpdatePushToken handles POST /auth/push-token
func (h *AuthHandler) UpdatePushToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.GetUser(ctx)
	form := formValues(r, "push_token")

	var token *string
	if form["push_token"] != "" {
		v := form["push_token"]
		token = &v
	}

	if err := h.userService.UpdatePushToken(ctx, user.ID, token); err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to update push token")
		respondError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// startSession issues a session for userID, sets the cookie and redirects
// to the feed.
func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, userID string) {
	cookieValue, err := h.sessionService.Issue(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to create session")
		respondError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    cookieValue,
		Path:     "/",
		HttpOnly: true,
	})
	http.Redirect(w, r, "/posts", http.StatusFound)
}
