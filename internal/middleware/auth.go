package middleware

import (
	"context"
	"net/http"

	"photofeed-backend/internal/models"
	"photofeed-backend/internal/services"

	"github.com/rs/zerolog/log"
)

type contextKey string

const userKey contextKey = "user"

// SessionCookie is the name of the session cookie.
const SessionCookie = "session"

// LoginPath is where unauthenticated requests are sent.
const LoginPath = "/auth/login"

// RequireUser resolves the session cookie to a full user record and
// attaches it to the request context. Every failure mode (missing cookie,
// bad signature, unknown or expired session, missing user, datastore
// error) redirects to the login page rather than returning an HTTP error.
func RequireUser(sessions *services.SessionService, users *services.UserService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil {
				http.Redirect(w, r, LoginPath, http.StatusFound)
				return
			}

			userID, err := sessions.Resolve(r.Context(), cookie.Value)
			if err != nil {
				http.Redirect(w, r, LoginPath, http.StatusFound)
				return
			}

			user, err := users.GetByID(r.Context(), userID)
			if err != nil {
				log.Debug().Err(err).Msg("Session resolved to no user")
				http.Redirect(w, r, LoginPath, http.StatusFound)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUser extracts the authenticated user from the context. It returns
// nil outside of RequireUser.
func GetUser(ctx context.Context) *models.User {
	user, ok := ctx.Value(userKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}
