package services

import (
	"context"
	"fmt"
	"time"

	"photofeed-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionService issues and resolves login sessions. The session itself is
// an opaque token persisted server-side; what the client carries is that
// token wrapped in an HS256 JWT signed with the session secret, so a
// cookie that was tampered with fails before the store is ever consulted.
type SessionService struct {
	sessions SessionStore
	secret   string
	ttl      time.Duration
}

// NewSessionService creates a new session service
func NewSessionService(sessions SessionStore, secret string, ttl time.Duration) *SessionService {
	return &SessionService{
		sessions: sessions,
		secret:   secret,
		ttl:      ttl,
	}
}

// Issue creates a session for userID and returns the signed cookie value.
func (s *SessionService) Issue(ctx context.Context, userID string) (string, error) {
	now := time.Now()
	session := &models.Session{
		Token:     uuid.New().String(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	signed, err := s.sign(session.Token)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Resolve maps a signed cookie value back to a user id.
func (s *SessionService) Resolve(ctx context.Context, cookieValue string) (string, error) {
	token, err := s.verify(cookieValue)
	if err != nil {
		return "", fmt.Errorf("invalid session cookie: %w", err)
	}

	userID, err := s.sessions.GetUserID(ctx, token)
	if err != nil {
		return "", fmt.Errorf("failed to resolve session: %w", err)
	}
	return userID, nil
}

// Destroy removes the session behind a signed cookie value. An already
// invalid or unknown cookie destroys nothing and is not an error.
func (s *SessionService) Destroy(ctx context.Context, cookieValue string) error {
	token, err := s.verify(cookieValue)
	if err != nil {
		return nil
	}
	return s.sessions.Delete(ctx, token)
}

func (s *SessionService) sign(token string) (string, error) {
	claims := jwt.MapClaims{
		"sid": token,
		"iat": time.Now().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.secret))
}

func (s *SessionService) verify(cookieValue string) (string, error) {
	token, err := jwt.Parse(cookieValue, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse cookie: %w", err)
	}
	if !token.Valid {
		return "", fmt.Errorf("invalid cookie")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid cookie claims")
	}

	sid, ok := claims["sid"].(string)
	if !ok {
		return "", fmt.Errorf("sid not found in cookie")
	}
	return sid, nil
}
