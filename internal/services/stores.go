package services

import (
	"context"

	"photofeed-backend/internal/models"
)

// Store interfaces abstract the Postgres repositories so services can be
// exercised against the in-memory implementations in tests.

// UserStore is the persistence surface for users and the friend relation.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	AddFriend(ctx context.Context, userID, friendID string) error
	ListFriends(ctx context.Context, userID string) ([]models.User, error)
	ListFollowers(ctx context.Context, userID string) ([]models.User, error)
	UpdatePushToken(ctx context.Context, userID string, pushToken *string) error
}

// PostStore is the persistence surface for posts.
type PostStore interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	UpdateCaption(ctx context.Context, id, caption string) error
	Delete(ctx context.Context, id string) error
	ListByAuthors(ctx context.Context, authorIDs []string) ([]models.FeedPost, error)
}

// SessionStore is the persistence surface for sessions.
type SessionStore interface {
	Create(ctx context.Context, session *models.Session) error
	GetUserID(ctx context.Context, token string) (string, error)
	Delete(ctx context.Context, token string) error
}
