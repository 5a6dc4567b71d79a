package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"photofeed-backend/internal/broker"
	"photofeed-backend/internal/models"
	"photofeed-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	// ErrAccountExists is returned when registering with an email or
	// username that is already taken.
	ErrAccountExists = errors.New("account already exists")
	// ErrNoSuchAccount is returned when logging in with an unknown email.
	ErrNoSuchAccount = errors.New("no such account")
	// ErrWrongPassword is returned when the password does not match.
	ErrWrongPassword = errors.New("wrong password")
	// ErrFriendNotFound is returned when the friend username is unknown.
	ErrFriendNotFound = errors.New("friend not found")
)

// UserService handles account and friend business logic. The event
// writer is optional; nil disables activity events.
type UserService struct {
	users  UserStore
	events broker.EventWriter
}

// NewUserService creates a new user service
func NewUserService(users UserStore, events broker.EventWriter) *UserService {
	return &UserService{users: users, events: events}
}

// Register creates a new account. The password is persisted exactly as
// submitted and login compares by plain equality.
func (s *UserService) Register(ctx context.Context, email, username, password string) (*models.User, error) {
	exists, err := s.users.ExistsByEmailOrUsername(ctx, email, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing account: %w", err)
	}
	if exists {
		return nil, ErrAccountExists
	}

	user := &models.User{
		ID:        uuid.New().String(),
		Email:     email,
		Username:  username,
		Password:  password,
		CreatedAt: time.Now(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		// The existence pre-check races with concurrent registration; the
		// unique constraints are the backstop.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAccountExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login authenticates by email and plaintext password equality. The two
// failure modes stay distinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoSuchAccount
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	if user.Password != password {
		return nil, ErrWrongPassword
	}

	return user, nil
}

// GetByID retrieves a user by id.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

// AddFriend appends the user named username to userID's friend list.
// There is no duplicate check and no check that the target differs from
// the acting user.
func (s *UserService) AddFriend(ctx context.Context, userID, username string) (*models.User, error) {
	friend, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrFriendNotFound
		}
		return nil, fmt.Errorf("failed to look up friend: %w", err)
	}

	if err := s.users.AddFriend(ctx, userID, friend.ID); err != nil {
		return nil, fmt.Errorf("failed to add friend: %w", err)
	}

	if s.events != nil {
		event := broker.Event{
			Type:     broker.EventFriendAdded,
			UserID:   userID,
			FriendID: friend.ID,
			At:       time.Now(),
		}
		if err := s.events.Publish(ctx, event); err != nil {
			// Event delivery never fails the request.
			log.Error().Err(err).Str("type", event.Type).Msg("Failed to publish activity event")
		}
	}

	return friend, nil
}

// UpdatePushToken stores or clears the APNs device token for a user.
func (s *UserService) UpdatePushToken(ctx context.Context, userID string, pushToken *string) error {
	return s.users.UpdatePushToken(ctx, userID, pushToken)
}
