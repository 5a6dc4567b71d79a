package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"photofeed-backend/internal/models"
)

// In-memory implementations of the store interfaces, used by tests in
// place of Postgres. Shapes and error behavior mirror the pgx
// repositories above.

// MemUserStore simulates UserRepository.
type MemUserStore struct {
	mu         sync.Mutex
	Users      map[string]*models.User
	FriendLog  []friendEntry // append-only, like the friends table
	ShouldFail bool
}

type friendEntry struct {
	UserID   string
	FriendID string
}

// NewMemUserStore initializes an empty in-memory user store.
func NewMemUserStore() *MemUserStore {
	return &MemUserStore{Users: make(map[string]*models.User)}
}

func (m *MemUserStore) Create(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ShouldFail {
		return errors.New("mem: create user failed")
	}
	for _, u := range m.Users {
		if u.Email == user.Email || u.Username == user.Username {
			return fmt.Errorf("user conflicts with an existing account: %w", ErrDuplicate)
		}
	}
	cp := *user
	m.Users[user.ID] = &cp
	return nil
}

func (m *MemUserStore) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ShouldFail {
		return false, errors.New("mem: exists check failed")
	}
	for _, u := range m.Users {
		if u.Email == email || u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemUserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ShouldFail {
		return nil, errors.New("mem: get user failed")
	}
	u, ok := m.Users[id]
	if !ok {
		return nil, fmt.Errorf("user not found: %w", ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (m *MemUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.findBy(func(u *models.User) bool { return u.Email == email })
}

func (m *MemUserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return m.findBy(func(u *models.User) bool { return u.Username == username })
}

func (m *MemUserStore) findBy(match func(*models.User) bool) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ShouldFail {
		return nil, errors.New("mem: get user failed")
	}
	for _, u := range m.Users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("user not found: %w", ErrNotFound)
}

func (m *MemUserStore) AddFriend(ctx context.Context, userID, friendID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ShouldFail {
		return errors.New("mem: add friend failed")
	}
	m.FriendLog = append(m.FriendLog, friendEntry{UserID: userID, FriendID: friendID})
	return nil
}

func (m *MemUserStore) ListFriends(ctx context.Context, userID string) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ShouldFail {
		return nil, errors.New("mem: list friends failed")
	}
	var friends []models.User
	for _, e := range m.FriendLog {
		if e.UserID != userID {
			continue
		}
		if u, ok := m.Users[e.FriendID]; ok {
			friends = append(friends, *u)
		}
	}
	return friends, nil
}

func (m *MemUserStore) ListFollowers(ctx context.Context, userID string) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ShouldFail {
		return nil, errors.New("mem: list followers failed")
	}
	seen := make(map[string]bool)
	var followers []models.User
	for _, e := range m.FriendLog {
		if e.FriendID != userID || seen[e.UserID] {
			continue
		}
		if u, ok := m.Users[e.UserID]; ok {
			seen[e.UserID] = true
			followers = append(followers, *u)
		}
	}
	return followers, nil
}

func (m *MemUserStore) UpdatePushToken(ctx context.Context, userID string, pushToken *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ShouldFail {
		return errors.New("mem: update push token failed")
	}
	if u, ok := m.Users[userID]; ok {
		u.PushToken = pushToken
	}
	return nil
}

// MemPostStore simulates PostRepository.
type MemPostStore struct {
	mu         sync.Mutex
	Posts      []*models.Post // insertion order preserved for tie-breaks
	Users      *MemUserStore  // author join source
	ShouldFail bool
}

// NewMemPostStore initializes an in-memory post store joining authors
// from users.
func NewMemPostStore(users *MemUserStore) *MemPostStore {
	return &MemPostStore{Users: users}
}

func (m *MemPostStore) Create(ctx context.Context, post *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ShouldFail {
		return errors.New("mem: create post failed")
	}
	cp := *post
	m.Posts = append(m.Posts, &cp)
	return nil
}

func (m *MemPostStore) GetByID(ctx context.Context, id string) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ShouldFail {
		return nil, errors.New("mem: get post failed")
	}
	for _, p := range m.Posts {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("post not found: %w", ErrNotFound)
}

func (m *MemPostStore) UpdateCaption(ctx context.Context, id, caption string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ShouldFail {
		return errors.New("mem: update post failed")
	}
	for _, p := range m.Posts {
		if p.ID == id {
			p.Caption = caption
			return nil
		}
	}
	return fmt.Errorf("post not found: %w", ErrNotFound)
}

func (m *MemPostStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ShouldFail {
		return errors.New("mem: delete post failed")
	}
	for i, p := range m.Posts {
		if p.ID == id {
			m.Posts = append(m.Posts[:i], m.Posts[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *MemPostStore) ListByAuthors(ctx context.Context, authorIDs []string) ([]models.FeedPost, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ShouldFail {
		return nil, errors.New("mem: list posts failed")
	}
	want := make(map[string]bool, len(authorIDs))
	for _, id := range authorIDs {
		want[id] = true
	}
	var out []models.FeedPost
	for _, p := range m.Posts {
		if !want[p.UserID] {
			continue
		}
		fp := models.FeedPost{Post: *p}
		if m.Users != nil {
			if u, ok := m.Users.Users[p.UserID]; ok {
				fp.Author = *u
			}
		}
		out = append(out, fp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// MemSessionStore simulates SessionRepository.
type MemSessionStore struct {
	mu         sync.Mutex
	Sessions   map[string]*models.Session
	ShouldFail bool
}

// NewMemSessionStore initializes an empty in-memory session store.
func NewMemSessionStore() *MemSessionStore {
	return &MemSessionStore{Sessions: make(map[string]*models.Session)}
}

func (m *MemSessionStore) Create(ctx context.Context, session *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ShouldFail {
		return errors.New("mem: create session failed")
	}
	cp := *session
	m.Sessions[session.Token] = &cp
	return nil
}

func (m *MemSessionStore) GetUserID(ctx context.Context, token string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ShouldFail {
		return "", errors.New("mem: get session failed")
	}
	s, ok := m.Sessions[token]
	if !ok || time.Now().After(s.ExpiresAt) {
		return "", fmt.Errorf("session not found: %w", ErrNotFound)
	}
	return s.UserID, nil
}

func (m *MemSessionStore) Delete(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ShouldFail {
		return errors.New("mem: delete session failed")
	}
	delete(m.Sessions, token)
	return nil
}
