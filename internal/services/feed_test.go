package services

import (
	"context"
	"testing"
	"time"

	"photofeed-backend/internal/models"
	"photofeed-backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, users *repository.MemUserStore, id, username string) *models.User {
	t.Helper()
	u := &models.User{
		ID:        id,
		Email:     username + "@example.com",
		Username:  username,
		Password:  "pw",
		CreatedAt: time.Now(),
	}
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func seedPost(t *testing.T, posts *repository.MemPostStore, id, userID string, createdAt time.Time) {
	t.Helper()
	require.NoError(t, posts.Create(context.Background(), &models.Post{
		ID:        id,
		Caption:   "caption " + id,
		ImageURL:  "/uploads/" + id + ".jpg",
		UserID:    userID,
		CreatedAt: createdAt,
	}))
}

func TestFeedVisibilityAndOrder(t *testing.T) {
	ctx := context.Background()
	users := repository.NewMemUserStore()
	posts := repository.NewMemPostStore(users)
	svc := NewFeedService(users, posts)

	u := seedUser(t, users, "u", "u")
	f1 := seedUser(t, users, "f1", "f1")
	f2 := seedUser(t, users, "f2", "f2")
	stranger := seedUser(t, users, "s", "stranger")

	require.NoError(t, users.AddFriend(ctx, u.ID, f1.ID))
	require.NoError(t, users.AddFriend(ctx, u.ID, f2.ID))

	base := time.Now()
	seedPost(t, posts, "p1", u.ID, base.Add(-2*time.Hour))
	seedPost(t, posts, "p2", f1.ID, base.Add(-1*time.Hour))
	seedPost(t, posts, "p3", stranger.ID, base)

	feed, err := svc.Feed(ctx, u)
	require.NoError(t, err)

	// Own and friends' posts only, newest first; the stranger's newer
	// post is excluded.
	require.Len(t, feed.Posts, 2)
	assert.Equal(t, "p2", feed.Posts[0].ID)
	assert.Equal(t, "p1", feed.Posts[1].ID)

	// Authors are joined for display.
	assert.Equal(t, "f1", feed.Posts[0].Author.Username)
	assert.Equal(t, "u", feed.Posts[1].Author.Username)

	// Friends come back as full records, in order of addition.
	require.Len(t, feed.Friends, 2)
	assert.Equal(t, "f1", feed.Friends[0].Username)
	assert.Equal(t, "f2", feed.Friends[1].Username)

	assert.Equal(t, u.ID, feed.User.ID)
}

func TestFeedEmptyWithNoPosts(t *testing.T) {
	ctx := context.Background()
	users := repository.NewMemUserStore()
	posts := repository.NewMemPostStore(users)
	svc := NewFeedService(users, posts)

	u := seedUser(t, users, "u", "u")

	feed, err := svc.Feed(ctx, u)
	require.NoError(t, err)
	assert.Empty(t, feed.Posts)
	assert.Empty(t, feed.Friends)
}

func TestFeedDuplicateFriendEntriesDoNotDuplicatePosts(t *testing.T) {
	ctx := context.Background()
	users := repository.NewMemUserStore()
	posts := repository.NewMemPostStore(users)
	svc := NewFeedService(users, posts)

	u := seedUser(t, users, "u", "u")
	f1 := seedUser(t, users, "f1", "f1")

	// The friend list tolerates duplicates and self entries.
	require.NoError(t, users.AddFriend(ctx, u.ID, f1.ID))
	require.NoError(t, users.AddFriend(ctx, u.ID, f1.ID))
	require.NoError(t, users.AddFriend(ctx, u.ID, u.ID))

	seedPost(t, posts, "p1", f1.ID, time.Now())

	feed, err := svc.Feed(ctx, u)
	require.NoError(t, err)

	require.Len(t, feed.Posts, 1)
	assert.Len(t, feed.Friends, 3)
}
