package services

import (
	"context"
	"fmt"

	"photofeed-backend/internal/models"
)

// FeedService computes the set of posts visible to a user: their own
// posts plus posts authored by anyone on their friend list, newest first.
type FeedService struct {
	users UserStore
	posts PostStore
}

// NewFeedService creates a new feed service
func NewFeedService(users UserStore, posts PostStore) *FeedService {
	return &FeedService{users: users, posts: posts}
}

// Feed resolves the feed for user. The friend list may contain duplicate
// entries; the author set is deduplicated so a post never appears twice.
// No pagination: the result is the complete visible set.
func (f *FeedService) Feed(ctx context.Context, user *models.User) (*models.Feed, error) {
	friends, err := f.users.ListFriends(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load friends: %w", err)
	}

	seen := map[string]bool{user.ID: true}
	authorIDs := []string{user.ID}
	for _, fr := range friends {
		if seen[fr.ID] {
			continue
		}
		seen[fr.ID] = true
		authorIDs = append(authorIDs, fr.ID)
	}

	posts, err := f.posts.ListByAuthors(ctx, authorIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load posts: %w", err)
	}

	return &models.Feed{
		User:    user,
		Friends: friends,
		Posts:   posts,
	}, nil
}
