package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"photofeed-backend/internal/broker"
	"photofeed-backend/internal/models"
	"photofeed-backend/internal/storage"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// PostService handles post business logic: storing the image, persisting
// the post, and fanning the event out to the broker, connected followers
// and push-registered devices. Broker, hub and pusher are optional; a nil
// value disables that channel.
type PostService struct {
	posts  PostStore
	users  UserStore
	media  storage.MediaStore
	events broker.EventWriter
	hub    *WSHub
	pusher Pusher
}

// NewPostService creates a new post service
func NewPostService(
	posts PostStore,
	users UserStore,
	media storage.MediaStore,
	events broker.EventWriter,
	hub *WSHub,
	pusher Pusher,
) *PostService {
	return &PostService{
		posts:  posts,
		users:  users,
		media:  media,
		events: events,
		hub:    hub,
		pusher: pusher,
	}
}

// Create stores the uploaded image, creates the post owned by userID and
// notifies followers.
func (s *PostService) Create(ctx context.Context, user *models.User, caption, filename, contentType string, image io.Reader) (*models.Post, error) {
	now := time.Now()

	imageURL, err := s.media.Save(ctx, storage.ObjectName(now, filename), contentType, image)
	if err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	post := &models.Post{
		ID:        uuid.New().String(),
		Caption:   caption,
		ImageURL:  imageURL,
		UserID:    user.ID,
		CreatedAt: now,
	}

	if err := s.posts.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	s.publish(ctx, broker.Event{
		Type:   broker.EventPostCreated,
		UserID: user.ID,
		PostID: post.ID,
		At:     now,
	})
	s.notifyFollowers(ctx, user, post)

	return post, nil
}

// Get retrieves a post by id.
func (s *PostService) Get(ctx context.Context, id string) (*models.Post, error) {
	return s.posts.GetByID(ctx, id)
}

// EditCaption overwrites the caption of the post with the given id. Every
// other field is left untouched. There is no ownership check: any
// authenticated user may edit any post.
func (s *PostService) EditCaption(ctx context.Context, id, caption string) error {
	if err := s.posts.UpdateCaption(ctx, id, caption); err != nil {
		return err
	}

	s.publish(ctx, broker.Event{
		Type:   broker.EventPostEdited,
		PostID: id,
		At:     time.Now(),
	})
	return nil
}

// Delete removes the post with the given id. Unknown ids are not an
// error, and there is no ownership check.
func (s *PostService) Delete(ctx context.Context, id string) error {
	if err := s.posts.Delete(ctx, id); err != nil {
		return err
	}

	s.publish(ctx, broker.Event{
		Type:   broker.EventPostDeleted,
		PostID: id,
		At:     time.Now(),
	})
	return nil
}

func (s *PostService) publish(ctx context.Context, event broker.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		// Event delivery never fails the request.
		log.Error().Err(err).Str("type", event.Type).Msg("Failed to publish activity event")
	}
}

func (s *PostService) notifyFollowers(ctx context.Context, author *models.User, post *models.Post) {
	if s.hub == nil && s.pusher == nil {
		return
	}

	followers, err := s.users.ListFollowers(ctx, author.ID)
	if err != nil {
		log.Error().Err(err).Str("user_id", author.ID).Msg("Failed to list followers for notification")
		return
	}

	if s.hub != nil {
		ids := make([]string, 0, len(followers))
		for _, f := range followers {
			ids = append(ids, f.ID)
		}
		s.hub.NotifyNewPost(ids, post, author)
	}

	if s.pusher != nil {
		for _, f := range followers {
			if f.PushToken == nil || *f.PushToken == "" {
				continue
			}
			if err := s.pusher.PushNewPost(*f.PushToken, author.Username, post.Caption); err != nil {
				log.Error().Err(err).Str("user_id", f.ID).Msg("Failed to send push notification")
			}
		}
	}
}
