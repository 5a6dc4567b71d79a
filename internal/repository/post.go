package repository

import (
	"context"
	"errors"
	"fmt"

	"photofeed-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostRepository handles database operations for posts
type PostRepository struct {
	db *pgxpool.Pool
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *pgxpool.Pool) *PostRepository {
	return &PostRepository{db: db}
}

// Create creates a new post
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	query := `
		INSERT INTO posts (id, caption, image_url, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, query,
		post.ID, post.Caption, post.ImageURL, post.UserID, post.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

// GetByID retrieves a post by ID
func (r *PostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	query := `
		SELECT id, caption, image_url, user_id, created_at
		FROM posts
		WHERE id = $1
	`
	var post models.Post
	err := r.db.QueryRow(ctx, query, id).Scan(
		&post.ID, &post.Caption, &post.ImageURL, &post.UserID, &post.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("post not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return &post, nil
}

// UpdateCaption overwrites the caption of a post, leaving every other
// field untouched.
func (r *PostRepository) UpdateCaption(ctx context.Context, id, caption string) error {
	query := `UPDATE posts SET caption = $1 WHERE id = $2`
	result, err := r.db.Exec(ctx, query, caption, id)
	if err != nil {
		return fmt.Errorf("failed to update post caption: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("post not found: %w", ErrNotFound)
	}
	return nil
}

// Delete deletes a post by ID. Deleting an id that does not exist is not
// an error; delete is idempotent from the caller's view.
func (r *PostRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM posts WHERE id = $1`
	if _, err := r.db.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	return nil
}

// ListByAuthors retrieves all posts authored by any of the given users,
// newest first, each joined with its author record. No limit: the feed is
// unbounded.
func (r *PostRepository) ListByAuthors(ctx context.Context, authorIDs []string) ([]models.FeedPost, error) {
	if len(authorIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT p.id, p.caption, p.image_url, p.user_id, p.created_at,
		       u.id, u.email, u.username, u.password, u.push_token, u.created_at
		FROM posts p
		JOIN users u ON u.id = p.user_id
		WHERE p.user_id = ANY($1)
		ORDER BY p.created_at DESC, p.id
	`
	rows, err := r.db.Query(ctx, query, authorIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	var posts []models.FeedPost
	for rows.Next() {
		var fp models.FeedPost
		err := rows.Scan(
			&fp.ID, &fp.Caption, &fp.ImageURL, &fp.UserID, &fp.CreatedAt,
			&fp.Author.ID, &fp.Author.Email, &fp.Author.Username,
			&fp.Author.Password, &fp.Author.PushToken, &fp.Author.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, fp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posts: %w", err)
	}

	return posts, nil
}
