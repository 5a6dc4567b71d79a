package handlers

import (
	"errors"
	"net/http"

	"photofeed-backend/internal/middleware"
	"photofeed-backend/internal/repository"
	"photofeed-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// PostsHandler handles the feed page and post mutations.
type PostsHandler struct {
	feedService *services.FeedService
	postService *services.PostService
}

// NewPostsHandler creates a new posts handler
func NewPostsHandler(feedService *services.FeedService, postService *services.PostService) *PostsHandler {
	return &PostsHandler{
		feedService: feedService,
		postService: postService,
	}
}

// Feed handles GET /posts
func (h *PostsHandler) Feed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.GetUser(ctx)

	feed, err := h.feedService.Feed(ctx, user)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to resolve feed")
		respondError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	renderPage(w, "feed.html", feed)
}

// ShowCreate handles GET /posts/create
func (h *PostsHandler) ShowCreate(w http.ResponseWriter, r *http.Request) {
	renderPage(w, "create_post.html", nil)
}

// Create handles POST /posts (multipart: image + caption)
func (h *PostsHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.GetUser(ctx)

	file, header, err := r.FormFile("image")
	if err != nil {
		respondError(w, "image is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	caption := r.FormValue("caption")
	if caption == "" {
		respondError(w, "caption is required", http.StatusBadRequest)
		return
	}

	post, err := h.postService.Create(ctx, user, caption, header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to create post")
		respondError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	log.Info().
		Str("user_id", user.ID).
		Str("post_id", post.ID).
		Msg("Post created")

	http.Redirect(w, r, "/posts", http.StatusFound)
}

// ShowEdit handles GET /posts/edit/{id}
func (h *PostsHandler) ShowEdit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	post, err := h.postService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, "post not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("post_id", id).Msg("Failed to load post")
		respondError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	renderPage(w, "edit_post.html", post)
}

// Edit handles POST /posts/edit/{id}. Only the caption changes; there is
// no ownership check.
func (h *PostsHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	form := formValues(r, "caption")

	err := h.postService.EditCaption(r.Context(), id, form["caption"])
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, "post not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("post_id", id).Msg("Failed to edit post")
		respondError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/posts", http.StatusFound)
}

// Delete handles POST /posts/delete/{id}. Delete is unconditional and
// idempotent: unknown ids still redirect to the feed.
func (h *PostsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.postService.Delete(r.Context(), id); err != nil {
		log.Error().Err(err).Str("post_id", id).Msg("Failed to delete post")
		respondError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/posts", http.StatusFound)
}
