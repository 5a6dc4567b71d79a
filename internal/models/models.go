package models

import "time"

// User represents an account in the system.
//
// Password is stored exactly as submitted, not hashed; login compares by
// equality. A known security gap.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Password  string    `json:"-"`
	PushToken *string   `json:"push_token,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Post represents a single image post owned by one user.
type Post struct {
	ID        string    `json:"id"`
	Caption   string    `json:"caption"`
	ImageURL  string    `json:"image_url"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// FeedPost is a post joined with its author record for display.
type FeedPost struct {
	Post
	Author User `json:"author"`
}

// Feed is everything the feed page needs: the viewer, their friends as
// full records, and the visible posts newest first.
type Feed struct {
	User    *User      `json:"user"`
	Friends []User     `json:"friends"`
	Posts   []FeedPost `json:"posts"`
}

// Session maps an opaque token to a user. Rows are created on register and
// login, deleted on logout, and ignored once past ExpiresAt.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
