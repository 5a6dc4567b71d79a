package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/url"
	"testing"

	"photofeed-backend/internal/broker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePost(t *testing.T) {
	env := setupTestServer(t)
	c := newClient(t)
	registerUser(t, env, c, "alice@example.com", "alice")

	createPost(t, env, c, "hello world")

	require.Len(t, env.posts.Posts, 1)
	post := env.posts.Posts[0]
	assert.Equal(t, "hello world", post.Caption)
	assert.Contains(t, post.ImageURL, "-photo.jpg")

	published := env.events.Published()
	require.Len(t, published, 1)
	assert.Equal(t, broker.EventPostCreated, published[0].Type)
}

func TestCreatePostMissingImage(t *testing.T) {
	env := setupTestServer(t)
	c := newClient(t)
	registerUser(t, env, c, "alice@example.com", "alice")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("caption", "no image"))
	require.NoError(t, mw.Close())

	resp, err := c.Post(env.server.URL+"/posts", mw.FormDataContentType(), &body)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "image is required")
	assert.Empty(t, env.posts.Posts)
}

func TestCreatePostMissingCaption(t *testing.T) {
	env := setupTestServer(t)
	c := newClient(t)
	registerUser(t, env, c, "alice@example.com", "alice")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("image", "photo.jpg")
	require.NoError(t, err)
	_, err = fw.Write([]byte("jpegbytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := c.Post(env.server.URL+"/posts", mw.FormDataContentType(), &body)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "caption is required")
}

func TestFeedShowsOwnAndFriendsPosts(t *testing.T) {
	env := setupTestServer(t)

	alice := newClient(t)
	bob := newClient(t)
	carol := newClient(t)
	registerUser(t, env, alice, "alice@example.com", "alice")
	registerUser(t, env, bob, "bob@example.com", "bob")
	registerUser(t, env, carol, "carol@example.com", "carol")

	createPost(t, env, alice, "by alice")
	createPost(t, env, bob, "by bob")
	createPost(t, env, carol, "by carol")

	// alice adds bob but not carol.
	resp := postForm(t, alice, env.server.URL+"/auth/add-friend", url.Values{"username": {"bob"}})
	require.Equal(t, http.StatusFound, resp.StatusCode)

	feed, err := alice.Get(env.server.URL + "/posts")
	require.NoError(t, err)
	defer feed.Body.Close()
	require.Equal(t, http.StatusOK, feed.StatusCode)

	body := readBody(t, feed)
	assert.Contains(t, body, "by alice")
	assert.Contains(t, body, "by bob")
	assert.NotContains(t, body, "by carol")
}

func TestEditPost(t *testing.T) {
	env := setupTestServer(t)
	c := newClient(t)
	registerUser(t, env, c, "alice@example.com", "alice")
	createPost(t, env, c, "before")

	orig := *env.posts.Posts[0]

	resp := postForm(t, c, env.server.URL+"/posts/edit/"+orig.ID, url.Values{
		"caption": {"after"},
	})
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/posts", resp.Header.Get("Location"))

	// Caption changed, everything else untouched.
	got := env.posts.Posts[0]
	assert.Equal(t, "after", got.Caption)
	assert.Equal(t, orig.ImageURL, got.ImageURL)
	assert.Equal(t, orig.UserID, got.UserID)
	assert.True(t, got.CreatedAt.Equal(orig.CreatedAt))
}

func TestEditUnknownPost(t *testing.T) {
	env := setupTestServer(t)
	c := newClient(t)
	registerUser(t, env, c, "alice@example.com", "alice")

	resp := postForm(t, c, env.server.URL+"/posts/edit/missing-id", url.Values{
		"caption": {"whatever"},
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "post not found")

	page, err := c.Get(env.server.URL + "/posts/edit/missing-id")
	require.NoError(t, err)
	defer page.Body.Close()
	assert.Equal(t, http.StatusNotFound, page.StatusCode)
}

func TestEditHasNoOwnershipCheck(t *testing.T) {
	env := setupTestServer(t)

	alice := newClient(t)
	bob := newClient(t)
	registerUser(t, env, alice, "alice@example.com", "alice")
	registerUser(t, env, bob, "bob@example.com", "bob")

	createPost(t, env, alice, "alice's post")
	post := env.posts.Posts[0]

	// bob edits alice's post; there is no ownership check.
	resp := postForm(t, bob, env.server.URL+"/posts/edit/"+post.ID, url.Values{
		"caption": {"edited by bob"},
	})
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "edited by bob", env.posts.Posts[0].Caption)
}

func TestDeletePostIsIdempotent(t *testing.T) {
	env := setupTestServer(t)
	c := newClient(t)
	registerUser(t, env, c, "alice@example.com", "alice")
	createPost(t, env, c, "doomed")

	post := env.posts.Posts[0]

	first := postForm(t, c, env.server.URL+"/posts/delete/"+post.ID, nil)
	assert.Equal(t, http.StatusFound, first.StatusCode)
	assert.Equal(t, "/posts", first.Header.Get("Location"))
	assert.Empty(t, env.posts.Posts)

	// Deleting the same id again still redirects.
	second := postForm(t, c, env.server.URL+"/posts/delete/"+post.ID, nil)
	assert.Equal(t, http.StatusFound, second.StatusCode)
	assert.Equal(t, "/posts", second.Header.Get("Location"))
}

func TestShowCreateRequiresAuthThenRenders(t *testing.T) {
	env := setupTestServer(t)
	c := newClient(t)
	registerUser(t, env, c, "alice@example.com", "alice")

	resp, err := c.Get(env.server.URL + "/posts/create")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "multipart/form-data")
}
