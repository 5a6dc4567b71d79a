package handlers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"photofeed-backend/internal/broker"
	"photofeed-backend/internal/middleware"
	"photofeed-backend/internal/repository"
	"photofeed-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

// fakeMedia stores uploads in memory.
type fakeMedia struct {
	saved map[string][]byte
}

func (f *fakeMedia) Save(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	if f.saved == nil {
		f.saved = make(map[string][]byte)
	}
	f.saved[name] = data
	return "/uploads/" + name, nil
}

// testEnv is a full HTTP stack over in-memory stores.
type testEnv struct {
	server *httptest.Server
	users  *repository.MemUserStore
	posts  *repository.MemPostStore
	events *broker.MockWriter
}

// setupTestServer wires the handlers onto the same routes as the serve
// command, backed by in-memory stores.
func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	users := repository.NewMemUserStore()
	posts := repository.NewMemPostStore(users)
	sessions := repository.NewMemSessionStore()
	events := &broker.MockWriter{}

	hub := services.NewWSHub()
	userService := services.NewUserService(users, events)
	sessionService := services.NewSessionService(sessions, "test-secret", time.Hour)
	feedService := services.NewFeedService(users, posts)
	postService := services.NewPostService(posts, users, &fakeMedia{}, events, hub, nil)

	authHandler := NewAuthHandler(userService, sessionService)
	postsHandler := NewPostsHandler(feedService, postService)
	wsHandler := NewWebSocketHandler(hub, sessionService)

	requireUser := middleware.RequireUser(sessionService, userService)

	r := chi.NewRouter()
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, middleware.LoginPath, http.StatusFound)
	})
	r.Route("/auth", func(r chi.Router) {
		r.Get("/register", authHandler.ShowRegister)
		r.Get("/login", authHandler.ShowLogin)
		r.Get("/add-friend", authHandler.ShowAddFriend)
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Group(func(r chi.Router) {
			r.Use(requireUser)
			r.Post("/add-friend", authHandler.AddFriend)
			r.Post("/logout", authHandler.Logout)
			r.Post("/push-token", authHandler.UpdatePushToken)
		})
	})
	r.Route("/posts", func(r chi.Router) {
		r.Use(requireUser)
		r.Get("/", postsHandler.Feed)
		r.Get("/create", postsHandler.ShowCreate)
		r.Post("/", postsHandler.Create)
		r.Get("/edit/{id}", postsHandler.ShowEdit)
		r.Post("/edit/{id}", postsHandler.Edit)
		r.Post("/delete/{id}", postsHandler.Delete)
	})
	r.Get("/ws", wsHandler.HandleWebSocket)

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)

	return &testEnv{server: ts, users: users, posts: posts, events: events}
}

// newClient returns a cookie-carrying client that does not follow
// redirects, so tests can assert on them.
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func postForm(t *testing.T, c *http.Client, url string, form url.Values) *http.Response {
	t.Helper()
	resp, err := c.Post(url, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// registerUser registers through the HTTP surface and leaves the client
// logged in.
func registerUser(t *testing.T, env *testEnv, c *http.Client, email, username string) {
	t.Helper()
	resp := postForm(t, c, env.server.URL+"/auth/register", url.Values{
		"email":    {email},
		"username": {username},
		"password": {"pw"},
	})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/posts", resp.Header.Get("Location"))
}

// createPost uploads a post through the multipart endpoint.
func createPost(t *testing.T, env *testEnv, c *http.Client, caption string) {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("image", "photo.jpg")
	require.NoError(t, err)
	_, err = fw.Write([]byte("jpegbytes"))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("caption", caption))
	require.NoError(t, mw.Close())

	resp, err := c.Post(env.server.URL+"/posts", mw.FormDataContentType(), &body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}
