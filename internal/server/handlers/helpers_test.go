package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iudanet/blogauth/internal/auth"
	"github.com/iudanet/blogauth/internal/crypto"
	"github.com/iudanet/blogauth/internal/models"
	"github.com/iudanet/blogauth/internal/posts"
	"github.com/iudanet/blogauth/internal/server/storage/sqlite"
	"github.com/iudanet/blogauth/pkg/api"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// testEnv wires handlers to real services over an in-memory database
type testEnv struct {
	store *sqlite.Storage
	auth  *auth.Service
	posts *posts.Service
	admin *models.User
	alice *models.User
	bob   *models.User
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	store, err := sqlite.New(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	env := &testEnv{
		store: store,
		auth:  auth.NewService(setupTestLogger(), store, store),
		posts: posts.NewService(setupTestLogger(), store),
	}

	env.admin = env.createUser(t, "admin", "admin123", models.RoleAdmin)
	env.alice = env.createUser(t, "alice", "alicepass", models.RoleUser)
	env.bob = env.createUser(t, "bob", "bobpass1", models.RoleUser)

	return env
}

func (e *testEnv) createUser(t *testing.T, username, password string, role models.Role) *models.User {
	t.Helper()
	hash, err := crypto.HashPassword(password)
	require.NoError(t, err)

	user := &models.User{Username: username, Role: role, PasswordHash: &hash}
	require.NoError(t, e.store.CreateUser(context.Background(), user))
	return user
}

func (e *testEnv) createPost(t *testing.T, owner *models.User, title string, private bool, password *string) *models.Post {
	t.Helper()
	post, err := e.posts.Create(context.Background(), owner, posts.Input{
		Title:           title,
		Description:     "description",
		Content:         "content",
		IsPrivate:       private,
		PrivatePassword: password,
	})
	require.NoError(t, err)
	return post
}

func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

// asUser attaches user to the request context the way the session
// middleware does
func asUser(r *http.Request, user *models.User) *http.Request {
	if user == nil {
		return r
	}
	return r.WithContext(ContextWithUser(r.Context(), user))
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) api.ErrorResponse {
	t.Helper()
	var resp api.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func findCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func strPtr(s string) *string { return &s }
