package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/blogauth/internal/models"
	"github.com/iudanet/blogauth/pkg/api"
)

func TestAuthHandler_Login(t *testing.T) {
	env := setupTestEnv(t)
	handler := NewAuthHandler(setupTestLogger(), env.auth, CookieConfig{})

	req := httptest.NewRequest(http.MethodPost, "/api/login",
		jsonBody(t, api.LoginRequest{Username: "admin", Password: "admin123"}))
	w := httptest.NewRecorder()

	handler.Login(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp api.LoginResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "admin", resp.User.Username)
	assert.Equal(t, "admin", resp.User.Role)
	assert.Equal(t, env.admin.ID, resp.User.ID)

	raw := w.Header().Get("Set-Cookie")
	assert.Contains(t, raw, "Max-Age=604800")
	assert.Contains(t, raw, "HttpOnly")
	assert.Contains(t, raw, "Secure")
	assert.Contains(t, raw, "SameSite=Lax")
	assert.Contains(t, raw, "Path=/")

	cookie := findCookie(w, SessionCookieName)
	require.NotNil(t, cookie)
	assert.Regexp(t, "^[0-9a-f]{64}$", cookie.Value)

	// the cookie resolves back to the same account
	user, err := env.auth.ResolveSession(context.Background(), cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, env.admin.ID, user.ID)
}

func TestAuthHandler_Login_NoPasswordHashInBody(t *testing.T) {
	env := setupTestEnv(t)
	handler := NewAuthHandler(setupTestLogger(), env.auth, CookieConfig{})

	req := httptest.NewRequest(http.MethodPost, "/api/login",
		jsonBody(t, api.LoginRequest{Username: "alice", Password: "alicepass"}))
	w := httptest.NewRecorder()

	handler.Login(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.NotContains(t, body, "100000$")
	assert.NotContains(t, strings.ToLower(body), "password")
}

func TestAuthHandler_Login_Failures(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantMessage string
		wantStatus  int
	}{
		{
			name:        "wrong password",
			body:        `{"username":"admin","password":"wrong"}`,
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Invalid username or password",
		},
		{
			name:        "unknown user",
			body:        `{"username":"nobody","password":"admin123"}`,
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Invalid username or password",
		},
		{
			name:        "missing password",
			body:        `{"username":"admin"}`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Username and password are required",
		},
		{
			name:        "missing username",
			body:        `{"password":"admin123"}`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Username and password are required",
		},
		{
			name:       "malformed json",
			body:       `{"username":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "empty body",
			body:       ``,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestEnv(t)
			handler := NewAuthHandler(setupTestLogger(), env.auth, CookieConfig{})

			req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.Login(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Nil(t, findCookie(w, SessionCookieName), "no session cookie on failure")

			resp := decodeError(t, w)
			assert.Equal(t, http.StatusText(tt.wantStatus), resp.Error)
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, resp.Message)
			}
		})
	}
}

func TestAuthHandler_Login_InsecureCookie(t *testing.T) {
	env := setupTestEnv(t)
	handler := NewAuthHandler(setupTestLogger(), env.auth, CookieConfig{Insecure: true})

	req := httptest.NewRequest(http.MethodPost, "/api/login",
		jsonBody(t, api.LoginRequest{Username: "admin", Password: "admin123"}))
	w := httptest.NewRecorder()

	handler.Login(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	cookie := findCookie(w, SessionCookieName)
	require.NotNil(t, cookie)
	assert.False(t, cookie.Secure)
	assert.True(t, cookie.HttpOnly)
}

// stubAuthenticator fails in configurable ways
type stubAuthenticator struct {
	authErr    error
	sessionErr error
	revokeErr  error
	user       *models.User
	revoked    []string
}

func (s *stubAuthenticator) AuthenticateLocal(ctx context.Context, username, password string) (*models.User, error) {
	if s.authErr != nil {
		return nil, s.authErr
	}
	return s.user, nil
}

func (s *stubAuthenticator) CreateSession(ctx context.Context, userID int64) (string, time.Time, error) {
	if s.sessionErr != nil {
		return "", time.Time{}, s.sessionErr
	}
	return "token-1", time.Now().Add(time.Hour), nil
}

func (s *stubAuthenticator) RevokeSession(ctx context.Context, token string) error {
	if s.revokeErr != nil {
		return s.revokeErr
	}
	s.revoked = append(s.revoked, token)
	return nil
}

func TestAuthHandler_Login_InternalErrors(t *testing.T) {
	tests := []struct {
		stub *stubAuthenticator
		name string
	}{
		{
			name: "storage failure",
			stub: &stubAuthenticator{authErr: errors.New("disk I/O error")},
		},
		{
			name: "session failure",
			stub: &stubAuthenticator{
				user:       &models.User{ID: 1, Username: "admin", Role: models.RoleAdmin},
				sessionErr: errors.New("database is locked"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewAuthHandler(setupTestLogger(), tt.stub, CookieConfig{})

			req := httptest.NewRequest(http.MethodPost, "/api/login",
				jsonBody(t, api.LoginRequest{Username: "admin", Password: "admin123"}))
			w := httptest.NewRecorder()

			handler.Login(w, req)

			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.Nil(t, findCookie(w, SessionCookieName))

			resp := decodeError(t, w)
			assert.Equal(t, "internal server error", resp.Message)
			assert.NotContains(t, w.Body.String(), "database")
		})
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	env := setupTestEnv(t)
	handler := NewAuthHandler(setupTestLogger(), env.auth, CookieConfig{})

	token, _, err := env.auth.CreateSession(context.Background(), env.alice.ID)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/logout", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	w := httptest.NewRecorder()

	handler.Logout(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp api.SuccessResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.True(t, resp.Success)

	cookie := findCookie(w, SessionCookieName)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Less(t, cookie.MaxAge, 0)

	_, err = env.auth.ResolveSession(context.Background(), token)
	assert.Error(t, err, "session must be gone after logout")
}

func TestAuthHandler_Logout_WithoutSession(t *testing.T) {
	stub := &stubAuthenticator{}
	handler := NewAuthHandler(setupTestLogger(), stub, CookieConfig{})

	w := httptest.NewRecorder()
	handler.Logout(w, httptest.NewRequest(http.MethodPost, "/api/logout", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, stub.revoked)
	assert.NotNil(t, findCookie(w, SessionCookieName))
}

func TestAuthHandler_Logout_RevokeFailure(t *testing.T) {
	stub := &stubAuthenticator{revokeErr: errors.New("database is locked")}
	handler := NewAuthHandler(setupTestLogger(), stub, CookieConfig{})

	req := httptest.NewRequest(http.MethodPost, "/api/logout", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "abc"})
	w := httptest.NewRecorder()

	handler.Logout(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestAuthHandler_Me(t *testing.T) {
	env := setupTestEnv(t)
	handler := NewAuthHandler(setupTestLogger(), env.auth, CookieConfig{})

	t.Run("signed in", func(t *testing.T) {
		req := asUser(httptest.NewRequest(http.MethodGet, "/api/me", nil), env.alice)
		w := httptest.NewRecorder()

		handler.Me(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), "100000$")

		var resp api.MeResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "alice", resp.User.Username)
		assert.Equal(t, "user", resp.User.Role)
	})

	t.Run("anonymous", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Me(w, httptest.NewRequest(http.MethodGet, "/api/me", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
