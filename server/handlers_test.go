// server/handlers_test.go
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbrendel/go-react/config"
	"github.com/jbrendel/go-react/mocklogger"
	"github.com/jbrendel/go-react/tokens"
	"github.com/jbrendel/go-react/users"
)

const (
	testUsername = "admin"
	testPassword = "admin123"
)

func testConfig() config.Config {
	var cfg config.Config
	cfg.HTTP.Addr = ":0"
	cfg.Auth.SecretKey = "server-test-secret"
	cfg.Auth.AccessTokenLifetime = 5 * time.Minute
	cfg.Auth.RefreshTokenLifetime = 24 * time.Hour
	cfg.Auth.RotateRefreshTokens = true
	return cfg
}

// newTestServer builds a Server over in-memory stores with one seeded user.
func newTestServer(t *testing.T, cfg config.Config) (*Server, *tokens.MemoryStore) {
	t.Helper()

	userStore := users.NewMemoryStore()
	_, err := users.EnsureUser(context.Background(), userStore, testUsername, testPassword)
	require.NoError(t, err)

	tokenStore := tokens.NewMemoryStore()
	issuer := tokens.NewIssuer(cfg.Auth.SecretKey, cfg.Auth.AccessTokenLifetime,
		cfg.Auth.RefreshTokenLifetime, cfg.Auth.RotateRefreshTokens, tokenStore)

	sugar := mocklogger.NewMockLogger().Sugar
	return New(cfg, sugar, userStore, issuer, nil), tokenStore
}

// do runs one request through the full middleware chain.
func do(t *testing.T, srv *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded), "body: %s", rec.Body.String())
	return decoded
}

// obtainPair logs the seeded user in and returns the issued token pair.
func obtainPair(t *testing.T, srv *Server) (string, string) {
	t.Helper()
	rec := do(t, srv, http.MethodPost, "/api/token/", map[string]string{
		"username": testUsername,
		"password": testPassword,
	})
	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())
	body := decodeBody(t, rec)
	access, _ := body["access"].(string)
	refresh, _ := body["refresh"].(string)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)
	return access, refresh
}

func TestTokenObtainIssuesPair(t *testing.T) {
	srv, tokenStore := newTestServer(t, testConfig())

	rec := do(t, srv, http.MethodPost, "/api/token/", map[string]string{
		"username": testUsername,
		"password": testPassword,
	})

	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := decodeBody(t, rec)
	access, _ := body["access"].(string)
	refresh, _ := body["refresh"].(string)
	assert.NotEmpty(t, access)
	assert.Len(t, refresh, 64)
	assert.Equal(t, 1, tokenStore.Len())
}

func TestTokenObtainWrongPassword(t *testing.T) {
	srv, tokenStore := newTestServer(t, testConfig())

	rec := do(t, srv, http.MethodPost, "/api/token/", map[string]string{
		"username": testUsername,
		"password": "not-the-password",
	})

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "No active account found with the given credentials", body["detail"])
	assert.Equal(t, 0, tokenStore.Len())
}

func TestTokenObtainUnknownUser(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	rec := do(t, srv, http.MethodPost, "/api/token/", map[string]string{
		"username": "nobody",
		"password": "whatever",
	})

	// Same shape as a wrong password so usernames cannot be probed.
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "No active account found with the given credentials", body["detail"])
}

func TestTokenObtainMissingFields(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	tests := []struct {
		name       string
		body       map[string]string
		wantFields []string
	}{
		{"both missing", map[string]string{}, []string{"username", "password"}},
		{"password missing", map[string]string{"username": testUsername}, []string{"password"}},
		{"username missing", map[string]string{"password": testPassword}, []string{"username"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, http.MethodPost, "/api/token/", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var fieldErrors map[string][]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fieldErrors))
			for _, field := range tt.wantFields {
				assert.Equal(t, []string{"This field is required."}, fieldErrors[field])
			}
			assert.Len(t, fieldErrors, len(tt.wantFields))
		})
	}
}

func TestTokenObtainMalformedJSON(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/token/", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "JSON parse error", body["detail"])
}

func TestTokenRefreshRotates(t *testing.T) {
	srv, tokenStore := newTestServer(t, testConfig())
	_, refresh := obtainPair(t, srv)

	rec := do(t, srv, http.MethodPost, "/api/token/refresh/", map[string]string{"refresh": refresh})
	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())

	body := decodeBody(t, rec)
	newAccess, _ := body["access"].(string)
	newRefresh, _ := body["refresh"].(string)
	assert.NotEmpty(t, newAccess)
	require.NotEmpty(t, newRefresh)
	assert.NotEqual(t, refresh, newRefresh)
	assert.Equal(t, 1, tokenStore.Len())

	// The consumed token must not be redeemable a second time.
	replay := do(t, srv, http.MethodPost, "/api/token/refresh/", map[string]string{"refresh": refresh})
	require.Equal(t, http.StatusUnauthorized, replay.Code)
	replayBody := decodeBody(t, replay)
	assert.Equal(t, "Token is invalid or expired", replayBody["detail"])
	assert.Equal(t, "token_not_valid", replayBody["code"])
}

func TestTokenRefreshWithoutRotation(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.RotateRefreshTokens = false
	srv, tokenStore := newTestServer(t, cfg)
	_, refresh := obtainPair(t, srv)

	rec := do(t, srv, http.MethodPost, "/api/token/refresh/", map[string]string{"refresh": refresh})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.NotEmpty(t, body["access"])
	_, hasRefresh := body["refresh"]
	assert.False(t, hasRefresh, "rotation off must not mint a new refresh token")

	// The original token stays redeemable.
	again := do(t, srv, http.MethodPost, "/api/token/refresh/", map[string]string{"refresh": refresh})
	assert.Equal(t, http.StatusOK, again.Code)
	assert.Equal(t, 1, tokenStore.Len())
}

func TestTokenRefreshMissingField(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	rec := do(t, srv, http.MethodPost, "/api/token/refresh/", map[string]string{})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var fieldErrors map[string][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fieldErrors))
	assert.Equal(t, []string{"This field is required."}, fieldErrors["refresh"])
}

func TestTokenRefreshUnknownToken(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	rec := do(t, srv, http.MethodPost, "/api/token/refresh/", map[string]string{"refresh": "deadbeef"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, `Bearer realm="api"`, rec.Header().Get("WWW-Authenticate"))

	body := decodeBody(t, rec)
	assert.Equal(t, "Token is invalid or expired", body["detail"])
	assert.Equal(t, "token_not_valid", body["code"])
}

func TestLogoutRevokesToken(t *testing.T) {
	srv, tokenStore := newTestServer(t, testConfig())
	_, refresh := obtainPair(t, srv)
	require.Equal(t, 1, tokenStore.Len())

	rec := do(t, srv, http.MethodPost, "/api/logout/", map[string]string{"refresh": refresh})
	require.Equal(t, http.StatusResetContent, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, 0, tokenStore.Len())

	replay := do(t, srv, http.MethodPost, "/api/token/refresh/", map[string]string{"refresh": refresh})
	assert.Equal(t, http.StatusUnauthorized, replay.Code)
}

func TestLogoutWithoutBody(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	rec := do(t, srv, http.MethodPost, "/api/logout/", nil)
	assert.Equal(t, http.StatusResetContent, rec.Code)
}

func TestLogoutUnknownTokenStillSucceeds(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	rec := do(t, srv, http.MethodPost, "/api/logout/", map[string]string{"refresh": "never-issued"})
	assert.Equal(t, http.StatusResetContent, rec.Code)
}

func TestWelcomeRequiresAuth(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	rec := do(t, srv, http.MethodGet, "/api/welcome-message/", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, `Bearer realm="api"`, rec.Header().Get("WWW-Authenticate"))

	body := decodeBody(t, rec)
	assert.Equal(t, "Authentication credentials were not provided.", body["detail"])
}

func TestWelcomeWithToken(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())
	access, _ := obtainPair(t, srv)

	req := httptest.NewRequest(http.MethodGet, "/api/welcome-message/", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Hello World!", body["message"])
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	rec := do(t, srv, http.MethodGet, "/api/health/", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["version"])
}

func TestAPINotFound(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	for _, path := range []string{"/api/", "/api/missing/", "/api/token/extra/"} {
		rec := do(t, srv, http.MethodGet, path, nil)
		require.Equal(t, http.StatusNotFound, rec.Code, "path %s", path)
		body := decodeBody(t, rec)
		assert.Equal(t, "Not found.", body["detail"])
	}
}

func TestTrailingSlashRedirect(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	// Mirrors the APPEND_SLASH behavior the stock frontend relies on.
	rec := do(t, srv, http.MethodGet, "/api/token", nil)
	require.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/api/token/", rec.Header().Get("Location"))
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/token/"},
		{http.MethodDelete, "/api/token/refresh/"},
		{http.MethodPut, "/api/logout/"},
		{http.MethodPost, "/api/welcome-message/"},
		{http.MethodPost, "/api/health/"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := do(t, srv, tt.method, tt.path, nil)
			require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, `Method "`+tt.method+`" not allowed.`, body["detail"])
		})
	}
}

func TestFrontendFallbackWhenConfigured(t *testing.T) {
	cfg := testConfig()
	userStore := users.NewMemoryStore()
	issuer := tokens.NewIssuer(cfg.Auth.SecretKey, cfg.Auth.AccessTokenLifetime,
		cfg.Auth.RefreshTokenLifetime, true, tokens.NewMemoryStore())
	frontend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("spa shell"))
	})
	srv := New(cfg, mocklogger.NewMockLogger().Sugar, userStore, issuer, frontend)

	rec := do(t, srv, http.MethodGet, "/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "spa shell", rec.Body.String())

	// API misses stay JSON and never fall through to the frontend.
	miss := do(t, srv, http.MethodGet, "/api/missing/", nil)
	assert.Equal(t, http.StatusNotFound, miss.Code)
	assert.Contains(t, miss.Body.String(), "Not found.")
}
