// server/middleware_test.go
package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbrendel/go-react/tokens"
)

func TestEveryResponseCarriesRequestID(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	rec := do(t, srv, http.MethodGet, "/api/health/", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	id, err := uuid.Parse(rec.Header().Get("X-Request-ID"))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)
}

func TestCORSPreflight(t *testing.T) {
	cfg := testConfig()
	cfg.HTTP.AllowedOrigin = "http://localhost:5173"
	srv, _ := newTestServer(t, cfg)

	req := httptest.NewRequest(http.MethodOptions, "/api/token/", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestCORSActualRequest(t *testing.T) {
	cfg := testConfig()
	cfg.HTTP.AllowedOrigin = "http://localhost:5173"
	srv, _ := newTestServer(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/health/", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Origin", rec.Header().Get("Vary"))
}

func TestCORSRejectsOtherOrigins(t *testing.T) {
	cfg := testConfig()
	cfg.HTTP.AllowedOrigin = "http://localhost:5173"
	srv, _ := newTestServer(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/health/", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSDisabledByDefault(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/health/", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequireAuthMalformedHeader(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	tests := []struct {
		name   string
		header string
	}{
		{"scheme only", "Bearer"},
		{"scheme with empty token", "Bearer "},
		{"wrong scheme", "Token abc123"},
		{"no scheme", "abc123 extra"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/welcome-message/", nil)
			req.Header.Set("Authorization", tt.header)
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, req)

			require.Equal(t, http.StatusUnauthorized, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, "bad_authorization_header", body["code"])
		})
	}
}

func TestRequireAuthGarbageToken(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/welcome-message/", nil)
	req.Header.Set("Authorization", "Bearer not.a.jwt")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Given token not valid for any token type", body["detail"])
	assert.Equal(t, "token_not_valid", body["code"])
}

func TestRequireAuthExpiredToken(t *testing.T) {
	cfg := testConfig()
	srv, _ := newTestServer(t, cfg)

	// Sign an already expired access token with the server's own secret.
	past := time.Now().Add(-time.Hour)
	claims := tokens.Claims{
		UserID:    uuid.NewString(),
		TokenType: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(past.Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(past),
			ID:        uuid.NewString(),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Auth.SecretKey))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/welcome-message/", nil)
	req.Header.Set("Authorization", "Bearer "+expired)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, `Bearer realm="api"`, rec.Header().Get("WWW-Authenticate"))
	body := decodeBody(t, rec)
	assert.Equal(t, "token_not_valid", body["code"])
}

func TestRequireAuthStashesClaims(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())
	access, _ := obtainPair(t, srv)

	var gotClaims tokens.Claims
	var gotOK bool
	probe := srv.requireAuth(func(w http.ResponseWriter, r *http.Request) {
		gotClaims, gotOK = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	rec := httptest.NewRecorder()
	probe.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.True(t, gotOK)
	assert.Equal(t, "access", gotClaims.TokenType)
	assert.NotEmpty(t, gotClaims.UserID)
}

func TestRequestIDFromContextMissing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := RequestIDFromContext(req.Context())
	assert.False(t, ok)
}
