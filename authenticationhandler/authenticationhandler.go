// authenticationhandler/authenticationhandler.go

package authenticationhandler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jbrendel/go-react/headers"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Endpoints holds the paths where the API server exchanges credentials.
type Endpoints struct {
	Token   string // POST username/password, returns an access/refresh pair
	Refresh string // POST refresh token, returns a new access token (and a rotated refresh token when enabled)
	Logout  string // POST refresh token, revokes it server-side
}

// DefaultEndpoints returns the paths the API server mounts out of the box.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Token:   "/api/token/",
		Refresh: "/api/token/refresh/",
		Logout:  "/api/logout/",
	}
}

// AuthTokenHandler manages authentication tokens. It owns every call to the
// token endpoints and is the only writer of the credential store.
type AuthTokenHandler struct {
	Store             TokenStore         // Store holds the current access/refresh token pair.
	Sugar             *zap.SugaredLogger // Sugar provides structured logging capabilities.
	HideSensitiveData bool               // HideSensitiveData redacts token values in logs.

	httpClient     *http.Client  // httpClient performs the token endpoint calls; it carries no auth middleware of its own.
	baseURL        string        // baseURL is the API server's base address.
	endpoints      Endpoints     // endpoints are the token exchange paths.
	refreshTimeout time.Duration // refreshTimeout bounds a coalesced refresh round trip.

	refreshGroup singleflight.Group // refreshGroup coalesces concurrent refresh attempts into one round trip.
}

// TokenPairResponse represents the structure of a token endpoint response from the API.
type TokenPairResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// RefreshResponse represents the structure of a refresh endpoint response from
// the API. Refresh is empty unless the server rotates refresh tokens.
type RefreshResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// NewAuthTokenHandler creates a new instance of AuthTokenHandler.
func NewAuthTokenHandler(httpClient *http.Client, baseURL string, endpoints Endpoints, store TokenStore, refreshTimeout time.Duration, sugar *zap.SugaredLogger, hideSensitiveData bool) *AuthTokenHandler {
	if refreshTimeout <= 0 {
		refreshTimeout = 10 * time.Second
	}
	return &AuthTokenHandler{
		Store:             store,
		Sugar:             sugar,
		HideSensitiveData: hideSensitiveData,
		httpClient:        httpClient,
		baseURL:           strings.TrimRight(baseURL, "/"),
		endpoints:         endpoints,
		refreshTimeout:    refreshTimeout,
	}
}

// postJSON sends an anonymous JSON POST to one of the token endpoints.
func (h *AuthTokenHandler) postJSON(ctx context.Context, endpoint string, payload interface{}) (*http.Response, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal token request body: %w", err)
	}

	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to build token request: %w", err)
	}

	headerHandler := headers.NewHeaderHandler(req, h.Sugar, "", h.HideSensitiveData)
	headerHandler.SetRequestHeaders("application/json")

	return h.httpClient.Do(req)
}
