// httpclient/client.go

/* The httpclient package provides the HTTP client every caller of the API
server goes through. It mediates each outgoing call: resolving the endpoint
against the configured base URL, attaching the current access token as a bearer
credential, and transparently recovering from a first-attempt 401 by refreshing
the token and re-issuing the call exactly once. Callers see the final outcome
only, classified into the package's error taxonomy. */

package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jbrendel/go-react/authenticationhandler"
	"github.com/jbrendel/go-react/concurrency"
	"github.com/jbrendel/go-react/cookiejar"
	"github.com/jbrendel/go-react/logger"
	"github.com/jbrendel/go-react/proxy"
	"github.com/jbrendel/go-react/redirecthandler"
	"go.uber.org/zap"
)

// Client is the HTTP client used to interact with the API server.
type Client struct {
	config ClientConfig
	http   *http.Client

	Sugar       *zap.SugaredLogger
	Auth        *authenticationhandler.AuthTokenHandler
	Concurrency *concurrency.ConcurrencyHandler
}

// BuildClient creates a new HTTP client with the provided configuration.
// Passing a nil logger builds one from the config's log settings. The client
// starts unauthenticated; call Login, or seed Auth.Store with a token pair
// obtained elsewhere.
func BuildClient(config ClientConfig, sugar *zap.SugaredLogger) (*Client, error) {
	SetDefaultValuesClientConfig(&config)
	if err := validateClientConfig(config); err != nil {
		return nil, fmt.Errorf("invalid client configuration: %w", err)
	}

	if sugar == nil {
		var err error
		sugar, err = logger.BuildLogger(config.LogLevel, config.LogOutputFormat)
		if err != nil {
			return nil, err
		}
	}

	httpClient := &http.Client{Timeout: config.CustomTimeout}

	if err := cookiejar.SetupCookieJar(httpClient, config.EnableCookieJar, sugar); err != nil {
		return nil, err
	}
	if len(config.CustomCookies) > 0 {
		baseURL, err := url.Parse(config.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid BaseURL: %w", err)
		}
		if err := cookiejar.ApplyCustomCookies(httpClient, baseURL, config.CustomCookies, sugar); err != nil {
			return nil, err
		}
	}

	redirecthandler.NewRedirectHandler(sugar, config.FollowRedirects, config.MaxRedirects).WithRedirectHandling(httpClient)

	if config.ProxyURL != "" {
		if err := proxy.SetupClientProxy(httpClient, config.ProxyURL, sugar); err != nil {
			return nil, err
		}
	}

	authHandler := authenticationhandler.NewAuthTokenHandler(
		httpClient,
		config.BaseURL,
		config.Endpoints,
		authenticationhandler.NewMemoryTokenStore(),
		config.CustomTimeout,
		sugar,
		config.HideSensitiveData,
	)

	concurrencyHandler := concurrency.NewConcurrencyHandler(config.MaxConcurrentRequests, sugar, &concurrency.ConcurrencyMetrics{})

	client := &Client{
		config:      config,
		http:        httpClient,
		Sugar:       sugar,
		Auth:        authHandler,
		Concurrency: concurrencyHandler,
	}

	sugar.Debugw("HTTP client built",
		"base_url", config.BaseURL,
		"timeout", config.CustomTimeout,
		"max_concurrent_requests", config.MaxConcurrentRequests,
		"follow_redirects", config.FollowRedirects,
		"max_redirects", config.MaxRedirects,
		"cookie_jar", config.EnableCookieJar,
		"hide_sensitive_data", config.HideSensitiveData,
	)
	return client, nil
}

// Login authenticates against the API server and stores the returned token pair.
func (c *Client) Login(ctx context.Context, username, password string) error {
	return c.Auth.Login(ctx, username, password)
}

// Logout clears both stored tokens and revokes the refresh token server-side.
// Local credentials are gone even when the revocation call fails.
func (c *Client) Logout(ctx context.Context) error {
	return c.Auth.Logout(ctx)
}

// BaseURL reports the API server address this client talks to.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}
