// httpclient/config.go
package httpclient

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/jbrendel/go-react/authenticationhandler"
	"github.com/joho/godotenv"
)

const (
	// DefaultLogLevel is the client log level used when none is configured.
	DefaultLogLevel = "info"

	// DefaultCustomTimeout is the default timeout for individual HTTP requests,
	// including the coalesced token refresh round trip.
	DefaultCustomTimeout = 10 * time.Second

	// DefaultMaxConcurrentRequests caps how many calls may be in flight at once.
	DefaultMaxConcurrentRequests = 10

	// DefaultMaxRedirects bounds how many redirects a single call may follow.
	DefaultMaxRedirects = 5

	// DefaultFollowRedirects controls whether redirects are followed at all.
	// The API server redirects paths missing their trailing slash, so this
	// defaults to on.
	DefaultFollowRedirects = true

	// DefaultHealthEndpoint is the unauthenticated health check path.
	DefaultHealthEndpoint = "/api/health/"
)

// ClientConfig holds configurable options for the HTTP Client. BaseURL is the
// only required field: an absolute host:port in development, or the origin the
// SPA is served from in production.
type ClientConfig struct {
	BaseURL               string                          // Base address of the API server, e.g. "http://localhost:8000"
	Endpoints             authenticationhandler.Endpoints // Paths for token obtain/refresh/logout
	HealthEndpoint        string                          // Path for the unauthenticated health check
	LogLevel              string                          // debug | info | warn | error
	LogOutputFormat       string                          // json | human-readable
	HideSensitiveData     bool                            // Redact token values in logs
	CustomTimeout         time.Duration                   // Per-request timeout
	MaxConcurrentRequests int                             // Concurrency permit pool size
	FollowRedirects       bool                            // Follow HTTP redirects
	MaxRedirects          int                             // Redirect hop limit
	EnableCookieJar       bool                            // Attach a cookie jar to the transport
	CustomCookies         []*http.Cookie                  // Cookies seeded into the jar at build time
	ProxyURL              string                          // Optional outbound proxy
}

// LoadConfigFromEnv builds a ClientConfig from environment variables, loading a
// .env file first when one is present. API_BASE_URL is required; everything
// else falls back to defaults.
//
//	API_BASE_URL                 base address of the API server
//	CLIENT_LOG_LEVEL             debug | info | warn | error
//	CLIENT_LOG_OUTPUT_FORMAT     json | human-readable
//	CLIENT_TIMEOUT               Go duration, e.g. "10s"
//	CLIENT_MAX_CONCURRENT_REQUESTS  integer >= 1
//	CLIENT_FOLLOW_REDIRECTS      true | false
//	CLIENT_MAX_REDIRECTS         integer >= 0
//	CLIENT_HIDE_SENSITIVE_DATA   true | false
//	CLIENT_ENABLE_COOKIE_JAR     true | false
//	CLIENT_PROXY_URL             outbound proxy URL
func LoadConfigFromEnv() (ClientConfig, error) {
	_ = godotenv.Load()

	config := ClientConfig{
		BaseURL:           os.Getenv("API_BASE_URL"),
		LogLevel:          os.Getenv("CLIENT_LOG_LEVEL"),
		LogOutputFormat:   os.Getenv("CLIENT_LOG_OUTPUT_FORMAT"),
		HideSensitiveData: true,
		ProxyURL:          os.Getenv("CLIENT_PROXY_URL"),
		FollowRedirects:   DefaultFollowRedirects,
	}

	var err error
	if config.CustomTimeout, err = envDuration("CLIENT_TIMEOUT", 0); err != nil {
		return ClientConfig{}, err
	}
	if config.MaxConcurrentRequests, err = envInt("CLIENT_MAX_CONCURRENT_REQUESTS", 0); err != nil {
		return ClientConfig{}, err
	}
	if config.MaxRedirects, err = envInt("CLIENT_MAX_REDIRECTS", 0); err != nil {
		return ClientConfig{}, err
	}
	if config.FollowRedirects, err = envBool("CLIENT_FOLLOW_REDIRECTS", DefaultFollowRedirects); err != nil {
		return ClientConfig{}, err
	}
	if config.HideSensitiveData, err = envBool("CLIENT_HIDE_SENSITIVE_DATA", true); err != nil {
		return ClientConfig{}, err
	}
	if config.EnableCookieJar, err = envBool("CLIENT_ENABLE_COOKIE_JAR", false); err != nil {
		return ClientConfig{}, err
	}

	SetDefaultValuesClientConfig(&config)
	if err := validateClientConfig(config); err != nil {
		return ClientConfig{}, err
	}
	return config, nil
}

// SetDefaultValuesClientConfig sets default values for the client configuration.
func SetDefaultValuesClientConfig(config *ClientConfig) {
	if config.Endpoints == (authenticationhandler.Endpoints{}) {
		config.Endpoints = authenticationhandler.DefaultEndpoints()
	}
	if config.HealthEndpoint == "" {
		config.HealthEndpoint = DefaultHealthEndpoint
	}
	if config.LogLevel == "" {
		config.LogLevel = DefaultLogLevel
	}
	if config.CustomTimeout <= 0 {
		config.CustomTimeout = DefaultCustomTimeout
	}
	if config.MaxConcurrentRequests < 1 {
		config.MaxConcurrentRequests = DefaultMaxConcurrentRequests
	}
	if config.MaxRedirects < 1 {
		config.MaxRedirects = DefaultMaxRedirects
	}
}

// validateClientConfig checks that the configuration the client is about to be
// built from is usable.
func validateClientConfig(config ClientConfig) error {
	if config.BaseURL == "" {
		return fmt.Errorf("BaseURL is required (set API_BASE_URL)")
	}
	parsed, err := url.Parse(config.BaseURL)
	if err != nil {
		return fmt.Errorf("BaseURL %q is not a valid URL: %w", config.BaseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("BaseURL %q must use http or https", config.BaseURL)
	}
	if parsed.Host == "" {
		return fmt.Errorf("BaseURL %q is missing a host", config.BaseURL)
	}
	return nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return parsed, nil
}

func envInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return parsed, nil
}

func envBool(key string, fallback bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return parsed, nil
}
