// redirecthandler/redirecthandler.go
package redirecthandler

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// RedirectHandler contains configuration for handling HTTP redirects. The API
// server redirects requests that miss a trailing slash, so clients follow a
// bounded number of same-host redirects by default.
type RedirectHandler struct {
	sugar            *zap.SugaredLogger
	followRedirects  bool
	maxRedirects     int
	sensitiveHeaders []string // Headers removed when a redirect leaves the original host
}

// MaxRedirectsError is returned when a redirect chain exceeds the configured limit.
type MaxRedirectsError struct {
	MaxRedirects int
}

func (e *MaxRedirectsError) Error() string {
	return fmt.Sprintf("stopped after %d redirects", e.MaxRedirects)
}

// NewRedirectHandler creates a new instance of RedirectHandler.
func NewRedirectHandler(sugar *zap.SugaredLogger, followRedirects bool, maxRedirects int) *RedirectHandler {
	return &RedirectHandler{
		sugar:            sugar,
		followRedirects:  followRedirects,
		maxRedirects:     maxRedirects,
		sensitiveHeaders: []string{"Authorization", "Cookie"},
	}
}

// WithRedirectHandling applies the redirect handling policy to an http.Client.
func (r *RedirectHandler) WithRedirectHandling(client *http.Client) {
	client.CheckRedirect = r.checkRedirect
}

// checkRedirect implements the redirect handling logic.
func (r *RedirectHandler) checkRedirect(req *http.Request, via []*http.Request) error {
	if !r.followRedirects {
		// Hand the 3xx response back to the caller untouched.
		return http.ErrUseLastResponse
	}

	if len(via) >= r.maxRedirects {
		r.sugar.Warnw("Maximum redirects reached", "max_redirects", r.maxRedirects, "url", req.URL.String())
		return &MaxRedirectsError{MaxRedirects: r.maxRedirects}
	}

	origin := via[0]
	if req.URL.Host != origin.URL.Host {
		// Credentials must not leak to a different host.
		for _, header := range r.sensitiveHeaders {
			req.Header.Del(header)
		}
		r.sugar.Warnw("Following cross-host redirect without credentials",
			"from", origin.URL.Host,
			"to", req.URL.Host,
		)
	}

	r.sugar.Debugw("Following redirect",
		"from", via[len(via)-1].URL.String(),
		"to", req.URL.String(),
		"hops", len(via),
	)
	return nil
}
