// cookiejar/cookiejar.go
package cookiejar

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"

	"go.uber.org/zap"
)

// SetupCookieJar initializes the HTTP client with a cookie jar if enabled in
// the configuration. Token auth does not need cookies, but deployments behind
// sticky-session load balancers do.
func SetupCookieJar(client *http.Client, enableCookieJar bool, sugar *zap.SugaredLogger) error {
	if !enableCookieJar {
		return nil
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		sugar.Errorw("Failed to create cookie jar", "error", err)
		return fmt.Errorf("setupCookieJar failed: %w", err)
	}
	client.Jar = jar
	return nil
}

// ApplyCustomCookies seeds the client's cookie jar with configured cookies for
// the given base URL. The jar must already be initialized.
func ApplyCustomCookies(client *http.Client, baseURL *url.URL, cookies []*http.Cookie, sugar *zap.SugaredLogger) error {
	if len(cookies) == 0 {
		return nil
	}
	if client.Jar == nil {
		return fmt.Errorf("cannot apply custom cookies without a cookie jar")
	}
	client.Jar.SetCookies(baseURL, cookies)
	for _, cookie := range RedactSensitiveCookies(cloneCookies(cookies)) {
		sugar.Debugw("Applied custom cookie", "name", cookie.Name, "value", cookie.Value)
	}
	return nil
}

// RedactSensitiveCookies redacts sensitive information from cookies.
// It takes a slice of *http.Cookie and returns a redacted slice of *http.Cookie.
func RedactSensitiveCookies(cookies []*http.Cookie) []*http.Cookie {
	// Cookie names that carry session or CSRF material.
	sensitiveCookieNames := map[string]bool{
		"sessionid": true,
		"csrftoken": true,
		"SessionID": true,
	}

	for _, cookie := range cookies {
		if sensitiveCookieNames[cookie.Name] {
			cookie.Value = "REDACTED"
		}
	}
	return cookies
}

// cloneCookies copies cookies so redaction for logging never mutates the
// values handed to the jar.
func cloneCookies(cookies []*http.Cookie) []*http.Cookie {
	cloned := make([]*http.Cookie, len(cookies))
	for i, cookie := range cookies {
		c := *cookie
		cloned[i] = &c
	}
	return cloned
}
