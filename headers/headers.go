// headers/headers.go
package headers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jbrendel/go-react/headers/redact"
	"github.com/jbrendel/go-react/version"
	"go.uber.org/zap"
)

// HeaderHandler is responsible for managing and setting headers on HTTP requests.
type HeaderHandler struct {
	req               *http.Request      // The http.Request for which headers are being managed
	sugar             *zap.SugaredLogger // The logger to use for logging headers
	token             string             // The access token to use for setting the Authorization header
	hideSensitiveData bool               // Whether sensitive header values are redacted in logs
}

// NewHeaderHandler creates a new instance of HeaderHandler for a given http.Request.
// An empty token means the request goes out unauthenticated.
func NewHeaderHandler(req *http.Request, sugar *zap.SugaredLogger, token string, hideSensitiveData bool) *HeaderHandler {
	return &HeaderHandler{
		req:               req,
		sugar:             sugar,
		token:             token,
		hideSensitiveData: hideSensitiveData,
	}
}

// SetAuthorization sets the Authorization header for the request. When no token
// is held the header is left unset so the server sees an anonymous request.
func (h *HeaderHandler) SetAuthorization() {
	if h.token == "" {
		return
	}
	token := h.token
	// Ensure the token is prefixed with "Bearer " only once
	if !strings.HasPrefix(token, "Bearer ") {
		token = "Bearer " + token
	}
	h.req.Header.Set("Authorization", token)
}

// SetContentType sets the Content-Type header for the request.
func (h *HeaderHandler) SetContentType(contentType string) {
	h.req.Header.Set("Content-Type", contentType)
}

// SetAccept sets the Accept header for the request.
func (h *HeaderHandler) SetAccept(acceptHeader string) {
	h.req.Header.Set("Accept", acceptHeader)
}

// SetUserAgent sets the User-Agent header for the request.
func (h *HeaderHandler) SetUserAgent(userAgent string) {
	h.req.Header.Set("User-Agent", userAgent)
}

// SetRequestHeaders sets the standard headers for an outgoing API request:
// Accept, User-Agent, Authorization when a token is held, and Content-Type
// when the request carries a body.
func (h *HeaderHandler) SetRequestHeaders(contentType string) {
	h.SetAccept("application/json")
	h.SetUserAgent(version.GetUserAgentHeader())
	h.SetAuthorization()
	if contentType != "" {
		h.SetContentType(contentType)
	}
}

// LogHeaders prints all the current headers in the http.Request at debug level,
// redacting sensitive values before they reach the log.
func (h *HeaderHandler) LogHeaders() {
	redactedHeaders := http.Header{}
	for name, values := range h.req.Header {
		for _, value := range values {
			redactedHeaders.Add(name, redact.RedactSensitiveHeaderData(h.hideSensitiveData, name, value))
		}
	}
	h.sugar.Debugw("HTTP request headers", "method", h.req.Method, "url", h.req.URL.String(), "headers", HeadersToString(redactedHeaders))
}

// HeadersToString converts a http.Header to a string for logging,
// with each header on a new line for readability.
func HeadersToString(headers http.Header) string {
	var headerStrings []string
	for name, values := range headers {
		valueStr := strings.Join(values, ", ")
		headerStrings = append(headerStrings, fmt.Sprintf("%s: %s", name, valueStr))
	}
	return strings.Join(headerStrings, "\n")
}

// CheckDeprecationHeader checks the response headers for the Deprecation header and logs a warning if present.
func CheckDeprecationHeader(resp *http.Response, sugar *zap.SugaredLogger) {
	deprecationHeader := resp.Header.Get("Deprecation")
	if deprecationHeader != "" {
		sugar.Warnw("API endpoint is deprecated",
			"date", deprecationHeader,
			"endpoint", resp.Request.URL.String(),
		)
	}
}
