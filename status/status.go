// status/status.go
package status

import "net/http"

// IsSuccessStatusCode checks if the provided HTTP status code signals success (2xx).
func IsSuccessStatusCode(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}

// IsAuthFailureStatusCode checks if the provided HTTP status code signals an
// authorization failure. Only 401 qualifies; 403 means the caller is
// authenticated but not allowed, which a token refresh cannot fix.
func IsAuthFailureStatusCode(statusCode int) bool {
	return statusCode == http.StatusUnauthorized
}

// IsValidationFailureStatusCode checks if the provided HTTP status code signals
// a client-side request problem other than an authorization failure (4xx except 401).
func IsValidationFailureStatusCode(statusCode int) bool {
	return statusCode >= 400 && statusCode < 500 && statusCode != http.StatusUnauthorized
}

// IsServerErrorStatusCode checks if the provided HTTP status code signals a
// server-side failure (5xx).
func IsServerErrorStatusCode(statusCode int) bool {
	return statusCode >= 500 && statusCode < 600
}

// IsRedirectStatusCode checks if the provided HTTP status code is one of the redirect codes.
func IsRedirectStatusCode(statusCode int) bool {
	switch statusCode {
	case http.StatusMovedPermanently, // 301
		http.StatusFound,             // 302
		http.StatusSeeOther,          // 303
		http.StatusTemporaryRedirect, // 307
		http.StatusPermanentRedirect: // 308
		return true
	default:
		return false
	}
}

// IsPermanentRedirect checks if the provided HTTP status code is one of the permanent redirect codes.
func IsPermanentRedirect(statusCode int) bool {
	switch statusCode {
	case http.StatusMovedPermanently, // 301
		http.StatusPermanentRedirect: // 308
		return true
	default:
		return false
	}
}
