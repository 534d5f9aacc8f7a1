// httpclient/errors.go
package httpclient

import (
	"errors"

	"github.com/jbrendel/go-react/response"
	"github.com/jbrendel/go-react/status"
)

var (
	// ErrUnauthenticated signals that the caller's session is gone: no refresh
	// token was stored, the refresh call was rejected, or the retried call
	// still answered 401. The credential store is already cleared when this is
	// returned; callers are expected to route the user to a login flow.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrNetwork wraps a transport-level failure. The call never reached a
	// conclusive server response and was not retried.
	ErrNetwork = errors.New("network error")
)

// IsUnauthenticated reports whether err means the session is gone and the user
// must log in again.
func IsUnauthenticated(err error) bool {
	return errors.Is(err, ErrUnauthenticated)
}

// IsNetworkError reports whether err was a transport failure rather than a
// server response.
func IsNetworkError(err error) bool {
	return errors.Is(err, ErrNetwork)
}

// IsValidationError reports whether err is a non-auth 4xx response. The parsed
// payload travels on the *response.APIError for display; AsAPIError retrieves it.
func IsValidationError(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && status.IsValidationFailureStatusCode(apiErr.StatusCode)
}

// IsServerError reports whether err is a 5xx response.
func IsServerError(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && status.IsServerErrorStatusCode(apiErr.StatusCode)
}

// AsAPIError unwraps err to the *response.APIError carrying the server's
// parsed failure payload, when there is one.
func AsAPIError(err error) (*response.APIError, bool) {
	var apiErr *response.APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
