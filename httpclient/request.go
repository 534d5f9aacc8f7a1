// httpclient/request.go
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jbrendel/go-react/headers"
	"github.com/jbrendel/go-react/response"
	"github.com/jbrendel/go-react/status"
)

//region Call state machine

// callState tracks a logical call through the authentication retry pipeline.
// The state lives on the call itself, so no more than one retry can ever
// happen by construction.
type callState int

const (
	callStateInitial         callState = iota // no attempt sent yet
	callStateAwaitingRefresh                  // first attempt answered 401; a token refresh is in flight
	callStateRetried                          // call re-issued once with a refreshed token
	callStateDone                             // outcome settled; no further attempts permitted
)

func (s callState) String() string {
	switch s {
	case callStateInitial:
		return "initial"
	case callStateAwaitingRefresh:
		return "awaiting-refresh"
	case callStateRetried:
		return "retried"
	case callStateDone:
		return "done"
	default:
		return "unknown"
	}
}

// apiCall carries one logical request through its attempts.
type apiCall struct {
	method      string
	endpoint    string
	body        []byte // marshaled once, replayed per attempt
	contentType string
	state       callState
	sentAccess  string // access token attached to the most recent attempt
}

//endregion

// DoRequest constructs and performs an HTTP request against the API server.
//
// The endpoint is resolved against the configured base URL. When the
// credential store holds an access token it is attached as a bearer
// credential. A non-nil requestBody is JSON-marshaled ([]byte payloads pass
// through as-is); on any 2xx the response body is decoded into out, which may
// be nil to discard it.
//
// A 401 on the first attempt of a protected call is not surfaced: the client
// refreshes the access token (coalescing with any concurrent refresh) and
// re-issues the call exactly once with the new token, returning that outcome
// as if it had succeeded first try. When the refresh fails, or the retried
// call answers 401 again, the stored credentials are cleared and the call
// fails with ErrUnauthenticated.
//
// Every other failure surfaces unchanged: 4xx responses and 5xx responses as
// a *response.APIError carrying the parsed payload, transport failures
// wrapped in ErrNetwork. None of them are retried.
func (c *Client) DoRequest(ctx context.Context, method, endpoint string, requestBody, out interface{}) (*http.Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	body, contentType, err := marshalRequestBody(requestBody)
	if err != nil {
		return nil, err
	}

	permitCtx, requestID, err := c.Concurrency.AcquireConcurrencyPermit(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire concurrency permit: %w", err)
	}
	defer c.Concurrency.ReleaseConcurrencyPermit(requestID)

	call := &apiCall{
		method:      method,
		endpoint:    endpoint,
		body:        body,
		contentType: contentType,
	}

	resp, err := c.executeWithAuthRetry(permitCtx, call)
	if err != nil {
		return nil, err
	}
	return c.handleResponse(resp, call, out)
}

// executeWithAuthRetry drives the call through the state machine: one attempt,
// at most one refresh, at most one retry.
func (c *Client) executeWithAuthRetry(ctx context.Context, call *apiCall) (*http.Response, error) {
	resp, err := c.executeOnce(ctx, call)
	if err != nil {
		call.state = callStateDone
		return nil, err
	}

	// Token endpoints answer 401 for bad credentials, not expired access
	// tokens; intercepting those would refresh in a loop for nothing.
	if !status.IsAuthFailureStatusCode(resp.StatusCode) || c.isAuthEndpoint(call.endpoint) {
		return resp, nil
	}

	// First-attempt 401 on a protected call: suspend the failure, refresh,
	// then re-issue the original call once with the new token.
	call.state = callStateAwaitingRefresh
	drainBody(resp)
	c.Sugar.Debugw("Intercepted 401, refreshing access token",
		"method", call.method,
		"endpoint", call.endpoint,
		"call_state", call.state.String(),
	)
	c.Concurrency.Metrics.RecordAuthRefresh()

	if _, err := c.Auth.RefreshAccessToken(ctx, call.sentAccess); err != nil {
		call.state = callStateDone
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		// The credential store is already cleared by the auth handler.
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	call.state = callStateRetried
	c.Concurrency.Metrics.RecordAuthRetry()
	resp, err = c.executeOnce(ctx, call)
	if err != nil {
		call.state = callStateDone
		return nil, err
	}
	return resp, nil
}

// executeOnce performs a single attempt: build the request, attach the current
// access token, send. The token is re-read from the store on every attempt so
// a retry picks up the refreshed one.
func (c *Client) executeOnce(ctx context.Context, call *apiCall) (*http.Response, error) {
	var bodyReader io.Reader
	if call.body != nil {
		bodyReader = bytes.NewReader(call.body)
	}

	req, err := http.NewRequestWithContext(ctx, call.method, c.requestURL(call.endpoint), bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	access, _ := c.Auth.Store.Tokens()
	call.sentAccess = access

	headerHandler := headers.NewHeaderHandler(req, c.Sugar, access, c.config.HideSensitiveData)
	headerHandler.SetRequestHeaders(call.contentType)
	headerHandler.LogHeaders()

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		c.Sugar.Warnw("Transport failure",
			"method", call.method,
			"endpoint", call.endpoint,
			"error", err,
		)
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}

	headers.CheckDeprecationHeader(resp, c.Sugar)
	return resp, nil
}

// handleResponse settles the call: decode success, classify failure.
func (c *Client) handleResponse(resp *http.Response, call *apiCall, out interface{}) (*http.Response, error) {
	defer func() { call.state = callStateDone }()
	defer resp.Body.Close()

	switch {
	case status.IsSuccessStatusCode(resp.StatusCode):
		if err := response.HandleAPISuccessResponse(resp, out, c.Sugar); err != nil {
			return resp, err
		}
		return resp, nil

	case status.IsAuthFailureStatusCode(resp.StatusCode):
		apiErr := response.HandleAPIErrorResponse(resp, c.Sugar)
		if call.state == callStateRetried {
			// A freshly minted token was refused: the session is gone. Clear
			// the slots and stop; a second retry is never attempted.
			c.Auth.Store.Clear()
			c.Sugar.Warnw("Still unauthorized after token refresh, clearing credentials",
				"method", call.method,
				"endpoint", call.endpoint,
			)
			return resp, fmt.Errorf("%w: %s", ErrUnauthenticated, apiErr.Message)
		}
		// 401 straight from a token endpoint: a credential failure, not an
		// expired session.
		return resp, apiErr

	default:
		// ValidationError (4xx) and ServerError (5xx) surface unchanged, with
		// the parsed payload attached for display.
		return resp, response.HandleAPIErrorResponse(resp, c.Sugar)
	}
}

// requestURL resolves an endpoint path against the configured base URL.
func (c *Client) requestURL(endpoint string) string {
	base := strings.TrimRight(c.config.BaseURL, "/")
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	return base + endpoint
}

// isAuthEndpoint reports whether endpoint is one of the token exchange paths,
// which are never routed through the 401 interception.
func (c *Client) isAuthEndpoint(endpoint string) bool {
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	e := c.config.Endpoints
	return endpoint == e.Token || endpoint == e.Refresh || endpoint == e.Logout
}

// marshalRequestBody prepares the request payload. Raw []byte payloads pass
// through untouched and are assumed to be JSON already; everything else is
// JSON-marshaled. A nil body produces no payload and no Content-Type.
func marshalRequestBody(requestBody interface{}) ([]byte, string, error) {
	switch payload := requestBody.(type) {
	case nil:
		return nil, "", nil
	case []byte:
		return payload, "application/json", nil
	default:
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, "", fmt.Errorf("failed to marshal request body: %w", err)
		}
		return data, "application/json", nil
	}
}

// drainBody discards a suppressed response body so the connection can be reused.
func drainBody(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	resp.Body.Close()
}
