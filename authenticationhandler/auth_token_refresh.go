// authenticationhandler/auth_token_refresh.go

package authenticationhandler

import (
	"context"
	"errors"
	"fmt"

	"github.com/jbrendel/go-react/headers/redact"
	"github.com/jbrendel/go-react/response"
	"github.com/jbrendel/go-react/status"
)

var (
	// ErrNoRefreshToken signals that no refresh token is stored, so a new
	// access token cannot be obtained without logging in again.
	ErrNoRefreshToken = errors.New("no refresh token stored")

	// ErrRefreshRejected signals that the API server refused the stored
	// refresh token (expired, revoked, or already rotated away).
	ErrRefreshRejected = errors.New("refresh token rejected by API server")
)

// refreshRequest is the body sent to the refresh endpoint.
type refreshRequest struct {
	Refresh string `json:"refresh"`
}

// RefreshAccessToken exchanges the stored refresh token for a new access token
// and returns it. staleAccess is the access token the failing call used;
// when the store already holds a different one, another caller has refreshed in
// the meantime and that token is returned without a round trip.
//
// Concurrent callers are coalesced: only one refresh call is in flight at a
// time and every waiter receives its outcome. The server rotates refresh
// tokens on use, so letting concurrent 401s race independent refresh calls
// would burn the stored refresh token on the first winner and log everyone
// else out.
//
// Any refresh failure (missing token, rejection, transport error) clears the
// credential store before returning.
func (h *AuthTokenHandler) RefreshAccessToken(ctx context.Context, staleAccess string) (string, error) {
	if access, _ := h.Store.Tokens(); access != "" && access != staleAccess {
		h.Sugar.Debugw("Reusing access token refreshed by a concurrent call",
			"access_token", redact.RedactToken(h.HideSensitiveData, access),
		)
		return access, nil
	}

	ch := h.refreshGroup.DoChan("token-refresh", func() (interface{}, error) {
		return h.refreshOnce(staleAccess)
	})

	select {
	case <-ctx.Done():
		// The caller is gone; the shared refresh keeps running for any
		// remaining waiters.
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// refreshOnce performs a single refresh round trip. It runs inside the
// singleflight group and re-checks the store first so a batch queued behind a
// completed refresh does not consume the freshly rotated token as well.
func (h *AuthTokenHandler) refreshOnce(staleAccess string) (string, error) {
	access, refresh := h.Store.Tokens()
	if access != "" && access != staleAccess {
		return access, nil
	}
	if refresh == "" {
		h.Store.Clear()
		return "", ErrNoRefreshToken
	}

	// Detached from any single caller's context: the result is shared, so one
	// caller abandoning its request must not abort the refresh for the rest.
	ctx, cancel := context.WithTimeout(context.Background(), h.refreshTimeout)
	defer cancel()

	resp, err := h.postJSON(ctx, h.endpoints.Refresh, refreshRequest{Refresh: refresh})
	if err != nil {
		h.Store.Clear()
		h.Sugar.Warnw("Token refresh call failed, clearing credentials", "error", err)
		return "", fmt.Errorf("refresh call failed: %w", err)
	}
	defer resp.Body.Close()

	if !status.IsSuccessStatusCode(resp.StatusCode) {
		apiErr := response.HandleAPIErrorResponse(resp, h.Sugar)
		h.Store.Clear()
		h.Sugar.Warnw("Token refresh rejected, clearing credentials",
			"status_code", apiErr.StatusCode,
			"message", apiErr.Message,
		)
		return "", fmt.Errorf("%w: %s", ErrRefreshRejected, apiErr.Message)
	}

	var refreshed RefreshResponse
	if err := response.HandleAPISuccessResponse(resp, &refreshed, h.Sugar); err != nil {
		h.Store.Clear()
		return "", fmt.Errorf("failed to decode refresh response: %w", err)
	}
	if refreshed.Access == "" {
		h.Store.Clear()
		return "", fmt.Errorf("%w: refresh response carried no access token", ErrRefreshRejected)
	}

	if refreshed.Refresh != "" {
		// Server rotated the refresh token; swap both slots together.
		h.Store.SetTokens(refreshed.Access, refreshed.Refresh)
	} else {
		h.Store.SetAccessToken(refreshed.Access)
	}

	h.Sugar.Infow("Access token refreshed",
		"access_token", redact.RedactToken(h.HideSensitiveData, refreshed.Access),
		"refresh_rotated", refreshed.Refresh != "",
	)
	return refreshed.Access, nil
}
