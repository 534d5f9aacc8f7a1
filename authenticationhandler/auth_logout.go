// authenticationhandler/auth_logout.go

package authenticationhandler

import (
	"context"
	"fmt"

	"github.com/jbrendel/go-react/response"
	"github.com/jbrendel/go-react/status"
)

// Logout clears both stored tokens and asks the API server to revoke the
// refresh token. Local credentials are cleared no matter how the server call
// goes; the returned error only reports whether the revocation reached the
// server, and callers may ignore it.
func (h *AuthTokenHandler) Logout(ctx context.Context) error {
	_, refresh := h.Store.Tokens()
	h.Store.Clear()
	h.Sugar.Infow("Cleared stored credentials")

	if refresh == "" {
		return nil
	}

	resp, err := h.postJSON(ctx, h.endpoints.Logout, refreshRequest{Refresh: refresh})
	if err != nil {
		h.Sugar.Warnw("Server-side logout did not complete", "error", err)
		return fmt.Errorf("logout call failed: %w", err)
	}
	defer resp.Body.Close()

	if !status.IsSuccessStatusCode(resp.StatusCode) {
		apiErr := response.HandleAPIErrorResponse(resp, h.Sugar)
		return fmt.Errorf("logout rejected: %w", apiErr)
	}
	h.Sugar.Debugw("Refresh token revoked server-side")
	return nil
}
