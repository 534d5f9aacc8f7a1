// authenticationhandler/auth_token_obtain.go

package authenticationhandler

import (
	"context"
	"fmt"

	"github.com/jbrendel/go-react/headers/redact"
	"github.com/jbrendel/go-react/response"
	"github.com/jbrendel/go-react/status"
)

// credentialsRequest is the body sent to the token endpoint.
type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login exchanges a username and password for an access/refresh token pair and
// stores it. A 401 here means the credentials were rejected; it is surfaced as
// a *response.APIError and never triggers the refresh flow.
func (h *AuthTokenHandler) Login(ctx context.Context, username, password string) error {
	if valid, msg := IsValidUsername(username); !valid {
		return fmt.Errorf("invalid username: %s", msg)
	}
	if password == "" {
		return fmt.Errorf("password must not be empty")
	}

	resp, err := h.postJSON(ctx, h.endpoints.Token, credentialsRequest{Username: username, Password: password})
	if err != nil {
		return fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if !status.IsSuccessStatusCode(resp.StatusCode) {
		return response.HandleAPIErrorResponse(resp, h.Sugar)
	}

	var pair TokenPairResponse
	if err := response.HandleAPISuccessResponse(resp, &pair, h.Sugar); err != nil {
		return fmt.Errorf("failed to decode token response: %w", err)
	}
	if pair.Access == "" || pair.Refresh == "" {
		return fmt.Errorf("token endpoint returned an incomplete pair")
	}

	h.Store.SetTokens(pair.Access, pair.Refresh)
	h.Sugar.Infow("Authenticated with API server",
		"username", username,
		"access_token", redact.RedactToken(h.HideSensitiveData, pair.Access),
	)
	return nil
}
