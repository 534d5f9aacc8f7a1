// server/handlers.go
package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/jbrendel/go-react/tokens"
	"github.com/jbrendel/go-react/users"
	"github.com/jbrendel/go-react/version"
)

type tokenObtainRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenRefreshRequest struct {
	Refresh string `json:"refresh"`
}

type tokenPairResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// handleTokenObtain exchanges credentials for an access/refresh pair.
func (s *Server) handleTokenObtain(w http.ResponseWriter, r *http.Request) {
	var req tokenObtainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, s.sugar, http.StatusBadRequest, "JSON parse error")
		return
	}

	fieldErrors := map[string][]string{}
	if req.Username == "" {
		fieldErrors["username"] = append(fieldErrors["username"], "This field is required.")
	}
	if req.Password == "" {
		fieldErrors["password"] = append(fieldErrors["password"], "This field is required.")
	}
	if len(fieldErrors) > 0 {
		writeValidationErrors(w, s.sugar, fieldErrors)
		return
	}

	user, err := s.users.FindByUsername(r.Context(), req.Username)
	if err != nil || !users.CheckPassword(user.PasswordHash, req.Password) {
		// One shape for unknown user and wrong password; the caller learns
		// nothing about which half failed.
		if err != nil && !errors.Is(err, users.ErrUserNotFound) {
			s.sugar.Errorw("User lookup failed", "error", err)
		}
		writeDetail(w, s.sugar, http.StatusUnauthorized, "No active account found with the given credentials")
		return
	}

	pair, err := s.issuer.Issue(r.Context(), user.ID)
	if err != nil {
		s.sugar.Errorw("Failed to issue token pair", "error", err, "username", user.Username)
		writeDetail(w, s.sugar, http.StatusInternalServerError, "Unable to issue tokens.")
		return
	}

	s.sugar.Infow("Issued token pair", "username", user.Username)
	writeJSON(w, s.sugar, http.StatusOK, tokenPairResponse{Access: pair.Access, Refresh: pair.Refresh})
}

// handleTokenRefresh redeems a refresh token for a new access token. Under
// rotation the response also carries the replacement refresh token.
func (s *Server) handleTokenRefresh(w http.ResponseWriter, r *http.Request) {
	var req tokenRefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, s.sugar, http.StatusBadRequest, "JSON parse error")
		return
	}
	if req.Refresh == "" {
		writeValidationErrors(w, s.sugar, map[string][]string{"refresh": {"This field is required."}})
		return
	}

	pair, err := s.issuer.Refresh(r.Context(), req.Refresh)
	if err != nil {
		if errors.Is(err, tokens.ErrRefreshInvalid) {
			writeTokenNotValid(w, s.sugar, "Token is invalid or expired")
			return
		}
		s.sugar.Errorw("Refresh failed", "error", err)
		writeDetail(w, s.sugar, http.StatusInternalServerError, "Unable to refresh token.")
		return
	}

	writeJSON(w, s.sugar, http.StatusOK, tokenPairResponse{Access: pair.Access, Refresh: pair.Refresh})
}

// handleLogout revokes the presented refresh token. Unknown or absent tokens
// still answer 205 so logout is idempotent.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	// A missing or malformed body is not worth failing a logout over.
	var req tokenRefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.sugar.Debugw("Ignoring malformed logout body", "error", err)
	}

	if req.Refresh != "" {
		if err := s.issuer.Revoke(r.Context(), req.Refresh); err != nil {
			s.sugar.Errorw("Failed to revoke refresh token", "error", err)
			writeDetail(w, s.sugar, http.StatusInternalServerError, "Unable to revoke token.")
			return
		}
	}
	w.WriteHeader(http.StatusResetContent)
}

// handleWelcome is the starter's placeholder protected resource.
func (s *Server) handleWelcome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.sugar, http.StatusOK, map[string]string{"message": "Hello World!"})
}

// handleHealth reports liveness without touching auth or storage.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.sugar, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.GetVersion(),
	})
}

// handleAPINotFound answers unrouted /api paths in JSON instead of the SPA shell.
func (s *Server) handleAPINotFound(w http.ResponseWriter, r *http.Request) {
	writeDetail(w, s.sugar, http.StatusNotFound, "Not found.")
}
