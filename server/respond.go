// server/respond.go
package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// The API answers in the JSON shapes the stock frontend already understands:
// {"detail": ...} for plain failures, {"detail", "code"} for token failures,
// {"field": ["problem", ...]} for validation failures.

func writeJSON(w http.ResponseWriter, sugar *zap.SugaredLogger, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		sugar.Errorw("Failed to encode response body", "error", err)
	}
}

func writeDetail(w http.ResponseWriter, sugar *zap.SugaredLogger, statusCode int, detail string) {
	writeJSON(w, sugar, statusCode, map[string]string{"detail": detail})
}

// writeAuthRequired answers a request that carried no usable credentials.
func writeAuthRequired(w http.ResponseWriter, sugar *zap.SugaredLogger, detail string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	writeDetail(w, sugar, http.StatusUnauthorized, detail)
}

// writeTokenNotValid answers a request whose token was presented but refused.
func writeTokenNotValid(w http.ResponseWriter, sugar *zap.SugaredLogger, detail string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	writeJSON(w, sugar, http.StatusUnauthorized, map[string]string{
		"detail": detail,
		"code":   "token_not_valid",
	})
}

// writeValidationErrors answers with per-field problems.
func writeValidationErrors(w http.ResponseWriter, sugar *zap.SugaredLogger, fieldErrors map[string][]string) {
	writeJSON(w, sugar, http.StatusBadRequest, fieldErrors)
}

func writeMethodNotAllowed(w http.ResponseWriter, sugar *zap.SugaredLogger, method string) {
	writeDetail(w, sugar, http.StatusMethodNotAllowed, fmt.Sprintf("Method %q not allowed.", method))
}
