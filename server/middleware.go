// server/middleware.go
package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jbrendel/go-react/tokens"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	claimsKey    contextKey = "claims"
)

// RequestIDFromContext returns the request ID tagged by the middleware.
func RequestIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(requestIDKey).(uuid.UUID)
	return id, ok
}

// ClaimsFromContext returns the verified access token claims for an
// authenticated request.
func ClaimsFromContext(ctx context.Context) (tokens.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(tokens.Claims)
	return claims, ok
}

// withRequestID tags every request with a uuid, echoed in X-Request-ID.
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New()
		w.Header().Set("X-Request-ID", requestID.String())
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, requestID)))
	})
}

// statusRecorder captures the status a handler wrote so the logging
// middleware can report it.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(statusCode int) {
	rec.status = statusCode
	rec.ResponseWriter.WriteHeader(statusCode)
}

// withLogging emits one line per request.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		requestID, _ := RequestIDFromContext(r.Context())
		s.sugar.Infow("Request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
			"request_id", requestID,
		)
	})
}

// withCORS answers the frontend dev server's cross-origin requests. With no
// allowed origin configured (production: one origin serves both halves) it is
// a no-op.
func (s *Server) withCORS(next http.Handler) http.Handler {
	allowed := s.cfg.HTTP.AllowedOrigin
	if allowed == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin == allowed {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
				w.Header().Set("Access-Control-Max-Age", "600")
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// requireAuth admits only requests carrying a valid Bearer access token and
// stashes the verified claims in the context.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			writeAuthRequired(w, s.sugar, "Authentication credentials were not provided.")
			return
		}

		scheme, tokenStr, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || tokenStr == "" {
			w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
			writeJSON(w, s.sugar, http.StatusUnauthorized, map[string]string{
				"detail": "Authorization header must contain two space-delimited values",
				"code":   "bad_authorization_header",
			})
			return
		}

		claims, err := s.issuer.Verify(tokenStr)
		if err != nil {
			requestID, _ := RequestIDFromContext(r.Context())
			s.sugar.Debugw("Rejected access token", "error", err, "request_id", requestID)
			writeTokenNotValid(w, s.sugar, "Given token not valid for any token type")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
	}
}

// post admits only POST requests, answering anything else with the API's 405 shape.
func (s *Server) post(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w, s.sugar, r.Method)
			return
		}
		next.ServeHTTP(w, r)
	}
}

// get admits only GET and HEAD requests.
func (s *Server) get(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			writeMethodNotAllowed(w, s.sugar, r.Method)
			return
		}
		next.ServeHTTP(w, r)
	}
}
