// server/server.go

/* The server package is the HTTP half of the project: it owns the route
table, the auth middleware, and the JSON response conventions the bundled
API client expects. A Server is assembled from a config, a user store, a
token issuer, and an optional frontend handler, and exposes the composed
http.Handler for embedding in tests or serves itself via Run with graceful
shutdown. */

package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jbrendel/go-react/config"
	"github.com/jbrendel/go-react/tokens"
	"github.com/jbrendel/go-react/users"
)

// purgeInterval is how often expired refresh tokens are swept from storage.
const purgeInterval = time.Hour

// Server routes API requests and serves the frontend.
type Server struct {
	cfg     config.Config
	sugar   *zap.SugaredLogger
	users   users.Store
	issuer  *tokens.Issuer
	handler http.Handler
}

// New assembles the route table and middleware chain. frontend may be nil,
// in which case only /api routes are served.
func New(cfg config.Config, sugar *zap.SugaredLogger, userStore users.Store, issuer *tokens.Issuer, frontend http.Handler) *Server {
	s := &Server{
		cfg:    cfg,
		sugar:  sugar,
		users:  userStore,
		issuer: issuer,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/token/{$}", s.post(s.handleTokenObtain))
	mux.HandleFunc("/api/token/refresh/{$}", s.post(s.handleTokenRefresh))
	mux.HandleFunc("/api/logout/{$}", s.post(s.handleLogout))
	mux.HandleFunc("/api/welcome-message/{$}", s.get(s.requireAuth(s.handleWelcome)))
	mux.HandleFunc("/api/health/{$}", s.get(s.handleHealth))
	mux.HandleFunc("/api/", s.handleAPINotFound)
	if frontend != nil {
		mux.Handle("/", frontend)
	}

	s.handler = s.withRequestID(s.withLogging(s.withCORS(mux)))
	return s
}

// Handler returns the fully wrapped handler, mainly for httptest servers.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then drains in-flight requests. It also
// sweeps expired refresh tokens in the background for as long as it runs.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.HTTP.Addr,
		Handler: s.handler,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.sugar.Infow("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.sugar.Infow("Shutting down HTTP server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(purgeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				purged, err := s.issuer.PurgeExpired(ctx)
				if err != nil {
					s.sugar.Warnw("Failed to purge expired refresh tokens", "error", err)
					continue
				}
				if purged > 0 {
					s.sugar.Infow("Purged expired refresh tokens", "count", purged)
				}
			}
		}
	})

	return g.Wait()
}
