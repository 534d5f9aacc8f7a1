// cmd/server/main.go

// The server binary: serves the JSON API and, depending on configuration,
// either the built frontend bundle or a proxy to the frontend dev server.
// Storage is Postgres when DATABASE_URL is set, otherwise in-memory.

package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/jbrendel/go-react/config"
	"github.com/jbrendel/go-react/logger"
	"github.com/jbrendel/go-react/migrations"
	"github.com/jbrendel/go-react/server"
	"github.com/jbrendel/go-react/spa"
	"github.com/jbrendel/go-react/tokens"
	"github.com/jbrendel/go-react/users"
	"github.com/jbrendel/go-react/version"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("server: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	sugar, err := logger.BuildLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer sugar.Sync()

	sugar.Infow("Starting server", "version", version.GetVersion(), "addr", cfg.HTTP.Addr)
	if cfg.UsingDefaultSecret() {
		sugar.Warnw("Signing tokens with the built-in development secret; set SECRET_KEY before deploying")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	userStore, tokenStore, cleanup, err := buildStores(ctx, cfg, sugar)
	if err != nil {
		return err
	}
	defer cleanup()

	if cfg.Demo.Enabled {
		demoUser, err := users.EnsureUser(ctx, userStore, cfg.Demo.Username, cfg.Demo.Password)
		if err != nil {
			return fmt.Errorf("seed demo user: %w", err)
		}
		sugar.Infow("Demo account available", "username", demoUser.Username)
	}

	issuer := tokens.NewIssuer(cfg.Auth.SecretKey, cfg.Auth.AccessTokenLifetime,
		cfg.Auth.RefreshTokenLifetime, cfg.Auth.RotateRefreshTokens, tokenStore)

	frontend, err := spa.NewHandler(cfg.SPA.StaticDir, cfg.SPA.DevProxyURL, sugar)
	if err != nil {
		return fmt.Errorf("frontend handler: %w", err)
	}

	srv := server.New(cfg, sugar, userStore, issuer, frontend)
	return srv.Run(ctx)
}

// buildStores picks the storage backend. With a database URL it opens a pgx
// connection pool and runs the migrations; without one everything lives in
// process memory and is gone on restart.
func buildStores(ctx context.Context, cfg config.Config, sugar *zap.SugaredLogger) (users.Store, tokens.RefreshTokenStore, func(), error) {
	if cfg.DB.URL == "" {
		sugar.Infow("No DATABASE_URL configured, using in-memory stores")
		return users.NewMemoryStore(), tokens.NewMemoryStore(), func() {}, nil
	}

	db, err := sql.Open("pgx", cfg.DB.URL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	db.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	db.SetConnMaxIdleTime(cfg.DB.MaxIdleTime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := migrations.Up(ctx, db); err != nil {
		db.Close()
		return nil, nil, nil, fmt.Errorf("run migrations: %w", err)
	}

	sugar.Infow("Connected to Postgres", "max_open_conns", cfg.DB.MaxOpenConns)
	cleanup := func() {
		if err := db.Close(); err != nil {
			sugar.Warnw("Failed to close database", "error", err)
		}
	}
	return users.NewPostgresStore(db), tokens.NewPostgresStore(db), cleanup, nil
}
