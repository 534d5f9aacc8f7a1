// config/config.go

/* The config package assembles the API server's runtime configuration.
Precedence, lowest to highest: built-in defaults, an optional YAML file
(CONFIG_FILE, default "config.yaml"), then environment variables. A .env file
in the working directory is loaded first so development setups need nothing
but that one file. */

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultSecretKey is the development signing secret. Deployments must
// override it; the server refuses to start outside dev mode without one.
const DefaultSecretKey = "dev-secret-change-me"

// Config holds the API server's runtime settings.
type Config struct {
	HTTP HTTPConfig `yaml:"http"`
	DB   DBConfig   `yaml:"db"`
	Auth AuthConfig `yaml:"auth"`
	SPA  SPAConfig  `yaml:"spa"`
	Log  LogConfig  `yaml:"log"`
	Demo DemoConfig `yaml:"demo"`
}

type HTTPConfig struct {
	Addr          string `yaml:"addr"`           // listen address, e.g. ":8000"
	AllowedOrigin string `yaml:"allowed_origin"` // dev-server origin allowed by CORS; empty disables CORS headers
}

type DBConfig struct {
	URL          string        `yaml:"url"` // Postgres URL; empty selects the in-memory stores
	MaxOpenConns int           `yaml:"max_open_conns"`
	MaxIdleConns int           `yaml:"max_idle_conns"`
	MaxIdleTime  time.Duration `yaml:"max_idle_time"`
}

type AuthConfig struct {
	SecretKey            string        `yaml:"secret_key"`
	AccessTokenLifetime  time.Duration `yaml:"access_token_lifetime"`
	RefreshTokenLifetime time.Duration `yaml:"refresh_token_lifetime"`
	RotateRefreshTokens  bool          `yaml:"rotate_refresh_tokens"`
}

type SPAConfig struct {
	StaticDir   string `yaml:"static_dir"`    // built frontend to serve on non-/api paths
	DevProxyURL string `yaml:"dev_proxy_url"` // frontend dev server; set in development, wins over StaticDir
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json | human-readable
}

type DemoConfig struct {
	Enabled  bool   `yaml:"enabled"` // seed the demo account at startup
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// Load builds the configuration from defaults, the optional YAML file and the
// environment, in that order.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := defaults()

	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		path = "config.yaml"
	}
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config yaml %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("read config file %s: %w", path, err)
	}

	cfg, err = applyEnv(cfg)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// UsingDefaultSecret reports whether the signing secret is still the dev default.
func (c Config) UsingDefaultSecret() bool {
	return c.Auth.SecretKey == DefaultSecretKey
}

// Validate rejects configurations the server cannot run with.
func (c Config) Validate() error {
	if c.HTTP.Addr == "" {
		return fmt.Errorf("http addr must not be empty")
	}
	if c.Auth.SecretKey == "" {
		return fmt.Errorf("auth secret key must not be empty (set SECRET_KEY)")
	}
	if c.Auth.AccessTokenLifetime <= 0 {
		return fmt.Errorf("access token lifetime must be positive")
	}
	if c.Auth.RefreshTokenLifetime <= c.Auth.AccessTokenLifetime {
		return fmt.Errorf("refresh token lifetime must exceed the access token lifetime")
	}
	return nil
}

func defaults() Config {
	return Config{
		HTTP: HTTPConfig{
			Addr: ":8000",
		},
		DB: DBConfig{
			MaxOpenConns: 5,
			MaxIdleConns: 2,
			MaxIdleTime:  15 * time.Minute,
		},
		Auth: AuthConfig{
			SecretKey:            DefaultSecretKey,
			AccessTokenLifetime:  5 * time.Minute,
			RefreshTokenLifetime: 7 * 24 * time.Hour,
			RotateRefreshTokens:  true,
		},
		SPA: SPAConfig{
			StaticDir: "frontend/dist",
		},
		Log: LogConfig{
			Level: "info",
		},
		Demo: DemoConfig{
			Enabled:  true,
			Username: "admin",
			Password: "admin123",
		},
	}
}

func applyEnv(cfg Config) (Config, error) {
	if val := os.Getenv("ADDR"); val != "" {
		cfg.HTTP.Addr = val
	}
	if val := os.Getenv("PORT"); val != "" {
		cfg.HTTP.Addr = ":" + val
	}
	if val := os.Getenv("ALLOWED_ORIGIN"); val != "" {
		cfg.HTTP.AllowedOrigin = val
	}
	if val := os.Getenv("DATABASE_URL"); val != "" {
		cfg.DB.URL = val
	}
	if val := os.Getenv("SECRET_KEY"); val != "" {
		cfg.Auth.SecretKey = val
	}
	var err error
	if cfg.Auth.AccessTokenLifetime, err = envDuration("ACCESS_TOKEN_LIFETIME", cfg.Auth.AccessTokenLifetime); err != nil {
		return Config{}, err
	}
	if cfg.Auth.RefreshTokenLifetime, err = envDuration("REFRESH_TOKEN_LIFETIME", cfg.Auth.RefreshTokenLifetime); err != nil {
		return Config{}, err
	}
	if cfg.Auth.RotateRefreshTokens, err = envBool("ROTATE_REFRESH_TOKENS", cfg.Auth.RotateRefreshTokens); err != nil {
		return Config{}, err
	}
	if val := os.Getenv("STATIC_DIR"); val != "" {
		cfg.SPA.StaticDir = val
	}
	if val := os.Getenv("DEV_PROXY_URL"); val != "" {
		cfg.SPA.DevProxyURL = val
	}
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		cfg.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		cfg.Log.Format = val
	}
	if cfg.Demo.Enabled, err = envBool("DEMO_USER_ENABLED", cfg.Demo.Enabled); err != nil {
		return Config{}, err
	}
	// DEMO_USER takes "username:password" in one variable, .env-friendly.
	if val := os.Getenv("DEMO_USER"); val != "" {
		username, password, ok := strings.Cut(val, ":")
		if !ok || username == "" || password == "" {
			return Config{}, fmt.Errorf("DEMO_USER must look like username:password, got %q", val)
		}
		cfg.Demo.Username = username
		cfg.Demo.Password = password
	}
	return cfg, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return parsed, nil
}

func envBool(key string, fallback bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return parsed, nil
}
