package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	defaultJWTSecret         = "change-me-jwt-secret"
	defaultInternalSyncToken = "change-me-internal-sync-token"
)

type Config struct {
	AppEnv   string `env:"APP_ENV" env-default:"dev"`
	HTTP     HTTPConfig
	DB       DBConfig
	Auth     AuthConfig
	Share    ShareConfig
	Redis    RedisConfig
	Limits   LimitsConfig
	CORS     CORSConfig
	Internal InternalConfig
}

type HTTPConfig struct {
	Host           string        `env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port           string        `env:"HTTP_PORT" env-default:"8080"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" env-default:"5s"`
	ShutdownGrace  time.Duration `env:"SHUTDOWN_GRACE" env-default:"10s"`
}

func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

type DBConfig struct {
	URL string `env:"DATABASE_URL" env-default:"trophies.db"`
}

type AuthConfig struct {
	JWTSecret   string        `env:"JWT_SECRET" env-default:"change-me-jwt-secret"`
	JWTIssuer   string        `env:"JWT_ISSUER"`
	JWTAudience string        `env:"JWT_AUDIENCE"`
	DevTokenTTL time.Duration `env:"DEV_TOKEN_TTL" env-default:"24h"`
}

type ShareConfig struct {
	PublicBaseURL string        `env:"PUBLIC_BASE_URL" env-default:"http://localhost:8080"`
	SiteName      string        `env:"SITE_NAME" env-default:"Trophy Angler"`
	CacheTTL      time.Duration `env:"SHARE_CACHE_TTL" env-default:"10m"`
}

type RedisConfig struct {
	URL string `env:"REDIS_URL"`
}

type LimitsConfig struct {
	SearchDefault int `env:"SEARCH_DEFAULT_LIMIT" env-default:"50"`
	SearchMax     int `env:"SEARCH_MAX_LIMIT" env-default:"500"`
	ListDefault   int `env:"LIST_DEFAULT_LIMIT" env-default:"20"`
	ListMax       int `env:"LIST_MAX_LIMIT" env-default:"100"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" env-separator:","`
}

type InternalConfig struct {
	SyncToken  string   `env:"INTERNAL_SYNC_TOKEN" env-default:"change-me-internal-sync-token"`
	AllowedIPs []string `env:"INTERNAL_ALLOWED_IPS" env-separator:","`
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds the config from the environment only.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	cfg.AppEnv = strings.ToLower(strings.TrimSpace(cfg.AppEnv))
	cfg.Share.PublicBaseURL = strings.TrimRight(strings.TrimSpace(cfg.Share.PublicBaseURL), "/")

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// ProdLike reports whether the service runs in a production-like env.
func (c *Config) ProdLike() bool {
	return isProdLike(c.AppEnv)
}

func validate(cfg *Config) error {
	if cfg.HTTP.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be > 0")
	}
	if cfg.Share.CacheTTL <= 0 {
		return fmt.Errorf("SHARE_CACHE_TTL must be > 0")
	}
	if cfg.DB.URL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if err := checkLimit("SEARCH", cfg.Limits.SearchDefault, cfg.Limits.SearchMax); err != nil {
		return err
	}
	if err := checkLimit("LIST", cfg.Limits.ListDefault, cfg.Limits.ListMax); err != nil {
		return err
	}

	u, err := url.Parse(cfg.Share.PublicBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("PUBLIC_BASE_URL must be an absolute http(s) URL, got %q", cfg.Share.PublicBaseURL)
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.Auth.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if isEmptyOrDefault(cfg.Internal.SyncToken, defaultInternalSyncToken) {
			return fmt.Errorf("in prod/release INTERNAL_SYNC_TOKEN must be set and not default")
		}
	}
	return nil
}

func checkLimit(prefix string, def, max int) error {
	if def <= 0 || max <= 0 {
		return fmt.Errorf("%s_DEFAULT_LIMIT and %s_MAX_LIMIT must be > 0", prefix, prefix)
	}
	if def > max {
		return fmt.Errorf("%s_DEFAULT_LIMIT (%d) must not exceed %s_MAX_LIMIT (%d)", prefix, def, prefix, max)
	}
	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}
