package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config is built once at startup and handed to every component. Nothing in
// the module reads configuration from package-level state.
type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Auth       AuthConfig
	Pagination PaginationConfig
	Cache      CacheConfig
	Assets     AssetsConfig
	RateLimit  RateLimitConfig
	CORS       CORSConfig
	Log        LogConfig
}

type DatabaseConfig struct {
	Host           string
	Port           int
	User           string
	Password       string
	Name           string
	SSLMode        string
	MaxOpenConns   int
	MaxIdleConns   int
	MigrationsPath string
	AutoMigrate    bool
}

// DSN renders a libpq connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// URL renders the connection as a postgres:// URL, the form golang-migrate expects.
func (c DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

type RedisConfig struct {
	Host        string
	Port        int
	Password    string
	DB          int
	DialTimeout time.Duration
}

// Addr returns the host:port pair for the Redis client.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

// AuthConfig names the request fields carrying credentials. The same name is
// used for the header, the query parameter and the body field.
type AuthConfig struct {
	KeyField   string
	TokenField string
}

// PaginationConfig holds list defaults shared by every listing endpoint.
type PaginationConfig struct {
	DefaultLimit int
}

// CacheConfig toggles the Redis read-through cache for public listings.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// AssetsConfig configures the asset host and its cleanup workers.
type AssetsConfig struct {
	StorageDir   string
	Workers      int
	MaxRetries   int
	RetryDelay   time.Duration
	QueueBuffer  int
	PublicPrefix string
}

// RateLimitConfig configures the per-credential token bucket.
type RateLimitConfig struct {
	Enabled bool
	RPS     float64
	Burst   int
	// IPRPS and IPBurst bound each client address across all keys it sends.
	IPRPS   float64
	IPBurst int
	IdleTTL time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:           v.GetString("DB_HOST"),
		Port:           v.GetInt("DB_PORT"),
		User:           v.GetString("DB_USER"),
		Password:       v.GetString("DB_PASSWORD"),
		Name:           v.GetString("DB_NAME"),
		SSLMode:        v.GetString("DB_SSL_MODE"),
		MaxOpenConns:   v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns:   v.GetInt("DB_MAX_IDLE_CONNS"),
		MigrationsPath: v.GetString("DB_MIGRATIONS_PATH"),
		AutoMigrate:    v.GetBool("DB_AUTO_MIGRATE"),
	}

	cfg.Redis = RedisConfig{
		Host:        v.GetString("REDIS_HOST"),
		Port:        v.GetInt("REDIS_PORT"),
		Password:    v.GetString("REDIS_PASSWORD"),
		DB:          v.GetInt("REDIS_DB"),
		DialTimeout: parseDuration(v.GetString("REDIS_DIAL_TIMEOUT"), 3*time.Second),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.Auth = AuthConfig{
		KeyField:   strings.ToLower(strings.TrimSpace(v.GetString("AUTH_KEY_FIELD"))),
		TokenField: strings.ToLower(strings.TrimSpace(v.GetString("AUTH_TOKEN_FIELD"))),
	}

	limit := v.GetInt("PAGINATION_DEFAULT_LIMIT")
	if limit <= 0 {
		limit = 20
	}
	cfg.Pagination = PaginationConfig{DefaultLimit: limit}

	cfg.Cache = CacheConfig{
		Enabled: v.GetBool("ENABLE_CACHE"),
		TTL:     parseDuration(v.GetString("CACHE_TTL"), 5*time.Minute),
	}

	cfg.Assets = AssetsConfig{
		StorageDir:   v.GetString("ASSETS_STORAGE_DIR"),
		Workers:      v.GetInt("ASSETS_CLEANUP_WORKERS"),
		MaxRetries:   v.GetInt("ASSETS_CLEANUP_RETRIES"),
		RetryDelay:   parseDuration(v.GetString("ASSETS_CLEANUP_RETRY_DELAY"), 5*time.Second),
		QueueBuffer:  v.GetInt("ASSETS_CLEANUP_BUFFER"),
		PublicPrefix: v.GetString("ASSETS_PUBLIC_PREFIX"),
	}

	cfg.RateLimit = RateLimitConfig{
		Enabled: v.GetBool("ENABLE_RATE_LIMIT"),
		RPS:     v.GetFloat64("RATE_LIMIT_RPS"),
		Burst:   v.GetInt("RATE_LIMIT_BURST"),
		IPRPS:   v.GetFloat64("RATE_LIMIT_IP_RPS"),
		IPBurst: v.GetInt("RATE_LIMIT_IP_BURST"),
		IdleTTL: parseDuration(v.GetString("RATE_LIMIT_IDLE_TTL"), 10*time.Minute),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "center_cms")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_MIGRATIONS_PATH", "./migrations")
	v.SetDefault("DB_AUTO_MIGRATE", false)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_DIAL_TIMEOUT", "3s")

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("JWT_ISSUER", "center-cms-api")

	v.SetDefault("AUTH_KEY_FIELD", "x-api-key")
	v.SetDefault("AUTH_TOKEN_FIELD", "x-access-token")

	v.SetDefault("PAGINATION_DEFAULT_LIMIT", 20)

	v.SetDefault("ENABLE_CACHE", false)
	v.SetDefault("CACHE_TTL", "5m")

	v.SetDefault("ASSETS_STORAGE_DIR", "./assets")
	v.SetDefault("ASSETS_CLEANUP_WORKERS", 1)
	v.SetDefault("ASSETS_CLEANUP_RETRIES", 3)
	v.SetDefault("ASSETS_CLEANUP_RETRY_DELAY", "5s")
	v.SetDefault("ASSETS_CLEANUP_BUFFER", 64)
	v.SetDefault("ASSETS_PUBLIC_PREFIX", "/assets")

	v.SetDefault("ENABLE_RATE_LIMIT", false)
	v.SetDefault("RATE_LIMIT_RPS", 10)
	v.SetDefault("RATE_LIMIT_BURST", 20)
	v.SetDefault("RATE_LIMIT_IP_RPS", 40)
	v.SetDefault("RATE_LIMIT_IP_BURST", 80)
	v.SetDefault("RATE_LIMIT_IDLE_TTL", "10m")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

// isMissingFile covers viper returning a raw fs error when SetConfigFile
// points at a file that does not exist.
func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
