package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/kode4food/larder/internal/order"
	"github.com/kode4food/larder/internal/store"
	"github.com/kode4food/larder/pkg/log"
)

type (
	// Config holds configuration settings for the recipe service
	Config struct {
		// API Server
		APIHost       string
		APIPort       int
		PublicBaseURL string
		LogLevel      string

		// Database
		DBDriver string
		DBDSN    string

		// Token Store
		Redis RedisConfig

		// Ingredient Checks
		Vegan VeganConfig

		// Archiving
		ArchiveBucketURL string
		ArchivePrefix    string

		// Sequences & Tokens
		ZeroPolicy      order.ZeroPolicy
		ConfirmTokenTTL time.Duration
		ResetTokenTTL   time.Duration
		ShutdownTimeout time.Duration
	}

	// RedisConfig locates the Redis instance holding one-time tokens
	RedisConfig struct {
		Addr     string
		Password string
		DB       int
		Prefix   string
	}

	// VeganConfig configures the ingredient lookup service
	VeganConfig struct {
		URL        string
		Timeout    time.Duration
		CacheSize  int
		MaxRetries int
	}
)

const (
	DefaultAPIPort         = 8080
	DefaultAPIHost         = "0.0.0.0"
	DefaultPublicBaseURL   = "http://localhost:8080"
	DefaultLogLevel        = "info"
	DefaultShutdownTimeout = 10 * time.Second
	MaxTCPPort             = 65535

	DefaultDBDriver = store.DriverSQLite
	DefaultDBDSN    = "larder.db"

	DefaultRedisEndpoint = "localhost:6379"
	DefaultRedisPrefix   = "larder"
	DefaultRedisDB       = 0
	MaxRedisDB           = 15

	DefaultVeganURL        = "https://is-vegan.netlify.app/.netlify/functions/api"
	DefaultVeganTimeout    = 5 * time.Second
	DefaultVeganCacheSize  = 1024
	DefaultVeganMaxRetries = 3
	MaxVeganCacheSize      = 1_000_000
	MaxVeganRetries        = 20

	DefaultArchiveBucketURL = "mem://"
	DefaultArchivePrefix    = "recipes"

	DefaultZeroPolicy      = order.ZeroReject
	DefaultConfirmTokenTTL = time.Hour
	DefaultResetTokenTTL   = time.Hour
	MaxTokenTTL            = 30 * 24 * time.Hour
)

var (
	ErrInvalidAPIPort       = errors.New("invalid API port")
	ErrInvalidLogLevel      = errors.New("invalid log level")
	ErrInvalidDBDriver      = errors.New("invalid database driver")
	ErrEmptyDBDSN           = errors.New("database DSN must not be empty")
	ErrEmptyRedisAddr       = errors.New("redis address must not be empty")
	ErrInvalidVeganURL      = errors.New("invalid vegan API URL")
	ErrInvalidVeganTimeout  = errors.New("vegan API timeout must be positive")
	ErrEmptyArchiveBucket   = errors.New("archive bucket URL must not be empty")
	ErrInvalidTokenTTL      = errors.New("token TTL must be positive")
	ErrInvalidPublicBaseURL = errors.New("invalid public base URL")
)

// NewDefaultConfig creates a configuration with sensible defaults for the
// server, database, token store and outbound services
func NewDefaultConfig() *Config {
	return &Config{
		APIPort:       DefaultAPIPort,
		APIHost:       DefaultAPIHost,
		PublicBaseURL: DefaultPublicBaseURL,
		LogLevel:      DefaultLogLevel,
		DBDriver:      DefaultDBDriver,
		DBDSN:         DefaultDBDSN,
		Redis: RedisConfig{
			Addr:   DefaultRedisEndpoint,
			DB:     DefaultRedisDB,
			Prefix: DefaultRedisPrefix,
		},
		Vegan: VeganConfig{
			URL:        DefaultVeganURL,
			Timeout:    DefaultVeganTimeout,
			CacheSize:  DefaultVeganCacheSize,
			MaxRetries: DefaultVeganMaxRetries,
		},
		ArchiveBucketURL: DefaultArchiveBucketURL,
		ArchivePrefix:    DefaultArchivePrefix,
		ZeroPolicy:       DefaultZeroPolicy,
		ConfirmTokenTTL:  DefaultConfirmTokenTTL,
		ResetTokenTTL:    DefaultResetTokenTTL,
		ShutdownTimeout:  DefaultShutdownTimeout,
	}
}

// LoadFromEnv populates configuration values from environment variables.
// Returns an error if any env var cannot be parsed
func (c *Config) LoadFromEnv() error {
	loadEnvString("API_HOST", &c.APIHost)
	loadEnvString("PUBLIC_BASE_URL", &c.PublicBaseURL)
	loadEnvString("LOG_LEVEL", &c.LogLevel)
	loadEnvString("DB_DRIVER", &c.DBDriver)
	loadEnvString("DB_DSN", &c.DBDSN)
	loadEnvString("REDIS_ADDR", &c.Redis.Addr)
	loadEnvString("REDIS_PASSWORD", &c.Redis.Password)
	loadEnvString("REDIS_PREFIX", &c.Redis.Prefix)
	loadEnvString("VEGAN_API_URL", &c.Vegan.URL)
	loadEnvString("ARCHIVE_BUCKET_URL", &c.ArchiveBucketURL)
	loadEnvString("ARCHIVE_PREFIX", &c.ArchivePrefix)

	if s := os.Getenv("ZERO_POSITION_POLICY"); s != "" {
		p, err := order.ParseZeroPolicy(s)
		if err != nil {
			return err
		}
		c.ZeroPolicy = p
	}

	if err := loadEnvInt("API_PORT", &c.APIPort, 0, MaxTCPPort); err != nil {
		return err
	}
	if err := loadEnvInt(
		"REDIS_DB", &c.Redis.DB, -1, MaxRedisDB,
	); err != nil {
		return err
	}
	if err := loadEnvInt(
		"VEGAN_CACHE_SIZE", &c.Vegan.CacheSize, 0, MaxVeganCacheSize,
	); err != nil {
		return err
	}
	if err := loadEnvInt(
		"VEGAN_MAX_RETRIES", &c.Vegan.MaxRetries, -1, MaxVeganRetries,
	); err != nil {
		return err
	}

	if err := loadEnvDuration(
		"VEGAN_TIMEOUT", &c.Vegan.Timeout, time.Minute,
	); err != nil {
		return err
	}
	if err := loadEnvDuration(
		"CONFIRM_TOKEN_TTL", &c.ConfirmTokenTTL, MaxTokenTTL,
	); err != nil {
		return err
	}
	if err := loadEnvDuration(
		"RESET_TOKEN_TTL", &c.ResetTokenTTL, MaxTokenTTL,
	); err != nil {
		return err
	}
	return loadEnvDuration(
		"SHUTDOWN_TIMEOUT", &c.ShutdownTimeout, 5*time.Minute,
	)
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	if c.APIPort <= 0 || c.APIPort > MaxTCPPort {
		return fmt.Errorf("%w: %d", ErrInvalidAPIPort, c.APIPort)
	}

	if _, ok := log.ParseLevel(c.LogLevel); !ok {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel)
	}

	if c.DBDriver != store.DriverSQLite && c.DBDriver != store.DriverMySQL {
		return fmt.Errorf("%w: %q", ErrInvalidDBDriver, c.DBDriver)
	}

	if c.DBDSN == "" {
		return ErrEmptyDBDSN
	}

	if c.Redis.Addr == "" {
		return ErrEmptyRedisAddr
	}

	if !isAbsoluteURL(c.Vegan.URL) {
		return fmt.Errorf("%w: %q", ErrInvalidVeganURL, c.Vegan.URL)
	}

	if c.Vegan.Timeout <= 0 {
		return ErrInvalidVeganTimeout
	}

	if !isAbsoluteURL(c.PublicBaseURL) {
		return fmt.Errorf("%w: %q", ErrInvalidPublicBaseURL, c.PublicBaseURL)
	}

	if c.ArchiveBucketURL == "" {
		return ErrEmptyArchiveBucket
	}

	if c.ConfirmTokenTTL <= 0 || c.ResetTokenTTL <= 0 {
		return ErrInvalidTokenTTL
	}

	if _, err := order.ParseZeroPolicy(string(c.ZeroPolicy)); err != nil {
		return err
	}

	return nil
}

func isAbsoluteURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Scheme != "" && u.Host != ""
}

func loadEnvString(key string, dst *string) {
	if s := os.Getenv(key); s != "" {
		*dst = s
	}
}

// loadEnvInt reads key from the environment, parses it as an integer, and
// sets *dst if the value is in the range (min, max]. Returns an error if
// the value cannot be parsed or falls outside the valid range
func loadEnvInt[T ~int | ~int64](key string, dst *T, min, max T) error {
	s := os.Getenv(key)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %q", key, s)
	}
	tv := T(v)
	if tv <= min || tv > max {
		return fmt.Errorf("invalid %s: %d out of range [%d, %d]",
			key, tv, min+1, max)
	}
	*dst = tv
	return nil
}

// loadEnvDuration reads key as a Go duration ("90s", "1h") and sets *dst
// if it is positive and no greater than max
func loadEnvDuration(key string, dst *time.Duration, max time.Duration) error {
	s := os.Getenv(key)
	if s == "" {
		return nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid %s: %q", key, s)
	}
	if d <= 0 || d > max {
		return fmt.Errorf("invalid %s: %s out of range (0, %s]", key, d, max)
	}
	*dst = d
	return nil
}
