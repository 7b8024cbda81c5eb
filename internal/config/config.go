package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Config holds all application configuration
type Config struct {
	APIKeys     APIKeysConfig
	Feed        FeedConfig
	HTTP        HTTPConfig
	Cache       CacheConfig
	Preferences PreferencesConfig
	Database    DatabaseConfig
	Logging     LoggingConfig
}

// APIKeysConfig holds the provider credentials. An empty key disables the
// provider without failing the feed.
type APIKeysConfig struct {
	NewsAPI string
	GNews   string
	NYTimes string
}

// FeedConfig holds aggregation settings
type FeedConfig struct {
	PageSize        int
	ProvidersConfig string
}

// HTTPConfig holds outbound request settings
type HTTPConfig struct {
	Timeout      time.Duration
	RateLimitDur time.Duration
}

// CacheConfig holds cache configuration
type CacheConfig struct {
	Backend       string // "none", "memory" or "redis"
	TTL           time.Duration
	RedisAddr     string
	RedisPassword string
	RedisPrefix   string
}

// PreferencesConfig selects where user preferences live
type PreferencesConfig struct {
	Backend string // "file", "memory", "redis" or "postgres"
	Path    string
	Profile string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string
}

var (
	cacheBackends       = []string{"none", "memory", "redis"}
	preferencesBackends = []string{"file", "memory", "redis", "postgres"}
)

// Flags are the command line values before environment overrides.
type Flags struct {
	envFile         *string
	pageSize        *int
	providersConfig *string
	httpTimeout     *time.Duration
	rateLimitDur    *time.Duration
	cacheBackend    *string
	cacheTTL        *time.Duration
	redisAddr       *string
	prefsBackend    *string
	prefsPath       *string
	prefsProfile    *string
	logLevel        *string
	dbHost          *string
	dbPort          *int
	dbUser          *string
	dbPassword      *string
	dbName          *string
	dbSSLMode       *string

	envFileSet bool
	fs         *pflag.FlagSet
}

// BindFlags defines every configuration flag on fs.
func BindFlags(fs *pflag.FlagSet) *Flags {
	return &Flags{
		fs:              fs,
		envFile:         fs.String("env-file", ".env", "Dotenv file loaded before reading the environment"),
		pageSize:        fs.Int("page-size", 12, "Articles requested from each provider per page"),
		providersConfig: fs.String("providers-config", "", "Path to a providers file (JSON or YAML)"),
		httpTimeout:     fs.Duration("http-timeout", 30*time.Second, "Timeout for provider requests"),
		rateLimitDur:    fs.Duration("rate-limit", time.Second, "Minimum delay between requests to same host"),
		cacheBackend:    fs.String("cache-backend", "memory", "Cache backend: none, memory or redis"),
		cacheTTL:        fs.Duration("cache-ttl", 5*time.Minute, "Cache TTL for feed pages"),
		redisAddr:       fs.String("redis-addr", "localhost:6379", "Redis server address"),
		prefsBackend:    fs.String("preferences-backend", "file", "Preferences backend: file, memory, redis or postgres"),
		prefsPath:       fs.String("preferences-path", "", "Preferences file path (file backend)"),
		prefsProfile:    fs.String("profile", "default", "Preferences profile name"),
		logLevel:        fs.String("log-level", "warn", "Log level (debug, info, warn, error)"),
		dbHost:          fs.String("db-host", "localhost", "PostgreSQL host"),
		dbPort:          fs.Int("db-port", 5432, "PostgreSQL port"),
		dbUser:          fs.String("db-user", "postgres", "PostgreSQL user"),
		dbPassword:      fs.String("db-password", "postgres", "PostgreSQL password"),
		dbName:          fs.String("db-name", "newsfeed", "PostgreSQL database name"),
		dbSSLMode:       fs.String("db-sslmode", "disable", "PostgreSQL SSL mode"),
	}
}

// Load parses args into a fresh flag set and resolves the configuration.
func Load(args []string) (*Config, error) {
	fs := pflag.NewFlagSet("newsfeed", pflag.ContinueOnError)
	flags := BindFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return flags.Resolve()
}

// Resolve loads the dotenv file, applies environment overrides and
// validates the result. Variables already in the environment win over the
// dotenv file, and the environment wins over flags.
func (f *Flags) Resolve() (*Config, error) {
	if err := loadEnvFile(*f.envFile, f.fs != nil && f.fs.Changed("env-file")); err != nil {
		return nil, err
	}

	applyEnvOverrides(f)

	cfg := &Config{
		APIKeys: APIKeysConfig{
			NewsAPI: os.Getenv("NEWSAPI_KEY"),
			GNews:   os.Getenv("GNEWS_KEY"),
			NYTimes: os.Getenv("NYTIMES_KEY"),
		},
		Feed: FeedConfig{
			PageSize:        *f.pageSize,
			ProvidersConfig: *f.providersConfig,
		},
		HTTP: HTTPConfig{
			Timeout:      *f.httpTimeout,
			RateLimitDur: *f.rateLimitDur,
		},
		Cache: CacheConfig{
			Backend:       strings.ToLower(*f.cacheBackend),
			TTL:           *f.cacheTTL,
			RedisAddr:     *f.redisAddr,
			RedisPassword: os.Getenv("REDIS_PASSWORD"),
			RedisPrefix:   getEnvOrDefault("REDIS_PREFIX", "newsfeed:"),
		},
		Preferences: PreferencesConfig{
			Backend: strings.ToLower(*f.prefsBackend),
			Path:    *f.prefsPath,
			Profile: *f.prefsProfile,
		},
		Database: DatabaseConfig{
			Host:     *f.dbHost,
			Port:     *f.dbPort,
			User:     *f.dbUser,
			Password: *f.dbPassword,
			Database: *f.dbName,
			SSLMode:  *f.dbSSLMode,
		},
		Logging: LoggingConfig{
			Level: *f.logLevel,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the application cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.Feed.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("page size must be positive, got %d", c.Feed.PageSize))
	}
	if !oneOf(c.Cache.Backend, cacheBackends) {
		errs = append(errs, fmt.Errorf("unknown cache backend %q (want one of %s)", c.Cache.Backend, strings.Join(cacheBackends, ", ")))
	}
	if !oneOf(c.Preferences.Backend, preferencesBackends) {
		errs = append(errs, fmt.Errorf("unknown preferences backend %q (want one of %s)", c.Preferences.Backend, strings.Join(preferencesBackends, ", ")))
	}
	if c.HTTP.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("http timeout must be positive, got %s", c.HTTP.Timeout))
	}
	if c.HTTP.RateLimitDur < 0 {
		errs = append(errs, fmt.Errorf("rate limit must not be negative, got %s", c.HTTP.RateLimitDur))
	}
	return errors.Join(errs...)
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

// loadEnvFile reads a dotenv file without overriding the environment. A
// missing default file is ignored; a missing explicit one is an error.
func loadEnvFile(path string, explicit bool) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return nil
	}
	return fmt.Errorf("failed to load env file %s: %w", path, err)
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func applyEnvOverrides(f *Flags) {
	if v := os.Getenv("NEWSFEED_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*f.pageSize = n
		}
	}
	if v := os.Getenv("NEWSFEED_PROVIDERS_CONFIG"); v != "" {
		*f.providersConfig = v
	}
	if v := os.Getenv("HTTP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*f.httpTimeout = d
		}
	}
	if v := os.Getenv("RATE_LIMIT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*f.rateLimitDur = d
		}
	}
	if v := os.Getenv("CACHE_BACKEND"); v != "" {
		*f.cacheBackend = v
	}
	if v := os.Getenv("CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*f.cacheTTL = d
		}
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		*f.redisAddr = v
	}
	if v := os.Getenv("PREFERENCES_BACKEND"); v != "" {
		*f.prefsBackend = v
	}
	if v := os.Getenv("PREFERENCES_PATH"); v != "" {
		*f.prefsPath = v
	}
	if v := os.Getenv("PREFERENCES_PROFILE"); v != "" {
		*f.prefsProfile = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		*f.logLevel = v
	}
	if v := os.Getenv("DB_HOST"); v != "" {
		*f.dbHost = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			*f.dbPort = p
		}
	}
	if v := os.Getenv("DB_USER"); v != "" {
		*f.dbUser = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		*f.dbPassword = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		*f.dbName = v
	}
	if v := os.Getenv("DB_SSLMODE"); v != "" {
		*f.dbSSLMode = v
	}
}
