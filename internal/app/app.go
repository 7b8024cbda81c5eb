package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/johnrirwin/newsfeed/internal/aggregator"
	"github.com/johnrirwin/newsfeed/internal/cache"
	"github.com/johnrirwin/newsfeed/internal/config"
	"github.com/johnrirwin/newsfeed/internal/database"
	"github.com/johnrirwin/newsfeed/internal/feed"
	"github.com/johnrirwin/newsfeed/internal/logging"
	"github.com/johnrirwin/newsfeed/internal/models"
	"github.com/johnrirwin/newsfeed/internal/preferences"
	"github.com/johnrirwin/newsfeed/internal/ratelimit"
	"github.com/johnrirwin/newsfeed/internal/sources"
)

// App holds all application dependencies
type App struct {
	Config      *config.Config
	Logger      *logging.Logger
	Registry    *sources.Registry
	Aggregator  *aggregator.Aggregator
	Cache       cache.Cache
	Preferences preferences.Store

	redis    *redis.Client
	db       *database.DB
	memCache *cache.MemoryCache
}

// New creates and initializes a new App instance
func New(cfg *config.Config) (*App, error) {
	return NewWithLogger(cfg, logging.New(logging.ParseLevel(cfg.Logging.Level)))
}

// NewWithLogger is New with a caller supplied logger.
func NewWithLogger(cfg *config.Config, logger *logging.Logger) (*App, error) {
	app := &App{Config: cfg, Logger: logger}

	limiter := ratelimit.New(cfg.HTTP.RateLimitDur)
	app.Registry = sources.NewRegistry(app.initAdapters(limiter)...)
	app.Logger.Info("Registered provider adapters", logging.WithField("count", len(app.Registry.List())))

	app.Aggregator = aggregator.New(app.Registry, app.Logger, aggregator.WithDefaultPageSize(cfg.Feed.PageSize))

	app.Cache = app.initCache()

	store, err := app.initPreferences()
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Preferences = store

	return app, nil
}

// SearchSession starts a paged keyword search.
func (a *App) SearchSession(filters models.SearchFilters) *feed.Session {
	return feed.NewSearchSession(a.Aggregator, filters, a.sessionOptions()...)
}

// PersonalizedSession reads the stored preferences and starts a paged
// personalized feed.
func (a *App) PersonalizedSession(ctx context.Context, hints models.PageHints) (*feed.Session, error) {
	prefs, err := a.Preferences.Read(ctx)
	if err != nil {
		return nil, err
	}
	return feed.NewPersonalizedSession(a.Aggregator, prefs, hints, a.sessionOptions()...), nil
}

func (a *App) sessionOptions() []feed.Option {
	opts := []feed.Option{feed.WithLogger(a.Logger)}
	if a.Cache != nil {
		opts = append(opts, feed.WithCache(a.Cache, a.Config.Cache.TTL))
	}
	return opts
}

// Close releases every connection the app opened.
func (a *App) Close() error {
	var errs []error

	if a.memCache != nil {
		a.memCache.Stop()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.Logger.Error("Redis close error", logging.WithField("error", err.Error()))
			errs = append(errs, err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.Logger.Error("Database close error", logging.WithField("error", err.Error()))
			errs = append(errs, err)
		}
	}
	a.Logger.Sync()

	return errors.Join(errs...)
}

func (a *App) initAdapters(limiter *ratelimit.Limiter) []sources.Adapter {
	fetcherConfig := sources.DefaultConfig()
	fetcherConfig.Timeout = a.Config.HTTP.Timeout

	keys := sources.APIKeys{
		NewsAPI: a.Config.APIKeys.NewsAPI,
		GNews:   a.Config.APIKeys.GNews,
		NYTimes: a.Config.APIKeys.NYTimes,
	}

	providersConfig := a.loadProvidersConfig()
	adapters := sources.BuiltinAdapters(keys, providersConfig, limiter, fetcherConfig, a.Logger)
	if providersConfig != nil {
		adapters = append(adapters, sources.CreateAdaptersFromConfig(providersConfig, limiter, fetcherConfig, a.Logger)...)
	}
	return adapters
}

func (a *App) loadProvidersConfig() *sources.ProvidersConfig {
	configPath := a.Config.Feed.ProvidersConfig
	if configPath == "" {
		configPath = sources.FindProvidersConfig()
	}
	if configPath == "" {
		a.Logger.Debug("No providers file found, using built-in providers only")
		return nil
	}

	providersConfig, err := sources.LoadProvidersConfig(configPath)
	if err != nil {
		a.Logger.Warn("Failed to load providers config, using built-in providers only", logging.WithFields(map[string]interface{}{
			"path":  configPath,
			"error": err.Error(),
		}))
		return nil
	}

	a.Logger.Info("Loaded providers configuration", logging.WithFields(map[string]interface{}{
		"path":  configPath,
		"feeds": len(providersConfig.Feeds),
	}))
	return providersConfig
}

func (a *App) initCache() cache.Cache {
	switch a.Config.Cache.Backend {
	case "none":
		a.Logger.Info("Result cache disabled")
		return nil
	case "redis":
		a.Logger.Info("Using Redis cache backend", logging.WithField("addr", a.Config.Cache.RedisAddr))
		client, err := a.redisClient()
		if err != nil {
			a.Logger.Error("Failed to connect to Redis, falling back to memory cache", logging.WithField("error", err.Error()))
			return a.memoryCache()
		}
		return cache.NewRedisWithClient(client, a.Config.Cache.RedisPrefix, a.Config.Cache.TTL)
	default:
		a.Logger.Info("Using in-memory cache backend")
		return a.memoryCache()
	}
}

func (a *App) memoryCache() cache.Cache {
	a.memCache = cache.NewMemory(a.Config.Cache.TTL)
	return a.memCache
}

// redisClient connects once and shares the pool between the cache and the
// preferences store.
func (a *App) redisClient() (*redis.Client, error) {
	if a.redis != nil {
		return a.redis, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     a.Config.Cache.RedisAddr,
		Password: a.Config.Cache.RedisPassword,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", a.Config.Cache.RedisAddr, err)
	}

	a.redis = client
	return client, nil
}

// initPreferences fails instead of falling back, so saved preferences are
// never silently written somewhere else.
func (a *App) initPreferences() (preferences.Store, error) {
	profile := a.Config.Preferences.Profile

	switch a.Config.Preferences.Backend {
	case "memory":
		return preferences.NewMemoryStore(), nil

	case "redis":
		client, err := a.redisClient()
		if err != nil {
			return nil, fmt.Errorf("preferences backend: %w", err)
		}
		a.Logger.Info("Using Redis preferences store", logging.WithField("profile", profile))
		return preferences.NewRedisStore(client, a.Config.Cache.RedisPrefix, profile), nil

	case "postgres":
		dbConfig := database.DefaultConfig()
		dbConfig.Host = a.Config.Database.Host
		dbConfig.Port = a.Config.Database.Port
		dbConfig.User = a.Config.Database.User
		dbConfig.Password = a.Config.Database.Password
		dbConfig.Database = a.Config.Database.Database
		dbConfig.SSLMode = a.Config.Database.SSLMode

		db, err := database.New(dbConfig)
		if err != nil {
			return nil, fmt.Errorf("preferences backend: %w", err)
		}
		a.db = db

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := db.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("preferences backend: %w", err)
		}
		a.Logger.Info("Using PostgreSQL preferences store", logging.WithField("profile", profile))
		return preferences.NewPostgresStore(db.DB, profile), nil

	default:
		path := a.Config.Preferences.Path
		if path == "" {
			p, err := preferences.DefaultPath(profile)
			if err != nil {
				return nil, fmt.Errorf("preferences path: %w", err)
			}
			path = p
		}
		a.Logger.Debug("Using file preferences store", logging.WithField("path", path))
		return preferences.NewFileStore(path, a.Logger), nil
	}
}
