package preferences

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/johnrirwin/newsfeed/internal/models"
)

const (
	defaultRedisPrefix  = "newsfeed:"
	defaultRedisTimeout = 2 * time.Second
)

// RedisStore keeps one profile's preferences as a JSON value without expiry.
type RedisStore struct {
	client  *redis.Client
	prefix  string
	profile string
}

func NewRedisStore(client *redis.Client, prefix, profile string) *RedisStore {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	profile = strings.TrimSpace(profile)
	if profile == "" {
		profile = DefaultProfile
	}
	return &RedisStore{client: client, prefix: prefix, profile: profile}
}

func (s *RedisStore) key() string {
	return s.prefix + "preferences:" + s.profile
}

func (s *RedisStore) Read(ctx context.Context) (models.UserPreferences, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultRedisTimeout)
	defer cancel()

	payload, err := s.client.Get(ctx, s.key()).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.DefaultPreferences(), nil
	}
	if err != nil {
		return models.UserPreferences{}, fmt.Errorf("failed to read preferences: %w", err)
	}

	var prefs models.UserPreferences
	if err := json.Unmarshal(payload, &prefs); err != nil {
		return models.UserPreferences{}, fmt.Errorf("failed to decode preferences: %w", err)
	}
	return Normalize(prefs), nil
}

func (s *RedisStore) Write(ctx context.Context, prefs models.UserPreferences) error {
	payload, err := json.Marshal(Normalize(prefs))
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultRedisTimeout)
	defer cancel()

	if err := s.client.Set(ctx, s.key(), payload, 0).Err(); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	return nil
}

var _ Store = (*RedisStore)(nil)
