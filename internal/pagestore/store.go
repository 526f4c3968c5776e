// Package pagestore persists rendered demo pages keyed by slug.
package pagestore

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/teleperson/demo-generator/internal/config"
	"github.com/teleperson/demo-generator/internal/errs"
	"github.com/teleperson/demo-generator/internal/slug"
)

// Store saves and loads rendered pages. Saving an existing key overwrites it.
type Store interface {
	Save(ctx context.Context, key, html string) error
	Load(ctx context.Context, key string) (string, error)
}

// New returns the Store selected by cfg.Storage.Driver.
func New(cfg *config.Config, logger *zap.Logger) (Store, error) {
	switch cfg.Storage.Driver {
	case "", "fs":
		logger.Info("page store: filesystem", zap.String("dir", cfg.Storage.Dir))
		return NewFS(cfg.Storage.Dir), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Storage.RedisAddr,
			Password: cfg.Storage.RedisPassword,
			DB:       cfg.Storage.RedisDB,
		})
		logger.Info("page store: redis", zap.String("addr", cfg.Storage.RedisAddr), zap.String("prefix", cfg.Storage.RedisPrefix))
		return NewRedis(client, cfg.Storage.RedisPrefix), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// checkSaveKey rejects keys that are not slugs.
func checkSaveKey(key string) error {
	if err := slug.Validate(key); err != nil {
		return errs.Wrap(errs.BadRequest, err, "invalid page key %q", key)
	}
	return nil
}

// checkLoadKey treats a key that could never have been saved as absent.
func checkLoadKey(key string) error {
	if key == "" {
		return errs.New(errs.BadRequest, "Prototype ID is required")
	}
	if slug.Validate(key) != nil {
		return notFound(key)
	}
	return nil
}

func notFound(key string) error {
	return errs.New(errs.NotFound, "Prototype not found: %s", key)
}
