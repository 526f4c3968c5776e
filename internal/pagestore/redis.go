package pagestore

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/teleperson/demo-generator/internal/errs"
)

// Redis keeps each page as a string value under <prefix><key>. Pages do not
// expire.
type Redis struct {
	client *redis.Client
	prefix string
}

var _ Store = (*Redis)(nil)

func NewRedis(client *redis.Client, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

func (s *Redis) Save(ctx context.Context, key, html string) error {
	if err := checkSaveKey(key); err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.prefix+key, html, 0).Err(); err != nil {
		return errs.Wrap(errs.IOFailure, err, "save prototype %s", key)
	}
	return nil
}

func (s *Redis) Load(ctx context.Context, key string) (string, error) {
	if err := checkLoadKey(key); err != nil {
		return "", err
	}
	html, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", notFound(key)
	}
	if err != nil {
		return "", errs.Wrap(errs.IOFailure, err, "load prototype %s", key)
	}
	return html, nil
}

// Close releases the underlying connection pool.
func (s *Redis) Close() error {
	return s.client.Close()
}
