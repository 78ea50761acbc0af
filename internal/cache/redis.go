package cache

import (
	"context"
	stderrors "errors"

	"site-traffic-workers/internal/common/errors"
	"site-traffic-workers/internal/models"

	"github.com/redis/go-redis/v9"
)

// Redis stores entries as JSON strings with a native TTL matching expiresAt.
type Redis struct {
	client redis.Cmdable
	opts   Options
}

func NewRedis(client redis.Cmdable, opts Options) *Redis {
	return &Redis{client: client, opts: opts.withDefaults()}
}

func (r *Redis) Get(ctx context.Context, q models.AreaQuery) (*models.AreaAnalysis, bool, error) {
	now := r.opts.Now()
	key := Key(r.opts.KeyPrefix, q, now)

	data, err := r.client.Get(ctx, key).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.NewCacheReadFailedError(key, err)
	}

	e, err := decodeEntry(data)
	if err != nil {
		return nil, false, errors.NewCacheReadFailedError(key, err)
	}
	a, live := e.hit(now)
	return a, live, nil
}

func (r *Redis) Put(ctx context.Context, q models.AreaQuery, a *models.AreaAnalysis) error {
	now := r.opts.Now()
	key := Key(r.opts.KeyPrefix, q, now)

	data, err := encodeEntry(newEntry(a, now, r.opts.TTL))
	if err != nil {
		return errors.NewCacheWriteFailedError(key, err)
	}
	if err := r.client.Set(ctx, key, data, r.opts.TTL).Err(); err != nil {
		return errors.NewCacheWriteFailedError(key, err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, q models.AreaQuery) error {
	key := Key(r.opts.KeyPrefix, q, r.opts.Now())
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return errors.NewCacheWriteFailedError(key, err)
	}
	return nil
}
