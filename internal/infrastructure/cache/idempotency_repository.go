package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"

	"github.com/oksasatya/go-wager-service/internal/domain/repository"
	"github.com/oksasatya/go-wager-service/pkg/helpers"
)

const idempotencyPrefix = "idempotency:"

// IdempotencyRepository keeps replayable responses in Redis under
// "idempotency:<scope>" and in-flight claims under "idempotency:<scope>:lock".
type IdempotencyRepository struct {
	rdb redis.Cmdable
}

func NewIdempotencyRepository(rdb redis.Cmdable) *IdempotencyRepository {
	return &IdempotencyRepository{rdb: rdb}
}

func (r *IdempotencyRepository) Get(ctx context.Context, key string) (*repository.CachedResponse, error) {
	var resp repository.CachedResponse
	found, err := helpers.RedisGetJSON(ctx, r.rdb, idempotencyPrefix+key, &resp)
	if err != nil {
		return nil, oops.Code("IDEMPOTENCY_GET_FAILED").With("key", key).Wrap(err)
	}
	if !found {
		return nil, nil
	}
	return &resp, nil
}

func (r *IdempotencyRepository) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := r.rdb.SetNX(ctx, idempotencyPrefix+key+":lock", 1, ttl).Result()
	if err != nil {
		return false, oops.Code("IDEMPOTENCY_RESERVE_FAILED").With("key", key).Wrap(err)
	}
	return ok, nil
}

func (r *IdempotencyRepository) Save(ctx context.Context, key string, resp repository.CachedResponse, ttl time.Duration) error {
	if err := helpers.RedisSetJSON(ctx, r.rdb, idempotencyPrefix+key, resp, ttl); err != nil {
		return oops.Code("IDEMPOTENCY_SAVE_FAILED").With("key", key).Wrap(err)
	}
	return nil
}

func (r *IdempotencyRepository) Release(ctx context.Context, key string) error {
	if err := r.rdb.Del(ctx, idempotencyPrefix+key+":lock").Err(); err != nil {
		return oops.Code("IDEMPOTENCY_RELEASE_FAILED").With("key", key).Wrap(err)
	}
	return nil
}

var _ repository.IdempotencyRepository = (*IdempotencyRepository)(nil)
