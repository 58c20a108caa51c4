package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/user/character-explorer/internal/entity"
	"github.com/user/character-explorer/internal/repository"
)

const (
	responseKeyPrefix = "explorer:response:"
	tagKeyPrefix      = "explorer:tag:"
)

// ResponseCacheRepoImpl provides a concrete implementation for the
// ResponseCacheRepository interface using Redis strings for entries and
// Redis sets as the tag index.
type ResponseCacheRepoImpl struct {
	client redis.UniversalClient
}

var _ repository.ResponseCacheRepository = (*ResponseCacheRepoImpl)(nil)

// NewResponseCacheRepo creates a new instance of ResponseCacheRepoImpl.
func NewResponseCacheRepo(client redis.UniversalClient) *ResponseCacheRepoImpl {
	return &ResponseCacheRepoImpl{client: client}
}

func (r *ResponseCacheRepoImpl) responseKey(key string) string {
	return responseKeyPrefix + key
}

func (r *ResponseCacheRepoImpl) tagKey(tag string) string {
	return tagKeyPrefix + tag
}

// Get loads and decodes the entry stored under key.
func (r *ResponseCacheRepoImpl) Get(ctx context.Context, key string) (*entity.CachedResponse, error) {
	data, err := r.client.Get(ctx, r.responseKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrCacheMiss
		}
		return nil, fmt.Errorf("get cached response: %w", err)
	}

	var entry entity.CachedResponse
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("decode cached response: %w", err)
	}
	return &entry, nil
}

// Set stores the entry without a Redis expiry; staleness is decided by the
// caller from StoredAt and Revalidate so stale entries can still be served.
func (r *ResponseCacheRepoImpl) Set(ctx context.Context, entry *entity.CachedResponse) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cached response: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.responseKey(entry.Key), data, 0)
		for _, tag := range entry.Tags {
			pipe.SAdd(ctx, r.tagKey(tag), entry.Key)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("set cached response: %w", err)
	}
	return nil
}

// InvalidateTag deletes every entry indexed under tag, then the index itself.
func (r *ResponseCacheRepoImpl) InvalidateTag(ctx context.Context, tag string) (int, error) {
	keys, err := r.client.SMembers(ctx, r.tagKey(tag)).Result()
	if err != nil {
		return 0, fmt.Errorf("read tag index: %w", err)
	}
	if len(keys) == 0 {
		return 0, nil
	}

	redisKeys := make([]string, 0, len(keys))
	for _, k := range keys {
		redisKeys = append(redisKeys, r.responseKey(k))
	}

	var deleted *redis.IntCmd
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		deleted = pipe.Del(ctx, redisKeys...)
		pipe.Del(ctx, r.tagKey(tag))
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("invalidate tag %s: %w", tag, err)
	}
	return int(deleted.Val()), nil
}

func (r *ResponseCacheRepoImpl) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
