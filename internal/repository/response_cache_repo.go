package repository

import (
	"context"
	"errors"

	"github.com/user/character-explorer/internal/entity"
)

// ErrCacheMiss is returned when no entry exists for a key.
var ErrCacheMiss = errors.New("cache miss")

// ResponseCacheRepository stores upstream response bodies by key.
type ResponseCacheRepository interface {
	// Get returns the entry for key, or ErrCacheMiss.
	Get(ctx context.Context, key string) (*entity.CachedResponse, error)
	// Set stores or replaces an entry and indexes it under its tags.
	Set(ctx context.Context, entry *entity.CachedResponse) error
	// InvalidateTag drops every entry carrying tag and reports how many were removed.
	InvalidateTag(ctx context.Context, tag string) (int, error)
	// Ping checks the backing store.
	Ping(ctx context.Context) error
}
