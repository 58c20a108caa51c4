package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/user/character-explorer/internal/entity"
	"github.com/user/character-explorer/internal/repository"
)

// ResponseCacheRepoImpl is an in-process ResponseCacheRepository. Entries
// live until invalidated or the process exits.
type ResponseCacheRepoImpl struct {
	mu      sync.RWMutex
	entries map[string]*entity.CachedResponse
	tags    map[string]map[string]struct{}
}

var _ repository.ResponseCacheRepository = (*ResponseCacheRepoImpl)(nil)

// NewResponseCacheRepo creates an empty in-memory response cache.
func NewResponseCacheRepo() *ResponseCacheRepoImpl {
	return &ResponseCacheRepoImpl{
		entries: make(map[string]*entity.CachedResponse),
		tags:    make(map[string]map[string]struct{}),
	}
}

func (r *ResponseCacheRepoImpl) Get(_ context.Context, key string) (*entity.CachedResponse, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[key]
	if !ok {
		return nil, repository.ErrCacheMiss
	}
	cp := *entry
	cp.Body = slices.Clone(entry.Body)
	cp.Tags = slices.Clone(entry.Tags)
	return &cp, nil
}

func (r *ResponseCacheRepoImpl) Set(_ context.Context, entry *entity.CachedResponse) error {
	cp := *entry
	cp.Body = slices.Clone(entry.Body)
	cp.Tags = slices.Clone(entry.Tags)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[entry.Key] = &cp
	for _, tag := range entry.Tags {
		keys, ok := r.tags[tag]
		if !ok {
			keys = make(map[string]struct{})
			r.tags[tag] = keys
		}
		keys[entry.Key] = struct{}{}
	}
	return nil
}

func (r *ResponseCacheRepoImpl) InvalidateTag(_ context.Context, tag string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for key := range r.tags[tag] {
		if _, ok := r.entries[key]; ok {
			delete(r.entries, key)
			removed++
		}
	}
	delete(r.tags, tag)
	return removed, nil
}

func (r *ResponseCacheRepoImpl) Ping(context.Context) error { return nil }
