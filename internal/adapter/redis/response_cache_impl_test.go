package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/character-explorer/internal/entity"
	"github.com/user/character-explorer/internal/repository"
)

func newTestRepo(t *testing.T) (*ResponseCacheRepoImpl, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewResponseCacheRepo(client), mr
}

func TestResponseCacheRepo_RoundTrip(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Get(ctx, "missing")
	require.ErrorIs(t, err, repository.ErrCacheMiss)

	storedAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	in := &entity.CachedResponse{
		Key:        "abc",
		URL:        "https://rickandmortyapi.com/api/character/1",
		Body:       []byte(`{"id":1}`),
		StoredAt:   storedAt,
		Revalidate: entity.IncrementalStaticInterval,
		Tags:       []string{"character-1"},
	}
	require.NoError(t, repo.Set(ctx, in))

	out, err := repo.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, in.URL, out.URL)
	assert.Equal(t, in.Body, out.Body)
	assert.True(t, storedAt.Equal(out.StoredAt))
	assert.Equal(t, in.Revalidate, out.Revalidate)
	assert.Equal(t, in.Tags, out.Tags)
}

func TestResponseCacheRepo_EntriesDoNotExpireInRedis(t *testing.T) {
	repo, mr := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, &entity.CachedResponse{Key: "k", Body: []byte("x"), Revalidate: time.Hour}))
	mr.FastForward(48 * time.Hour)

	_, err := repo.Get(ctx, "k")
	assert.NoError(t, err, "stale entries stay readable")
}

func TestResponseCacheRepo_InvalidateTag(t *testing.T) {
	repo, mr := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, &entity.CachedResponse{Key: "a", Tags: []string{"character-1"}}))
	require.NoError(t, repo.Set(ctx, &entity.CachedResponse{Key: "b", Tags: []string{"character-1", "characters"}}))
	require.NoError(t, repo.Set(ctx, &entity.CachedResponse{Key: "c", Tags: []string{"characters"}}))

	n, err := repo.InvalidateTag(ctx, "character-1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.False(t, mr.Exists(tagKeyPrefix+"character-1"))

	_, err = repo.Get(ctx, "a")
	assert.ErrorIs(t, err, repository.ErrCacheMiss)
	_, err = repo.Get(ctx, "c")
	assert.NoError(t, err)

	n, err = repo.InvalidateTag(ctx, "unknown")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestResponseCacheRepo_CorruptEntry(t *testing.T) {
	repo, mr := newTestRepo(t)
	require.NoError(t, mr.Set(responseKeyPrefix+"bad", "{"))

	_, err := repo.Get(context.Background(), "bad")
	require.Error(t, err)
	assert.NotErrorIs(t, err, repository.ErrCacheMiss)
}

func TestResponseCacheRepo_Ping(t *testing.T) {
	repo, mr := newTestRepo(t)
	require.NoError(t, repo.Ping(context.Background()))

	mr.Close()
	assert.Error(t, repo.Ping(context.Background()))
}
