package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/character-explorer/internal/entity"
	"github.com/user/character-explorer/internal/repository"
)

// newTestRepo connects to POSTGRES_TEST_URL; the test is skipped without it.
func newTestRepo(t *testing.T) *SnapshotRepoImpl {
	t.Helper()
	dsn := os.Getenv("POSTGRES_TEST_URL")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_URL not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	repo := NewSnapshotRepo(pool)
	require.NoError(t, repo.EnsureSchema(ctx))
	return repo
}

func TestSnapshotRepo_SaveFindDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	buildID := uuid.NewString()
	generatedAt := time.Now().UTC().Truncate(time.Second)

	_, err := repo.Find(ctx, buildID, "/")
	require.ErrorIs(t, err, repository.ErrSnapshotNotFound)

	require.NoError(t, repo.Save(ctx, &entity.PageSnapshot{
		BuildID: buildID, Path: "/", Body: []byte("<html>home</html>"), StatusCode: 200, GeneratedAt: generatedAt,
	}))
	require.NoError(t, repo.Save(ctx, &entity.PageSnapshot{
		BuildID: buildID, Path: "/character/1", Body: []byte("rick"), StatusCode: 200,
		Tags: []string{"character-1"}, GeneratedAt: generatedAt, Revalidate: entity.IncrementalStaticInterval,
	}))

	got, err := repo.Find(ctx, buildID, "/character/1")
	require.NoError(t, err)
	assert.Equal(t, "rick", string(got.Body))
	assert.Equal(t, []string{"character-1"}, got.Tags)
	assert.Equal(t, entity.IncrementalStaticInterval, got.Revalidate)
	assert.True(t, generatedAt.Equal(got.GeneratedAt))

	// upsert replaces the body
	require.NoError(t, repo.Save(ctx, &entity.PageSnapshot{
		BuildID: buildID, Path: "/", Body: []byte("<html>home v2</html>"), StatusCode: 200, GeneratedAt: generatedAt,
	}))
	got, err = repo.Find(ctx, buildID, "/")
	require.NoError(t, err)
	assert.Equal(t, "<html>home v2</html>", string(got.Body))
	assert.Empty(t, got.Tags)

	n, err := repo.DeleteByTag(ctx, buildID, "character-1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = repo.Find(ctx, buildID, "/character/1")
	assert.ErrorIs(t, err, repository.ErrSnapshotNotFound)
}
