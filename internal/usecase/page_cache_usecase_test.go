package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/character-explorer/internal/adapter/memory"
	"github.com/user/character-explorer/internal/entity"
	"github.com/user/character-explorer/internal/repository"
	"github.com/user/character-explorer/internal/view"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func countingRoute(path string, directive entity.CacheDirective, renders *atomic.Int32) Route {
	return Route{
		Path:      path,
		Directive: directive,
		Render: func(context.Context) (*RenderedPage, error) {
			n := renders.Add(1)
			return &RenderedPage{Body: []byte{byte('0' + n)}, Tags: []string{"tag-" + path}}, nil
		},
	}
}

func TestPageCache_StaticServedUntilRebuild(t *testing.T) {
	clk := &clock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	pc := NewPageCacheUseCase(memory.NewSnapshotRepo(), "build-1", nil, clk.Now)

	var renders atomic.Int32
	route := countingRoute("/", entity.StaticGeneration(), &renders)

	first, err := pc.Serve(context.Background(), route)
	require.NoError(t, err)
	clk.Advance(365 * 24 * time.Hour)
	second, err := pc.Serve(context.Background(), route)
	require.NoError(t, err)

	assert.Equal(t, first.Body, second.Body)
	assert.EqualValues(t, 1, renders.Load())
	assert.Equal(t, "build-1", second.BuildID)
	assert.Zero(t, second.Revalidate)
}

func TestPageCache_StaleServedWhileRegenerating(t *testing.T) {
	clk := &clock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	repo := memory.NewSnapshotRepo()
	pc := NewPageCacheUseCase(repo, "build-1", nil, clk.Now)

	var renders atomic.Int32
	route := countingRoute("/character/1", entity.IncrementalStatic(), &renders)

	first, err := pc.Serve(context.Background(), route)
	require.NoError(t, err)
	assert.Equal(t, entity.IncrementalStaticInterval, first.Revalidate)

	clk.Advance(entity.IncrementalStaticInterval - time.Minute)
	fresh, err := pc.Serve(context.Background(), route)
	require.NoError(t, err)
	assert.Equal(t, first.Body, fresh.Body)
	assert.EqualValues(t, 1, renders.Load())

	clk.Advance(2 * time.Minute)
	stale, err := pc.Serve(context.Background(), route)
	require.NoError(t, err)
	assert.Equal(t, first.Body, stale.Body, "stale page is served immediately")

	pc.WaitForRefreshes()
	assert.EqualValues(t, 2, renders.Load())

	stored, err := repo.Find(context.Background(), "build-1", "/character/1")
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), stored.Body)
}

func TestPageCache_FailedRenderIsNotStored(t *testing.T) {
	repo := memory.NewSnapshotRepo()
	pc := NewPageCacheUseCase(repo, "b", nil, nil)

	route := Route{
		Path:      "/character/404",
		Directive: entity.IncrementalStatic(),
		Render: func(context.Context) (*RenderedPage, error) {
			return nil, repository.ErrNotFound
		},
	}
	_, err := pc.Serve(context.Background(), route)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = repo.Find(context.Background(), "b", "/character/404")
	assert.ErrorIs(t, err, repository.ErrSnapshotNotFound)
}

func TestPageCache_NoStoreBypasses(t *testing.T) {
	repo := memory.NewSnapshotRepo()
	pc := NewPageCacheUseCase(repo, "b", nil, nil)

	var renders atomic.Int32
	route := countingRoute("/search", entity.NoStore(), &renders)
	for i := 0; i < 3; i++ {
		_, err := pc.Serve(context.Background(), route)
		require.NoError(t, err)
	}
	assert.EqualValues(t, 3, renders.Load())

	_, err := repo.Find(context.Background(), "b", "/search")
	assert.ErrorIs(t, err, repository.ErrSnapshotNotFound)
}

func TestPageCache_InvalidateTag(t *testing.T) {
	pc := NewPageCacheUseCase(memory.NewSnapshotRepo(), "b", nil, nil)

	var renders atomic.Int32
	route := countingRoute("/character/1", entity.IncrementalStatic(), &renders)
	_, err := pc.Serve(context.Background(), route)
	require.NoError(t, err)

	n, err := pc.InvalidateTag(context.Background(), "tag-/character/1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = pc.Serve(context.Background(), route)
	require.NoError(t, err)
	assert.EqualValues(t, 2, renders.Load())
}

func TestPages_RenderCharacterRoutes(t *testing.T) {
	repo := newFakeCharacterRepo(character(1, "Rick Sanchez"))
	catalog := NewCatalogUseCase(repo, nil)
	pages := NewPagesUseCase(catalog, view.MustNewRenderer(), entity.IncrementalStatic())

	byName := pages.CharacterByName("rick%20sanchez")
	assert.Equal(t, "/character/name/rick%20sanchez", byName.Path)
	assert.Equal(t, entity.CacheRevalidate, byName.Directive.Mode)

	page, err := byName.Render(context.Background())
	require.NoError(t, err)
	assert.Contains(t, string(page.Body), "Rick Sanchez")
	assert.ElementsMatch(t, []string{"character-name-rick sanchez", "character-1"}, page.Tags)

	home := pages.Home()
	assert.Equal(t, entity.CacheForce, home.Directive.Mode)
	page, err = home.Render(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{HomeTag}, page.Tags)

	_, err = pages.CharacterByID("nope").Render(context.Background())
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestPrerender_CountsFailures(t *testing.T) {
	repo := newFakeCharacterRepo(character(1, "Rick Sanchez"), character(2, "Morty Smith"), character(3, "Summer Smith"))
	repo.failIDs[2] = &repository.NetworkError{URL: "x", Err: errors.New("reset")}

	snapshots := memory.NewSnapshotRepo()
	catalog := NewCatalogUseCase(repo, nil)
	pages := NewPagesUseCase(catalog, view.MustNewRenderer(), entity.IncrementalStatic())
	cache := NewPageCacheUseCase(snapshots, "build-7", nil, nil)

	report, err := NewPrerenderUseCase(catalog, pages, cache, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "build-7", report.BuildID)
	// home + 3 ids + 3 names, one id fails.
	assert.Equal(t, 6, report.Rendered)
	assert.Equal(t, 1, report.Failed)

	for _, path := range []string{"/", "/character/1", "/character/3", "/character/name/Morty%20Smith"} {
		_, err := snapshots.Find(context.Background(), "build-7", path)
		assert.NoError(t, err, path)
	}
	_, err = snapshots.Find(context.Background(), "build-7", "/character/2")
	assert.ErrorIs(t, err, repository.ErrSnapshotNotFound)
}

func TestPrerender_StopsOnCancel(t *testing.T) {
	repo := newFakeCharacterRepo(character(1, "Rick Sanchez"))
	catalog := NewCatalogUseCase(repo, nil)
	pages := NewPagesUseCase(catalog, view.MustNewRenderer(), entity.IncrementalStatic())
	cache := NewPageCacheUseCase(memory.NewSnapshotRepo(), "b", nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report, err := NewPrerenderUseCase(catalog, pages, cache, nil).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, report.Rendered)
}
