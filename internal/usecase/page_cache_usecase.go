package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/user/character-explorer/internal/entity"
	"github.com/user/character-explorer/internal/repository"
	"github.com/user/character-explorer/pkg/metrics"
)

const regenerateTimeout = 30 * time.Second

// PageCache serves rendered pages from the snapshot store of one build.
type PageCache interface {
	// Serve returns the snapshot for route, rendering it when missing.
	// Stale regenerated pages are served while a refresh runs.
	Serve(ctx context.Context, route Route) (*entity.PageSnapshot, error)
	// Regenerate renders route and stores the result unconditionally.
	Regenerate(ctx context.Context, route Route) (*entity.PageSnapshot, error)
	InvalidateTag(ctx context.Context, tag string) (int, error)
	BuildID() string
	WaitForRefreshes()
}

type pageCacheUseCase struct {
	snapshotRepo repository.SnapshotRepository
	buildID      string
	logger       *zap.Logger
	now          func() time.Time

	group     singleflight.Group
	refreshes sync.WaitGroup
}

// NewPageCacheUseCase creates a PageCache storing snapshots under buildID.
func NewPageCacheUseCase(snapshotRepo repository.SnapshotRepository, buildID string, logger *zap.Logger, now func() time.Time) PageCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &pageCacheUseCase{
		snapshotRepo: snapshotRepo,
		buildID:      buildID,
		logger:       logger,
		now:          now,
	}
}

func (uc *pageCacheUseCase) BuildID() string { return uc.buildID }

func (uc *pageCacheUseCase) WaitForRefreshes() { uc.refreshes.Wait() }

func (uc *pageCacheUseCase) Serve(ctx context.Context, route Route) (*entity.PageSnapshot, error) {
	if route.Directive.Mode == entity.CacheNoStore {
		metrics.ObserveCache("page", "bypass")
		return uc.renderSnapshot(ctx, route)
	}

	snap, err := uc.snapshotRepo.Find(ctx, uc.buildID, route.Path)
	switch {
	case err == nil:
		if route.Directive.Mode == entity.CacheForce || snap.Fresh(uc.now()) {
			metrics.ObserveCache("page", "hit")
			return snap, nil
		}
		metrics.ObserveCache("page", "stale")
		uc.regenerateInBackground(route)
		return snap, nil
	case errors.Is(err, repository.ErrSnapshotNotFound):
		metrics.ObserveCache("page", "miss")
	default:
		metrics.ObserveCache("page", "error")
		uc.logger.Warn("snapshot read failed", zap.String("path", route.Path), zap.Error(err))
	}

	v, err, _ := uc.group.Do(route.Path, func() (any, error) {
		return uc.Regenerate(ctx, route)
	})
	if err != nil {
		return nil, err
	}
	return v.(*entity.PageSnapshot), nil
}

func (uc *pageCacheUseCase) Regenerate(ctx context.Context, route Route) (*entity.PageSnapshot, error) {
	snap, err := uc.renderSnapshot(ctx, route)
	if err != nil {
		return nil, err
	}
	if err := uc.snapshotRepo.Save(ctx, snap); err != nil {
		// Serve the rendered page anyway.
		uc.logger.Warn("snapshot write failed", zap.String("path", route.Path), zap.Error(err))
	}
	return snap, nil
}

func (uc *pageCacheUseCase) InvalidateTag(ctx context.Context, tag string) (int, error) {
	n, err := uc.snapshotRepo.DeleteByTag(ctx, uc.buildID, tag)
	if err != nil {
		return 0, fmt.Errorf("delete snapshots tagged %q: %w", tag, err)
	}
	return n, nil
}

func (uc *pageCacheUseCase) renderSnapshot(ctx context.Context, route Route) (*entity.PageSnapshot, error) {
	page, err := route.Render(ctx)
	if err != nil {
		return nil, err
	}
	snap := &entity.PageSnapshot{
		BuildID:     uc.buildID,
		Path:        route.Path,
		Body:        page.Body,
		StatusCode:  http.StatusOK,
		Tags:        page.Tags,
		GeneratedAt: uc.now(),
	}
	if route.Directive.Mode == entity.CacheRevalidate {
		snap.Revalidate = route.Directive.Revalidate
	}
	return snap, nil
}

func (uc *pageCacheUseCase) regenerateInBackground(route Route) {
	uc.refreshes.Add(1)
	go func() {
		defer uc.refreshes.Done()
		_, _, _ = uc.group.Do(route.Path, func() (any, error) {
			ctx, cancel := context.WithTimeout(context.Background(), regenerateTimeout)
			defer cancel()

			snap, err := uc.Regenerate(ctx, route)
			if err != nil {
				uc.logger.Warn("page regeneration failed", zap.String("path", route.Path), zap.Error(err))
				return nil, err
			}
			uc.logger.Debug("regenerated page", zap.String("path", route.Path))
			return snap, nil
		})
	}()
}
