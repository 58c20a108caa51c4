// Package app wires configuration into the adapters and use cases shared by
// the HTTP server and the command line client.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/user/character-explorer/internal/adapter/memory"
	"github.com/user/character-explorer/internal/adapter/postgres"
	redis_adapter "github.com/user/character-explorer/internal/adapter/redis"
	"github.com/user/character-explorer/internal/adapter/rickmorty"
	"github.com/user/character-explorer/internal/delivery/http/handler"
	"github.com/user/character-explorer/internal/entity"
	"github.com/user/character-explorer/internal/repository"
	"github.com/user/character-explorer/internal/usecase"
	"github.com/user/character-explorer/internal/view"
	"github.com/user/character-explorer/pkg/config"
)

// App holds the wired components of one process.
type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	Client    *rickmorty.Client
	Catalog   usecase.Catalog
	Pages     usecase.Pages
	PageCache usecase.PageCache
	Prerender usecase.Prerender
	Renderer  *view.Renderer
	// Checks are the backing stores probed by the health endpoint.
	Checks map[string]handler.Pinger

	closers []func()
}

// New connects the configured backends and builds every use case.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{
		Config: cfg,
		Logger: logger,
		Checks: make(map[string]handler.Pinger),
	}

	responses, err := a.responseCache(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	snapshots, err := a.snapshotStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	buildID := cfg.BuildID
	if buildID == "" {
		buildID = uuid.NewString()
	}
	isr := entity.IncrementalStatic()
	isr.Revalidate = cfg.RevalidateInterval()

	renderer, err := view.NewRenderer()
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Client = rickmorty.NewClient(cfg.APIBaseURL,
		rickmorty.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout()}),
		rickmorty.WithCache(responses),
		rickmorty.WithLogger(logger.Named("catalog")),
		rickmorty.WithRevalidateInterval(cfg.RevalidateInterval()),
	)
	a.Renderer = renderer
	a.PageCache = usecase.NewPageCacheUseCase(snapshots, buildID, logger.Named("pages"), nil)
	a.Catalog = usecase.NewCatalogUseCase(a.Client, logger, a.Client, a.PageCache)
	a.Pages = usecase.NewPagesUseCase(a.Catalog, renderer, isr)
	a.Prerender = usecase.NewPrerenderUseCase(a.Catalog, a.Pages, a.PageCache, logger.Named("prerender"))

	logger.Info("application wired",
		zap.String("build_id", buildID),
		zap.String("cache_backend", cfg.CacheBackend),
		zap.String("snapshot_backend", cfg.SnapshotBackend),
		zap.String("api_base_url", cfg.APIBaseURL),
	)
	return a, nil
}

// Close waits for background refreshes and releases connections.
func (a *App) Close() {
	if a.PageCache != nil {
		a.PageCache.WaitForRefreshes()
	}
	if a.Client != nil {
		a.Client.WaitForRefreshes()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *App) responseCache(ctx context.Context) (repository.ResponseCacheRepository, error) {
	switch a.Config.CacheBackend {
	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     a.Config.RedisAddr,
			Password: a.Config.RedisPassword,
			DB:       a.Config.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", a.Config.RedisAddr, err)
		}
		a.closers = append(a.closers, func() { _ = rdb.Close() })
		a.Logger.Info("Redis connection established", zap.String("addr", a.Config.RedisAddr))

		repo := redis_adapter.NewResponseCacheRepo(rdb)
		a.Checks["redis"] = repo
		return repo, nil
	default:
		repo := memory.NewResponseCacheRepo()
		a.Checks["response_cache"] = repo
		return repo, nil
	}
}

func (a *App) snapshotStore(ctx context.Context) (repository.SnapshotRepository, error) {
	switch a.Config.SnapshotBackend {
	case config.BackendPostgres:
		pool, err := pgxpool.New(ctx, a.Config.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("create postgres pool: %w", err)
		}
		a.closers = append(a.closers, pool.Close)

		repo := postgres.NewSnapshotRepo(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		a.Logger.Info("PostgreSQL connection pool established")
		a.Checks["postgres"] = repo
		return repo, nil
	default:
		repo := memory.NewSnapshotRepo()
		a.Checks["snapshots"] = repo
		return repo, nil
	}
}
