package usecase

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/user/character-explorer/pkg/metrics"
)

// PrerenderReport summarises one static build.
type PrerenderReport struct {
	BuildID  string
	Rendered int
	Failed   int
	Duration time.Duration
}

// Prerender renders every statically known page into the page cache.
type Prerender interface {
	Run(ctx context.Context) (*PrerenderReport, error)
}

type prerenderUseCase struct {
	catalog Catalog
	pages   Pages
	cache   PageCache
	logger  *zap.Logger
}

// NewPrerenderUseCase creates a Prerender writing into cache.
func NewPrerenderUseCase(catalog Catalog, pages Pages, cache PageCache, logger *zap.Logger) Prerender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &prerenderUseCase{catalog: catalog, pages: pages, cache: cache, logger: logger}
}

// Run renders the home page, then a detail page for every id and every name
// the catalog lists. A failing page is counted and skipped; only context
// cancellation aborts the build.
func (uc *prerenderUseCase) Run(ctx context.Context) (*PrerenderReport, error) {
	start := time.Now()
	report := &PrerenderReport{BuildID: uc.cache.BuildID()}
	log := uc.logger.With(zap.String("build_id", report.BuildID))

	routes := []Route{uc.pages.Home()}
	for _, id := range uc.catalog.CharacterIDs(ctx) {
		routes = append(routes, uc.pages.CharacterByID(strconv.Itoa(id)))
	}
	for _, name := range uc.catalog.CharacterNames(ctx) {
		routes = append(routes, uc.pages.CharacterByName(url.PathEscape(name)))
	}
	log.Info("prerendering pages", zap.Int("routes", len(routes)))

	for _, route := range routes {
		if err := ctx.Err(); err != nil {
			report.Duration = time.Since(start)
			return report, err
		}
		if _, err := uc.cache.Regenerate(ctx, route); err != nil {
			report.Failed++
			metrics.ObservePrerender("failure")
			log.Warn("failed to prerender page", zap.String("path", route.Path), zap.Error(err))
			continue
		}
		report.Rendered++
		metrics.ObservePrerender("success")
	}

	report.Duration = time.Since(start)
	log.Info("prerender finished",
		zap.Int("rendered", report.Rendered),
		zap.Int("failed", report.Failed),
		zap.Duration("duration", report.Duration),
	)
	return report, nil
}
