package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/user/character-explorer/internal/delivery/http/request"
	"github.com/user/character-explorer/internal/delivery/http/response"
	"github.com/user/character-explorer/internal/entity"
	"github.com/user/character-explorer/internal/repository"
	"github.com/user/character-explorer/internal/usecase"
	"github.com/user/character-explorer/internal/view"
)

const (
	cacheControlStatic  = "s-maxage=31536000, stale-while-revalidate"
	cacheControlNoStore = "private, no-cache, no-store, max-age=0, must-revalidate"

	networkErrorMessage = "Network error - please check your internet connection"
	healthCheckTimeout  = 2 * time.Second
)

// Pinger is a backing store the health check can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies are the collaborators of a Handler.
type Dependencies struct {
	Catalog    usecase.Catalog
	Pages      usecase.Pages
	PageCache  usecase.PageCache
	Renderer   *view.Renderer
	Logger     *zap.Logger
	DebounceMS int
	// Checks are probed by the health endpoint, keyed by component name.
	Checks map[string]Pinger
}

type Handler struct {
	catalog    usecase.Catalog
	pages      usecase.Pages
	pageCache  usecase.PageCache
	renderer   *view.Renderer
	logger     *zap.Logger
	debounceMS int
	checks     map[string]Pinger
	now        func() time.Time
}

func NewHandler(deps Dependencies) *Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		catalog:    deps.Catalog,
		pages:      deps.Pages,
		pageCache:  deps.PageCache,
		renderer:   deps.Renderer,
		logger:     logger,
		debounceMS: deps.DebounceMS,
		checks:     deps.Checks,
		now:        time.Now,
	}
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	resp := response.HealthResponse{Status: "ok", Checks: make(map[string]string, len(h.checks))}
	if h.pageCache != nil {
		resp.BuildID = h.pageCache.BuildID()
	}

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := h.checks[name].Ping(ctx); err != nil {
			h.logger.Error("health check failed", zap.String("component", name), zap.Error(err))
			resp.Checks[name] = "unhealthy"
			resp.Status = "degraded"
			continue
		}
		resp.Checks[name] = "healthy"
	}

	w.Header().Set("Cache-Control", cacheControlNoStore)
	if resp.Status != "ok" {
		h.writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// classify maps a use case error to an HTTP status and a user-facing message.
func classify(err error) (int, string) {
	var upErr *repository.UpstreamError
	switch {
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, usecase.ErrInvalidID),
		errors.Is(err, usecase.ErrInvalidName):
		return http.StatusNotFound, "Character not found"
	case errors.Is(err, request.ErrInvalidFilter), errors.Is(err, usecase.ErrEmptyTag):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, repository.ErrNetwork):
		return http.StatusBadGateway, networkErrorMessage
	case errors.As(err, &upErr):
		return http.StatusBadGateway, upErr.Error()
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func (h *Handler) logFailure(r *http.Request, status int, err error) {
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err),
		)
	}
}

func cacheControl(d entity.CacheDirective) string {
	switch d.Mode {
	case entity.CacheForce:
		return cacheControlStatic
	case entity.CacheRevalidate:
		return fmt.Sprintf("s-maxage=%d, stale-while-revalidate", int(d.Revalidate.Seconds()))
	default:
		return cacheControlNoStore
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
