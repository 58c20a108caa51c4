package rickmorty

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/user/character-explorer/internal/entity"
	"github.com/user/character-explorer/internal/repository"
	"github.com/user/character-explorer/pkg/metrics"
	"github.com/user/character-explorer/pkg/utils"
)

// DefaultBaseURL is the public catalog.
const DefaultBaseURL = "https://rickandmortyapi.com/api"

const (
	endpointList      = "list"
	endpointCharacter = "character"
	endpointSearch    = "search"

	defaultRefreshTimeout = 30 * time.Second
)

// Client talks to the character catalog. It holds no per-request state;
// caching is delegated to the injected ResponseCacheRepository.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	cache          repository.ResponseCacheRepository
	logger         *zap.Logger
	now            func() time.Time
	revalidate     time.Duration
	refreshTimeout time.Duration

	refreshGroup singleflight.Group
	refreshes    sync.WaitGroup
}

var _ repository.CharacterRepository = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for catalog requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithCache enables the response cache. Without it every directive behaves
// like no-store.
func WithCache(cache repository.ResponseCacheRepository) Option {
	return func(c *Client) { c.cache = cache }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithClock overrides time.Now for freshness checks.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithRevalidateInterval sets the freshness window of regenerated lookups.
func WithRevalidateInterval(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.revalidate = d
		}
	}
}

// NewClient creates a catalog client for baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		httpClient:     &http.Client{Timeout: 10 * time.Second},
		logger:         zap.NewNop(),
		now:            time.Now,
		revalidate:     entity.IncrementalStaticInterval,
		refreshTimeout: defaultRefreshTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListCharacters returns one page of the catalog.
func (c *Client) ListCharacters(ctx context.Context, page int, directive entity.CacheDirective) (*entity.CharacterPage, error) {
	if page < 1 {
		page = 1
	}
	var out entity.CharacterPage
	if err := c.get(ctx, endpointList, c.listURL(page), directive, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetCharacterByID returns one character, revalidated per character id tag.
func (c *Client) GetCharacterByID(ctx context.Context, id int) (*entity.Character, error) {
	rawURL := fmt.Sprintf("%s/character/%d", c.baseURL, id)

	var out entity.Character
	err := c.get(ctx, endpointCharacter, rawURL, c.incremental(entity.CharacterTag(id)), &out)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("character with ID %d: %w", id, repository.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetCharacterByName returns the best match for name: an exact
// case-insensitive match when the catalog returns one, otherwise the first result.
func (c *Client) GetCharacterByName(ctx context.Context, name string) (*entity.Character, error) {
	rawURL := c.baseURL + "/character/?name=" + url.QueryEscape(name)

	var out entity.CharacterPage
	err := c.get(ctx, endpointCharacter, rawURL, c.incremental(entity.CharacterNameTag(name)), &out)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if err != nil || len(out.Results) == 0 {
		return nil, fmt.Errorf("character with name %q: %w", name, repository.ErrNotFound)
	}

	match := &out.Results[0]
	for i := range out.Results {
		if strings.EqualFold(out.Results[i].Name, name) {
			match = &out.Results[i]
			break
		}
	}
	c.addTag(ctx, rawURL, entity.CharacterTag(match.ID))
	return match, nil
}

// addTag indexes the cached response for rawURL under tag as well, so
// revalidating a character id also drops lookups that resolved to it.
func (c *Client) addTag(ctx context.Context, rawURL, tag string) {
	if c.cache == nil {
		return
	}
	entry, err := c.cache.Get(ctx, utils.HashURL(rawURL))
	if err != nil || slices.Contains(entry.Tags, tag) {
		return
	}
	entry.Tags = append(entry.Tags, tag)
	if err := c.cache.Set(ctx, entry); err != nil {
		c.logger.Warn("response cache tag update failed", zap.String("url", rawURL), zap.String("tag", tag), zap.Error(err))
	}
}

// SearchCharacters queries the catalog with the populated filters only.
// Searches are never cached.
func (c *Client) SearchCharacters(ctx context.Context, filters entity.SearchFilters) (*entity.CharacterPage, error) {
	rawURL := c.baseURL + "/character/?" + filters.Query().Encode()

	var out entity.CharacterPage
	if err := c.get(ctx, endpointSearch, rawURL, entity.NoStore(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListAllCharacterIDs returns every id in catalog order.
func (c *Client) ListAllCharacterIDs(ctx context.Context) []int {
	var ids []int
	c.walkPages(ctx, func(chars []entity.Character) {
		for _, ch := range chars {
			ids = append(ids, ch.ID)
		}
	})
	return ids
}

// ListAllCharacterNames returns every name in catalog order.
func (c *Client) ListAllCharacterNames(ctx context.Context) []string {
	var names []string
	c.walkPages(ctx, func(chars []entity.Character) {
		for _, ch := range chars {
			names = append(names, ch.Name)
		}
	})
	return names
}

// WaitForRefreshes blocks until background revalidations have finished.
func (c *Client) WaitForRefreshes() {
	c.refreshes.Wait()
}

// InvalidateTag drops cached responses carrying tag.
func (c *Client) InvalidateTag(ctx context.Context, tag string) (int, error) {
	if c.cache == nil {
		return 0, nil
	}
	return c.cache.InvalidateTag(ctx, tag)
}

// walkPages follows the next-page reference one page at a time. The first
// failure ends the walk; what was collected so far is kept.
func (c *Client) walkPages(ctx context.Context, collect func([]entity.Character)) {
	page := 1
	for {
		var out entity.CharacterPage
		if err := c.get(ctx, endpointList, c.listURL(page), c.incremental(), &out); err != nil {
			c.logger.Warn("stopping catalog pagination", zap.Int("page", page), zap.Error(err))
			return
		}
		collect(out.Results)

		if !out.Info.HasNext() {
			return
		}
		next := utils.PageParam(*out.Info.Next)
		if next <= page {
			c.logger.Warn("catalog returned a non-advancing next page", zap.Int("page", page), zap.String("next", *out.Info.Next))
			return
		}
		page = next
	}
}

func (c *Client) listURL(page int) string {
	return fmt.Sprintf("%s/character?page=%d", c.baseURL, page)
}

func (c *Client) incremental(tags ...string) entity.CacheDirective {
	d := entity.IncrementalStatic(tags...)
	d.Revalidate = c.revalidate
	return d
}

func (c *Client) get(ctx context.Context, endpoint, rawURL string, directive entity.CacheDirective, out any) error {
	body, err := c.load(ctx, endpoint, rawURL, directive)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

func (c *Client) load(ctx context.Context, endpoint, rawURL string, directive entity.CacheDirective) ([]byte, error) {
	if c.cache == nil || directive.Mode == entity.CacheNoStore {
		metrics.ObserveCache("data", "bypass")
		return c.fetch(ctx, endpoint, rawURL)
	}

	key := utils.HashURL(rawURL)
	entry, err := c.cache.Get(ctx, key)
	switch {
	case err == nil:
		if directive.Mode == entity.CacheForce || entry.Fresh(c.now()) {
			metrics.ObserveCache("data", "hit")
			return entry.Body, nil
		}
		metrics.ObserveCache("data", "stale")
		c.refreshInBackground(endpoint, rawURL, key, directive)
		return entry.Body, nil
	case errors.Is(err, repository.ErrCacheMiss):
		metrics.ObserveCache("data", "miss")
	default:
		metrics.ObserveCache("data", "error")
		c.logger.Warn("response cache read failed", zap.String("url", rawURL), zap.Error(err))
	}

	body, err := c.fetch(ctx, endpoint, rawURL)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, rawURL, body, directive)
	return body, nil
}

func (c *Client) refreshInBackground(endpoint, rawURL, key string, directive entity.CacheDirective) {
	c.refreshes.Add(1)
	go func() {
		defer c.refreshes.Done()
		_, _, _ = c.refreshGroup.Do(key, func() (any, error) {
			ctx, cancel := context.WithTimeout(context.Background(), c.refreshTimeout)
			defer cancel()

			body, err := c.fetch(ctx, endpoint, rawURL)
			if err != nil {
				// Keep serving the stale entry; the next request retries.
				c.logger.Warn("background revalidation failed", zap.String("url", rawURL), zap.Error(err))
				return nil, err
			}
			c.store(ctx, key, rawURL, body, directive)
			c.logger.Debug("revalidated cached response", zap.String("url", rawURL))
			return nil, nil
		})
	}()
}

func (c *Client) store(ctx context.Context, key, rawURL string, body []byte, directive entity.CacheDirective) {
	entry := &entity.CachedResponse{
		Key:      key,
		URL:      rawURL,
		Body:     body,
		StoredAt: c.now(),
		Tags:     directive.Tags,
	}
	if directive.Mode == entity.CacheRevalidate {
		entry.Revalidate = directive.Revalidate
	}
	if err := c.cache.Set(ctx, entry); err != nil {
		c.logger.Warn("response cache write failed", zap.String("url", rawURL), zap.Error(err))
	}
}

func (c *Client) fetch(ctx context.Context, endpoint, rawURL string) ([]byte, error) {
	start := time.Now()
	outcome := "ok"
	defer func() {
		metrics.ObserveUpstream(endpoint, outcome, time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		outcome = "request_error"
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("fetching catalog", zap.String("url", rawURL))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		outcome = "network_error"
		return nil, &repository.NetworkError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		outcome = "not_found"
		return nil, repository.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		outcome = "upstream_error"
		return nil, &repository.UpstreamError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		outcome = "network_error"
		return nil, &repository.NetworkError{URL: rawURL, Err: err}
	}
	return body, nil
}
