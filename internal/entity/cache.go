package entity

import (
	"strconv"
	"strings"
	"time"
)

// IncrementalStaticInterval is how long regenerated content stays fresh.
const IncrementalStaticInterval = 10 * 24 * time.Hour

// CacheMode selects how a fetch interacts with the response cache.
type CacheMode int

const (
	// CacheForce keeps a response until the cache is rebuilt.
	CacheForce CacheMode = iota
	// CacheRevalidate keeps a response fresh for a fixed window, then serves
	// it stale while a refresh runs.
	CacheRevalidate
	// CacheNoStore always goes to the upstream.
	CacheNoStore
)

func (m CacheMode) String() string {
	switch m {
	case CacheForce:
		return "force-cache"
	case CacheRevalidate:
		return "revalidate"
	case CacheNoStore:
		return "no-store"
	default:
		return "unknown"
	}
}

// CacheDirective is the caching contract declared at a call site.
type CacheDirective struct {
	Mode       CacheMode
	Revalidate time.Duration
	Tags       []string
}

// StaticGeneration caches indefinitely until the next build.
func StaticGeneration() CacheDirective {
	return CacheDirective{Mode: CacheForce}
}

// IncrementalStatic revalidates after IncrementalStaticInterval.
func IncrementalStatic(tags ...string) CacheDirective {
	return CacheDirective{Mode: CacheRevalidate, Revalidate: IncrementalStaticInterval, Tags: tags}
}

// NoStore disables caching.
func NoStore() CacheDirective {
	return CacheDirective{Mode: CacheNoStore}
}

// CachedResponse is a stored upstream response body.
type CachedResponse struct {
	Key        string        `json:"key"`
	URL        string        `json:"url"`
	Body       []byte        `json:"body"`
	StoredAt   time.Time     `json:"stored_at"`
	Revalidate time.Duration `json:"revalidate"` // zero means never stale
	Tags       []string      `json:"tags,omitempty"`
}

// Fresh reports whether the entry can be served without a refresh.
func (c *CachedResponse) Fresh(now time.Time) bool {
	return c.Revalidate <= 0 || now.Sub(c.StoredAt) < c.Revalidate
}

// CharacterTag is the invalidation tag of a character fetched by id.
func CharacterTag(id int) string {
	return "character-" + strconv.Itoa(id)
}

// CharacterNameTag is the invalidation tag of a character fetched by name.
func CharacterNameTag(name string) string {
	return "character-name-" + strings.ToLower(name)
}
