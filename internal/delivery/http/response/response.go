package response

import (
	"time"

	"github.com/user/character-explorer/internal/entity"
)

// SearchResponse mirrors usecase.SearchResult. Idle responses carry no info.
type SearchResponse struct {
	Idle    bool               `json:"idle"`
	Info    *entity.PageInfo   `json:"info,omitempty"`
	Results []entity.Character `json:"results"`
}

type RevalidateResponse struct {
	Revalidated bool      `json:"revalidated"`
	Tag         string    `json:"tag"`
	Entries     int       `json:"entries"`
	Now         time.Time `json:"now"`
}

type HealthResponse struct {
	Status  string            `json:"status"` // "ok" or "degraded"
	BuildID string            `json:"build_id,omitempty"`
	Checks  map[string]string `json:"checks,omitempty"`
}
