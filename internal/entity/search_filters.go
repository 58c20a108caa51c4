package entity

import (
	"net/url"
	"strconv"
)

// SearchFilters is the optional-field record behind the search form.
// An empty string means the field is absent.
type SearchFilters struct {
	Name    string `json:"name,omitempty"`
	Status  string `json:"status,omitempty"`
	Species string `json:"species,omitempty"`
	Type    string `json:"type,omitempty"`
	Gender  string `json:"gender,omitempty"`
	Page    int    `json:"page,omitempty"`
}

// IsEmpty reports whether no filter field is populated. Page is a position,
// not a filter, so it does not count.
func (f SearchFilters) IsEmpty() bool {
	return f.Name == "" && f.Status == "" && f.Species == "" && f.Type == "" && f.Gender == ""
}

// WithPage returns a copy of f positioned on page.
func (f SearchFilters) WithPage(page int) SearchFilters {
	f.Page = page
	return f
}

// Query builds the upstream query from populated fields only.
func (f SearchFilters) Query() url.Values {
	q := url.Values{}
	if f.Name != "" {
		q.Set("name", f.Name)
	}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	if f.Species != "" {
		q.Set("species", f.Species)
	}
	if f.Type != "" {
		q.Set("type", f.Type)
	}
	if f.Gender != "" {
		q.Set("gender", f.Gender)
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	return q
}
