package request

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/user/character-explorer/internal/entity"
)

// ErrInvalidFilter is returned for filter values the catalog does not accept.
var ErrInvalidFilter = errors.New("invalid search filter")

type RevalidateRequest struct {
	Tag string `json:"tag"`
}

// SearchFilters reads the search form fields from a query string. Blank
// fields are dropped; status and gender must be catalog values.
func SearchFilters(q url.Values) (entity.SearchFilters, error) {
	f := entity.SearchFilters{
		Name:    strings.TrimSpace(q.Get("name")),
		Status:  strings.TrimSpace(q.Get("status")),
		Species: strings.TrimSpace(q.Get("species")),
		Type:    strings.TrimSpace(q.Get("type")),
		Gender:  strings.TrimSpace(q.Get("gender")),
	}
	if f.Status != "" && !entity.CharacterStatus(f.Status).Valid() {
		return f, fmt.Errorf("%w: status %q", ErrInvalidFilter, f.Status)
	}
	if f.Gender != "" && !entity.CharacterGender(f.Gender).Valid() {
		return f, fmt.Errorf("%w: gender %q", ErrInvalidFilter, f.Gender)
	}
	page, err := Page(q)
	if err != nil {
		return f, err
	}
	if q.Has("page") {
		f.Page = page
	}
	return f, nil
}

// Page reads the page parameter, defaulting to 1.
func Page(q url.Values) (int, error) {
	raw := q.Get("page")
	if raw == "" {
		return 1, nil
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 0, fmt.Errorf("%w: page %q", ErrInvalidFilter, raw)
	}
	return page, nil
}
