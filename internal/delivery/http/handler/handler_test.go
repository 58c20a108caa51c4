package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/character-explorer/internal/delivery/http/request"
	"github.com/user/character-explorer/internal/entity"
	"github.com/user/character-explorer/internal/repository"
	"github.com/user/character-explorer/internal/usecase"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"not found", fmt.Errorf("character with ID 9: %w", repository.ErrNotFound), http.StatusNotFound, "Character not found"},
		{"invalid id", fmt.Errorf("%w: %q", usecase.ErrInvalidID, "x"), http.StatusNotFound, "Character not found"},
		{"network", &repository.NetworkError{URL: "u", Err: errors.New("refused")}, http.StatusBadGateway,
			"Network error - please check your internet connection"},
		{"upstream", &repository.UpstreamError{StatusCode: 503}, http.StatusBadGateway, "HTTP error! status: 503"},
		{"bad filter", fmt.Errorf("%w: status %q", request.ErrInvalidFilter, "x"), http.StatusBadRequest, `invalid search filter: status "x"`},
		{"other", errors.New("boom"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, message := classify(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.message, message)
		})
	}
}

func TestCacheControl(t *testing.T) {
	assert.Equal(t, "s-maxage=31536000, stale-while-revalidate", cacheControl(entity.StaticGeneration()))
	assert.Equal(t, "s-maxage=864000, stale-while-revalidate", cacheControl(entity.IncrementalStatic()))
	assert.Equal(t, "s-maxage=3600, stale-while-revalidate",
		cacheControl(entity.CacheDirective{Mode: entity.CacheRevalidate, Revalidate: time.Hour}))
	assert.Equal(t, "private, no-cache, no-store, max-age=0, must-revalidate", cacheControl(entity.NoStore()))
}

func TestCharacterNameParam(t *testing.T) {
	tests := []struct {
		target string
		name   string
	}{
		{"/character/name/Rick%20Sanchez", "Rick Sanchez"},
		{"/character/name/100%25%20Rick", "100% Rick"},
		{"/character/name/AC%2FDC", "AC/DC"},
		{"/character/name/Morty", "Morty"},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			var raw string
			r := chi.NewRouter()
			r.Get("/character/name/{name}", func(w http.ResponseWriter, r *http.Request) {
				raw = characterNameParam(r)
			})
			r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tt.target, nil))

			name, err := usecase.DecodeCharacterName(raw)
			require.NoError(t, err)
			assert.Equal(t, tt.name, name)
		})
	}
}
