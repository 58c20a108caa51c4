package request

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/character-explorer/internal/entity"
)

func TestSearchFilters(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    entity.SearchFilters
		wantErr bool
	}{
		{name: "empty", query: "", want: entity.SearchFilters{}},
		{name: "trims blanks", query: "name=%20rick%20&species=+", want: entity.SearchFilters{Name: "rick"}},
		{name: "all fields", query: "name=rick&status=Alive&species=Human&type=Clone&gender=Male&page=3",
			want: entity.SearchFilters{Name: "rick", Status: "Alive", Species: "Human", Type: "Clone", Gender: "Male", Page: 3}},
		{name: "bad status", query: "status=alive", wantErr: true},
		{name: "bad gender", query: "gender=robot", wantErr: true},
		{name: "bad page", query: "name=rick&page=0", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			got, err := SearchFilters(q)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidFilter)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPage(t *testing.T) {
	p, err := Page(url.Values{})
	require.NoError(t, err)
	assert.Equal(t, 1, p)

	p, err = Page(url.Values{"page": {"7"}})
	require.NoError(t, err)
	assert.Equal(t, 7, p)

	_, err = Page(url.Values{"page": {"x"}})
	assert.ErrorIs(t, err, ErrInvalidFilter)
}
