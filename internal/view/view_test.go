package view

import (
	"bytes"
	"io/fs"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/character-explorer/internal/entity"
)

func rick() entity.Character {
	return entity.Character{
		ID:       1,
		Name:     "Rick Sanchez",
		Status:   entity.StatusAlive,
		Species:  "Human",
		Gender:   entity.GenderMale,
		Origin:   entity.Location{Name: "Earth (C-137)"},
		Location: entity.Location{Name: "Citadel of Ricks"},
		Image:    "https://example.test/avatar/1.jpeg",
		Episode: []string{
			"https://example.test/api/episode/1",
			"https://example.test/api/episode/2",
		},
		Created: time.Date(2017, 11, 4, 18, 48, 46, 0, time.UTC),
	}
}

func render(t *testing.T, page string, data any) *goquery.Document {
	t.Helper()
	r, err := NewRenderer()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, page, data))
	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	return doc
}

func TestRenderCharacterDetail_OmitsEmptyType(t *testing.T) {
	ch := rick()
	doc := render(t, PageCharacter, NewCharacterDetail(&ch))

	assert.Equal(t, "Rick Sanchez | Rick and Morty Explorer", doc.Find("title").Text())
	assert.Equal(t, "Rick Sanchez", doc.Find("h1.character-name").Text())
	assert.Equal(t, 0, doc.Find(`[data-field="type"]`).Length())
	assert.Contains(t, doc.Find(`[data-field="status"]`).Text(), "🟢 Alive")
	assert.Contains(t, doc.Find(`[data-field="gender"]`).Text(), "♂️ Male")
	assert.Contains(t, doc.Find(`[data-field="origin"]`).Text(), "Earth (C-137)")
	assert.Contains(t, doc.Find(`[data-field="location"]`).Text(), "Citadel of Ricks")
	assert.Contains(t, doc.Find(`[data-field="created"]`).Text(), "November 4, 2017")
	assert.Equal(t, "2 episodes", doc.Find(".episode-count").Text())
	assert.Equal(t, 2, doc.Find("a.episode").Length())
	assert.Equal(t, "Episode 2", doc.Find("a.episode").Last().Text())

	og, ok := doc.Find(`meta[property="og:image"]`).Attr("content")
	require.True(t, ok)
	assert.Equal(t, ch.Image, og)
}

func TestRenderCharacterDetail_ShowsType(t *testing.T) {
	ch := rick()
	ch.Type = "Parasite"
	doc := render(t, PageCharacter, NewCharacterDetail(&ch))

	assert.Contains(t, doc.Find(`[data-field="type"]`).Text(), "Parasite")
}

func TestRenderHome_PriorityLoading(t *testing.T) {
	chars := make([]entity.Character, 6)
	for i := range chars {
		chars[i] = rick()
		chars[i].ID = i + 1
	}
	page := &entity.CharacterPage{Info: entity.PageInfo{Count: 826, Pages: 42}, Results: chars}
	doc := render(t, PageHome, NewHomePage(page))

	assert.Equal(t, "826", doc.Find(".stat-count").Text())
	assert.Equal(t, "42", doc.Find(".stat-pages").Text())
	assert.Equal(t, "6", doc.Find(".stat-shown").Text())

	imgs := doc.Find(".card img")
	require.Equal(t, 6, imgs.Length())
	imgs.Each(func(i int, s *goquery.Selection) {
		want := "lazy"
		if i < 4 {
			want = "eager"
		}
		assert.Equal(t, want, s.AttrOr("loading", ""), "card %d", i)
	})

	href, _ := doc.Find(".card a").Eq(2).Attr("href")
	assert.Equal(t, "/character/3", href)
}

func TestRenderSearchStates(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	fragment := func(p SearchPage) *goquery.Document {
		var buf bytes.Buffer
		require.NoError(t, r.RenderFragment(&buf, FragmentSearchResults, p))
		doc, err := goquery.NewDocumentFromReader(&buf)
		require.NoError(t, err)
		return doc
	}

	idle := NewSearchPage(entity.SearchFilters{}, 300)
	assert.Equal(t, 1, fragment(idle).Find(".search-idle").Length())

	filters := entity.SearchFilters{Name: "rick", Status: "Alive"}
	empty := NewSearchPage(filters, 300).WithResults(&entity.CharacterPage{}, 1)
	assert.Equal(t, 1, fragment(empty).Find(".search-empty").Length())

	ch := rick()
	found := NewSearchPage(filters, 300).WithResults(&entity.CharacterPage{
		Info:    entity.PageInfo{Count: 29, Pages: 2},
		Results: []entity.Character{ch},
	}, 1)
	doc := fragment(found)
	assert.Equal(t, "29", doc.Find(".total").Text())
	assert.Equal(t, 1, doc.Find(".card").Length())
	next, ok := doc.Find(".pagination a.next").Attr("href")
	require.True(t, ok)
	assert.Contains(t, next, "page=2")
	assert.Contains(t, next, "name=rick")

	failed := NewSearchPage(filters, 300).WithError("Network error - please check your internet connection", "/search?name=rick")
	doc = fragment(failed)
	assert.Contains(t, doc.Find(".error-message").Text(), "Network error")
	assert.Equal(t, "/search?name=rick", doc.Find("a.retry").AttrOr("href", ""))
}

func TestRenderSearchPage_FormState(t *testing.T) {
	doc := render(t, PageSearch, NewSearchPage(entity.SearchFilters{Species: "Alien", Gender: "Female"}, 300))

	form := doc.Find("#search-form")
	assert.Equal(t, "300", form.AttrOr("data-debounce", ""))
	assert.Equal(t, "Alien", form.Find(`input[name="species"]`).AttrOr("value", ""))
	assert.Equal(t, "Female", form.Find(`select[name="gender"] option[selected]`).AttrOr("value", ""))
	assert.Equal(t, 1, doc.Find(`script[src="/static/search.js"]`).Length())
}

func TestRenderNotFoundAndError(t *testing.T) {
	doc := render(t, PageNotFound, NewNotFoundPage(""))
	assert.Contains(t, doc.Find("h1").Text(), "404")

	doc = render(t, PageError, NewErrorPage("HTTP error! status: 500", "/character/1"))
	assert.Equal(t, "HTTP error! status: 500", doc.Find(".error-message").Text())
	assert.Equal(t, "/character/1", doc.Find("a.retry").AttrOr("href", ""))
	assert.Equal(t, 0, doc.Find(`script[src="/static/search.js"]`).Length())
}

func TestRenderUnknownPage(t *testing.T) {
	r := MustNewRenderer()
	err := r.Render(&bytes.Buffer{}, "nope", nil)
	assert.Error(t, err)
}

func TestStaticAssets(t *testing.T) {
	_, err := fs.Stat(Static(), "search.js")
	assert.NoError(t, err)
	_, err = fs.Stat(Static(), "style.css")
	assert.NoError(t, err)
}
