package view

import (
	"net/url"
	"strconv"

	"github.com/user/character-explorer/internal/entity"
)

// priorityCards is how many leading cards of a grid load eagerly.
const priorityCards = 4

// paginationWindow is how many page links surround the current page.
const paginationWindow = 2

// CharacterCard is one tile of a character grid.
type CharacterCard struct {
	ID          int
	Name        string
	Image       string
	Species     string
	Location    string
	StatusLabel string
	StatusClass string
	Href        string
	Loading     string // "eager" or "lazy"
}

// NewCharacterCards builds grid tiles. With priority set the first few
// images load eagerly and the rest lazily.
func NewCharacterCards(chars []entity.Character, priority bool) []CharacterCard {
	cards := make([]CharacterCard, 0, len(chars))
	for i, ch := range chars {
		loading := "lazy"
		if priority && i < priorityCards {
			loading = "eager"
		}
		cards = append(cards, CharacterCard{
			ID:          ch.ID,
			Name:        ch.Name,
			Image:       ch.Image,
			Species:     ch.Species,
			Location:    ch.Location.Name,
			StatusLabel: StatusLabel(ch.Status),
			StatusClass: StatusClass(ch.Status),
			Href:        "/character/" + strconv.Itoa(ch.ID),
			Loading:     loading,
		})
	}
	return cards
}

// EpisodeRef links to one episode of the catalog.
type EpisodeRef struct {
	ID  string
	URL string
}

// CharacterDetail is the detail page of one character.
type CharacterDetail struct {
	Meta         Metadata
	ID           int
	Name         string
	Image        string
	StatusLabel  string
	StatusClass  string
	Species      string
	Type         string // empty hides the row
	GenderLabel  string
	Origin       entity.Location
	Location     entity.Location
	EpisodeCount string
	Episodes     []EpisodeRef
	Created      string
	NameURL      string
	Strategy     string
}

// NewCharacterDetail shapes a character for the detail view.
func NewCharacterDetail(ch *entity.Character) CharacterDetail {
	episodes := make([]EpisodeRef, 0, len(ch.Episode))
	for _, e := range ch.Episode {
		episodes = append(episodes, EpisodeRef{ID: EpisodeID(e), URL: e})
	}
	created := ""
	if !ch.Created.IsZero() {
		created = ch.Created.Format("January 2, 2006")
	}
	return CharacterDetail{
		Meta:         CharacterMetadata(ch),
		ID:           ch.ID,
		Name:         ch.Name,
		Image:        ch.Image,
		StatusLabel:  StatusLabel(ch.Status),
		StatusClass:  StatusClass(ch.Status),
		Species:      ch.Species,
		Type:         ch.Type,
		GenderLabel:  GenderLabel(ch.Gender),
		Origin:       ch.Origin,
		Location:     ch.Location,
		EpisodeCount: EpisodeCount(ch.Episode),
		Episodes:     episodes,
		Created:      created,
		NameURL:      "/character/name/" + url.PathEscape(ch.Name),
		Strategy:     "Incremental Static Regeneration",
	}
}

// PageLink is one numbered pagination link.
type PageLink struct {
	Number  int
	URL     string
	Current bool
}

// Pagination is the pager under a result grid.
type Pagination struct {
	Current int
	Total   int
	PrevURL string
	NextURL string
	Links   []PageLink
}

// NewPagination builds a pager around current. hrefFor maps a page number
// to its URL. A single page yields a zero Pagination that renders nothing.
func NewPagination(current, total int, hrefFor func(page int) string) Pagination {
	if total <= 1 {
		return Pagination{}
	}
	if current < 1 {
		current = 1
	}
	if current > total {
		current = total
	}
	p := Pagination{Current: current, Total: total}
	if current > 1 {
		p.PrevURL = hrefFor(current - 1)
	}
	if current < total {
		p.NextURL = hrefFor(current + 1)
	}
	first := max(1, current-paginationWindow)
	last := min(total, current+paginationWindow)
	for n := first; n <= last; n++ {
		p.Links = append(p.Links, PageLink{Number: n, URL: hrefFor(n), Current: n == current})
	}
	return p
}

// HomePage is the statically generated landing page.
type HomePage struct {
	Meta     Metadata
	Count    int
	Pages    int
	Shown    int
	Cards    []CharacterCard
	Strategy string
}

// NewHomePage shapes the first catalog page for the landing page.
func NewHomePage(page *entity.CharacterPage) HomePage {
	return HomePage{
		Meta:     pageMetadata("Home", "Browse every character of the Rick and Morty multiverse"),
		Count:    page.Info.Count,
		Pages:    page.Info.Pages,
		Shown:    len(page.Results),
		Cards:    NewCharacterCards(page.Results, true),
		Strategy: "Static Site Generation",
	}
}

// Option is one choice of a select control.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// ErrorView is an error message with a retry action.
type ErrorView struct {
	Title    string
	Message  string
	RetryURL string
}

// SearchPage is the interactive search page and its results fragment.
type SearchPage struct {
	Meta       Metadata
	Filters    entity.SearchFilters
	Statuses   []Option
	Genders    []Option
	Idle       bool
	Cards      []CharacterCard
	Total      int
	Page       int
	Pages      int
	Pagination Pagination
	Error      *ErrorView
	DebounceMS int
}

// NewSearchPage builds the idle search page for filters.
func NewSearchPage(filters entity.SearchFilters, debounceMS int) SearchPage {
	statuses := []Option{{Value: "", Label: "All statuses", Selected: filters.Status == ""}}
	for _, s := range entity.CharacterStatuses {
		statuses = append(statuses, Option{Value: string(s), Label: StatusLabel(s), Selected: filters.Status == string(s)})
	}
	genders := []Option{{Value: "", Label: "All genders", Selected: filters.Gender == ""}}
	for _, g := range entity.CharacterGenders {
		genders = append(genders, Option{Value: string(g), Label: GenderLabel(g), Selected: filters.Gender == string(g)})
	}
	return SearchPage{
		Meta:       pageMetadata("Search", "Find characters by name, status, species, type and gender"),
		Filters:    filters,
		Statuses:   statuses,
		Genders:    genders,
		Idle:       true,
		DebounceMS: debounceMS,
	}
}

// WithResults fills the page with one page of search results.
func (p SearchPage) WithResults(page *entity.CharacterPage, current int) SearchPage {
	p.Idle = false
	p.Cards = NewCharacterCards(page.Results, false)
	p.Total = page.Info.Count
	p.Page = current
	p.Pages = page.Info.Pages
	filters := p.Filters
	p.Pagination = NewPagination(current, page.Info.Pages, func(n int) string {
		return "/search?" + filters.WithPage(n).Query().Encode()
	})
	return p
}

// WithError replaces the results with an error and a retry link.
func (p SearchPage) WithError(message, retryURL string) SearchPage {
	p.Idle = false
	p.Error = &ErrorView{Title: "Search failed", Message: message, RetryURL: retryURL}
	return p
}

// NotFoundPage is shown for unknown ids and names.
type NotFoundPage struct {
	Meta    Metadata
	Message string
}

// NewNotFoundPage builds a not-found page with message.
func NewNotFoundPage(message string) NotFoundPage {
	if message == "" {
		message = "The character you are looking for does not exist in this dimension."
	}
	return NotFoundPage{Meta: pageMetadata("Not found", message), Message: message}
}

// ErrorPage is the generic failure page.
type ErrorPage struct {
	Meta  Metadata
	Error ErrorView
}

// NewErrorPage builds a failure page whose retry link re-requests retryURL.
func NewErrorPage(message, retryURL string) ErrorPage {
	return ErrorPage{
		Meta:  pageMetadata("Error", message),
		Error: ErrorView{Title: "Something went wrong", Message: message, RetryURL: retryURL},
	}
}
