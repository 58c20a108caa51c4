// Package tui is a terminal search client for the character catalog.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/user/character-explorer/internal/entity"
	"github.com/user/character-explorer/internal/repository"
	"github.com/user/character-explorer/internal/search"
	"github.com/user/character-explorer/internal/usecase"
	"github.com/user/character-explorer/internal/view"
)

const searchTimeout = 15 * time.Second

// Searcher runs one search. usecase.Catalog satisfies it.
type Searcher interface {
	Search(ctx context.Context, filters entity.SearchFilters) (*usecase.SearchResult, error)
}

// requestMsg carries a request issued by the form.
type requestMsg search.Request

// resultMsg carries the outcome of one request.
type resultMsg struct {
	seq    uint64
	page   int
	result *usecase.SearchResult
	err    error
}

type focus int

const (
	focusName focus = iota
	focusStatus
	focusSpecies
	focusType
	focusGender
	focusCount
)

var focusLabels = [focusCount]string{"Name", "Status", "Species", "Type", "Gender"}

// Model is the bubbletea model of the search client.
type Model struct {
	searcher Searcher
	form     *search.Form
	requests chan search.Request
	styles   Styles

	inputs map[focus]*textinput.Model
	status int // index into statusChoices
	gender int // index into genderChoices
	focus  focus

	loading bool
	page    int
	result  *usecase.SearchResult
	err     error
	dropped int
	width   int
}

var (
	statusChoices = append([]string{""}, statuses()...)
	genderChoices = append([]string{""}, genders()...)
)

func statuses() []string {
	out := make([]string, 0, len(entity.CharacterStatuses))
	for _, s := range entity.CharacterStatuses {
		out = append(out, string(s))
	}
	return out
}

func genders() []string {
	out := make([]string, 0, len(entity.CharacterGenders))
	for _, g := range entity.CharacterGenders {
		out = append(out, string(g))
	}
	return out
}

// NewModel creates an idle search client. Edits are debounced by delay.
func NewModel(searcher Searcher, delay time.Duration) *Model {
	m := &Model{
		searcher: searcher,
		requests: make(chan search.Request, 16),
		styles:   DefaultStyles(),
		inputs:   make(map[focus]*textinput.Model, 3),
		page:     1,
	}
	for _, f := range []focus{focusName, focusSpecies, focusType} {
		ti := textinput.New()
		ti.Placeholder = strings.ToLower(focusLabels[f])
		ti.CharLimit = 64
		ti.Width = 30
		ti.Prompt = ""
		m.inputs[f] = &ti
	}
	m.inputs[focusName].Focus()
	m.form = search.NewForm(delay, func(req search.Request) { m.requests <- req })
	return m
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForRequest())
}

// waitForRequest delivers the next form request to Update.
func (m *Model) waitForRequest() tea.Cmd {
	return func() tea.Msg {
		req, ok := <-m.requests
		if !ok {
			return nil
		}
		return requestMsg(req)
	}
}

func (m *Model) runSearch(req search.Request) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), searchTimeout)
		defer cancel()
		page := req.Filters.Page
		if page < 1 {
			page = 1
		}
		res, err := m.searcher.Search(ctx, req.Filters)
		return resultMsg{seq: req.Seq, page: page, result: res, err: err}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case requestMsg:
		m.loading = true
		return m, tea.Batch(m.runSearch(search.Request(msg)), m.waitForRequest())

	case resultMsg:
		if !m.form.Current(msg.seq) {
			m.dropped++
			return m, nil
		}
		m.loading = false
		m.result, m.err, m.page = msg.result, msg.err, msg.page
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.form.Close()
		return m, tea.Quit
	case "tab", "down":
		m.setFocus((m.focus + 1) % focusCount)
		return m, nil
	case "shift+tab", "up":
		m.setFocus((m.focus + focusCount - 1) % focusCount)
		return m, nil
	case "ctrl+r":
		m.clear()
		return m, nil
	case "pgdown", "ctrl+n":
		m.turnPage(1)
		return m, nil
	case "pgup", "ctrl+p":
		m.turnPage(-1)
		return m, nil
	}

	switch m.focus {
	case focusStatus:
		if d := cycleDelta(msg); d != 0 {
			m.status = cycle(m.status, d, len(statusChoices))
			_ = m.form.Set(search.FieldStatus, statusChoices[m.status])
			m.resetIfIdle()
		}
		return m, nil
	case focusGender:
		if d := cycleDelta(msg); d != 0 {
			m.gender = cycle(m.gender, d, len(genderChoices))
			_ = m.form.Set(search.FieldGender, genderChoices[m.gender])
			m.resetIfIdle()
		}
		return m, nil
	}

	input := m.inputs[m.focus]
	before := input.Value()
	updated, cmd := input.Update(msg)
	*input = updated
	if after := input.Value(); after != before {
		_ = m.form.Set(fieldFor(m.focus), after)
		m.resetIfIdle()
	}
	return m, cmd
}

// resetIfIdle drops the last outcome once no filter is left; late
// responses for it are discarded by the form.
func (m *Model) resetIfIdle() {
	if m.form.State() != search.StateIdle {
		return
	}
	m.loading = false
	m.result, m.err = nil, nil
	m.page = 1
}

func (m *Model) setFocus(f focus) {
	if in, ok := m.inputs[m.focus]; ok {
		in.Blur()
	}
	m.focus = f
	if in, ok := m.inputs[f]; ok {
		in.Focus()
	}
}

func (m *Model) clear() {
	for _, in := range m.inputs {
		in.SetValue("")
	}
	m.status, m.gender = 0, 0
	m.page = 1
	m.form.Clear()
}

func (m *Model) turnPage(delta int) {
	if m.result == nil || m.result.Idle || m.result.Page == nil {
		return
	}
	next := m.page + delta
	if next < 1 || next > m.result.Page.Info.Pages {
		return
	}
	m.form.SetPage(next)
}

func fieldFor(f focus) search.Field {
	switch f {
	case focusSpecies:
		return search.FieldSpecies
	case focusType:
		return search.FieldType
	default:
		return search.FieldName
	}
}

func cycleDelta(msg tea.KeyMsg) int {
	switch msg.String() {
	case "right", "l", " ", "enter":
		return 1
	case "left", "h":
		return -1
	}
	return 0
}

func cycle(i, delta, n int) int {
	return ((i+delta)%n + n) % n
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Header.Render("Rick and Morty Explorer · search"))
	b.WriteString("\n\n")

	for f := focus(0); f < focusCount; f++ {
		label := m.styles.Label.Render(focusLabels[f])
		if f == m.focus {
			label = m.styles.Focused.Render("› " + focusLabels[f])
		}
		b.WriteString(label)
		switch f {
		case focusStatus:
			b.WriteString(m.choice(statusChoices[m.status], "any status"))
		case focusGender:
			b.WriteString(m.choice(genderChoices[m.gender], "any gender"))
		default:
			b.WriteString(m.inputs[f].View())
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.results())
	b.WriteString(m.styles.Footer.Render("tab focus · ←/→ cycle · ctrl+r clear · pgup/pgdn page · esc quit"))
	return b.String()
}

func (m *Model) choice(value, empty string) string {
	if value == "" {
		return m.styles.Muted.Render("‹ " + empty + " ›")
	}
	return m.styles.Selected.Render("‹ " + value + " ›")
}

func (m *Model) results() string {
	var b strings.Builder
	switch {
	case m.form.State() == search.StateIdle:
		b.WriteString(m.styles.Muted.Render("Start typing or pick a filter to search the multiverse."))
		b.WriteString("\n")
	case m.err != nil:
		b.WriteString(m.styles.Error.Render(errorMessage(m.err)))
		b.WriteString("\n")
	case m.result == nil || m.result.Idle:
		b.WriteString(m.styles.Muted.Render("Start typing or pick a filter to search the multiverse."))
		b.WriteString("\n")
	case len(m.result.Page.Results) == 0:
		b.WriteString(m.styles.Muted.Render("No characters found matching your filters."))
		b.WriteString("\n")
	default:
		info := m.result.Page.Info
		b.WriteString(fmt.Sprintf("Found %d characters · page %d of %d\n", info.Count, m.page, max(info.Pages, 1)))
		for _, ch := range m.result.Page.Results {
			b.WriteString(fmt.Sprintf("  %-4d %s  %s  %s\n",
				ch.ID,
				m.styles.Name.Render(ch.Name),
				m.statusStyle(ch.Status).Render(view.StatusLabel(ch.Status)),
				m.styles.Muted.Render(ch.Species),
			))
		}
	}
	if m.loading || m.form.Pending() {
		b.WriteString(m.styles.Muted.Render("searching…"))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) statusStyle(s entity.CharacterStatus) lipgloss.Style {
	switch s {
	case entity.StatusAlive:
		return m.styles.Alive
	case entity.StatusDead:
		return m.styles.Dead
	default:
		return m.styles.Unknown
	}
}

func errorMessage(err error) string {
	var upErr *repository.UpstreamError
	switch {
	case errors.Is(err, repository.ErrNetwork):
		return "Network error - please check your internet connection"
	case errors.As(err, &upErr):
		return upErr.Error()
	default:
		return "Search failed: " + err.Error()
	}
}
