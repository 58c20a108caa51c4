// Package search holds the interactive search form state shared by the
// browser page and the terminal client.
package search

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/user/character-explorer/internal/entity"
)

// DefaultDebounce is the quiet period before an edit turns into a search.
const DefaultDebounce = 300 * time.Millisecond

// Field names a filter input.
type Field string

const (
	FieldName    Field = "name"
	FieldStatus  Field = "status"
	FieldSpecies Field = "species"
	FieldType    Field = "type"
	FieldGender  Field = "gender"
)

// State is the form's position in its two-state machine.
type State int

const (
	// StateIdle means no filter is populated; no search is issued.
	StateIdle State = iota
	// StateFiltering means at least one filter is populated.
	StateFiltering
)

func (s State) String() string {
	if s == StateFiltering {
		return "filtering"
	}
	return "idle"
}

// Request is a search the host should run. Seq increases with every
// request so hosts can drop responses that arrive after a newer request.
type Request struct {
	Filters entity.SearchFilters
	Seq     uint64
}

// Form tracks filter edits and turns them into debounced search requests.
type Form struct {
	debouncer *Debouncer
	onSearch  func(Request)

	mu      sync.Mutex
	filters entity.SearchFilters
	seq     uint64
}

// NewForm creates an idle form. onSearch is called from the caller's
// goroutine for Clear and SetPage and from a timer goroutine for debounced edits.
func NewForm(delay time.Duration, onSearch func(Request)) *Form {
	return newForm(delay, realAfterFunc, onSearch)
}

func newForm(delay time.Duration, af AfterFunc, onSearch func(Request)) *Form {
	return &Form{
		debouncer: newDebouncer(delay, af),
		onSearch:  onSearch,
	}
}

// Set updates one filter immediately. In the filtering state it restarts the
// debounce window; reaching the idle state cancels any pending search and
// retires every request already issued.
func (f *Form) Set(field Field, value string) error {
	if strings.TrimSpace(value) == "" {
		value = ""
	}

	f.mu.Lock()
	switch field {
	case FieldName:
		f.filters.Name = value
	case FieldSpecies:
		f.filters.Species = value
	case FieldType:
		f.filters.Type = value
	case FieldStatus:
		if value != "" && !entity.CharacterStatus(value).Valid() {
			f.mu.Unlock()
			return fmt.Errorf("invalid status %q", value)
		}
		f.filters.Status = value
	case FieldGender:
		if value != "" && !entity.CharacterGender(value).Valid() {
			f.mu.Unlock()
			return fmt.Errorf("invalid gender %q", value)
		}
		f.filters.Gender = value
	default:
		f.mu.Unlock()
		return fmt.Errorf("unknown search field %q", field)
	}
	idle := f.filters.IsEmpty()
	if idle {
		// Responses to requests issued before going idle are stale.
		f.seq++
	}
	f.mu.Unlock()

	if idle {
		f.debouncer.Cancel()
		return nil
	}
	f.debouncer.Trigger(f.fire)
	return nil
}

// SetPage issues a search for page right away. It does nothing while idle
// and reports whether a request was issued.
func (f *Form) SetPage(page int) bool {
	if page < 1 {
		page = 1
	}
	f.mu.Lock()
	if f.filters.IsEmpty() {
		f.mu.Unlock()
		return false
	}
	req := f.nextRequestLocked(f.filters.WithPage(page))
	f.mu.Unlock()

	f.debouncer.Cancel()
	f.onSearch(req)
	return true
}

// Clear empties every filter, cancels a pending search and immediately
// issues a request with empty filters. Hosts render that as the untouched
// state, not as zero results.
func (f *Form) Clear() {
	f.debouncer.Cancel()

	f.mu.Lock()
	f.filters = entity.SearchFilters{}
	req := f.nextRequestLocked(entity.SearchFilters{})
	f.mu.Unlock()

	f.onSearch(req)
}

// Filters returns the current filter values.
func (f *Form) Filters() entity.SearchFilters {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.filters
}

// State derives the state from the current filters.
func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.filters.IsEmpty() {
		return StateIdle
	}
	return StateFiltering
}

// Pending reports whether a debounced search is waiting to fire.
func (f *Form) Pending() bool {
	return f.debouncer.Pending()
}

// Current reports whether seq belongs to the latest issued request.
func (f *Form) Current(seq uint64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return seq == f.seq
}

// Close cancels pending work; later edits no longer issue searches.
func (f *Form) Close() {
	f.debouncer.Stop()
}

func (f *Form) fire() {
	f.mu.Lock()
	if f.filters.IsEmpty() {
		f.mu.Unlock()
		return
	}
	req := f.nextRequestLocked(f.filters.WithPage(1))
	f.mu.Unlock()

	f.onSearch(req)
}

func (f *Form) nextRequestLocked(filters entity.SearchFilters) Request {
	f.seq++
	return Request{Filters: filters, Seq: f.seq}
}
