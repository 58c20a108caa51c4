package usecase

import (
	"context"
	"strings"
	"sync"

	"github.com/user/character-explorer/internal/entity"
	"github.com/user/character-explorer/internal/repository"
)

// fakeCharacterRepo is an in-memory catalog that records how it was called.
type fakeCharacterRepo struct {
	mu         sync.Mutex
	characters map[int]entity.Character
	failIDs    map[int]error
	searchErr  error
	calls      map[string]int
	directives []entity.CacheDirective
	searches   []entity.SearchFilters
}

func newFakeCharacterRepo(chars ...entity.Character) *fakeCharacterRepo {
	f := &fakeCharacterRepo{
		characters: make(map[int]entity.Character),
		failIDs:    make(map[int]error),
		calls:      make(map[string]int),
	}
	for _, ch := range chars {
		f.characters[ch.ID] = ch
	}
	return f
}

func (f *fakeCharacterRepo) called(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeCharacterRepo) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
}

func (f *fakeCharacterRepo) sorted() []entity.Character {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]entity.Character, 0, len(f.characters))
	for id := 1; len(out) < len(f.characters); id++ {
		if ch, ok := f.characters[id]; ok {
			out = append(out, ch)
		}
	}
	return out
}

func (f *fakeCharacterRepo) ListCharacters(_ context.Context, page int, directive entity.CacheDirective) (*entity.CharacterPage, error) {
	f.record("list")
	f.mu.Lock()
	f.directives = append(f.directives, directive)
	f.mu.Unlock()
	chars := f.sorted()
	return &entity.CharacterPage{Info: entity.PageInfo{Count: len(chars), Pages: 1}, Results: chars}, nil
}

func (f *fakeCharacterRepo) GetCharacterByID(_ context.Context, id int) (*entity.Character, error) {
	f.record("id")
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failIDs[id]; ok {
		return nil, err
	}
	ch, ok := f.characters[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &ch, nil
}

func (f *fakeCharacterRepo) GetCharacterByName(_ context.Context, name string) (*entity.Character, error) {
	f.record("name")
	for _, ch := range f.sorted() {
		if strings.EqualFold(ch.Name, name) {
			return &ch, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeCharacterRepo) SearchCharacters(_ context.Context, filters entity.SearchFilters) (*entity.CharacterPage, error) {
	f.record("search")
	f.mu.Lock()
	f.searches = append(f.searches, filters)
	err := f.searchErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	var out []entity.Character
	for _, ch := range f.sorted() {
		if strings.Contains(strings.ToLower(ch.Name), strings.ToLower(filters.Name)) {
			out = append(out, ch)
		}
	}
	if len(out) == 0 {
		return nil, repository.ErrNotFound
	}
	return &entity.CharacterPage{Info: entity.PageInfo{Count: len(out), Pages: 1}, Results: out}, nil
}

func (f *fakeCharacterRepo) ListAllCharacterIDs(context.Context) []int {
	var ids []int
	for _, ch := range f.sorted() {
		ids = append(ids, ch.ID)
	}
	return ids
}

func (f *fakeCharacterRepo) ListAllCharacterNames(context.Context) []string {
	var names []string
	for _, ch := range f.sorted() {
		names = append(names, ch.Name)
	}
	return names
}

type fakeInvalidator struct {
	n   int
	err error
	got []string
}

func (f *fakeInvalidator) InvalidateTag(_ context.Context, tag string) (int, error) {
	f.got = append(f.got, tag)
	return f.n, f.err
}

func character(id int, name string) entity.Character {
	return entity.Character{
		ID:      id,
		Name:    name,
		Status:  entity.StatusAlive,
		Species: "Human",
		Gender:  entity.GenderMale,
		Origin:  entity.Location{Name: "Earth (C-137)"},
		Episode: []string{"https://example.test/api/episode/1"},
	}
}
