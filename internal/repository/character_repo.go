package repository

import (
	"context"

	"github.com/user/character-explorer/internal/entity"
)

// CharacterRepository defines the read-only contract of the character catalog.
type CharacterRepository interface {
	// ListCharacters returns one page of the catalog using the given cache directive.
	ListCharacters(ctx context.Context, page int, directive entity.CacheDirective) (*entity.CharacterPage, error)
	// GetCharacterByID returns a single character or ErrNotFound.
	GetCharacterByID(ctx context.Context, id int) (*entity.Character, error)
	// GetCharacterByName returns the first character matching name or ErrNotFound.
	GetCharacterByName(ctx context.Context, name string) (*entity.Character, error)
	// SearchCharacters runs an uncached filtered search.
	SearchCharacters(ctx context.Context, filters entity.SearchFilters) (*entity.CharacterPage, error)
	// ListAllCharacterIDs walks every page and returns the ids seen before the first failure.
	ListAllCharacterIDs(ctx context.Context) []int
	// ListAllCharacterNames walks every page and returns the names seen before the first failure.
	ListAllCharacterNames(ctx context.Context) []string
}
