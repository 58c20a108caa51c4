package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/user/character-explorer/internal/entity"
	"github.com/user/character-explorer/internal/repository"
)

var (
	// ErrInvalidID is returned for ids that are not positive integers.
	ErrInvalidID = errors.New("invalid character id")
	// ErrInvalidName is returned for empty or undecodable names.
	ErrInvalidName = errors.New("invalid character name")
	// ErrEmptyTag is returned when revalidation is requested without a tag.
	ErrEmptyTag = errors.New("revalidation tag is required")
)

// TagInvalidator drops cached content carrying a tag.
type TagInvalidator interface {
	InvalidateTag(ctx context.Context, tag string) (int, error)
}

// SearchResult is the outcome of one search. Idle results carry no page.
type SearchResult struct {
	Filters entity.SearchFilters
	Idle    bool
	Page    *entity.CharacterPage
}

// Catalog loads the data behind every page.
type Catalog interface {
	Home(ctx context.Context) (*entity.CharacterPage, error)
	ListPage(ctx context.Context, page int) (*entity.CharacterPage, error)
	CharacterByID(ctx context.Context, rawID string) (*entity.Character, error)
	CharacterByName(ctx context.Context, rawName string) (*entity.Character, error)
	Search(ctx context.Context, filters entity.SearchFilters) (*SearchResult, error)
	CharacterIDs(ctx context.Context) []int
	CharacterNames(ctx context.Context) []string
	Revalidate(ctx context.Context, tag string) (int, error)
}

type catalogUseCase struct {
	characterRepo repository.CharacterRepository
	invalidators  []TagInvalidator
	logger        *zap.Logger
}

// NewCatalogUseCase creates a Catalog over characterRepo. Revalidate fans out
// to every invalidator.
func NewCatalogUseCase(characterRepo repository.CharacterRepository, logger *zap.Logger, invalidators ...TagInvalidator) Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &catalogUseCase{
		characterRepo: characterRepo,
		invalidators:  invalidators,
		logger:        logger,
	}
}

func (uc *catalogUseCase) Home(ctx context.Context) (*entity.CharacterPage, error) {
	return uc.characterRepo.ListCharacters(ctx, 1, entity.StaticGeneration())
}

func (uc *catalogUseCase) ListPage(ctx context.Context, page int) (*entity.CharacterPage, error) {
	if page < 1 {
		page = 1
	}
	return uc.characterRepo.ListCharacters(ctx, page, entity.StaticGeneration())
}

func (uc *catalogUseCase) CharacterByID(ctx context.Context, rawID string) (*entity.Character, error) {
	id, err := ParseCharacterID(rawID)
	if err != nil {
		return nil, err
	}
	return uc.characterRepo.GetCharacterByID(ctx, id)
}

func (uc *catalogUseCase) CharacterByName(ctx context.Context, rawName string) (*entity.Character, error) {
	name, err := DecodeCharacterName(rawName)
	if err != nil {
		return nil, err
	}
	return uc.characterRepo.GetCharacterByName(ctx, name)
}

// Search runs filters against the catalog. Empty filters are the idle state
// and never reach the upstream. A 404 from the catalog is an empty result.
func (uc *catalogUseCase) Search(ctx context.Context, filters entity.SearchFilters) (*SearchResult, error) {
	if filters.IsEmpty() {
		return &SearchResult{Filters: filters, Idle: true}, nil
	}
	page, err := uc.characterRepo.SearchCharacters(ctx, filters)
	if errors.Is(err, repository.ErrNotFound) {
		return &SearchResult{Filters: filters, Page: &entity.CharacterPage{}}, nil
	}
	if err != nil {
		return nil, err
	}
	return &SearchResult{Filters: filters, Page: page}, nil
}

func (uc *catalogUseCase) CharacterIDs(ctx context.Context) []int {
	return uc.characterRepo.ListAllCharacterIDs(ctx)
}

func (uc *catalogUseCase) CharacterNames(ctx context.Context) []string {
	return uc.characterRepo.ListAllCharacterNames(ctx)
}

// Revalidate invalidates tag everywhere and reports the number of entries
// dropped. Every invalidator runs even when an earlier one fails.
func (uc *catalogUseCase) Revalidate(ctx context.Context, tag string) (int, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return 0, ErrEmptyTag
	}

	var (
		total int
		errs  []error
	)
	for _, inv := range uc.invalidators {
		n, err := inv.InvalidateTag(ctx, tag)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		total += n
	}
	if err := errors.Join(errs...); err != nil {
		return total, fmt.Errorf("revalidate %q: %w", tag, err)
	}
	uc.logger.Info("revalidated tag", zap.String("tag", tag), zap.Int("entries", total))
	return total, nil
}

// ParseCharacterID accepts positive decimal ids only.
func ParseCharacterID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, raw)
	}
	return id, nil
}

// DecodeCharacterName unescapes a name taken from a URL path segment.
func DecodeCharacterName(raw string) (string, error) {
	name, err := url.PathUnescape(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidName, err)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrInvalidName
	}
	return name, nil
}
