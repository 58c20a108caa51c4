package usecase

import (
	"context"
	"net/url"

	"github.com/user/character-explorer/internal/entity"
	"github.com/user/character-explorer/internal/view"
)

// HomeTag is carried by the statically generated landing page.
const HomeTag = "home"

// RenderedPage is the output of one page render.
type RenderedPage struct {
	Body []byte
	Tags []string
}

// RenderFunc loads a page's data and renders it.
type RenderFunc func(ctx context.Context) (*RenderedPage, error)

// Route binds a canonical path to its caching policy and renderer.
type Route struct {
	Path      string
	Directive entity.CacheDirective
	Render    RenderFunc
}

// Pages builds the routes of the server-rendered pages.
type Pages interface {
	Home() Route
	CharacterByID(rawID string) Route
	CharacterByName(rawName string) Route
}

type pagesUseCase struct {
	catalog    Catalog
	renderer   *view.Renderer
	revalidate entity.CacheDirective
}

// NewPagesUseCase creates Pages rendering catalog data with renderer.
// Detail pages are regenerated after the directive's window.
func NewPagesUseCase(catalog Catalog, renderer *view.Renderer, revalidate entity.CacheDirective) Pages {
	return &pagesUseCase{catalog: catalog, renderer: renderer, revalidate: revalidate}
}

func (uc *pagesUseCase) Home() Route {
	return Route{
		Path:      "/",
		Directive: entity.StaticGeneration(),
		Render: func(ctx context.Context) (*RenderedPage, error) {
			page, err := uc.catalog.Home(ctx)
			if err != nil {
				return nil, err
			}
			return uc.render(view.PageHome, view.NewHomePage(page), HomeTag)
		},
	}
}

func (uc *pagesUseCase) CharacterByID(rawID string) Route {
	return Route{
		Path:      "/character/" + rawID,
		Directive: uc.revalidate,
		Render: func(ctx context.Context) (*RenderedPage, error) {
			ch, err := uc.catalog.CharacterByID(ctx, rawID)
			if err != nil {
				return nil, err
			}
			return uc.render(view.PageCharacter, view.NewCharacterDetail(ch), entity.CharacterTag(ch.ID))
		},
	}
}

func (uc *pagesUseCase) CharacterByName(rawName string) Route {
	path := "/character/name/" + rawName
	if name, err := DecodeCharacterName(rawName); err == nil {
		path = "/character/name/" + url.PathEscape(name)
	}
	return Route{
		Path:      path,
		Directive: uc.revalidate,
		Render: func(ctx context.Context) (*RenderedPage, error) {
			ch, err := uc.catalog.CharacterByName(ctx, rawName)
			if err != nil {
				return nil, err
			}
			name, _ := DecodeCharacterName(rawName)
			return uc.render(view.PageCharacter, view.NewCharacterDetail(ch),
				entity.CharacterNameTag(name), entity.CharacterTag(ch.ID))
		},
	}
}

func (uc *pagesUseCase) render(page string, data any, tags ...string) (*RenderedPage, error) {
	body, err := uc.renderer.RenderBytes(page, data)
	if err != nil {
		return nil, err
	}
	return &RenderedPage{Body: body, Tags: tags}, nil
}
