package handler

import (
	"bytes"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/user/character-explorer/internal/delivery/http/request"
	"github.com/user/character-explorer/internal/usecase"
	"github.com/user/character-explorer/internal/view"
)

func (h *Handler) HandleHome(w http.ResponseWriter, r *http.Request) {
	h.servePage(w, r, h.pages.Home())
}

func (h *Handler) HandleCharacter(w http.ResponseWriter, r *http.Request) {
	h.servePage(w, r, h.pages.CharacterByID(chi.URLParam(r, "id")))
}

func (h *Handler) HandleCharacterByName(w http.ResponseWriter, r *http.Request) {
	h.servePage(w, r, h.pages.CharacterByName(characterNameParam(r)))
}

// characterNameParam returns the name segment in escaped form. chi matches
// on the decoded path unless the URL needed a distinct raw path.
func characterNameParam(r *http.Request) string {
	name := chi.URLParam(r, "name")
	if r.URL.RawPath == "" {
		name = url.PathEscape(name)
	}
	return name
}

// HandleSearch renders the search page. With filters in the query string the
// first page of results is rendered in place for clients without scripts.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	page, status := h.searchPage(r)
	w.Header().Set("Cache-Control", cacheControlNoStore)
	h.render(w, r, status, view.PageSearch, page)
}

// HandleSearchResults renders only the results partial.
func (h *Handler) HandleSearchResults(w http.ResponseWriter, r *http.Request) {
	page, status := h.searchPage(r)

	var buf bytes.Buffer
	if err := h.renderer.RenderFragment(&buf, view.FragmentSearchResults, page); err != nil {
		h.logger.Error("failed to render search results", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", cacheControlNoStore)
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// HandleNotFound renders the not-found page for unknown routes.
func (h *Handler) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", cacheControlNoStore)
	h.render(w, r, http.StatusNotFound, view.PageNotFound, view.NewNotFoundPage("This page does not exist in any dimension we know of."))
}

func (h *Handler) searchPage(r *http.Request) (view.SearchPage, int) {
	filters, err := request.SearchFilters(r.URL.Query())
	page := view.NewSearchPage(filters, h.debounceMS)
	if err != nil {
		return page.WithError(err.Error(), "/search"), http.StatusBadRequest
	}

	result, err := h.catalog.Search(r.Context(), filters)
	if err != nil {
		status, message := classify(err)
		h.logFailure(r, status, err)
		return page.WithError(message, "/search?"+filters.Query().Encode()), status
	}
	if result.Idle {
		return page, http.StatusOK
	}
	current := filters.Page
	if current < 1 {
		current = 1
	}
	return page.WithResults(result.Page, current), http.StatusOK
}

func (h *Handler) servePage(w http.ResponseWriter, r *http.Request, route usecase.Route) {
	snap, err := h.pageCache.Serve(r.Context(), route)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", cacheControl(route.Directive))
	w.Header().Set("X-Build-Id", snap.BuildID)
	w.Header().Set("Last-Modified", snap.GeneratedAt.UTC().Format(http.TimeFormat))
	w.WriteHeader(snap.StatusCode)
	_, _ = w.Write(snap.Body)
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := classify(err)
	h.logFailure(r, status, err)
	w.Header().Set("Cache-Control", cacheControlNoStore)

	if status == http.StatusNotFound {
		h.render(w, r, status, view.PageNotFound, view.NewNotFoundPage(""))
		return
	}
	h.render(w, r, status, view.PageError, view.NewErrorPage(message, r.URL.RequestURI()))
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	body, err := h.renderer.RenderBytes(page, data)
	if err != nil {
		h.logger.Error("failed to render page", zap.String("page", page), zap.String("path", r.URL.Path), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
