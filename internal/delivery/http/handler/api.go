package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/user/character-explorer/internal/delivery/http/request"
	"github.com/user/character-explorer/internal/delivery/http/response"
	"github.com/user/character-explorer/internal/entity"
)

func (h *Handler) HandleListCharacters(w http.ResponseWriter, r *http.Request) {
	page, err := request.Page(r.URL.Query())
	if err != nil {
		h.writeAPIError(w, r, err)
		return
	}

	result, err := h.catalog.ListPage(r.Context(), page)
	if err != nil {
		h.writeAPIError(w, r, err)
		return
	}
	w.Header().Set("Cache-Control", cacheControl(entity.StaticGeneration()))
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) HandleSearchCharacters(w http.ResponseWriter, r *http.Request) {
	filters, err := request.SearchFilters(r.URL.Query())
	if err != nil {
		h.writeAPIError(w, r, err)
		return
	}

	result, err := h.catalog.Search(r.Context(), filters)
	if err != nil {
		h.writeAPIError(w, r, err)
		return
	}

	resp := response.SearchResponse{Idle: result.Idle, Results: []entity.Character{}}
	if !result.Idle {
		resp.Info = &result.Page.Info
		if result.Page.Results != nil {
			resp.Results = result.Page.Results
		}
	}
	w.Header().Set("Cache-Control", cacheControlNoStore)
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) HandleGetCharacter(w http.ResponseWriter, r *http.Request) {
	ch, err := h.catalog.CharacterByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeAPIError(w, r, err)
		return
	}
	w.Header().Set("Cache-Control", cacheControl(h.pages.CharacterByID(chi.URLParam(r, "id")).Directive))
	h.writeJSON(w, http.StatusOK, ch)
}

// HandleRevalidate drops cached data and pages carrying a tag. The tag is
// read from the JSON body, or from the query string when the body is empty.
func (h *Handler) HandleRevalidate(w http.ResponseWriter, r *http.Request) {
	var req request.RevalidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Tag == "" {
		req.Tag = r.URL.Query().Get("tag")
	}

	entries, err := h.catalog.Revalidate(r.Context(), req.Tag)
	if err != nil {
		h.writeAPIError(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", cacheControlNoStore)
	h.writeJSON(w, http.StatusOK, response.RevalidateResponse{
		Revalidated: true,
		Tag:         req.Tag,
		Entries:     entries,
		Now:         h.now().UTC(),
	})
}

func (h *Handler) writeAPIError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := classify(err)
	h.logFailure(r, status, err)
	w.Header().Set("Cache-Control", cacheControlNoStore)
	h.writeJSONError(w, message, status)
}
