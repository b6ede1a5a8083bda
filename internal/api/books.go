package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/booknestapp/booknest-server/internal/books"
	"github.com/booknestapp/booknest-server/internal/models"
)

// HandleSearchBooks searches OpenLibrary, annotates each result with local
// rating data and, when any filter bound is set, filters and repaginates the
// annotated list.
func (a *Api) HandleSearchBooks(w http.ResponseWriter, r *http.Request) {
	var params models.SearchBookRequest

	if err := decodeJson(r, &params); err != nil {
		a.logger.Warn(err.Error(), "service", "HandleSearchBooks")
		respondWithError(w, http.StatusBadRequest, err)
		return
	}

	if err := validate.Struct(&params); err != nil {
		a.logger.Warn(fmt.Sprintf("error validating fields: %v", err), "service", "HandleSearchBooks")
		respondWithError(w, http.StatusBadRequest, fmt.Errorf("error validating fields: %v", err))
		return
	}

	if params.Limit == 0 {
		params.Limit = 10
	}

	if params.Page == 0 {
		params.Page = 1
	}

	data, err := a.catalog.Search(r.Context(), params.Search, params.Limit, params.Page)

	if err != nil {
		a.logger.Error(err.Error(), "service", "HandleSearchBooks")
		respondWithError(w, http.StatusBadGateway, fmt.Errorf("error searching for books"))
		return
	}

	if err := books.AttachRatings(r.Context(), a.store, data.Results); err != nil {
		a.logger.Error(err.Error(), "service", "HandleSearchBooks")
		respondWithError(w, http.StatusInternalServerError, fmt.Errorf("error searching for books"))
		return
	}

	hasFilter := params.MinRating != nil || params.MaxRating != nil ||
		params.PubDateStart != "" || params.PubDateEnd != ""

	if !hasFilter {
		respondWithSuccess(w, http.StatusOK, data)
		return
	}

	page := books.FilterAndPage(data.Results, books.FilterCriteria{
		MinRating:    params.MinRating,
		MaxRating:    params.MaxRating,
		PubDateStart: params.PubDateStart,
		PubDateEnd:   params.PubDateEnd,
		Page:         params.Page,
		Limit:        params.Limit,
	})

	respondWithSuccess(w, http.StatusOK, page)
}

// HandleOpenLibrarySearch is the unauthenticated normalized passthrough to
// the catalog search API.
func (a *Api) HandleOpenLibrarySearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")

	if q == "" {
		a.logger.Warn("missing query parameter q", "service", "HandleOpenLibrarySearch")
		respondWithError(w, http.StatusBadRequest, fmt.Errorf("missing query parameter q"))
		return
	}

	limit := queryInt(r, "limit", 10)

	if limit < 1 || limit > 50 {
		respondWithError(w, http.StatusBadRequest, fmt.Errorf("limit must be between 1 and 50"))
		return
	}

	page := queryInt(r, "page", 1)

	if page < 1 {
		respondWithError(w, http.StatusBadRequest, fmt.Errorf("page must be at least 1"))
		return
	}

	data, err := a.catalog.Search(r.Context(), q, limit, page)

	if err != nil {
		a.logger.Error(err.Error(), "service", "HandleOpenLibrarySearch")
		respondWithError(w, http.StatusBadGateway, fmt.Errorf("error searching for books"))
		return
	}

	respondWithSuccess(w, http.StatusOK, data)
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)

	if raw == "" {
		return fallback
	}

	n, err := strconv.Atoi(raw)

	if err != nil {
		return -1
	}

	return n
}
