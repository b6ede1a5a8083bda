package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/booknestapp/booknest-server/internal/books"
	"github.com/booknestapp/booknest-server/internal/models"
)

// HandleAddUserBook adds a book to the caller's reading list, or updates the
// status and timestamp when the book is already there.
func (a *Api) HandleAddUserBook(w http.ResponseWriter, r *http.Request) {
	user, ok := userID(r)

	if !ok {
		respondWithError(w, http.StatusUnauthorized, fmt.Errorf("missing user identity"))
		return
	}

	var params models.AddUserBookRequest

	if err := decodeJson(r, &params); err != nil {
		a.logger.Warn(err.Error(), "service", "HandleAddUserBook")
		respondWithError(w, http.StatusBadRequest, err)
		return
	}

	if err := validate.Struct(&params); err != nil {
		a.logger.Warn(fmt.Sprintf("error validating fields: %v", err), "service", "HandleAddUserBook")
		respondWithError(w, http.StatusBadRequest, fmt.Errorf("error validating fields: %v", err))
		return
	}

	tx, err := a.store.Begin(r.Context())

	if err != nil {
		a.logger.Error(err.Error(), "service", "HandleAddUserBook")
		respondWithError(w, http.StatusInternalServerError, fmt.Errorf("failed to add book"))
		return
	}

	defer func() { _ = tx.Rollback() }()

	bookID, err := books.ResolveOrCreate(r.Context(), tx, params.BookMetadata)

	if err != nil {
		a.logger.Error(err.Error(), "service", "HandleAddUserBook")
		respondWithError(w, http.StatusInternalServerError, fmt.Errorf("failed to add book"))
		return
	}

	if err := tx.UpsertUserBook(r.Context(), user, bookID, params.Status); err != nil {
		a.logger.Error(err.Error(), "service", "HandleAddUserBook")
		respondWithError(w, http.StatusInternalServerError, fmt.Errorf("failed to add book"))
		return
	}

	if err := tx.LogActivity(r.Context(), user, models.ActionStatus, bookID); err != nil {
		a.logger.Error(err.Error(), "service", "HandleAddUserBook")
		respondWithError(w, http.StatusInternalServerError, fmt.Errorf("failed to add book"))
		return
	}

	if err := tx.Commit(); err != nil {
		a.logger.Error(err.Error(), "service", "HandleAddUserBook")
		respondWithError(w, http.StatusInternalServerError, fmt.Errorf("failed to add book"))
		return
	}

	respondWithSuccess(w, http.StatusOK, map[string]any{
		"success": true,
		"book_id": bookID,
		"message": fmt.Sprintf("Book added to %s", params.Status),
	})
}

// HandleMyBooks lists the caller's reading list grouped into the three fixed
// status buckets. Empty buckets are present so the frontend can render them.
func (a *Api) HandleMyBooks(w http.ResponseWriter, r *http.Request) {
	user, ok := userID(r)

	if !ok {
		respondWithError(w, http.StatusUnauthorized, fmt.Errorf("missing user identity"))
		return
	}

	entries, err := a.store.UserBooks(r.Context(), user)

	if err != nil {
		a.logger.Error(err.Error(), "service", "HandleMyBooks")
		respondWithError(w, http.StatusInternalServerError, fmt.Errorf("failed to load books"))
		return
	}

	buckets := map[string][]models.ReadingListBook{}

	for _, status := range models.ReadingStatuses {
		buckets[status] = []models.ReadingListBook{}
	}

	for _, entry := range entries {
		buckets[entry.Status] = append(buckets[entry.Status], entry)
	}

	respondWithSuccess(w, http.StatusOK, map[string]any{"books": buckets})
}

// HandleRemoveUserBook removes a book from the caller's reading list.
// Removing a book that isn't there reports not found.
func (a *Api) HandleRemoveUserBook(w http.ResponseWriter, r *http.Request) {
	user, ok := userID(r)

	if !ok {
		respondWithError(w, http.StatusUnauthorized, fmt.Errorf("missing user identity"))
		return
	}

	bookID, err := strconv.ParseInt(chi.URLParam(r, "bookId"), 10, 64)

	if err != nil {
		respondWithError(w, http.StatusBadRequest, fmt.Errorf("invalid book id"))
		return
	}

	tx, err := a.store.Begin(r.Context())

	if err != nil {
		a.logger.Error(err.Error(), "service", "HandleRemoveUserBook")
		respondWithError(w, http.StatusInternalServerError, fmt.Errorf("failed to remove book"))
		return
	}

	defer func() { _ = tx.Rollback() }()

	removed, err := tx.RemoveUserBook(r.Context(), user, bookID)

	if err != nil {
		a.logger.Error(err.Error(), "service", "HandleRemoveUserBook")
		respondWithError(w, http.StatusInternalServerError, fmt.Errorf("failed to remove book"))
		return
	}

	if !removed {
		respondWithError(w, http.StatusNotFound, errors.New("book not in reading list"))
		return
	}

	if err := tx.Commit(); err != nil {
		a.logger.Error(err.Error(), "service", "HandleRemoveUserBook")
		respondWithError(w, http.StatusInternalServerError, fmt.Errorf("failed to remove book"))
		return
	}

	respondWithSuccess(w, http.StatusOK, map[string]any{"success": true})
}
