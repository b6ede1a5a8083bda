package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/booknestapp/booknest-server/internal/books"
	"github.com/booknestapp/booknest-server/internal/models"
	"github.com/booknestapp/booknest-server/internal/store"
)

// HandleCreateCollection creates a named collection for the caller. A
// case-insensitive duplicate name is a structured outcome, not an HTTP error,
// so the frontend can show a specific message.
func (a *Api) HandleCreateCollection(w http.ResponseWriter, r *http.Request) {
	user, ok := userID(r)

	if !ok {
		respondWithError(w, http.StatusUnauthorized, fmt.Errorf("missing user identity"))
		return
	}

	var params models.CreateCollectionRequest

	if err := decodeJson(r, &params); err != nil {
		a.logger.Warn(err.Error(), "service", "HandleCreateCollection")
		respondWithError(w, http.StatusBadRequest, err)
		return
	}

	if err := validate.Struct(&params); err != nil {
		a.logger.Warn(fmt.Sprintf("error validating fields: %v", err), "service", "HandleCreateCollection")
		respondWithError(w, http.StatusBadRequest, fmt.Errorf("error validating fields: %v", err))
		return
	}

	name := strings.TrimSpace(params.Name)

	if name == "" {
		respondWithError(w, http.StatusBadRequest, fmt.Errorf("collection name must not be empty"))
		return
	}

	tx, err := a.store.Begin(r.Context())

	if err != nil {
		a.logger.Error(err.Error(), "service", "HandleCreateCollection")
		respondWithError(w, http.StatusInternalServerError, fmt.Errorf("failed to create collection"))
		return
	}

	defer func() { _ = tx.Rollback() }()

	_, err = tx.CollectionIDByName(r.Context(), user, name)

	if err == nil {
		respondWithSuccess(w, http.StatusOK, map[string]any{
			"success": false,
			"error":   "collection name already created",
		})
		return
	}

	if !errors.Is(err, store.ErrCollectionNotFound) {
		a.logger.Error(err.Error(), "service", "HandleCreateCollection")
		respondWithError(w, http.StatusInternalServerError, fmt.Errorf("failed to create collection"))
		return
	}

	id, err := tx.CreateCollection(r.Context(), user, name, params.IconId)

	if errors.Is(err, store.ErrDuplicate) {
		// Lost a race against a concurrent create with the same name.
		respondWithSuccess(w, http.StatusOK, map[string]any{
			"success": false,
			"error":   "collection name already created",
		})
		return
	}

	if err != nil {
		a.logger.Error(err.Error(), "service", "HandleCreateCollection")
		respondWithError(w, http.StatusInternalServerError, fmt.Errorf("failed to create collection"))
		return
	}

	if err := tx.Commit(); err != nil {
		a.logger.Error(err.Error(), "service", "HandleCreateCollection")
		respondWithError(w, http.StatusInternalServerError, fmt.Errorf("failed to create collection"))
		return
	}

	respondWithSuccess(w, http.StatusOK, map[string]any{
		"success":      true,
		"collectionId": strconv.FormatInt(id, 10),
		"created":      true,
	})
}

// HandleGetCollections lists a user's collections, newest first. With an
// explicit user_id query parameter any user's collections are readable;
// without one the caller's own identity is required.
func (a *Api) HandleGetCollections(w http.ResponseWriter, r *http.Request) {
	target, ok := userID(r)

	if raw := r.URL.Query().Get("user_id"); raw != "" {
		id, err := uuid.Parse(raw)

		if err != nil {
			respondWithError(w, http.StatusBadRequest, fmt.Errorf("invalid user id"))
			return
		}

		target = id
		ok = true
	}

	if !ok {
		respondWithError(w, http.StatusUnauthorized, fmt.Errorf("missing user identity"))
		return
	}

	collections, err := a.store.UserCollections(r.Context(), target)

	if err != nil {
		a.logger.Error(err.Error(), "service", "HandleGetCollections")
		respondWithError(w, http.StatusInternalServerError, fmt.Errorf("failed to load collections"))
		return
	}

	respondWithSuccess(w, http.StatusOK, map[string]any{"collections": collections})
}

// HandleGetCollectionBooks lists the books of a collection with details and
// position. Collections are public-readable by id once known.
func (a *Api) HandleGetCollectionBooks(w http.ResponseWriter, r *http.Request) {
	collectionID, err := strconv.ParseInt(chi.URLParam(r, "collectionId"), 10, 64)

	if err != nil {
		respondWithError(w, http.StatusBadRequest, fmt.Errorf("invalid collection id"))
		return
	}

	if _, err := a.store.CollectionOwner(r.Context(), collectionID); err != nil {
		if errors.Is(err, store.ErrCollectionNotFound) {
			respondWithError(w, http.StatusNotFound, fmt.Errorf("collection not found"))
			return
		}

		a.logger.Error(err.Error(), "service", "HandleGetCollectionBooks")
		respondWithError(w, http.StatusInternalServerError, fmt.Errorf("failed to load collection"))
		return
	}

	collectionBooks, err := a.store.CollectionBooks(r.Context(), collectionID)

	if err != nil {
		a.logger.Error(err.Error(), "service", "HandleGetCollectionBooks")
		respondWithError(w, http.StatusInternalServerError, fmt.Errorf("failed to load collection"))
		return
	}

	respondWithSuccess(w, http.StatusOK, map[string]any{"books": collectionBooks})
}

// HandleSearchCollections runs the two public collection searches, by
// collection name and by owner username, and merges them with
// username-matches first, de-duplicated by collection id.
func (a *Api) HandleSearchCollections(w http.ResponseWriter, r *http.Request) {
	var params models.CollectionSearchRequest

	if err := decodeJson(r, &params); err != nil {
		a.logger.Warn(err.Error(), "service", "HandleSearchCollections")
		respondWithError(w, http.StatusBadRequest, err)
		return
	}

	start, err := parseDate(params.PubDateStart)

	if err != nil {
		respondWithError(w, http.StatusBadRequest, fmt.Errorf("invalid pubDateStart"))
		return
	}

	end, err := parseDate(params.PubDateEnd)

	if err != nil {
		respondWithError(w, http.StatusBadRequest, fmt.Errorf("invalid pubDateEnd"))
		return
	}

	byOwner, err := a.store.SearchCollectionsByOwner(r.Context(), params.Search, start, end)

	if err != nil {
		a.logger.Error(err.Error(), "service", "HandleSearchCollections")
		respondWithError(w, http.StatusInternalServerError, fmt.Errorf("failed to search collections"))
		return
	}

	byName, err := a.store.SearchCollectionsByName(r.Context(), params.Search, start, end)

	if err != nil {
		a.logger.Error(err.Error(), "service", "HandleSearchCollections")
		respondWithError(w, http.StatusInternalServerError, fmt.Errorf("failed to search collections"))
		return
	}

	seen := map[int64]bool{}
	merged := []models.Collection{}

	for _, collection := range append(byOwner, byName...) {
		if seen[collection.Collection_id] {
			continue
		}

		seen[collection.Collection_id] = true
		merged = append(merged, collection)
	}

	results := []models.CollectionSearchResult{}

	for _, collection := range merged {
		username, err := a.store.UsernameByID(r.Context(), collection.User_id)

		if err != nil {
			if !errors.Is(err, store.ErrProfileNotFound) {
				a.logger.Error(err.Error(), "service", "HandleSearchCollections")
				respondWithError(w, http.StatusInternalServerError, fmt.Errorf("failed to search collections"))
				return
			}

			username = "Unknown"
		}

		collectionBooks, err := a.store.CollectionBooks(r.Context(), collection.Collection_id)

		if err != nil {
			a.logger.Error(err.Error(), "service", "HandleSearchCollections")
			respondWithError(w, http.StatusInternalServerError, fmt.Errorf("failed to search collections"))
			return
		}

		items := []models.CollectionSearchBook{}

		for _, book := range collectionBooks {
			cover := book.Cover_img_url

			if cover == "" {
				cover = models.DefaultCover
			}

			items = append(items, models.CollectionSearchBook{Title: book.Title, Cover: cover})
		}

		iconID := collection.Icon_id

		if iconID == 0 {
			iconID = 1
		}

		results = append(results, models.CollectionSearchResult{
			IconId:     iconID,
			Title:      collection.Name,
			Username:   username,
			Created_at: collection.Created_at.Format("2006-01-02"),
			Books:      items,
		})
	}

	respondWithSuccess(w, http.StatusOK, map[string]any{"results": results})
}

// HandleAddBookToCollection reconciles the book and inserts the membership.
// Adding a book that is already in the collection is a silent no-op.
func (a *Api) HandleAddBookToCollection(w http.ResponseWriter, r *http.Request) {
	user, ok := userID(r)

	if !ok {
		respondWithError(w, http.StatusUnauthorized, fmt.Errorf("missing user identity"))
		return
	}

	var params models.AddBookToCollectionRequest

	if err := decodeJson(r, &params); err != nil {
		a.logger.Warn(err.Error(), "service", "HandleAddBookToCollection")
		respondWithError(w, http.StatusBadRequest, err)
		return
	}

	if err := validate.Struct(&params); err != nil {
		a.logger.Warn(fmt.Sprintf("error validating fields: %v", err), "service", "HandleAddBookToCollection")
		respondWithError(w, http.StatusBadRequest, fmt.Errorf("error validating fields: %v", err))
		return
	}

	if !a.authorizeCollection(w, r, params.Collection_id, user) {
		return
	}

	tx, err := a.store.Begin(r.Context())

	if err != nil {
		a.logger.Error(err.Error(), "service", "HandleAddBookToCollection")
		respondWithError(w, http.StatusInternalServerError, fmt.Errorf("failed to add book"))
		return
	}

	defer func() { _ = tx.Rollback() }()

	bookID, err := books.ResolveOrCreate(r.Context(), tx, params.BookMetadata)

	if err != nil {
		a.logger.Error(err.Error(), "service", "HandleAddBookToCollection")
		respondWithError(w, http.StatusInternalServerError, fmt.Errorf("failed to add book"))
		return
	}

	if err := tx.AddCollectionBook(r.Context(), params.Collection_id, bookID); err != nil {
		a.logger.Error(err.Error(), "service", "HandleAddBookToCollection")
		respondWithError(w, http.StatusInternalServerError, fmt.Errorf("failed to add book"))
		return
	}

	if err := tx.Commit(); err != nil {
		a.logger.Error(err.Error(), "service", "HandleAddBookToCollection")
		respondWithError(w, http.StatusInternalServerError, fmt.Errorf("failed to add book"))
		return
	}

	respondWithSuccess(w, http.StatusOK, map[string]any{"success": true, "book_id": bookID})
}

// HandleRemoveBookFromCollection removes a membership from a collection the
// caller owns. A missing membership reports not found.
func (a *Api) HandleRemoveBookFromCollection(w http.ResponseWriter, r *http.Request) {
	user, ok := userID(r)

	if !ok {
		respondWithError(w, http.StatusUnauthorized, fmt.Errorf("missing user identity"))
		return
	}

	collectionID, bookID, err := collectionBookParams(r)

	if err != nil {
		respondWithError(w, http.StatusBadRequest, err)
		return
	}

	if !a.authorizeCollection(w, r, collectionID, user) {
		return
	}

	tx, err := a.store.Begin(r.Context())

	if err != nil {
		a.logger.Error(err.Error(), "service", "HandleRemoveBookFromCollection")
		respondWithError(w, http.StatusInternalServerError, fmt.Errorf("failed to remove book"))
		return
	}

	defer func() { _ = tx.Rollback() }()

	removed, err := tx.RemoveCollectionBook(r.Context(), collectionID, bookID)

	if err != nil {
		a.logger.Error(err.Error(), "service", "HandleRemoveBookFromCollection")
		respondWithError(w, http.StatusInternalServerError, fmt.Errorf("failed to remove book"))
		return
	}

	if !removed {
		respondWithError(w, http.StatusNotFound, fmt.Errorf("book not in collection"))
		return
	}

	if err := tx.Commit(); err != nil {
		a.logger.Error(err.Error(), "service", "HandleRemoveBookFromCollection")
		respondWithError(w, http.StatusInternalServerError, fmt.Errorf("failed to remove book"))
		return
	}

	respondWithSuccess(w, http.StatusOK, map[string]any{"success": true})
}

// HandleUpdateBookPosition overwrites the ordering position of a membership
// in a collection the caller owns.
func (a *Api) HandleUpdateBookPosition(w http.ResponseWriter, r *http.Request) {
	user, ok := userID(r)

	if !ok {
		respondWithError(w, http.StatusUnauthorized, fmt.Errorf("missing user identity"))
		return
	}

	collectionID, bookID, err := collectionBookParams(r)

	if err != nil {
		respondWithError(w, http.StatusBadRequest, err)
		return
	}

	var params models.UpdateBookPositionRequest

	if err := decodeJson(r, &params); err != nil {
		a.logger.Warn(err.Error(), "service", "HandleUpdateBookPosition")
		respondWithError(w, http.StatusBadRequest, err)
		return
	}

	if err := validate.Struct(&params); err != nil {
		a.logger.Warn(fmt.Sprintf("error validating fields: %v", err), "service", "HandleUpdateBookPosition")
		respondWithError(w, http.StatusBadRequest, fmt.Errorf("error validating fields: %v", err))
		return
	}

	if !a.authorizeCollection(w, r, collectionID, user) {
		return
	}

	tx, err := a.store.Begin(r.Context())

	if err != nil {
		a.logger.Error(err.Error(), "service", "HandleUpdateBookPosition")
		respondWithError(w, http.StatusInternalServerError, fmt.Errorf("failed to update position"))
		return
	}

	defer func() { _ = tx.Rollback() }()

	updated, err := tx.UpdateCollectionBookPosition(r.Context(), collectionID, bookID, params.Position)

	if err != nil {
		a.logger.Error(err.Error(), "service", "HandleUpdateBookPosition")
		respondWithError(w, http.StatusInternalServerError, fmt.Errorf("failed to update position"))
		return
	}

	if !updated {
		respondWithError(w, http.StatusNotFound, fmt.Errorf("book not in collection"))
		return
	}

	if err := tx.Commit(); err != nil {
		a.logger.Error(err.Error(), "service", "HandleUpdateBookPosition")
		respondWithError(w, http.StatusInternalServerError, fmt.Errorf("failed to update position"))
		return
	}

	respondWithSuccess(w, http.StatusOK, map[string]any{"success": true})
}

// authorizeCollection writes the error response and returns false unless the
// collection exists and is owned by user. Not-found and not-owner are
// distinct rejections.
func (a *Api) authorizeCollection(w http.ResponseWriter, r *http.Request, collectionID int64, user uuid.UUID) bool {
	owner, err := a.store.CollectionOwner(r.Context(), collectionID)

	if err != nil {
		if errors.Is(err, store.ErrCollectionNotFound) {
			respondWithError(w, http.StatusNotFound, fmt.Errorf("collection not found"))
			return false
		}

		a.logger.Error(err.Error(), "service", "authorizeCollection")
		respondWithError(w, http.StatusInternalServerError, fmt.Errorf("failed to load collection"))
		return false
	}

	if owner != user {
		respondWithError(w, http.StatusForbidden, fmt.Errorf("you do not own this collection"))
		return false
	}

	return true
}

func collectionBookParams(r *http.Request) (int64, int64, error) {
	collectionID, err := strconv.ParseInt(chi.URLParam(r, "collectionId"), 10, 64)

	if err != nil {
		return 0, 0, fmt.Errorf("invalid collection id")
	}

	bookID, err := strconv.ParseInt(chi.URLParam(r, "bookId"), 10, 64)

	if err != nil {
		return 0, 0, fmt.Errorf("invalid book id")
	}

	return collectionID, bookID, nil
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}

	t, err := time.Parse("2006-01-02", s)

	if err != nil {
		return nil, err
	}

	return &t, nil
}
