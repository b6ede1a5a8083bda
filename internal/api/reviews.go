package api

import (
	"fmt"
	"net/http"

	"github.com/booknestapp/booknest-server/internal/books"
	"github.com/booknestapp/booknest-server/internal/models"
)

// HandleCreateReview creates or replaces the caller's review for a book,
// creating the book and author rows first when they don't exist yet. The
// reconciliation, the review upsert and the activity entry commit as a unit.
func (a *Api) HandleCreateReview(w http.ResponseWriter, r *http.Request) {
	user, ok := userID(r)

	if !ok {
		respondWithError(w, http.StatusUnauthorized, fmt.Errorf("missing user identity"))
		return
	}

	var params models.CreateReviewRequest

	if err := decodeJson(r, &params); err != nil {
		a.logger.Warn(err.Error(), "service", "HandleCreateReview")
		respondWithError(w, http.StatusBadRequest, err)
		return
	}

	if err := validate.Struct(&params); err != nil {
		a.logger.Warn(fmt.Sprintf("error validating fields: %v", err), "service", "HandleCreateReview")
		respondWithError(w, http.StatusBadRequest, fmt.Errorf("error validating fields: %v", err))
		return
	}

	if params.Rating < 0 || params.Rating > 5 {
		respondWithError(w, http.StatusBadRequest, fmt.Errorf("rating must be between 0 and 5"))
		return
	}

	tx, err := a.store.Begin(r.Context())

	if err != nil {
		a.logger.Error(err.Error(), "service", "HandleCreateReview")
		respondWithError(w, http.StatusInternalServerError, fmt.Errorf("failed to create review"))
		return
	}

	defer func() { _ = tx.Rollback() }()

	bookID, err := books.ResolveOrCreate(r.Context(), tx, params.BookMetadata)

	if err != nil {
		a.logger.Error(err.Error(), "service", "HandleCreateReview")
		respondWithError(w, http.StatusInternalServerError, fmt.Errorf("failed to create review"))
		return
	}

	if err := tx.UpsertReview(r.Context(), user, bookID, params.Rating, params.Text); err != nil {
		a.logger.Error(err.Error(), "service", "HandleCreateReview")
		respondWithError(w, http.StatusInternalServerError, fmt.Errorf("failed to create review"))
		return
	}

	if err := tx.LogActivity(r.Context(), user, models.ActionReview, bookID); err != nil {
		a.logger.Error(err.Error(), "service", "HandleCreateReview")
		respondWithError(w, http.StatusInternalServerError, fmt.Errorf("failed to create review"))
		return
	}

	if err := tx.Commit(); err != nil {
		a.logger.Error(err.Error(), "service", "HandleCreateReview")
		respondWithError(w, http.StatusInternalServerError, fmt.Errorf("failed to create review"))
		return
	}

	respondWithSuccess(w, http.StatusOK, map[string]any{
		"success": true,
		"book_id": bookID,
		"message": "Review created successfully",
	})
}

// HandleBookReviews returns the rating aggregate and every review, with
// resolved usernames, for the book matching the supplied metadata. Lookup is
// read only; a book nobody has saved yet simply reports no reviews.
func (a *Api) HandleBookReviews(w http.ResponseWriter, r *http.Request) {
	var params models.BookReviewsRequest

	if err := decodeJson(r, &params); err != nil {
		a.logger.Warn(err.Error(), "service", "HandleBookReviews")
		respondWithError(w, http.StatusBadRequest, err)
		return
	}

	if err := validate.Struct(&params); err != nil {
		a.logger.Warn(fmt.Sprintf("error validating fields: %v", err), "service", "HandleBookReviews")
		respondWithError(w, http.StatusBadRequest, fmt.Errorf("error validating fields: %v", err))
		return
	}

	bookID, found, err := books.Lookup(r.Context(), a.store, params.BookMetadata)

	if err != nil {
		a.logger.Error(err.Error(), "service", "HandleBookReviews")
		respondWithError(w, http.StatusInternalServerError, fmt.Errorf("failed to load reviews"))
		return
	}

	if !found {
		respondWithSuccess(w, http.StatusOK, map[string]any{
			"book_rating":       nil,
			"book_rating_count": 0,
			"reviews":           []models.BookReview{},
		})
		return
	}

	summary, err := a.store.BookRating(r.Context(), bookID)

	if err != nil {
		a.logger.Error(err.Error(), "service", "HandleBookReviews")
		respondWithError(w, http.StatusInternalServerError, fmt.Errorf("failed to load reviews"))
		return
	}

	reviews, err := a.store.BookReviews(r.Context(), bookID)

	if err != nil {
		a.logger.Error(err.Error(), "service", "HandleBookReviews")
		respondWithError(w, http.StatusInternalServerError, fmt.Errorf("failed to load reviews"))
		return
	}

	respondWithSuccess(w, http.StatusOK, map[string]any{
		"book_id":           bookID,
		"book_rating":       summary.Average,
		"book_rating_count": summary.Count,
		"reviews":           reviews,
	})
}
