package books

import (
	"context"

	"github.com/booknestapp/booknest-server/internal/models"
)

// RatingSource is the read-only surface needed to annotate search results.
type RatingSource interface {
	Finder
	BookRating(ctx context.Context, bookID int64) (models.RatingSummary, error)
}

// AttachRatings annotates every search result in place with the average
// rating and review count of its catalog book. Results with no matching
// catalog row keep a nil rating and a zero count; nothing is ever dropped and
// the input order is preserved.
func AttachRatings(ctx context.Context, src RatingSource, results []models.SearchBook) error {
	for i := range results {
		meta := models.BookMetadata{
			Title: results[i].Title,
			Isbn:  results[i].Isbn,
		}

		if len(results[i].Authors) > 0 {
			meta.Author_name = results[i].Authors[0]
		}

		id, found, err := Lookup(ctx, src, meta)

		if err != nil {
			return err
		}

		if !found {
			results[i].Book_rating = nil
			results[i].Book_rating_count = 0
			continue
		}

		summary, err := src.BookRating(ctx, id)

		if err != nil {
			return err
		}

		results[i].Book_rating = summary.Average
		results[i].Book_rating_count = summary.Count
	}

	return nil
}
