package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/booknestapp/booknest-server/internal/models"
)

func (q queries) UpsertReview(ctx context.Context, userID uuid.UUID, bookID int64, rating int, text string) error {
	query := `
			INSERT INTO reviews (user_id, book_id, rating, text, created_at)
			VALUES ($1, $2, $3, $4, now())
			ON CONFLICT (user_id, book_id)
			DO UPDATE SET rating = EXCLUDED.rating, text = EXCLUDED.text, created_at = now();
	`

	if _, err := q.db.ExecContext(ctx, query, userID, bookID, rating, text); err != nil {
		return fmt.Errorf("error upserting review: %w", err)
	}

	return nil
}

func (q queries) BookRating(ctx context.Context, bookID int64) (models.RatingSummary, error) {
	var summary models.RatingSummary
	var avg sql.NullFloat64

	query := `
			SELECT COUNT(review_id), COALESCE(SUM(rating), 0), AVG(rating)
			FROM reviews
			WHERE book_id = $1;
	`

	if err := q.db.QueryRowContext(ctx, query, bookID).Scan(&summary.Count, &summary.Sum, &avg); err != nil {
		return models.RatingSummary{}, fmt.Errorf("error querying book rating: %w", err)
	}

	if avg.Valid {
		summary.Average = &avg.Float64
	}

	return summary, nil
}

func (q queries) BookReviews(ctx context.Context, bookID int64) ([]models.BookReview, error) {
	query := `
			SELECT r.review_id, r.user_id, r.rating, COALESCE(r.text, ''), r.created_at,
			       COALESCE(p.username, 'Unknown')
			FROM reviews r
			LEFT JOIN profiles p ON (p.user_id = r.user_id)
			WHERE r.book_id = $1
			ORDER BY r.review_id DESC;
	`

	rows, err := q.db.QueryContext(ctx, query, bookID)

	if err != nil {
		return nil, fmt.Errorf("error querying book reviews: %w", err)
	}

	defer rows.Close()

	reviews := []models.BookReview{}

	for rows.Next() {
		var review models.BookReview

		if err := rows.Scan(&review.Review_id, &review.User_id, &review.Rating, &review.Text, &review.Created_at, &review.Username); err != nil {
			return nil, fmt.Errorf("error scanning review: %w", err)
		}

		reviews = append(reviews, review)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reviews: %w", err)
	}

	return reviews, nil
}

func (q queries) LogActivity(ctx context.Context, userID uuid.UUID, action string, bookID int64) error {
	query := `
			INSERT INTO activity (user_id, action_type, book_id) VALUES ($1, $2, $3);
	`

	if _, err := q.db.ExecContext(ctx, query, userID, action, bookID); err != nil {
		return fmt.Errorf("error logging activity: %w", err)
	}

	return nil
}
