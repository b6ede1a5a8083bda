package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/booknestapp/booknest-server/internal/models"
)

func (q queries) UpsertUserBook(ctx context.Context, userID uuid.UUID, bookID int64, status string) error {
	query := `
			INSERT INTO user_books (user_id, book_id, status, created_at)
			VALUES ($1, $2, $3, now())
			ON CONFLICT (user_id, book_id)
			DO UPDATE SET status = EXCLUDED.status, created_at = now();
	`

	if _, err := q.db.ExecContext(ctx, query, userID, bookID, status); err != nil {
		return fmt.Errorf("error upserting user book: %w", err)
	}

	return nil
}

func (q queries) UserBooks(ctx context.Context, userID uuid.UUID) ([]models.ReadingListBook, error) {
	query := `
			SELECT ub.book_id, b.title, COALESCE(a.name, ''), COALESCE(b.cover_img_url, ''),
			       ub.status, ub.created_at, r.rating, COALESCE(r.text, '')
			FROM user_books ub
			JOIN books b ON (ub.book_id = b.book_id)
			LEFT JOIN authors a ON (b.author_id = a.author_id)
			LEFT JOIN reviews r ON (r.book_id = ub.book_id AND r.user_id = ub.user_id)
			WHERE ub.user_id = $1
			ORDER BY ub.created_at DESC;
	`

	rows, err := q.db.QueryContext(ctx, query, userID)

	if err != nil {
		return nil, fmt.Errorf("error querying user books: %w", err)
	}

	defer rows.Close()

	books := []models.ReadingListBook{}

	for rows.Next() {
		var book models.ReadingListBook
		var rating sql.NullInt64

		if err := rows.Scan(&book.Book_id, &book.Title, &book.Author_name, &book.Cover, &book.Status, &book.Created_at, &rating, &book.Review_text); err != nil {
			return nil, fmt.Errorf("error scanning user book: %w", err)
		}

		if rating.Valid {
			r := int(rating.Int64)
			book.Rating = &r
		}

		books = append(books, book)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user books: %w", err)
	}

	return books, nil
}

func (q queries) RemoveUserBook(ctx context.Context, userID uuid.UUID, bookID int64) (bool, error) {
	query := `
			DELETE FROM user_books WHERE user_id = $1 AND book_id = $2;
	`

	result, err := q.db.ExecContext(ctx, query, userID, bookID)

	if err != nil {
		return false, fmt.Errorf("error deleting user book: %w", err)
	}

	affected, err := result.RowsAffected()

	if err != nil {
		return false, fmt.Errorf("error reading affected rows: %w", err)
	}

	return affected > 0, nil
}
