package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/booknestapp/booknest-server/internal/models"
)

func (q queries) BookIDByISBN(ctx context.Context, isbn string) (int64, error) {
	var id int64

	query := `
			SELECT book_id FROM books WHERE isbn = $1;
	`

	if err := q.db.QueryRowContext(ctx, query, isbn).Scan(&id); err != nil {
		if err == sql.ErrNoRows {
			return 0, ErrBookNotFound
		}

		return 0, fmt.Errorf("error querying books by isbn: %w", err)
	}

	return id, nil
}

func (q queries) AuthorIDByName(ctx context.Context, name string) (int64, error) {
	var id int64

	query := `
			SELECT author_id FROM authors WHERE name = $1;
	`

	if err := q.db.QueryRowContext(ctx, query, name).Scan(&id); err != nil {
		if err == sql.ErrNoRows {
			return 0, ErrAuthorNotFound
		}

		return 0, fmt.Errorf("error querying authors by name: %w", err)
	}

	return id, nil
}

func (q queries) BookIDByTitleAndAuthor(ctx context.Context, title string, authorID int64) (int64, error) {
	var id int64

	query := `
			SELECT book_id FROM books WHERE title = $1 AND author_id = $2;
	`

	if err := q.db.QueryRowContext(ctx, query, title, authorID).Scan(&id); err != nil {
		if err == sql.ErrNoRows {
			return 0, ErrBookNotFound
		}

		return 0, fmt.Errorf("error querying books by title and author: %w", err)
	}

	return id, nil
}

func (q queries) BookIDByTitle(ctx context.Context, title string) (int64, error) {
	var id int64

	query := `
			SELECT book_id FROM books WHERE lower(title) = lower($1) ORDER BY book_id LIMIT 1;
	`

	if err := q.db.QueryRowContext(ctx, query, title).Scan(&id); err != nil {
		if err == sql.ErrNoRows {
			return 0, ErrBookNotFound
		}

		return 0, fmt.Errorf("error querying books by title: %w", err)
	}

	return id, nil
}

func (q queries) BookByID(ctx context.Context, id int64) (*models.Book, error) {
	var book models.Book
	var authorID sql.NullInt64
	var bookType, isbn, cover sql.NullString
	var year sql.NullInt64

	query := `
			SELECT book_id, title, author_id, type, year_published, isbn, cover_img_url
			FROM books
			WHERE book_id = $1;
	`

	if err := q.db.QueryRowContext(ctx, query, id).Scan(
		&book.Id, &book.Title, &authorID, &bookType, &year, &isbn, &cover,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrBookNotFound
		}

		return nil, fmt.Errorf("error querying book by id: %w", err)
	}

	if authorID.Valid {
		book.Author_id = &authorID.Int64
	}

	if year.Valid {
		y := int(year.Int64)
		book.Year_published = &y
	}

	book.Type = bookType.String
	book.Isbn = isbn.String
	book.Cover_img_url = cover.String

	return &book, nil
}

func (q queries) CreateAuthor(ctx context.Context, name string) (int64, error) {
	var id int64

	query := `
			INSERT INTO authors (name) VALUES ($1) RETURNING author_id;
	`

	if err := q.db.QueryRowContext(ctx, query, name).Scan(&id); err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicate
		}

		return 0, fmt.Errorf("error inserting author: %w", err)
	}

	return id, nil
}

func (q queries) CreateBook(ctx context.Context, book *models.Book) (int64, error) {
	var id int64

	query := `
			INSERT INTO books (title, author_id, type, year_published, isbn, cover_img_url)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING book_id;
	`

	if err := q.db.QueryRowContext(ctx, query,
		book.Title,
		nullInt64Ptr(book.Author_id),
		nullString(book.Type),
		nullIntPtr(book.Year_published),
		nullString(book.Isbn),
		nullString(book.Cover_img_url),
	).Scan(&id); err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicate
		}

		return 0, fmt.Errorf("error inserting book: %w", err)
	}

	return id, nil
}

func (q queries) UpdateBook(ctx context.Context, book *models.Book) error {
	query := `
			UPDATE books
			SET author_id = $2, year_published = $3, isbn = $4, cover_img_url = $5
			WHERE book_id = $1;
	`

	if _, err := q.db.ExecContext(ctx, query,
		book.Id,
		nullInt64Ptr(book.Author_id),
		nullIntPtr(book.Year_published),
		nullString(book.Isbn),
		nullString(book.Cover_img_url),
	); err != nil {
		return fmt.Errorf("error updating book: %w", err)
	}

	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullIntPtr(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}

func nullInt64Ptr(n *int64) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *n, Valid: true}
}
