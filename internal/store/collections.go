package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/booknestapp/booknest-server/internal/models"
)

func (q queries) CollectionIDByName(ctx context.Context, userID uuid.UUID, name string) (int64, error) {
	var id int64

	query := `
			SELECT collection_id FROM collections WHERE user_id = $1 AND lower(name) = lower($2);
	`

	if err := q.db.QueryRowContext(ctx, query, userID, name).Scan(&id); err != nil {
		if err == sql.ErrNoRows {
			return 0, ErrCollectionNotFound
		}

		return 0, fmt.Errorf("error querying collection by name: %w", err)
	}

	return id, nil
}

func (q queries) CollectionOwner(ctx context.Context, collectionID int64) (uuid.UUID, error) {
	var owner uuid.UUID

	query := `
			SELECT user_id FROM collections WHERE collection_id = $1;
	`

	if err := q.db.QueryRowContext(ctx, query, collectionID).Scan(&owner); err != nil {
		if err == sql.ErrNoRows {
			return uuid.Nil, ErrCollectionNotFound
		}

		return uuid.Nil, fmt.Errorf("error querying collection owner: %w", err)
	}

	return owner, nil
}

func (q queries) CreateCollection(ctx context.Context, userID uuid.UUID, name string, iconID int) (int64, error) {
	var id int64

	query := `
			INSERT INTO collections (user_id, name, icon_id, created_at)
			VALUES ($1, $2, $3, now())
			RETURNING collection_id;
	`

	if err := q.db.QueryRowContext(ctx, query, userID, name, iconID).Scan(&id); err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicate
		}

		return 0, fmt.Errorf("error inserting collection: %w", err)
	}

	return id, nil
}

func (q queries) UserCollections(ctx context.Context, userID uuid.UUID) ([]models.Collection, error) {
	query := `
			SELECT collection_id, user_id, name, COALESCE(description, ''), COALESCE(icon_id, 1), created_at
			FROM collections
			WHERE user_id = $1
			ORDER BY created_at DESC;
	`

	rows, err := q.db.QueryContext(ctx, query, userID)

	if err != nil {
		return nil, fmt.Errorf("error querying user collections: %w", err)
	}

	defer rows.Close()

	return scanCollections(rows)
}

func (q queries) CollectionBooks(ctx context.Context, collectionID int64) ([]models.CollectionBook, error) {
	query := `
			SELECT b.book_id, b.title, COALESCE(a.name, ''), b.year_published,
			       COALESCE(b.isbn, ''), COALESCE(b.cover_img_url, ''), cb.position
			FROM collection_books cb
			JOIN books b ON (cb.book_id = b.book_id)
			LEFT JOIN authors a ON (b.author_id = a.author_id)
			WHERE cb.collection_id = $1
			ORDER BY cb.position NULLS LAST, b.title;
	`

	rows, err := q.db.QueryContext(ctx, query, collectionID)

	if err != nil {
		return nil, fmt.Errorf("error querying collection books: %w", err)
	}

	defer rows.Close()

	books := []models.CollectionBook{}

	for rows.Next() {
		var book models.CollectionBook
		var year, position sql.NullInt64

		if err := rows.Scan(&book.Book_id, &book.Title, &book.Author_name, &year, &book.Isbn, &book.Cover_img_url, &position); err != nil {
			return nil, fmt.Errorf("error scanning collection book: %w", err)
		}

		if year.Valid {
			y := int(year.Int64)
			book.Year_published = &y
		}

		if position.Valid {
			p := int(position.Int64)
			book.Position = &p
		}

		books = append(books, book)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating collection books: %w", err)
	}

	return books, nil
}

func (q queries) SearchCollectionsByName(ctx context.Context, search string, start, end *time.Time) ([]models.Collection, error) {
	query := `
			SELECT collection_id, user_id, name, COALESCE(description, ''), COALESCE(icon_id, 1), created_at
			FROM collections
			WHERE name ILIKE '%' || $1 || '%'
			  AND ($2::date IS NULL OR created_at::date >= $2)
			  AND ($3::date IS NULL OR created_at::date <= $3)
			ORDER BY created_at DESC;
	`

	rows, err := q.db.QueryContext(ctx, query, search, nullTimePtr(start), nullTimePtr(end))

	if err != nil {
		return nil, fmt.Errorf("error searching collections by name: %w", err)
	}

	defer rows.Close()

	return scanCollections(rows)
}

func (q queries) SearchCollectionsByOwner(ctx context.Context, search string, start, end *time.Time) ([]models.Collection, error) {
	query := `
			SELECT c.collection_id, c.user_id, c.name, COALESCE(c.description, ''), COALESCE(c.icon_id, 1), c.created_at
			FROM collections c
			JOIN profiles p ON (c.user_id = p.user_id)
			WHERE p.username ILIKE '%' || $1 || '%'
			  AND ($2::date IS NULL OR c.created_at::date >= $2)
			  AND ($3::date IS NULL OR c.created_at::date <= $3)
			ORDER BY c.created_at DESC;
	`

	rows, err := q.db.QueryContext(ctx, query, search, nullTimePtr(start), nullTimePtr(end))

	if err != nil {
		return nil, fmt.Errorf("error searching collections by owner: %w", err)
	}

	defer rows.Close()

	return scanCollections(rows)
}

func (q queries) AddCollectionBook(ctx context.Context, collectionID, bookID int64) error {
	query := `
			INSERT INTO collection_books (collection_id, book_id)
			VALUES ($1, $2)
			ON CONFLICT (collection_id, book_id) DO NOTHING;
	`

	if _, err := q.db.ExecContext(ctx, query, collectionID, bookID); err != nil {
		return fmt.Errorf("error inserting collection book: %w", err)
	}

	return nil
}

func (q queries) RemoveCollectionBook(ctx context.Context, collectionID, bookID int64) (bool, error) {
	query := `
			DELETE FROM collection_books WHERE collection_id = $1 AND book_id = $2;
	`

	result, err := q.db.ExecContext(ctx, query, collectionID, bookID)

	if err != nil {
		return false, fmt.Errorf("error deleting collection book: %w", err)
	}

	affected, err := result.RowsAffected()

	if err != nil {
		return false, fmt.Errorf("error reading affected rows: %w", err)
	}

	return affected > 0, nil
}

func (q queries) UpdateCollectionBookPosition(ctx context.Context, collectionID, bookID int64, position int) (bool, error) {
	query := `
			UPDATE collection_books SET position = $3 WHERE collection_id = $1 AND book_id = $2;
	`

	result, err := q.db.ExecContext(ctx, query, collectionID, bookID, position)

	if err != nil {
		return false, fmt.Errorf("error updating collection book position: %w", err)
	}

	affected, err := result.RowsAffected()

	if err != nil {
		return false, fmt.Errorf("error reading affected rows: %w", err)
	}

	return affected > 0, nil
}

func scanCollections(rows *sql.Rows) ([]models.Collection, error) {
	collections := []models.Collection{}

	for rows.Next() {
		var collection models.Collection

		if err := rows.Scan(
			&collection.Collection_id,
			&collection.User_id,
			&collection.Name,
			&collection.Description,
			&collection.Icon_id,
			&collection.Created_at,
		); err != nil {
			return nil, fmt.Errorf("error scanning collection: %w", err)
		}

		collections = append(collections, collection)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating collections: %w", err)
	}

	return collections, nil
}

func nullTimePtr(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
