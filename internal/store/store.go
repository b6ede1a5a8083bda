package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/booknestapp/booknest-server/internal/models"
)

var (
	ErrBookNotFound       = errors.New("book not found")
	ErrAuthorNotFound     = errors.New("author not found")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrCollectionNotFound = errors.New("collection not found")
	ErrUserBookNotFound   = errors.New("book not in reading list")
	ErrDuplicate          = errors.New("row already exists")
)

// Reader is the read-only surface usable outside a transaction.
type Reader interface {
	BookIDByISBN(ctx context.Context, isbn string) (int64, error)
	AuthorIDByName(ctx context.Context, name string) (int64, error)
	BookIDByTitleAndAuthor(ctx context.Context, title string, authorID int64) (int64, error)
	BookRating(ctx context.Context, bookID int64) (models.RatingSummary, error)
	BookReviews(ctx context.Context, bookID int64) ([]models.BookReview, error)
	UsernameByID(ctx context.Context, userID uuid.UUID) (string, error)
	CollectionIDByName(ctx context.Context, userID uuid.UUID, name string) (int64, error)
	CollectionOwner(ctx context.Context, collectionID int64) (uuid.UUID, error)
	UserCollections(ctx context.Context, userID uuid.UUID) ([]models.Collection, error)
	CollectionBooks(ctx context.Context, collectionID int64) ([]models.CollectionBook, error)
	SearchCollectionsByName(ctx context.Context, search string, start, end *time.Time) ([]models.Collection, error)
	SearchCollectionsByOwner(ctx context.Context, search string, start, end *time.Time) ([]models.Collection, error)
	UserBooks(ctx context.Context, userID uuid.UUID) ([]models.ReadingListBook, error)
}

// Tx adds the write surface. Every mutating request runs against exactly one
// Tx so that book reconciliation and the triggering insert commit as a unit.
type Tx interface {
	Reader
	BookIDByTitle(ctx context.Context, title string) (int64, error)
	BookByID(ctx context.Context, id int64) (*models.Book, error)
	CreateAuthor(ctx context.Context, name string) (int64, error)
	CreateBook(ctx context.Context, book *models.Book) (int64, error)
	UpdateBook(ctx context.Context, book *models.Book) error
	UpsertReview(ctx context.Context, userID uuid.UUID, bookID int64, rating int, text string) error
	LogActivity(ctx context.Context, userID uuid.UUID, action string, bookID int64) error
	CreateCollection(ctx context.Context, userID uuid.UUID, name string, iconID int) (int64, error)
	AddCollectionBook(ctx context.Context, collectionID, bookID int64) error
	RemoveCollectionBook(ctx context.Context, collectionID, bookID int64) (bool, error)
	UpdateCollectionBookPosition(ctx context.Context, collectionID, bookID int64, position int) (bool, error)
	UpsertUserBook(ctx context.Context, userID uuid.UUID, bookID int64, status string) error
	RemoveUserBook(ctx context.Context, userID uuid.UUID, bookID int64) (bool, error)
	Commit() error
	Rollback() error
}

type Store interface {
	Reader
	Begin(ctx context.Context) (Tx, error)
}

type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// queries carries every statement; it runs against either the pool or an open
// transaction depending on who embeds it.
type queries struct {
	db dbtx
}

type PostgresStore struct {
	*sql.DB
	queries
}

func NewPostgresStore(conn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", conn)

	if err != nil {
		return nil, fmt.Errorf("error connecting to db: %v", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error pinging db: %v", err)
	}

	return &PostgresStore{
		DB:      db,
		queries: queries{db: db},
	}, nil
}

func (s *PostgresStore) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.DB.BeginTx(ctx, nil)

	if err != nil {
		return nil, fmt.Errorf("error starting transaction: %w", err)
	}

	return &pgTx{Tx: tx, queries: queries{db: tx}}, nil
}

type pgTx struct {
	*sql.Tx
	queries
}

// isUniqueViolation reports whether err is Postgres SQLSTATE 23505.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
