package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/booknestapp/booknest-server/internal/config"
	"github.com/booknestapp/booknest-server/internal/models"
	"github.com/booknestapp/booknest-server/internal/openlibrary"
	"github.com/booknestapp/booknest-server/internal/store"
)

type testLogger struct{}

func (testLogger) Info(msg string, args ...any)  {}
func (testLogger) Warn(msg string, args ...any)  {}
func (testLogger) Error(msg string, args ...any) {}

type testCatalog struct {
	searchFn func(ctx context.Context, q string, limit, page int) (*openlibrary.SearchData, error)
}

func (c *testCatalog) Search(ctx context.Context, q string, limit, page int) (*openlibrary.SearchData, error) {
	if c.searchFn == nil {
		return &openlibrary.SearchData{Results: []models.SearchBook{}}, nil
	}

	return c.searchFn(ctx, q, limit, page)
}

type testVerifier struct {
	id  uuid.UUID
	err error
}

func (v *testVerifier) Verify(ctx context.Context, token string) (uuid.UUID, error) {
	return v.id, v.err
}

// testTx fakes store.Tx with overridable func fields; unset lookups report not
// found and unset writes succeed.
type testTx struct {
	bookIDByISBNFn           func(ctx context.Context, isbn string) (int64, error)
	authorIDByNameFn         func(ctx context.Context, name string) (int64, error)
	bookIDByTitleAndAuthorFn func(ctx context.Context, title string, authorID int64) (int64, error)
	bookIDByTitleFn          func(ctx context.Context, title string) (int64, error)
	bookByIDFn               func(ctx context.Context, id int64) (*models.Book, error)
	createAuthorFn           func(ctx context.Context, name string) (int64, error)
	createBookFn             func(ctx context.Context, book *models.Book) (int64, error)
	updateBookFn             func(ctx context.Context, book *models.Book) error
	upsertReviewFn           func(ctx context.Context, userID uuid.UUID, bookID int64, rating int, text string) error
	logActivityFn            func(ctx context.Context, userID uuid.UUID, action string, bookID int64) error
	collectionIDByNameFn     func(ctx context.Context, userID uuid.UUID, name string) (int64, error)
	createCollectionFn       func(ctx context.Context, userID uuid.UUID, name string, iconID int) (int64, error)
	addCollectionBookFn      func(ctx context.Context, collectionID, bookID int64) error
	removeCollectionBookFn   func(ctx context.Context, collectionID, bookID int64) (bool, error)
	updatePositionFn         func(ctx context.Context, collectionID, bookID int64, position int) (bool, error)
	upsertUserBookFn         func(ctx context.Context, userID uuid.UUID, bookID int64, status string) error
	removeUserBookFn         func(ctx context.Context, userID uuid.UUID, bookID int64) (bool, error)

	committed  bool
	rolledBack bool
}

func (t *testTx) BookIDByISBN(ctx context.Context, isbn string) (int64, error) {
	if t.bookIDByISBNFn == nil {
		return 0, store.ErrBookNotFound
	}
	return t.bookIDByISBNFn(ctx, isbn)
}

func (t *testTx) AuthorIDByName(ctx context.Context, name string) (int64, error) {
	if t.authorIDByNameFn == nil {
		return 0, store.ErrAuthorNotFound
	}
	return t.authorIDByNameFn(ctx, name)
}

func (t *testTx) BookIDByTitleAndAuthor(ctx context.Context, title string, authorID int64) (int64, error) {
	if t.bookIDByTitleAndAuthorFn == nil {
		return 0, store.ErrBookNotFound
	}
	return t.bookIDByTitleAndAuthorFn(ctx, title, authorID)
}

func (t *testTx) BookRating(ctx context.Context, bookID int64) (models.RatingSummary, error) {
	return models.RatingSummary{}, nil
}

func (t *testTx) BookReviews(ctx context.Context, bookID int64) ([]models.BookReview, error) {
	return []models.BookReview{}, nil
}

func (t *testTx) UsernameByID(ctx context.Context, userID uuid.UUID) (string, error) {
	return "", store.ErrProfileNotFound
}

func (t *testTx) CollectionIDByName(ctx context.Context, userID uuid.UUID, name string) (int64, error) {
	if t.collectionIDByNameFn == nil {
		return 0, store.ErrCollectionNotFound
	}
	return t.collectionIDByNameFn(ctx, userID, name)
}

func (t *testTx) CollectionOwner(ctx context.Context, collectionID int64) (uuid.UUID, error) {
	return uuid.Nil, store.ErrCollectionNotFound
}

func (t *testTx) UserCollections(ctx context.Context, userID uuid.UUID) ([]models.Collection, error) {
	return []models.Collection{}, nil
}

func (t *testTx) CollectionBooks(ctx context.Context, collectionID int64) ([]models.CollectionBook, error) {
	return []models.CollectionBook{}, nil
}

func (t *testTx) SearchCollectionsByName(ctx context.Context, search string, start, end *time.Time) ([]models.Collection, error) {
	return []models.Collection{}, nil
}

func (t *testTx) SearchCollectionsByOwner(ctx context.Context, search string, start, end *time.Time) ([]models.Collection, error) {
	return []models.Collection{}, nil
}

func (t *testTx) UserBooks(ctx context.Context, userID uuid.UUID) ([]models.ReadingListBook, error) {
	return []models.ReadingListBook{}, nil
}

func (t *testTx) BookIDByTitle(ctx context.Context, title string) (int64, error) {
	if t.bookIDByTitleFn == nil {
		return 0, store.ErrBookNotFound
	}
	return t.bookIDByTitleFn(ctx, title)
}

func (t *testTx) BookByID(ctx context.Context, id int64) (*models.Book, error) {
	if t.bookByIDFn == nil {
		return &models.Book{Id: id, Title: "stub"}, nil
	}
	return t.bookByIDFn(ctx, id)
}

func (t *testTx) CreateAuthor(ctx context.Context, name string) (int64, error) {
	if t.createAuthorFn == nil {
		return 1, nil
	}
	return t.createAuthorFn(ctx, name)
}

func (t *testTx) CreateBook(ctx context.Context, book *models.Book) (int64, error) {
	if t.createBookFn == nil {
		return 1, nil
	}
	return t.createBookFn(ctx, book)
}

func (t *testTx) UpdateBook(ctx context.Context, book *models.Book) error {
	if t.updateBookFn == nil {
		return nil
	}
	return t.updateBookFn(ctx, book)
}

func (t *testTx) UpsertReview(ctx context.Context, userID uuid.UUID, bookID int64, rating int, text string) error {
	if t.upsertReviewFn == nil {
		return nil
	}
	return t.upsertReviewFn(ctx, userID, bookID, rating, text)
}

func (t *testTx) LogActivity(ctx context.Context, userID uuid.UUID, action string, bookID int64) error {
	if t.logActivityFn == nil {
		return nil
	}
	return t.logActivityFn(ctx, userID, action, bookID)
}

func (t *testTx) CreateCollection(ctx context.Context, userID uuid.UUID, name string, iconID int) (int64, error) {
	if t.createCollectionFn == nil {
		return 1, nil
	}
	return t.createCollectionFn(ctx, userID, name, iconID)
}

func (t *testTx) AddCollectionBook(ctx context.Context, collectionID, bookID int64) error {
	if t.addCollectionBookFn == nil {
		return nil
	}
	return t.addCollectionBookFn(ctx, collectionID, bookID)
}

func (t *testTx) RemoveCollectionBook(ctx context.Context, collectionID, bookID int64) (bool, error) {
	if t.removeCollectionBookFn == nil {
		return false, nil
	}
	return t.removeCollectionBookFn(ctx, collectionID, bookID)
}

func (t *testTx) UpdateCollectionBookPosition(ctx context.Context, collectionID, bookID int64, position int) (bool, error) {
	if t.updatePositionFn == nil {
		return false, nil
	}
	return t.updatePositionFn(ctx, collectionID, bookID, position)
}

func (t *testTx) UpsertUserBook(ctx context.Context, userID uuid.UUID, bookID int64, status string) error {
	if t.upsertUserBookFn == nil {
		return nil
	}
	return t.upsertUserBookFn(ctx, userID, bookID, status)
}

func (t *testTx) RemoveUserBook(ctx context.Context, userID uuid.UUID, bookID int64) (bool, error) {
	if t.removeUserBookFn == nil {
		return false, nil
	}
	return t.removeUserBookFn(ctx, userID, bookID)
}

func (t *testTx) Commit() error {
	t.committed = true
	return nil
}

func (t *testTx) Rollback() error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

// testStore fakes store.Store; Begin hands out the configured tx.
type testStore struct {
	tx *testTx

	bookIDByISBNFn           func(ctx context.Context, isbn string) (int64, error)
	authorIDByNameFn         func(ctx context.Context, name string) (int64, error)
	bookIDByTitleAndAuthorFn func(ctx context.Context, title string, authorID int64) (int64, error)
	bookRatingFn             func(ctx context.Context, bookID int64) (models.RatingSummary, error)
	bookReviewsFn            func(ctx context.Context, bookID int64) ([]models.BookReview, error)
	usernameByIDFn           func(ctx context.Context, userID uuid.UUID) (string, error)
	collectionOwnerFn        func(ctx context.Context, collectionID int64) (uuid.UUID, error)
	userCollectionsFn        func(ctx context.Context, userID uuid.UUID) ([]models.Collection, error)
	collectionBooksFn        func(ctx context.Context, collectionID int64) ([]models.CollectionBook, error)
	searchByNameFn           func(ctx context.Context, search string, start, end *time.Time) ([]models.Collection, error)
	searchByOwnerFn          func(ctx context.Context, search string, start, end *time.Time) ([]models.Collection, error)
	userBooksFn              func(ctx context.Context, userID uuid.UUID) ([]models.ReadingListBook, error)
}

func (s *testStore) BookIDByISBN(ctx context.Context, isbn string) (int64, error) {
	if s.bookIDByISBNFn == nil {
		return 0, store.ErrBookNotFound
	}
	return s.bookIDByISBNFn(ctx, isbn)
}

func (s *testStore) AuthorIDByName(ctx context.Context, name string) (int64, error) {
	if s.authorIDByNameFn == nil {
		return 0, store.ErrAuthorNotFound
	}
	return s.authorIDByNameFn(ctx, name)
}

func (s *testStore) BookIDByTitleAndAuthor(ctx context.Context, title string, authorID int64) (int64, error) {
	if s.bookIDByTitleAndAuthorFn == nil {
		return 0, store.ErrBookNotFound
	}
	return s.bookIDByTitleAndAuthorFn(ctx, title, authorID)
}

func (s *testStore) BookRating(ctx context.Context, bookID int64) (models.RatingSummary, error) {
	if s.bookRatingFn == nil {
		return models.RatingSummary{}, nil
	}
	return s.bookRatingFn(ctx, bookID)
}

func (s *testStore) BookReviews(ctx context.Context, bookID int64) ([]models.BookReview, error) {
	if s.bookReviewsFn == nil {
		return []models.BookReview{}, nil
	}
	return s.bookReviewsFn(ctx, bookID)
}

func (s *testStore) UsernameByID(ctx context.Context, userID uuid.UUID) (string, error) {
	if s.usernameByIDFn == nil {
		return "", store.ErrProfileNotFound
	}
	return s.usernameByIDFn(ctx, userID)
}

func (s *testStore) CollectionIDByName(ctx context.Context, userID uuid.UUID, name string) (int64, error) {
	return 0, store.ErrCollectionNotFound
}

func (s *testStore) CollectionOwner(ctx context.Context, collectionID int64) (uuid.UUID, error) {
	if s.collectionOwnerFn == nil {
		return uuid.Nil, store.ErrCollectionNotFound
	}
	return s.collectionOwnerFn(ctx, collectionID)
}

func (s *testStore) UserCollections(ctx context.Context, userID uuid.UUID) ([]models.Collection, error) {
	if s.userCollectionsFn == nil {
		return []models.Collection{}, nil
	}
	return s.userCollectionsFn(ctx, userID)
}

func (s *testStore) CollectionBooks(ctx context.Context, collectionID int64) ([]models.CollectionBook, error) {
	if s.collectionBooksFn == nil {
		return []models.CollectionBook{}, nil
	}
	return s.collectionBooksFn(ctx, collectionID)
}

func (s *testStore) SearchCollectionsByName(ctx context.Context, search string, start, end *time.Time) ([]models.Collection, error) {
	if s.searchByNameFn == nil {
		return []models.Collection{}, nil
	}
	return s.searchByNameFn(ctx, search, start, end)
}

func (s *testStore) SearchCollectionsByOwner(ctx context.Context, search string, start, end *time.Time) ([]models.Collection, error) {
	if s.searchByOwnerFn == nil {
		return []models.Collection{}, nil
	}
	return s.searchByOwnerFn(ctx, search, start, end)
}

func (s *testStore) UserBooks(ctx context.Context, userID uuid.UUID) ([]models.ReadingListBook, error) {
	if s.userBooksFn == nil {
		return []models.ReadingListBook{}, nil
	}
	return s.userBooksFn(ctx, userID)
}

func (s *testStore) Begin(ctx context.Context) (store.Tx, error) {
	if s.tx == nil {
		return nil, fmt.Errorf("no transaction configured")
	}
	return s.tx, nil
}

func newTestApi(s store.Store, catalog catalogClient, user uuid.UUID) *Api {
	a := New(chi.NewRouter(), testLogger{}, s, catalog, &testVerifier{id: user}, &config.Config{})
	a.RegisterRoutes()
	return a
}

func doRequest(t *testing.T, a *Api, method, path string, body any, authed bool) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer

	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)

	if authed {
		req.Header.Set("Authorization", "Bearer token")
	}

	res := httptest.NewRecorder()
	a.router.ServeHTTP(res, req)
	return res
}

func decodeBody(t *testing.T, res *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any

	if err := json.Unmarshal(res.Body.Bytes(), &body); err != nil {
		t.Fatalf("unexpected error decoding body: %v", err)
	}

	return body
}
