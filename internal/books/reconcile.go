package books

import (
	"context"
	"errors"
	"fmt"

	"github.com/booknestapp/booknest-server/internal/models"
	"github.com/booknestapp/booknest-server/internal/store"
)

// Finder is the read-only lookup surface needed by Lookup; store.Reader and
// store.Tx both satisfy it.
type Finder interface {
	BookIDByISBN(ctx context.Context, isbn string) (int64, error)
	AuthorIDByName(ctx context.Context, name string) (int64, error)
	BookIDByTitleAndAuthor(ctx context.Context, title string, authorID int64) (int64, error)
}

// Catalog is the transactional surface needed by ResolveOrCreate.
type Catalog interface {
	Finder
	BookIDByTitle(ctx context.Context, title string) (int64, error)
	BookByID(ctx context.Context, id int64) (*models.Book, error)
	CreateAuthor(ctx context.Context, name string) (int64, error)
	CreateBook(ctx context.Context, book *models.Book) (int64, error)
	UpdateBook(ctx context.Context, book *models.Book) error
}

// ResolveOrCreate maps loosely structured book metadata onto a single catalog
// row, creating the book (and author) when nothing matches. Resolution order:
// exact ISBN, then exact title plus author, then a case-insensitive title-only
// fallback. The fallback only applies when no author name was supplied: a
// supplied author that matched nothing means a different book, so we create
// rather than merge.
//
// Writes are staged on the caller's transaction; nothing here commits.
func ResolveOrCreate(ctx context.Context, cat Catalog, meta models.BookMetadata) (int64, error) {
	if meta.Title == "" {
		return 0, fmt.Errorf("book metadata is missing a title")
	}

	if meta.Isbn != "" {
		id, err := cat.BookIDByISBN(ctx, meta.Isbn)

		if err == nil {
			return id, backfill(ctx, cat, id, meta)
		}

		if !errors.Is(err, store.ErrBookNotFound) {
			return 0, err
		}
	}

	var authorID *int64

	if meta.Author_name != "" {
		id, err := resolveAuthor(ctx, cat, meta.Author_name)

		if err != nil {
			return 0, err
		}

		authorID = &id
	}

	if authorID != nil {
		id, err := cat.BookIDByTitleAndAuthor(ctx, meta.Title, *authorID)

		if err == nil {
			return id, backfill(ctx, cat, id, meta)
		}

		if !errors.Is(err, store.ErrBookNotFound) {
			return 0, err
		}
	} else {
		id, err := cat.BookIDByTitle(ctx, meta.Title)

		if err == nil {
			return id, backfill(ctx, cat, id, meta)
		}

		if !errors.Is(err, store.ErrBookNotFound) {
			return 0, err
		}
	}

	book := &models.Book{
		Title:          meta.Title,
		Author_id:      authorID,
		Year_published: meta.First_publish_year,
		Isbn:           meta.Isbn,
		Cover_img_url:  meta.Cover,
	}

	id, err := cat.CreateBook(ctx, book)

	if errors.Is(err, store.ErrDuplicate) {
		// Lost an insert race; the row exists now, so the lookup wins.
		if meta.Isbn != "" {
			return cat.BookIDByISBN(ctx, meta.Isbn)
		}

		if authorID != nil {
			return cat.BookIDByTitleAndAuthor(ctx, meta.Title, *authorID)
		}

		return cat.BookIDByTitle(ctx, meta.Title)
	}

	if err != nil {
		return 0, err
	}

	return id, nil
}

// Lookup is the read-only variant used for enrichment. It never creates rows,
// requires the author to already exist for a title+author match, and carries
// no title-only fallback so that a search result is never annotated with the
// wrong book's ratings.
func Lookup(ctx context.Context, f Finder, meta models.BookMetadata) (int64, bool, error) {
	if meta.Isbn != "" {
		id, err := f.BookIDByISBN(ctx, meta.Isbn)

		if err == nil {
			return id, true, nil
		}

		if !errors.Is(err, store.ErrBookNotFound) {
			return 0, false, err
		}
	}

	if meta.Title == "" || meta.Author_name == "" {
		return 0, false, nil
	}

	authorID, err := f.AuthorIDByName(ctx, meta.Author_name)

	if err != nil {
		if errors.Is(err, store.ErrAuthorNotFound) {
			return 0, false, nil
		}

		return 0, false, err
	}

	id, err := f.BookIDByTitleAndAuthor(ctx, meta.Title, authorID)

	if err != nil {
		if errors.Is(err, store.ErrBookNotFound) {
			return 0, false, nil
		}

		return 0, false, err
	}

	return id, true, nil
}

func resolveAuthor(ctx context.Context, cat Catalog, name string) (int64, error) {
	id, err := cat.AuthorIDByName(ctx, name)

	if err == nil {
		return id, nil
	}

	if !errors.Is(err, store.ErrAuthorNotFound) {
		return 0, err
	}

	id, err = cat.CreateAuthor(ctx, name)

	if errors.Is(err, store.ErrDuplicate) {
		return cat.AuthorIDByName(ctx, name)
	}

	if err != nil {
		return 0, err
	}

	return id, nil
}

// backfill fills fields the stored row is missing from the new metadata. A
// non-empty stored field is never overwritten.
func backfill(ctx context.Context, cat Catalog, id int64, meta models.BookMetadata) error {
	book, err := cat.BookByID(ctx, id)

	if err != nil {
		return err
	}

	changed := false

	if book.Isbn == "" && meta.Isbn != "" {
		book.Isbn = meta.Isbn
		changed = true
	}

	if book.Year_published == nil && meta.First_publish_year != nil {
		book.Year_published = meta.First_publish_year
		changed = true
	}

	if book.Cover_img_url == "" && meta.Cover != "" {
		book.Cover_img_url = meta.Cover
		changed = true
	}

	if book.Author_id == nil && meta.Author_name != "" {
		authorID, err := resolveAuthor(ctx, cat, meta.Author_name)

		if err != nil {
			return err
		}

		book.Author_id = &authorID
		changed = true
	}

	if !changed {
		return nil
	}

	return cat.UpdateBook(ctx, book)
}
