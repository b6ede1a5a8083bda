package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusWantToRead       = "Want to Read"
	StatusCurrentlyReading = "Currently Reading"
	StatusFinished         = "Finished"
)

// ReadingStatuses is the fixed bucket order used by the reading list.
var ReadingStatuses = []string{StatusWantToRead, StatusCurrentlyReading, StatusFinished}

const (
	ActionReview = "review"
	ActionStatus = "status"
)

// DefaultCover is served when a book row has no stored cover image.
const DefaultCover = "../images/bookCoverDefault.svg"

type Book struct {
	Id             int64
	Title          string
	Author_id      *int64
	Type           string
	Year_published *int
	Isbn           string
	Cover_img_url  string
}

type Author struct {
	Id   int64
	Name string
}

// BookMetadata is the loosely structured book shape carried by every request
// that references a book by external catalog data rather than by id.
type BookMetadata struct {
	Title              string `json:"title" validate:"required"`
	Author_name        string `json:"author_name"`
	Isbn               string `json:"isbn"`
	First_publish_year *int   `json:"first_publish_year"`
	Cover              string `json:"cover"`
}

type RatingSummary struct {
	Average *float64
	Count   int
	Sum     int
}

type BookReview struct {
	Review_id  int64     `json:"review_id"`
	User_id    uuid.UUID `json:"user_id"`
	Rating     int       `json:"rating"`
	Text       string    `json:"text"`
	Username   string    `json:"username"`
	Created_at time.Time `json:"created_at"`
}

type Collection struct {
	Collection_id int64     `json:"collectionId"`
	User_id       uuid.UUID `json:"-"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Icon_id       int       `json:"iconId"`
	Created_at    time.Time `json:"created_at"`
}

type CollectionBook struct {
	Book_id        int64  `json:"book_id"`
	Title          string `json:"title"`
	Author_name    string `json:"author_name,omitempty"`
	Year_published *int   `json:"year_published"`
	Isbn           string `json:"isbn,omitempty"`
	Cover_img_url  string `json:"cover_img_url,omitempty"`
	Position       *int   `json:"position"`
}

type ReadingListBook struct {
	Book_id     int64     `json:"book_id"`
	Title       string    `json:"title"`
	Author_name string    `json:"author_name,omitempty"`
	Cover       string    `json:"cover,omitempty"`
	Status      string    `json:"-"`
	Rating      *int      `json:"rating"`
	Review_text string    `json:"review_text,omitempty"`
	Created_at  time.Time `json:"created_at"`
}

// SearchBook is one normalized OpenLibrary search result, annotated in place
// with the locally computed rating data.
type SearchBook struct {
	Title              string   `json:"title"`
	Authors            []string `json:"authors"`
	First_publish_year *int     `json:"first_publish_year"`
	Isbn               string   `json:"isbn,omitempty"`
	Key                string   `json:"key,omitempty"`
	Cover              string   `json:"cover,omitempty"`
	Book_rating        *float64 `json:"book_rating"`
	Book_rating_count  int      `json:"book_rating_count"`
}

type SearchBookRequest struct {
	Search       string   `json:"search" validate:"required"`
	Limit        int      `json:"limit" validate:"omitempty,gte=1,lte=50"`
	Page         int      `json:"page" validate:"omitempty,gte=1"`
	MinRating    *float64 `json:"minRating" validate:"omitempty,gte=0,lte=5"`
	MaxRating    *float64 `json:"maxRating" validate:"omitempty,gte=0,lte=5"`
	PubDateStart string   `json:"pubDateStart"`
	PubDateEnd   string   `json:"pubDateEnd"`
}

type CreateReviewRequest struct {
	BookMetadata
	Rating int    `json:"rating" validate:"gte=0,lte=5"`
	Text   string `json:"text"`
}

type BookReviewsRequest struct {
	BookMetadata
}

type AddUserBookRequest struct {
	BookMetadata
	Status string `json:"status" validate:"required,oneof='Want to Read' 'Currently Reading' 'Finished'"`
}

type CreateCollectionRequest struct {
	Name   string `json:"name" validate:"required,max=120"`
	IconId int    `json:"iconId" validate:"required,gte=1,lte=21"`
}

type CollectionSearchRequest struct {
	Search       string `json:"search"`
	PubDateStart string `json:"pubDateStart"`
	PubDateEnd   string `json:"pubDateEnd"`
}

type AddBookToCollectionRequest struct {
	BookMetadata
	Collection_id int64 `json:"collection_id" validate:"required"`
}

type UpdateBookPositionRequest struct {
	Position int `json:"position" validate:"gte=0"`
}

type CollectionSearchResult struct {
	IconId     int                    `json:"iconId"`
	Title      string                 `json:"title"`
	Username   string                 `json:"username"`
	Created_at string                 `json:"created_at"`
	Books      []CollectionSearchBook `json:"books"`
}

type CollectionSearchBook struct {
	Title string `json:"title"`
	Cover string `json:"cover"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
