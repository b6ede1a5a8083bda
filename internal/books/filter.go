package books

import (
	"strings"

	"github.com/booknestapp/booknest-server/internal/models"
)

type FilterCriteria struct {
	MinRating    *float64
	MaxRating    *float64
	PubDateStart string
	PubDateEnd   string
	Page         int
	Limit        int
}

type SearchPage struct {
	Total   int                 `json:"total"`
	Page    int                 `json:"page"`
	Limit   int                 `json:"limit"`
	Pages   int                 `json:"pages"`
	Results []models.SearchBook `json:"results"`
}

// parseYear accepts a bare 4-digit year or any date string whose first four
// characters are digits. Everything else, including the literal strings
// "undefined" and "null" that the frontend sometimes sends, means no bound.
func parseYear(s string) *int {
	s = strings.TrimSpace(s)

	if s == "" {
		return nil
	}

	lower := strings.ToLower(s)

	if lower == "undefined" || lower == "null" {
		return nil
	}

	if len(s) < 4 {
		return nil
	}

	year := 0

	for _, c := range s[:4] {
		if c < '0' || c > '9' {
			return nil
		}

		year = year*10 + int(c-'0')
	}

	return &year
}

// FilterAndPage applies rating and publish-year bounds to an annotated result
// list, then paginates the filtered set. A result missing a publish year
// fails any active date bound, and one missing a rating fails any active
// rating bound. When neither rating bound is set the rating is not checked.
func FilterAndPage(results []models.SearchBook, criteria FilterCriteria) SearchPage {
	startYear := parseYear(criteria.PubDateStart)
	endYear := parseYear(criteria.PubDateEnd)

	filtered := []models.SearchBook{}

	for _, book := range results {
		if !keep(book, startYear, endYear, criteria.MinRating, criteria.MaxRating) {
			continue
		}

		filtered = append(filtered, book)
	}

	limit := criteria.Limit

	if limit < 1 {
		limit = 1
	}

	page := criteria.Page

	if page < 1 {
		page = 1
	}

	total := len(filtered)
	pages := (total + limit - 1) / limit

	start := (page - 1) * limit

	if start > total {
		start = total
	}

	end := start + limit

	if end > total {
		end = total
	}

	return SearchPage{
		Total:   total,
		Page:    page,
		Limit:   limit,
		Pages:   pages,
		Results: filtered[start:end],
	}
}

func keep(book models.SearchBook, startYear, endYear *int, minRating, maxRating *float64) bool {
	year := book.First_publish_year

	if startYear != nil && (year == nil || *year < *startYear) {
		return false
	}

	if endYear != nil && (year == nil || *year > *endYear) {
		return false
	}

	if minRating != nil || maxRating != nil {
		rating := book.Book_rating

		if rating == nil {
			return false
		}

		if minRating != nil && *rating < *minRating {
			return false
		}

		if maxRating != nil && *rating > *maxRating {
			return false
		}
	}

	return true
}
