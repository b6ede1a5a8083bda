package books

import (
	"testing"

	"github.com/booknestapp/booknest-server/internal/models"
)

func intPtr(n int) *int          { return &n }
func floatPtr(f float64) *float64 { return &f }

func TestParseYear(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *int
	}{
		{
			name:  "should parse a bare 4 digit year",
			input: "2020",
			want:  intPtr(2020),
		},
		{
			name:  "should parse the year out of a full date",
			input: "2020-06-15",
			want:  intPtr(2020),
		},
		{
			name:  "should ignore the literal string undefined",
			input: "undefined",
			want:  nil,
		},
		{
			name:  "should ignore the literal string null",
			input: "NULL",
			want:  nil,
		},
		{
			name:  "should ignore an empty string",
			input: "",
			want:  nil,
		},
		{
			name:  "should ignore a non numeric value",
			input: "twenty",
			want:  nil,
		},
		{
			name:  "should ignore a short numeric value",
			input: "99",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseYear(tt.input)

			if (got == nil) != (tt.want == nil) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}

			if got != nil && *got != *tt.want {
				t.Fatalf("expected %d, got %d", *tt.want, *got)
			}
		})
	}
}

func TestFilterAndPageYearBounds(t *testing.T) {
	results := []models.SearchBook{
		{Title: "older", First_publish_year: intPtr(2019)},
		{Title: "boundary", First_publish_year: intPtr(2020)},
		{Title: "newer", First_publish_year: intPtr(2021)},
		{Title: "unknown year"},
	}

	page := FilterAndPage(results, FilterCriteria{PubDateStart: "2020", Page: 1, Limit: 10})

	if page.Total != 2 {
		t.Fatalf("expected 2 results, got %d", page.Total)
	}

	if page.Results[0].Title != "boundary" || page.Results[1].Title != "newer" {
		t.Fatalf("unexpected results: %+v", page.Results)
	}
}

func TestFilterAndPageMissingYearFailsActiveBound(t *testing.T) {
	results := []models.SearchBook{
		{Title: "unknown year"},
	}

	page := FilterAndPage(results, FilterCriteria{PubDateEnd: "2025", Page: 1, Limit: 10})

	if page.Total != 0 {
		t.Fatalf("expected result without a year to be excluded, got %d", page.Total)
	}
}

func TestFilterAndPageRatingBounds(t *testing.T) {
	tests := []struct {
		name     string
		criteria FilterCriteria
		want     []string
	}{
		{
			name:     "should keep everything when no rating bound is set",
			criteria: FilterCriteria{Page: 1, Limit: 10},
			want:     []string{"unrated", "low", "high"},
		},
		{
			name:     "should drop unrated results when a min bound is active",
			criteria: FilterCriteria{MinRating: floatPtr(3), Page: 1, Limit: 10},
			want:     []string{"high"},
		},
		{
			name:     "should drop results above an active max bound",
			criteria: FilterCriteria{MaxRating: floatPtr(3), Page: 1, Limit: 10},
			want:     []string{"low"},
		},
		{
			name:     "should keep results exactly on an inclusive bound",
			criteria: FilterCriteria{MinRating: floatPtr(2), MaxRating: floatPtr(2), Page: 1, Limit: 10},
			want:     []string{"low"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := []models.SearchBook{
				{Title: "unrated"},
				{Title: "low", Book_rating: floatPtr(2)},
				{Title: "high", Book_rating: floatPtr(4.5)},
			}

			page := FilterAndPage(results, tt.criteria)

			if len(page.Results) != len(tt.want) {
				t.Fatalf("expected %d results, got %d", len(tt.want), len(page.Results))
			}

			for i, title := range tt.want {
				if page.Results[i].Title != title {
					t.Fatalf("expected %s at %d, got %s", title, i, page.Results[i].Title)
				}
			}
		})
	}
}

func TestFilterAndPagePagination(t *testing.T) {
	results := make([]models.SearchBook, 25)

	for i := range results {
		results[i] = models.SearchBook{Title: "book", First_publish_year: intPtr(2000 + i)}
	}

	page := FilterAndPage(results, FilterCriteria{Page: 3, Limit: 10})

	if page.Total != 25 {
		t.Fatalf("expected total 25, got %d", page.Total)
	}

	if page.Pages != 3 {
		t.Fatalf("expected 3 pages, got %d", page.Pages)
	}

	if len(page.Results) != 5 {
		t.Fatalf("expected 5 results on the last page, got %d", len(page.Results))
	}
}

func TestFilterAndPagePastTheEnd(t *testing.T) {
	results := []models.SearchBook{{Title: "only"}}

	page := FilterAndPage(results, FilterCriteria{Page: 9, Limit: 10})

	if len(page.Results) != 0 {
		t.Fatalf("expected an empty slice past the end, got %d results", len(page.Results))
	}

	if page.Pages != 1 {
		t.Fatalf("expected 1 page, got %d", page.Pages)
	}
}

func TestFilterAndPageClampsLimit(t *testing.T) {
	page := FilterAndPage([]models.SearchBook{}, FilterCriteria{Page: 0, Limit: 0})

	if page.Limit != 1 || page.Page != 1 {
		t.Fatalf("expected limit and page clamped to 1, got limit=%d page=%d", page.Limit, page.Page)
	}

	if page.Pages != 0 {
		t.Fatalf("expected 0 pages for an empty set, got %d", page.Pages)
	}
}
