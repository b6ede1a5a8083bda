package openlibrary

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/booknestapp/booknest-server/internal/models"
)

const (
	defaultBaseURL = "https://openlibrary.org"
	coversBaseURL  = "https://covers.openlibrary.org"
	requestTimeout = 10 * time.Second
)

// Client talks to the OpenLibrary HTTP API. Calls are stateless, carry a
// fixed timeout and no retry policy; a non-2xx response fails the enclosing
// request.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: requestTimeout},
	}
}

type SearchData struct {
	Total   int                 `json:"total"`
	Results []models.SearchBook `json:"results"`
}

type searchResponse struct {
	NumFound int         `json:"numFound"`
	Docs     []searchDoc `json:"docs"`
}

type searchDoc struct {
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name"`
	FirstPublishYear *int     `json:"first_publish_year"`
	Isbn             []string `json:"isbn"`
	CoverI           *int     `json:"cover_i"`
	CoverEditionKey  string   `json:"cover_edition_key"`
	Key              string   `json:"key"`
}

// Search queries /search.json and normalizes each doc into the uniform result
// shape the rest of the backend works with.
func (c *Client) Search(ctx context.Context, q string, limit, page int) (*SearchData, error) {
	params := url.Values{}
	params.Set("q", q)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("page", strconv.Itoa(page))

	var res searchResponse

	if err := c.getJSON(ctx, "/search.json?"+params.Encode(), &res); err != nil {
		return nil, fmt.Errorf("error searching openlibrary: %w", err)
	}

	data := &SearchData{Total: res.NumFound, Results: []models.SearchBook{}}

	for _, doc := range res.Docs {
		book := models.SearchBook{
			Title:              doc.Title,
			Authors:            doc.AuthorName,
			First_publish_year: doc.FirstPublishYear,
			Key:                doc.Key,
			Cover:              coverURL(doc),
		}

		if len(doc.Isbn) > 0 {
			book.Isbn = doc.Isbn[0]
		}

		data.Results = append(data.Results, book)
	}

	return data, nil
}

// GetByKey fetches the raw detail blob for an opaque catalog key such as
// "/works/OL45883W".
func (c *Client) GetByKey(ctx context.Context, key string) (map[string]any, error) {
	var blob map[string]any

	if err := c.getJSON(ctx, key+".json", &blob); err != nil {
		return nil, fmt.Errorf("error fetching openlibrary key %s: %w", key, err)
	}

	return blob, nil
}

// GetByISBN fetches the edition record for a single ISBN.
func (c *Client) GetByISBN(ctx context.Context, isbn string) (map[string]any, error) {
	var blob map[string]any

	if err := c.getJSON(ctx, "/isbn/"+isbn+".json", &blob); err != nil {
		return nil, fmt.Errorf("error fetching openlibrary isbn %s: %w", isbn, err)
	}

	return blob, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)

	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}

	res, err := c.http.Do(req)

	if err != nil {
		return fmt.Errorf("error calling openlibrary: %w", err)
	}

	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fmt.Errorf("openlibrary returned status %d", res.StatusCode)
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("error decoding openlibrary response: %w", err)
	}

	return nil
}

// coverURL derives a display cover, preferring the numeric cover id, then the
// first ISBN, then the cover edition key.
func coverURL(doc searchDoc) string {
	if doc.CoverI != nil {
		return fmt.Sprintf("%s/b/id/%d-M.jpg", coversBaseURL, *doc.CoverI)
	}

	if len(doc.Isbn) > 0 {
		return fmt.Sprintf("%s/b/isbn/%s-M.jpg", coversBaseURL, doc.Isbn[0])
	}

	if doc.CoverEditionKey != "" {
		return fmt.Sprintf("%s/b/olid/%s-M.jpg", coversBaseURL, doc.CoverEditionKey)
	}

	return ""
}
