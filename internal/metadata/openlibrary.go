package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/justyntemme/bookdash/internal/metrics"
	"github.com/justyntemme/bookdash/internal/models"
)

// ErrMalformedResponse is returned when a response lacks the expected fields
var ErrMalformedResponse = errors.New("unexpected response shape")

const (
	defaultBaseURL   = "https://openlibrary.org"
	defaultUserAgent = "bookdash/1.0"
	searchFields     = "key,title,author_name,author_key,first_publish_year,ratings_average,subject"
)

// OpenLibraryConfig configures the Open Library client.
// Zero values select the defaults.
type OpenLibraryConfig struct {
	BaseURL           string
	UserAgent         string
	Timeout           time.Duration
	RequestsPerSecond float64 // <= 0 disables client-side limiting
}

// OpenLibraryProvider implements BookSearcher and AuthorFetcher for the Open Library API
type OpenLibraryProvider struct {
	client    *http.Client
	baseURL   string
	userAgent string
	limiter   *rate.Limiter
}

// NewOpenLibraryProvider creates a new Open Library provider
func NewOpenLibraryProvider(cfg OpenLibraryConfig) *OpenLibraryProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerSecond > 0 {
		burst := int(cfg.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return &OpenLibraryProvider{
		client:    &http.Client{Timeout: cfg.Timeout},
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		limiter:   limiter,
	}
}

// Name returns the provider identifier
func (p *OpenLibraryProvider) Name() string {
	return "openlibrary"
}

// olSearchResponse represents an Open Library search response.
// Docs is a pointer so a body without a result list can be told apart from an empty page.
type olSearchResponse struct {
	NumFound *int           `json:"numFound"`
	Docs     *[]olSearchDoc `json:"docs"`
}

// olSearchDoc represents a document in search results
type olSearchDoc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name"`
	AuthorKey        []string `json:"author_key"`
	FirstPublishYear *int     `json:"first_publish_year"`
	RatingsAverage   *float64 `json:"ratings_average"`
	Subject          []string `json:"subject"`
}

// olAuthor represents an Open Library author response
type olAuthor struct {
	Key       string  `json:"key"`
	BirthDate *string `json:"birth_date"`
	TopWork   *string `json:"top_work"`
}

// SearchPage fetches one page of search results
func (p *OpenLibraryProvider) SearchPage(ctx context.Context, query string, page, pageSize int) (*models.BookPage, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrInvalidQuery
	}
	if page < 1 || pageSize <= 0 {
		return nil, ErrInvalidPagination
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(pageSize))
	params.Set("fields", searchFields)

	var data olSearchResponse
	err := p.getJSON(ctx, fmt.Sprintf("%s/search.json?%s", p.baseURL, params.Encode()), &data)
	if err == nil && data.Docs == nil {
		err = ErrMalformedResponse
	}
	metrics.ObserveFetch(string(ComponentBookPage), err)
	if err != nil {
		return nil, &FetchError{Component: ComponentBookPage, Err: err}
	}

	docs := *data.Docs
	if len(docs) > pageSize {
		docs = docs[:pageSize]
	}

	books := make([]models.BookRecord, 0, len(docs))
	for i := range docs {
		books = append(books, convertSearchDoc(&docs[i]))
	}
	return &models.BookPage{Books: books, NumFound: data.NumFound}, nil
}

// GetAuthor fetches an author's details by identifier
func (p *OpenLibraryProvider) GetAuthor(ctx context.Context, id string) (*models.AuthorRecord, error) {
	key := normalizeAuthorKey(id)
	if key == "" {
		return nil, &FetchError{Component: ComponentAuthor, AuthorID: id, Err: ErrNotFound}
	}

	var data olAuthor
	err := p.getJSON(ctx, fmt.Sprintf("%s/authors/%s.json", p.baseURL, url.PathEscape(key)), &data)
	metrics.ObserveFetch(string(ComponentAuthor), err)
	if err != nil {
		return nil, &FetchError{Component: ComponentAuthor, AuthorID: key, Err: err}
	}

	author := &models.AuthorRecord{
		Key:       normalizeAuthorKey(data.Key),
		BirthDate: data.BirthDate,
		TopWork:   data.TopWork,
	}
	if author.Key == "" {
		author.Key = key
	}
	return author, nil
}

// getJSON performs a single GET and decodes the body into target
func (p *OpenLibraryProvider) getJSON(ctx context.Context, rawURL string, target any) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// convertSearchDoc converts a search result to a BookRecord
func convertSearchDoc(doc *olSearchDoc) models.BookRecord {
	book := models.BookRecord{
		Key:              doc.Key,
		Title:            doc.Title,
		PrimaryAuthorID:  normalizeAuthorKey(firstOrEmpty(doc.AuthorKey)),
		FirstPublishYear: doc.FirstPublishYear,
		RatingsAverage:   doc.RatingsAverage,
		Subjects:         doc.Subject,
	}
	if len(doc.AuthorName) > 0 {
		name := doc.AuthorName[0]
		book.AuthorName = &name
	}
	return book
}

// normalizeAuthorKey strips the path prefix Open Library uses in echoed keys
func normalizeAuthorKey(key string) string {
	return strings.TrimSpace(strings.TrimPrefix(key, "/authors/"))
}

// firstOrEmpty returns the first element or empty string
func firstOrEmpty(s []string) string {
	if len(s) > 0 {
		return s[0]
	}
	return ""
}
