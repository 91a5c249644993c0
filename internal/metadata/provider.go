package metadata

import (
	"context"
	"errors"
	"fmt"

	"github.com/justyntemme/bookdash/internal/models"
)

// Common errors
var (
	ErrInvalidQuery      = errors.New("search query must not be empty")
	ErrInvalidPagination = errors.New("page must be >= 1 and page size > 0")
	ErrNotFound          = errors.New("record not found")
	ErrRateLimited       = errors.New("rate limited by provider")
)

// Component identifies which stage of the pipeline a fetch belongs to
type Component string

const (
	ComponentBookPage Component = "book_page"
	ComponentAuthor   Component = "author_resolution"
)

// FetchError reports a failed request to the bibliographic service or a
// response that could not be decoded.
type FetchError struct {
	Component Component
	AuthorID  string // set for single author lookups
	Err       error
}

func (e *FetchError) Error() string {
	if e.AuthorID != "" {
		return fmt.Sprintf("%s fetch failed for %s: %v", e.Component, e.AuthorID, e.Err)
	}
	return fmt.Sprintf("%s fetch failed: %v", e.Component, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsFetchError reports whether err carries a FetchError
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}

// BookSearcher fetches one page of search results
type BookSearcher interface {
	// SearchPage returns at most pageSize books for the given page (1-based)
	SearchPage(ctx context.Context, query string, page, pageSize int) (*models.BookPage, error)
}

// AuthorFetcher fetches a single author's details
type AuthorFetcher interface {
	GetAuthor(ctx context.Context, id string) (*models.AuthorRecord, error)
}
