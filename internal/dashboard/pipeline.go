package dashboard

import (
	"context"
	"log/slog"

	"github.com/justyntemme/bookdash/internal/metadata"
	"github.com/justyntemme/bookdash/internal/models"
)

// Result is the joined output of one aggregation pass
type Result struct {
	Rows       []models.JoinedRow
	NumFound   *int
	AuthorHits int
}

// Pipeline fetches a page of books, resolves their primary authors and
// joins the two in book order.
type Pipeline struct {
	books   metadata.BookSearcher
	authors *metadata.AuthorResolver
	query   string
}

// NewPipeline creates a pipeline for a fixed search query
func NewPipeline(books metadata.BookSearcher, authors *metadata.AuthorResolver, query string) *Pipeline {
	return &Pipeline{books: books, authors: authors, query: query}
}

// Query returns the search query the pipeline runs
func (p *Pipeline) Query() string {
	return p.query
}

// Aggregate runs one pass for the given pagination. Errors from either
// fetch stage are returned unchanged and no partial result is produced.
func (p *Pipeline) Aggregate(ctx context.Context, state models.PaginationState) (*Result, error) {
	page, err := p.books.SearchPage(ctx, p.query, state.Page, state.PageSize)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(page.Books))
	for _, book := range page.Books {
		ids = append(ids, book.PrimaryAuthorID)
	}

	authors, err := p.authors.Resolve(ctx, ids)
	if err != nil {
		return nil, err
	}

	slog.Debug("Aggregation joined",
		"page", state.Page, "page_size", state.PageSize,
		"books", len(page.Books), "authors", len(authors))

	return &Result{
		Rows:       Join(page.Books, authors),
		NumFound:   page.NumFound,
		AuthorHits: len(authors),
	}, nil
}

// Join pairs every book with its resolved author, preserving book order.
// Books whose author is missing from the mapping get the placeholder.
func Join(books []models.BookRecord, authors map[string]models.AuthorRecord) []models.JoinedRow {
	rows := make([]models.JoinedRow, len(books))
	for i, book := range books {
		author, ok := authors[book.PrimaryAuthorID]
		rows[i] = models.JoinedRow{
			Book:           book,
			Author:         author,
			AuthorResolved: ok,
		}
	}
	return rows
}
