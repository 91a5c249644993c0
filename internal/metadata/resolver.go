package metadata

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/justyntemme/bookdash/internal/models"
)

// AuthorResolver fetches author details for a set of identifiers.
// Each distinct identifier is requested once per call; lookups run
// concurrently and the call returns only after every lookup has settled.
type AuthorResolver struct {
	fetcher AuthorFetcher
	limit   int
}

// NewAuthorResolver creates a resolver. limit bounds the number of
// in-flight lookups; limit <= 0 launches all lookups at once.
func NewAuthorResolver(fetcher AuthorFetcher, limit int) *AuthorResolver {
	return &AuthorResolver{fetcher: fetcher, limit: limit}
}

// Resolve returns a mapping from identifier to author record. Identifiers
// whose lookup failed are absent from the mapping. An error is returned
// only when every requested identifier failed.
func (r *AuthorResolver) Resolve(ctx context.Context, ids []string) (map[string]models.AuthorRecord, error) {
	distinct := DistinctIDs(ids)
	resolved := make(map[string]models.AuthorRecord, len(distinct))
	if len(distinct) == 0 {
		return resolved, nil
	}

	type outcome struct {
		author *models.AuthorRecord
		err    error
	}
	outcomes := make([]outcome, len(distinct))

	// Tasks never return an error so one failure cannot cancel its siblings.
	var g errgroup.Group
	if r.limit > 0 {
		g.SetLimit(r.limit)
	}
	for i, id := range distinct {
		i, id := i, id
		g.Go(func() error {
			author, err := r.fetcher.GetAuthor(ctx, id)
			if err == nil && author == nil {
				err = &FetchError{Component: ComponentAuthor, AuthorID: id, Err: ErrNotFound}
			}
			outcomes[i] = outcome{author: author, err: err}
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	for i, id := range distinct {
		o := outcomes[i]
		if o.err != nil {
			slog.Warn("Author lookup failed", "author_id", id, "error", o.err)
			errs = append(errs, o.err)
			continue
		}
		resolved[id] = *o.author
	}

	if len(errs) == len(distinct) {
		return nil, &FetchError{Component: ComponentAuthor, Err: errors.Join(errs...)}
	}
	return resolved, nil
}

// DistinctIDs returns the non-empty identifiers in first-seen order
func DistinctIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
