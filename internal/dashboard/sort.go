package dashboard

import (
	"cmp"
	"errors"
	"slices"

	"github.com/justyntemme/bookdash/internal/models"
)

// ErrUnknownSortKey is returned for a column that cannot be sorted
var ErrUnknownSortKey = errors.New("unknown sort key")

// Sortable columns
const (
	SortRatingsAverage   models.SortKey = "ratings_average"
	SortAuthorName       models.SortKey = "author_name"
	SortTitle            models.SortKey = "title"
	SortFirstPublishYear models.SortKey = "first_publish_year"
	SortSubject          models.SortKey = "subject"
	SortAuthorBirthDate  models.SortKey = "author_birth_date"
	SortAuthorTopWork    models.SortKey = "author_top_work"
)

// comparator orders two rows for one column and direction
type comparator func(a, b models.JoinedRow, dir models.SortDirection) int

var comparators = map[models.SortKey]comparator{
	SortRatingsAverage: byOptional(func(r models.JoinedRow) (float64, bool) {
		return deref(r.Book.RatingsAverage)
	}),
	SortAuthorName: byOptional(func(r models.JoinedRow) (string, bool) {
		return deref(r.Book.AuthorName)
	}),
	SortTitle: byOptional(func(r models.JoinedRow) (string, bool) {
		return r.Book.Title, true
	}),
	SortFirstPublishYear: byOptional(func(r models.JoinedRow) (int, bool) {
		return deref(r.Book.FirstPublishYear)
	}),
	SortSubject: byOptional(func(r models.JoinedRow) (string, bool) {
		return r.Book.SubjectText()
	}),
	SortAuthorBirthDate: byOptional(func(r models.JoinedRow) (string, bool) {
		return deref(r.Author.BirthDate)
	}),
	SortAuthorTopWork: byOptional(func(r models.JoinedRow) (string, bool) {
		return deref(r.Author.TopWork)
	}),
}

// SortKeys returns the sortable columns in display order
func SortKeys() []models.SortKey {
	return []models.SortKey{
		SortRatingsAverage,
		SortAuthorName,
		SortTitle,
		SortFirstPublishYear,
		SortSubject,
		SortAuthorBirthDate,
		SortAuthorTopWork,
	}
}

// ParseSortKey validates a column name
func ParseSortKey(s string) (models.SortKey, error) {
	key := models.SortKey(s)
	if _, ok := comparators[key]; !ok {
		return "", ErrUnknownSortKey
	}
	return key, nil
}

// SortRows returns a stably sorted copy of rows. Rows with a missing value
// for the column always come last, whichever the direction.
func SortRows(rows []models.JoinedRow, key models.SortKey, dir models.SortDirection) ([]models.JoinedRow, error) {
	compare, ok := comparators[key]
	if !ok {
		return nil, ErrUnknownSortKey
	}
	sorted := slices.Clone(rows)
	slices.SortStableFunc(sorted, func(a, b models.JoinedRow) int {
		return compare(a, b, dir)
	})
	return sorted, nil
}

// NextSort applies the toggle rule: the active column flips direction,
// any other column starts ascending.
func NextSort(state models.PaginationState, key models.SortKey) models.PaginationState {
	if state.SortKey == key && state.SortDirection == models.Ascending {
		state.SortDirection = models.Descending
	} else {
		state.SortDirection = models.Ascending
	}
	state.SortKey = key
	return state
}

func byOptional[T cmp.Ordered](get func(models.JoinedRow) (T, bool)) comparator {
	return func(a, b models.JoinedRow, dir models.SortDirection) int {
		av, aok := get(a)
		bv, bok := get(b)
		switch {
		case !aok && !bok:
			return 0
		case !aok:
			return 1
		case !bok:
			return -1
		}
		c := cmp.Compare(av, bv)
		if dir == models.Descending {
			return -c
		}
		return c
	}
}

func deref[T any](p *T) (T, bool) {
	if p == nil {
		var zero T
		return zero, false
	}
	return *p, true
}
