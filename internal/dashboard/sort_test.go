package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/bookdash/internal/models"
)

func ratingRow(key string, rating *float64) models.JoinedRow {
	return models.JoinedRow{Book: models.BookRecord{Key: key, Title: key, RatingsAverage: rating}}
}

func yearRow(key string, year *int) models.JoinedRow {
	return models.JoinedRow{Book: models.BookRecord{Key: key, Title: key, FirstPublishYear: year}}
}

func f64(v float64) *float64 { return &v }
func intp(v int) *int        { return &v }
func str(v string) *string   { return &v }

func keys(rows []models.JoinedRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Book.Key
	}
	return out
}

func TestParseSortKey(t *testing.T) {
	for _, key := range SortKeys() {
		parsed, err := ParseSortKey(string(key))
		require.NoError(t, err)
		assert.Equal(t, key, parsed)
	}

	_, err := ParseSortKey("isbn")
	assert.ErrorIs(t, err, ErrUnknownSortKey)
}

func TestSortRowsByRating(t *testing.T) {
	rows := []models.JoinedRow{
		ratingRow("a", f64(4.1)),
		ratingRow("b", f64(3.2)),
		ratingRow("c", f64(4.8)),
	}

	asc, err := SortRows(rows, SortRatingsAverage, models.Ascending)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "c"}, keys(asc))

	desc, err := SortRows(rows, SortRatingsAverage, models.Descending)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "b"}, keys(desc))

	// input untouched
	assert.Equal(t, []string{"a", "b", "c"}, keys(rows))
}

func TestSortRowsIdempotent(t *testing.T) {
	rows := []models.JoinedRow{
		yearRow("a", intp(1999)),
		yearRow("b", nil),
		yearRow("c", intp(1925)),
		yearRow("d", intp(1999)),
	}

	once, err := SortRows(rows, SortFirstPublishYear, models.Descending)
	require.NoError(t, err)
	twice, err := SortRows(once, SortFirstPublishYear, models.Descending)
	require.NoError(t, err)
	assert.Equal(t, keys(once), keys(twice))
}

func TestSortRowsMissingValuesLast(t *testing.T) {
	rows := []models.JoinedRow{
		yearRow("missing1", nil),
		yearRow("new", intp(2001)),
		yearRow("missing2", nil),
		yearRow("old", intp(1925)),
	}

	asc, err := SortRows(rows, SortFirstPublishYear, models.Ascending)
	require.NoError(t, err)
	assert.Equal(t, []string{"old", "new", "missing1", "missing2"}, keys(asc))

	desc, err := SortRows(rows, SortFirstPublishYear, models.Descending)
	require.NoError(t, err)
	assert.Equal(t, []string{"new", "old", "missing1", "missing2"}, keys(desc))
}

func TestSortRowsStable(t *testing.T) {
	rows := []models.JoinedRow{
		{Book: models.BookRecord{Key: "x", Title: "Same"}},
		{Book: models.BookRecord{Key: "y", Title: "Other"}},
		{Book: models.BookRecord{Key: "z", Title: "Same"}},
	}

	asc, err := SortRows(rows, SortTitle, models.Ascending)
	require.NoError(t, err)
	assert.Equal(t, []string{"y", "x", "z"}, keys(asc))

	desc, err := SortRows(rows, SortTitle, models.Descending)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "z", "y"}, keys(desc))
}

func TestSortRowsBySubject(t *testing.T) {
	rows := []models.JoinedRow{
		{Book: models.BookRecord{Key: "absent"}},
		{Book: models.BookRecord{Key: "fiction", Subjects: []string{"Fiction", "Jazz"}}},
		{Book: models.BookRecord{Key: "empty", Subjects: []string{}}},
		{Book: models.BookRecord{Key: "drama", Subjects: []string{"Drama"}}},
	}

	asc, err := SortRows(rows, SortSubject, models.Ascending)
	require.NoError(t, err)
	assert.Equal(t, []string{"empty", "drama", "fiction", "absent"}, keys(asc))
}

func TestSortRowsByAuthorFields(t *testing.T) {
	rows := []models.JoinedRow{
		{Book: models.BookRecord{Key: "placeholder"}},
		{Book: models.BookRecord{Key: "b"}, Author: models.AuthorRecord{Key: "A2", BirthDate: str("1899"), TopWork: str("Ulysses")}, AuthorResolved: true},
		{Book: models.BookRecord{Key: "a"}, Author: models.AuthorRecord{Key: "A1", BirthDate: str("1896"), TopWork: str("The Great Gatsby")}, AuthorResolved: true},
	}

	byBirth, err := SortRows(rows, SortAuthorBirthDate, models.Ascending)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "placeholder"}, keys(byBirth))

	byWork, err := SortRows(rows, SortAuthorTopWork, models.Descending)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "placeholder"}, keys(byWork))
}

func TestSortRowsByAuthorName(t *testing.T) {
	rows := []models.JoinedRow{
		{Book: models.BookRecord{Key: "z", AuthorName: str("Zola")}},
		{Book: models.BookRecord{Key: "none"}},
		{Book: models.BookRecord{Key: "a", AuthorName: str("Austen")}},
	}

	asc, err := SortRows(rows, SortAuthorName, models.Ascending)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "z", "none"}, keys(asc))
}

func TestSortRowsUnknownKey(t *testing.T) {
	_, err := SortRows(nil, "isbn", models.Ascending)
	assert.ErrorIs(t, err, ErrUnknownSortKey)
}

func TestNextSort(t *testing.T) {
	state := models.DefaultPagination()

	state = NextSort(state, SortTitle)
	assert.Equal(t, SortTitle, state.SortKey)
	assert.Equal(t, models.Ascending, state.SortDirection)

	state = NextSort(state, SortTitle)
	assert.Equal(t, models.Descending, state.SortDirection)

	state = NextSort(state, SortTitle)
	assert.Equal(t, models.Ascending, state.SortDirection)

	state = NextSort(state, SortTitle)
	state = NextSort(state, SortRatingsAverage)
	assert.Equal(t, SortRatingsAverage, state.SortKey)
	assert.Equal(t, models.Ascending, state.SortDirection)
}
