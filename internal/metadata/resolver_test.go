package metadata

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/bookdash/internal/models"
)

// MockAuthorFetcher implements AuthorFetcher for testing
type MockAuthorFetcher struct {
	mu      sync.Mutex
	calls   map[string]int
	authors map[string]models.AuthorRecord
	errs    map[string]error
	delay   map[string]time.Duration
}

func newMockAuthorFetcher() *MockAuthorFetcher {
	return &MockAuthorFetcher{
		calls:   make(map[string]int),
		authors: make(map[string]models.AuthorRecord),
		errs:    make(map[string]error),
		delay:   make(map[string]time.Duration),
	}
}

func (m *MockAuthorFetcher) GetAuthor(ctx context.Context, id string) (*models.AuthorRecord, error) {
	m.mu.Lock()
	m.calls[id]++
	d := m.delay[id]
	err := m.errs[id]
	author, ok := m.authors[id]
	m.mu.Unlock()

	if d > 0 {
		time.Sleep(d)
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &FetchError{Component: ComponentAuthor, AuthorID: id, Err: ErrNotFound}
	}
	return &author, nil
}

func (m *MockAuthorFetcher) totalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.calls {
		total += n
	}
	return total
}

func strPtr(s string) *string { return &s }

func TestDistinctIDs(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{"nil", nil, []string{}},
		{"duplicates", []string{"A1", "A1", "A2", "A1"}, []string{"A1", "A2"}},
		{"drops empty", []string{"", "A1", ""}, []string{"A1"}},
		{"keeps order", []string{"B", "A", "B", "C"}, []string{"B", "A", "C"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DistinctIDs(tt.input))
		})
	}
}

func TestResolveDeduplicates(t *testing.T) {
	fetcher := newMockAuthorFetcher()
	fetcher.authors["A1"] = models.AuthorRecord{Key: "A1", BirthDate: strPtr("1896")}
	resolver := NewAuthorResolver(fetcher, 0)

	authors, err := resolver.Resolve(context.Background(), []string{"A1", "A1", "A1"})
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.calls["A1"])
	assert.Len(t, authors, 1)
	assert.Equal(t, "1896", *authors["A1"].BirthDate)
}

func TestResolveEmptyIssuesNoCalls(t *testing.T) {
	fetcher := newMockAuthorFetcher()
	resolver := NewAuthorResolver(fetcher, 0)

	authors, err := resolver.Resolve(context.Background(), nil)
	require.NoError(t, err)
	assert.NotNil(t, authors)
	assert.Empty(t, authors)

	authors, err = resolver.Resolve(context.Background(), []string{"", ""})
	require.NoError(t, err)
	assert.Empty(t, authors)
	assert.Equal(t, 0, fetcher.totalCalls())
}

func TestResolvePartialFailure(t *testing.T) {
	fetcher := newMockAuthorFetcher()
	fetcher.authors["A1"] = models.AuthorRecord{Key: "A1"}
	fetcher.errs["A2"] = &FetchError{Component: ComponentAuthor, AuthorID: "A2", Err: errors.New("boom")}
	resolver := NewAuthorResolver(fetcher, 0)

	authors, err := resolver.Resolve(context.Background(), []string{"A1", "A2"})
	require.NoError(t, err)
	assert.Contains(t, authors, "A1")
	assert.NotContains(t, authors, "A2")
}

func TestResolveAllFail(t *testing.T) {
	fetcher := newMockAuthorFetcher()
	fetcher.errs["A1"] = errors.New("first")
	fetcher.errs["A2"] = errors.New("second")
	resolver := NewAuthorResolver(fetcher, 0)

	authors, err := resolver.Resolve(context.Background(), []string{"A1", "A2"})
	require.Error(t, err)
	assert.Nil(t, authors)

	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, ComponentAuthor, fe.Component)
	assert.Contains(t, err.Error(), "first")
	assert.Contains(t, err.Error(), "second")
}

func TestResolveWaitsForEveryLookup(t *testing.T) {
	fetcher := newMockAuthorFetcher()
	fetcher.errs["fast"] = errors.New("fails immediately")
	fetcher.authors["slow"] = models.AuthorRecord{Key: "slow"}
	fetcher.delay["slow"] = 50 * time.Millisecond
	resolver := NewAuthorResolver(fetcher, 0)

	authors, err := resolver.Resolve(context.Background(), []string{"fast", "slow"})
	require.NoError(t, err)
	assert.Contains(t, authors, "slow", "a fast failure must not short-circuit slower lookups")
}

func TestResolveRunsConcurrently(t *testing.T) {
	var inFlight, peak int32
	fetcher := fetcherFunc(func(ctx context.Context, id string) (*models.AuthorRecord, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return &models.AuthorRecord{Key: id}, nil
	})

	resolver := NewAuthorResolver(fetcher, 2)
	authors, err := resolver.Resolve(context.Background(), []string{"A", "B", "C", "D"})
	require.NoError(t, err)
	assert.Len(t, authors, 4)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
	assert.GreaterOrEqual(t, atomic.LoadInt32(&peak), int32(1))
}

type fetcherFunc func(ctx context.Context, id string) (*models.AuthorRecord, error)

func (f fetcherFunc) GetAuthor(ctx context.Context, id string) (*models.AuthorRecord, error) {
	return f(ctx, id)
}
