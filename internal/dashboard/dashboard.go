package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/justyntemme/bookdash/internal/metrics"
	"github.com/justyntemme/bookdash/internal/models"
)

// State is the lifecycle state of the dashboard
type State string

const (
	StateIdle     State = "idle"
	StateFetching State = "fetching"
	StateReady    State = "ready"
	StateError    State = "error"
)

// Common errors
var (
	ErrInvalidPage     = errors.New("page must be at least 1")
	ErrInvalidPageSize = errors.New("page size is not one of the offered sizes")
	ErrSuperseded      = errors.New("aggregation pass superseded by a newer request")
)

// Aggregator runs one aggregation pass
type Aggregator interface {
	Aggregate(ctx context.Context, state models.PaginationState) (*Result, error)
}

// PassRecorder receives the outcome of every settled pass
type PassRecorder interface {
	RecordPass(ctx context.Context, pass *models.PassRecord) error
}

// Snapshot is a read-only view of the dashboard for presentation
type Snapshot struct {
	State      State                  `json:"state"`
	Pagination models.PaginationState `json:"pagination"`
	Rows       []models.JoinedRow     `json:"rows"`
	NumFound   *int                   `json:"num_found"`
	TotalPages *int                   `json:"total_pages"`
	Generation uint64                 `json:"generation"`
	LastError  string                 `json:"last_error,omitempty"`
}

// Dashboard owns the pagination state and the published rows. Page and
// page size changes start an aggregation pass; only the pass started by
// the most recent change may publish its rows.
type Dashboard struct {
	pipeline Aggregator
	recorder PassRecorder

	mu         sync.Mutex
	state      State
	pagination models.PaginationState
	rows       []models.JoinedRow
	numFound   *int
	lastErr    error
	generation uint64
}

// Option configures a Dashboard
type Option func(*Dashboard)

// WithRecorder attaches a pass recorder
func WithRecorder(r PassRecorder) Option {
	return func(d *Dashboard) {
		d.recorder = r
	}
}

// New creates an idle dashboard with default pagination
func New(pipeline Aggregator, opts ...Option) *Dashboard {
	d := &Dashboard{
		pipeline:   pipeline,
		state:      StateIdle,
		pagination: models.DefaultPagination(),
		rows:       []models.JoinedRow{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Load runs the initial pass with the current pagination
func (d *Dashboard) Load(ctx context.Context) error {
	return d.runPass(ctx, func(*models.PaginationState) {})
}

// ChangePage moves to page n and fetches it
func (d *Dashboard) ChangePage(ctx context.Context, n int) error {
	if n < 1 {
		return ErrInvalidPage
	}
	return d.runPass(ctx, func(p *models.PaginationState) {
		p.Page = n
	})
}

// ChangePageSize switches to n items per page and fetches the first page
func (d *Dashboard) ChangePageSize(ctx context.Context, n int) error {
	if !models.ValidPageSize(n) {
		return ErrInvalidPageSize
	}
	return d.runPass(ctx, func(p *models.PaginationState) {
		p.PageSize = n
		p.Page = models.DefaultPage
	})
}

// RequestSort re-orders the published rows by key without fetching.
// Repeating the active key flips the direction.
func (d *Dashboard) RequestSort(key models.SortKey) error {
	if _, err := ParseSortKey(string(key)); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	next := NextSort(d.pagination, key)
	sorted, err := SortRows(d.rows, next.SortKey, next.SortDirection)
	if err != nil {
		return err
	}
	d.pagination = next
	d.rows = sorted
	metrics.SortRequests.WithLabelValues(string(key)).Inc()
	slog.Debug("Rows sorted", "key", key, "direction", next.SortDirection, "rows", len(sorted))
	return nil
}

// Snapshot returns a copy of the current dashboard state
func (d *Dashboard) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	snap := Snapshot{
		State:      d.state,
		Pagination: d.pagination,
		Rows:       slices.Clone(d.rows),
		NumFound:   d.numFound,
		TotalPages: d.pagination.TotalPages(d.numFound),
		Generation: d.generation,
	}
	if d.lastErr != nil {
		snap.LastError = d.lastErr.Error()
	}
	return snap
}

// Err returns the error of the last failed pass, cleared by the next success
func (d *Dashboard) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastErr
}

// runPass applies update to the pagination, starts a new generation and
// runs the pipeline for it.
func (d *Dashboard) runPass(ctx context.Context, update func(*models.PaginationState)) error {
	d.mu.Lock()
	update(&d.pagination)
	d.generation++
	gen := d.generation
	requested := d.pagination
	d.state = StateFetching
	d.mu.Unlock()

	pass := &models.PassRecord{
		ID:         uuid.New().String(),
		Generation: gen,
		Page:       requested.Page,
		PageSize:   requested.PageSize,
		StartedAt:  time.Now(),
	}
	slog.Debug("Aggregation pass started", "generation", gen, "page", requested.Page, "page_size", requested.PageSize)

	result, err := d.pipeline.Aggregate(ctx, requested)
	pass.FinishedAt = time.Now()

	err = d.publish(gen, result, err, pass)

	metrics.Passes.WithLabelValues(pass.Status).Inc()
	metrics.PassDuration.Observe(pass.FinishedAt.Sub(pass.StartedAt).Seconds())
	d.record(ctx, pass)
	return err
}

// publish settles a finished pass under the lock
func (d *Dashboard) publish(gen uint64, result *Result, err error, pass *models.PassRecord) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if gen != d.generation {
		pass.Status = models.PassSuperseded
		slog.Info("Discarding superseded aggregation pass", "generation", gen, "current", d.generation)
		return ErrSuperseded
	}

	if err != nil {
		d.state = StateError
		d.lastErr = err
		pass.Status = models.PassFailed
		pass.Error = err.Error()
		slog.Warn("Aggregation pass failed", "generation", gen, "error", err)
		return err
	}

	rows := result.Rows
	if d.pagination.SortKey != "" {
		if sorted, serr := SortRows(rows, d.pagination.SortKey, d.pagination.SortDirection); serr == nil {
			rows = sorted
		}
	}

	d.rows = rows
	d.numFound = result.NumFound
	d.state = StateReady
	d.lastErr = nil

	pass.Status = models.PassPublished
	pass.BookCount = len(rows)
	pass.AuthorHits = result.AuthorHits
	metrics.PublishedRows.Set(float64(len(rows)))
	slog.Info("Aggregation pass published", "generation", gen, "rows", len(rows), "authors", result.AuthorHits)
	return nil
}

func (d *Dashboard) record(ctx context.Context, pass *models.PassRecord) {
	if d.recorder == nil {
		return
	}
	if err := d.recorder.RecordPass(context.WithoutCancel(ctx), pass); err != nil {
		slog.Warn("Failed to record aggregation pass", "pass_id", pass.ID, "error", err)
	}
}
