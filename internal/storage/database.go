package storage

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/justyntemme/bookdash/internal/models"
)

// DefaultPassLimit bounds ListPasses when no limit is given
const DefaultPassLimit = 50

// Database keeps the history of aggregation passes
type Database struct {
	db *sql.DB
}

// NewDatabase creates and initializes the SQLite database
func NewDatabase(dbPath string) (*Database, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	d := &Database{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return d, nil
}

func (d *Database) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS aggregation_passes (
		id TEXT PRIMARY KEY,
		generation INTEGER NOT NULL,
		page INTEGER NOT NULL,
		page_size INTEGER NOT NULL,
		status TEXT NOT NULL,
		book_count INTEGER DEFAULT 0,
		author_hits INTEGER DEFAULT 0,
		error TEXT DEFAULT '',
		started_at DATETIME NOT NULL,
		finished_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_passes_started ON aggregation_passes(started_at);
	CREATE INDEX IF NOT EXISTS idx_passes_status ON aggregation_passes(status);
	`

	_, err := d.db.Exec(schema)
	return err
}

// RecordPass inserts the outcome of one aggregation pass
func (d *Database) RecordPass(ctx context.Context, pass *models.PassRecord) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO aggregation_passes (id, generation, page, page_size, status, book_count, author_hits, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		pass.ID, pass.Generation, pass.Page, pass.PageSize, pass.Status,
		pass.BookCount, pass.AuthorHits, pass.Error, pass.StartedAt.UTC(), pass.FinishedAt.UTC(),
	)
	return err
}

// ListPasses returns the most recent passes, newest first
func (d *Database) ListPasses(ctx context.Context, limit int) ([]models.PassRecord, error) {
	if limit <= 0 {
		limit = DefaultPassLimit
	}

	rows, err := d.db.QueryContext(ctx, `
		SELECT id, generation, page, page_size, status, book_count, author_hits, error, started_at, finished_at
		FROM aggregation_passes
		ORDER BY started_at DESC, generation DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	passes := []models.PassRecord{}
	for rows.Next() {
		var p models.PassRecord
		if err := rows.Scan(&p.ID, &p.Generation, &p.Page, &p.PageSize, &p.Status,
			&p.BookCount, &p.AuthorHits, &p.Error, &p.StartedAt, &p.FinishedAt); err != nil {
			return nil, err
		}
		passes = append(passes, p)
	}
	return passes, rows.Err()
}

// CountPassesByStatus returns how many passes ended in each status
func (d *Database) CountPassesByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM aggregation_passes GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// PrunePasses deletes passes that started before the cutoff
func (d *Database) PrunePasses(ctx context.Context, before time.Time) (int64, error) {
	res, err := d.db.ExecContext(ctx, `DELETE FROM aggregation_passes WHERE started_at < ?`, before.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.db.Close()
}
