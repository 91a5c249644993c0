package models

import (
	"strings"
	"time"
)

// BookRecord represents one search result from the bibliographic service
type BookRecord struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	PrimaryAuthorID  string   `json:"primary_author_id,omitempty"`
	AuthorName       *string  `json:"author_name"`
	FirstPublishYear *int     `json:"first_publish_year"`
	RatingsAverage   *float64 `json:"ratings_average"`
	Subjects         []string `json:"subjects"` // nil when the service omitted the field
}

// SubjectText returns the subjects joined the way they are displayed.
// The boolean is false when the service did not report subjects at all.
func (b BookRecord) SubjectText() (string, bool) {
	if b.Subjects == nil {
		return "", false
	}
	return strings.Join(b.Subjects, ", "), true
}

// AuthorRecord represents author details resolved from an author identifier.
// The zero value is the placeholder used when resolution is unavailable.
type AuthorRecord struct {
	Key       string  `json:"key,omitempty"`
	BirthDate *string `json:"birth_date"`
	TopWork   *string `json:"top_work"`
}

// JoinedRow pairs a book with its primary author
type JoinedRow struct {
	Book           BookRecord   `json:"book"`
	Author         AuthorRecord `json:"author"`
	AuthorResolved bool         `json:"author_resolved"`
}

// BookPage is one page of search results
type BookPage struct {
	Books    []BookRecord `json:"books"`
	NumFound *int         `json:"num_found"` // total matches, when the service reports it
}

// PassRecord is the outcome of one aggregation pass
type PassRecord struct {
	ID         string    `json:"id"`
	Generation uint64    `json:"generation"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	Status     string    `json:"status"`
	BookCount  int       `json:"book_count"`
	AuthorHits int       `json:"author_hits"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Pass statuses
const (
	PassPublished  = "published"
	PassFailed     = "failed"
	PassSuperseded = "superseded"
)
