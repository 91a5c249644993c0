package models

// SortKey names a sortable column of the joined table
type SortKey string

// SortDirection is the order applied by the active sort key
type SortDirection string

const (
	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

// Default pagination values
const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

// PageSizes lists the page sizes the dashboard offers
var PageSizes = []int{10, 15, 20}

// ValidPageSize reports whether n is one of the offered page sizes
func ValidPageSize(n int) bool {
	for _, size := range PageSizes {
		if size == n {
			return true
		}
	}
	return false
}

// PaginationState holds the user-controlled view parameters.
// SortKey is empty when no column has been sorted yet.
type PaginationState struct {
	Page          int           `json:"page"`
	PageSize      int           `json:"page_size"`
	SortKey       SortKey       `json:"sort_key,omitempty"`
	SortDirection SortDirection `json:"sort_direction"`
}

// DefaultPagination returns the state used on first load
func DefaultPagination() PaginationState {
	return PaginationState{
		Page:          DefaultPage,
		PageSize:      DefaultPageSize,
		SortDirection: Ascending,
	}
}

// TotalPages returns the page count for numFound results, or nil if unknown
func (p PaginationState) TotalPages(numFound *int) *int {
	if numFound == nil || p.PageSize <= 0 {
		return nil
	}
	pages := (*numFound + p.PageSize - 1) / p.PageSize
	return &pages
}
