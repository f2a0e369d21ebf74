package book

import (
	"fmt"
)

type SortField string

const (
	SortByTitle  SortField = "title"
	SortByAuthor SortField = "author"
	SortByYear   SortField = "year"
)

type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// sortColumns is the only way a sort field reaches SQL.
var sortColumns = map[SortField]string{
	SortByTitle:  "title",
	SortByAuthor: "author",
	SortByYear:   "year",
}

// Query defines filters, ordering and pagination for listing books.
type Query struct {
	Year   *int
	Title  string
	Author string
	SortBy SortField
	Order  SortOrder
	Skip   int
	Limit  int
}

// DefaultQuery returns a query with no filters and default ordering and paging.
func DefaultQuery() Query {
	return Query{
		SortBy: SortByTitle,
		Order:  OrderAsc,
		Skip:   0,
		Limit:  DefaultLimit,
	}
}

// Validate checks enum and range constraints.
func (q Query) Validate() error {
	if _, ok := sortColumns[q.SortBy]; !ok {
		return fmt.Errorf("%w: sort_by %q", ErrInvalidQuery, q.SortBy)
	}
	if q.Order != OrderAsc && q.Order != OrderDesc {
		return fmt.Errorf("%w: order %q", ErrInvalidQuery, q.Order)
	}
	if q.Skip < 0 {
		return fmt.Errorf("%w: skip must be >= 0", ErrInvalidQuery)
	}
	if q.Limit < 1 || q.Limit > MaxLimit {
		return fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidQuery, MaxLimit)
	}
	return nil
}
