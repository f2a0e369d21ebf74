package book

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

var (
	// ErrNotFound is returned when no book has the requested id.
	ErrNotFound = errors.New("book not found")
	// ErrInvalidQuery is returned for listing parameters outside their domain.
	ErrInvalidQuery = errors.New("invalid book query")
	// ErrInvalidInput is returned for create/update payloads that break the contract.
	ErrInvalidInput = errors.New("invalid book input")
)

// Year is stored as a 32-bit integer by every engine.
const (
	MinYear = math.MinInt32
	MaxYear = math.MaxInt32
)

func validYear(y int) bool {
	return y >= MinYear && y <= MaxYear
}

// Book represents a book entity.
type Book struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	Year   int    `json:"year"`
}

// Input is the full set of writable fields, used by create and replace.
type Input struct {
	Title  string
	Author string
	Year   int
}

// Validate checks that the year fits the storage column.
func (in Input) Validate() error {
	if !validYear(in.Year) {
		return fmt.Errorf("%w: year must be between %d and %d", ErrInvalidInput, MinYear, MaxYear)
	}
	return nil
}

// Optional marks whether a field was supplied at all, so that zero values
// like year 0 or an empty title can still be written by a partial update.
type Optional[T any] struct {
	Value T
	Set   bool
	Null  bool
}

// Some returns an Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// UnmarshalJSON records that the field was present, and whether it was null.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

// Patch holds the fields of a partial update. Absent fields are left as they are.
type Patch struct {
	Title  Optional[string] `json:"title"`
	Author Optional[string] `json:"author"`
	Year   Optional[int]    `json:"year"`
}

// Empty reports whether no field was supplied.
func (p Patch) Empty() bool {
	return !p.Title.Set && !p.Author.Set && !p.Year.Set
}

// Validate rejects explicit nulls, since every column is NOT NULL, and
// years outside the storage range.
func (p Patch) Validate() error {
	var fields []string
	if p.Title.Null {
		fields = append(fields, "title")
	}
	if p.Author.Null {
		fields = append(fields, "author")
	}
	if p.Year.Null {
		fields = append(fields, "year")
	}
	if len(fields) > 0 {
		return fmt.Errorf("%w: %v must not be null", ErrInvalidInput, fields)
	}
	if p.Year.Set && !validYear(p.Year.Value) {
		return fmt.Errorf("%w: year must be between %d and %d", ErrInvalidInput, MinYear, MaxYear)
	}
	return nil
}

// Apply returns b with the supplied fields overwritten.
func (p Patch) Apply(b Book) Book {
	if p.Title.Set {
		b.Title = p.Title.Value
	}
	if p.Author.Set {
		b.Author = p.Author.Value
	}
	if p.Year.Set {
		b.Year = p.Year.Value
	}
	return b
}

// Page is one slice of a listing plus the number of rows matching the filters.
type Page struct {
	Total int    `json:"total"`
	Books []Book `json:"books"`
}
