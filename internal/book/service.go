package book

import (
	"context"
	"fmt"

	"libraryapi/internal/platform/metrics"
)

// Service provides book-related business logic.
type Service struct {
	repo Repository
}

// NewService creates a new book service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns one page of books matching q plus the total number of matches.
// An invalid q is rejected before the repository is called.
func (s *Service) List(ctx context.Context, q Query) (Page, error) {
	if err := q.Validate(); err != nil {
		return Page{}, err
	}
	books, total, err := s.repo.List(ctx, q)
	if err != nil {
		return Page{}, fmt.Errorf("list books: %w", err)
	}
	if books == nil {
		books = []Book{}
	}
	return Page{Total: total, Books: books}, nil
}

// Get returns a book by its id.
func (s *Service) Get(ctx context.Context, id int64) (Book, error) {
	return s.repo.GetByID(ctx, id)
}

// Create stores a new book and returns it with its assigned id.
func (s *Service) Create(ctx context.Context, in Input) (Book, error) {
	if err := in.Validate(); err != nil {
		return Book{}, err
	}
	b, err := s.repo.Create(ctx, in)
	if err != nil {
		return Book{}, fmt.Errorf("create book: %w", err)
	}
	metrics.BookMutationsTotal.WithLabelValues("create").Inc()
	return b, nil
}

// Replace overwrites every field of an existing book.
func (s *Service) Replace(ctx context.Context, id int64, in Input) (Book, error) {
	if err := in.Validate(); err != nil {
		return Book{}, err
	}
	b, err := s.repo.Update(ctx, id, in)
	if err != nil {
		return Book{}, err
	}
	metrics.BookMutationsTotal.WithLabelValues("replace").Inc()
	return b, nil
}

// Patch overwrites only the fields present in p.
func (s *Service) Patch(ctx context.Context, id int64, p Patch) (Book, error) {
	if err := p.Validate(); err != nil {
		return Book{}, err
	}
	b, err := s.repo.Patch(ctx, id, p)
	if err != nil {
		return Book{}, err
	}
	if !p.Empty() {
		metrics.BookMutationsTotal.WithLabelValues("patch").Inc()
	}
	return b, nil
}

// Delete removes a book.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	metrics.BookMutationsTotal.WithLabelValues("delete").Inc()
	return nil
}
