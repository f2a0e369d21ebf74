package book

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libraryapi/internal/testutil"
)

func TestSQLiteRepo(t *testing.T) {
	runRepositoryTests(t, func(t *testing.T) Repository {
		return NewSQLiteRepo(testutil.NewSQLiteDB(t), 5*time.Second)
	})
}

func TestPostgresRepo(t *testing.T) {
	runRepositoryTests(t, func(t *testing.T) Repository {
		return NewPostgresRepo(testutil.NewPostgresPool(t), 5*time.Second)
	})
}

var fixtures = []Input{
	{Title: "Dune", Author: "Frank Herbert", Year: 1965},
	{Title: "Dune Messiah", Author: "Frank Herbert", Year: 1969},
	{Title: "Emma", Author: "Jane Austen", Year: 1815},
	{Title: "Persuasion", Author: "Jane Austen", Year: 1817},
	{Title: "Neuromancer", Author: "William Gibson", Year: 1984},
	{Title: "Hyperion", Author: "Dan Simmons", Year: 1989},
	{Title: "100% Pure", Author: "Snake_Case", Year: 1984},
}

func seed(t *testing.T, repo Repository) []Book {
	t.Helper()
	books := make([]Book, 0, len(fixtures))
	for _, in := range fixtures {
		b, err := repo.Create(context.Background(), in)
		require.NoError(t, err)
		books = append(books, b)
	}
	return books
}

func titles(books []Book) []string {
	out := make([]string, len(books))
	for i, b := range books {
		out[i] = b.Title
	}
	return out
}

func runRepositoryTests(t *testing.T, newRepo func(t *testing.T) Repository) {
	ctx := context.Background()

	t.Run("create assigns increasing ids", func(t *testing.T) {
		repo := newRepo(t)
		books := seed(t, repo)
		for i := 1; i < len(books); i++ {
			assert.Greater(t, books[i].ID, books[i-1].ID)
		}
		got, err := repo.GetByID(ctx, books[0].ID)
		require.NoError(t, err)
		assert.Equal(t, books[0], got)
	})

	t.Run("filters", func(t *testing.T) {
		repo := newRepo(t)
		seed(t, repo)

		year := 1984
		q := DefaultQuery()
		q.Year = &year
		books, total, err := repo.List(ctx, q)
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		assert.Equal(t, []string{"100% Pure", "Neuromancer"}, titles(books))

		q = DefaultQuery()
		q.Title = "DUNE"
		books, total, err = repo.List(ctx, q)
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		assert.Equal(t, []string{"Dune", "Dune Messiah"}, titles(books))

		q = DefaultQuery()
		q.Author = "austen"
		q.Title = "emm"
		books, total, err = repo.List(ctx, q)
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		assert.Equal(t, []string{"Emma"}, titles(books))
	})

	t.Run("like metacharacters match literally", func(t *testing.T) {
		repo := newRepo(t)
		seed(t, repo)

		q := DefaultQuery()
		q.Title = "%"
		_, total, err := repo.List(ctx, q)
		require.NoError(t, err)
		assert.Equal(t, 1, total)

		q = DefaultQuery()
		q.Author = "_"
		books, total, err := repo.List(ctx, q)
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		assert.Equal(t, "Snake_Case", books[0].Author)
	})

	t.Run("pagination reports the full total", func(t *testing.T) {
		repo := newRepo(t)
		seed(t, repo)

		q := DefaultQuery()
		q.Skip = 2
		q.Limit = 3
		books, total, err := repo.List(ctx, q)
		require.NoError(t, err)
		assert.Equal(t, len(fixtures), total)
		assert.Equal(t, []string{"Dune Messiah", "Emma", "Hyperion"}, titles(books))

		q.Skip = 100
		books, total, err = repo.List(ctx, q)
		require.NoError(t, err)
		assert.Equal(t, len(fixtures), total)
		assert.Empty(t, books)
	})

	t.Run("descending is the reverse of ascending including ties", func(t *testing.T) {
		repo := newRepo(t)
		seed(t, repo)

		for _, field := range []SortField{SortByTitle, SortByAuthor, SortByYear} {
			q := DefaultQuery()
			q.SortBy = field
			q.Limit = MaxLimit
			asc, _, err := repo.List(ctx, q)
			require.NoError(t, err)

			q.Order = OrderDesc
			desc, _, err := repo.List(ctx, q)
			require.NoError(t, err)

			require.Len(t, desc, len(asc))
			for i := range asc {
				assert.Equal(t, asc[i], desc[len(desc)-1-i], "sort_by=%s position %d", field, i)
			}
		}
	})

	t.Run("replace overwrites every field", func(t *testing.T) {
		repo := newRepo(t)
		b, err := repo.Create(ctx, Input{Title: "Old", Author: "Someone", Year: 2000})
		require.NoError(t, err)

		got, err := repo.Update(ctx, b.ID, Input{Title: "New", Author: "Other", Year: 2001})
		require.NoError(t, err)
		assert.Equal(t, Book{ID: b.ID, Title: "New", Author: "Other", Year: 2001}, got)

		_, err = repo.Update(ctx, b.ID+1000, Input{Title: "x", Author: "y", Year: 1})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("patch writes only supplied fields", func(t *testing.T) {
		repo := newRepo(t)
		b, err := repo.Create(ctx, Input{Title: "Kept", Author: "Kept Too", Year: 1999})
		require.NoError(t, err)

		got, err := repo.Patch(ctx, b.ID, Patch{Year: Some(0)})
		require.NoError(t, err)
		assert.Equal(t, Book{ID: b.ID, Title: "Kept", Author: "Kept Too", Year: 0}, got)

		got, err = repo.Patch(ctx, b.ID, Patch{})
		require.NoError(t, err)
		assert.Equal(t, Book{ID: b.ID, Title: "Kept", Author: "Kept Too", Year: 0}, got)

		_, err = repo.Patch(ctx, b.ID+1000, Patch{Title: Some("x")})
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = repo.Patch(ctx, b.ID+1000, Patch{})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("delete then get is not found", func(t *testing.T) {
		repo := newRepo(t)
		b, err := repo.Create(ctx, Input{Title: "Gone", Author: "Soon", Year: 2020})
		require.NoError(t, err)

		require.NoError(t, repo.Delete(ctx, b.ID))
		_, err = repo.GetByID(ctx, b.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, b.ID), ErrNotFound)
	})

	t.Run("end to end through the service", func(t *testing.T) {
		svc := NewService(newRepo(t))

		created, err := svc.Create(ctx, Input{Title: "Brave New World", Author: "Aldous Huxley", Year: 1932})
		require.NoError(t, err)

		page, err := svc.List(ctx, DefaultQuery())
		require.NoError(t, err)
		assert.Equal(t, 1, page.Total)
		assert.Equal(t, []Book{created}, page.Books)

		patched, err := svc.Patch(ctx, created.ID, Patch{Title: Some("Island")})
		require.NoError(t, err)
		assert.Equal(t, "Island", patched.Title)
		assert.Equal(t, 1932, patched.Year)

		require.NoError(t, svc.Delete(ctx, created.ID))
		page, err = svc.List(ctx, DefaultQuery())
		require.NoError(t, err)
		assert.Equal(t, 0, page.Total)
		assert.Empty(t, page.Books)
	})
}
