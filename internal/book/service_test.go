package book

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_List(t *testing.T) {
	t.Run("invalid query never reaches the repository", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := NewService(NewMockRepository(ctrl))

		q := DefaultQuery()
		q.Limit = 0
		_, err := svc.List(context.Background(), q)
		assert.ErrorIs(t, err, ErrInvalidQuery)
	})

	t.Run("nil result becomes an empty page", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := NewMockRepository(ctrl)
		repo.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, 0, nil)

		page, err := NewService(repo).List(context.Background(), DefaultQuery())
		require.NoError(t, err)
		assert.NotNil(t, page.Books)
		assert.Empty(t, page.Books)
	})

	t.Run("repository error is wrapped", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := NewMockRepository(ctrl)
		boom := errors.New("boom")
		repo.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, 0, boom)

		_, err := NewService(repo).List(context.Background(), DefaultQuery())
		assert.ErrorIs(t, err, boom)
	})
}

func TestService_Patch(t *testing.T) {
	t.Run("null field is rejected before storage", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := NewService(NewMockRepository(ctrl))

		_, err := svc.Patch(context.Background(), 1, Patch{Title: Optional[string]{Set: true, Null: true}})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("year outside the storage range is rejected before storage", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := NewService(NewMockRepository(ctrl))

		_, err := svc.Patch(context.Background(), 1, Patch{Year: Some(MaxYear + 1)})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("not found passes through", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := NewMockRepository(ctrl)
		repo.EXPECT().Patch(gomock.Any(), int64(1), gomock.Any()).Return(Book{}, ErrNotFound)

		_, err := NewService(repo).Patch(context.Background(), 1, Patch{Year: Some(2000)})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestService_CreateAndReplaceBoundYear(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := NewService(NewMockRepository(ctrl))
	ctx := context.Background()

	_, err := svc.Create(ctx, Input{Title: "a", Author: "b", Year: MinYear - 1})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Replace(ctx, 1, Input{Title: "a", Author: "b", Year: MaxYear + 1})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestService_Delete(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := NewMockRepository(ctrl)
	repo.EXPECT().Delete(gomock.Any(), int64(2)).Return(ErrNotFound)

	err := NewService(repo).Delete(context.Background(), 2)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPatch_UnmarshalDistinguishesAbsentFromZero(t *testing.T) {
	var p Patch
	require.NoError(t, jsonUnmarshal(`{"year":0,"author":null}`, &p))

	assert.False(t, p.Title.Set)
	assert.True(t, p.Year.Set)
	assert.Equal(t, 0, p.Year.Value)
	assert.True(t, p.Author.Set)
	assert.True(t, p.Author.Null)
	assert.False(t, p.Empty())
	assert.ErrorIs(t, p.Validate(), ErrInvalidInput)
}

func TestPatch_Apply(t *testing.T) {
	b := Book{ID: 1, Title: "T", Author: "A", Year: 1999}
	got := Patch{Year: Some(0)}.Apply(b)
	assert.Equal(t, Book{ID: 1, Title: "T", Author: "A", Year: 0}, got)
	assert.Equal(t, b, Patch{}.Apply(b))
}
