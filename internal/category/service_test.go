package category

import (
	"context"
	"errors"
	"testing"

	"zayana-be/internal/apperror"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) List(ctx context.Context) ([]*Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Category), args.Error(1)
}

func (m *MockRepository) FindByID(ctx context.Context, id int64) (*Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Category), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, name string) (*Category, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Category), args.Error(1)
}

func (m *MockRepository) Rename(ctx context.Context, id int64, name string) (*Category, error) {
	args := m.Called(ctx, id, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Category), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Success trims name", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("Create", ctx, "Books").Return(&Category{ID: 1, Name: "Books"}, nil)

		c, err := NewService(repo).Create(ctx, "  Books ")
		require.NoError(t, err)
		assert.Equal(t, int64(1), c.ID)
	})

	t.Run("Empty name", func(t *testing.T) {
		_, err := NewService(new(MockRepository)).Create(ctx, "   ")
		assert.ErrorIs(t, err, ErrInvalidName)
	})

	t.Run("Duplicate", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("Create", ctx, "Books").Return(nil, &pq.Error{Code: "23505"})

		_, err := NewService(repo).Create(ctx, "Books")
		assert.ErrorIs(t, err, ErrCategoryExists)
		assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
	})

	t.Run("Storage", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("Create", ctx, "Books").Return(nil, errors.New("timeout"))

		_, err := NewService(repo).Create(ctx, "Books")
		assert.Equal(t, apperror.KindStorage, apperror.KindOf(err))
	})
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("Not found", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("Rename", ctx, int64(5), "Books").Return(nil, nil)

		_, err := NewService(repo).Update(ctx, 5, "Books")
		assert.ErrorIs(t, err, ErrCategoryNotFound)
	})

	t.Run("Duplicate", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("Rename", ctx, int64(5), "Books").Return(nil, &pq.Error{Code: "23505"})

		_, err := NewService(repo).Update(ctx, 5, "Books")
		assert.ErrorIs(t, err, ErrCategoryExists)
	})
}

func TestService_GetAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	svc := NewService(repo)

	repo.On("FindByID", ctx, int64(1)).Return(nil, nil)
	repo.On("Delete", ctx, int64(1)).Return(false, nil)
	repo.On("Delete", ctx, int64(2)).Return(true, nil)

	_, err := svc.GetByID(ctx, 1)
	assert.ErrorIs(t, err, ErrCategoryNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, 1), ErrCategoryNotFound)
	assert.NoError(t, svc.Delete(ctx, 2))
}
