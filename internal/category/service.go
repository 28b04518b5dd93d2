package category

import (
	"context"
	"strings"

	"zayana-be/internal/db"
)

type Service interface {
	List(ctx context.Context) ([]*Category, error)
	GetByID(ctx context.Context, id int64) (*Category, error)
	Create(ctx context.Context, name string) (*Category, error)
	Update(ctx context.Context, id int64, name string) (*Category, error)
	Delete(ctx context.Context, id int64) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context) ([]*Category, error) {
	out, err := s.repo.List(ctx)
	if err != nil {
		return nil, ErrFailedGetCategory.Wrap(err)
	}
	return out, nil
}

func (s *service) GetByID(ctx context.Context, id int64) (*Category, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrFailedGetCategory.Wrap(err)
	}
	if c == nil {
		return nil, ErrCategoryNotFound
	}
	return c, nil
}

func (s *service) Create(ctx context.Context, name string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}

	c, err := s.repo.Create(ctx, name)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrCategoryExists
		}
		return nil, ErrFailedSaveCategory.Wrap(err)
	}
	return c, nil
}

func (s *service) Update(ctx context.Context, id int64, name string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}

	c, err := s.repo.Rename(ctx, id, name)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrCategoryExists
		}
		return nil, ErrFailedSaveCategory.Wrap(err)
	}
	if c == nil {
		return nil, ErrCategoryNotFound
	}
	return c, nil
}

// Delete removes the category. Products keep existing with no category.
func (s *service) Delete(ctx context.Context, id int64) error {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return ErrFailedDeleteCategory.Wrap(err)
	}
	if !ok {
		return ErrCategoryNotFound
	}
	return nil
}
