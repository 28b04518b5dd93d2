package product

import (
	"context"
	"strings"

	"zayana-be/internal/db"
	"zayana-be/internal/logger"

	"go.uber.org/zap"
)

type Service interface {
	List(ctx context.Context, opts ListOptions) (*ListResult, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	Create(ctx context.Context, in CreateInput) (*Product, error)
	Update(ctx context.Context, id int64, in UpdateInput) (*Product, error)
	Delete(ctx context.Context, id int64) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	opts = opts.normalize()
	opts.Search = strings.TrimSpace(opts.Search)

	items, total, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, ErrFailedListProducts.Wrap(err)
	}

	return &ListResult{
		Items: items,
		Total: total,
		Page:  opts.Page,
		Limit: opts.Limit,
	}, nil
}

func (s *service) GetByID(ctx context.Context, id int64) (*Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrFailedGetProduct.Wrap(err)
	}
	if p == nil {
		return nil, ErrProductNotFound.With("product_id", id)
	}
	return p, nil
}

func (s *service) Create(ctx context.Context, in CreateInput) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Create"),
	)

	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, ErrInvalidName
	}
	if !in.Price.IsPositive() {
		return nil, ErrInvalidPrice
	}
	if in.Stock < 0 {
		return nil, ErrInvalidStock
	}

	p, err := s.repo.Create(ctx, in)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return nil, ErrUnknownCategory
		}
		log.Error("create product failed", zap.Error(err))
		return nil, ErrFailedCreateProduct.Wrap(err)
	}
	return p, nil
}

func (s *service) Update(ctx context.Context, id int64, in UpdateInput) (*Product, error) {
	if in.IsEmpty() {
		return nil, ErrEmptyUpdate
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, ErrInvalidName
		}
		in.Name = &name
	}
	if in.Price != nil && !in.Price.IsPositive() {
		return nil, ErrInvalidPrice
	}
	if in.Stock != nil && *in.Stock < 0 {
		return nil, ErrInvalidStock
	}

	p, err := s.repo.Update(ctx, id, in)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return nil, ErrUnknownCategory
		}
		return nil, ErrFailedUpdateProduct.Wrap(err)
	}
	if p == nil {
		return nil, ErrProductNotFound.With("product_id", id)
	}
	return p, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return ErrFailedDeleteProduct.Wrap(err)
	}
	if !deleted {
		return ErrProductNotFound.With("product_id", id)
	}

	logger.FromCtx(ctx).Info("product deleted", zap.Int64("product_id", id))
	return nil
}
