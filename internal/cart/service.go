package cart

import (
	"context"

	"zayana-be/internal/db"
	"zayana-be/internal/logger"
	"zayana-be/internal/product"

	"go.uber.org/zap"
)

// ProductFinder is the catalog lookup the cart needs. It returns
// (nil, nil) for an unknown product.
type ProductFinder interface {
	FindByID(ctx context.Context, id int64) (*product.Product, error)
}

// Service defines the business logic for carts.
type Service interface {
	GetOrCreateCart(ctx context.Context, userID int64) (*Cart, error)
	GetCartDetail(ctx context.Context, userID int64) (*Detail, error)
	AddItem(ctx context.Context, userID, productID int64, quantity int) (*Detail, error)
	RemoveItem(ctx context.Context, userID, productID int64, quantity *int) (*Detail, error)
	Clear(ctx context.Context, userID int64) error
	RemoveOrdered(ctx context.Context, userID int64, lines []Line) error
}

type service struct {
	repo     Repository
	products ProductFinder
}

func NewService(repo Repository, products ProductFinder) Service {
	return &service{repo: repo, products: products}
}

// GetOrCreateCart returns the user's cart, creating it on first use.
// Concurrent creators converge on the same row.
func (s *service) GetOrCreateCart(ctx context.Context, userID int64) (*Cart, error) {
	c, err := s.repo.GetCartByUser(ctx, userID)
	if err != nil {
		return nil, ErrFailedGetCart.Wrap(err)
	}
	if c != nil {
		return c, nil
	}

	c, err = s.repo.CreateCart(ctx, userID)
	if err == nil {
		return c, nil
	}
	if !db.IsUniqueViolation(err) {
		return nil, ErrFailedCreateCart.Wrap(err)
	}

	logger.FromCtx(ctx).Debug("cart created concurrently, re-reading",
		zap.Int64("user_id", userID),
	)
	c, err = s.repo.GetCartByUser(ctx, userID)
	if err != nil {
		return nil, ErrFailedGetCart.Wrap(err)
	}
	if c == nil {
		return nil, ErrFailedCreateCart
	}
	return c, nil
}

// GetCartDetail never fails for a user without a cart; it returns an
// empty detail instead.
func (s *service) GetCartDetail(ctx context.Context, userID int64) (*Detail, error) {
	c, err := s.repo.GetCartByUser(ctx, userID)
	if err != nil {
		return nil, ErrFailedGetCart.Wrap(err)
	}
	if c == nil {
		return newDetail(userID, nil, nil), nil
	}

	items, err := s.repo.ListItemDetails(ctx, c.ID)
	if err != nil {
		return nil, ErrFailedGetItems.Wrap(err)
	}
	return newDetail(userID, c, items), nil
}

// AddItem merges quantity into the product's line, creating the line and
// the cart as needed.
func (s *service) AddItem(ctx context.Context, userID, productID int64, quantity int) (*Detail, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "AddItem"),
		zap.Int64("user_id", userID),
		zap.Int64("product_id", productID),
		zap.Int("quantity", quantity),
	)

	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if quantity > MaxQuantity {
		return nil, ErrQuantityTooLarge.With("max", MaxQuantity)
	}

	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, product.ErrFailedGetProduct.Wrap(err)
	}
	if p == nil {
		return nil, ErrProductNotFound.With("product_id", productID)
	}

	c, err := s.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.mergeItem(ctx, c.ID, productID, quantity); err != nil {
		switch {
		case db.IsForeignKeyViolation(err):
			// Product deleted after the lookup above.
			log.Warn("product vanished while adding to cart")
			return nil, ErrProductNotFound.With("product_id", productID)
		case db.IsNumericOutOfRange(err):
			return nil, ErrQuantityTooLarge.With("max", MaxQuantity)
		}
		log.Error("failed to save cart item", zap.Error(err))
		return nil, ErrFailedSaveItem.Wrap(err)
	}

	if err := s.repo.TouchCart(ctx, c.ID); err != nil {
		log.Warn("failed to touch cart", zap.Error(err))
	}

	log.Info("item added to cart")
	return s.GetCartDetail(ctx, userID)
}

// mergeItem increments an existing line or inserts a new one. An insert
// that loses a race to a concurrent insert is retried as an increment.
func (s *service) mergeItem(ctx context.Context, cartID, productID int64, quantity int) error {
	it, err := s.repo.IncrementItem(ctx, cartID, productID, quantity)
	if err != nil {
		return err
	}
	if it != nil {
		return nil
	}

	_, err = s.repo.InsertItem(ctx, cartID, productID, quantity)
	if err == nil || !db.IsUniqueViolation(err) {
		return err
	}

	_, err = s.repo.IncrementItem(ctx, cartID, productID, quantity)
	return err
}

// RemoveItem drops the whole line when quantity is nil or at least the
// line's quantity, otherwise it decrements.
func (s *service) RemoveItem(ctx context.Context, userID, productID int64, quantity *int) (*Detail, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "RemoveItem"),
		zap.Int64("user_id", userID),
		zap.Int64("product_id", productID),
	)

	if quantity != nil && *quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	c, err := s.repo.GetCartByUser(ctx, userID)
	if err != nil {
		return nil, ErrFailedGetCart.Wrap(err)
	}
	if c == nil {
		return nil, ErrCartNotFound
	}

	it, err := s.repo.GetItem(ctx, c.ID, productID)
	if err != nil {
		return nil, ErrFailedGetItems.Wrap(err)
	}
	if it == nil {
		return nil, ErrCartItemNotFound.With("product_id", productID)
	}

	if quantity != nil && *quantity < it.Quantity {
		updated, err := s.repo.DecrementItem(ctx, c.ID, productID, *quantity)
		if err != nil {
			return nil, ErrFailedRemoveItem.Wrap(err)
		}
		if updated == nil {
			// The line shrank concurrently below the requested amount.
			if _, err := s.repo.DeleteItem(ctx, c.ID, productID); err != nil {
				return nil, ErrFailedRemoveItem.Wrap(err)
			}
		}
	} else {
		deleted, err := s.repo.DeleteItem(ctx, c.ID, productID)
		if err != nil {
			return nil, ErrFailedRemoveItem.Wrap(err)
		}
		if !deleted {
			return nil, ErrCartItemNotFound.With("product_id", productID)
		}
	}

	if err := s.repo.TouchCart(ctx, c.ID); err != nil {
		log.Warn("failed to touch cart", zap.Error(err))
	}

	log.Info("item removed from cart")
	return s.GetCartDetail(ctx, userID)
}

// Clear empties the cart. Clearing an already empty cart succeeds.
func (s *service) Clear(ctx context.Context, userID int64) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Clear"),
		zap.Int64("user_id", userID),
	)

	c, err := s.repo.GetCartByUser(ctx, userID)
	if err != nil {
		return ErrFailedGetCart.Wrap(err)
	}
	if c == nil {
		return ErrCartNotFound
	}

	n, err := s.repo.DeleteAllItems(ctx, c.ID)
	if err != nil {
		log.Error("failed to clear cart", zap.Error(err))
		return ErrFailedClearCart.Wrap(err)
	}
	if n > 0 {
		if err := s.repo.TouchCart(ctx, c.ID); err != nil {
			log.Warn("failed to touch cart", zap.Error(err))
		}
	}

	log.Info("cart cleared", zap.Int64("removed", n))
	return nil
}

// RemoveOrdered takes the ordered quantities out of the cart. Units added
// after the order's snapshot was read stay in the cart.
func (s *service) RemoveOrdered(ctx context.Context, userID int64, lines []Line) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "RemoveOrdered"),
		zap.Int64("user_id", userID),
	)

	c, err := s.repo.GetCartByUser(ctx, userID)
	if err != nil {
		return ErrFailedGetCart.Wrap(err)
	}
	if c == nil {
		return ErrCartNotFound
	}
	if len(lines) == 0 {
		return nil
	}

	n, err := s.repo.SubtractItems(ctx, c.ID, lines)
	if err != nil {
		return ErrFailedClearCart.Wrap(err)
	}
	if n > 0 {
		if err := s.repo.TouchCart(ctx, c.ID); err != nil {
			log.Warn("failed to touch cart", zap.Error(err))
		}
	}

	log.Info("ordered items removed from cart", zap.Int64("lines", n))
	return nil
}
