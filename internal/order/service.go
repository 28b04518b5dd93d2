package order

import (
	"context"
	"errors"

	"zayana-be/internal/cart"
	"zayana-be/internal/logger"
	"zayana-be/internal/metrics"
	"zayana-be/internal/product"

	"go.uber.org/zap"
)

// CartReader is the part of the cart manager an order needs.
type CartReader interface {
	GetCartDetail(ctx context.Context, userID int64) (*cart.Detail, error)
	RemoveOrdered(ctx context.Context, userID int64, lines []cart.Line) error
}

// ProductFinder returns (nil, nil) for a product that no longer exists.
type ProductFinder interface {
	FindByID(ctx context.Context, id int64) (*product.Product, error)
}

type Service interface {
	CreateOrder(ctx context.Context, userID int64) (*Order, error)
	ListOrders(ctx context.Context, userID int64) ([]*Order, error)
	GetOrder(ctx context.Context, userID, orderID int64) (*Order, error)
	UpdateStatus(ctx context.Context, userID, orderID int64, status Status) (*Order, error)
}

type service struct {
	repo     Repository
	carts    CartReader
	products ProductFinder
	metrics  *metrics.Registry
}

func NewService(repo Repository, carts CartReader, products ProductFinder, m *metrics.Registry) Service {
	return &service{
		repo:     repo,
		carts:    carts,
		products: products,
		metrics:  m,
	}
}

// CreateOrder turns the user's cart into a pending order priced at the
// products' current prices, then takes the ordered lines out of the cart.
// Nothing is written when the cart is empty or one of its products is gone.
func (s *service) CreateOrder(ctx context.Context, userID int64) (*Order, error) {
	timer := metrics.StartTimer()
	defer s.metrics.ObserveSince("order.create", timer)

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateOrder"),
		zap.Int64("user_id", userID),
	)

	log.Info("create order started")

	// 1. Read cart
	detail, err := s.carts.GetCartDetail(ctx, userID)
	if err != nil {
		log.Error("failed to read cart", zap.Error(err))
		return nil, err
	}
	if detail.IsEmpty() {
		log.Info("cart is empty, no order created")
		return nil, ErrEmptyCart
	}

	// 2. Snapshot prices
	items := make([]NewItem, 0, len(detail.Items))
	for _, line := range detail.Items {
		p, err := s.products.FindByID(ctx, line.ProductID)
		if err != nil {
			log.Error("failed to load product",
				zap.Int64("product_id", line.ProductID),
				zap.Error(err),
			)
			return nil, product.ErrFailedGetProduct.Wrap(err)
		}
		if p == nil {
			log.Warn("product in cart no longer exists",
				zap.Int64("product_id", line.ProductID),
			)
			return nil, ErrProductMissing.With("product_id", line.ProductID)
		}

		items = append(items, NewItem{
			ProductID:    p.ID,
			Quantity:     line.Quantity,
			PriceAtOrder: p.Price,
		})
	}

	total := Total(items)

	// 3. Persist order and lines atomically
	orderID, err := s.repo.CreateOrderTx(ctx, userID, total, items)
	if err != nil {
		s.metrics.Inc(metrics.OrdersFailed)
		if errors.Is(err, ErrProductMissing) {
			return nil, err
		}
		log.Error("failed to persist order", zap.Error(err))
		return nil, ErrFailedCreateOrder.Wrap(err)
	}

	log = log.With(zap.Int64("order_id", orderID))
	s.metrics.Inc(metrics.OrdersCreated)

	// 4. Remove the ordered lines from the cart. The order already exists,
	// so a failure here is reported but does not fail the request.
	s.clearCart(ctx, log, userID, detail.Lines())

	// 5. Return the stored order
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil || o == nil {
		log.Warn("failed to re-read created order", zap.Error(err))
		return &Order{
			ID:     orderID,
			UserID: userID,
			Total:  total,
			Status: StatusPending,
			Items:  toItems(orderID, items),
		}, nil
	}

	log.Info("order created",
		zap.String("total", total.StringFixed(2)),
		zap.Int("items", len(items)),
	)
	return o, nil
}

// clearCart retries once. The removal is transactional, so a failed
// attempt leaves the cart untouched.
func (s *service) clearCart(ctx context.Context, log *zap.Logger, userID int64, lines []cart.Line) {
	err := s.carts.RemoveOrdered(ctx, userID, lines)
	if err == nil {
		return
	}
	log.Warn("cart clear failed, retrying", zap.Error(err))

	if err = s.carts.RemoveOrdered(ctx, userID, lines); err != nil {
		s.metrics.Inc(metrics.CartClearFailures)
		log.Error("cart not cleared after order creation", zap.Error(err))
	}
}

func toItems(orderID int64, in []NewItem) []Item {
	out := make([]Item, 0, len(in))
	for _, it := range in {
		pid := it.ProductID
		out = append(out, Item{
			OrderID:      orderID,
			ProductID:    &pid,
			Quantity:     it.Quantity,
			PriceAtOrder: it.PriceAtOrder,
		})
	}
	return out
}

func (s *service) ListOrders(ctx context.Context, userID int64) ([]*Order, error) {
	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, ErrFailedGetOrders.Wrap(err)
	}
	return orders, nil
}

// GetOrder hides orders of other users behind ErrOrderNotFound.
func (s *service) GetOrder(ctx context.Context, userID, orderID int64) (*Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, ErrFailedGetOrders.Wrap(err)
	}
	if o == nil || o.UserID != userID {
		return nil, ErrOrderNotFound.With("order_id", orderID)
	}
	return o, nil
}

// UpdateStatus applies one transition of the order status machine.
func (s *service) UpdateStatus(ctx context.Context, userID, orderID int64, status Status) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateStatus"),
		zap.Int64("order_id", orderID),
		zap.String("status", string(status)),
	)

	if !status.Valid() {
		return nil, ErrInvalidStatus.With("status", string(status))
	}

	o, err := s.GetOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	if !o.Status.CanTransitionTo(status) {
		return nil, ErrInvalidTransition.
			With("from", string(o.Status)).
			With("to", string(status))
	}

	ok, err := s.repo.UpdateStatus(ctx, orderID, o.Status, status)
	if err != nil {
		log.Error("failed to update order status", zap.Error(err))
		return nil, ErrFailedUpdateOrder.Wrap(err)
	}
	if !ok {
		// Status changed between the read and the update.
		return nil, ErrInvalidTransition.
			With("from", string(o.Status)).
			With("to", string(status))
	}

	log.Info("order status updated", zap.String("from", string(o.Status)))
	return s.GetOrder(ctx, userID, orderID)
}
