package order

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"zayana-be/internal/db"
	"zayana-be/internal/logger"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Repository interface {
	CreateOrderTx(ctx context.Context, userID int64, total decimal.Decimal, items []NewItem) (int64, error)
	GetByID(ctx context.Context, orderID int64) (*Order, error)
	ListByUser(ctx context.Context, userID int64) ([]*Order, error)
	UpdateStatus(ctx context.Context, orderID int64, from, to Status) (bool, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// CreateOrderTx inserts the order and all its lines in one transaction
// and returns the new order id.
func (r *repository) CreateOrderTx(
	ctx context.Context,
	userID int64,
	total decimal.Decimal,
	items []NewItem,
) (int64, error) {

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreateOrderTx"),
		zap.Int64("user_id", userID),
		zap.Int("items", len(items)),
	)

	start := time.Now()
	var orderID int64

	err := db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		// 1. Insert order
		if err := tx.QueryRowContext(ctx, `
			INSERT INTO orders (user_id, total, status)
			VALUES ($1, $2, $3)
			RETURNING id`,
			userID, total, StatusPending,
		).Scan(&orderID); err != nil {
			log.Error("failed to insert order", zap.Error(err))
			return err
		}

		// 2. Insert order items
		for _, it := range items {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO order_items (order_id, product_id, quantity, price_at_order)
				VALUES ($1, $2, $3, $4)`,
				orderID, it.ProductID, it.Quantity, it.PriceAtOrder,
			); err != nil {
				if db.IsForeignKeyViolation(err) {
					log.Warn("product deleted before order commit",
						zap.Int64("product_id", it.ProductID),
					)
					return ErrProductMissing.With("product_id", it.ProductID)
				}
				log.Error("failed to insert order item",
					zap.Int64("product_id", it.ProductID),
					zap.Error(err),
				)
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	log.Info("order transaction committed",
		zap.Int64("order_id", orderID),
		zap.Duration("duration", time.Since(start)),
	)
	return orderID, nil
}

const orderColumns = `id, user_id, total, status, created_at, updated_at`

func scanOrder(row interface{ Scan(...any) error }) (*Order, error) {
	var o Order
	if err := row.Scan(&o.ID, &o.UserID, &o.Total, &o.Status, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	o.Items = []Item{}
	return &o, nil
}

// GetByID returns the order with its lines, or (nil, nil) when absent.
func (r *repository) GetByID(ctx context.Context, orderID int64) (*Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, orderID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		logger.FromCtx(ctx).Error("failed to get order",
			zap.String("layer", "repository"),
			zap.Int64("order_id", orderID),
			zap.Error(err),
		)
		return nil, err
	}

	byOrder, err := r.loadItems(ctx, []int64{o.ID})
	if err != nil {
		return nil, err
	}
	if items, ok := byOrder[o.ID]; ok {
		o.Items = items
	}
	return o, nil
}

// ListByUser returns the user's orders newest first, each with its lines.
func (r *repository) ListByUser(ctx context.Context, userID int64) ([]*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ListByUser"),
		zap.Int64("user_id", userID),
	)

	start := time.Now()
	log.Info("query started")

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		log.Error("query failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	orders := []*Order{}
	ids := []int64{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			log.Error("failed to scan order row", zap.Error(err))
			return nil, err
		}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		log.Error("rows iteration error", zap.Error(err))
		return nil, err
	}

	if len(ids) > 0 {
		byOrder, err := r.loadItems(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, o := range orders {
			if items, ok := byOrder[o.ID]; ok {
				o.Items = items
			}
		}
	}

	log.Info("query success",
		zap.Int("count", len(orders)),
		zap.Duration("duration", time.Since(start)),
	)
	return orders, nil
}

// loadItems fetches the lines of several orders in one query. Product
// name and image come from the live products table and are NULL for
// deleted products.
func (r *repository) loadItems(ctx context.Context, orderIDs []int64) (map[int64][]Item, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			oi.id,
			oi.order_id,
			oi.product_id,
			oi.quantity,
			oi.price_at_order,
			oi.created_at,
			p.name,
			p.image_url
		FROM order_items oi
		LEFT JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ANY($1)
		ORDER BY oi.order_id, oi.id`, pq.Array(orderIDs))
	if err != nil {
		logger.FromCtx(ctx).Error("failed to load order items", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64][]Item, len(orderIDs))
	for rows.Next() {
		var it Item
		if err := rows.Scan(
			&it.ID,
			&it.OrderID,
			&it.ProductID,
			&it.Quantity,
			&it.PriceAtOrder,
			&it.CreatedAt,
			&it.ProductName,
			&it.ImageURL,
		); err != nil {
			return nil, err
		}
		out[it.OrderID] = append(out[it.OrderID], it)
	}
	return out, rows.Err()
}

// UpdateStatus moves the order from one status to another. It reports
// false when the order is absent or no longer in from.
func (r *repository) UpdateStatus(ctx context.Context, orderID int64, from, to Status) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3`,
		to, orderID, from)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
