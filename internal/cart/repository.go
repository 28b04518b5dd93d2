package cart

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"zayana-be/internal/db"
	"zayana-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	GetCartByUser(ctx context.Context, userID int64) (*Cart, error)
	CreateCart(ctx context.Context, userID int64) (*Cart, error)
	TouchCart(ctx context.Context, cartID int64) error

	GetItem(ctx context.Context, cartID, productID int64) (*Item, error)
	InsertItem(ctx context.Context, cartID, productID int64, quantity int) (*Item, error)
	IncrementItem(ctx context.Context, cartID, productID int64, delta int) (*Item, error)
	DecrementItem(ctx context.Context, cartID, productID int64, delta int) (*Item, error)
	DeleteItem(ctx context.Context, cartID, productID int64) (bool, error)
	DeleteAllItems(ctx context.Context, cartID int64) (int64, error)
	SubtractItems(ctx context.Context, cartID int64, lines []Line) (int64, error)

	ListItemDetails(ctx context.Context, cartID int64) ([]ItemDetail, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const itemColumns = `id, cart_id, product_id, quantity, created_at, updated_at`

func scanItem(row *sql.Row) (*Item, error) {
	var it Item
	err := row.Scan(&it.ID, &it.CartID, &it.ProductID, &it.Quantity, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// GetCartByUser returns (nil, nil) when the user has no cart.
func (r *repository) GetCartByUser(ctx context.Context, userID int64) (*Cart, error) {
	var c Cart
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, created_at, updated_at FROM carts WHERE user_id = $1`, userID,
	).Scan(&c.ID, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		logger.FromCtx(ctx).Error("failed to get cart",
			zap.String("layer", "repository"),
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return nil, err
	}
	return &c, nil
}

// CreateCart inserts the user's cart. A concurrent creator surfaces as a
// unique violation on carts.user_id.
func (r *repository) CreateCart(ctx context.Context, userID int64) (*Cart, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreateCart"),
		zap.Int64("user_id", userID),
	)

	var c Cart
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO carts (user_id) VALUES ($1)
		RETURNING id, user_id, created_at, updated_at`, userID,
	).Scan(&c.ID, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		log.Warn("failed to create cart", zap.Error(err))
		return nil, err
	}

	log.Info("cart created", zap.Int64("cart_id", c.ID))
	return &c, nil
}

func (r *repository) TouchCart(ctx context.Context, cartID int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE carts SET updated_at = NOW() WHERE id = $1`, cartID)
	return err
}

// GetItem returns (nil, nil) when the product is not in the cart.
func (r *repository) GetItem(ctx context.Context, cartID, productID int64) (*Item, error) {
	it, err := scanItem(r.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM cart_items WHERE cart_id = $1 AND product_id = $2`,
		cartID, productID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return it, err
}

func (r *repository) InsertItem(ctx context.Context, cartID, productID int64, quantity int) (*Item, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "InsertItem"),
		zap.Int64("cart_id", cartID),
		zap.Int64("product_id", productID),
	)

	log.Debug("start create cart item")

	it, err := scanItem(r.db.QueryRowContext(ctx, `
		INSERT INTO cart_items (cart_id, product_id, quantity)
		VALUES ($1, $2, $3)
		RETURNING `+itemColumns,
		cartID, productID, quantity))
	if err != nil {
		log.Warn("failed to create cart item", zap.Error(err))
		return nil, err
	}

	log.Info("success create cart item", zap.Int64("cart_item_id", it.ID))
	return it, nil
}

// IncrementItem adds delta to an existing line. It returns (nil, nil)
// when there is no such line.
func (r *repository) IncrementItem(ctx context.Context, cartID, productID int64, delta int) (*Item, error) {
	it, err := scanItem(r.db.QueryRowContext(ctx, `
		UPDATE cart_items
		SET quantity = quantity + $1,
		    updated_at = NOW()
		WHERE cart_id = $2 AND product_id = $3
		RETURNING `+itemColumns,
		delta, cartID, productID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return it, err
}

// DecrementItem subtracts delta only while the line stays positive. It
// returns (nil, nil) when no line qualified.
func (r *repository) DecrementItem(ctx context.Context, cartID, productID int64, delta int) (*Item, error) {
	it, err := scanItem(r.db.QueryRowContext(ctx, `
		UPDATE cart_items
		SET quantity = quantity - $1,
		    updated_at = NOW()
		WHERE cart_id = $2 AND product_id = $3 AND quantity > $1
		RETURNING `+itemColumns,
		delta, cartID, productID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return it, err
}

func (r *repository) DeleteItem(ctx context.Context, cartID, productID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2`, cartID, productID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *repository) DeleteAllItems(ctx context.Context, cartID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// SubtractItems takes each line's quantity out of the cart in one
// transaction. A line holding no more than the subtracted quantity is
// deleted; a larger line keeps the remainder. It returns the number of
// lines touched.
func (r *repository) SubtractItems(ctx context.Context, cartID int64, lines []Line) (int64, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "SubtractItems"),
		zap.Int64("cart_id", cartID),
	)

	var touched int64
	err := db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, l := range lines {
			res, err := tx.ExecContext(ctx, `
				DELETE FROM cart_items
				WHERE cart_id = $1 AND product_id = $2 AND quantity <= $3`,
				cartID, l.ProductID, l.Quantity)
			if err != nil {
				return err
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			if n > 0 {
				touched += n
				continue
			}

			res, err = tx.ExecContext(ctx, `
				UPDATE cart_items
				SET quantity = quantity - $1,
				    updated_at = NOW()
				WHERE cart_id = $2 AND product_id = $3 AND quantity > $1`,
				l.Quantity, cartID, l.ProductID)
			if err != nil {
				return err
			}
			if n, err = res.RowsAffected(); err != nil {
				return err
			}
			touched += n
		}
		return nil
	})
	if err != nil {
		log.Error("failed to subtract cart items", zap.Error(err))
		return 0, err
	}
	return touched, nil
}

// ListItemDetails joins each line with the product's current name, price
// and image, oldest line first.
func (r *repository) ListItemDetails(ctx context.Context, cartID int64) ([]ItemDetail, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ListItemDetails"),
		zap.Int64("cart_id", cartID),
	)

	start := time.Now()
	log.Debug("query started")

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			ci.id,
			ci.product_id,
			ci.quantity,
			p.name,
			p.price,
			p.image_url
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.created_at ASC, ci.id ASC`, cartID)
	if err != nil {
		log.Error("query failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	items := []ItemDetail{}
	for rows.Next() {
		var it ItemDetail
		if err := rows.Scan(&it.ID, &it.ProductID, &it.Quantity, &it.Name, &it.Price, &it.ImageURL); err != nil {
			log.Error("failed to scan cart row", zap.Error(err))
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		log.Error("rows iteration error", zap.Error(err))
		return nil, err
	}

	log.Debug("query success",
		zap.Int("count", len(items)),
		zap.Duration("duration", time.Since(start)),
	)
	return items, nil
}
