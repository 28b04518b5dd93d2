package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"zayana-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	FindByID(ctx context.Context, id int64) (*Product, error)
	List(ctx context.Context, opts ListOptions) ([]*Product, int64, error)
	Create(ctx context.Context, in CreateInput) (*Product, error)
	Update(ctx context.Context, id int64, in UpdateInput) (*Product, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const productColumns = `id, name, description, price, stock, image_url, category_id, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*Product, error) {
	var p Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.Stock,
		&p.ImageURL,
		&p.CategoryID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByID returns (nil, nil) when the product does not exist.
func (r *repository) FindByID(ctx context.Context, id int64) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "FindByID"),
		zap.Int64("product_id", id),
	)

	row := r.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id)

	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("product not found")
		return nil, nil
	}
	if err != nil {
		log.Error("failed to scan product", zap.Error(err))
		return nil, err
	}
	return p, nil
}

func (r *repository) List(ctx context.Context, opts ListOptions) ([]*Product, int64, error) {
	opts = opts.normalize()

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "List"),
		zap.Int("limit", opts.Limit),
		zap.Int("page", opts.Page),
	)

	start := time.Now()
	log.Info("query started")

	// ---------- where ----------
	where := []string{"1=1"}
	args := []any{}

	if opts.Search != "" {
		args = append(args, "%"+opts.Search+"%")
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
		log = log.With(zap.String("filter_search", opts.Search))
	}
	if opts.CategoryID != nil {
		args = append(args, *opts.CategoryID)
		where = append(where, fmt.Sprintf("category_id = $%d", len(args)))
		log = log.With(zap.Int64("filter_category_id", *opts.CategoryID))
	}

	whereSQL := strings.Join(where, " AND ")

	var total int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM products WHERE `+whereSQL, args...,
	).Scan(&total); err != nil {
		log.Error("failed to count products", zap.Error(err))
		return nil, 0, err
	}

	// ---------- page ----------
	args = append(args, opts.Limit, opts.offset())
	query := fmt.Sprintf(
		`SELECT %s FROM products WHERE %s ORDER BY id ASC LIMIT $%d OFFSET $%d`,
		productColumns, whereSQL, len(args)-1, len(args),
	)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("query failed", zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	items := make([]*Product, 0, opts.Limit)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			log.Error("failed to scan product row", zap.Error(err))
			return nil, 0, err
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		log.Error("rows iteration error", zap.Error(err))
		return nil, 0, err
	}

	log.Info("query success",
		zap.Int("count", len(items)),
		zap.Int64("total", total),
		zap.Duration("duration", time.Since(start)),
	)
	return items, total, nil
}

func (r *repository) Create(ctx context.Context, in CreateInput) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Create"),
	)

	row := r.db.QueryRowContext(ctx, `
		INSERT INTO products (name, description, price, stock, image_url, category_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+productColumns,
		in.Name, in.Description, in.Price, in.Stock, in.ImageURL, in.CategoryID,
	)

	p, err := scanProduct(row)
	if err != nil {
		log.Error("failed to insert product", zap.Error(err))
		return nil, err
	}

	log.Info("product created", zap.Int64("product_id", p.ID))
	return p, nil
}

// Update writes only the whitelisted columns present in in. It returns
// (nil, nil) when the product does not exist.
func (r *repository) Update(ctx context.Context, id int64, in UpdateInput) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Update"),
		zap.Int64("product_id", id),
	)

	sets := make([]string, 0, 7)
	args := make([]any, 0, 7)
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if in.Name != nil {
		set("name", *in.Name)
	}
	if in.Description != nil {
		set("description", *in.Description)
	}
	if in.Price != nil {
		set("price", *in.Price)
	}
	if in.Stock != nil {
		set("stock", *in.Stock)
	}
	if in.ImageURL != nil {
		set("image_url", *in.ImageURL)
	}
	if in.CategoryID != nil {
		set("category_id", *in.CategoryID)
	}
	if len(sets) == 0 {
		return nil, errors.New("no columns to update")
	}
	sets = append(sets, "updated_at = NOW()")

	args = append(args, id)
	query := fmt.Sprintf(
		`UPDATE products SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), productColumns,
	)

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error("failed to update product", zap.Error(err))
		return nil, err
	}

	log.Info("product updated")
	return p, nil
}

func (r *repository) Delete(ctx context.Context, id int64) (bool, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Delete"),
		zap.Int64("product_id", id),
	)

	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete product", zap.Error(err))
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
