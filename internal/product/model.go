package product

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	ImageURL    *string         `json:"image_url"`
	CategoryID  *int64          `json:"category_id"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type ListOptions struct {
	Search     string
	CategoryID *int64
	Limit      int
	Page       int
}

// normalize applies the default page size and clamps it to MaxLimit.
func (o ListOptions) normalize() ListOptions {
	if o.Page <= 0 {
		o.Page = 1
	}
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	} else if o.Limit > MaxLimit {
		o.Limit = MaxLimit
	}
	return o
}

func (o ListOptions) offset() int {
	return (o.Page - 1) * o.Limit
}

type ListResult struct {
	Items []*Product `json:"items"`
	Total int64      `json:"total"`
	Page  int        `json:"page"`
	Limit int        `json:"limit"`
}

type CreateInput struct {
	Name        string
	Description *string
	Price       decimal.Decimal
	Stock       int
	ImageURL    *string
	CategoryID  *int64
}

// UpdateInput is a partial update. Nil fields are left untouched.
type UpdateInput struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Stock       *int
	ImageURL    *string
	CategoryID  *int64
}

func (u UpdateInput) IsEmpty() bool {
	return u.Name == nil && u.Description == nil && u.Price == nil &&
		u.Stock == nil && u.ImageURL == nil && u.CategoryID == nil
}
