package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

type Cart struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Item struct {
	ID        int64     `json:"id"`
	CartID    int64     `json:"cart_id"`
	ProductID int64     `json:"product_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ItemDetail is a cart line joined with the product's current data.
type ItemDetail struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	ImageURL  *string         `json:"image_url"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Detail is the read model of a cart. ID is zero when the user has no
// cart row yet.
type Detail struct {
	ID     int64           `json:"id"`
	UserID int64           `json:"user_id"`
	Items  []ItemDetail    `json:"items"`
	Total  decimal.Decimal `json:"total"`
}

func (d *Detail) IsEmpty() bool {
	return d == nil || len(d.Items) == 0
}

// Line is a (product, quantity) pair taken from a cart snapshot.
type Line struct {
	ProductID int64
	Quantity  int
}

func (d *Detail) Lines() []Line {
	if d == nil {
		return nil
	}
	out := make([]Line, 0, len(d.Items))
	for _, it := range d.Items {
		out = append(out, Line{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return out
}

func newDetail(userID int64, c *Cart, items []ItemDetail) *Detail {
	d := &Detail{UserID: userID, Items: items, Total: decimal.Zero}
	if d.Items == nil {
		d.Items = []ItemDetail{}
	}
	if c != nil {
		d.ID = c.ID
	}
	for i := range d.Items {
		it := &d.Items[i]
		it.Subtotal = it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		d.Total = d.Total.Add(it.Subtotal)
	}
	return d
}
