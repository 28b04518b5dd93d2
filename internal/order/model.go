package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusShipped   Status = "shipped"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// transitions lists the statuses reachable from each status. Nothing
// leads back to pending; completed and cancelled are final.
var transitions = map[Status][]Status{
	StatusPending: {StatusShipped, StatusCompleted, StatusCancelled},
	StatusShipped: {StatusCompleted},
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusShipped, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Order struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	Total     decimal.Decimal `json:"total"`
	Status    Status          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Items     []Item          `json:"items"`
}

// Item is an order line. ProductID, ProductName and ImageURL are nil once
// the product has been deleted; PriceAtOrder never changes.
type Item struct {
	ID           int64           `json:"id"`
	OrderID      int64           `json:"order_id"`
	ProductID    *int64          `json:"product_id"`
	Quantity     int             `json:"quantity"`
	PriceAtOrder decimal.Decimal `json:"price_at_order"`
	ProductName  *string         `json:"product_name"`
	ImageURL     *string         `json:"image_url"`
	CreatedAt    time.Time       `json:"created_at"`
}

// NewItem is a priced line ready to be persisted.
type NewItem struct {
	ProductID    int64
	Quantity     int
	PriceAtOrder decimal.Decimal
}

// Total sums quantity times price over items.
func Total(items []NewItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.PriceAtOrder.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}
