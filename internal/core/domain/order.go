package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is immutable once placed.
type Order struct {
	ID         string          `json:"id"`
	UserID     string          `json:"userId"`
	Items      []CartItem      `json:"items"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	CreatedAt  time.Time       `json:"createdAt"`
}

func (o Order) BookIDs() []string {
	ids := make([]string, 0, len(o.Items))
	for _, it := range o.Items {
		ids = append(ids, it.BookID)
	}
	return ids
}

// OrderView is an order with its item books resolved for display.
type OrderView struct {
	ID         string          `json:"id"`
	UserID     string          `json:"userId"`
	Items      []Line          `json:"items"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	CreatedAt  time.Time       `json:"createdAt"`
}

func NewOrderView(o Order, books map[string]Book) OrderView {
	return OrderView{
		ID:         o.ID,
		UserID:     o.UserID,
		Items:      ResolveLines(o.Items, books),
		TotalPrice: o.TotalPrice,
		CreatedAt:  o.CreatedAt,
	}
}
