package storage

import (
	"context"
	"fmt"

	"github.com/rl1809/bookstore/internal/core/domain"
)

type orderRepo struct {
	*mysqlRepos
}

func (r orderRepo) CreateOrder(ctx context.Context, order domain.Order) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, total_price, created_at)
		VALUES (?, ?, ?, ?)`,
		order.ID, order.UserID, order.TotalPrice, order.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i, it := range order.Items {
		_, err := r.q.ExecContext(ctx, `
			INSERT INTO order_items (order_id, position, book_id, quantity)
			VALUES (?, ?, ?, ?)`,
			order.ID, i, it.BookID, it.Quantity,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}

func (r orderRepo) ListOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, user_id, total_price, created_at
		FROM orders WHERE user_id = ?
		ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}

	orders := []domain.Order{}
	index := make(map[string]int)
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.TotalPrice, &o.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan order: %w", err)
		}
		o.Items = []domain.CartItem{}
		index[o.ID] = len(orders)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	rows.Close()

	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}

	itemRows, err := r.q.QueryContext(ctx, `
		SELECT order_id, book_id, quantity FROM order_items
		WHERE order_id IN (`+placeholders(len(ids))+`)
		ORDER BY order_id, position`, stringArgs(ids)...)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var orderID string
		var it domain.CartItem
		if err := itemRows.Scan(&orderID, &it.BookID, &it.Quantity); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		i := index[orderID]
		orders[i].Items = append(orders[i].Items, it)
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}
	return orders, nil
}
