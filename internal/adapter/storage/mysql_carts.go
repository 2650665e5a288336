package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rl1809/bookstore/internal/core/domain"
)

type cartRepo struct {
	*mysqlRepos
}

// GetCart locks the cart row when called inside a transaction so that
// concurrent edits of one cart are applied one after another.
func (r cartRepo) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	query := `SELECT user_id FROM carts WHERE user_id = ?`
	if r.inTx {
		query += ` FOR UPDATE`
	}

	cart := domain.NewCart("")
	err := r.q.QueryRowContext(ctx, query, userID).Scan(&cart.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query cart: %w", err)
	}

	rows, err := r.q.QueryContext(ctx, `
		SELECT book_id, quantity FROM cart_items
		WHERE user_id = ? ORDER BY position`, userID)
	if err != nil {
		return nil, fmt.Errorf("query cart items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it domain.CartItem
		if err := rows.Scan(&it.BookID, &it.Quantity); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		cart.Items = append(cart.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart items: %w", err)
	}
	return cart, nil
}

func (r cartRepo) SaveCart(ctx context.Context, cart domain.Cart) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO carts (user_id, created_at, updated_at)
		VALUES (?, NOW(6), NOW(6))
		ON DUPLICATE KEY UPDATE updated_at = NOW(6)`,
		cart.UserID,
	)
	if err != nil {
		return fmt.Errorf("upsert cart: %w", err)
	}

	if _, err := r.q.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = ?`, cart.UserID); err != nil {
		return fmt.Errorf("clear cart items: %w", err)
	}

	for i, it := range cart.Items {
		_, err := r.q.ExecContext(ctx, `
			INSERT INTO cart_items (user_id, book_id, quantity, position)
			VALUES (?, ?, ?, ?)`,
			cart.UserID, it.BookID, it.Quantity, i,
		)
		if err != nil {
			return fmt.Errorf("insert cart item: %w", err)
		}
	}
	return nil
}
