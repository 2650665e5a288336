package service

import (
	"context"
	"fmt"

	"github.com/rl1809/bookstore/internal/core/domain"
	"github.com/rl1809/bookstore/internal/port"
)

// CartService reserves availability when books go into a cart and gives it
// back when they come out. Each operation is one transaction.
type CartService struct {
	db port.DatabaseRepository
}

func NewCartService(db port.DatabaseRepository) *CartService {
	return &CartService{db: db}
}

// AddItem checks quantity against the current availability only; copies this
// user already holds in the cart are not counted again.
func (s *CartService) AddItem(ctx context.Context, who domain.Identity, bookID string, quantity int) error {
	if bookID == "" {
		return fmt.Errorf("%w: bookId is required", ErrValidation)
	}
	if quantity < 1 {
		return fmt.Errorf("%w: quantity must be a positive integer", ErrValidation)
	}

	return s.db.WithinTx(ctx, func(ctx context.Context, tx port.Repositories) error {
		book, err := tx.Books().GetBook(ctx, bookID)
		if err != nil {
			return fmt.Errorf("get book: %w", err)
		}
		if book == nil {
			return ErrBookNotFound
		}
		if quantity > book.Availability {
			return ErrQuantityExceedsAvailability
		}

		cart, err := tx.Carts().GetCart(ctx, who.UserID)
		if err != nil {
			return fmt.Errorf("get cart: %w", err)
		}
		if cart == nil {
			cart = domain.NewCart(who.UserID)
		}
		cart.Add(bookID, quantity)

		if err := tx.Carts().SaveCart(ctx, *cart); err != nil {
			return fmt.Errorf("save cart: %w", err)
		}

		// conditional decrement, guards against a concurrent reservation
		// that landed after the read above
		ok, err := tx.Books().AdjustAvailability(ctx, bookID, -quantity)
		if err != nil {
			return fmt.Errorf("reserve availability: %w", err)
		}
		if !ok {
			return ErrQuantityExceedsAvailability
		}
		return nil
	})
}

// RemoveItem takes quantity copies out of the cart, 1 when quantity is 0.
func (s *CartService) RemoveItem(ctx context.Context, who domain.Identity, bookID string, quantity int) error {
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return fmt.Errorf("%w: quantity must be a positive integer", ErrValidation)
	}

	return s.db.WithinTx(ctx, func(ctx context.Context, tx port.Repositories) error {
		cart, err := tx.Carts().GetCart(ctx, who.UserID)
		if err != nil {
			return fmt.Errorf("get cart: %w", err)
		}
		if cart == nil {
			return ErrCartNotFound
		}

		item := cart.Item(bookID)
		if item == nil {
			return ErrCartItemNotFound
		}
		if item.Quantity < quantity {
			return ErrRemoveExceedsCartQuantity
		}

		cart.Remove(bookID, quantity)
		if err := tx.Carts().SaveCart(ctx, *cart); err != nil {
			return fmt.Errorf("save cart: %w", err)
		}

		// a deleted book has no availability to give back
		if _, err := tx.Books().AdjustAvailability(ctx, bookID, quantity); err != nil {
			return fmt.Errorf("restore availability: %w", err)
		}
		return nil
	})
}

func (s *CartService) ViewCart(ctx context.Context, who domain.Identity) (*domain.CartView, error) {
	cart, err := s.db.Carts().GetCart(ctx, who.UserID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	if cart == nil {
		return nil, ErrCartNotFound
	}

	books, err := s.db.Books().GetBooks(ctx, cart.BookIDs())
	if err != nil {
		return nil, fmt.Errorf("get books: %w", err)
	}

	lines := domain.ResolveLines(cart.Items, books)
	return &domain.CartView{
		Items:      lines,
		TotalPrice: domain.TotalPrice(lines),
	}, nil
}
