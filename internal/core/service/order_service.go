package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/rl1809/bookstore/internal/core/domain"
	"github.com/rl1809/bookstore/internal/port"
)

type OrderService struct {
	db     port.DatabaseRepository
	cache  port.CacheRepository
	events port.EventPublisher
}

func NewOrderService(db port.DatabaseRepository, cache port.CacheRepository, events port.EventPublisher) *OrderService {
	return &OrderService{
		db:     db,
		cache:  cache,
		events: events,
	}
}

// PlaceOrder turns the cart into an order and empties it in one transaction.
// Availability was already taken when the items were added, so it is left alone.
// An empty cart yields an order with no items and a zero total.
//
// requestID is optional; when set, a second call with the same value fails
// with ErrDuplicateRequest.
func (s *OrderService) PlaceOrder(ctx context.Context, who domain.Identity, requestID string) (*domain.Order, error) {
	var idempotencyKey string
	if requestID != "" {
		idempotencyKey = fmt.Sprintf("order:%s:%s", who.UserID, requestID)

		ok, err := s.cache.SetIdempotency(ctx, idempotencyKey)
		if err != nil {
			return nil, fmt.Errorf("idempotency check failed: %w", err)
		}
		if !ok {
			return nil, ErrDuplicateRequest
		}
	}

	var order domain.Order
	err := s.db.WithinTx(ctx, func(ctx context.Context, tx port.Repositories) error {
		cart, err := tx.Carts().GetCart(ctx, who.UserID)
		if err != nil {
			return fmt.Errorf("get cart: %w", err)
		}
		if cart == nil {
			return ErrCartNotFound
		}

		books, err := tx.Books().GetBooks(ctx, cart.BookIDs())
		if err != nil {
			return fmt.Errorf("get books: %w", err)
		}

		order = domain.Order{
			ID:         uuid.NewString(),
			UserID:     who.UserID,
			Items:      cart.Snapshot(),
			TotalPrice: domain.TotalPrice(domain.ResolveLines(cart.Items, books)),
			CreatedAt:  time.Now().UTC(),
		}
		if err := tx.Orders().CreateOrder(ctx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		cart.Clear()
		if err := tx.Carts().SaveCart(ctx, *cart); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		return nil
	})
	if err != nil {
		if idempotencyKey != "" {
			if releaseErr := s.cache.ReleaseIdempotency(ctx, idempotencyKey); releaseErr != nil {
				log.Error().Err(releaseErr).Str("key", idempotencyKey).Msg("release idempotency key failed")
			}
		}
		return nil, err
	}

	if err := s.events.Publish(ctx, domain.EventOrderPlaced, order); err != nil {
		log.Warn().Err(err).Str("order_id", order.ID).Msg("publish order placed failed")
	}
	return &order, nil
}

// GetOrderHistory returns the orders of the caller, newest first.
func (s *OrderService) GetOrderHistory(ctx context.Context, who domain.Identity) ([]domain.OrderView, error) {
	orders, err := s.db.Orders().ListOrders(ctx, who.UserID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	var ids []string
	for _, o := range orders {
		ids = append(ids, o.BookIDs()...)
	}
	books, err := s.db.Books().GetBooks(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get books: %w", err)
	}

	views := make([]domain.OrderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, domain.NewOrderView(o, books))
	}
	return views, nil
}
