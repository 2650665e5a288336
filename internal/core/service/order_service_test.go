package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/bookstore/internal/core/domain"
)

func TestPlaceOrder_Success(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	who := randomIdentity()
	a := f.createBook(t, "10.00", 5)
	b := f.createBook(t, "2.50", 5)

	require.NoError(t, f.carts.AddItem(ctx, who, a.ID, 2))
	require.NoError(t, f.carts.AddItem(ctx, who, b.ID, 3))

	order, err := f.orders.PlaceOrder(ctx, who, "")
	require.NoError(t, err)

	want := []domain.CartItem{{BookID: a.ID, Quantity: 2}, {BookID: b.ID, Quantity: 3}}
	if diff := cmp.Diff(want, order.Items); diff != "" {
		t.Errorf("order items mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, decimal.RequireFromString("27.5").Equal(order.TotalPrice))
	assert.Equal(t, who.UserID, order.UserID)

	// cart emptied, availability untouched
	view, err := f.carts.ViewCart(ctx, who)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.Equal(t, 3, f.availability(t, a.ID))
	assert.Equal(t, 2, f.availability(t, b.ID))

	assert.Contains(t, f.events.published(), domain.EventOrderPlaced)
}

func TestPlaceOrder_NoCart(t *testing.T) {
	f := newFixture()

	_, err := f.orders.PlaceOrder(context.Background(), randomIdentity(), "")
	require.ErrorIs(t, err, ErrCartNotFound)
	assert.NotContains(t, f.events.published(), domain.EventOrderPlaced)
}

func TestPlaceOrder_DuplicateRequest(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	who := randomIdentity()
	book := f.createBook(t, "1.00", 5)
	require.NoError(t, f.carts.AddItem(ctx, who, book.ID, 1))

	// First request
	_, err := f.orders.PlaceOrder(ctx, who, "req-1")
	require.NoError(t, err)

	// Duplicate request with same key
	_, err = f.orders.PlaceOrder(ctx, who, "req-1")
	require.ErrorIs(t, err, ErrDuplicateRequest)

	history, err := f.orders.GetOrderHistory(ctx, who)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	// same key from another user is independent
	other := randomIdentity()
	require.NoError(t, f.carts.AddItem(ctx, other, book.ID, 1))
	_, err = f.orders.PlaceOrder(ctx, other, "req-1")
	require.NoError(t, err)
}

func TestPlaceOrder_FailureReleasesKey(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	who := randomIdentity()

	_, err := f.orders.PlaceOrder(ctx, who, "req-1")
	require.ErrorIs(t, err, ErrCartNotFound)

	book := f.createBook(t, "1.00", 5)
	require.NoError(t, f.carts.AddItem(ctx, who, book.ID, 1))

	_, err = f.orders.PlaceOrder(ctx, who, "req-1")
	require.NoError(t, err)
}

func TestPlaceOrder_CacheError(t *testing.T) {
	f := newFixture()
	f.cache.err = errors.New("redis down")

	_, err := f.orders.PlaceOrder(context.Background(), randomIdentity(), "req-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDuplicateRequest)
}

func TestPlaceOrder_PublishFailureIgnored(t *testing.T) {
	f := newFixture()
	f.events.err = errors.New("broker down")
	ctx := context.Background()
	who := randomIdentity()
	book := f.createBook(t, "1.00", 5)
	require.NoError(t, f.carts.AddItem(ctx, who, book.ID, 1))

	_, err := f.orders.PlaceOrder(ctx, who, "")
	require.NoError(t, err)
}

func TestGetOrderHistory_NewestFirst(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	who := randomIdentity()
	book := f.createBook(t, "4.00", 10)

	var ids []string
	for i := 1; i <= 3; i++ {
		require.NoError(t, f.carts.AddItem(ctx, who, book.ID, i))
		order, err := f.orders.PlaceOrder(ctx, who, "")
		require.NoError(t, err)
		ids = append([]string{order.ID}, ids...)
		time.Sleep(2 * time.Millisecond)
	}

	history, err := f.orders.GetOrderHistory(ctx, who)
	require.NoError(t, err)

	got := make([]string, 0, len(history))
	for _, o := range history {
		got = append(got, o.ID)
		require.Len(t, o.Items, 1)
		require.NotNil(t, o.Items[0].Book)
		assert.Equal(t, book.ID, o.Items[0].Book.ID)
	}
	assert.Equal(t, ids, got)

	// other users see nothing
	empty, err := f.orders.GetOrderHistory(ctx, randomIdentity())
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestGetOrderHistory_TotalIsFrozen(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	who := randomIdentity()
	book := f.createBook(t, "4.00", 10)

	require.NoError(t, f.carts.AddItem(ctx, who, book.ID, 2))
	placed, err := f.orders.PlaceOrder(ctx, who, "")
	require.NoError(t, err)

	_, err = f.catalog.UpdateBook(ctx, book.ID, domain.BookFields{Price: ptr(decimal.NewFromInt(100))})
	require.NoError(t, err)

	history, err := f.orders.GetOrderHistory(ctx, who)
	require.NoError(t, err)
	require.Len(t, history, 1)

	want := domain.OrderView{
		ID:         placed.ID,
		UserID:     who.UserID,
		TotalPrice: decimal.NewFromInt(8),
		CreatedAt:  placed.CreatedAt,
	}
	if diff := cmp.Diff(want, history[0], decimalComparer, cmpopts.IgnoreFields(domain.OrderView{}, "Items")); diff != "" {
		t.Errorf("order view mismatch (-want +got):\n%s", diff)
	}
}
