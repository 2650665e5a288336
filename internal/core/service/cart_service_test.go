package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/bookstore/internal/core/domain"
)

func TestAddItem_ReservesAvailability(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	who := randomIdentity()
	book := f.createBook(t, "12.00", 5)

	require.NoError(t, f.carts.AddItem(ctx, who, book.ID, 2))
	require.NoError(t, f.carts.AddItem(ctx, who, book.ID, 1))

	assert.Equal(t, 2, f.availability(t, book.ID))

	view, err := f.carts.ViewCart(ctx, who)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 3, view.Items[0].Quantity)
	assert.True(t, decimal.RequireFromString("36").Equal(view.TotalPrice))
}

func TestAddItem_Errors(t *testing.T) {
	tests := []struct {
		name     string
		bookID   func(book *domain.Book) string
		quantity int
		wantErr  error
	}{
		{
			name:     "quantity above availability",
			bookID:   func(b *domain.Book) string { return b.ID },
			quantity: 4,
			wantErr:  ErrQuantityExceedsAvailability,
		},
		{
			name:     "unknown book",
			bookID:   func(*domain.Book) string { return "00000000-0000-0000-0000-000000000000" },
			quantity: 1,
			wantErr:  ErrBookNotFound,
		},
		{
			name:     "zero quantity",
			bookID:   func(b *domain.Book) string { return b.ID },
			quantity: 0,
			wantErr:  ErrValidation,
		},
		{
			name:     "missing book id",
			bookID:   func(*domain.Book) string { return "" },
			quantity: 1,
			wantErr:  ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			ctx := context.Background()
			who := randomIdentity()
			book := f.createBook(t, "5.00", 3)

			err := f.carts.AddItem(ctx, who, tt.bookID(book), tt.quantity)
			require.ErrorIs(t, err, tt.wantErr)

			// no mutation
			assert.Equal(t, 3, f.availability(t, book.ID))
			_, err = f.carts.ViewCart(ctx, who)
			assert.ErrorIs(t, err, ErrCartNotFound)
		})
	}
}

func TestRemoveItem_RestoresAvailability(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	who := randomIdentity()
	book := f.createBook(t, "8.00", 6)

	require.NoError(t, f.carts.AddItem(ctx, who, book.ID, 4))
	require.NoError(t, f.carts.RemoveItem(ctx, who, book.ID, 1))

	assert.Equal(t, 3, f.availability(t, book.ID))
	view, err := f.carts.ViewCart(ctx, who)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 3, view.Items[0].Quantity)

	// zero means one
	require.NoError(t, f.carts.RemoveItem(ctx, who, book.ID, 0))
	assert.Equal(t, 4, f.availability(t, book.ID))

	require.NoError(t, f.carts.RemoveItem(ctx, who, book.ID, 2))
	assert.Equal(t, 6, f.availability(t, book.ID))

	view, err = f.carts.ViewCart(ctx, who)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.True(t, view.TotalPrice.IsZero())
}

func TestRemoveItem_Errors(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	who := randomIdentity()
	book := f.createBook(t, "8.00", 6)
	other := f.createBook(t, "1.00", 6)

	err := f.carts.RemoveItem(ctx, who, book.ID, 1)
	require.ErrorIs(t, err, ErrCartNotFound)

	require.NoError(t, f.carts.AddItem(ctx, who, book.ID, 2))

	err = f.carts.RemoveItem(ctx, who, other.ID, 1)
	require.ErrorIs(t, err, ErrCartItemNotFound)

	err = f.carts.RemoveItem(ctx, who, book.ID, 3)
	require.ErrorIs(t, err, ErrRemoveExceedsCartQuantity)

	err = f.carts.RemoveItem(ctx, who, book.ID, -1)
	require.ErrorIs(t, err, ErrValidation)

	assert.Equal(t, 4, f.availability(t, book.ID))
}

func TestAddThenRemove_RoundTrip(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	who := randomIdentity()
	kept := f.createBook(t, "2.00", 10)
	book := f.createBook(t, "3.00", 10)

	require.NoError(t, f.carts.AddItem(ctx, who, kept.ID, 1))
	before, err := f.carts.ViewCart(ctx, who)
	require.NoError(t, err)

	require.NoError(t, f.carts.AddItem(ctx, who, book.ID, 7))
	require.NoError(t, f.carts.RemoveItem(ctx, who, book.ID, 7))

	after, err := f.carts.ViewCart(ctx, who)
	require.NoError(t, err)
	assert.Equal(t, 10, f.availability(t, book.ID))
	if diff := cmp.Diff(before, after, decimalComparer); diff != "" {
		t.Errorf("cart changed (-before +after):\n%s", diff)
	}
}

func TestViewCart_DeletedBook(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	who := randomIdentity()
	kept := f.createBook(t, "4.00", 10)
	gone := f.createBook(t, "99.00", 10)

	require.NoError(t, f.carts.AddItem(ctx, who, kept.ID, 2))
	require.NoError(t, f.carts.AddItem(ctx, who, gone.ID, 1))
	require.NoError(t, f.catalog.DeleteBook(ctx, gone.ID))

	view, err := f.carts.ViewCart(ctx, who)
	require.NoError(t, err)
	require.Len(t, view.Items, 2)
	assert.Nil(t, view.Items[1].Book)
	assert.True(t, decimal.RequireFromString("8").Equal(view.TotalPrice))

	// removing a line whose book is gone still works
	require.NoError(t, f.carts.RemoveItem(ctx, who, gone.ID, 1))
}

// Scenario from the checkout walkthrough: add, overdraw, remove, empty order.
func TestCheckoutWalkthrough(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	who := randomIdentity()

	title, author, price, avail := "A", "B", decimal.NewFromInt(10), 5
	book, err := f.catalog.CreateBook(ctx, domain.BookFields{Title: &title, Author: &author, Price: &price, Availability: &avail})
	require.NoError(t, err)

	require.NoError(t, f.carts.AddItem(ctx, who, book.ID, 3))
	assert.Equal(t, 2, f.availability(t, book.ID))

	err = f.carts.AddItem(ctx, who, book.ID, 3)
	require.ErrorIs(t, err, ErrQuantityExceedsAvailability)
	assert.Equal(t, 2, f.availability(t, book.ID))

	require.NoError(t, f.carts.RemoveItem(ctx, who, book.ID, 3))
	assert.Equal(t, 5, f.availability(t, book.ID))

	order, err := f.orders.PlaceOrder(ctx, who, "")
	require.NoError(t, err)
	assert.Empty(t, order.Items)
	assert.True(t, order.TotalPrice.IsZero())
}

func TestAddItem_Concurrent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	book := f.createBook(t, "1.00", 20)

	var wg sync.WaitGroup
	var successCount atomic.Int32
	var soldOutCount atomic.Int32

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			err := f.carts.AddItem(ctx, randomIdentity(), book.ID, 1)
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, ErrQuantityExceedsAvailability):
				soldOutCount.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 20, successCount.Load())
	assert.EqualValues(t, 30, soldOutCount.Load())
	assert.Equal(t, 0, f.availability(t, book.ID))
}
