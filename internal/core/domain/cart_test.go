package domain

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCart_AddMergesLines(t *testing.T) {
	c := NewCart(gofakeit.UUID())
	bookID := gofakeit.UUID()

	c.Add(bookID, 2)
	c.Add(bookID, 3)

	require.Len(t, c.Items, 1)
	assert.Equal(t, 5, c.Items[0].Quantity)
}

func TestCart_Remove(t *testing.T) {
	tests := []struct {
		name      string
		start     int
		remove    int
		wantLines int
		wantQty   int
	}{
		{name: "partial removal keeps line", start: 5, remove: 2, wantLines: 1, wantQty: 3},
		{name: "removing everything drops line", start: 3, remove: 3, wantLines: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCart(gofakeit.UUID())
			bookID := gofakeit.UUID()
			c.Add(bookID, tt.start)

			c.Remove(bookID, tt.remove)

			require.Len(t, c.Items, tt.wantLines)
			if tt.wantLines > 0 {
				assert.Equal(t, tt.wantQty, c.Item(bookID).Quantity)
			}
		})
	}
}

func TestCart_SnapshotIsDetached(t *testing.T) {
	c := NewCart(gofakeit.UUID())
	c.Add("a", 1)

	snap := c.Snapshot()
	c.Item("a").Quantity = 9
	c.Clear()

	assert.Equal(t, []CartItem{{BookID: "a", Quantity: 1}}, snap)
	assert.Empty(t, c.Items)
}

func TestTotalPrice_SkipsMissingBooks(t *testing.T) {
	books := map[string]Book{
		"a": {ID: "a", Price: decimal.RequireFromString("10.50")},
		"b": {ID: "b", Price: decimal.RequireFromString("3.25")},
	}
	items := []CartItem{
		{BookID: "a", Quantity: 2},
		{BookID: "b", Quantity: 1},
		{BookID: "gone", Quantity: 4},
	}

	lines := ResolveLines(items, books)

	require.Len(t, lines, 3)
	assert.Nil(t, lines[2].Book)
	assert.True(t, decimal.RequireFromString("24.25").Equal(TotalPrice(lines)))
}

func TestBookQuery_Normalize(t *testing.T) {
	q := BookQuery{Page: 0, Limit: -3, SortBy: "bogus"}.Normalize()

	assert.Equal(t, DefaultPage, q.Page)
	assert.Equal(t, DefaultPageSize, q.Limit)
	assert.Equal(t, SortByUpdatedAt, q.SortBy)
	assert.Equal(t, 0, q.Offset())

	q = BookQuery{Page: 3, Limit: 500, SortBy: SortByPrice}.Normalize()
	assert.Equal(t, 500, q.Limit)
	assert.Equal(t, SortByPrice, q.SortBy)
	assert.Equal(t, 1000, q.Offset())
}
