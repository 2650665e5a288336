package domain

import "github.com/shopspring/decimal"

type Cart struct {
	UserID string
	Items  []CartItem
}

type CartItem struct {
	BookID   string `json:"bookId"`
	Quantity int    `json:"quantity"`
}

func NewCart(userID string) *Cart {
	return &Cart{UserID: userID, Items: []CartItem{}}
}

// Item returns the line for bookID, or nil.
func (c *Cart) Item(bookID string) *CartItem {
	for i := range c.Items {
		if c.Items[i].BookID == bookID {
			return &c.Items[i]
		}
	}
	return nil
}

// Add merges quantity into the existing line for bookID or appends a new one.
func (c *Cart) Add(bookID string, quantity int) {
	if it := c.Item(bookID); it != nil {
		it.Quantity += quantity
		return
	}
	c.Items = append(c.Items, CartItem{BookID: bookID, Quantity: quantity})
}

// Remove takes quantity off the line for bookID and drops the line at zero.
// Callers check the line exists and holds at least quantity.
func (c *Cart) Remove(bookID string, quantity int) {
	for i := range c.Items {
		if c.Items[i].BookID != bookID {
			continue
		}
		c.Items[i].Quantity -= quantity
		if c.Items[i].Quantity <= 0 {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
		}
		return
	}
}

func (c *Cart) Clear() {
	c.Items = []CartItem{}
}

func (c *Cart) BookIDs() []string {
	ids := make([]string, 0, len(c.Items))
	for _, it := range c.Items {
		ids = append(ids, it.BookID)
	}
	return ids
}

// Snapshot copies the items so later cart edits do not leak into it.
func (c *Cart) Snapshot() []CartItem {
	out := make([]CartItem, len(c.Items))
	copy(out, c.Items)
	return out
}

// Line is a cart or order item with its book resolved. Book is nil when the
// referenced book no longer exists.
type Line struct {
	BookID   string `json:"bookId"`
	Book     *Book  `json:"book"`
	Quantity int    `json:"quantity"`
}

type CartView struct {
	Items      []Line          `json:"cart"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

// ResolveLines pairs items with the books found in books.
func ResolveLines(items []CartItem, books map[string]Book) []Line {
	lines := make([]Line, 0, len(items))
	for _, it := range items {
		l := Line{BookID: it.BookID, Quantity: it.Quantity}
		if b, ok := books[it.BookID]; ok {
			l.Book = &b
		}
		lines = append(lines, l)
	}
	return lines
}

// TotalPrice sums quantity times the current book price. Lines without a book
// count as zero.
func TotalPrice(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		if l.Book == nil {
			continue
		}
		total = total.Add(l.Book.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}
