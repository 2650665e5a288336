package domain

const (
	EventBookCreated = "catalog.book.created"
	EventBookUpdated = "catalog.book.updated"
	EventBookDeleted = "catalog.book.deleted"
	EventOrderPlaced = "order.placed"
)

type BookDeleted struct {
	BookID string `json:"bookId"`
}
