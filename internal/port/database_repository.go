package port

import (
	"context"
	"errors"

	"github.com/rl1809/bookstore/internal/core/domain"
)

// ErrDuplicate is returned when a write violates a uniqueness constraint.
var ErrDuplicate = errors.New("duplicate key")

type BookRepository interface {
	// ListBooks returns one page of books in the requested order
	ListBooks(ctx context.Context, query domain.BookQuery) ([]domain.Book, error)

	// SearchBooks matches text case-insensitively against title or author
	SearchBooks(ctx context.Context, text string) ([]domain.Book, error)

	// GetBook returns nil when the book does not exist
	GetBook(ctx context.Context, id string) (*domain.Book, error)

	// GetBooks returns the books that exist among ids, keyed by id
	GetBooks(ctx context.Context, ids []string) (map[string]domain.Book, error)

	CreateBook(ctx context.Context, book domain.Book) error

	// UpdateBook overwrites the scalar fields of an existing book
	UpdateBook(ctx context.Context, book domain.Book) error

	// DeleteBook returns false when nothing was deleted
	DeleteBook(ctx context.Context, id string) (bool, error)

	AddRating(ctx context.Context, bookID string, rating domain.Rating) error
	AddReview(ctx context.Context, bookID string, review domain.Review) error

	// AdjustAvailability atomically adds delta to the availability of a book,
	// returns false if the book is missing or the result would be negative
	AdjustAvailability(ctx context.Context, bookID string, delta int) (bool, error)
}

type CartRepository interface {
	// GetCart returns nil when the user has no cart yet
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)

	// SaveCart creates the cart if needed and replaces its items
	SaveCart(ctx context.Context, cart domain.Cart) error
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, order domain.Order) error

	// ListOrders returns the orders of a user, newest first
	ListOrders(ctx context.Context, userID string) ([]domain.Order, error)
}

type UserRepository interface {
	// CreateUser returns ErrDuplicate when the username is taken
	CreateUser(ctx context.Context, user domain.User) error

	// GetUserByUsername returns nil when no such user exists
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
}

type Repositories interface {
	Books() BookRepository
	Carts() CartRepository
	Orders() OrderRepository
	Users() UserRepository
}

type DatabaseRepository interface {
	Repositories

	// WithinTx runs fn against repositories bound to a single transaction,
	// committing when fn returns nil and rolling back otherwise
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Repositories) error) error

	Close() error
}
