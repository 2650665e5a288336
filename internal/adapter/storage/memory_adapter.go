package storage

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rl1809/bookstore/internal/core/domain"
	"github.com/rl1809/bookstore/internal/port"
)

// MemoryStore is a process local port.DatabaseRepository for development and
// tests. Transactions run one at a time and roll back to a snapshot on error.
type MemoryStore struct {
	mu   sync.Mutex
	data *memoryData
}

type memoryData struct {
	books  map[string]domain.Book
	carts  map[string]domain.Cart
	orders []domain.Order
	users  map[string]domain.User // by username
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: &memoryData{
			books: make(map[string]domain.Book),
			carts: make(map[string]domain.Cart),
			users: make(map[string]domain.User),
		},
	}
}

func (s *MemoryStore) Books() port.BookRepository   { return memBooks{memRepos{store: s}} }
func (s *MemoryStore) Carts() port.CartRepository   { return memCarts{memRepos{store: s}} }
func (s *MemoryStore) Orders() port.OrderRepository { return memOrders{memRepos{store: s}} }
func (s *MemoryStore) Users() port.UserRepository   { return memUsers{memRepos{store: s}} }

func (s *MemoryStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx port.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	if err := fn(ctx, memRepos{store: s, locked: true}); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

func (d *memoryData) clone() *memoryData {
	out := &memoryData{
		books:  make(map[string]domain.Book, len(d.books)),
		carts:  make(map[string]domain.Cart, len(d.carts)),
		orders: slices.Clone(d.orders),
		users:  make(map[string]domain.User, len(d.users)),
	}
	for id, b := range d.books {
		out.books[id] = cloneBook(b)
	}
	for id, c := range d.carts {
		c.Items = slices.Clone(c.Items)
		out.carts[id] = c
	}
	for name, u := range d.users {
		out.users[name] = u
	}
	return out
}

func cloneBook(b domain.Book) domain.Book {
	b.Ratings = append([]domain.Rating{}, b.Ratings...)
	b.Reviews = append([]domain.Review{}, b.Reviews...)
	return b
}

// memRepos holds the store lock for the duration of each call unless the
// caller already holds it for a transaction.
type memRepos struct {
	store  *MemoryStore
	locked bool
}

func (r memRepos) Books() port.BookRepository   { return memBooks{r} }
func (r memRepos) Carts() port.CartRepository   { return memCarts{r} }
func (r memRepos) Orders() port.OrderRepository { return memOrders{r} }
func (r memRepos) Users() port.UserRepository   { return memUsers{r} }

func (r memRepos) lock() func() {
	if r.locked {
		return func() {}
	}
	r.store.mu.Lock()
	return r.store.mu.Unlock
}

type memBooks struct{ memRepos }

func (r memBooks) ListBooks(_ context.Context, query domain.BookQuery) ([]domain.Book, error) {
	defer r.lock()()

	query = query.Normalize()
	books := r.sorted(query.SortBy)

	start := query.Offset()
	if start >= len(books) {
		return []domain.Book{}, nil
	}
	end := min(start+query.Limit, len(books))
	return books[start:end], nil
}

func (r memBooks) sorted(key domain.SortKey) []domain.Book {
	books := make([]domain.Book, 0, len(r.store.data.books))
	for _, b := range r.store.data.books {
		books = append(books, cloneBook(b))
	}

	slices.SortFunc(books, func(a, b domain.Book) int {
		var c int
		switch key {
		case domain.SortByTitle:
			c = compareFold(a.Title, b.Title)
		case domain.SortByAuthor:
			c = compareFold(a.Author, b.Author)
		case domain.SortByGenre:
			c = compareFold(a.Genre, b.Genre)
		case domain.SortByPrice:
			c = a.Price.Cmp(b.Price)
		case domain.SortByAvailability:
			c = cmp.Compare(a.Availability, b.Availability)
		case domain.SortByCreatedAt:
			c = a.CreatedAt.Compare(b.CreatedAt)
		default:
			c = a.UpdatedAt.Compare(b.UpdatedAt)
		}
		if c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return books
}

func compareFold(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

func (r memBooks) SearchBooks(_ context.Context, text string) ([]domain.Book, error) {
	defer r.lock()()

	needle := strings.ToLower(text)
	out := []domain.Book{}
	for _, b := range r.store.data.books {
		if strings.Contains(strings.ToLower(b.Title), needle) || strings.Contains(strings.ToLower(b.Author), needle) {
			out = append(out, cloneBook(b))
		}
	}
	slices.SortFunc(out, func(a, b domain.Book) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (r memBooks) GetBook(_ context.Context, id string) (*domain.Book, error) {
	defer r.lock()()

	b, ok := r.store.data.books[id]
	if !ok {
		return nil, nil
	}
	b = cloneBook(b)
	return &b, nil
}

func (r memBooks) GetBooks(_ context.Context, ids []string) (map[string]domain.Book, error) {
	defer r.lock()()

	out := make(map[string]domain.Book, len(ids))
	for _, id := range ids {
		if b, ok := r.store.data.books[id]; ok {
			out[id] = cloneBook(b)
		}
	}
	return out, nil
}

func (r memBooks) CreateBook(_ context.Context, book domain.Book) error {
	defer r.lock()()

	if _, ok := r.store.data.books[book.ID]; ok {
		return port.ErrDuplicate
	}
	r.store.data.books[book.ID] = cloneBook(book)
	return nil
}

func (r memBooks) UpdateBook(_ context.Context, book domain.Book) error {
	defer r.lock()()

	cur, ok := r.store.data.books[book.ID]
	if !ok {
		return nil
	}
	cur.Title = book.Title
	cur.Author = book.Author
	cur.Genre = book.Genre
	cur.Price = book.Price
	cur.Availability = book.Availability
	cur.UpdatedAt = book.UpdatedAt
	r.store.data.books[book.ID] = cur
	return nil
}

func (r memBooks) DeleteBook(_ context.Context, id string) (bool, error) {
	defer r.lock()()

	if _, ok := r.store.data.books[id]; !ok {
		return false, nil
	}
	delete(r.store.data.books, id)
	return true, nil
}

func (r memBooks) AddRating(_ context.Context, bookID string, rating domain.Rating) error {
	defer r.lock()()

	if b, ok := r.store.data.books[bookID]; ok {
		b.Ratings = append(b.Ratings, rating)
		r.store.data.books[bookID] = b
	}
	return nil
}

func (r memBooks) AddReview(_ context.Context, bookID string, review domain.Review) error {
	defer r.lock()()

	if b, ok := r.store.data.books[bookID]; ok {
		b.Reviews = append(b.Reviews, review)
		r.store.data.books[bookID] = b
	}
	return nil
}

func (r memBooks) AdjustAvailability(_ context.Context, bookID string, delta int) (bool, error) {
	defer r.lock()()

	b, ok := r.store.data.books[bookID]
	if !ok || b.Availability+delta < 0 {
		return false, nil
	}
	b.Availability += delta
	r.store.data.books[bookID] = b
	return true, nil
}

type memCarts struct{ memRepos }

func (r memCarts) GetCart(_ context.Context, userID string) (*domain.Cart, error) {
	defer r.lock()()

	c, ok := r.store.data.carts[userID]
	if !ok {
		return nil, nil
	}
	c.Items = append([]domain.CartItem{}, c.Items...)
	return &c, nil
}

func (r memCarts) SaveCart(_ context.Context, cart domain.Cart) error {
	defer r.lock()()

	cart.Items = append([]domain.CartItem{}, cart.Items...)
	r.store.data.carts[cart.UserID] = cart
	return nil
}

type memOrders struct{ memRepos }

func (r memOrders) CreateOrder(_ context.Context, order domain.Order) error {
	defer r.lock()()

	order.Items = append([]domain.CartItem{}, order.Items...)
	r.store.data.orders = append(r.store.data.orders, order)
	return nil
}

func (r memOrders) ListOrders(_ context.Context, userID string) ([]domain.Order, error) {
	defer r.lock()()

	out := []domain.Order{}
	for _, o := range r.store.data.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	slices.SortStableFunc(out, func(a, b domain.Order) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out, nil
}

type memUsers struct{ memRepos }

func (r memUsers) CreateUser(_ context.Context, user domain.User) error {
	defer r.lock()()

	if _, ok := r.store.data.users[user.Username]; ok {
		return port.ErrDuplicate
	}
	r.store.data.users[user.Username] = user
	return nil
}

func (r memUsers) GetUserByUsername(_ context.Context, username string) (*domain.User, error) {
	defer r.lock()()

	u, ok := r.store.data.users[username]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// MemoryCache is a process local port.CacheRepository.
type MemoryCache struct {
	mu        sync.Mutex
	keys      map[string]time.Time
	ttl       time.Duration
	now       func() time.Time
	nextSweep time.Time
}

const cacheSweepInterval = time.Minute

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		keys: make(map[string]time.Time),
		ttl:  idempotencyKeyTTL,
		now:  time.Now,
	}
}

func (c *MemoryCache) SetIdempotency(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.sweep(now)
	if exp, ok := c.keys[key]; ok && now.Before(exp) {
		return false, nil
	}
	c.keys[key] = now.Add(c.ttl)
	return true, nil
}

// sweep drops expired keys, at most once per cacheSweepInterval. Callers
// hold c.mu.
func (c *MemoryCache) sweep(now time.Time) {
	if now.Before(c.nextSweep) {
		return
	}
	for k, exp := range c.keys {
		if !now.Before(exp) {
			delete(c.keys, k)
		}
	}
	c.nextSweep = now.Add(cacheSweepInterval)
}

func (c *MemoryCache) ReleaseIdempotency(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.keys, key)
	return nil
}
