package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rl1809/bookstore/internal/core/domain"
)

const bookColumns = `id, title, author, genre, price, availability, created_at, updated_at`

var sortColumns = map[domain.SortKey]string{
	domain.SortByTitle:        "title",
	domain.SortByAuthor:       "author",
	domain.SortByPrice:        "price",
	domain.SortByGenre:        "genre",
	domain.SortByAvailability: "availability",
	domain.SortByCreatedAt:    "created_at",
	domain.SortByUpdatedAt:    "updated_at",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type bookRepo struct {
	*mysqlRepos
}

func (r bookRepo) ListBooks(ctx context.Context, query domain.BookQuery) ([]domain.Book, error) {
	query = query.Normalize()
	column := sortColumns[query.SortBy]

	rows, err := r.q.QueryContext(ctx, `
		SELECT `+bookColumns+`
		FROM books
		ORDER BY `+column+` ASC, id ASC
		LIMIT ? OFFSET ?`,
		query.Limit, query.Offset(),
	)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	return r.collectBooks(ctx, rows)
}

func (r bookRepo) SearchBooks(ctx context.Context, text string) ([]domain.Book, error) {
	pattern := "%" + likeEscaper.Replace(strings.ToLower(text)) + "%"

	rows, err := r.q.QueryContext(ctx, `
		SELECT `+bookColumns+`
		FROM books
		WHERE LOWER(title) LIKE ? OR LOWER(author) LIKE ?
		ORDER BY id ASC`,
		pattern, pattern,
	)
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	return r.collectBooks(ctx, rows)
}

func (r bookRepo) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	if !r.inTx && r.cache != nil {
		if b, ok := r.cache.Get(id); ok {
			return &b, nil
		}
	}

	var b domain.Book
	err := r.q.QueryRowContext(ctx, `
		SELECT `+bookColumns+`
		FROM books WHERE id = ?`, id,
	).Scan(&b.ID, &b.Title, &b.Author, &b.Genre, &b.Price, &b.Availability, &b.CreatedAt, &b.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query book: %w", err)
	}

	books := []domain.Book{b}
	if err := r.loadFeedback(ctx, books); err != nil {
		return nil, err
	}

	if !r.inTx && r.cache != nil {
		r.cache.Add(id, books[0])
	}
	return &books[0], nil
}

func (r bookRepo) GetBooks(ctx context.Context, ids []string) (map[string]domain.Book, error) {
	out := make(map[string]domain.Book, len(ids))
	ids = uniqueStrings(ids)
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := r.q.QueryContext(ctx, `
		SELECT `+bookColumns+`
		FROM books WHERE id IN (`+placeholders(len(ids))+`)`,
		stringArgs(ids)...,
	)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	books, err := r.collectBooks(ctx, rows)
	if err != nil {
		return nil, err
	}

	for _, b := range books {
		out[b.ID] = b
	}
	return out, nil
}

func (r bookRepo) CreateBook(ctx context.Context, book domain.Book) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO books (`+bookColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		book.ID, book.Title, book.Author, book.Genre, book.Price, book.Availability,
		book.CreatedAt, book.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert book: %w", err)
	}
	return nil
}

func (r bookRepo) UpdateBook(ctx context.Context, book domain.Book) error {
	_, err := r.q.ExecContext(ctx, `
		UPDATE books
		SET title = ?, author = ?, genre = ?, price = ?, availability = ?, updated_at = ?
		WHERE id = ?`,
		book.Title, book.Author, book.Genre, book.Price, book.Availability, book.UpdatedAt,
		book.ID,
	)
	if err != nil {
		return fmt.Errorf("update book: %w", err)
	}
	r.invalidate(book.ID)
	return nil
}

func (r bookRepo) DeleteBook(ctx context.Context, id string) (bool, error) {
	result, err := r.q.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete book: %w", err)
	}
	r.invalidate(id)

	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

func (r bookRepo) AddRating(ctx context.Context, bookID string, rating domain.Rating) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO book_ratings (book_id, user_id, rating) VALUES (?, ?, ?)`,
		bookID, rating.UserID, rating.Rating,
	)
	if err != nil {
		return fmt.Errorf("insert rating: %w", err)
	}
	r.invalidate(bookID)
	return nil
}

func (r bookRepo) AddReview(ctx context.Context, bookID string, review domain.Review) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO book_reviews (book_id, user_id, text) VALUES (?, ?, ?)`,
		bookID, review.UserID, review.Text,
	)
	if err != nil {
		return fmt.Errorf("insert review: %w", err)
	}
	r.invalidate(bookID)
	return nil
}

// AdjustAvailability leaves updated_at alone; reservations are not edits.
func (r bookRepo) AdjustAvailability(ctx context.Context, bookID string, delta int) (bool, error) {
	result, err := r.q.ExecContext(ctx, `
		UPDATE books
		SET availability = availability + ?
		WHERE id = ? AND availability + ? >= 0`,
		delta, bookID, delta,
	)
	if err != nil {
		return false, fmt.Errorf("update availability: %w", err)
	}
	r.invalidate(bookID)

	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

func (r bookRepo) collectBooks(ctx context.Context, rows *sql.Rows) ([]domain.Book, error) {
	defer rows.Close()

	books := []domain.Book{}
	for rows.Next() {
		var b domain.Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.Genre, &b.Price, &b.Availability, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate books: %w", err)
	}
	rows.Close()

	if err := r.loadFeedback(ctx, books); err != nil {
		return nil, err
	}
	return books, nil
}

// loadFeedback fills ratings and reviews for books in two queries.
func (r bookRepo) loadFeedback(ctx context.Context, books []domain.Book) error {
	if len(books) == 0 {
		return nil
	}

	index := make(map[string]int, len(books))
	ids := make([]string, 0, len(books))
	for i := range books {
		books[i].Ratings = []domain.Rating{}
		books[i].Reviews = []domain.Review{}
		index[books[i].ID] = i
		ids = append(ids, books[i].ID)
	}
	in := placeholders(len(ids))

	rows, err := r.q.QueryContext(ctx, `
		SELECT book_id, user_id, rating FROM book_ratings
		WHERE book_id IN (`+in+`) ORDER BY id`, stringArgs(ids)...)
	if err != nil {
		return fmt.Errorf("query ratings: %w", err)
	}
	for rows.Next() {
		var bookID string
		var rt domain.Rating
		if err := rows.Scan(&bookID, &rt.UserID, &rt.Rating); err != nil {
			rows.Close()
			return fmt.Errorf("scan rating: %w", err)
		}
		i := index[bookID]
		books[i].Ratings = append(books[i].Ratings, rt)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("iterate ratings: %w", err)
	}
	rows.Close()

	rows, err = r.q.QueryContext(ctx, `
		SELECT book_id, user_id, text FROM book_reviews
		WHERE book_id IN (`+in+`) ORDER BY id`, stringArgs(ids)...)
	if err != nil {
		return fmt.Errorf("query reviews: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var bookID string
		var rv domain.Review
		if err := rows.Scan(&bookID, &rv.UserID, &rv.Text); err != nil {
			return fmt.Errorf("scan review: %w", err)
		}
		i := index[bookID]
		books[i].Reviews = append(books[i].Reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate reviews: %w", err)
	}
	return nil
}
