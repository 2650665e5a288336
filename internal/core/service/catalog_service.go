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

type CatalogService struct {
	db     port.DatabaseRepository
	events port.EventPublisher
}

func NewCatalogService(db port.DatabaseRepository, events port.EventPublisher) *CatalogService {
	return &CatalogService{db: db, events: events}
}

func (s *CatalogService) ListBooks(ctx context.Context, query domain.BookQuery) ([]domain.Book, error) {
	books, err := s.db.Books().ListBooks(ctx, query.Normalize())
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

func (s *CatalogService) CreateBook(ctx context.Context, fields domain.BookFields) (*domain.Book, error) {
	if fields.Title == nil || *fields.Title == "" ||
		fields.Author == nil || *fields.Author == "" ||
		fields.Price == nil {
		return nil, fmt.Errorf("%w: title, author and price are required", ErrValidation)
	}
	if err := validateBookFields(fields); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	book := domain.Book{
		ID:           uuid.NewString(),
		Availability: domain.DefaultAvailability,
		Ratings:      []domain.Rating{},
		Reviews:      []domain.Review{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	fields.ApplyTo(&book)

	if err := s.db.Books().CreateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}

	s.publish(ctx, domain.EventBookCreated, book)
	return &book, nil
}

func (s *CatalogService) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	book, err := s.db.Books().GetBook(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}
	if book == nil {
		return nil, ErrBookNotFound
	}
	return book, nil
}

func (s *CatalogService) UpdateBook(ctx context.Context, id string, fields domain.BookFields) (*domain.Book, error) {
	if err := validateBookFields(fields); err != nil {
		return nil, err
	}

	var updated domain.Book
	err := s.db.WithinTx(ctx, func(ctx context.Context, tx port.Repositories) error {
		book, err := tx.Books().GetBook(ctx, id)
		if err != nil {
			return fmt.Errorf("get book: %w", err)
		}
		if book == nil {
			return ErrBookNotFound
		}

		fields.ApplyTo(book)
		book.UpdatedAt = time.Now().UTC()
		if err := tx.Books().UpdateBook(ctx, *book); err != nil {
			return fmt.Errorf("update book: %w", err)
		}
		updated = *book
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, domain.EventBookUpdated, updated)
	return &updated, nil
}

// DeleteBook does not touch carts or orders that still reference the book.
func (s *CatalogService) DeleteBook(ctx context.Context, id string) error {
	ok, err := s.db.Books().DeleteBook(ctx, id)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	if !ok {
		return ErrBookNotFound
	}

	s.publish(ctx, domain.EventBookDeleted, domain.BookDeleted{BookID: id})
	return nil
}

func (s *CatalogService) SearchBooks(ctx context.Context, text string) ([]domain.Book, error) {
	books, err := s.db.Books().SearchBooks(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	return books, nil
}

// AddRatingReview appends a rating and a review independently; either may be nil.
// Rating values are not range checked.
func (s *CatalogService) AddRatingReview(ctx context.Context, who domain.Identity, bookID string, rating *float64, text *string) error {
	return s.db.WithinTx(ctx, func(ctx context.Context, tx port.Repositories) error {
		book, err := tx.Books().GetBook(ctx, bookID)
		if err != nil {
			return fmt.Errorf("get book: %w", err)
		}
		if book == nil {
			return ErrBookNotFound
		}

		if rating != nil {
			if err := tx.Books().AddRating(ctx, bookID, domain.Rating{UserID: who.UserID, Rating: *rating}); err != nil {
				return fmt.Errorf("add rating: %w", err)
			}
		}
		if text != nil && *text != "" {
			if err := tx.Books().AddReview(ctx, bookID, domain.Review{UserID: who.UserID, Text: *text}); err != nil {
				return fmt.Errorf("add review: %w", err)
			}
		}
		return nil
	})
}

func (s *CatalogService) GetRatingsReviews(ctx context.Context, bookID string) ([]domain.Rating, []domain.Review, error) {
	book, err := s.GetBook(ctx, bookID)
	if err != nil {
		return nil, nil, err
	}
	return book.Ratings, book.Reviews, nil
}

func (s *CatalogService) publish(ctx context.Context, eventType string, payload any) {
	if err := s.events.Publish(ctx, eventType, payload); err != nil {
		log.Warn().Err(err).Str("event", eventType).Msg("publish failed")
	}
}

func validateBookFields(f domain.BookFields) error {
	if f.Title != nil && *f.Title == "" {
		return fmt.Errorf("%w: title must not be empty", ErrValidation)
	}
	if f.Author != nil && *f.Author == "" {
		return fmt.Errorf("%w: author must not be empty", ErrValidation)
	}
	if f.Price != nil && f.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	if f.Price != nil && !f.Price.Equal(f.Price.Round(domain.PriceScale)) {
		return fmt.Errorf("%w: price must have at most %d decimal places", ErrValidation, domain.PriceScale)
	}
	if f.Availability != nil && *f.Availability < 0 {
		return fmt.Errorf("%w: availability must not be negative", ErrValidation)
	}
	return nil
}
