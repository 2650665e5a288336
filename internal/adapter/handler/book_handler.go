package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rl1809/bookstore/internal/core/domain"
	"github.com/rl1809/bookstore/internal/core/service"
)

type bookRequest struct {
	Title        *string          `json:"title"`
	Author       *string          `json:"author"`
	Genre        *string          `json:"genre"`
	Price        *decimal.Decimal `json:"price"`
	Availability *int             `json:"availability"`
}

func (r bookRequest) fields() domain.BookFields {
	return domain.BookFields{
		Title:        r.Title,
		Author:       r.Author,
		Genre:        r.Genre,
		Price:        r.Price,
		Availability: r.Availability,
	}
}

type rateReviewRequest struct {
	Rating     *float64 `json:"rating"`
	Text       *string  `json:"text"`
	ReviewText *string  `json:"reviewText"`
}

type ratingsReviewsResponse struct {
	Ratings []domain.Rating `json:"ratings"`
	Reviews []domain.Review `json:"reviews"`
}

// bookID returns the :id path parameter, or false when it cannot name a book.
func bookID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		respondError(c, service.ErrBookNotFound)
		return "", false
	}
	return id, true
}

func (h *HTTPHandler) ListBooks(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	books, err := h.catalog.ListBooks(c.Request.Context(), domain.BookQuery{
		Page:   page,
		Limit:  limit,
		SortBy: domain.SortKey(c.Query("sortBy")),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, books)
}

func (h *HTTPHandler) CreateBook(c *gin.Context) {
	var req bookRequest
	if err := decodeJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	book, err := h.catalog.CreateBook(c.Request.Context(), req.fields())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, book)
}

func (h *HTTPHandler) GetBook(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}

	book, err := h.catalog.GetBook(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

func (h *HTTPHandler) UpdateBook(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}

	var req bookRequest
	if err := decodeJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	book, err := h.catalog.UpdateBook(c.Request.Context(), id, req.fields())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

func (h *HTTPHandler) DeleteBook(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}

	if err := h.catalog.DeleteBook(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *HTTPHandler) SearchBooks(c *gin.Context) {
	books, err := h.catalog.SearchBooks(c.Request.Context(), c.Query("query"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, books)
}

func (h *HTTPHandler) AddRatingReview(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}

	var req rateReviewRequest
	if err := decodeJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}
	text := req.Text
	if text == nil {
		text = req.ReviewText
	}

	if err := h.catalog.AddRatingReview(c.Request.Context(), identityFrom(c), id, req.Rating, text); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "Rating and review added successfully."})
}

func (h *HTTPHandler) GetRatingsReviews(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}

	ratings, reviews, err := h.catalog.GetRatingsReviews(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ratingsReviewsResponse{Ratings: ratings, Reviews: reviews})
}
