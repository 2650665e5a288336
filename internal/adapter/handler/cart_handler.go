package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rl1809/bookstore/internal/core/service"
)

type addToCartRequest struct {
	BookID   string `json:"bookId"`
	Quantity *int   `json:"quantity"`
}

type removeFromCartRequest struct {
	Quantity *int `json:"quantity"`
}

func (h *HTTPHandler) AddToCart(c *gin.Context) {
	var req addToCartRequest
	if err := decodeJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	if err := h.carts.AddItem(c.Request.Context(), identityFrom(c), req.BookID, quantity); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, messageResponse{Message: "Book added to cart successfully."})
}

// RemoveFromCart reads the quantity from the body, falling back to the
// quantity query parameter.
func (h *HTTPHandler) RemoveFromCart(c *gin.Context) {
	var req removeFromCartRequest
	if err := decodeJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	var quantity int
	switch {
	case req.Quantity != nil:
		quantity = *req.Quantity
	case c.Query("quantity") != "":
		q, err := strconv.Atoi(c.Query("quantity"))
		if err != nil {
			respondError(c, fmt.Errorf("%w: quantity must be an integer", service.ErrValidation))
			return
		}
		quantity = q
	}

	if err := h.carts.RemoveItem(c.Request.Context(), identityFrom(c), c.Param("bookId"), quantity); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *HTTPHandler) ViewCart(c *gin.Context) {
	view, err := h.carts.ViewCart(c.Request.Context(), identityFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
