package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rl1809/bookstore/internal/core/domain"
)

const idempotencyHeader = "Idempotency-Key"

type placeOrderResponse struct {
	Message string        `json:"message"`
	Order   *domain.Order `json:"order"`
}

func (h *HTTPHandler) PlaceOrder(c *gin.Context) {
	order, err := h.orders.PlaceOrder(c.Request.Context(), identityFrom(c), c.GetHeader(idempotencyHeader))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, placeOrderResponse{
		Message: "Order placed successfully.",
		Order:   order,
	})
}

func (h *HTTPHandler) GetOrderHistory(c *gin.Context) {
	orders, err := h.orders.GetOrderHistory(c.Request.Context(), identityFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}
