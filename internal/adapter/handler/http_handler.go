package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rl1809/bookstore/internal/core/service"
)

type HTTPHandler struct {
	catalog *service.CatalogService
	carts   *service.CartService
	orders  *service.OrderService
	users   *service.UserService
}

func NewHTTPHandler(
	catalog *service.CatalogService,
	carts *service.CartService,
	orders *service.OrderService,
	users *service.UserService,
) *HTTPHandler {
	return &HTTPHandler{
		catalog: catalog,
		carts:   carts,
		orders:  orders,
		users:   users,
	}
}

func (h *HTTPHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// decodeJSON reads the request body into dst. An empty body leaves dst
// untouched; anything after the first JSON value is malformed.
func decodeJSON(c *gin.Context, dst any) error {
	if c.Request.Body == nil {
		return nil
	}

	dec := json.NewDecoder(c.Request.Body)
	err := dec.Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err == nil {
		if trailing := dec.Decode(&struct{}{}); !errors.Is(trailing, io.EOF) {
			return fmt.Errorf("%w: trailing data after JSON value", errMalformedJSON)
		}
		return nil
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %v", errMalformedJSON, err)
	}
	return fmt.Errorf("%w: %v", service.ErrValidation, err)
}
