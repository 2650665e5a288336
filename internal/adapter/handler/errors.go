package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/rl1809/bookstore/internal/core/service"
)

var errMalformedJSON = errors.New("malformed json")

type messageResponse struct {
	Message string `json:"message"`
}

type errorMapping struct {
	target  error
	status  int
	message string
}

// order matters: first match wins
var errorMappings = []errorMapping{
	{errMalformedJSON, http.StatusBadRequest, "Invalid JSON syntax."},
	{service.ErrBookNotFound, http.StatusNotFound, "Book not found."},
	{service.ErrCartNotFound, http.StatusNotFound, "Cart not found."},
	{service.ErrCartItemNotFound, http.StatusNotFound, "Book not found in cart."},
	{service.ErrQuantityExceedsAvailability, http.StatusBadRequest, "Requested quantity exceeds availability."},
	{service.ErrRemoveExceedsCartQuantity, http.StatusBadRequest, "Requested quantity to remove exceeds cart quantity."},
	{service.ErrUserExists, http.StatusBadRequest, "User already exists"},
	{service.ErrDuplicateRequest, http.StatusConflict, "Duplicate order request."},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
	{service.ErrUnauthenticated, http.StatusUnauthorized, "Authentication failed. Invalid token."},
}

// respondError maps err to a status code and aborts the request with a
// {message} body.
func respondError(c *gin.Context, err error) {
	status, message := classifyError(err)

	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	} else {
		log.Debug().Err(err).Int("status", status).Str("path", c.Request.URL.Path).Msg("request rejected")
	}

	c.AbortWithStatusJSON(status, messageResponse{Message: message})
}

func classifyError(err error) (int, string) {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return http.StatusBadRequest, "Invalid JSON syntax."
	}
	if errors.Is(err, service.ErrValidation) {
		return http.StatusBadRequest, err.Error()
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status, m.message
		}
	}
	return http.StatusInternalServerError, "Internal server error."
}
