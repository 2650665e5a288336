package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rl1809/bookstore/internal/core/domain"
)

const identityKey = "identity"

func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		var ev *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			ev = log.Error()
		case status >= http.StatusBadRequest:
			ev = log.Warn()
		default:
			ev = log.Info()
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("http request")
	}
}

// Recovery turns panics into the generic 500 body.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error().Interface("panic", recovered).Str("path", c.Request.URL.Path).Msg("handler panicked")
		c.AbortWithStatusJSON(http.StatusInternalServerError, messageResponse{Message: "Internal server error."})
	})
}

// RequireAuth resolves the bearer token into a domain.Identity stored on the
// gin context.
func (h *HTTPHandler) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, messageResponse{
				Message: "Authentication failed. No token provided.",
			})
			return
		}

		who, err := h.users.Authenticate(token)
		if err != nil {
			respondError(c, err)
			return
		}

		c.Set(identityKey, who)
		c.Next()
	}
}

func identityFrom(c *gin.Context) domain.Identity {
	v, _ := c.Get(identityKey)
	who, _ := v.(domain.Identity)
	return who
}

// bearerToken returns the credentials after the auth scheme, whatever its
// casing.
func bearerToken(header string) string {
	_, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found {
		return ""
	}
	return strings.TrimSpace(token)
}
