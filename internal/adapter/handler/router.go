package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
)

func NewRouter(h *HTTPHandler) *gin.Engine {
	r := gin.New()
	r.Use(RequestLogger(), Recovery())

	r.GET("/health", h.HealthCheck)

	api := r.Group("/api")
	auth := h.RequireAuth()

	books := api.Group("/books")
	books.GET("", h.ListBooks)
	books.POST("", auth, h.CreateBook)
	books.GET("/search", h.SearchBooks)
	books.GET("/:id", h.GetBook)
	books.PUT("/:id", auth, h.UpdateBook)
	books.DELETE("/:id", auth, h.DeleteBook)
	books.POST("/:id/rate-review", auth, h.AddRatingReview)
	books.GET("/:id/rate-review", h.GetRatingsReviews)

	cart := api.Group("/cart", auth)
	cart.POST("/add", h.AddToCart)
	cart.DELETE("/remove/:bookId", h.RemoveFromCart)
	cart.GET("", h.ViewCart)

	orders := api.Group("/orders", auth)
	orders.POST("", h.PlaceOrder)
	orders.GET("", h.GetOrderHistory)

	users := api.Group("/users")
	users.POST("/register", h.Register)
	users.POST("/login", h.Login)
	users.POST("/logout", h.Logout)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, messageResponse{Message: "Not found."})
	})
	return r
}

// WithCORS wraps next with a CORS policy for the given origins.
func WithCORS(next http.Handler, origins []string) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Authorization", "Content-Type", idempotencyHeader},
	}).Handler(next)
}
