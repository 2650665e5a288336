package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (h *HTTPHandler) Register(c *gin.Context) {
	var req credentialsRequest
	if err := decodeJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	if err := h.users.Register(c.Request.Context(), req.Username, req.Password); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, messageResponse{Message: "User registered successfully"})
}

func (h *HTTPHandler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := decodeJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	token, err := h.users.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tokenResponse{Token: token})
}

// Logout is stateless; clients drop the token.
func (h *HTTPHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, messageResponse{Message: "User logged out"})
}
