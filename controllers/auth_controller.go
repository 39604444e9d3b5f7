package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"canteen-service/models"
	"canteen-service/utils"
)

func (h *Handler) Register(c *gin.Context) {
	defer recordOperation(c, "register")

	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.Auth.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *Handler) Login(c *gin.Context) {
	defer recordOperation(c, "login")

	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s, err := h.Auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := utils.GenerateToken(s, h.JWTSecret, h.JWTTTL)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not issue token"})
		return
	}
	c.JSON(http.StatusOK, models.LoginResponse{Token: token, UserID: s.UserID, IsAdmin: s.IsAdmin})
}

// Logout gives back whatever the session's cart had reserved. Tokens stay valid until they expire.
func (h *Handler) Logout(c *gin.Context) {
	defer recordOperation(c, "logout")

	s, ok := session(c)
	if !ok {
		return
	}
	if !h.discardCart(c, s) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (h *Handler) discardCart(c *gin.Context, s models.Session) bool {
	if err := h.Orders.DiscardCart(c.Request.Context(), s); err != nil {
		respondError(c, err)
		return false
	}
	return true
}
