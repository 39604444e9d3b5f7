package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"canteen-service/models"
	"canteen-service/utils"
)

const (
	ContextUserID  = "userID"
	ContextIsAdmin = "isAdmin"
)

// AuthMiddleware requires "Authorization: Bearer <token>" and stores the session in the context.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		session, err := utils.ParseToken(tokenString, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(ContextUserID, session.UserID)
		c.Set(ContextIsAdmin, session.IsAdmin)
		c.Next()
	}
}

// AdminOnly must run after AuthMiddleware.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(ContextIsAdmin) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		c.Next()
	}
}

// SessionFrom reads what AuthMiddleware stored.
func SessionFrom(c *gin.Context) (models.Session, bool) {
	userID, exists := c.Get(ContextUserID)
	if !exists {
		return models.Session{}, false
	}
	id, ok := userID.(int64)
	if !ok {
		return models.Session{}, false
	}
	return models.Session{UserID: id, IsAdmin: c.GetBool(ContextIsAdmin)}, true
}
