package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/books_quotation/utils"
)

const bearerPrefix = "Bearer "

// AuthMiddleware reads an optional bearer token and puts its user id on the request context.
// A present but invalid token is rejected; requests without one pass through unauthenticated.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.Request.Header.Get("Authorization")
		if auth == "" {
			c.Next()
			return
		}
		if !strings.HasPrefix(auth, bearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
			return
		}
		token := strings.TrimSpace(auth[len(bearerPrefix):])

		validate, err := utils.JwtValidate(token)
		if err != nil || !validate.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
			return
		}
		claim, ok := validate.Claims.(*utils.JwtCustomClaim)
		if !ok || claim.ID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
			return
		}

		// the role is re-read from the session user so role changes apply before the token expires
		c.Request = c.Request.WithContext(utils.SetUserIdInContext(c.Request.Context(), claim.ID))
		c.Next()
	}
}
