package middlewares

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mmdatafocus/books_quotation/config"
	"github.com/mmdatafocus/books_quotation/models"
	"github.com/mmdatafocus/books_quotation/utils"
)

// CorrelationMiddleware attaches x-correlation-id (or a fresh uuid) to the request context and response.
func CorrelationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		cid := c.GetHeader("x-correlation-id")
		if cid == "" {
			cid = uuid.NewString()
		}
		c.Header("x-correlation-id", cid)
		c.Request = c.Request.WithContext(utils.SetCorrelationIdInContext(c.Request.Context(), cid))
		c.Next()
	}
}

// Authorize lets the request through only when the session user is active and its role holds permission.
func Authorize(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		logger := config.GetLogger()

		userId, ok := utils.GetUserIdFromContext(ctx)
		if !ok || userId == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
			return
		}

		db := config.GetDB()
		user, err := models.GetSessionUser(ctx, db, userId)
		if err != nil {
			if errors.Is(err, utils.ErrorRecordNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
				return
			}
			config.LogError(logger, "middlewares", "Authorize", "GetSessionUser", userId, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
			return
		}
		if !utils.DereferencePtr(user.IsActive) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "user is disabled"})
			return
		}

		permissions, err := models.GetRolePermissions(ctx, db, user.RoleId)
		if err != nil && !errors.Is(err, utils.ErrorRecordNotFound) {
			config.LogError(logger, "middlewares", "Authorize", "GetRolePermissions", user.RoleId, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
			return
		}
		if !permissions[permission] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "permission denied: " + permission})
			return
		}
		c.Next()
	}
}
