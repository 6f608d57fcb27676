package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/books_quotation/models"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func loginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, "loginHandler", nil, bindingError(err))
			return
		}

		info, err := models.Login(c.Request.Context(), req.Username, req.Password)
		if errors.Is(err, models.ErrInvalidCredentials) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": err.Error()})
			return
		}
		if err != nil {
			abortWithError(c, "loginHandler", req.Username, err)
			return
		}
		c.JSON(http.StatusOK, info)
	}
}
