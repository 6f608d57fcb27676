package handlers

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/books_quotation/config"
	"github.com/mmdatafocus/books_quotation/utils"
)

func errorStatus(err error) int {
	if errors.Is(err, utils.ErrorRecordNotFound) {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}

// abortWithError logs err and answers with {"message"}: 404 for missing records, 400 otherwise.
func abortWithError(c *gin.Context, funcName string, data any, err error) {
	cid, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
	config.LogError(config.GetLogger(), "handlers", funcName, cid, data, err)
	c.AbortWithStatusJSON(errorStatus(err), gin.H{"message": err.Error()})
}

// describeRule turns a validator tag such as "min=1" into readable text.
func describeRule(rule string) string {
	tag, param, _ := strings.Cut(rule, "=")
	switch tag {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + param
	case "max":
		return "must be at most " + param
	}
	return "failed " + rule
}

// bindingError flattens validator failures into one message.
func bindingError(err error) error {
	fields := utils.ProcessValidationErrors(err)
	if len(fields) == 0 {
		return utils.ValidationError("invalid request body: %v", err)
	}
	parts := make([]string, 0, len(fields))
	for field, rule := range fields {
		parts = append(parts, field+" "+describeRule(rule))
	}
	slices.Sort(parts)
	return utils.ValidationError("invalid request body: %s", strings.Join(parts, ", "))
}
