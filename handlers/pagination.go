package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

type Pagination struct {
	Skip  int
	Limit int
}

// GetPagination reads skip and limit, falling back to 0 and 10 for missing or invalid values.
func GetPagination(c *gin.Context) Pagination {
	p := Pagination{Skip: 0, Limit: defaultLimit}
	if skip, err := strconv.Atoi(c.Query("skip")); err == nil && skip > 0 {
		p.Skip = skip
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 {
		p.Limit = min(limit, maxLimit)
	}
	return p
}
