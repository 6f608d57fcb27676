package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/books_quotation/middlewares"
	"github.com/mmdatafocus/books_quotation/models"
)

// Route binds a verb and path to a handler behind a capability check.
type Route struct {
	Method     string
	Path       string
	Permission string
	Handler    gin.HandlerFunc
}

func QuotationRoutes() []Route {
	return []Route{
		{http.MethodPost, "", models.PermissionCreateSaleInvoice, createQuotationHandler()},
		{http.MethodGet, "", models.PermissionViewSaleInvoice, listQuotationsHandler()},
		{http.MethodGet, "/export", models.PermissionViewSaleInvoice, exportQuotationsHandler()},
		{http.MethodGet, "/:id", models.PermissionViewSaleInvoice, getQuotationHandler()},
		{http.MethodPut, "/:id", models.PermissionCreateSaleInvoice, updateQuotationHandler()},
		{http.MethodPost, "/:id/convert", models.PermissionCreateSaleInvoice, convertQuotationHandler()},
	}
}

func RegisterRoutes(rg *gin.RouterGroup, routes []Route) {
	for _, route := range routes {
		rg.Handle(route.Method, route.Path, middlewares.Authorize(route.Permission), route.Handler)
	}
}
