package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/books_quotation/models"
	"github.com/mmdatafocus/books_quotation/utils"
)

func quotationId(c *gin.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, utils.ValidationError("invalid quotation id %q", c.Param("id"))
	}
	return id, nil
}

func quotationFilter(c *gin.Context) models.QuotationFilter {
	p := GetPagination(c)
	return models.QuotationFilter{
		StartDate: c.Query("startdate"),
		EndDate:   c.Query("enddate"),
		Skip:      p.Skip,
		Limit:     p.Limit,
	}
}

func createQuotationHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewQuotationInvoice
		if err := c.ShouldBindJSON(&input); err != nil {
			abortWithError(c, "createQuotationHandler", nil, bindingError(err))
			return
		}

		quotation, err := models.CreateQuotation(c.Request.Context(), &input)
		if err != nil {
			abortWithError(c, "createQuotationHandler", input, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"createdQuotation": quotation})
	}
}

func listQuotationsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := quotationFilter(c)
		quotations, err := models.PaginateQuotations(c.Request.Context(), filter)
		if err != nil {
			abortWithError(c, "listQuotationsHandler", filter, err)
			return
		}
		c.JSON(http.StatusOK, quotations)
	}
}

func exportQuotationsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := quotationFilter(c)
		f, err := models.ExportQuotationsExcel(c.Request.Context(), filter)
		if err != nil {
			abortWithError(c, "exportQuotationsHandler", filter, err)
			return
		}
		defer f.Close()

		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", "attachment; filename=quotations.xlsx")
		c.Status(http.StatusOK)
		if err := f.Write(c.Writer); err != nil {
			_ = c.Error(err)
		}
	}
}

func getQuotationHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := quotationId(c)
		if err != nil {
			abortWithError(c, "getQuotationHandler", nil, err)
			return
		}
		quotation, err := models.GetQuotation(c.Request.Context(), id)
		if err != nil {
			abortWithError(c, "getQuotationHandler", id, err)
			return
		}
		c.JSON(http.StatusOK, quotation)
	}
}

func updateQuotationHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := quotationId(c)
		if err != nil {
			abortWithError(c, "updateQuotationHandler", nil, err)
			return
		}
		var input models.NewQuotationInvoice
		if err := c.ShouldBindJSON(&input); err != nil {
			abortWithError(c, "updateQuotationHandler", id, bindingError(err))
			return
		}

		quotation, err := models.UpdateQuotation(c.Request.Context(), id, &input)
		if err != nil {
			abortWithError(c, "updateQuotationHandler", input, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"updatedQuotation": quotation})
	}
}

func convertQuotationHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := quotationId(c)
		if err != nil {
			abortWithError(c, "convertQuotationHandler", nil, err)
			return
		}
		// the body is optional
		var input models.NewQuotationConversion
		if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
			abortWithError(c, "convertQuotationHandler", id, bindingError(err))
			return
		}

		sale, err := models.ConvertQuotationToSale(c.Request.Context(), id, input.PaidAmount)
		if err != nil {
			abortWithError(c, "convertQuotationHandler", id, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"createdSale": sale})
	}
}
