package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/books_quotation/middlewares"
	"github.com/mmdatafocus/books_quotation/models"
	"github.com/mmdatafocus/books_quotation/testutil"
	"github.com/mmdatafocus/books_quotation/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middlewares.CorrelationMiddleware(), middlewares.AuthMiddleware())
	r.GET("/view", middlewares.Authorize(models.PermissionViewSaleInvoice), func(c *gin.Context) {
		userId, _ := utils.GetUserIdFromContext(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"user_id": userId})
	})
	return r
}

func get(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/view", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthorize(t *testing.T) {
	db := testutil.SetupTestDB(t)
	viewer := testutil.SeedRole(t, db, "Viewer", models.PermissionViewSaleInvoice)
	clerk := testutil.SeedRole(t, db, "Clerk", models.PermissionCreateSaleInvoice)
	allowed := testutil.SeedUser(t, db, viewer.ID)
	denied := testutil.SeedUser(t, db, clerk.ID)
	r := newRouter()

	w := get(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"message":"unauthorized"}`, w.Body.String())

	w = get(r, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = get(r, testutil.Token(t, denied))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), models.PermissionViewSaleInvoice)

	w = get(r, testutil.Token(t, allowed))
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("x-correlation-id"))
}

func TestAuthorize_DisabledUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	role := testutil.SeedRole(t, db, "Viewer", models.PermissionViewSaleInvoice)
	user := testutil.SeedUser(t, db, role.ID)
	require.NoError(t, db.Model(user).Update("IsActive", false).Error)

	w := get(newRouter(), testutil.Token(t, user))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCorrelationMiddleware_KeepsIncomingId(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middlewares.CorrelationMiddleware())
	r.GET("/", func(c *gin.Context) {
		cid, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
		c.String(http.StatusOK, cid)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("x-correlation-id", "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Body.String())
}
