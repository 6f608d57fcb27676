package handlers

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/books_quotation/config"
	"github.com/mmdatafocus/books_quotation/middlewares"
	"github.com/sirupsen/logrus"
)

func customNotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"message": "not found"})
}

// customErrorLogger logs only the errors handlers attached to the context.
func customErrorLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			logger.Error(c.Errors.String())
		}
	}
}

// readinessGate answers /healthz itself and 503 everywhere else until the schema is migrated and seeded.
func readinessGate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/healthz" {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		if !config.IsReady() {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"message": "service not ready"})
			return
		}
		c.Next()
	}
}

func corsConfig() cors.Config {
	corsConfig := cors.DefaultConfig()
	// production requires an explicit allowlist in CORS_ALLOWED_ORIGINS
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if config.IsProduction() {
		corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "PUT", "DELETE", "OPTIONS")
	corsConfig.AddAllowHeaders("Origin", "Content-Type", "Authorization", "x-correlation-id")
	corsConfig.AddExposeHeaders("Content-Length", "Content-Disposition", "x-correlation-id")
	corsConfig.AllowCredentials = true
	return corsConfig
}

// NewRouter assembles the middleware chain and every route.
func NewRouter() *gin.Engine {
	logger := config.GetLogger()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.CorrelationMiddleware())
	r.Use(readinessGate())

	// production CORS with no allowlist configured denies every cross-origin request
	if cfg := corsConfig(); cfg.AllowAllOrigins || len(cfg.AllowOrigins) > 0 {
		r.Use(cors.New(cfg))
	}

	// RATE_LIMIT_ENABLED=true with RATE_LIMIT_MAX_REQUESTS per RATE_LIMIT_WINDOW_SECONDS
	if strings.EqualFold(strings.TrimSpace(os.Getenv("RATE_LIMIT_ENABLED")), "true") {
		limit := int64(config.IntFromEnv("RATE_LIMIT_MAX_REQUESTS", 600))
		window := time.Duration(config.IntFromEnv("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second
		r.Use(middlewares.NewRateLimiter(config.GetRedisDB, limit, window).Middleware())
	}

	r.Use(middlewares.AuthMiddleware())
	r.Use(customErrorLogger(logger))

	r.POST("/auth/login", loginHandler())
	RegisterRoutes(r.Group("/quotations"), QuotationRoutes())

	r.NoRoute(customNotFoundHandler)
	return r
}

func splitAndTrim(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
