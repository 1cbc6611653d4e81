package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/nebari-dev/rbacadmin/internal/api/handlers"
	"github.com/nebari-dev/rbacadmin/internal/config"
)

// NewRouter creates the mock store: a json-server compatible REST API for
// /users, /roles and /permissions.
func NewRouter(cfg config.MockConfig, db *gorm.DB) *gin.Engine {
	if cfg.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(loggingMiddleware())
	router.Use(corsMiddleware())

	handlers.NewCollectionHandler(db, handlers.Users()).Register(router, "/users")
	handlers.NewCollectionHandler(db, handlers.Roles()).Register(router, "/roles")
	handlers.NewCollectionHandler(db, handlers.Permissions()).Register(router, "/permissions")
	router.GET("/version", handlers.GetVersion)
	router.GET("/audit-log", handlers.ListAudit(db))
	router.NoRoute(handlers.NotFound)

	slog.Info("Mock store router initialized", "mode", cfg.Mode)
	return router
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		slog.Info("HTTP request",
			"method", method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"ip", c.ClientIP(),
		)
	}
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
