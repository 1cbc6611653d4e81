package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/nebari-dev/rbacadmin/internal/audit"
)

// ListAudit returns the change log, optionally filtered by ?action=.
func ListAudit(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := audit.List(c.Request.Context(), db, c.Query("action"))
		if err != nil {
			slog.Error("Failed to list audit log", "error", err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch audit log"})
			return
		}
		c.JSON(http.StatusOK, entries)
	}
}
