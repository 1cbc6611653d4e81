package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/nebari-dev/rbacadmin/internal/audit"
)

// Kind maps one REST collection onto its table. M is the wire type and R the
// stored record.
type Kind[M any, R any] struct {
	Entity string
	// Key parses a path id into a primary key value.
	Key    func(raw string) (any, bool)
	Encode func(M) R
	Decode func(R) M
	SetKey func(r *R, key any)
	KeyOf  func(r R) string
	// BeforeCreate, if set, runs on a new record before insert. Without it the
	// database assigns the key.
	BeforeCreate func(r *R)
}

// CollectionHandler serves list, create, get, replace and delete for one Kind.
type CollectionHandler[M any, R any] struct {
	db   *gorm.DB
	kind Kind[M, R]
}

// NewCollectionHandler creates a handler for kind backed by db.
func NewCollectionHandler[M any, R any](db *gorm.DB, kind Kind[M, R]) *CollectionHandler[M, R] {
	return &CollectionHandler[M, R]{db: db, kind: kind}
}

// Register mounts the collection on group under path.
func (h *CollectionHandler[M, R]) Register(group gin.IRoutes, path string) {
	group.GET(path, h.List)
	group.POST(path, h.Create)
	group.GET(path+"/:id", h.Get)
	group.PUT(path+"/:id", h.Replace)
	group.DELETE(path+"/:id", h.Delete)
}

// List returns every record in insertion order.
func (h *CollectionHandler[M, R]) List(c *gin.Context) {
	var records []R
	if err := h.db.WithContext(c.Request.Context()).Order("created_at, id").Find(&records).Error; err != nil {
		slog.Error("Failed to list records", "entity", h.kind.Entity, "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch " + h.kind.Entity + "s"})
		return
	}
	out := make([]M, len(records))
	for i, r := range records {
		out[i] = h.kind.Decode(r)
	}
	c.JSON(http.StatusOK, out)
}

// Create stores the request body and echoes it back with its id.
func (h *CollectionHandler[M, R]) Create(c *gin.Context) {
	var body M
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	record := h.kind.Encode(body)
	if h.kind.BeforeCreate != nil {
		h.kind.BeforeCreate(&record)
	} else {
		h.kind.SetKey(&record, nil)
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&record).Error; err != nil {
		slog.Error("Failed to create record", "entity", h.kind.Entity, "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to create " + h.kind.Entity})
		return
	}
	h.audit(c, audit.ActionCreate, h.kind.KeyOf(record), body)
	c.JSON(http.StatusCreated, h.kind.Decode(record))
}

// Get returns one record.
func (h *CollectionHandler[M, R]) Get(c *gin.Context) {
	record, ok := h.find(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.kind.Decode(record))
}

// Replace overwrites a record with the request body. The path id wins over any
// id in the body.
func (h *CollectionHandler[M, R]) Replace(c *gin.Context) {
	existing, ok := h.find(c)
	if !ok {
		return
	}
	var body M
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	key, _ := h.kind.Key(c.Param("id"))
	record := h.kind.Encode(body)
	h.kind.SetKey(&record, key)
	if err := h.db.WithContext(c.Request.Context()).Model(&existing).Select("*").Omit("created_at").Updates(&record).Error; err != nil {
		slog.Error("Failed to update record", "entity", h.kind.Entity, "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to update " + h.kind.Entity})
		return
	}
	h.audit(c, audit.ActionUpdate, h.kind.KeyOf(record), body)
	c.JSON(http.StatusOK, h.kind.Decode(record))
}

// Delete removes a record.
func (h *CollectionHandler[M, R]) Delete(c *gin.Context) {
	key, ok := h.kind.Key(c.Param("id"))
	if !ok {
		notFound(c, h.kind.Entity)
		return
	}
	result := h.db.WithContext(c.Request.Context()).Delete(new(R), "id = ?", key)
	if result.Error != nil {
		slog.Error("Failed to delete record", "entity", h.kind.Entity, "error", result.Error)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to delete " + h.kind.Entity})
		return
	}
	if result.RowsAffected == 0 {
		notFound(c, h.kind.Entity)
		return
	}
	h.audit(c, audit.ActionDelete, c.Param("id"), nil)
	c.JSON(http.StatusOK, gin.H{})
}

// audit records a change. A failure is logged and does not fail the request.
func (h *CollectionHandler[M, R]) audit(c *gin.Context, action, id string, details interface{}) {
	resource := h.kind.Entity + ":" + id
	if err := audit.LogAction(c.Request.Context(), h.db, action, resource, details); err != nil {
		slog.Warn("Failed to record audit entry", "resource", resource, "error", err)
	}
}

func (h *CollectionHandler[M, R]) find(c *gin.Context) (R, bool) {
	var record R
	key, ok := h.kind.Key(c.Param("id"))
	if !ok {
		notFound(c, h.kind.Entity)
		return record, false
	}
	err := h.db.WithContext(c.Request.Context()).First(&record, "id = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		notFound(c, h.kind.Entity)
		return record, false
	}
	if err != nil {
		slog.Error("Failed to fetch record", "entity", h.kind.Entity, "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch " + h.kind.Entity})
		return record, false
	}
	return record, true
}
