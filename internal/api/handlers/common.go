package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

func notFound(c *gin.Context, entity string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: entity + " not found"})
}

// NotFound answers unknown routes the way json-server does.
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{})
}
