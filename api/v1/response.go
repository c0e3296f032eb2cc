package v1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/projectdesk/middleware"
	"github.com/projectdesk/services"
)

var statusByKind = map[services.Kind]int{
	services.KindMalformed:    http.StatusBadRequest,
	services.KindNotFound:     http.StatusNotFound,
	services.KindTypeMismatch: http.StatusUnprocessableEntity,
	services.KindConflict:     http.StatusConflict,
	services.KindUnauthorized: http.StatusUnauthorized,
	services.KindForbidden:    http.StatusForbidden,
	services.KindStorage:      http.StatusInternalServerError,
}

func respondOK(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, gin.H{
		"status":  "success",
		"message": message,
		"data":    data,
	})
}

// respondError writes a service error. Storage failures hide their cause.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	var svcErr *services.Error
	if !errors.As(err, &svcErr) {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Internal server error",
		})
		return
	}

	status, ok := statusByKind[svcErr.Kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	message := svcErr.Message
	if svcErr.Kind == services.KindStorage {
		message = "Internal server error"
	}

	body := gin.H{
		"status":  "error",
		"message": message,
	}
	if svcErr.Field != "" {
		body["field"] = svcErr.Field
	}
	c.JSON(status, body)
}

func respondBadRequest(c *gin.Context, message string, err error) {
	body := gin.H{
		"status":  "error",
		"message": message,
	}
	if err != nil {
		body["error"] = err.Error()
	}
	c.JSON(http.StatusBadRequest, body)
}

// parseID reads a positive numeric path parameter
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		respondBadRequest(c, "Invalid "+name, nil)
		return 0, false
	}
	return uint(id), true
}

// actorID returns the authenticated user's id set by AuthMiddleware
func actorID(c *gin.Context) (uint, bool) {
	value, exists := c.Get(middleware.ContextUserID)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "User not authenticated"})
		return 0, false
	}
	id, ok := value.(uint)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "User not authenticated"})
		return 0, false
	}
	return id, true
}
