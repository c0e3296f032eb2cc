package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// HealthCheck godoc
// @Summary Health check
// @Description Report liveness and database reachability
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func HealthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		state, database := "ok", "ok"
		status := http.StatusOK
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			state, database = "degraded", "unreachable"
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"status":   state,
			"service":  "projectdesk-api",
			"version":  "1.0.0",
			"database": database,
		})
	}
}
