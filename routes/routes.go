package routes

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	v1 "github.com/projectdesk/api/v1"
	"github.com/projectdesk/config"
	"github.com/projectdesk/middleware"
	"github.com/projectdesk/services"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SetupRouter builds the HTTP engine with middleware, metrics and the v1 API
func SetupRouter(cfg *config.Config, db *gorm.DB, log *zap.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log.Named("http")))
	router.Use(cors.New(corsConfig(cfg.Server.AllowedOrigins)))

	// Public routes
	router.GET("/", v1.HealthCheck(db))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := services.NewAuthService(db, cfg.Auth, log)
	api := router.Group("/api/v1")
	v1.RegisterRoutes(api, db, v1.NewServices(db, auth, log), cfg.IsProduction())

	return router
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		// credentials cannot be combined with a literal wildcard origin
		c.AllowOriginFunc = func(string) bool { return true }
	} else {
		c.AllowOrigins = origins
	}
	return c
}
