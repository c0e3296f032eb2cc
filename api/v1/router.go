package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/projectdesk/middleware"
	"github.com/projectdesk/services"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Services bundles what the v1 handlers depend on
type Services struct {
	Auth       *services.AuthService
	Projects   *services.ProjectService
	Attributes *services.AttributeService
	Timesheets *services.TimesheetService
	Users      *services.UserService
}

// NewServices wires every service to one database handle
func NewServices(db *gorm.DB, auth *services.AuthService, log *zap.Logger) Services {
	return Services{
		Auth:       auth,
		Projects:   services.NewProjectService(db, log),
		Attributes: services.NewAttributeService(db, log),
		Timesheets: services.NewTimesheetService(db, log),
		Users:      services.NewUserService(db, log),
	}
}

// RegisterRoutes registers all v1 API routes
func RegisterRoutes(router *gin.RouterGroup, db *gorm.DB, svc Services, secureCookie bool) {
	// Health check endpoint
	router.GET("/health", HealthCheck(db))

	authController := NewAuthController(svc.Auth, secureCookie)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", authController.Register)
		authGroup.POST("/login", authController.Login)
		authGroup.POST("/logout", middleware.AuthMiddleware(svc.Auth), authController.Logout)
		authGroup.POST("/change-password", middleware.AuthMiddleware(svc.Auth), authController.ChangePassword)
	}

	authRouter := router.Group("")
	authRouter.Use(middleware.AuthMiddleware(svc.Auth))

	NewProjectController(svc.Projects).RegisterRoutes(authRouter)
	NewAttributeController(svc.Attributes).RegisterRoutes(authRouter)
	NewTimesheetController(svc.Timesheets).RegisterRoutes(authRouter)
	NewUserController(svc.Users).RegisterRoutes(authRouter)
}
