package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/projectdesk/dto"
	"github.com/projectdesk/services"
)

// UserController handles user listing and self-service profile endpoints
type UserController struct {
	userService *services.UserService
}

// NewUserController creates a new user controller
func NewUserController(userService *services.UserService) *UserController {
	return &UserController{userService: userService}
}

// RegisterRoutes registers user routes
func (uc *UserController) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.GET("", uc.ListUsers)
		users.GET("/:id", uc.GetUser)
	}

	profile := router.Group("/profile")
	{
		profile.GET("", uc.GetProfile)
		profile.PUT("", uc.UpdateProfile)
		profile.DELETE("", uc.DeleteAccount)
	}
}

// ListUsers godoc
// @Summary List users
// @Description Get every user with projects and timesheets
// @Tags users
// @Accept json
// @Produce json
// @Success 200 {array} models.User
// @Router /users [get]
func (uc *UserController) ListUsers(c *gin.Context) {
	users, err := uc.userService.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Successfully get users.", users)
}

// GetUser godoc
// @Summary Get a user by ID
// @Description Get one user with projects and timesheets
// @Tags users
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.User
// @Router /users/{id} [get]
func (uc *UserController) GetUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	user, err := uc.userService.GetUser(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Successfully get user.", user)
}

// GetProfile godoc
// @Summary Get the current user
// @Description Get the authenticated user with projects and timesheets
// @Tags profile
// @Accept json
// @Produce json
// @Success 200 {object} models.User
// @Router /profile [get]
func (uc *UserController) GetProfile(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	user, err := uc.userService.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Successfully get profile.", user)
}

// UpdateProfile godoc
// @Summary Update the current user
// @Description Change the authenticated user's name and email
// @Tags profile
// @Accept json
// @Produce json
// @Param profile body dto.UpdateProfileRequest true "Profile changes"
// @Success 200 {object} models.User
// @Router /profile [put]
func (uc *UserController) UpdateProfile(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err)
		return
	}

	user, err := uc.userService.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Update profile successful.", user)
}

// DeleteAccount godoc
// @Summary Delete the current user
// @Description Delete the authenticated user and their timesheets
// @Tags profile
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Router /profile [delete]
func (uc *UserController) DeleteAccount(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	if err := uc.userService.DeleteAccount(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Account deleted successfully.", nil)
}
