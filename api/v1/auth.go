package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/projectdesk/dto"
	"github.com/projectdesk/middleware"
	"github.com/projectdesk/services"
)

// AuthController handles registration, login and password changes
type AuthController struct {
	authService  *services.AuthService
	secureCookie bool
}

// NewAuthController creates a new auth controller. secureCookie restricts the
// access_token cookie to HTTPS.
func NewAuthController(authService *services.AuthService, secureCookie bool) *AuthController {
	return &AuthController{authService: authService, secureCookie: secureCookie}
}

// Register godoc
// @Summary Register a new user
// @Description Create a user account and return a token
// @Tags auth
// @Accept json
// @Produce json
// @Param user body dto.RegisterRequest true "Registration details"
// @Success 201 {object} dto.AuthResponse
// @Router /auth/register [post]
func (ac *AuthController) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err)
		return
	}

	authResponse, err := ac.authService.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, "Successfully create user.", authResponse)
}

// Login godoc
// @Summary Log in
// @Description Authenticate with email and password. The token is returned in the body and set as a cookie.
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.AuthResponse
// @Router /auth/login [post]
func (ac *AuthController) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err)
		return
	}

	authResponse, err := ac.authService.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	// Token is also returned in the body for clients that prefer Bearer auth
	maxAge := int(time.Until(authResponse.ExpiresAt).Seconds())
	c.SetCookie(middleware.AccessTokenCookie, authResponse.Token, maxAge, "/", "", ac.secureCookie, true)

	respondOK(c, http.StatusOK, "Login successful.", authResponse)
}

// ChangePassword godoc
// @Summary Change password
// @Description Replace the authenticated user's password
// @Tags auth
// @Accept json
// @Produce json
// @Param passwords body dto.ChangePasswordRequest true "Current and new password"
// @Success 200 {object} map[string]string
// @Router /auth/change-password [post]
func (ac *AuthController) ChangePassword(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err)
		return
	}

	if err := ac.authService.ChangePassword(c.Request.Context(), userID, req); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Password changed successfully.", nil)
}
