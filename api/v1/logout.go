package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/projectdesk/dto"
	"github.com/projectdesk/middleware"
)

// Logout godoc
// @Summary Log out
// @Description Revoke the presented token and clear the cookie
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Router /auth/logout [post]
func (ac *AuthController) Logout(c *gin.Context) {
	value, exists := c.Get(middleware.ContextClaims)
	claims, ok := value.(*dto.TokenClaims)
	if !exists || !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"status":  "error",
			"message": "User not authenticated",
		})
		return
	}

	if err := ac.authService.Logout(c.Request.Context(), claims); err != nil {
		respondError(c, err)
		return
	}

	// Clear the cookie by setting max-age to -1 (expired)
	c.SetCookie(middleware.AccessTokenCookie, "", -1, "/", "", ac.secureCookie, true)

	respondOK(c, http.StatusOK, "Logout successful.", nil)
}
