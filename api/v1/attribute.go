package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/projectdesk/dto"
	"github.com/projectdesk/middleware"
	"github.com/projectdesk/services"
)

// AttributeController handles attribute-related API endpoints
type AttributeController struct {
	attributeService *services.AttributeService
}

// NewAttributeController creates a new attribute controller
func NewAttributeController(attributeService *services.AttributeService) *AttributeController {
	return &AttributeController{attributeService: attributeService}
}

// RegisterRoutes registers attribute routes. Mutations require the admin role.
func (ac *AttributeController) RegisterRoutes(router *gin.RouterGroup) {
	attributes := router.Group("/attributes")
	{
		attributes.GET("", ac.ListAttributes)
		attributes.GET("/:id", ac.GetAttribute)

		admin := attributes.Group("")
		admin.Use(middleware.AdminMiddleware())
		admin.POST("", ac.CreateAttribute)
		admin.PUT("/:id", ac.UpdateAttribute)
		admin.DELETE("/:id", ac.DeleteAttribute)
	}
}

// ListAttributes godoc
// @Summary List attributes
// @Description Get every attribute with its values
// @Tags attributes
// @Accept json
// @Produce json
// @Success 200 {array} models.Attribute
// @Router /attributes [get]
func (ac *AttributeController) ListAttributes(c *gin.Context) {
	attributes, err := ac.attributeService.ListAttributes(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Successfully get attributes.", attributes)
}

// GetAttribute godoc
// @Summary Get an attribute by ID
// @Description Get one attribute with its values and their projects
// @Tags attributes
// @Accept json
// @Produce json
// @Param id path int true "Attribute ID"
// @Success 200 {object} models.Attribute
// @Router /attributes/{id} [get]
func (ac *AttributeController) GetAttribute(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	attribute, err := ac.attributeService.GetAttribute(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Successfully get attribute.", attribute)
}

// CreateAttribute godoc
// @Summary Create a new attribute
// @Description Declare an attribute with a unique name and a type. Admin only.
// @Tags attributes
// @Accept json
// @Produce json
// @Param attribute body dto.AttributeRequest true "Attribute to create"
// @Success 201 {object} models.Attribute
// @Router /attributes [post]
func (ac *AttributeController) CreateAttribute(c *gin.Context) {
	var req dto.AttributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err)
		return
	}

	attribute, err := ac.attributeService.CreateAttribute(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, "Successfully create attribute.", attribute)
}

// UpdateAttribute godoc
// @Summary Update an attribute
// @Description Rename an attribute or change its type. The type is frozen once a value uses it. Admin only.
// @Tags attributes
// @Accept json
// @Produce json
// @Param id path int true "Attribute ID"
// @Param attribute body dto.AttributeRequest true "Attribute changes"
// @Success 200 {object} models.Attribute
// @Router /attributes/{id} [put]
func (ac *AttributeController) UpdateAttribute(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req dto.AttributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err)
		return
	}

	attribute, err := ac.attributeService.UpdateAttribute(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Attribute updated successfully.", attribute)
}

// DeleteAttribute godoc
// @Summary Delete an attribute
// @Description Delete an attribute no value references. Admin only.
// @Tags attributes
// @Accept json
// @Produce json
// @Param id path int true "Attribute ID"
// @Success 200 {object} map[string]string
// @Router /attributes/{id} [delete]
func (ac *AttributeController) DeleteAttribute(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := ac.attributeService.DeleteAttribute(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Successfully delete attribute.", nil)
}
