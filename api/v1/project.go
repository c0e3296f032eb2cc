package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/projectdesk/dto"
	"github.com/projectdesk/filters"
	"github.com/projectdesk/services"
)

// filterParam is the query parameter holding project filters,
// e.g. ?filters[department][LIKE]=Engin
const filterParam = "filters"

// ProjectController handles project-related API endpoints
type ProjectController struct {
	projectService *services.ProjectService
}

// NewProjectController creates a new project controller
func NewProjectController(projectService *services.ProjectService) *ProjectController {
	return &ProjectController{projectService: projectService}
}

// RegisterRoutes registers project routes
func (pc *ProjectController) RegisterRoutes(router *gin.RouterGroup) {
	projects := router.Group("/projects")
	{
		projects.GET("", pc.ListProjects)
		projects.POST("", pc.CreateProject)
		projects.GET("/:id", pc.GetProject)
		projects.PUT("/:id", pc.UpdateProject)
		projects.DELETE("/:id", pc.DeleteProject)
		projects.POST("/:id/assign", pc.AssignUsers)
		projects.DELETE("/:id/users/:userId", pc.UnassignUser)
	}
}

// ListProjects godoc
// @Summary List projects matching attribute and column filters
// @Description Filters come from bracketed query parameters or, for clients that cannot build those, a JSON object in the filters parameter. The two forms cannot be combined.
// @Tags projects
// @Accept json
// @Produce json
// @Param filters[field][operator] query string false "Condition on a native column or attribute, e.g. filters[department][LIKE]=Engin"
// @Param filters query string false "JSON object of field to operator to value"
// @Success 200 {array} dto.ProjectResponse
// @Router /projects [get]
func (pc *ProjectController) ListProjects(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		respondBadRequest(c, "Invalid filters", err)
		return
	}

	projects, err := pc.projectService.ListProjects(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Successfully get projects.", projects)
}

func parseFilter(c *gin.Context) (filters.Filter, error) {
	return filters.FromRequest(c.Request.URL.Query(), filterParam)
}

// GetProject godoc
// @Summary Get a project by ID
// @Description Get a project with its attribute values and assigned users
// @Tags projects
// @Accept json
// @Produce json
// @Param id path int true "Project ID"
// @Success 200 {object} dto.ProjectResponse
// @Router /projects/{id} [get]
func (pc *ProjectController) GetProject(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	project, err := pc.projectService.GetProject(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Successfully get project.", project)
}

// CreateProject godoc
// @Summary Create a new project
// @Description Create a project and its attribute values in one transaction
// @Tags projects
// @Accept json
// @Produce json
// @Param project body dto.CreateProjectRequest true "Project to create"
// @Success 201 {object} dto.ProjectResponse
// @Router /projects [post]
func (pc *ProjectController) CreateProject(c *gin.Context) {
	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err)
		return
	}

	project, err := pc.projectService.CreateProject(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, "Successfully create project.", project)
}

// UpdateProject godoc
// @Summary Update a project
// @Description Rewrite name and status, remove values, then add or rewrite attribute values in one transaction
// @Tags projects
// @Accept json
// @Produce json
// @Param id path int true "Project ID"
// @Param project body dto.UpdateProjectRequest true "Project changes"
// @Success 200 {object} dto.ProjectResponse
// @Router /projects/{id} [put]
func (pc *ProjectController) UpdateProject(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err)
		return
	}

	project, err := pc.projectService.UpdateProject(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Successfully update project.", project)
}

// DeleteProject godoc
// @Summary Delete a project
// @Description Delete a project with its timesheets and attribute values. Projects with assigned users are kept.
// @Tags projects
// @Accept json
// @Produce json
// @Param id path int true "Project ID"
// @Success 200 {object} map[string]string
// @Router /projects/{id} [delete]
func (pc *ProjectController) DeleteProject(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := pc.projectService.DeleteProject(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Successfully delete project.", nil)
}

// AssignUsers godoc
// @Summary Assign users to a project
// @Description Link users to a project, skipping users already assigned
// @Tags projects
// @Accept json
// @Produce json
// @Param id path int true "Project ID"
// @Param users body dto.AssignUsersRequest true "User IDs"
// @Success 200 {object} map[string]string
// @Router /projects/{id}/assign [post]
func (pc *ProjectController) AssignUsers(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req dto.AssignUsersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err)
		return
	}

	if err := pc.projectService.AssignUsers(c.Request.Context(), id, req); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Successfully assigned project.", nil)
}

// UnassignUser godoc
// @Summary Remove a user from a project
// @Description Unassign a user and delete their timesheets on the project
// @Tags projects
// @Accept json
// @Produce json
// @Param id path int true "Project ID"
// @Param userId path int true "User ID"
// @Success 200 {object} map[string]string
// @Router /projects/{id}/users/{userId} [delete]
func (pc *ProjectController) UnassignUser(c *gin.Context) {
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}
	userID, ok := parseID(c, "userId")
	if !ok {
		return
	}

	if err := pc.projectService.UnassignUser(c.Request.Context(), projectID, userID); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "User unassigned from project and timesheets deleted.", nil)
}
