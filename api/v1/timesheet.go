package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/projectdesk/dto"
	"github.com/projectdesk/services"
)

// TimesheetController handles timesheet endpoints
type TimesheetController struct {
	timesheetService *services.TimesheetService
}

// NewTimesheetController creates a new timesheet controller
func NewTimesheetController(timesheetService *services.TimesheetService) *TimesheetController {
	return &TimesheetController{timesheetService: timesheetService}
}

// RegisterRoutes registers timesheet routes
func (tc *TimesheetController) RegisterRoutes(router *gin.RouterGroup) {
	timesheets := router.Group("/timesheets")
	{
		timesheets.GET("", tc.ListTimesheets)
		timesheets.POST("", tc.LogTimesheet)
		timesheets.PUT("/:id", tc.UpdateTimesheet)
		timesheets.DELETE("/:id", tc.DeleteTimesheet)
	}
}

// ListTimesheets godoc
// @Summary List timesheets
// @Description Get every timesheet
// @Tags timesheets
// @Accept json
// @Produce json
// @Success 200 {array} models.Timesheet
// @Router /timesheets [get]
func (tc *TimesheetController) ListTimesheets(c *gin.Context) {
	timesheets, err := tc.timesheetService.ListTimesheets(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Successfully get timesheets.", timesheets)
}

// LogTimesheet godoc
// @Summary Log a timesheet
// @Description Record time on a project the authenticated user is assigned to
// @Tags timesheets
// @Accept json
// @Produce json
// @Param timesheet body dto.TimesheetRequest true "Timesheet to log"
// @Success 201 {object} models.Timesheet
// @Router /timesheets [post]
func (tc *TimesheetController) LogTimesheet(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	var req dto.TimesheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err)
		return
	}

	timesheet, err := tc.timesheetService.LogTimesheet(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, "Timesheet logged successfully.", timesheet)
}

// UpdateTimesheet godoc
// @Summary Update a timesheet
// @Description Rewrite one of the authenticated user's timesheets
// @Tags timesheets
// @Accept json
// @Produce json
// @Param id path int true "Timesheet ID"
// @Param timesheet body dto.TimesheetRequest true "Timesheet changes"
// @Success 200 {object} models.Timesheet
// @Router /timesheets/{id} [put]
func (tc *TimesheetController) UpdateTimesheet(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req dto.TimesheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err)
		return
	}

	timesheet, err := tc.timesheetService.UpdateTimesheet(c.Request.Context(), userID, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Successfully update timesheet.", timesheet)
}

// DeleteTimesheet godoc
// @Summary Delete a timesheet
// @Description Delete one of the authenticated user's timesheets
// @Tags timesheets
// @Accept json
// @Produce json
// @Param id path int true "Timesheet ID"
// @Success 200 {object} map[string]string
// @Router /timesheets/{id} [delete]
func (tc *TimesheetController) DeleteTimesheet(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := tc.timesheetService.DeleteTimesheet(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Successfully delete timesheet.", nil)
}
