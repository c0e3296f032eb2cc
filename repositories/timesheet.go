package repositories

import (
	"context"

	"github.com/projectdesk/models"
	"gorm.io/gorm"
)

// TimesheetRepository handles database operations for timesheets
type TimesheetRepository struct {
	db *gorm.DB
}

// NewTimesheetRepository creates a new timesheet repository instance
func NewTimesheetRepository(db *gorm.DB) *TimesheetRepository {
	return &TimesheetRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *TimesheetRepository) WithTx(tx *gorm.DB) *TimesheetRepository {
	return &TimesheetRepository{db: tx}
}

// FindAll retrieves every timesheet with its project, the project's users and the owner
func (r *TimesheetRepository) FindAll(ctx context.Context) ([]models.Timesheet, error) {
	var timesheets []models.Timesheet
	result := r.db.WithContext(ctx).
		Preload("Project").
		Preload("Project.Users").
		Preload("User").
		Order("id").
		Find(&timesheets)
	return timesheets, result.Error
}

// FindByIDAndUser retrieves a timesheet only when it belongs to the user
func (r *TimesheetRepository) FindByIDAndUser(ctx context.Context, id, userID uint) (models.Timesheet, error) {
	var timesheet models.Timesheet
	result := r.db.WithContext(ctx).First(&timesheet, "id = ? AND user_id = ?", id, userID)
	return timesheet, result.Error
}

// Create inserts a new timesheet
func (r *TimesheetRepository) Create(ctx context.Context, timesheet *models.Timesheet) error {
	return r.db.WithContext(ctx).Omit("Project", "User").Create(timesheet).Error
}

// Update writes the editable columns of a timesheet
func (r *TimesheetRepository) Update(ctx context.Context, timesheet *models.Timesheet) error {
	return r.db.WithContext(ctx).Model(&models.Timesheet{ID: timesheet.ID}).
		Select("task_name", "date", "hours", "project_id").
		Updates(models.Timesheet{
			TaskName:  timesheet.TaskName,
			Date:      timesheet.Date,
			Hours:     timesheet.Hours,
			ProjectID: timesheet.ProjectID,
		}).Error
}

// Delete removes a timesheet
func (r *TimesheetRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Timesheet{}, "id = ?", id).Error
}

// DeleteByProjectID removes every timesheet logged against a project
func (r *TimesheetRepository) DeleteByProjectID(ctx context.Context, projectID uint) error {
	return r.db.WithContext(ctx).Where("project_id = ?", projectID).Delete(&models.Timesheet{}).Error
}

// DeleteByProjectAndUser removes a user's timesheets on one project
func (r *TimesheetRepository) DeleteByProjectAndUser(ctx context.Context, projectID, userID uint) error {
	return r.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&models.Timesheet{}).Error
}

// DeleteByUserID removes every timesheet of a user
func (r *TimesheetRepository) DeleteByUserID(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Timesheet{}).Error
}
