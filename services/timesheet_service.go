package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/projectdesk/dto"
	"github.com/projectdesk/metrics"
	"github.com/projectdesk/models"
	"github.com/projectdesk/repositories"
	"github.com/projectdesk/validators"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxTaskNameLength = 100

// TimesheetService manages time entries. Every mutation acts on behalf of an
// explicit user who must be assigned to the target project.
type TimesheetService struct {
	projects   *repositories.ProjectRepository
	timesheets *repositories.TimesheetRepository
	log        *zap.Logger
}

// NewTimesheetService creates a new timesheet service instance
func NewTimesheetService(db *gorm.DB, log *zap.Logger) *TimesheetService {
	return &TimesheetService{
		projects:   repositories.NewProjectRepository(db),
		timesheets: repositories.NewTimesheetRepository(db),
		log:        log.Named("timesheets"),
	}
}

// ListTimesheets returns every timesheet with its project and owner
func (s *TimesheetService) ListTimesheets(ctx context.Context) ([]models.Timesheet, error) {
	timesheets, err := s.timesheets.FindAll(ctx)
	if err != nil {
		return nil, storage("failed to list timesheets", err)
	}
	return timesheets, nil
}

// LogTimesheet records time for the acting user
func (s *TimesheetService) LogTimesheet(ctx context.Context, actorID uint, req dto.TimesheetRequest) (models.Timesheet, error) {
	timesheet, err := s.prepare(ctx, actorID, req)
	if err != nil {
		metrics.ObserveMutation("timesheet", "create", metrics.ResultRejected)
		return models.Timesheet{}, err
	}

	if err := s.timesheets.Create(ctx, &timesheet); err != nil {
		metrics.ObserveMutation("timesheet", "create", metrics.ResultRolledBack)
		return models.Timesheet{}, storage("failed to log timesheet", err)
	}
	metrics.ObserveMutation("timesheet", "create", metrics.ResultCommitted)
	s.log.Info("timesheet logged",
		zap.Uint("timesheet_id", timesheet.ID),
		zap.Uint("user_id", actorID),
		zap.Uint("project_id", timesheet.ProjectID))
	return timesheet, nil
}

// UpdateTimesheet rewrites one of the acting user's own timesheets
func (s *TimesheetService) UpdateTimesheet(ctx context.Context, actorID, id uint, req dto.TimesheetRequest) (models.Timesheet, error) {
	if _, err := s.timesheets.FindByIDAndUser(ctx, id, actorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Timesheet{}, notFound("id", "timesheet %d not found", id)
		}
		return models.Timesheet{}, storage("failed to get timesheet", err)
	}

	timesheet, err := s.prepare(ctx, actorID, req)
	if err != nil {
		metrics.ObserveMutation("timesheet", "update", metrics.ResultRejected)
		return models.Timesheet{}, err
	}
	timesheet.ID = id

	if err := s.timesheets.Update(ctx, &timesheet); err != nil {
		metrics.ObserveMutation("timesheet", "update", metrics.ResultRolledBack)
		return models.Timesheet{}, storage("failed to update timesheet", err)
	}
	metrics.ObserveMutation("timesheet", "update", metrics.ResultCommitted)
	s.log.Info("timesheet updated", zap.Uint("timesheet_id", id), zap.Uint("user_id", actorID))
	return timesheet, nil
}

// DeleteTimesheet removes one of the acting user's own timesheets
func (s *TimesheetService) DeleteTimesheet(ctx context.Context, actorID, id uint) error {
	if _, err := s.timesheets.FindByIDAndUser(ctx, id, actorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("id", "timesheet %d not found", id)
		}
		return storage("failed to get timesheet", err)
	}

	if err := s.timesheets.Delete(ctx, id); err != nil {
		metrics.ObserveMutation("timesheet", "delete", metrics.ResultRolledBack)
		return storage("failed to delete timesheet", err)
	}
	metrics.ObserveMutation("timesheet", "delete", metrics.ResultCommitted)
	s.log.Info("timesheet deleted", zap.Uint("timesheet_id", id), zap.Uint("user_id", actorID))
	return nil
}

// prepare validates the request and checks that the actor works on the project
func (s *TimesheetService) prepare(ctx context.Context, actorID uint, req dto.TimesheetRequest) (models.Timesheet, error) {
	if strings.TrimSpace(req.TaskName) == "" {
		return models.Timesheet{}, malformed("task_name", "task_name is required")
	}
	if utf8.RuneCountInString(req.TaskName) > maxTaskNameLength {
		return models.Timesheet{}, malformed("task_name", "task_name may not be greater than %d characters", maxTaskNameLength)
	}
	date, err := validators.ParseDate(req.Date)
	if err != nil {
		return models.Timesheet{}, malformed("date", "date is not a valid date")
	}
	if req.Hours == nil {
		return models.Timesheet{}, malformed("hours", "hours is required")
	}
	if *req.Hours < 0 {
		return models.Timesheet{}, malformed("hours", "hours must be at least 0")
	}
	if req.ProjectID == 0 {
		return models.Timesheet{}, malformed("project_id", "project_id is required")
	}

	if _, err := s.projects.FindByID(ctx, req.ProjectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Timesheet{}, notFound("project_id", "project %d not found", req.ProjectID)
		}
		return models.Timesheet{}, storage("failed to get project", err)
	}
	assigned, err := s.projects.IsUserAssigned(ctx, req.ProjectID, actorID)
	if err != nil {
		return models.Timesheet{}, storage("failed to check assignment", err)
	}
	if !assigned {
		return models.Timesheet{}, forbidden("user is not assigned to project %d", req.ProjectID)
	}

	return models.Timesheet{
		UserID:    actorID,
		ProjectID: req.ProjectID,
		TaskName:  req.TaskName,
		Date:      truncateToDay(date),
		Hours:     *req.Hours,
	}, nil
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
