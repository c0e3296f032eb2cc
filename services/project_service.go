package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/projectdesk/dto"
	"github.com/projectdesk/filters"
	"github.com/projectdesk/metrics"
	"github.com/projectdesk/models"
	"github.com/projectdesk/repositories"
	"github.com/projectdesk/validators"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxProjectNameLength = 255

// ProjectService handles business logic for projects and their attribute values
type ProjectService struct {
	db         *gorm.DB
	projects   *repositories.ProjectRepository
	attributes *repositories.AttributeRepository
	values     *repositories.AttributeValueRepository
	timesheets *repositories.TimesheetRepository
	users      *repositories.UserRepository
	guard      IntegrityGuard
	log        *zap.Logger
}

// NewProjectService creates a new project service instance
func NewProjectService(db *gorm.DB, log *zap.Logger) *ProjectService {
	return &ProjectService{
		db:         db,
		projects:   repositories.NewProjectRepository(db),
		attributes: repositories.NewAttributeRepository(db),
		values:     repositories.NewAttributeValueRepository(db),
		timesheets: repositories.NewTimesheetRepository(db),
		users:      repositories.NewUserRepository(db),
		log:        log.Named("projects"),
	}
}

// ListProjects returns every project matching the filter
func (s *ProjectService) ListProjects(ctx context.Context, filter filters.Filter) ([]dto.ProjectResponse, error) {
	predicate, err := filters.Compile(ctx, filter, s.attributes)
	if err != nil {
		return nil, storage("failed to compile filter", err)
	}
	if !filter.IsEmpty() {
		where, args := predicate.SQL()
		s.log.Debug("listing filtered projects", zap.String("where", where), zap.Int("args", len(args)))
	}

	projects, err := s.projects.FindAll(ctx, predicate)
	if err != nil {
		return nil, storage("failed to list projects", err)
	}

	response := make([]dto.ProjectResponse, 0, len(projects))
	for _, project := range projects {
		response = append(response, dto.NewProjectResponse(project))
	}
	return response, nil
}

// GetProject returns one project with its attributes and assigned users
func (s *ProjectService) GetProject(ctx context.Context, id uint) (dto.ProjectResponse, error) {
	project, err := s.projects.FindWithDetails(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProjectResponse{}, notFound("id", "project %d not found", id)
		}
		return dto.ProjectResponse{}, storage("failed to get project", err)
	}
	return dto.NewProjectResponse(project), nil
}

// CreateProject inserts a project and its attribute values as one unit.
// A single invalid value discards the whole request.
func (s *ProjectService) CreateProject(ctx context.Context, req dto.CreateProjectRequest) (dto.ProjectResponse, error) {
	if err := s.validateProject(ctx, req.Name, req.Status, 0); err != nil {
		s.reject("create", err)
		return dto.ProjectResponse{}, err
	}
	if err := validateAttributeEntries(req.Attributes); err != nil {
		s.reject("create", err)
		return dto.ProjectResponse{}, err
	}

	project := models.Project{Name: req.Name, Status: models.ProjectStatus(req.Status)}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.projects.WithTx(tx).Create(ctx, &project); err != nil {
			return err
		}
		for i, entry := range req.Attributes {
			attribute, err := s.resolveEntry(ctx, tx, i, entry)
			if err != nil {
				return err
			}
			row := models.AttributeValue{AttributeID: attribute.ID, ProjectID: project.ID, Value: *entry.Value}
			if err := s.values.WithTx(tx).Create(ctx, &row); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		err = s.rollback("create", err, zap.String("name", req.Name))
		return dto.ProjectResponse{}, err
	}

	metrics.ObserveMutation("project", "create", metrics.ResultCommitted)
	s.log.Info("project created", zap.Uint("project_id", project.ID), zap.Int("attributes", len(req.Attributes)))
	return s.GetProject(ctx, project.ID)
}

// UpdateProject rewrites the native columns, then applies removals, then
// applies the attribute entries, all in one unit. Removals run first so a
// request may drop a value and add a fresh one for the same attribute.
func (s *ProjectService) UpdateProject(ctx context.Context, id uint, req dto.UpdateProjectRequest) (dto.ProjectResponse, error) {
	project, err := s.projects.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProjectResponse{}, notFound("id", "project %d not found", id)
		}
		return dto.ProjectResponse{}, storage("failed to get project", err)
	}

	if err := s.validateProject(ctx, req.Name, req.Status, project.ID); err != nil {
		s.reject("update", err)
		return dto.ProjectResponse{}, err
	}
	if err := validateAttributeEntries(req.Attributes); err != nil {
		s.reject("update", err)
		return dto.ProjectResponse{}, err
	}
	if err := s.validateValueReferences(ctx, project.ID, req); err != nil {
		s.reject("update", err)
		return dto.ProjectResponse{}, err
	}

	project.Name = req.Name
	project.Status = models.ProjectStatus(req.Status)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.projects.WithTx(tx).Update(ctx, &project); err != nil {
			return err
		}
		if err := s.values.WithTx(tx).DeleteByIDs(ctx, req.RemovedAttributes); err != nil {
			return err
		}
		for i, entry := range req.Attributes {
			attribute, err := s.resolveEntry(ctx, tx, i, entry)
			if err != nil {
				return err
			}
			row := models.AttributeValue{AttributeID: attribute.ID, ProjectID: project.ID, Value: *entry.Value}
			if entry.AttributeValueID == nil {
				if err := s.values.WithTx(tx).Create(ctx, &row); err != nil {
					return err
				}
				continue
			}
			row.ID = *entry.AttributeValueID
			if err := s.values.WithTx(tx).Update(ctx, &row); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return notFound(fmt.Sprintf("attributes[%d].attribute_value_id", i),
						"attribute value %d not found on this project", row.ID)
				}
				return err
			}
		}
		return nil
	})
	if err != nil {
		err = s.rollback("update", err, zap.Uint("project_id", project.ID))
		return dto.ProjectResponse{}, err
	}

	metrics.ObserveMutation("project", "update", metrics.ResultCommitted)
	s.log.Info("project updated",
		zap.Uint("project_id", project.ID),
		zap.Int("attributes", len(req.Attributes)),
		zap.Int("removed", len(req.RemovedAttributes)))
	return s.GetProject(ctx, project.ID)
}

// DeleteProject removes a project with its timesheets and attribute values.
// Projects with assigned users are kept.
func (s *ProjectService) DeleteProject(ctx context.Context, id uint) error {
	if _, err := s.projects.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("id", "project %d not found", id)
		}
		return storage("failed to get project", err)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := s.guard.CanDeleteProject(ctx, tx, id)
		if err != nil {
			return err
		}
		if !ok {
			return conflict("users", "cannot delete project, users are still assigned")
		}
		if err := s.timesheets.WithTx(tx).DeleteByProjectID(ctx, id); err != nil {
			return err
		}
		if err := s.values.WithTx(tx).DeleteByProjectID(ctx, id); err != nil {
			return err
		}
		return s.projects.WithTx(tx).Delete(ctx, id)
	})
	if err != nil {
		if errors.Is(err, ErrConflict) {
			s.reject("delete", err)
			return err
		}
		return s.rollback("delete", err, zap.Uint("project_id", id))
	}

	metrics.ObserveMutation("project", "delete", metrics.ResultCommitted)
	s.log.Info("project deleted", zap.Uint("project_id", id))
	return nil
}

// AssignUsers links users to a project. Users already assigned are left alone.
func (s *ProjectService) AssignUsers(ctx context.Context, projectID uint, req dto.AssignUsersRequest) error {
	if len(req.UserIDs) == 0 {
		return malformed("user_ids", "at least one user id is required")
	}
	if _, err := s.projects.FindByID(ctx, projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("id", "project %d not found", projectID)
		}
		return storage("failed to get project", err)
	}

	ids := uniqueIDs(req.UserIDs)
	existing, err := s.users.ExistingIDs(ctx, ids)
	if err != nil {
		return storage("failed to look up users", err)
	}
	for i, id := range req.UserIDs {
		if !existing[id] {
			return notFound(fmt.Sprintf("user_ids[%d]", i), "user %d not found", id)
		}
	}

	if err := s.projects.AssignUsers(ctx, projectID, ids); err != nil {
		metrics.ObserveMutation("assignment", "create", metrics.ResultRolledBack)
		return storage("failed to assign users", err)
	}
	metrics.ObserveMutation("assignment", "create", metrics.ResultCommitted)
	s.log.Info("users assigned", zap.Uint("project_id", projectID), zap.Uints("user_ids", ids))
	return nil
}

// UnassignUser removes a user from a project together with the user's
// timesheets on that project.
func (s *ProjectService) UnassignUser(ctx context.Context, projectID, userID uint) error {
	if _, err := s.projects.FindByID(ctx, projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("project_id", "project %d not found", projectID)
		}
		return storage("failed to get project", err)
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("user_id", "user %d not found", userID)
		}
		return storage("failed to get user", err)
	}

	assigned, err := s.projects.IsUserAssigned(ctx, projectID, userID)
	if err != nil {
		return storage("failed to check assignment", err)
	}
	if !assigned {
		return malformed("user_id", "user is not assigned to this project")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.timesheets.WithTx(tx).DeleteByProjectAndUser(ctx, projectID, userID); err != nil {
			return err
		}
		return s.projects.WithTx(tx).UnassignUser(ctx, projectID, userID)
	})
	if err != nil {
		metrics.ObserveMutation("assignment", "delete", metrics.ResultRolledBack)
		s.log.Error("unassign rolled back", zap.Uint("project_id", projectID), zap.Uint("user_id", userID), zap.Error(err))
		return storage("failed to unassign user", err)
	}
	metrics.ObserveMutation("assignment", "delete", metrics.ResultCommitted)
	s.log.Info("user unassigned", zap.Uint("project_id", projectID), zap.Uint("user_id", userID))
	return nil
}

func (s *ProjectService) validateProject(ctx context.Context, name, status string, excludeID uint) error {
	if strings.TrimSpace(name) == "" {
		return malformed("name", "name is required")
	}
	if utf8.RuneCountInString(name) > maxProjectNameLength {
		return malformed("name", "name may not be greater than %d characters", maxProjectNameLength)
	}
	if status == "" {
		return malformed("status", "status is required")
	}
	if !models.ProjectStatus(status).Valid() {
		return malformed("status", "status must be one of active, inactive, completed")
	}

	taken, err := s.projects.ExistsByName(ctx, name, excludeID)
	if err != nil {
		return storage("failed to check project name", err)
	}
	if taken {
		return malformed("name", "name has already been taken")
	}
	return nil
}

// validateAttributeEntries checks request shape only; it never touches storage
func validateAttributeEntries(entries []dto.AttributeInput) error {
	seenAttributes := make(map[uint]bool, len(entries))
	seenValues := make(map[uint]bool, len(entries))
	for i, entry := range entries {
		if entry.AttributeID == 0 {
			return malformed(fmt.Sprintf("attributes[%d].attribute_id", i), "attribute_id is required")
		}
		if seenAttributes[entry.AttributeID] {
			return malformed(fmt.Sprintf("attributes[%d].attribute_id", i), "attribute_id %d appears more than once", entry.AttributeID)
		}
		seenAttributes[entry.AttributeID] = true

		if entry.Value == nil || *entry.Value == "" {
			return malformed(fmt.Sprintf("attributes[%d].value", i), "value is required")
		}

		if entry.AttributeValueID != nil {
			if seenValues[*entry.AttributeValueID] {
				return malformed(fmt.Sprintf("attributes[%d].attribute_value_id", i), "attribute_value_id %d appears more than once", *entry.AttributeValueID)
			}
			seenValues[*entry.AttributeValueID] = true
		}
	}
	return nil
}

// validateValueReferences checks that every removed id and every in-place
// target is a value of this project, and that no entry rewrites a value the
// same request removes.
func (s *ProjectService) validateValueReferences(ctx context.Context, projectID uint, req dto.UpdateProjectRequest) error {
	ids := make([]uint, 0, len(req.RemovedAttributes)+len(req.Attributes))
	ids = append(ids, req.RemovedAttributes...)
	for _, entry := range req.Attributes {
		if entry.AttributeValueID != nil {
			ids = append(ids, *entry.AttributeValueID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	values, err := s.values.FindByIDs(ctx, uniqueIDs(ids))
	if err != nil {
		return storage("failed to look up attribute values", err)
	}

	removed := make(map[uint]bool, len(req.RemovedAttributes))
	for i, id := range req.RemovedAttributes {
		value, ok := values[id]
		if !ok || value.ProjectID != projectID {
			return notFound(fmt.Sprintf("removed_attributes[%d]", i), "attribute value %d not found on this project", id)
		}
		removed[id] = true
	}
	for i, entry := range req.Attributes {
		if entry.AttributeValueID == nil {
			continue
		}
		id := *entry.AttributeValueID
		field := fmt.Sprintf("attributes[%d].attribute_value_id", i)
		value, ok := values[id]
		if !ok || value.ProjectID != projectID {
			return notFound(field, "attribute value %d not found on this project", id)
		}
		if removed[id] {
			return malformed(field, "attribute value %d is also listed in removed_attributes", id)
		}
	}
	return nil
}

// resolveEntry looks the attribute up through the transaction and checks the
// value against its declared type.
func (s *ProjectService) resolveEntry(ctx context.Context, tx *gorm.DB, i int, entry dto.AttributeInput) (*models.Attribute, error) {
	attribute, err := s.attributes.WithTx(tx).FindByID(ctx, entry.AttributeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(fmt.Sprintf("attributes[%d].attribute_id", i), "attribute %d not found", entry.AttributeID)
		}
		return nil, err
	}
	if !validators.ValidateAttributeValue(attribute.Type, *entry.Value) {
		return nil, typeMismatch(fmt.Sprintf("attributes[%d].value", i),
			"value %q is not a valid %s for attribute %q", *entry.Value, attribute.Type, attribute.Name)
	}
	return attribute, nil
}

func (s *ProjectService) reject(op string, err error) {
	metrics.ObserveMutation("project", op, metrics.ResultRejected)
	s.log.Debug("project "+op+" rejected", zap.Error(err))
}

// rollback records a failed transaction and converts the cause into a
// service error. A unique violation at commit means a concurrent writer took
// the name first.
func (s *ProjectService) rollback(op string, err error, fields ...zap.Field) error {
	metrics.ObserveMutation("project", op, metrics.ResultRolledBack)
	s.log.Warn("project "+op+" rolled back", append(fields, zap.Error(err))...)

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return malformed("name", "name has already been taken")
	}
	return asServiceError("failed to "+op+" project", err)
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	unique := make([]uint, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, id)
	}
	return unique
}
