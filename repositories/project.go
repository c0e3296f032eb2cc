package repositories

import (
	"context"

	"github.com/projectdesk/filters"
	"github.com/projectdesk/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProjectRepository handles database operations for projects
type ProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new project repository instance
func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *ProjectRepository) WithTx(tx *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: tx}
}

// FindByID retrieves a project by its ID without relations
func (r *ProjectRepository) FindByID(ctx context.Context, id uint) (models.Project, error) {
	var project models.Project
	result := r.db.WithContext(ctx).First(&project, "id = ?", id)
	return project, result.Error
}

// FindWithDetails loads a project with its attribute values and assigned users
func (r *ProjectRepository) FindWithDetails(ctx context.Context, id uint) (models.Project, error) {
	var project models.Project
	result := r.withDetails(r.db.WithContext(ctx)).First(&project, "projects.id = ?", id)
	return project, result.Error
}

// FindAll retrieves every project matching the predicate, ordered by id.
// A nil predicate returns all projects.
func (r *ProjectRepository) FindAll(ctx context.Context, predicate *filters.Predicate) ([]models.Project, error) {
	var projects []models.Project
	query := r.withDetails(r.db.WithContext(ctx).Model(&models.Project{}))
	if predicate != nil {
		query = predicate.Apply(query)
	}
	result := query.Order("projects.id").Find(&projects)
	return projects, result.Error
}

func (r *ProjectRepository) withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("AttributeValues", func(db *gorm.DB) *gorm.DB { return db.Order("attribute_values.id") }).
		Preload("AttributeValues.Attribute").
		Preload("Users", func(db *gorm.DB) *gorm.DB { return db.Order("users.id") })
}

// ExistsByName checks whether another project already uses the name.
// excludeID skips the project being updated; pass 0 on create.
func (r *ProjectRepository) ExistsByName(ctx context.Context, name string, excludeID uint) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.Project{}).Where("name = ?", name)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	result := query.Count(&count)
	return count > 0, result.Error
}

// Create inserts a new project row. Associations are never written here.
func (r *ProjectRepository) Create(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(project).Error
}

// Update writes the native columns of an existing project
func (r *ProjectRepository) Update(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Model(project).
		Select("name", "status").
		Updates(models.Project{Name: project.Name, Status: project.Status}).Error
}

// Delete removes the project row only. Dependents must already be gone.
func (r *ProjectRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Project{}, "id = ?", id).Error
}

// CountUsers counts the users assigned to a project
func (r *ProjectRepository) CountUsers(ctx context.Context, id uint) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.ProjectUser{}).Where("project_id = ?", id).Count(&count)
	return count, result.Error
}

// IsUserAssigned checks whether the user is assigned to the project
func (r *ProjectRepository) IsUserAssigned(ctx context.Context, projectID, userID uint) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.ProjectUser{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&count)
	return count > 0, result.Error
}

// AssignUsers links users to a project, skipping links that already exist
func (r *ProjectRepository) AssignUsers(ctx context.Context, projectID uint, userIDs []uint) error {
	if len(userIDs) == 0 {
		return nil
	}
	links := make([]models.ProjectUser, 0, len(userIDs))
	for _, userID := range userIDs {
		links = append(links, models.ProjectUser{ProjectID: projectID, UserID: userID})
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error
}

// UnassignUser removes one assignment link
func (r *ProjectRepository) UnassignUser(ctx context.Context, projectID, userID uint) error {
	return r.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&models.ProjectUser{}).Error
}

// DeleteAssignmentsByUser removes every assignment of a user
func (r *ProjectRepository) DeleteAssignmentsByUser(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.ProjectUser{}).Error
}
