package repositories

import (
	"context"

	"github.com/projectdesk/models"
	"gorm.io/gorm"
)

// AttributeValueRepository handles database operations for attribute values
type AttributeValueRepository struct {
	db *gorm.DB
}

// NewAttributeValueRepository creates a new attribute value repository instance
func NewAttributeValueRepository(db *gorm.DB) *AttributeValueRepository {
	return &AttributeValueRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *AttributeValueRepository) WithTx(tx *gorm.DB) *AttributeValueRepository {
	return &AttributeValueRepository{db: tx}
}

// FindByIDs retrieves the values with the given IDs keyed by ID
func (r *AttributeValueRepository) FindByIDs(ctx context.Context, ids []uint) (map[uint]models.AttributeValue, error) {
	found := make(map[uint]models.AttributeValue, len(ids))
	if len(ids) == 0 {
		return found, nil
	}
	var values []models.AttributeValue
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&values).Error; err != nil {
		return nil, err
	}
	for _, value := range values {
		found[value.ID] = value
	}
	return found, nil
}

// Create inserts a new attribute value
func (r *AttributeValueRepository) Create(ctx context.Context, value *models.AttributeValue) error {
	return r.db.WithContext(ctx).Omit("Attribute", "Project").Create(value).Error
}

// Update rewrites attribute and value of an existing row of the same project
// in place. A row that no longer exists yields gorm.ErrRecordNotFound.
func (r *AttributeValueRepository) Update(ctx context.Context, value *models.AttributeValue) error {
	result := r.db.WithContext(ctx).Model(&models.AttributeValue{ID: value.ID}).
		Where("project_id = ?", value.ProjectID).
		Select("attribute_id", "value").
		Updates(models.AttributeValue{AttributeID: value.AttributeID, Value: value.Value})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteByIDs hard-deletes the listed values
func (r *AttributeValueRepository) DeleteByIDs(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.AttributeValue{}).Error
}

// DeleteByProjectID removes every value owned by a project
func (r *AttributeValueRepository) DeleteByProjectID(ctx context.Context, projectID uint) error {
	return r.db.WithContext(ctx).Where("project_id = ?", projectID).Delete(&models.AttributeValue{}).Error
}
