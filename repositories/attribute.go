package repositories

import (
	"context"

	"github.com/projectdesk/models"
	"gorm.io/gorm"
)

// AttributeRepository is the registry of declared attributes. Lookups always
// hit the database so a transaction-bound repository sees its own writes.
type AttributeRepository struct {
	db *gorm.DB
}

// NewAttributeRepository creates a new attribute repository instance
func NewAttributeRepository(db *gorm.DB) *AttributeRepository {
	return &AttributeRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *AttributeRepository) WithTx(tx *gorm.DB) *AttributeRepository {
	return &AttributeRepository{db: tx}
}

// FindByID retrieves an attribute by its ID
func (r *AttributeRepository) FindByID(ctx context.Context, id uint) (*models.Attribute, error) {
	var attribute models.Attribute
	if err := r.db.WithContext(ctx).First(&attribute, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &attribute, nil
}

// FindByName retrieves an attribute by its unique name
func (r *AttributeRepository) FindByName(ctx context.Context, name string) (*models.Attribute, error) {
	var attribute models.Attribute
	if err := r.db.WithContext(ctx).First(&attribute, "name = ?", name).Error; err != nil {
		return nil, err
	}
	return &attribute, nil
}

// FindAll retrieves every attribute with its values and their projects
func (r *AttributeRepository) FindAll(ctx context.Context) ([]models.Attribute, error) {
	var attributes []models.Attribute
	result := r.db.WithContext(ctx).
		Preload("Values", func(db *gorm.DB) *gorm.DB { return db.Order("attribute_values.id") }).
		Preload("Values.Project").
		Order("id").
		Find(&attributes)
	return attributes, result.Error
}

// FindWithValues retrieves one attribute with its values and their projects
func (r *AttributeRepository) FindWithValues(ctx context.Context, id uint) (models.Attribute, error) {
	var attribute models.Attribute
	result := r.db.WithContext(ctx).
		Preload("Values", func(db *gorm.DB) *gorm.DB { return db.Order("attribute_values.id") }).
		Preload("Values.Project").
		First(&attribute, "id = ?", id)
	return attribute, result.Error
}

// ExistsByName checks whether another attribute already uses the name.
// excludeID skips the attribute being updated; pass 0 on create.
func (r *AttributeRepository) ExistsByName(ctx context.Context, name string, excludeID uint) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.Attribute{}).Where("name = ?", name)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	result := query.Count(&count)
	return count > 0, result.Error
}

// CountValues counts the attribute values referencing an attribute
func (r *AttributeRepository) CountValues(ctx context.Context, id uint) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.AttributeValue{}).Where("attribute_id = ?", id).Count(&count)
	return count, result.Error
}

// Create inserts a new attribute
func (r *AttributeRepository) Create(ctx context.Context, attribute *models.Attribute) error {
	return r.db.WithContext(ctx).Omit("Values").Create(attribute).Error
}

// Update writes name and type of an existing attribute
func (r *AttributeRepository) Update(ctx context.Context, attribute *models.Attribute) error {
	return r.db.WithContext(ctx).Model(attribute).
		Select("name", "type").
		Updates(models.Attribute{Name: attribute.Name, Type: attribute.Type}).Error
}

// Delete removes an attribute row
func (r *AttributeRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Attribute{}, "id = ?", id).Error
}
