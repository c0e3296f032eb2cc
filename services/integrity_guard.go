package services

import (
	"context"

	"github.com/projectdesk/models"
	"github.com/projectdesk/repositories"
	"gorm.io/gorm"
)

// IntegrityGuard holds the referential rules checked before attribute and
// project mutations. It keeps no state; every check reads through the
// handle it is given so callers inside a transaction see their own writes.
type IntegrityGuard struct{}

// CanChangeAttributeType reports whether the attribute may take newType.
// Any stored value pins the current type.
func (IntegrityGuard) CanChangeAttributeType(ctx context.Context, db *gorm.DB, attribute models.Attribute, newType models.AttributeType) (bool, error) {
	if newType == attribute.Type {
		return true, nil
	}
	values, err := repositories.NewAttributeRepository(db).CountValues(ctx, attribute.ID)
	return values == 0, err
}

// CanDeleteAttribute reports whether no value references the attribute
func (IntegrityGuard) CanDeleteAttribute(ctx context.Context, db *gorm.DB, attributeID uint) (bool, error) {
	values, err := repositories.NewAttributeRepository(db).CountValues(ctx, attributeID)
	return values == 0, err
}

// CanDeleteProject reports whether no user is assigned to the project
func (IntegrityGuard) CanDeleteProject(ctx context.Context, db *gorm.DB, projectID uint) (bool, error) {
	assigned, err := repositories.NewProjectRepository(db).CountUsers(ctx, projectID)
	return assigned == 0, err
}
