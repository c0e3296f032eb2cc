package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/projectdesk/dto"
	"github.com/projectdesk/metrics"
	"github.com/projectdesk/models"
	"github.com/projectdesk/repositories"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxAttributeNameLength = 100

// AttributeService manages attribute declarations
type AttributeService struct {
	db         *gorm.DB
	attributes *repositories.AttributeRepository
	guard      IntegrityGuard
	log        *zap.Logger
}

// NewAttributeService creates a new attribute service instance
func NewAttributeService(db *gorm.DB, log *zap.Logger) *AttributeService {
	return &AttributeService{
		db:         db,
		attributes: repositories.NewAttributeRepository(db),
		log:        log.Named("attributes"),
	}
}

// ListAttributes returns every attribute with its values and their projects
func (s *AttributeService) ListAttributes(ctx context.Context) ([]models.Attribute, error) {
	attributes, err := s.attributes.FindAll(ctx)
	if err != nil {
		return nil, storage("failed to list attributes", err)
	}
	return attributes, nil
}

// GetAttribute returns one attribute with its values and their projects
func (s *AttributeService) GetAttribute(ctx context.Context, id uint) (models.Attribute, error) {
	attribute, err := s.attributes.FindWithValues(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Attribute{}, notFound("id", "attribute %d not found", id)
		}
		return models.Attribute{}, storage("failed to get attribute", err)
	}
	return attribute, nil
}

// CreateAttribute declares a new attribute
func (s *AttributeService) CreateAttribute(ctx context.Context, req dto.AttributeRequest) (models.Attribute, error) {
	if err := s.validateAttribute(ctx, req, 0); err != nil {
		metrics.ObserveMutation("attribute", "create", metrics.ResultRejected)
		return models.Attribute{}, asServiceError("failed to check attribute name", err)
	}

	attribute := models.Attribute{Name: req.Name, Type: models.AttributeType(req.Type)}
	if err := s.attributes.Create(ctx, &attribute); err != nil {
		metrics.ObserveMutation("attribute", "create", metrics.ResultRolledBack)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.Attribute{}, malformed("name", "name has already been taken")
		}
		return models.Attribute{}, storage("failed to create attribute", err)
	}

	metrics.ObserveMutation("attribute", "create", metrics.ResultCommitted)
	s.log.Info("attribute created", zap.Uint("attribute_id", attribute.ID), zap.String("type", req.Type))
	return attribute, nil
}

// UpdateAttribute renames an attribute or changes its type. The type is
// frozen once any project holds a value for the attribute.
func (s *AttributeService) UpdateAttribute(ctx context.Context, id uint, req dto.AttributeRequest) (models.Attribute, error) {
	var updated models.Attribute
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		attributes := s.attributes.WithTx(tx)
		current, err := attributes.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("id", "attribute %d not found", id)
			}
			return err
		}

		if err := s.validateAttributeWith(ctx, attributes, req, id); err != nil {
			return err
		}

		newType := models.AttributeType(req.Type)
		ok, err := s.guard.CanChangeAttributeType(ctx, tx, *current, newType)
		if err != nil {
			return err
		}
		if !ok {
			return conflict("type", "cannot change type of attribute %q from %s to %s while values exist", current.Name, current.Type, newType)
		}

		current.Name = req.Name
		current.Type = newType
		if err := attributes.Update(ctx, current); err != nil {
			return err
		}
		updated = *current
		return nil
	})
	if err != nil {
		var svcErr *Error
		if errors.As(err, &svcErr) {
			metrics.ObserveMutation("attribute", "update", metrics.ResultRejected)
			s.log.Debug("attribute update rejected", zap.Uint("attribute_id", id), zap.Error(err))
			return models.Attribute{}, svcErr
		}
		metrics.ObserveMutation("attribute", "update", metrics.ResultRolledBack)
		s.log.Warn("attribute update rolled back", zap.Uint("attribute_id", id), zap.Error(err))
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.Attribute{}, malformed("name", "name has already been taken")
		}
		return models.Attribute{}, storage("failed to update attribute", err)
	}

	metrics.ObserveMutation("attribute", "update", metrics.ResultCommitted)
	s.log.Info("attribute updated", zap.Uint("attribute_id", id))
	return updated, nil
}

// DeleteAttribute removes an attribute that no project uses
func (s *AttributeService) DeleteAttribute(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		attributes := s.attributes.WithTx(tx)
		if _, err := attributes.FindByID(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("id", "attribute %d not found", id)
			}
			return err
		}

		ok, err := s.guard.CanDeleteAttribute(ctx, tx, id)
		if err != nil {
			return err
		}
		if !ok {
			return conflict("id", "attribute %d is in use", id)
		}
		return attributes.Delete(ctx, id)
	})
	if err != nil {
		var svcErr *Error
		if errors.As(err, &svcErr) {
			metrics.ObserveMutation("attribute", "delete", metrics.ResultRejected)
			s.log.Debug("attribute delete rejected", zap.Uint("attribute_id", id), zap.Error(err))
			return svcErr
		}
		metrics.ObserveMutation("attribute", "delete", metrics.ResultRolledBack)
		s.log.Warn("attribute delete rolled back", zap.Uint("attribute_id", id), zap.Error(err))
		return storage("failed to delete attribute", err)
	}

	metrics.ObserveMutation("attribute", "delete", metrics.ResultCommitted)
	s.log.Info("attribute deleted", zap.Uint("attribute_id", id))
	return nil
}

func (s *AttributeService) validateAttribute(ctx context.Context, req dto.AttributeRequest, excludeID uint) error {
	return s.validateAttributeWith(ctx, s.attributes, req, excludeID)
}

func (s *AttributeService) validateAttributeWith(ctx context.Context, attributes *repositories.AttributeRepository, req dto.AttributeRequest, excludeID uint) error {
	if strings.TrimSpace(req.Name) == "" {
		return malformed("name", "name is required")
	}
	if utf8.RuneCountInString(req.Name) > maxAttributeNameLength {
		return malformed("name", "name may not be greater than %d characters", maxAttributeNameLength)
	}
	if req.Type == "" {
		return malformed("type", "type is required")
	}
	if !models.AttributeType(req.Type).Valid() {
		return malformed("type", "type must be one of text, date, number, select")
	}

	taken, err := attributes.ExistsByName(ctx, req.Name, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return malformed("name", "name has already been taken")
	}
	return nil
}
