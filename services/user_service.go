package services

import (
	"context"
	"errors"

	"github.com/projectdesk/dto"
	"github.com/projectdesk/metrics"
	"github.com/projectdesk/models"
	"github.com/projectdesk/repositories"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserService handles profile reads and self-service account changes
type UserService struct {
	db         *gorm.DB
	users      *repositories.UserRepository
	projects   *repositories.ProjectRepository
	timesheets *repositories.TimesheetRepository
	log        *zap.Logger
}

// NewUserService creates a new user service instance
func NewUserService(db *gorm.DB, log *zap.Logger) *UserService {
	return &UserService{
		db:         db,
		users:      repositories.NewUserRepository(db),
		projects:   repositories.NewProjectRepository(db),
		timesheets: repositories.NewTimesheetRepository(db),
		log:        log.Named("users"),
	}
}

// ListUsers returns every user with projects and timesheets
func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, storage("failed to list users", err)
	}
	return users, nil
}

// GetUser returns one user with projects and timesheets
func (s *UserService) GetUser(ctx context.Context, id uint) (models.User, error) {
	user, err := s.users.FindWithProjects(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, notFound("id", "user %d not found", id)
		}
		return models.User{}, storage("failed to get user", err)
	}
	return user, nil
}

// UpdateProfile changes the acting user's name and email
func (s *UserService) UpdateProfile(ctx context.Context, actorID uint, req dto.UpdateProfileRequest) (models.User, error) {
	user, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, notFound("id", "user %d not found", actorID)
		}
		return models.User{}, storage("failed to get user", err)
	}

	taken, err := s.users.ExistsByEmail(ctx, req.Email, actorID)
	if err != nil {
		return models.User{}, storage("failed to check email", err)
	}
	if taken {
		metrics.ObserveMutation("user", "update", metrics.ResultRejected)
		return models.User{}, malformed("email", "email has already been taken")
	}

	user.FirstName = req.FirstName
	user.LastName = req.LastName
	user.Email = req.Email
	if err := s.users.UpdateProfile(ctx, &user); err != nil {
		metrics.ObserveMutation("user", "update", metrics.ResultRolledBack)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.User{}, malformed("email", "email has already been taken")
		}
		return models.User{}, storage("failed to update profile", err)
	}
	metrics.ObserveMutation("user", "update", metrics.ResultCommitted)
	s.log.Info("profile updated", zap.Uint("user_id", actorID))
	return user, nil
}

// DeleteAccount removes the acting user's timesheets, assignments and account
// in one transaction.
func (s *UserService) DeleteAccount(ctx context.Context, actorID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.users.WithTx(tx).FindByID(ctx, actorID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("id", "user %d not found", actorID)
			}
			return err
		}
		if err := s.timesheets.WithTx(tx).DeleteByUserID(ctx, actorID); err != nil {
			return err
		}
		if err := s.projects.WithTx(tx).DeleteAssignmentsByUser(ctx, actorID); err != nil {
			return err
		}
		return s.users.WithTx(tx).Delete(ctx, actorID)
	})
	if err != nil {
		metrics.ObserveMutation("user", "delete", metrics.ResultRolledBack)
		s.log.Warn("account deletion rolled back", zap.Uint("user_id", actorID), zap.Error(err))
		return asServiceError("failed to delete account", err)
	}
	metrics.ObserveMutation("user", "delete", metrics.ResultCommitted)
	s.log.Info("account deleted", zap.Uint("user_id", actorID))
	return nil
}
