package repositories

import (
	"context"

	"github.com/projectdesk/models"
	"gorm.io/gorm"
)

// UserRepository handles database operations for users
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository instance
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{db: tx}
}

// FindByID retrieves a user by ID
func (r *UserRepository) FindByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	result := r.db.WithContext(ctx).First(&user, "id = ?", id)
	return user, result.Error
}

// FindByEmail retrieves a user by email
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	result := r.db.WithContext(ctx).First(&user, "email = ?", email)
	return user, result.Error
}

// FindWithProjects retrieves a user with projects, their attributes and the user's timesheets
func (r *UserRepository) FindWithProjects(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	result := r.withProjects(r.db.WithContext(ctx)).First(&user, "users.id = ?", id)
	return user, result.Error
}

// FindAll retrieves every user with projects and timesheets
func (r *UserRepository) FindAll(ctx context.Context) ([]models.User, error) {
	var users []models.User
	result := r.withProjects(r.db.WithContext(ctx)).Order("users.id").Find(&users)
	return users, result.Error
}

func (r *UserRepository) withProjects(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Projects", func(db *gorm.DB) *gorm.DB { return db.Order("projects.id") }).
		Preload("Projects.AttributeValues").
		Preload("Projects.AttributeValues.Attribute").
		Preload("Timesheets", func(db *gorm.DB) *gorm.DB { return db.Order("timesheets.id") })
}

// ExistingIDs returns which of the given IDs belong to a user
func (r *UserRepository) ExistingIDs(ctx context.Context, ids []uint) (map[uint]bool, error) {
	existing := make(map[uint]bool, len(ids))
	if len(ids) == 0 {
		return existing, nil
	}
	var found []uint
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return nil, err
	}
	for _, id := range found {
		existing[id] = true
	}
	return existing, nil
}

// ExistsByEmail checks whether another user already uses the email.
// excludeID skips the user being updated; pass 0 on create.
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string, excludeID uint) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	result := query.Count(&count)
	return count > 0, result.Error
}

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Omit("Projects", "Timesheets").Create(user).Error
}

// UpdateProfile writes the profile columns of a user
func (r *UserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Model(&models.User{ID: user.ID}).
		Select("first_name", "last_name", "email").
		Updates(models.User{FirstName: user.FirstName, LastName: user.LastName, Email: user.Email}).Error
}

// UpdatePassword stores a new password hash
func (r *UserRepository) UpdatePassword(ctx context.Context, id uint, hashed string) error {
	return r.db.WithContext(ctx).Model(&models.User{ID: id}).Update("password", hashed).Error
}

// Delete removes the user row only
func (r *UserRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id).Error
}
