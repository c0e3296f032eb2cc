package database

import (
	"fmt"

	"github.com/projectdesk/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Models lists every table managed by AutoMigrate, parents first
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Attribute{},
		&models.Project{},
		&models.ProjectUser{},
		&models.AttributeValue{},
		&models.Timesheet{},
		&models.RevokedToken{},
	}
}

// Migrate creates or updates the schema
func Migrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&models.Project{}, "Users", &models.ProjectUser{}); err != nil {
		return fmt.Errorf("failed to set up project_user join table: %w", err)
	}
	if err := db.SetupJoinTable(&models.User{}, "Projects", &models.ProjectUser{}); err != nil {
		return fmt.Errorf("failed to set up project_user join table: %w", err)
	}
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

type seedProject struct {
	Name       string
	Status     models.ProjectStatus
	Attributes map[string]string
	AssignTo   []string
}

var seedAttributes = []models.Attribute{
	{Name: "department", Type: models.AttributeTypeText},
	{Name: "start_date", Type: models.AttributeTypeDate},
	{Name: "end_date", Type: models.AttributeTypeDate},
}

var seedProjects = []seedProject{
	{
		Name:   "Project A",
		Status: models.ProjectStatusActive,
		Attributes: map[string]string{
			"department": "Engineering",
			"start_date": "2025-01-01",
			"end_date":   "2026-01-01",
		},
		AssignTo: []string{"admin@projectdesk.local"},
	},
	{
		Name:   "Project B",
		Status: models.ProjectStatusInactive,
		Attributes: map[string]string{
			"department": "Marketing",
			"start_date": "2025-03-01",
		},
	},
}

// Seed inserts reference data into an empty database. It is a no-op once any
// attribute exists.
func Seed(db *gorm.DB, adminPassword string, log *zap.Logger) error {
	var count int64
	if err := db.Model(&models.Attribute{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Info("seed skipped, database already has attributes")
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		hashed, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		admin := models.User{
			FirstName: "Admin",
			LastName:  "User",
			Email:     "admin@projectdesk.local",
			Password:  string(hashed),
			Role:      models.RoleAdmin,
		}
		if err := tx.Create(&admin).Error; err != nil {
			return fmt.Errorf("failed to seed admin user: %w", err)
		}
		usersByEmail := map[string]uint{admin.Email: admin.ID}

		attributes := make([]models.Attribute, len(seedAttributes))
		copy(attributes, seedAttributes)
		if err := tx.Create(&attributes).Error; err != nil {
			return fmt.Errorf("failed to seed attributes: %w", err)
		}
		attributeIDs := make(map[string]uint, len(attributes))
		for _, attribute := range attributes {
			attributeIDs[attribute.Name] = attribute.ID
		}

		for _, sp := range seedProjects {
			project := models.Project{Name: sp.Name, Status: sp.Status}
			if err := tx.Create(&project).Error; err != nil {
				return fmt.Errorf("failed to seed project %s: %w", sp.Name, err)
			}
			for name, value := range sp.Attributes {
				row := models.AttributeValue{AttributeID: attributeIDs[name], ProjectID: project.ID, Value: value}
				if err := tx.Create(&row).Error; err != nil {
					return fmt.Errorf("failed to seed %s for %s: %w", name, sp.Name, err)
				}
			}
			for _, email := range sp.AssignTo {
				link := models.ProjectUser{ProjectID: project.ID, UserID: usersByEmail[email]}
				if err := tx.Create(&link).Error; err != nil {
					return fmt.Errorf("failed to assign %s to %s: %w", email, sp.Name, err)
				}
			}
		}

		log.Info("seeded reference data",
			zap.Int("attributes", len(attributes)),
			zap.Int("projects", len(seedProjects)))
		return nil
	})
}
