// Package testutil provides an in-memory SQLite database with the full schema
// for package tests.
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/projectdesk/database"
	"github.com/projectdesk/models"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

var dbCounter atomic.Int64

// NewDB opens a fresh migrated database private to the test
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_pragma=foreign_keys(1)", name, dbCounter.Add(1))

	db, err := gorm.Open(sqlite.Open(dsn), database.NewGormConfig(zaptest.NewLogger(t)))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// CreateAttribute inserts an attribute directly
func CreateAttribute(t *testing.T, db *gorm.DB, name string, typ models.AttributeType) models.Attribute {
	t.Helper()
	attribute := models.Attribute{Name: name, Type: typ}
	require.NoError(t, db.Create(&attribute).Error)
	return attribute
}

// CreateProject inserts a project directly, with optional attribute values keyed by attribute id
func CreateProject(t *testing.T, db *gorm.DB, name string, status models.ProjectStatus, values map[uint]string) models.Project {
	t.Helper()
	project := models.Project{Name: name, Status: status}
	require.NoError(t, db.Create(&project).Error)
	for attributeID, value := range values {
		row := models.AttributeValue{AttributeID: attributeID, ProjectID: project.ID, Value: value}
		require.NoError(t, db.Create(&row).Error)
	}
	return project
}

// CreateUser inserts a user directly with an unusable password hash
func CreateUser(t *testing.T, db *gorm.DB, email string, role models.Role) models.User {
	t.Helper()
	user := models.User{FirstName: "Test", LastName: "User", Email: email, Password: "x", Role: role}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// Assign links a user to a project
func Assign(t *testing.T, db *gorm.DB, projectID, userID uint) {
	t.Helper()
	require.NoError(t, db.Create(&models.ProjectUser{ProjectID: projectID, UserID: userID}).Error)
}
