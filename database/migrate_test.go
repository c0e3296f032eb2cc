package database_test

import (
	"testing"

	"github.com/projectdesk/database"
	"github.com/projectdesk/models"
	"github.com/projectdesk/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"
)

func TestMigrateIsRepeatable(t *testing.T) {
	db := testutil.NewDB(t)
	require.NoError(t, database.Migrate(db))

	for _, model := range database.Models() {
		assert.True(t, db.Migrator().HasTable(model), "%T", model)
	}
}

func TestSeedRunsOnce(t *testing.T) {
	db := testutil.NewDB(t)
	log := zaptest.NewLogger(t)

	require.NoError(t, database.Seed(db, "admin-pass", log))
	require.NoError(t, database.Seed(db, "admin-pass", log))

	var attributes []models.Attribute
	require.NoError(t, db.Order("id").Find(&attributes).Error)
	require.Len(t, attributes, 3)
	assert.Equal(t, "department", attributes[0].Name)

	var projects []models.Project
	require.NoError(t, db.Preload("Users").Preload("AttributeValues").Order("id").Find(&projects).Error)
	require.Len(t, projects, 2)
	assert.Equal(t, "Project A", projects[0].Name)
	assert.Len(t, projects[0].AttributeValues, 3)
	require.Len(t, projects[0].Users, 1)
	assert.Equal(t, models.RoleAdmin, projects[0].Users[0].Role)
	assert.Len(t, projects[1].AttributeValues, 2)

	var admin models.User
	require.NoError(t, db.First(&admin, "email = ?", "admin@projectdesk.local").Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte("admin-pass")))
}
