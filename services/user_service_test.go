package services

import (
	"context"
	"testing"

	"github.com/projectdesk/dto"
	"github.com/projectdesk/models"
	"github.com/projectdesk/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestUpdateProfile(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewUserService(db, zaptest.NewLogger(t))
	ctx := context.Background()
	ada := testutil.CreateUser(t, db, "ada@example.com", models.RoleUser)
	testutil.CreateUser(t, db, "bob@example.com", models.RoleUser)

	updated, err := svc.UpdateProfile(ctx, ada.ID, dto.UpdateProfileRequest{FirstName: "Ada", LastName: "King", Email: "ada@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "King", updated.LastName)

	_, err = svc.UpdateProfile(ctx, ada.ID, dto.UpdateProfileRequest{FirstName: "Ada", LastName: "King", Email: "bob@example.com"})
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = svc.UpdateProfile(ctx, 999, dto.UpdateProfileRequest{FirstName: "X", LastName: "Y", Email: "x@example.com"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetUserLoadsProjectsAndTimesheets(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewUserService(db, zaptest.NewLogger(t))
	department := testutil.CreateAttribute(t, db, "department", models.AttributeTypeText)
	project := testutil.CreateProject(t, db, "Project A", models.ProjectStatusActive, map[uint]string{department.ID: "Eng"})
	ada := testutil.CreateUser(t, db, "ada@example.com", models.RoleUser)
	testutil.Assign(t, db, project.ID, ada.ID)
	require.NoError(t, db.Create(&models.Timesheet{UserID: ada.ID, ProjectID: project.ID, TaskName: "Work", Hours: 1}).Error)

	user, err := svc.GetUser(context.Background(), ada.ID)
	require.NoError(t, err)
	require.Len(t, user.Projects, 1)
	require.Len(t, user.Projects[0].AttributeValues, 1)
	require.NotNil(t, user.Projects[0].AttributeValues[0].Attribute)
	assert.Equal(t, "department", user.Projects[0].AttributeValues[0].Attribute.Name)
	assert.Len(t, user.Timesheets, 1)

	users, err := svc.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 1)

	_, err = svc.GetUser(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteAccount(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewUserService(db, zaptest.NewLogger(t))
	ctx := context.Background()
	project := testutil.CreateProject(t, db, "Project A", models.ProjectStatusActive, nil)
	ada := testutil.CreateUser(t, db, "ada@example.com", models.RoleUser)
	bob := testutil.CreateUser(t, db, "bob@example.com", models.RoleUser)
	testutil.Assign(t, db, project.ID, ada.ID)
	testutil.Assign(t, db, project.ID, bob.ID)
	require.NoError(t, db.Create(&models.Timesheet{UserID: ada.ID, ProjectID: project.ID, TaskName: "Work", Hours: 1}).Error)
	require.NoError(t, db.Create(&models.Timesheet{UserID: bob.ID, ProjectID: project.ID, TaskName: "Work", Hours: 1}).Error)

	require.NoError(t, svc.DeleteAccount(ctx, ada.ID))

	assert.Equal(t, int64(1), countRows(t, db, &models.User{}))
	assert.Equal(t, int64(1), countRows(t, db, &models.ProjectUser{}))
	assert.Equal(t, int64(1), countRows(t, db, &models.Timesheet{}))
	assert.Equal(t, int64(1), countRows(t, db, &models.Project{}))

	assert.ErrorIs(t, svc.DeleteAccount(ctx, ada.ID), ErrNotFound)
}
