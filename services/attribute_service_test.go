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

func TestCreateAttribute(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewAttributeService(db, zaptest.NewLogger(t))
	ctx := context.Background()

	attribute, err := svc.CreateAttribute(ctx, dto.AttributeRequest{Name: "budget", Type: "number"})
	require.NoError(t, err)
	assert.NotZero(t, attribute.ID)
	assert.Equal(t, models.AttributeTypeNumber, attribute.Type)

	tests := []struct {
		name  string
		req   dto.AttributeRequest
		field string
	}{
		{"missing name", dto.AttributeRequest{Type: "text"}, "name"},
		{"name too long", dto.AttributeRequest{Name: string(make([]rune, 101)), Type: "text"}, "name"},
		{"missing type", dto.AttributeRequest{Name: "x"}, "type"},
		{"unknown type", dto.AttributeRequest{Name: "x", Type: "boolean"}, "type"},
		{"duplicate name", dto.AttributeRequest{Name: "budget", Type: "text"}, "name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateAttribute(ctx, tt.req)
			require.ErrorIs(t, err, ErrMalformed)
			var svcErr *Error
			require.ErrorAs(t, err, &svcErr)
			assert.Equal(t, tt.field, svcErr.Field)
		})
	}
}

func TestUpdateAttributeTypeIsFrozenOnceUsed(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewAttributeService(db, zaptest.NewLogger(t))
	ctx := context.Background()
	used := testutil.CreateAttribute(t, db, "start_date", models.AttributeTypeDate)
	unused := testutil.CreateAttribute(t, db, "priority", models.AttributeTypeText)
	testutil.CreateProject(t, db, "Project A", models.ProjectStatusActive, map[uint]string{used.ID: "2025-01-01"})

	_, err := svc.UpdateAttribute(ctx, used.ID, dto.AttributeRequest{Name: "start_date", Type: "number"})
	require.ErrorIs(t, err, ErrConflict)
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "type", svcErr.Field)

	renamed, err := svc.UpdateAttribute(ctx, used.ID, dto.AttributeRequest{Name: "kickoff", Type: "date"})
	require.NoError(t, err)
	assert.Equal(t, "kickoff", renamed.Name)

	retyped, err := svc.UpdateAttribute(ctx, unused.ID, dto.AttributeRequest{Name: "priority", Type: "number"})
	require.NoError(t, err)
	assert.Equal(t, models.AttributeTypeNumber, retyped.Type)

	var stored models.Attribute
	require.NoError(t, db.First(&stored, used.ID).Error)
	assert.Equal(t, "kickoff", stored.Name)
	assert.Equal(t, models.AttributeTypeDate, stored.Type)

	_, err = svc.UpdateAttribute(ctx, unused.ID, dto.AttributeRequest{Name: "kickoff", Type: "number"})
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = svc.UpdateAttribute(ctx, 999, dto.AttributeRequest{Name: "x", Type: "text"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteAttribute(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewAttributeService(db, zaptest.NewLogger(t))
	ctx := context.Background()
	used := testutil.CreateAttribute(t, db, "department", models.AttributeTypeText)
	unused := testutil.CreateAttribute(t, db, "priority", models.AttributeTypeText)
	testutil.CreateProject(t, db, "Project A", models.ProjectStatusActive, map[uint]string{used.ID: "Eng"})

	assert.ErrorIs(t, svc.DeleteAttribute(ctx, used.ID), ErrConflict)
	require.NoError(t, svc.DeleteAttribute(ctx, unused.ID))
	assert.ErrorIs(t, svc.DeleteAttribute(ctx, unused.ID), ErrNotFound)

	attributes, err := svc.ListAttributes(ctx)
	require.NoError(t, err)
	require.Len(t, attributes, 1)
	assert.Equal(t, "department", attributes[0].Name)
}

func TestGetAttributeLoadsValuesWithProjects(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewAttributeService(db, zaptest.NewLogger(t))
	attribute := testutil.CreateAttribute(t, db, "department", models.AttributeTypeText)
	testutil.CreateProject(t, db, "Project A", models.ProjectStatusActive, map[uint]string{attribute.ID: "Eng"})

	got, err := svc.GetAttribute(context.Background(), attribute.ID)
	require.NoError(t, err)
	require.Len(t, got.Values, 1)
	assert.Equal(t, "Eng", got.Values[0].Value)
	require.NotNil(t, got.Values[0].Project)
	assert.Equal(t, "Project A", got.Values[0].Project.Name)

	_, err = svc.GetAttribute(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIntegrityGuard(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	var guard IntegrityGuard

	attribute := testutil.CreateAttribute(t, db, "budget", models.AttributeTypeNumber)
	project := testutil.CreateProject(t, db, "Project A", models.ProjectStatusActive, nil)

	ok, err := guard.CanChangeAttributeType(ctx, db, attribute, models.AttributeTypeText)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = guard.CanDeleteAttribute(ctx, db, attribute.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = guard.CanDeleteProject(ctx, db, project.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, db.Create(&models.AttributeValue{AttributeID: attribute.ID, ProjectID: project.ID, Value: "10"}).Error)
	user := testutil.CreateUser(t, db, "ada@example.com", models.RoleUser)
	testutil.Assign(t, db, project.ID, user.ID)

	ok, err = guard.CanChangeAttributeType(ctx, db, attribute, models.AttributeTypeText)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = guard.CanChangeAttributeType(ctx, db, attribute, models.AttributeTypeNumber)
	require.NoError(t, err)
	assert.True(t, ok, "keeping the type is always allowed")
	ok, err = guard.CanDeleteAttribute(ctx, db, attribute.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = guard.CanDeleteProject(ctx, db, project.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestErrorMatchesByKind(t *testing.T) {
	err := notFound("attributes[0].attribute_id", "attribute %d not found", 7)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrMalformed)
	assert.Equal(t, "attributes[0].attribute_id: attribute 7 not found", err.Error())

	wrapped := asServiceError("failed", assert.AnError)
	assert.ErrorIs(t, wrapped, ErrStorage)
	assert.ErrorIs(t, wrapped, assert.AnError)
	assert.Same(t, err, asServiceError("failed", err))
}
