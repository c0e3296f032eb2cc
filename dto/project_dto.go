package dto

import (
	"github.com/projectdesk/models"
)

// AttributeInput is one attribute entry of a project create/update request.
// AttributeValueID is only meaningful on update, where it targets an
// existing value to rewrite in place.
type AttributeInput struct {
	AttributeValueID *uint   `json:"attribute_value_id"`
	AttributeID      uint    `json:"attribute_id"`
	Value            *string `json:"value"`
}

// CreateProjectRequest represents the payload to create a project
type CreateProjectRequest struct {
	Name       string           `json:"name"`
	Status     string           `json:"status"`
	Attributes []AttributeInput `json:"attributes"`
}

// UpdateProjectRequest represents the payload to update a project
type UpdateProjectRequest struct {
	Name              string           `json:"name"`
	Status            string           `json:"status"`
	Attributes        []AttributeInput `json:"attributes"`
	RemovedAttributes []uint           `json:"removed_attributes"`
}

// AssignUsersRequest lists users to assign to a project
type AssignUsersRequest struct {
	UserIDs []uint `json:"user_ids"`
}

// UserSummary is the public view of an assigned user
type UserSummary struct {
	ID        uint        `json:"id"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
}

// ProjectResponse is a project with its attribute values flattened by name
type ProjectResponse struct {
	ID            uint                 `json:"id"`
	Name          string               `json:"name"`
	Status        models.ProjectStatus `json:"status"`
	Attributes    map[string]string    `json:"attributes"`
	AssignedUsers []UserSummary        `json:"assigned_users"`
}

// NewProjectResponse projects a loaded project. Only attributes with a value
// appear in the map; the row with the highest id wins if one attribute has
// several values.
func NewProjectResponse(project models.Project) ProjectResponse {
	attributes := make(map[string]string, len(project.AttributeValues))
	for _, av := range project.AttributeValues {
		if av.Attribute == nil {
			continue
		}
		attributes[av.Attribute.Name] = av.Value
	}

	users := make([]UserSummary, 0, len(project.Users))
	for _, user := range project.Users {
		users = append(users, NewUserSummary(user))
	}

	return ProjectResponse{
		ID:            project.ID,
		Name:          project.Name,
		Status:        project.Status,
		Attributes:    attributes,
		AssignedUsers: users,
	}
}

// NewUserSummary strips a user down to its public fields
func NewUserSummary(user models.User) UserSummary {
	return UserSummary{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Role:      user.Role,
	}
}
