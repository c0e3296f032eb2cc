package models

import (
	"time"
)

// ProjectStatus represents the lifecycle state of a project
type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusInactive  ProjectStatus = "inactive"
	ProjectStatusCompleted ProjectStatus = "completed"
)

// Valid reports whether the status is one of the known values
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectStatusActive, ProjectStatusInactive, ProjectStatusCompleted:
		return true
	}
	return false
}

// Project is the entity extended through attribute values
type Project struct {
	ID        uint          `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string        `json:"name" gorm:"type:varchar(255);uniqueIndex;not null"`
	Status    ProjectStatus `json:"status" gorm:"type:varchar(20);not null"`
	CreatedAt time.Time     `json:"-"`
	UpdatedAt time.Time     `json:"-"`

	// Relations
	AttributeValues []AttributeValue `json:"attributes,omitempty" gorm:"foreignKey:ProjectID"`
	Users           []User           `json:"users,omitempty" gorm:"many2many:project_user"`
	Timesheets      []Timesheet      `json:"timesheets,omitempty" gorm:"foreignKey:ProjectID"`
}

// ProjectUser is the assignment join row between projects and users
type ProjectUser struct {
	ProjectID uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName sets the table name for ProjectUser model
func (ProjectUser) TableName() string {
	return "project_user"
}
