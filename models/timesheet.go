package models

import (
	"time"
)

// Timesheet is a time entry a user logs against a project they are assigned to
type Timesheet struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    uint      `json:"-" gorm:"not null;index"`
	ProjectID uint      `json:"-" gorm:"not null;index"`
	TaskName  string    `json:"task_name" gorm:"type:varchar(100);not null"`
	Date      time.Time `json:"date" gorm:"type:date;not null"`
	Hours     float64   `json:"hours" gorm:"not null"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	// Relations
	Project *Project `json:"project,omitempty" gorm:"foreignKey:ProjectID"`
	User    *User    `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
