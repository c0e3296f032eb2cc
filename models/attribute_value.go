package models

import (
	"time"
)

// AttributeValue stores one untyped value of an attribute for a project.
// Values are validated against Attribute.Type when written, never on read.
type AttributeValue struct {
	ID          uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	AttributeID uint      `json:"-" gorm:"not null;index"`
	ProjectID   uint      `json:"-" gorm:"not null;index"`
	Value       string    `json:"value" gorm:"type:text;not null"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`

	// Relations
	Attribute *Attribute `json:"attribute,omitempty" gorm:"foreignKey:AttributeID"`
	Project   *Project   `json:"project,omitempty" gorm:"foreignKey:ProjectID"`
}

// TableName sets the table name for AttributeValue model
func (AttributeValue) TableName() string {
	return "attribute_values"
}
