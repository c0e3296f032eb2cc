package models

import (
	"time"
)

// AttributeType is the declared type of a dynamic project attribute
type AttributeType string

const (
	AttributeTypeText   AttributeType = "text"
	AttributeTypeDate   AttributeType = "date"
	AttributeTypeNumber AttributeType = "number"
	AttributeTypeSelect AttributeType = "select"
)

// AttributeTypes lists every declarable attribute type
var AttributeTypes = []AttributeType{
	AttributeTypeText,
	AttributeTypeDate,
	AttributeTypeNumber,
	AttributeTypeSelect,
}

// Valid reports whether the type is declarable
func (t AttributeType) Valid() bool {
	for _, known := range AttributeTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Attribute declares a dynamic, typed project field
type Attribute struct {
	ID        uint          `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string        `json:"name" gorm:"type:varchar(100);uniqueIndex;not null"`
	Type      AttributeType `json:"type" gorm:"type:varchar(10);not null"`
	CreatedAt time.Time     `json:"-"`
	UpdatedAt time.Time     `json:"-"`

	// Relations
	Values []AttributeValue `json:"values,omitempty" gorm:"foreignKey:AttributeID"`
}

// TableName sets the table name for Attribute model
func (Attribute) TableName() string {
	return "attributes"
}
