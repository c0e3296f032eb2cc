package dto

// AttributeRequest represents the payload to create or update an attribute
type AttributeRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}
