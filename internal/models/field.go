package models

import "strings"

// FieldType enumerates the supported form input types.
type FieldType string

const (
	FieldTypeText   FieldType = "text"
	FieldTypeEmail  FieldType = "email"
	FieldTypeTel    FieldType = "tel"
	FieldTypeFile   FieldType = "file"
	FieldTypeSelect FieldType = "select"
)

// FieldDescriptor describes one form input: its name, type, whether it is
// required, and the ordered options for choice fields. Produced once per
// form load and immutable for that page lifetime.
type FieldDescriptor struct {
	Name     string    `json:"name"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required"`
	Options  []string  `json:"options"`
}

// FormFieldRow is one row of the tabular schema source.
type FormFieldRow struct {
	Position int    `db:"position"`
	Name     string `db:"name"`
	Type     string `db:"type"`
	Required bool   `db:"required"`
	Options  string `db:"options"`
}

// ToDescriptor maps a schema row to a FieldDescriptor, defaulting type to
// "text" and splitting pipe-delimited options.
func (r FormFieldRow) ToDescriptor() FieldDescriptor {
	fieldType := FieldType(strings.TrimSpace(r.Type))
	if fieldType == "" {
		fieldType = FieldTypeText
	}

	options := []string{}
	if trimmed := strings.TrimSpace(r.Options); trimmed != "" {
		options = strings.Split(trimmed, "|")
	}

	return FieldDescriptor{
		Name:     r.Name,
		Type:     fieldType,
		Required: r.Required,
		Options:  options,
	}
}
