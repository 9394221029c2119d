package formkit

import (
	"regexp"
	"strings"

	"github.com/oneday-labs/intake-api/internal/models"
)

// Messages surfaced to the form user. The wording is part of the product
// contract and mirrored by the embedded browser script.
const (
	MsgRequired      = "This field is required."
	MsgInvalidEmail  = "Please enter a valid email address."
	MsgInvalidPhone  = "Please enter a valid phone number."
	MsgFileTooLarge  = "File is too large! Maximum size is 5MB."
	MsgFormHasErrors = "Please correct the errors in the form."
)

// MaxFileSize is the upload ceiling applied on both sides of the wire.
const MaxFileSize = 5 * 1024 * 1024

var (
	// Permissive local@domain.tld shape; consecutive dots and other
	// RFC 5322 edge cases are deliberately not enforced.
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	// Exactly 10 digits, or 11 digits with a leading 0.
	phonePattern = regexp.MustCompile(`^(?:0\d{10}|\d{10})$`)
)

// FieldError anchors a message to a named field. An empty Field targets
// the shared error region.
type FieldError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Result aggregates every rule violation found in one pass.
type Result struct {
	FieldErrors []FieldError `json:"fieldErrors,omitempty"`
	Summary     string       `json:"summary,omitempty"`
}

// OK reports whether the submission passed all rules.
func (r Result) OK() bool {
	return len(r.FieldErrors) == 0
}

// FileMeta carries the attributes of a selected file needed for validation.
type FileMeta struct {
	Name string
	Size int64
}

// Validate checks every field against the descriptor rules without
// short-circuiting, so multiple messages can surface at once. A failing
// result always carries the shared summary message.
func Validate(fields []models.FieldDescriptor, values map[string]string, file *FileMeta) Result {
	var result Result

	for _, field := range fields {
		value := strings.TrimSpace(values[field.Name])

		if field.Required && value == "" && field.Type != models.FieldTypeFile {
			result.FieldErrors = append(result.FieldErrors, FieldError{Field: field.Name, Message: MsgRequired})
			continue
		}
		if value == "" {
			continue
		}

		switch field.Type {
		case models.FieldTypeEmail:
			if !ValidEmail(value) {
				result.FieldErrors = append(result.FieldErrors, FieldError{Field: field.Name, Message: MsgInvalidEmail})
			}
		case models.FieldTypeTel:
			if !ValidPhone(value) {
				result.FieldErrors = append(result.FieldErrors, FieldError{Field: field.Name, Message: MsgInvalidPhone})
			}
		}
	}

	if file != nil && file.Size > MaxFileSize {
		result.FieldErrors = append(result.FieldErrors, FieldError{Message: MsgFileTooLarge})
	}

	if len(result.FieldErrors) > 0 {
		result.Summary = MsgFormHasErrors
	}
	return result
}

// ValidEmail applies the permissive email rule.
func ValidEmail(value string) bool {
	return emailPattern.MatchString(value)
}

// ValidPhone applies the 10-digit (or 0-prefixed 11-digit) phone rule.
func ValidPhone(value string) bool {
	return phonePattern.MatchString(value)
}
