package formkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneday-labs/intake-api/internal/models"
)

func TestValidEmail(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"a@b.co", true},
		{"alice.smith@example.com", true},
		{"a@b", false},
		{"a@@b.com", false},
		{"plainstring", false},
		{"", false},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, ValidEmail(tc.value), "email %q", tc.value)
	}
}

func TestValidPhone(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"9876543210", true},
		{"09876543210", true},
		{"987654321", false},
		{"98765432101", false},
		{"98765-43210", false},
		{"", false},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, ValidPhone(tc.value), "phone %q", tc.value)
	}
}

func TestValidateAggregatesAllErrors(t *testing.T) {
	fields := []models.FieldDescriptor{
		{Name: "name", Type: models.FieldTypeText, Required: true},
		{Name: "email", Type: models.FieldTypeEmail, Required: true},
		{Name: "phone", Type: models.FieldTypeTel},
	}
	values := map[string]string{
		"name":  "",
		"email": "not-an-email",
		"phone": "123",
	}

	result := Validate(fields, values, nil)
	require.False(t, result.OK())
	assert.Len(t, result.FieldErrors, 3)
	assert.Equal(t, MsgFormHasErrors, result.Summary)

	messages := map[string]string{}
	for _, fe := range result.FieldErrors {
		messages[fe.Field] = fe.Message
	}
	assert.Equal(t, MsgRequired, messages["name"])
	assert.Equal(t, MsgInvalidEmail, messages["email"])
	assert.Equal(t, MsgInvalidPhone, messages["phone"])
}

func TestValidateFileSize(t *testing.T) {
	fields := []models.FieldDescriptor{{Name: "image", Type: models.FieldTypeFile}}

	oversized := Validate(fields, nil, &FileMeta{Name: "big.jpg", Size: 6 * 1024 * 1024})
	require.False(t, oversized.OK())
	assert.Equal(t, MsgFileTooLarge, oversized.FieldErrors[0].Message)
	assert.Empty(t, oversized.FieldErrors[0].Field)

	ok := Validate(fields, nil, &FileMeta{Name: "ok.jpg", Size: 4 * 1024 * 1024})
	assert.True(t, ok.OK())
	assert.Empty(t, ok.Summary)
}

func TestValidatePassesCleanSubmission(t *testing.T) {
	fields := []models.FieldDescriptor{
		{Name: "name", Type: models.FieldTypeText, Required: true},
		{Name: "email", Type: models.FieldTypeEmail, Required: true},
		{Name: "phone", Type: models.FieldTypeTel, Required: true},
	}
	values := map[string]string{
		"name":  "Alice",
		"email": "a@b.com",
		"phone": "9876543210",
	}

	result := Validate(fields, values, &FileMeta{Name: "pic.png", Size: 1024})
	assert.True(t, result.OK())
	assert.Empty(t, result.FieldErrors)
}
