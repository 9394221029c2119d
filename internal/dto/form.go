package dto

// FormFieldInput is one schema row submitted through the admin API.
type FormFieldInput struct {
	Name     string   `json:"name" validate:"required"`
	Type     string   `json:"type"`
	Required bool     `json:"required"`
	Options  []string `json:"options"`
}

// ReplaceFormFieldsRequest swaps the whole field schema in one call.
type ReplaceFormFieldsRequest struct {
	Fields []FormFieldInput `json:"fields" validate:"required,min=1,dive"`
}

// SubmissionListQuery captures pagination for the admin listing.
type SubmissionListQuery struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}
