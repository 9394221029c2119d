package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/oneday-labs/intake-api/pkg/errors"
)

// Envelope is the common contract for admin endpoints.
type Envelope struct {
	Data  interface{}      `json:"data,omitempty"`
	Error *appErrors.Error `json:"error,omitempty"`
}

// SubmissionEnvelope is the public contract of the submission endpoint.
type SubmissionEnvelope struct {
	Success  bool    `json:"success"`
	Message  string  `json:"message"`
	ImageURL *string `json:"imageUrl,omitempty"`
	Error    string  `json:"error,omitempty"`
}

// JSON sends a success response wrapped in the admin envelope.
func JSON(c *gin.Context, status int, data interface{}) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(status, Envelope{Data: data})
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data)
}

// Error sends an admin error response converting the error to the common structure.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(appErr.Status, Envelope{Error: appErr})
}

// SubmissionSuccess sends the success envelope of POST /submit_form.
func SubmissionSuccess(c *gin.Context, message string, imageURL *string) {
	c.JSON(http.StatusOK, SubmissionEnvelope{
		Success:  true,
		Message:  message,
		ImageURL: imageURL,
	})
}

// SubmissionFailure converts an error into the failure envelope of POST
// /submit_form, passing the original detail through in the error field.
func SubmissionFailure(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	detail := appErr.Code
	if appErr.Err != nil {
		detail = appErr.Err.Error()
	}
	c.JSON(appErr.Status, SubmissionEnvelope{
		Success: false,
		Message: appErr.Message,
		Error:   detail,
	})
}
