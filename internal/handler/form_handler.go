package handler

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/oneday-labs/intake-api/internal/models"
	"github.com/oneday-labs/intake-api/internal/service"
	appErrors "github.com/oneday-labs/intake-api/pkg/errors"
	"github.com/oneday-labs/intake-api/pkg/response"
)

// formSchemaService is the slice of SchemaService the form handler needs.
type formSchemaService interface {
	Fields(ctx context.Context) ([]models.FieldDescriptor, error)
}

// formSubmissionService runs the submission pipeline.
type formSubmissionService interface {
	Submit(ctx context.Context, input service.SubmissionInput) (*service.SubmissionResult, error)
}

// FormHandler serves the public form endpoints.
type FormHandler struct {
	schema      formSchemaService
	submissions formSubmissionService
	maxBodySize int64
	logger      *zap.Logger
}

// NewFormHandler creates a new handler.
func NewFormHandler(schema formSchemaService, submissions formSubmissionService, maxFileSize int64, logger *zap.Logger) *FormHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxFileSize <= 0 {
		maxFileSize = 5 * 1024 * 1024
	}
	// leave headroom for the text parts next to the file part
	return &FormHandler{
		schema:      schema,
		submissions: submissions,
		maxBodySize: maxFileSize + 1024*1024,
		logger:      logger,
	}
}

// GetFormFields godoc
// @Summary List form fields
// @Description Returns the ordered field descriptors driving the form
// @Tags Form
// @Produce json
// @Success 200 {array} models.FieldDescriptor
// @Failure 500 {object} response.SubmissionEnvelope
// @Router /get_form_fields [get]
func (h *FormHandler) GetFormFields(c *gin.Context) {
	fields, err := h.schema.Fields(c.Request.Context())
	if err != nil {
		response.SubmissionFailure(c, err)
		return
	}
	// bare array, no envelope; consumed directly by the page script
	c.JSON(http.StatusOK, fields)
}

// SubmitForm godoc
// @Summary Submit the form
// @Description Accepts the multipart submission and stores it across the sinks
// @Tags Form
// @Accept multipart/form-data
// @Produce json
// @Success 200 {object} response.SubmissionEnvelope
// @Failure 400 {object} response.SubmissionEnvelope
// @Failure 409 {object} response.SubmissionEnvelope
// @Failure 500 {object} response.SubmissionEnvelope
// @Router /submit_form [post]
func (h *FormHandler) SubmitForm(c *gin.Context) {
	if c.Request.ContentLength > h.maxBodySize {
		response.SubmissionFailure(c, appErrors.ErrFileTooLarge)
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodySize)

	if err := c.Request.ParseMultipartForm(h.maxBodySize); err != nil {
		h.logger.Warn("failed to parse multipart form", zap.Error(err))
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.SubmissionFailure(c, appErrors.ErrFileTooLarge)
			return
		}
		response.SubmissionFailure(c, appErrors.WrapAs(err, appErrors.ErrValidation))
		return
	}
	form := c.Request.MultipartForm
	defer form.RemoveAll() //nolint:errcheck

	values := make(map[string]string, len(form.Value))
	for name, fieldValues := range form.Value {
		if len(fieldValues) > 0 {
			values[name] = fieldValues[0]
		}
	}

	input := service.SubmissionInput{
		Values:         values,
		IdempotencyKey: c.GetHeader("X-Idempotency-Key"),
	}
	if input.IdempotencyKey == "" {
		input.IdempotencyKey = values["idempotency_key"]
	}

	if file, header := firstFile(form); file != nil {
		defer file.Close() //nolint:errcheck
		input.File = &service.UploadedFile{
			Name:        header.Filename,
			Size:        header.Size,
			ContentType: header.Header.Get("Content-Type"),
			Reader:      file,
		}
	}

	result, err := h.submissions.Submit(c.Request.Context(), input)
	if err != nil {
		response.SubmissionFailure(c, err)
		return
	}
	response.SubmissionSuccess(c, result.Message, result.ImageURL)
}

// firstFile picks the first uploaded file by part name order. The form
// carries at most one file field.
func firstFile(form *multipart.Form) (multipart.File, *multipart.FileHeader) {
	names := make([]string, 0, len(form.File))
	for name := range form.File {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		headers := form.File[name]
		if len(headers) == 0 {
			continue
		}
		header := headers[0]
		if header.Filename == "" && header.Size == 0 {
			continue
		}
		file, err := header.Open()
		if err != nil {
			continue
		}
		return file, header
	}
	return nil, nil
}
