package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/oneday-labs/intake-api/internal/dto"
	"github.com/oneday-labs/intake-api/internal/models"
	"github.com/oneday-labs/intake-api/internal/service"
	appErrors "github.com/oneday-labs/intake-api/pkg/errors"
	"github.com/oneday-labs/intake-api/pkg/response"
)

type adminLogService interface {
	List(ctx context.Context, limit, offset int) ([]models.EntryLogRow, error)
	Count(ctx context.Context) (int64, error)
}

type adminSchemaService interface {
	Replace(ctx context.Context, req dto.ReplaceFormFieldsRequest) error
}

type adminExportService interface {
	Export(ctx context.Context, format string) (*service.ExportFile, error)
}

// AdminHandler serves the operator endpoints behind the JWT guard.
type AdminHandler struct {
	log     adminLogService
	schema  adminSchemaService
	exports adminExportService
	logger  *zap.Logger
}

// NewAdminHandler creates a new handler.
func NewAdminHandler(log adminLogService, schema adminSchemaService, exports adminExportService, logger *zap.Logger) *AdminHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminHandler{log: log, schema: schema, exports: exports, logger: logger}
}

// ListSubmissions godoc
// @Summary List submissions
// @Description Page over the submission log, newest first
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /admin/submissions [get]
func (h *AdminHandler) ListSubmissions(c *gin.Context) {
	var query dto.SubmissionListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid pagination"))
		return
	}

	rows, err := h.log.List(c.Request.Context(), query.Limit, query.Offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	total, err := h.log.Count(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	claims := claimsFromContext(c)
	if claims != nil {
		h.logger.Debug("submissions listed", zap.String("operator", claims.Email), zap.Int("rows", len(rows)))
	}

	response.JSON(c, http.StatusOK, gin.H{
		"submissions": rows,
		"total":       total,
		"limit":       query.Limit,
		"offset":      query.Offset,
	})
}

// ExportSubmissions godoc
// @Summary Export submissions
// @Description Download the whole submission log as CSV or PDF
// @Tags Admin
// @Security BearerAuth
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Failure 401 {object} response.Envelope
// @Router /admin/submissions/export [get]
func (h *AdminHandler) ExportSubmissions(c *gin.Context) {
	file, err := h.exports.Export(c.Request.Context(), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Content)
}

// ReplaceFormFields godoc
// @Summary Replace the form schema
// @Description Swap the whole ordered field schema in one call
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body dto.ReplaceFormFieldsRequest true "New schema"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /admin/form_fields [put]
func (h *AdminHandler) ReplaceFormFields(c *gin.Context) {
	var req dto.ReplaceFormFieldsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid schema payload"))
		return
	}

	if err := h.schema.Replace(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"updated": len(req.Fields)})
}
