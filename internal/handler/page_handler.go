package handler

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/oneday-labs/intake-api/internal/formkit"
	"github.com/oneday-labs/intake-api/internal/models"
	"github.com/oneday-labs/intake-api/web"
)

// PageHandler serves the HTML pages wrapping the intake form.
type PageHandler struct {
	schema   formSchemaService
	renderer *formkit.Renderer
	pages    *template.Template
	logger   *zap.Logger
}

// NewPageHandler parses the embedded page templates.
func NewPageHandler(schema formSchemaService, logger *zap.Logger) (*PageHandler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	renderer, err := formkit.NewRenderer()
	if err != nil {
		return nil, err
	}
	pages, err := template.ParseFS(web.FS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &PageHandler{schema: schema, renderer: renderer, pages: pages, logger: logger}, nil
}

// Index serves the form page. A failing schema fetch still renders the
// page, with an empty form and no retry.
func (h *PageHandler) Index(c *gin.Context) {
	fields, err := h.schema.Fields(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to load form schema for page", zap.Error(err))
		fields = []models.FieldDescriptor{}
	}

	formHTML, err := h.renderer.RenderForm(fields)
	if err != nil {
		h.logger.Error("failed to render form", zap.Error(err))
		c.String(http.StatusInternalServerError, "form unavailable")
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := h.pages.ExecuteTemplate(c.Writer, "index.html", gin.H{"Form": formHTML}); err != nil {
		h.logger.Error("failed to execute index template", zap.Error(err))
	}
}

// Success serves the post-submission page. The page script fills in the
// submitted values from the query string and the stored image URL.
func (h *PageHandler) Success(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := h.pages.ExecuteTemplate(c.Writer, "success.html", nil); err != nil {
		h.logger.Error("failed to execute success template", zap.Error(err))
	}
}
