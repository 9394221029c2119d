package handler

import (
	"mime"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appErrors "github.com/oneday-labs/intake-api/pkg/errors"
	"github.com/oneday-labs/intake-api/pkg/response"
	"github.com/oneday-labs/intake-api/pkg/storage"
)

// UploadHandler serves locally stored objects through signed URLs. Only
// mounted when the filesystem storage driver is active.
type UploadHandler struct {
	store  *storage.LocalStorage
	signer *storage.SignedURLSigner
	logger *zap.Logger
}

// NewUploadHandler creates a new handler.
func NewUploadHandler(store *storage.LocalStorage, signer *storage.SignedURLSigner, logger *zap.Logger) *UploadHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UploadHandler{store: store, signer: signer, logger: logger}
}

// Download godoc
// @Summary Download an uploaded object
// @Description Serve a stored image; the token query parameter carries the signature
// @Tags Form
// @Produce octet-stream
// @Param name path string true "Object name"
// @Param token query string true "Signed access token"
// @Success 200 {file} file
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /uploads/{name} [get]
func (h *UploadHandler) Download(c *gin.Context) {
	requested := c.Param("name")

	objectName, _, err := h.signer.Parse(c.Query("token"))
	if err != nil || objectName != requested {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	file, err := h.store.Open(objectName)
	if err != nil {
		h.logger.Warn("stored object missing", zap.String("object", objectName), zap.Error(err))
		response.Error(c, appErrors.ErrNotFound)
		return
	}
	defer file.Close() //nolint:errcheck

	contentType := mime.TypeByExtension(filepath.Ext(objectName))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.ErrNotFound)
		return
	}

	c.Header("Content-Type", contentType)
	http.ServeContent(c.Writer, c.Request, objectName, info.ModTime(), file)
}
