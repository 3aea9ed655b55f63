package handlers

import (
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"clipstream_backend/internal/logger"
	"clipstream_backend/internal/storage"
	"clipstream_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// FileHandler раздает сохраненные файлы (актуален для local-хранилища;
// S3/R2 отдают контент по прямым URL)
type FileHandler struct {
	*BaseHandler
	storage storage.Storage
}

func NewFileHandler(base *BaseHandler, st storage.Storage) *FileHandler {
	return &FileHandler{
		BaseHandler: base,
		storage:     st,
	}
}

func (h *FileHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/files/*path", h.ServeFile)
}

func (h *FileHandler) ServeFile(c *gin.Context) {
	path := strings.TrimPrefix(c.Param("path"), "/")
	if path == "" || strings.Contains(path, "..") {
		h.HandleServiceError(c, apperrors.NewBadRequestError("Invalid file path"))
		return
	}

	ctx := c.Request.Context()

	exists, err := h.storage.Exists(ctx, path)
	if err != nil {
		h.HandleServiceError(c, apperrors.InternalError(err))
		return
	}
	if !exists {
		h.HandleServiceError(c, apperrors.ErrNotFound(nil).WithDetails("file not found"))
		return
	}

	reader, err := h.storage.Get(ctx, path)
	if err != nil {
		h.HandleServiceError(c, apperrors.InternalError(err))
		return
	}
	defer reader.Close()

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)

	if _, err := io.Copy(c.Writer, reader); err != nil {
		logger.CtxWithError(ctx, "failed to stream file", err, "path", path)
	}
}
