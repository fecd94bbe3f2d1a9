package handlers

import (
	"net/http"
	"path/filepath"

	"cloud.google.com/go/storage"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/quicktalk/quicktalk/pkg/helpers"
	"github.com/quicktalk/quicktalk/pkg/response"
)

type MediaHandler struct {
	GCS    *storage.Client
	Bucket string
	Logger *logrus.Logger
}

func NewMediaHandler(gcs *storage.Client, bucket string, logger *logrus.Logger) *MediaHandler {
	return &MediaHandler{GCS: gcs, Bucket: bucket, Logger: logger}
}

// Upload POST /api/media/upload (multipart form, field "file")
func (h *MediaHandler) Upload(c *gin.Context) {
	if h.GCS == nil || h.Bucket == "" {
		response.Error(c, http.StatusServiceUnavailable, "media storage not configured", nil)
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "missing file", nil)
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "unreadable file", nil)
		return
	}
	defer func() { _ = f.Close() }()

	objectPath := filepath.ToSlash(filepath.Join("media", uuid.NewString()+filepath.Ext(fh.Filename)))
	contentType := fh.Header.Get("Content-Type")
	url, err := helpers.UploadObject(c.Request.Context(), h.GCS, h.Bucket, objectPath, contentType, f)
	if err != nil {
		h.Logger.WithError(err).Error("media upload failed")
		response.Error(c, http.StatusInternalServerError, "upload failed", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"url": url}, "uploaded")
}
