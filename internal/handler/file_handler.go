package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coaching-api/internal/service"
	"github.com/noah-isme/coaching-api/pkg/response"
)

type fileOpener interface {
	Open(token string) (*service.FileDownload, error)
}

// FileHandler serves signed downloads.
type FileHandler struct {
	files fileOpener
}

// NewFileHandler constructs FileHandler.
func NewFileHandler(files fileOpener) *FileHandler {
	return &FileHandler{files: files}
}

// Download godoc
// @Summary Download stored file
// @Tags Files
// @Produce octet-stream
// @Param token query string true "Signed download token"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /files/download [get]
func (h *FileHandler) Download(c *gin.Context) {
	download, err := h.files.Open(c.Query("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.File.Close() //nolint:errcheck

	headers := map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", download.Filename),
		"Cache-Control":       "private, no-store",
	}
	c.DataFromReader(http.StatusOK, download.Size, download.MimeType, download.File, headers)
}
