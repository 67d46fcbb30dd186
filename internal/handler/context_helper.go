package handler

import (
	"bytes"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coaching-api/internal/dto"
	"github.com/noah-isme/coaching-api/internal/middleware"
	"github.com/noah-isme/coaching-api/internal/models"
	appErrors "github.com/noah-isme/coaching-api/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		return nil
	}
	return claims
}

// scopedID pins an identifier to the caller when the caller holds role.
// Admins and other roles keep the requested value.
func scopedID(c *gin.Context, role models.UserRole, requested string) string {
	if claims := claimsFromContext(c); claims != nil && claims.Role == role {
		return claims.UserID
	}
	return requested
}

func bindJSON(c *gin.Context, dst interface{}) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload")
	}
	return nil
}

// formUpload reads a multipart file field into an UploadFile. The returned
// closer must be called once the upload is consumed.
func formUpload(c *gin.Context, field string) (dto.UploadFile, func(), error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return dto.UploadFile{}, nil, appErrors.Clone(appErrors.ErrValidation, field+" is required")
	}
	src, err := fileHeader.Open()
	if err != nil {
		return dto.UploadFile{}, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file")
	}
	closer := func() { src.Close() } //nolint:errcheck

	reader, ok := src.(io.ReadSeeker)
	if !ok {
		buf, readErr := io.ReadAll(src)
		if readErr != nil {
			closer()
			return dto.UploadFile{}, nil, appErrors.Wrap(readErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to buffer file")
		}
		reader = bytes.NewReader(buf)
	}
	return dto.UploadFile{
		Name:     fileHeader.Filename,
		MimeType: fileHeader.Header.Get("Content-Type"),
		Size:     fileHeader.Size,
		Content:  reader,
	}, closer, nil
}
