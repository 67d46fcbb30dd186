package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coaching-api/internal/dto"
	appErrors "github.com/noah-isme/coaching-api/pkg/errors"
	"github.com/noah-isme/coaching-api/pkg/response"
)

type careerService interface {
	Submit(ctx context.Context, req dto.CareerApplicationRequest, resume dto.UploadFile) (*dto.CareerApplicationView, error)
	List(ctx context.Context) ([]dto.CareerApplicationView, error)
}

// CareerHandler exposes the public career form and its admin listing.
type CareerHandler struct {
	careers careerService
}

// NewCareerHandler constructs CareerHandler.
func NewCareerHandler(careers careerService) *CareerHandler {
	return &CareerHandler{careers: careers}
}

// Submit godoc
// @Summary Submit career application
// @Tags Careers
// @Accept multipart/form-data
// @Produce json
// @Param name formData string true "Name"
// @Param phone formData string true "Phone"
// @Param email formData string true "Email"
// @Param address formData string true "Address"
// @Param resume formData file true "Resume (pdf or word)"
// @Success 201 {object} response.Envelope
// @Router /career-applications [post]
func (h *CareerHandler) Submit(c *gin.Context) {
	var req dto.CareerApplicationRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid form"))
		return
	}
	resume, closeFile, err := formUpload(c, "resume")
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closeFile()

	view, err := h.careers.Submit(c.Request.Context(), req, resume)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, view)
}

// List godoc
// @Summary List career applications
// @Tags Careers
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /career-applications [get]
func (h *CareerHandler) List(c *gin.Context) {
	items, err := h.careers.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}
