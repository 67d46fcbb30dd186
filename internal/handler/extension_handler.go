package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coaching-api/internal/dto"
	"github.com/noah-isme/coaching-api/internal/models"
	"github.com/noah-isme/coaching-api/pkg/response"
)

type extensionService interface {
	Create(ctx context.Context, req dto.CreateExtensionRequest) (*models.ClassExtensionRequest, error)
	List(ctx context.Context) ([]models.ClassExtensionRequest, error)
	Approve(ctx context.Context, id string) (*models.ClassExtensionRequest, error)
	Reject(ctx context.Context, id string) (*models.ClassExtensionRequest, error)
}

// ExtensionHandler exposes class extension request endpoints.
type ExtensionHandler struct {
	requests extensionService
}

// NewExtensionHandler constructs ExtensionHandler.
func NewExtensionHandler(requests extensionService) *ExtensionHandler {
	return &ExtensionHandler{requests: requests}
}

// Create godoc
// @Summary Request extra classes
// @Tags Extension Requests
// @Accept json
// @Produce json
// @Param payload body dto.CreateExtensionRequest true "Extension payload"
// @Success 201 {object} response.Envelope
// @Router /class-extension-requests [post]
func (h *ExtensionHandler) Create(c *gin.Context) {
	var req dto.CreateExtensionRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	req.TeacherID = scopedID(c, models.RoleTeacher, req.TeacherID)
	created, err := h.requests.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created)
}

// List godoc
// @Summary List extension requests
// @Tags Extension Requests
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /class-extension-requests [get]
func (h *ExtensionHandler) List(c *gin.Context) {
	items, err := h.requests.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Approve godoc
// @Summary Approve extension request
// @Tags Extension Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /class-extension-requests/{id}/approve [put]
func (h *ExtensionHandler) Approve(c *gin.Context) {
	item, err := h.requests.Approve(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Reject godoc
// @Summary Reject extension request
// @Tags Extension Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /class-extension-requests/{id}/reject [put]
func (h *ExtensionHandler) Reject(c *gin.Context) {
	item, err := h.requests.Reject(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}
