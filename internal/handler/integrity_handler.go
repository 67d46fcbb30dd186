package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coaching-api/internal/models"
	"github.com/noah-isme/coaching-api/pkg/response"
)

type integrityService interface {
	Scan(ctx context.Context, fresh bool) (*models.IntegrityReport, error)
	Repair(ctx context.Context) (*models.RepairResult, error)
	RepairAsync(ctx context.Context) (*models.RepairJob, error)
	RepairJob(id string) (*models.RepairJob, error)
}

// IntegrityHandler exposes the admin consistency checker.
type IntegrityHandler struct {
	integrity integrityService
}

// NewIntegrityHandler constructs IntegrityHandler.
func NewIntegrityHandler(integrity integrityService) *IntegrityHandler {
	return &IntegrityHandler{integrity: integrity}
}

// Scan godoc
// @Summary Scan roster consistency
// @Tags Integrity
// @Produce json
// @Param fresh query bool false "Bypass the cached report"
// @Success 200 {object} response.Envelope
// @Router /admin/integrity/scan [get]
func (h *IntegrityHandler) Scan(c *gin.Context) {
	fresh, _ := strconv.ParseBool(c.DefaultQuery("fresh", "false"))
	report, err := h.integrity.Scan(c.Request.Context(), fresh)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Repair godoc
// @Summary Repair one-sided roster links
// @Tags Integrity
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/integrity/repair [post]
func (h *IntegrityHandler) Repair(c *gin.Context) {
	result, err := h.integrity.Repair(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// RepairAsync godoc
// @Summary Queue a repair run
// @Tags Integrity
// @Produce json
// @Success 202 {object} response.Envelope
// @Router /admin/integrity/repair/async [post]
func (h *IntegrityHandler) RepairAsync(c *gin.Context) {
	job, err := h.integrity.RepairAsync(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, job)
}

// RepairStatus godoc
// @Summary Repair run status
// @Tags Integrity
// @Produce json
// @Param jobId path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/integrity/repair/{jobId} [get]
func (h *IntegrityHandler) RepairStatus(c *gin.Context) {
	job, err := h.integrity.RepairJob(c.Param("jobId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}
