package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coaching-api/internal/dto"
	"github.com/noah-isme/coaching-api/internal/models"
	"github.com/noah-isme/coaching-api/pkg/response"
)

type classService interface {
	CreateRecurringClass(ctx context.Context, teacherID string, req dto.CreateClassRequest) (*models.Class, error)
	CreateSession(ctx context.Context, req dto.CreateClassRequest) (*models.Class, error)
	ListClassesForTeacher(ctx context.Context, teacherID string) ([]models.Class, error)
	ListClasses(ctx context.Context, filter models.ClassFilter) ([]models.Class, error)
	GetClass(ctx context.Context, id string) (*models.Class, error)
	UpdateClass(ctx context.Context, id string, req dto.UpdateClassRequest) (*models.Class, error)
	SetLive(ctx context.Context, id string, req dto.SetLiveRequest, caller *models.JWTClaims) (*models.Class, error)
	DeleteClass(ctx context.Context, id string) error
}

// ClassHandler exposes class scheduling endpoints.
type ClassHandler struct {
	classes classService
}

// NewClassHandler constructs ClassHandler.
func NewClassHandler(classes classService) *ClassHandler {
	return &ClassHandler{classes: classes}
}

// CreateForTeacher godoc
// @Summary Create recurring class for teacher
// @Tags Classes
// @Accept json
// @Produce json
// @Param id path string true "Teacher ID"
// @Param payload body dto.CreateClassRequest true "Class payload"
// @Success 201 {object} response.Envelope
// @Router /teachers/{id}/classes [post]
func (h *ClassHandler) CreateForTeacher(c *gin.Context) {
	var req dto.CreateClassRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	class, err := h.classes.CreateRecurringClass(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, class)
}

// ListForTeacher godoc
// @Summary List a teacher's classes
// @Tags Classes
// @Produce json
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/classes [get]
func (h *ClassHandler) ListForTeacher(c *gin.Context) {
	classes, err := h.classes.ListClassesForTeacher(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classes, nil)
}

// List godoc
// @Summary List classes
// @Tags Classes
// @Produce json
// @Param kind query string false "template or session"
// @Param teacherId query string false "Teacher filter"
// @Param course query string false "Course filter"
// @Success 200 {object} response.Envelope
// @Router /classes [get]
func (h *ClassHandler) List(c *gin.Context) {
	filter := models.ClassFilter{
		TeacherID: c.Query("teacherId"),
		Course:    c.Query("course"),
		Kind:      models.ClassKind(c.Query("kind")),
	}
	classes, err := h.classes.ListClasses(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classes, nil)
}

// Create godoc
// @Summary Create class
// @Description Creates a one-off session under a recurring template
// @Tags Classes
// @Accept json
// @Produce json
// @Param payload body dto.CreateClassRequest true "Class payload"
// @Success 201 {object} response.Envelope
// @Router /classes [post]
func (h *ClassHandler) Create(c *gin.Context) {
	var req dto.CreateClassRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	class, err := h.classes.CreateSession(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, class)
}

// Get godoc
// @Summary Get class
// @Tags Classes
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id} [get]
func (h *ClassHandler) Get(c *gin.Context) {
	class, err := h.classes.GetClass(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class, nil)
}

// Update godoc
// @Summary Update class
// @Tags Classes
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param payload body dto.UpdateClassRequest true "Class payload"
// @Success 200 {object} response.Envelope
// @Router /classes/{id} [put]
func (h *ClassHandler) Update(c *gin.Context) {
	var req dto.UpdateClassRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	class, err := h.classes.UpdateClass(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class, nil)
}

// SetLive godoc
// @Summary Toggle live session
// @Tags Classes
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param payload body dto.SetLiveRequest true "Live payload"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/live [patch]
func (h *ClassHandler) SetLive(c *gin.Context) {
	var req dto.SetLiveRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	class, err := h.classes.SetLive(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class, nil)
}

// Delete godoc
// @Summary Delete class
// @Tags Classes
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id} [delete]
func (h *ClassHandler) Delete(c *gin.Context) {
	if err := h.classes.DeleteClass(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "class deleted", nil)
}
