package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coaching-api/internal/dto"
	"github.com/noah-isme/coaching-api/internal/models"
	appErrors "github.com/noah-isme/coaching-api/pkg/errors"
	"github.com/noah-isme/coaching-api/pkg/response"
)

type courseworkService interface {
	UploadAssignment(ctx context.Context, meta dto.UploadAssignmentRequest, upload dto.UploadFile) (*dto.AssignmentView, error)
	ListAssignments(ctx context.Context, filter models.AssignmentFilter) ([]dto.AssignmentView, error)
	ListAssignmentsForStudent(ctx context.Context, course, batchID string) ([]dto.AssignmentView, error)
	SubmitProject(ctx context.Context, meta dto.SubmitProjectRequest, upload dto.UploadFile) (*dto.ProjectView, error)
	ListProjects(ctx context.Context, course, teacherID string) ([]dto.ProjectView, error)
	ScoreProject(ctx context.Context, req dto.ScoreProjectRequest) (*models.StudentProject, error)
}

// CourseworkHandler exposes assignment and project endpoints.
type CourseworkHandler struct {
	coursework courseworkService
}

// NewCourseworkHandler constructs CourseworkHandler.
func NewCourseworkHandler(coursework courseworkService) *CourseworkHandler {
	return &CourseworkHandler{coursework: coursework}
}

// UploadAssignment godoc
// @Summary Upload assignment
// @Tags Coursework
// @Accept multipart/form-data
// @Produce json
// @Param course formData string true "Course"
// @Param teacherId formData string true "Teacher ID"
// @Param batchId formData string true "Batch (class) ID"
// @Param file formData file true "Assignment document"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /teachers/assignments [post]
func (h *CourseworkHandler) UploadAssignment(c *gin.Context) {
	var meta dto.UploadAssignmentRequest
	if err := c.ShouldBind(&meta); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid form"))
		return
	}
	meta.TeacherID = scopedID(c, models.RoleTeacher, meta.TeacherID)
	upload, closeFile, err := formUpload(c, "file")
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closeFile()

	view, err := h.coursework.UploadAssignment(c.Request.Context(), meta, upload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, view)
}

// ListAssignments godoc
// @Summary List assignments for a batch
// @Tags Coursework
// @Produce json
// @Param course query string true "Course"
// @Param batchId query string true "Batch ID"
// @Param teacherId query string false "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/assignments [get]
func (h *CourseworkHandler) ListAssignments(c *gin.Context) {
	filter := models.AssignmentFilter{
		Course:    c.Query("course"),
		BatchID:   c.Query("batchId"),
		TeacherID: c.Query("teacherId"),
	}
	views, err := h.coursework.ListAssignments(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, views, nil)
}

// ListForStudent godoc
// @Summary List assignments visible to students
// @Tags Coursework
// @Produce json
// @Param course query string false "Course"
// @Param batchId query string false "Batch ID"
// @Success 200 {object} response.Envelope
// @Router /students/assignments [get]
func (h *CourseworkHandler) ListForStudent(c *gin.Context) {
	views, err := h.coursework.ListAssignmentsForStudent(c.Request.Context(), c.Query("course"), c.Query("batchId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, views, nil)
}

// SubmitProject godoc
// @Summary Submit project
// @Tags Coursework
// @Accept multipart/form-data
// @Produce json
// @Param course formData string true "Course"
// @Param teacherId formData string true "Teacher ID"
// @Param studentId formData string true "Student ID"
// @Param file formData file true "Project file"
// @Success 201 {object} response.Envelope
// @Router /teachers/assignments/submit [post]
func (h *CourseworkHandler) SubmitProject(c *gin.Context) {
	var meta dto.SubmitProjectRequest
	if err := c.ShouldBind(&meta); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid form"))
		return
	}
	meta.StudentID = scopedID(c, models.RoleStudent, meta.StudentID)
	upload, closeFile, err := formUpload(c, "file")
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closeFile()

	view, err := h.coursework.SubmitProject(c.Request.Context(), meta, upload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, view)
}

// ListProjects godoc
// @Summary List submitted projects
// @Tags Coursework
// @Produce json
// @Param course query string true "Course"
// @Param teacherId query string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/assignments/projects [get]
func (h *CourseworkHandler) ListProjects(c *gin.Context) {
	views, err := h.coursework.ListProjects(c.Request.Context(), c.Query("course"), c.Query("teacherId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, views, nil)
}

// ScoreProject godoc
// @Summary Score project
// @Tags Coursework
// @Accept json
// @Produce json
// @Param payload body dto.ScoreProjectRequest true "Score payload"
// @Success 200 {object} response.Envelope
// @Router /teachers/assignments/score [post]
func (h *CourseworkHandler) ScoreProject(c *gin.Context) {
	var req dto.ScoreProjectRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	project, err := h.coursework.ScoreProject(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, project, nil)
}
