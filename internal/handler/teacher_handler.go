package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coaching-api/internal/dto"
	"github.com/noah-isme/coaching-api/internal/models"
	"github.com/noah-isme/coaching-api/internal/service"
	"github.com/noah-isme/coaching-api/pkg/response"
)

type teacherService interface {
	CreateTeacher(ctx context.Context, req dto.CreateTeacherRequest) (*models.Teacher, error)
	UpdateTeacher(ctx context.Context, id string, req dto.UpdateTeacherRequest) (*models.Teacher, error)
	DeleteTeacher(ctx context.Context, id string) error
	GetTeacher(ctx context.Context, id string) (*models.TeacherDetail, error)
	ListTeachers(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, *models.Pagination, error)
	ListStudentsByTeacher(ctx context.Context, teacherID string) ([]models.Student, error)
	AssignStudentToTeacher(ctx context.Context, teacherID string, req dto.AssignStudentRequest) (*models.Teacher, error)
	RemoveStudentFromTeacher(ctx context.Context, teacherID, studentID string) (*models.Teacher, error)
}

type rosterExporter interface {
	ExportRoster(ctx context.Context, teacherID, format string) (*service.ExportFile, error)
}

// TeacherHandler exposes teacher and roster endpoints.
type TeacherHandler struct {
	teachers teacherService
	exports  rosterExporter
}

// NewTeacherHandler constructs TeacherHandler.
func NewTeacherHandler(teachers teacherService, exports rosterExporter) *TeacherHandler {
	return &TeacherHandler{teachers: teachers, exports: exports}
}

// List godoc
// @Summary List teachers
// @Tags Teachers
// @Produce json
// @Param search query string false "Search by name, phone or email"
// @Param course query string false "Filter by course"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /teachers [get]
func (h *TeacherHandler) List(c *gin.Context) {
	var filter models.TeacherFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
	filter.Course = c.Query("course")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	teachers, pagination, err := h.teachers.ListTeachers(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teachers, pagination)
}

// Get godoc
// @Summary Get teacher with resolved roster
// @Tags Teachers
// @Produce json
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /teachers/{id} [get]
func (h *TeacherHandler) Get(c *gin.Context) {
	teacher, err := h.teachers.GetTeacher(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teacher, nil)
}

// Create godoc
// @Summary Register teacher
// @Tags Teachers
// @Accept json
// @Produce json
// @Param payload body dto.CreateTeacherRequest true "Teacher payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /teachers [post]
func (h *TeacherHandler) Create(c *gin.Context) {
	var req dto.CreateTeacherRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	teacher, err := h.teachers.CreateTeacher(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, teacher)
}

// Update godoc
// @Summary Update teacher
// @Tags Teachers
// @Accept json
// @Produce json
// @Param id path string true "Teacher ID"
// @Param payload body dto.UpdateTeacherRequest true "Teacher payload"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id} [put]
func (h *TeacherHandler) Update(c *gin.Context) {
	var req dto.UpdateTeacherRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	teacher, err := h.teachers.UpdateTeacher(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teacher, nil)
}

// Delete godoc
// @Summary Delete teacher
// @Description Students that pointed at the teacher are left unassigned
// @Tags Teachers
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id} [delete]
func (h *TeacherHandler) Delete(c *gin.Context) {
	if err := h.teachers.DeleteTeacher(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "teacher deleted", nil)
}

// ListStudents godoc
// @Summary List a teacher's students
// @Tags Teachers
// @Produce json
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/students [get]
func (h *TeacherHandler) ListStudents(c *gin.Context) {
	students, err := h.teachers.ListStudentsByTeacher(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, nil)
}

// AssignStudent godoc
// @Summary Add student to roster
// @Tags Roster
// @Accept json
// @Produce json
// @Param id path string true "Teacher ID"
// @Param payload body dto.AssignStudentRequest true "Assignment payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /teachers/{id}/assign-student [post]
func (h *TeacherHandler) AssignStudent(c *gin.Context) {
	var req dto.AssignStudentRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	teacher, err := h.teachers.AssignStudentToTeacher(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "student assigned", teacher)
}

// RemoveStudent godoc
// @Summary Remove student from roster
// @Tags Roster
// @Produce json
// @Param id path string true "Teacher ID"
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/remove-student/{studentId} [delete]
func (h *TeacherHandler) RemoveStudent(c *gin.Context) {
	teacher, err := h.teachers.RemoveStudentFromTeacher(c.Request.Context(), c.Param("id"), c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "student removed", teacher)
}

// ExportStudents godoc
// @Summary Export roster
// @Tags Teachers
// @Produce octet-stream
// @Param id path string true "Teacher ID"
// @Param format query string false "csv, pdf or xlsx" default(csv)
// @Success 200 {file} file
// @Router /teachers/{id}/students/export [get]
func (h *TeacherHandler) ExportStudents(c *gin.Context) {
	file, err := h.exports.ExportRoster(c.Request.Context(), c.Param("id"), c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, err)
		return
	}
	sendExport(c, file)
}

func sendExport(c *gin.Context, file *service.ExportFile) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
