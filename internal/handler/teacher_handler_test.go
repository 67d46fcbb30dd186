package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coaching-api/internal/dto"
	"github.com/noah-isme/coaching-api/internal/models"
	"github.com/noah-isme/coaching-api/internal/service"
	appErrors "github.com/noah-isme/coaching-api/pkg/errors"
)

type teacherServiceMock struct {
	listFilter  models.TeacherFilter
	assignedTo  string
	assignReq   dto.AssignStudentRequest
	assignErr   error
	deleteErr   error
	assignCalls int
}

func (m *teacherServiceMock) CreateTeacher(ctx context.Context, req dto.CreateTeacherRequest) (*models.Teacher, error) {
	return &models.Teacher{ID: "t1", Name: req.Name}, nil
}

func (m *teacherServiceMock) UpdateTeacher(ctx context.Context, id string, req dto.UpdateTeacherRequest) (*models.Teacher, error) {
	return &models.Teacher{ID: id}, nil
}

func (m *teacherServiceMock) DeleteTeacher(ctx context.Context, id string) error {
	return m.deleteErr
}

func (m *teacherServiceMock) GetTeacher(ctx context.Context, id string) (*models.TeacherDetail, error) {
	return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
}

func (m *teacherServiceMock) ListTeachers(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, *models.Pagination, error) {
	m.listFilter = filter
	return []models.Teacher{{ID: "t1"}}, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: 1}, nil
}

func (m *teacherServiceMock) ListStudentsByTeacher(ctx context.Context, teacherID string) ([]models.Student, error) {
	return []models.Student{}, nil
}

func (m *teacherServiceMock) AssignStudentToTeacher(ctx context.Context, teacherID string, req dto.AssignStudentRequest) (*models.Teacher, error) {
	m.assignCalls++
	m.assignedTo = teacherID
	m.assignReq = req
	if m.assignErr != nil {
		return nil, m.assignErr
	}
	return &models.Teacher{ID: teacherID}, nil
}

func (m *teacherServiceMock) RemoveStudentFromTeacher(ctx context.Context, teacherID, studentID string) (*models.Teacher, error) {
	return &models.Teacher{ID: teacherID}, nil
}

type exporterMock struct {
	format string
	err    error
}

func (m *exporterMock) ExportRoster(ctx context.Context, teacherID, format string) (*service.ExportFile, error) {
	m.format = format
	if m.err != nil {
		return nil, m.err
	}
	return &service.ExportFile{Filename: "roster-" + teacherID + ".csv", ContentType: "text/csv", Data: []byte("Name\n")}, nil
}

func newContext(method, target string, body *bytes.Buffer, params ...gin.Param) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	if body == nil {
		body = &bytes.Buffer{}
	}
	req, _ := http.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = params
	return c, w
}

func TestTeacherHandlerListParsesQuery(t *testing.T) {
	svc := &teacherServiceMock{}
	handler := NewTeacherHandler(svc, &exporterMock{})

	c, w := newContext(http.MethodGet, "/teachers?search=+ana+&course=IELTS&page=2&limit=5", nil)
	handler.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ana", svc.listFilter.Search)
	assert.Equal(t, "IELTS", svc.listFilter.Course)
	assert.Equal(t, 2, svc.listFilter.Page)
	assert.Equal(t, 5, svc.listFilter.PageSize)
	assert.Contains(t, w.Body.String(), `"pagination"`)
}

func TestTeacherHandlerGetNotFound(t *testing.T) {
	handler := NewTeacherHandler(&teacherServiceMock{}, &exporterMock{})

	c, w := newContext(http.MethodGet, "/teachers/missing", nil, gin.Param{Key: "id", Value: "missing"})
	handler.Get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "teacher not found")
}

func TestTeacherHandlerAssignStudent(t *testing.T) {
	svc := &teacherServiceMock{}
	handler := NewTeacherHandler(svc, &exporterMock{})

	body := bytes.NewBufferString(`{"studentId":"s1","evictPrevious":true}`)
	c, w := newContext(http.MethodPost, "/teachers/t1/assign-student", body, gin.Param{Key: "id", Value: "t1"})
	handler.AssignStudent(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "t1", svc.assignedTo)
	assert.Equal(t, "s1", svc.assignReq.StudentID)
	require.NotNil(t, svc.assignReq.EvictPrevious)
	assert.True(t, *svc.assignReq.EvictPrevious)
}

func TestTeacherHandlerAssignInvalidBody(t *testing.T) {
	svc := &teacherServiceMock{}
	handler := NewTeacherHandler(svc, &exporterMock{})

	c, w := newContext(http.MethodPost, "/teachers/t1/assign-student", bytes.NewBufferString(`{"studentId":`), gin.Param{Key: "id", Value: "t1"})
	handler.AssignStudent(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, svc.assignCalls)
}

func TestTeacherHandlerDeleteServiceError(t *testing.T) {
	handler := NewTeacherHandler(&teacherServiceMock{deleteErr: appErrors.Clone(appErrors.ErrNotFound, "teacher not found")}, &exporterMock{})

	c, w := newContext(http.MethodDelete, "/teachers/t9", nil, gin.Param{Key: "id", Value: "t9"})
	handler.Delete(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTeacherHandlerExportStudents(t *testing.T) {
	exports := &exporterMock{}
	handler := NewTeacherHandler(&teacherServiceMock{}, exports)

	c, w := newContext(http.MethodGet, "/teachers/t1/students/export", nil, gin.Param{Key: "id", Value: "t1"})
	handler.ExportStudents(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "csv", exports.format)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="roster-t1.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "Name\n", w.Body.String())
}

func TestTeacherHandlerExportUnsupportedFormat(t *testing.T) {
	exports := &exporterMock{err: appErrors.Clone(appErrors.ErrValidation, "format must be csv, pdf or xlsx")}
	handler := NewTeacherHandler(&teacherServiceMock{}, exports)

	c, w := newContext(http.MethodGet, "/teachers/t1/students/export?format=doc", nil, gin.Param{Key: "id", Value: "t1"})
	handler.ExportStudents(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "doc", exports.format)
}
