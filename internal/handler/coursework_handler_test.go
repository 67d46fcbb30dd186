package handler

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coaching-api/internal/dto"
	"github.com/noah-isme/coaching-api/internal/middleware"
	"github.com/noah-isme/coaching-api/internal/models"
	"github.com/noah-isme/coaching-api/internal/service"
	appErrors "github.com/noah-isme/coaching-api/pkg/errors"
)

type courseworkServiceMock struct {
	uploadMeta  dto.UploadAssignmentRequest
	submitMeta  dto.SubmitProjectRequest
	fileName    string
	fileBody    []byte
	listFilter  models.AssignmentFilter
	uploadCalls int
}

func (m *courseworkServiceMock) UploadAssignment(ctx context.Context, meta dto.UploadAssignmentRequest, upload dto.UploadFile) (*dto.AssignmentView, error) {
	m.uploadCalls++
	m.uploadMeta = meta
	m.fileName = upload.Name
	m.fileBody, _ = io.ReadAll(upload.Content)
	return &dto.AssignmentView{Assignment: models.Assignment{ID: "a1", Course: meta.Course}}, nil
}

func (m *courseworkServiceMock) ListAssignments(ctx context.Context, filter models.AssignmentFilter) ([]dto.AssignmentView, error) {
	m.listFilter = filter
	return []dto.AssignmentView{}, nil
}

func (m *courseworkServiceMock) ListAssignmentsForStudent(ctx context.Context, course, batchID string) ([]dto.AssignmentView, error) {
	m.listFilter = models.AssignmentFilter{Course: course, BatchID: batchID}
	return []dto.AssignmentView{}, nil
}

func (m *courseworkServiceMock) SubmitProject(ctx context.Context, meta dto.SubmitProjectRequest, upload dto.UploadFile) (*dto.ProjectView, error) {
	m.submitMeta = meta
	return &dto.ProjectView{StudentProject: models.StudentProject{ID: "p1"}}, nil
}

func (m *courseworkServiceMock) ListProjects(ctx context.Context, course, teacherID string) ([]dto.ProjectView, error) {
	return nil, appErrors.Clone(appErrors.ErrValidation, "course and teacherId are required")
}

func (m *courseworkServiceMock) ScoreProject(ctx context.Context, req dto.ScoreProjectRequest) (*models.StudentProject, error) {
	return &models.StudentProject{ID: req.ProjectID, Score: req.Score}, nil
}

func multipartContext(t *testing.T, target string, fields map[string]string, fileField, fileName string, content []byte) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if fileField != "" {
		part, err := writer.CreateFormFile(fileField, fileName)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.Request = req
	return c, w
}

func TestCourseworkHandlerUploadAssignment(t *testing.T) {
	svc := &courseworkServiceMock{}
	handler := NewCourseworkHandler(svc)

	c, w := multipartContext(t, "/teachers/assignments",
		map[string]string{"course": "IELTS", "teacherId": "t1", "batchId": "c1"},
		"file", "week1.pdf", []byte("%PDF-1.4 body"))
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin", Role: models.RoleAdmin})
	handler.UploadAssignment(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, dto.UploadAssignmentRequest{Course: "IELTS", TeacherID: "t1", BatchID: "c1"}, svc.uploadMeta)
	assert.Equal(t, "week1.pdf", svc.fileName)
	assert.Equal(t, []byte("%PDF-1.4 body"), svc.fileBody)
}

func TestCourseworkHandlerUploadPinsTeacher(t *testing.T) {
	svc := &courseworkServiceMock{}
	handler := NewCourseworkHandler(svc)

	c, w := multipartContext(t, "/teachers/assignments",
		map[string]string{"course": "IELTS", "teacherId": "someone-else", "batchId": "c1"},
		"file", "week1.pdf", []byte("%PDF-1.4"))
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "t1", Role: models.RoleTeacher})
	handler.UploadAssignment(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "t1", svc.uploadMeta.TeacherID)
}

func TestCourseworkHandlerUploadMissingFile(t *testing.T) {
	svc := &courseworkServiceMock{}
	handler := NewCourseworkHandler(svc)

	c, w := multipartContext(t, "/teachers/assignments",
		map[string]string{"course": "IELTS", "teacherId": "t1", "batchId": "c1"}, "", "", nil)
	handler.UploadAssignment(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "file is required")
	assert.Zero(t, svc.uploadCalls)
}

func TestCourseworkHandlerSubmitPinsStudent(t *testing.T) {
	svc := &courseworkServiceMock{}
	handler := NewCourseworkHandler(svc)

	c, w := multipartContext(t, "/teachers/assignments/submit",
		map[string]string{"course": "IELTS", "teacherId": "t1", "studentId": "s2"},
		"file", "essay.pdf", []byte("%PDF-1.4"))
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "s1", Role: models.RoleStudent})
	handler.SubmitProject(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "s1", svc.submitMeta.StudentID)
	assert.Equal(t, "t1", svc.submitMeta.TeacherID)
}

func TestCourseworkHandlerListAssignmentsQuery(t *testing.T) {
	svc := &courseworkServiceMock{}
	handler := NewCourseworkHandler(svc)

	c, w := newContext(http.MethodGet, "/teachers/assignments?course=IELTS&batchId=c1&teacherId=t1", nil)
	handler.ListAssignments(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.AssignmentFilter{Course: "IELTS", BatchID: "c1", TeacherID: "t1"}, svc.listFilter)
}

func TestCourseworkHandlerListProjectsValidation(t *testing.T) {
	handler := NewCourseworkHandler(&courseworkServiceMock{})

	c, w := newContext(http.MethodGet, "/teachers/assignments/projects", nil)
	handler.ListProjects(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type fileOpenerStub struct {
	path string
}

func (s fileOpenerStub) Open(token string) (*service.FileDownload, error) {
	if token != "good" {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	info, _ := f.Stat()
	return &service.FileDownload{File: f, Filename: filepath.Base(s.path), MimeType: "text/plain; charset=utf-8", Size: info.Size()}, nil
}

func TestFileHandlerDownload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("lesson notes"), 0o600))
	handler := NewFileHandler(fileOpenerStub{path: path})

	c, w := newContext(http.MethodGet, "/files/download?token=good", nil)
	handler.Download(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "lesson notes", w.Body.String())
	assert.Equal(t, `attachment; filename="notes.txt"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "private, no-store", w.Header().Get("Cache-Control"))
}

func TestFileHandlerDownloadForgedToken(t *testing.T) {
	handler := NewFileHandler(fileOpenerStub{})

	c, w := newContext(http.MethodGet, "/files/download?token=forged", nil)
	handler.Download(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
