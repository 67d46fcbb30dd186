package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coaching-api/internal/dto"
	"github.com/noah-isme/coaching-api/internal/middleware"
	"github.com/noah-isme/coaching-api/internal/models"
	appErrors "github.com/noah-isme/coaching-api/pkg/errors"
	"github.com/noah-isme/coaching-api/pkg/response"
)

type authServiceMock struct {
	token string
}

func (m *authServiceMock) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if req.Password != "secret1" {
		return nil, appErrors.ErrInvalidCredentials
	}
	return &models.LoginResponse{Token: "jwt", User: models.UserInfo{ID: "t1", Role: models.RoleTeacher}}, nil
}

func (m *authServiceMock) Check(ctx context.Context, token string) (*models.UserInfo, error) {
	m.token = token
	return &models.UserInfo{ID: "t1", Role: models.RoleTeacher}, nil
}

func TestAuthHandlerLogin(t *testing.T) {
	handler := NewAuthHandler(&authServiceMock{})

	c, w := newContext(http.MethodPost, "/auth/login", bytes.NewBufferString(`{"identifier":"ana@example.com","password":"secret1"}`))
	handler.Login(c)
	require.Equal(t, http.StatusOK, w.Code)

	c, w = newContext(http.MethodPost, "/auth/login", bytes.NewBufferString(`{"identifier":"ana@example.com","password":"nope"}`))
	handler.Login(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandlerCheck(t *testing.T) {
	svc := &authServiceMock{}
	handler := NewAuthHandler(svc)

	c, w := newContext(http.MethodGet, "/auth/check", nil)
	handler.Check(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	c, w = newContext(http.MethodGet, "/auth/check", nil)
	c.Request.Header.Set("Authorization", "Bearer abc.def")
	handler.Check(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc.def", svc.token)
}

type quizServiceMock struct {
	latest *models.Quiz
}

func (m *quizServiceMock) CreateQuiz(ctx context.Context, req dto.CreateQuizRequest) (*models.Quiz, error) {
	return nil, appErrors.Clone(appErrors.ErrValidation, "exactly 4 options are required")
}

func (m *quizServiceMock) LatestQuiz(ctx context.Context, batchID, course string) (*models.Quiz, error) {
	return m.latest, nil
}

func (m *quizServiceMock) CoveredTopics(ctx context.Context, batchID, course string) (*models.CoveredTopicStatus, error) {
	return &models.CoveredTopicStatus{BatchID: batchID, Course: course, Marked: models.TopicMarks{}}, nil
}

func (m *quizServiceMock) SaveCoveredTopics(ctx context.Context, req dto.CoveredTopicsRequest) (*models.CoveredTopicStatus, error) {
	return &models.CoveredTopicStatus{BatchID: req.BatchID, Course: req.Course, Marked: models.TopicMarks(req.Marked)}, nil
}

func TestQuizHandlerLatestEmpty(t *testing.T) {
	handler := NewQuizHandler(&quizServiceMock{})

	c, w := newContext(http.MethodGet, "/quizzes?batchId=c1&course=IELTS", nil)
	handler.Latest(c)

	require.Equal(t, http.StatusOK, w.Code)
	var body response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Nil(t, body.Data)
	assert.Equal(t, "no quiz available", body.Message)
	assert.Contains(t, w.Body.String(), `"data":null`)
}

func TestQuizHandlerCreateValidation(t *testing.T) {
	handler := NewQuizHandler(&quizServiceMock{})

	c, w := newContext(http.MethodPost, "/quizzes", bytes.NewBufferString(`{"batchId":"c1","course":"IELTS","question":"?","options":["a"],"correctAnswer":0}`))
	handler.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "exactly 4 options are required")
}

type extensionServiceMock struct {
	created dto.CreateExtensionRequest
}

func (m *extensionServiceMock) Create(ctx context.Context, req dto.CreateExtensionRequest) (*models.ClassExtensionRequest, error) {
	m.created = req
	return &models.ClassExtensionRequest{ID: "x1", TeacherID: req.TeacherID, Status: models.ExtensionPending}, nil
}

func (m *extensionServiceMock) List(ctx context.Context) ([]models.ClassExtensionRequest, error) {
	return []models.ClassExtensionRequest{}, nil
}

func (m *extensionServiceMock) Approve(ctx context.Context, id string) (*models.ClassExtensionRequest, error) {
	return nil, appErrors.Clone(appErrors.ErrConflict, "extension request already approved")
}

func (m *extensionServiceMock) Reject(ctx context.Context, id string) (*models.ClassExtensionRequest, error) {
	return &models.ClassExtensionRequest{ID: id, Status: models.ExtensionRejected}, nil
}

func TestExtensionHandlerCreateUsesCallerTeacher(t *testing.T) {
	svc := &extensionServiceMock{}
	handler := NewExtensionHandler(svc)

	c, w := newContext(http.MethodPost, "/class-extension-requests", bytes.NewBufferString(`{"batchId":"c1","teacherId":"t9","reason":"exam prep","extraClasses":2}`))
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "t1", Role: models.RoleTeacher})
	handler.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "t1", svc.created.TeacherID)
	assert.Equal(t, 2, svc.created.ExtraClasses)
}

func TestExtensionHandlerApproveConflict(t *testing.T) {
	handler := NewExtensionHandler(&extensionServiceMock{})

	c, w := newContext(http.MethodPut, "/class-extension-requests/x1/approve", nil, gin.Param{Key: "id", Value: "x1"})
	handler.Approve(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

type integrityServiceMock struct {
	fresh bool
}

func (m *integrityServiceMock) Scan(ctx context.Context, fresh bool) (*models.IntegrityReport, error) {
	m.fresh = fresh
	return &models.IntegrityReport{Consistent: true}, nil
}

func (m *integrityServiceMock) Repair(ctx context.Context) (*models.RepairResult, error) {
	return &models.RepairResult{}, nil
}

func (m *integrityServiceMock) RepairAsync(ctx context.Context) (*models.RepairJob, error) {
	return &models.RepairJob{ID: "job-1", Status: "queued"}, nil
}

func (m *integrityServiceMock) RepairJob(id string) (*models.RepairJob, error) {
	if id != "job-1" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "repair job not found")
	}
	return &models.RepairJob{ID: id, Status: "completed"}, nil
}

func TestIntegrityHandlerScanFresh(t *testing.T) {
	svc := &integrityServiceMock{}
	handler := NewIntegrityHandler(svc)

	c, w := newContext(http.MethodGet, "/admin/integrity/scan?fresh=true", nil)
	handler.Scan(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, svc.fresh)
}

func TestIntegrityHandlerRepairAsync(t *testing.T) {
	handler := NewIntegrityHandler(&integrityServiceMock{})

	c, w := newContext(http.MethodPost, "/admin/integrity/repair/async", nil)
	handler.RepairAsync(c)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), `"job-1"`)

	c, w = newContext(http.MethodGet, "/admin/integrity/repair/nope", nil, gin.Param{Key: "jobId", Value: "nope"})
	handler.RepairStatus(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMetricsHandlerReady(t *testing.T) {
	ok := func(ctx context.Context) error { return nil }
	down := func(ctx context.Context) error { return errors.New("connection refused") }

	handler := NewMetricsHandler(nil, map[string]ReadinessCheck{"database": ok})
	c, w := newContext(http.MethodGet, "/ready", nil)
	handler.Ready(c)
	assert.Equal(t, http.StatusOK, w.Code)

	handler = NewMetricsHandler(nil, map[string]ReadinessCheck{"database": ok, "redis": down})
	c, w = newContext(http.MethodGet, "/ready", nil)
	handler.Ready(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
}
