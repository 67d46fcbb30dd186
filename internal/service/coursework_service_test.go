package service

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/coaching-api/internal/dto"
	"github.com/noah-isme/coaching-api/internal/models"
	appErrors "github.com/noah-isme/coaching-api/pkg/errors"
	"github.com/noah-isme/coaching-api/pkg/storage"
)

var pdfBytes = []byte("%PDF-1.4\n1 0 obj<<>>endobj\ntrailer<<>>\n%%EOF")

type memAssignments struct {
	rows      []models.Assignment
	createErr error
}

func (m *memAssignments) Create(ctx context.Context, a *models.Assignment) error {
	if m.createErr != nil {
		return m.createErr
	}
	a.ID = fmt.Sprintf("a%d", len(m.rows)+1)
	a.UploadDate = time.Now().UTC()
	m.rows = append(m.rows, *a)
	return nil
}

func (m *memAssignments) List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, error) {
	var out []models.Assignment
	for i := len(m.rows) - 1; i >= 0; i-- {
		a := m.rows[i]
		if (filter.Course == "" || a.Course == filter.Course) &&
			(filter.BatchID == "" || a.BatchID == filter.BatchID) &&
			(filter.TeacherID == "" || a.TeacherID == filter.TeacherID) {
			out = append(out, a)
		}
	}
	return out, nil
}

type memProjects struct {
	rows []models.StudentProject
}

func (m *memProjects) Create(ctx context.Context, p *models.StudentProject) error {
	p.ID = fmt.Sprintf("p%d", len(m.rows)+1)
	m.rows = append(m.rows, *p)
	return nil
}

func (m *memProjects) List(ctx context.Context, course, teacherID string) ([]models.StudentProject, error) {
	var out []models.StudentProject
	for _, p := range m.rows {
		if p.Course == course && p.TeacherID == teacherID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memProjects) UpdateScore(ctx context.Context, id string, score float64) (*models.StudentProject, error) {
	for i := range m.rows {
		if m.rows[i].ID == id {
			m.rows[i].Score = &score
			cp := m.rows[i]
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func newFileFixture(t *testing.T, maxSize int64) (*FileService, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Minute)
	return NewFileService(store, signer, zap.NewNop(), FileConfig{MaxFileSize: maxSize, APIPrefix: "/api"}), dir
}

func upload(name, mime string, data []byte) dto.UploadFile {
	return dto.UploadFile{Name: name, MimeType: mime, Size: int64(len(data)), Content: bytes.NewReader(data)}
}

func newCourseworkFixture(t *testing.T) (*CourseworkService, *memAssignments, *memProjects, *FileService, string) {
	files, dir := newFileFixture(t, 1024)
	assignments := &memAssignments{}
	projects := &memProjects{}
	teachers := newMemTeachers(models.Teacher{ID: "t1"})
	students := newMemStudents(models.Student{ID: "s1", TeacherID: ptr("t1")})
	svc := NewCourseworkService(assignments, projects, teachers, students, files, nil, zap.NewNop())
	return svc, assignments, projects, files, dir
}

func TestCourseworkServiceUploadAndDownloadAssignment(t *testing.T) {
	svc, assignments, _, files, dir := newCourseworkFixture(t)
	ctx := context.Background()

	view, err := svc.UploadAssignment(ctx, dto.UploadAssignmentRequest{Course: "Math", TeacherID: "t1", BatchID: "c1"},
		upload("Week 1 Notes.pdf", "", pdfBytes))
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", view.MimeType)
	assert.True(t, strings.HasPrefix(view.Filename, "assignments/"))
	assert.True(t, strings.HasSuffix(view.Filename, "-week_1_notes.pdf"))
	require.Len(t, assignments.rows, 1)
	assert.FileExists(t, filepath.Join(dir, view.Filename))

	require.NotNil(t, view.Download)
	link, err := url.Parse(view.Download.DownloadURL)
	require.NoError(t, err)
	assert.Equal(t, "/api/files/download", link.Path)

	download, err := files.Open(link.Query().Get("token"))
	require.NoError(t, err)
	defer download.File.Close()
	body, err := io.ReadAll(download.File)
	require.NoError(t, err)
	assert.Equal(t, pdfBytes, body)
	assert.Equal(t, int64(len(pdfBytes)), download.Size)

	_, err = files.Open("forged.token.value.sig")
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}

func TestCourseworkServiceRejectsBadUploads(t *testing.T) {
	svc, assignments, _, _, dir := newCourseworkFixture(t)
	ctx := context.Background()
	meta := dto.UploadAssignmentRequest{Course: "Math", TeacherID: "t1", BatchID: "c1"}

	_, err := svc.UploadAssignment(ctx, meta, upload("notes.txt", "text/plain", []byte("plain text")))
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.UploadAssignment(ctx, meta, upload("big.pdf", "application/pdf", bytes.Repeat([]byte("a"), 2048)))
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	meta.TeacherID = "ghost"
	_, err = svc.UploadAssignment(ctx, meta, upload("notes.pdf", "application/pdf", pdfBytes))
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	assert.Empty(t, assignments.rows)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCourseworkServiceDiscardsBlobWhenMetadataFails(t *testing.T) {
	svc, assignments, _, _, dir := newCourseworkFixture(t)
	assignments.createErr = errStoreDown

	_, err := svc.UploadAssignment(context.Background(), dto.UploadAssignmentRequest{Course: "Math", TeacherID: "t1", BatchID: "c1"},
		upload("notes.pdf", "application/pdf", pdfBytes))
	assert.ErrorIs(t, err, appErrors.ErrInternal)

	entries, err := os.ReadDir(filepath.Join(dir, "assignments"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCourseworkServiceListAssignments(t *testing.T) {
	svc, _, _, _, _ := newCourseworkFixture(t)
	ctx := context.Background()
	for _, batch := range []string{"c1", "c2", "c1"} {
		_, err := svc.UploadAssignment(ctx, dto.UploadAssignmentRequest{Course: "Math", TeacherID: "t1", BatchID: batch},
			upload("notes.pdf", "application/pdf", pdfBytes))
		require.NoError(t, err)
	}

	_, err := svc.ListAssignments(ctx, models.AssignmentFilter{Course: "Math"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	views, err := svc.ListAssignments(ctx, models.AssignmentFilter{Course: "Math", BatchID: "c1"})
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "a3", views[0].ID)
	assert.NotEmpty(t, views[0].Download.DownloadURL)

	all, err := svc.ListAssignmentsForStudent(ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestCourseworkServiceProjects(t *testing.T) {
	svc, _, projects, _, _ := newCourseworkFixture(t)
	ctx := context.Background()

	_, err := svc.SubmitProject(ctx, dto.SubmitProjectRequest{Course: "Math", TeacherID: "t1", StudentID: "ghost"},
		upload("project.pdf", "application/pdf", pdfBytes))
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	view, err := svc.SubmitProject(ctx, dto.SubmitProjectRequest{Course: "Math", TeacherID: "t1", StudentID: "s1"},
		upload("project.zip", "application/zip", []byte("PK\x03\x04rest")))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(view.Filename, "projects/"))
	assert.Nil(t, view.Score)

	_, err = svc.ScoreProject(ctx, dto.ScoreProjectRequest{ProjectID: view.ID, Score: ptr(-1.0)})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	scored, err := svc.ScoreProject(ctx, dto.ScoreProjectRequest{ProjectID: view.ID, Score: ptr(87.5)})
	require.NoError(t, err)
	assert.Equal(t, 87.5, *scored.Score)

	_, err = svc.ScoreProject(ctx, dto.ScoreProjectRequest{ProjectID: "missing", Score: ptr(10.0)})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	list, err := svc.ListProjects(ctx, "Math", "t1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 87.5, *projects.rows[0].Score)

	_, err = svc.ListProjects(ctx, "Math", "")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}
