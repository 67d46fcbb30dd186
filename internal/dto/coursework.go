package dto

import (
	"io"

	"github.com/noah-isme/coaching-api/internal/models"
)

// UploadFile is a received multipart file ready to be stored.
type UploadFile struct {
	Name     string
	MimeType string
	Size     int64
	Content  io.ReadSeeker
}

// UploadAssignmentRequest scopes an assignment upload.
type UploadAssignmentRequest struct {
	Course    string `form:"course" validate:"required"`
	TeacherID string `form:"teacherId" validate:"required"`
	BatchID   string `form:"batchId" validate:"required"`
}

// SubmitProjectRequest scopes a student project submission.
type SubmitProjectRequest struct {
	Course    string `form:"course" validate:"required"`
	TeacherID string `form:"teacherId" validate:"required"`
	StudentID string `form:"studentId" validate:"required"`
}

// ScoreProjectRequest assigns a score to a submitted project.
type ScoreProjectRequest struct {
	ProjectID string   `json:"projectId" validate:"required"`
	Score     *float64 `json:"score" validate:"required,min=0"`
}

// AssignmentView is an assignment with a signed download link.
type AssignmentView struct {
	models.Assignment
	Download *models.StoredFile `json:"download"`
}

// ProjectView is a student project with a signed download link.
type ProjectView struct {
	models.StudentProject
	Download *models.StoredFile `json:"download"`
}
