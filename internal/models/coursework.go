package models

import "time"

// Assignment is an uploaded file scoped to a course batch.
type Assignment struct {
	ID           string    `db:"id" json:"id"`
	Course       string    `db:"course" json:"course"`
	TeacherID    string    `db:"teacher_id" json:"teacherId"`
	BatchID      string    `db:"batch_id" json:"batchId"`
	Filename     string    `db:"filename" json:"filename"`
	OriginalName string    `db:"original_name" json:"originalName"`
	MimeType     string    `db:"mime_type" json:"mimeType"`
	Size         int64     `db:"size" json:"size"`
	UploadDate   time.Time `db:"upload_date" json:"uploadDate"`
}

// AssignmentFilter narrows assignment listings; empty fields are ignored.
type AssignmentFilter struct {
	Course    string
	BatchID   string
	TeacherID string
}

// StudentProject is a student's submitted project file, optionally scored.
type StudentProject struct {
	ID           string    `db:"id" json:"id"`
	Course       string    `db:"course" json:"course"`
	TeacherID    string    `db:"teacher_id" json:"teacherId"`
	StudentID    string    `db:"student_id" json:"studentId"`
	Filename     string    `db:"filename" json:"filename"`
	OriginalName string    `db:"original_name" json:"originalName"`
	MimeType     string    `db:"mime_type" json:"mimeType"`
	Size         int64     `db:"size" json:"size"`
	Score        *float64  `db:"score" json:"score,omitempty"`
	UploadDate   time.Time `db:"upload_date" json:"uploadDate"`
}

// StoredFile describes a blob written to storage and how to fetch it.
type StoredFile struct {
	ID          string    `json:"id"`
	Path        string    `json:"path"`
	DownloadURL string    `json:"downloadUrl"`
	ExpiresAt   time.Time `json:"expiresAt"`
}
