package models

import "time"

// Student is an enrolled learner. TeacherID is the back-reference mirrored
// by the owning teacher's roster.
type Student struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Number       string    `db:"number" json:"number"`
	Email        string    `db:"email" json:"email"`
	Course       string    `db:"course" json:"course"`
	Address      string    `db:"address" json:"address"`
	PasswordHash string    `db:"password_hash" json:"-"`
	TeacherID    *string   `db:"teacher_id" json:"teacherId"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// OwnedBy reports whether the student's back-reference equals teacherID.
func (s *Student) OwnedBy(teacherID string) bool {
	return s != nil && s.TeacherID != nil && *s.TeacherID == teacherID
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search    string
	TeacherID string
	Course    string
	Page      int
	PageSize  int
}

// StudentSummary is the compact student view embedded in teacher responses.
type StudentSummary struct {
	ID     string `db:"id" json:"id"`
	Name   string `db:"name" json:"name"`
	Number string `db:"number" json:"number"`
	Email  string `db:"email" json:"email"`
	Course string `db:"course" json:"course"`
}
