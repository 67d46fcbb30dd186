package models

import (
	"time"

	"github.com/lib/pq"
)

// Teacher is an instructor owning a roster of student ids.
type Teacher struct {
	ID           string         `db:"id" json:"id"`
	Name         string         `db:"name" json:"name"`
	Number       string         `db:"number" json:"number"`
	Email        string         `db:"email" json:"email"`
	Course       string         `db:"course" json:"course"`
	Address      string         `db:"address" json:"address"`
	PasswordHash string         `db:"password_hash" json:"-"`
	StudentIDs   pq.StringArray `db:"student_ids" json:"studentIds"`
	CreatedAt    time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updatedAt"`
}

// TeacherFilter captures filtering options for listing teachers.
type TeacherFilter struct {
	Search   string
	Course   string
	Page     int
	PageSize int
}

// TeacherDetail is a teacher with its roster resolved to student summaries.
type TeacherDetail struct {
	Teacher
	Students []StudentSummary `json:"students"`
}
