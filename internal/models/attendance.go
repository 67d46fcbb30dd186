package models

import "time"

// AttendanceStatus is the recorded presence of a student.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "Present"
	AttendanceAbsent  AttendanceStatus = "Absent"
)

// Attendance is one record per (student, class, day).
type Attendance struct {
	ID        string           `db:"id" json:"id"`
	StudentID string           `db:"student_id" json:"studentId"`
	ClassID   string           `db:"class_id" json:"classId"`
	Date      time.Time        `db:"date" json:"date"`
	Status    AttendanceStatus `db:"status" json:"status"`
	Reason    *string          `db:"reason" json:"reason,omitempty"`
	CreatedAt time.Time        `db:"created_at" json:"createdAt"`
}

// AttendanceRow is an attendance record joined with the student's name.
type AttendanceRow struct {
	Attendance
	StudentName string `db:"student_name" json:"studentName"`
}
