package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/coaching-api/internal/models"
)

// AttendanceRepository stores per-day attendance marks.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs an AttendanceRepository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// DeleteFor removes every mark for (student, class, day).
func (r *AttendanceRepository) DeleteFor(ctx context.Context, studentID, classID string, date time.Time) error {
	const query = `DELETE FROM attendance WHERE student_id = $1 AND class_id = $2 AND date = $3`
	if _, err := r.db.ExecContext(ctx, query, studentID, classID, date); err != nil {
		return fmt.Errorf("delete attendance: %w", err)
	}
	return nil
}

// Insert stores one attendance mark.
func (r *AttendanceRepository) Insert(ctx context.Context, record *models.Attendance) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	record.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO attendance (id, student_id, class_id, date, status, reason, created_at)
        VALUES (:id, :student_id, :class_id, :date, :status, :reason, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("insert attendance: %w", err)
	}
	return nil
}

// ListByStudent returns a student's marks, most recent day first.
func (r *AttendanceRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Attendance, error) {
	const query = `SELECT id, student_id, class_id, date, status, reason, created_at FROM attendance WHERE student_id = $1 ORDER BY date DESC`
	var records []models.Attendance
	if err := r.db.SelectContext(ctx, &records, query, studentID); err != nil {
		return nil, fmt.Errorf("list attendance by student: %w", err)
	}
	return records, nil
}

// ListByClass returns a class's marks joined with student names.
func (r *AttendanceRepository) ListByClass(ctx context.Context, classID string) ([]models.AttendanceRow, error) {
	const query = `SELECT a.id, a.student_id, a.class_id, a.date, a.status, a.reason, a.created_at, COALESCE(s.name, '') AS student_name
        FROM attendance a LEFT JOIN students s ON s.id = a.student_id
        WHERE a.class_id = $1 ORDER BY a.date ASC, student_name ASC`
	var rows []models.AttendanceRow
	if err := r.db.SelectContext(ctx, &rows, query, classID); err != nil {
		return nil, fmt.Errorf("list attendance by class: %w", err)
	}
	return rows, nil
}
