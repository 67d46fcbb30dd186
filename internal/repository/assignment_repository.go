package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/coaching-api/internal/models"
)

const assignmentColumns = "id, course, teacher_id, batch_id, filename, original_name, mime_type, size, upload_date"

// AssignmentRepository stores assignment file metadata.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs an AssignmentRepository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// Create inserts assignment metadata.
func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	if assignment.UploadDate.IsZero() {
		assignment.UploadDate = time.Now().UTC()
	}
	const query = `INSERT INTO assignments (id, course, teacher_id, batch_id, filename, original_name, mime_type, size, upload_date)
        VALUES (:id, :course, :teacher_id, :batch_id, :filename, :original_name, :mime_type, :size, :upload_date)`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

// List returns assignments matching the non-empty filter fields, newest first.
func (r *AssignmentRepository) List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	for _, f := range []struct{ column, value string }{
		{"course", filter.Course},
		{"batch_id", filter.BatchID},
		{"teacher_id", filter.TeacherID},
	} {
		if f.value == "" {
			continue
		}
		args = append(args, f.value)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", f.column, len(args)))
	}
	query := fmt.Sprintf("SELECT %s FROM assignments WHERE %s ORDER BY upload_date DESC", assignmentColumns, strings.Join(conditions, " AND "))
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, args...); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return assignments, nil
}
