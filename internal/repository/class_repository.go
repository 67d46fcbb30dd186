package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/coaching-api/internal/models"
)

const classColumns = "id, course, start_time, end_time, start_date, teacher_id, student_ids, duration, frequency, is_recurring, recurring_id, is_live, meet_link, created_at, updated_at"

// ClassRepository persists recurring templates and sessions in one table.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository constructs a ClassRepository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// List returns classes matching the filter ordered by start time.
func (r *ClassRepository) List(ctx context.Context, filter models.ClassFilter) ([]models.Class, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	if filter.TeacherID != "" {
		args = append(args, filter.TeacherID)
		conditions = append(conditions, fmt.Sprintf("teacher_id = $%d", len(args)))
	}
	if filter.Course != "" {
		args = append(args, filter.Course)
		conditions = append(conditions, fmt.Sprintf("course = $%d", len(args)))
	}
	switch filter.Kind {
	case models.ClassKindTemplate:
		conditions = append(conditions, "is_recurring = TRUE")
	case models.ClassKindSession:
		conditions = append(conditions, "is_recurring = FALSE")
	}

	query := fmt.Sprintf("SELECT %s FROM classes WHERE %s ORDER BY start_time ASC, created_at ASC", classColumns, strings.Join(conditions, " AND "))
	var classes []models.Class
	if err := r.db.SelectContext(ctx, &classes, query, args...); err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	return classes, nil
}

// FindByID fetches a class by id. Missing rows surface as sql.ErrNoRows.
func (r *ClassRepository) FindByID(ctx context.Context, id string) (*models.Class, error) {
	var class models.Class
	if err := r.db.GetContext(ctx, &class, "SELECT "+classColumns+" FROM classes WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &class, nil
}

// ListInvalidRecurrences returns sessions whose recurring_id does not
// resolve to a recurring template.
func (r *ClassRepository) ListInvalidRecurrences(ctx context.Context) ([]models.Class, error) {
	const query = `SELECT c.id, c.teacher_id, c.recurring_id FROM classes c
        LEFT JOIN classes t ON t.id = c.recurring_id
        WHERE c.recurring_id IS NOT NULL AND (t.id IS NULL OR t.is_recurring = FALSE)
        ORDER BY c.id`
	var classes []models.Class
	if err := r.db.SelectContext(ctx, &classes, query); err != nil {
		return nil, fmt.Errorf("list invalid recurrences: %w", err)
	}
	return classes, nil
}

// Create inserts a class.
func (r *ClassRepository) Create(ctx context.Context, class *models.Class) error {
	if class.ID == "" {
		class.ID = uuid.NewString()
	}
	if class.StudentIDs == nil {
		class.StudentIDs = pq.StringArray{}
	}
	now := time.Now().UTC()
	class.CreatedAt = now
	class.UpdatedAt = now
	const query = `INSERT INTO classes (id, course, start_time, end_time, start_date, teacher_id, student_ids, duration, frequency, is_recurring, recurring_id, is_live, meet_link, created_at, updated_at)
        VALUES (:id, :course, :start_time, :end_time, :start_date, :teacher_id, :student_ids, :duration, :frequency, :is_recurring, :recurring_id, :is_live, :meet_link, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, class); err != nil {
		return fmt.Errorf("create class: %w", err)
	}
	return nil
}

// Update replaces the schedule fields of a class by id.
func (r *ClassRepository) Update(ctx context.Context, class *models.Class) error {
	if class.StudentIDs == nil {
		class.StudentIDs = pq.StringArray{}
	}
	class.UpdatedAt = time.Now().UTC()
	const query = `UPDATE classes SET course = :course, start_time = :start_time, end_time = :end_time, start_date = :start_date,
        student_ids = :student_ids, duration = :duration, frequency = :frequency, meet_link = :meet_link, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, class)
	if err != nil {
		return fmt.Errorf("update class: %w", err)
	}
	return requireAffected(res)
}

// SetLive toggles live delivery and the meeting link.
func (r *ClassRepository) SetLive(ctx context.Context, id string, live bool, meetLink *string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE classes SET is_live = $2, meet_link = COALESCE($3, meet_link), updated_at = $4 WHERE id = $1", id, live, meetLink, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set class live: %w", err)
	}
	return requireAffected(res)
}

// Delete removes a class. Templates do not cascade.
func (r *ClassRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM classes WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete class: %w", err)
	}
	return requireAffected(res)
}
