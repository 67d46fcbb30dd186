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

const teacherColumns = "id, name, number, email, course, address, password_hash, student_ids, created_at, updated_at"

// TeacherRepository handles persistence for teachers and their rosters.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository constructs a TeacherRepository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// List returns teachers using the provided filters.
func (r *TeacherRepository) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	if filter.Course != "" {
		args = append(args, filter.Course)
		conditions = append(conditions, fmt.Sprintf("course = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d OR LOWER(email) LIKE $%d)", len(args), len(args)))
	}
	where := strings.Join(conditions, " AND ")
	page, size := normalizePage(filter.Page, filter.PageSize)

	query := fmt.Sprintf("SELECT %s FROM teachers WHERE %s ORDER BY name ASC LIMIT %d OFFSET %d", teacherColumns, where, size, (page-1)*size)
	var teachers []models.Teacher
	if err := r.db.SelectContext(ctx, &teachers, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list teachers: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) FROM teachers WHERE %s", where), args...); err != nil {
		return nil, 0, fmt.Errorf("count teachers: %w", err)
	}
	return teachers, total, nil
}

// FindByID fetches a teacher by ID. Missing rows surface as sql.ErrNoRows.
func (r *TeacherRepository) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, "SELECT "+teacherColumns+" FROM teachers WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// FindByIdentifier looks a teacher up by email (case-insensitive) or phone number.
func (r *TeacherRepository) FindByIdentifier(ctx context.Context, identifier string) (*models.Teacher, error) {
	var teacher models.Teacher
	query := "SELECT " + teacherColumns + " FROM teachers WHERE LOWER(email) = LOWER($1) OR number = $1 LIMIT 1"
	if err := r.db.GetContext(ctx, &teacher, query, identifier); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// ListRosters returns every teacher id with its roster.
func (r *TeacherRepository) ListRosters(ctx context.Context) ([]models.Teacher, error) {
	var teachers []models.Teacher
	if err := r.db.SelectContext(ctx, &teachers, "SELECT id, student_ids FROM teachers ORDER BY id"); err != nil {
		return nil, fmt.Errorf("list rosters: %w", err)
	}
	return teachers, nil
}

// ExistsByNumber checks if a teacher uses the phone number, optionally excluding an id.
func (r *TeacherRepository) ExistsByNumber(ctx context.Context, number, excludeID string) (bool, error) {
	return exists(ctx, r.db, "teachers", "number", number, excludeID)
}

// ExistsByEmail checks if a teacher uses the email, optionally excluding an id.
func (r *TeacherRepository) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	return exists(ctx, r.db, "teachers", "LOWER(email)", strings.ToLower(email), excludeID)
}

// Create inserts a new teacher record.
func (r *TeacherRepository) Create(ctx context.Context, teacher *models.Teacher) error {
	if teacher.ID == "" {
		teacher.ID = uuid.NewString()
	}
	if teacher.StudentIDs == nil {
		teacher.StudentIDs = pq.StringArray{}
	}
	now := time.Now().UTC()
	if teacher.CreatedAt.IsZero() {
		teacher.CreatedAt = now
	}
	teacher.UpdatedAt = now
	const query = `INSERT INTO teachers (id, name, number, email, course, address, password_hash, student_ids, created_at, updated_at)
        VALUES (:id, :name, :number, :email, :course, :address, :password_hash, :student_ids, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, teacher); err != nil {
		return fmt.Errorf("create teacher: %w", err)
	}
	return nil
}

// Update modifies profile fields. The roster is only changed through
// AddStudent and RemoveStudent.
func (r *TeacherRepository) Update(ctx context.Context, teacher *models.Teacher) error {
	teacher.UpdatedAt = time.Now().UTC()
	const query = `UPDATE teachers SET name = :name, number = :number, email = :email, course = :course, address = :address, password_hash = :password_hash, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, teacher)
	if err != nil {
		return fmt.Errorf("update teacher: %w", err)
	}
	return requireAffected(res)
}

// AddStudent appends studentID to the roster unless already present.
func (r *TeacherRepository) AddStudent(ctx context.Context, teacherID, studentID string) error {
	const query = `UPDATE teachers SET student_ids = array_append(student_ids, $2::text), updated_at = $3
        WHERE id = $1 AND NOT ($2 = ANY(student_ids))`
	if _, err := r.db.ExecContext(ctx, query, teacherID, studentID, time.Now().UTC()); err != nil {
		return fmt.Errorf("add roster entry: %w", err)
	}
	return nil
}

// RemoveStudent drops studentID from the roster. Non-members are a no-op.
func (r *TeacherRepository) RemoveStudent(ctx context.Context, teacherID, studentID string) error {
	const query = `UPDATE teachers SET student_ids = array_remove(student_ids, $2::text), updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, teacherID, studentID, time.Now().UTC()); err != nil {
		return fmt.Errorf("remove roster entry: %w", err)
	}
	return nil
}

// Delete removes a teacher record.
func (r *TeacherRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM teachers WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete teacher: %w", err)
	}
	return requireAffected(res)
}
