package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/coaching-api/internal/models"
)

const studentColumns = "id, name, number, email, course, address, password_hash, teacher_id, created_at, updated_at"

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students matching the provided filters.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
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
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d OR LOWER(email) LIKE $%d OR number LIKE $%d)", len(args), len(args), len(args)))
	}
	where := strings.Join(conditions, " AND ")
	page, size := normalizePage(filter.Page, filter.PageSize)

	query := fmt.Sprintf("SELECT %s FROM students WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d", studentColumns, where, size, (page-1)*size)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) FROM students WHERE %s", where), args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// FindByID fetches a student by id. Missing rows surface as sql.ErrNoRows.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	var student models.Student
	if err := r.db.GetContext(ctx, &student, "SELECT "+studentColumns+" FROM students WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindByIdentifier looks a student up by email (case-insensitive) or phone number.
func (r *StudentRepository) FindByIdentifier(ctx context.Context, identifier string) (*models.Student, error) {
	var student models.Student
	query := "SELECT " + studentColumns + " FROM students WHERE LOWER(email) = LOWER($1) OR number = $1 LIMIT 1"
	if err := r.db.GetContext(ctx, &student, query, identifier); err != nil {
		return nil, err
	}
	return &student, nil
}

// ListByTeacher returns the students whose back-reference points at teacherID.
func (r *StudentRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.Student, error) {
	var students []models.Student
	query := "SELECT " + studentColumns + " FROM students WHERE teacher_id = $1 ORDER BY name ASC"
	if err := r.db.SelectContext(ctx, &students, query, teacherID); err != nil {
		return nil, fmt.Errorf("list students by teacher: %w", err)
	}
	return students, nil
}

// ListSummariesByIDs resolves a roster into student summaries. Unknown ids are skipped.
func (r *StudentRepository) ListSummariesByIDs(ctx context.Context, ids []string) ([]models.StudentSummary, error) {
	if len(ids) == 0 {
		return []models.StudentSummary{}, nil
	}
	var summaries []models.StudentSummary
	query := "SELECT id, name, number, email, course FROM students WHERE id = ANY($1) ORDER BY name ASC"
	if err := r.db.SelectContext(ctx, &summaries, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("list student summaries: %w", err)
	}
	return summaries, nil
}

// ListReferences returns every student id with its back-reference.
func (r *StudentRepository) ListReferences(ctx context.Context) ([]models.Student, error) {
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, "SELECT id, teacher_id FROM students ORDER BY id"); err != nil {
		return nil, fmt.Errorf("list student references: %w", err)
	}
	return students, nil
}

// ExistsByNumber checks if a student uses the phone number, optionally excluding an id.
func (r *StudentRepository) ExistsByNumber(ctx context.Context, number, excludeID string) (bool, error) {
	return exists(ctx, r.db, "students", "number", number, excludeID)
}

// ExistsByEmail checks if a student uses the email, optionally excluding an id.
func (r *StudentRepository) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	return exists(ctx, r.db, "students", "LOWER(email)", strings.ToLower(email), excludeID)
}

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
	const query = `INSERT INTO students (id, name, number, email, course, address, password_hash, teacher_id, created_at, updated_at)
        VALUES (:id, :name, :number, :email, :course, :address, :password_hash, :teacher_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update modifies the profile fields of an existing student. The
// back-reference is changed only through SetTeacher.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET name = :name, number = :number, email = :email, course = :course, address = :address, password_hash = :password_hash, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, student)
	if err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return requireAffected(res)
}

// SetTeacher overwrites the student's back-reference.
func (r *StudentRepository) SetTeacher(ctx context.Context, studentID, teacherID string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE students SET teacher_id = $2, updated_at = $3 WHERE id = $1", studentID, teacherID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set student teacher: %w", err)
	}
	return requireAffected(res)
}

// ClearTeacherIf clears the back-reference only when it currently equals
// teacherID and reports whether a row changed.
func (r *StudentRepository) ClearTeacherIf(ctx context.Context, studentID, teacherID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, "UPDATE students SET teacher_id = NULL, updated_at = $3 WHERE id = $1 AND teacher_id = $2", studentID, teacherID, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("clear student teacher: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("clear student teacher: %w", err)
	}
	return n > 0, nil
}

// ClearTeacherForAll orphans every student referencing teacherID.
func (r *StudentRepository) ClearTeacherForAll(ctx context.Context, teacherID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, "UPDATE students SET teacher_id = NULL, updated_at = $2 WHERE teacher_id = $1", teacherID, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("orphan students: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("orphan students: %w", err)
	}
	return n, nil
}

// Delete removes a student record.
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM students WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return requireAffected(res)
}

func exists(ctx context.Context, db *sqlx.DB, table, column, value, excludeID string) (bool, error) {
	query := fmt.Sprintf("SELECT 1 FROM %s WHERE %s = $1", table, column)
	args := []interface{}{value}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var found int
	if err := db.GetContext(ctx, &found, query+" LIMIT 1", args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check %s %s: %w", table, column, err)
	}
	return true, nil
}

// requireAffected maps a zero-row write onto sql.ErrNoRows.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return page, size
}
