package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/coaching-api/internal/models"
)

const projectColumns = "id, course, teacher_id, student_id, filename, original_name, mime_type, size, score, upload_date"

// ProjectRepository stores student project submissions.
type ProjectRepository struct {
	db *sqlx.DB
}

// NewProjectRepository constructs a ProjectRepository.
func NewProjectRepository(db *sqlx.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create inserts project metadata.
func (r *ProjectRepository) Create(ctx context.Context, project *models.StudentProject) error {
	if project.ID == "" {
		project.ID = uuid.NewString()
	}
	if project.UploadDate.IsZero() {
		project.UploadDate = time.Now().UTC()
	}
	const query = `INSERT INTO student_projects (id, course, teacher_id, student_id, filename, original_name, mime_type, size, score, upload_date)
        VALUES (:id, :course, :teacher_id, :student_id, :filename, :original_name, :mime_type, :size, :score, :upload_date)`
	if _, err := r.db.NamedExecContext(ctx, query, project); err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	return nil
}

// List returns the projects submitted to a teacher for a course, newest first.
func (r *ProjectRepository) List(ctx context.Context, course, teacherID string) ([]models.StudentProject, error) {
	query := "SELECT " + projectColumns + " FROM student_projects WHERE course = $1 AND teacher_id = $2 ORDER BY upload_date DESC"
	var projects []models.StudentProject
	if err := r.db.SelectContext(ctx, &projects, query, course, teacherID); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

// UpdateScore sets the score and returns the updated project. Missing
// projects surface as sql.ErrNoRows.
func (r *ProjectRepository) UpdateScore(ctx context.Context, id string, score float64) (*models.StudentProject, error) {
	var project models.StudentProject
	query := "UPDATE student_projects SET score = $2 WHERE id = $1 RETURNING " + projectColumns
	if err := r.db.GetContext(ctx, &project, query, id, score); err != nil {
		return nil, err
	}
	return &project, nil
}
