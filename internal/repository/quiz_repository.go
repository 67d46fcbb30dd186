package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/coaching-api/internal/models"
)

// QuizRepository stores quizzes and covered-topic checklists.
type QuizRepository struct {
	db *sqlx.DB
}

// NewQuizRepository constructs a QuizRepository.
func NewQuizRepository(db *sqlx.DB) *QuizRepository {
	return &QuizRepository{db: db}
}

// Create inserts a quiz.
func (r *QuizRepository) Create(ctx context.Context, quiz *models.Quiz) error {
	if quiz.ID == "" {
		quiz.ID = uuid.NewString()
	}
	quiz.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO quizzes (id, batch_id, course, question, options, correct_answer, created_at)
        VALUES (:id, :batch_id, :course, :question, :options, :correct_answer, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, quiz); err != nil {
		return fmt.Errorf("create quiz: %w", err)
	}
	return nil
}

// Latest returns the most recent quiz for a batch and course. Absence
// surfaces as sql.ErrNoRows.
func (r *QuizRepository) Latest(ctx context.Context, batchID, course string) (*models.Quiz, error) {
	const query = `SELECT id, batch_id, course, question, options, correct_answer, created_at FROM quizzes
        WHERE batch_id = $1 AND course = $2 ORDER BY created_at DESC LIMIT 1`
	var quiz models.Quiz
	if err := r.db.GetContext(ctx, &quiz, query, batchID, course); err != nil {
		return nil, err
	}
	return &quiz, nil
}

// GetCoveredTopics returns the checklist for a batch and course. Absence
// surfaces as sql.ErrNoRows.
func (r *QuizRepository) GetCoveredTopics(ctx context.Context, batchID, course string) (*models.CoveredTopicStatus, error) {
	const query = `SELECT batch_id, course, marked, updated_at FROM covered_topics WHERE batch_id = $1 AND course = $2`
	var status models.CoveredTopicStatus
	if err := r.db.GetContext(ctx, &status, query, batchID, course); err != nil {
		return nil, err
	}
	return &status, nil
}

// UpsertCoveredTopics replaces the checklist for a batch and course.
func (r *QuizRepository) UpsertCoveredTopics(ctx context.Context, status *models.CoveredTopicStatus) error {
	status.UpdatedAt = time.Now().UTC()
	const query = `INSERT INTO covered_topics (batch_id, course, marked, updated_at) VALUES (:batch_id, :course, :marked, :updated_at)
        ON CONFLICT (batch_id, course) DO UPDATE SET marked = EXCLUDED.marked, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, status); err != nil {
		return fmt.Errorf("upsert covered topics: %w", err)
	}
	return nil
}
