package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/noah-isme/coaching-api/internal/dto"
	"github.com/noah-isme/coaching-api/internal/models"
	appErrors "github.com/noah-isme/coaching-api/pkg/errors"
)

type quizStore interface {
	Create(ctx context.Context, quiz *models.Quiz) error
	Latest(ctx context.Context, batchID, course string) (*models.Quiz, error)
	GetCoveredTopics(ctx context.Context, batchID, course string) (*models.CoveredTopicStatus, error)
	UpsertCoveredTopics(ctx context.Context, status *models.CoveredTopicStatus) error
}

// QuizService manages batch quizzes and covered-topic checklists.
type QuizService struct {
	repo      quizStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewQuizService constructs a QuizService.
func NewQuizService(repo quizStore, validate *validator.Validate, logger *zap.Logger) *QuizService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuizService{repo: repo, validator: validate, logger: logger}
}

// CreateQuiz posts a question with exactly four options.
func (s *QuizService) CreateQuiz(ctx context.Context, req dto.CreateQuizRequest) (*models.Quiz, error) {
	if len(req.Options) != models.QuizOptionCount {
		return nil, invalid("exactly 4 options are required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid quiz payload")
	}
	quiz := &models.Quiz{
		BatchID:       req.BatchID,
		Course:        req.Course,
		Question:      req.Question,
		Options:       pq.StringArray(req.Options),
		CorrectAnswer: *req.CorrectAnswer,
	}
	if err := s.repo.Create(ctx, quiz); err != nil {
		return nil, appErrors.Internal(err, "failed to create quiz")
	}
	return quiz, nil
}

// LatestQuiz returns the most recent quiz or nil when none exists.
func (s *QuizService) LatestQuiz(ctx context.Context, batchID, course string) (*models.Quiz, error) {
	if batchID == "" || course == "" {
		return nil, invalid("batchId and course are required")
	}
	quiz, err := s.repo.Latest(ctx, batchID, course)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.Internal(err, "failed to load quiz")
	}
	return quiz, nil
}

// CoveredTopics returns the checklist, empty when never saved.
func (s *QuizService) CoveredTopics(ctx context.Context, batchID, course string) (*models.CoveredTopicStatus, error) {
	if batchID == "" || course == "" {
		return nil, invalid("batchId and course are required")
	}
	status, err := s.repo.GetCoveredTopics(ctx, batchID, course)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.CoveredTopicStatus{BatchID: batchID, Course: course, Marked: models.TopicMarks{}}, nil
		}
		return nil, appErrors.Internal(err, "failed to load covered topics")
	}
	return status, nil
}

// SaveCoveredTopics replaces the checklist for a batch.
func (s *QuizService) SaveCoveredTopics(ctx context.Context, req dto.CoveredTopicsRequest) (*models.CoveredTopicStatus, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid covered topics payload")
	}
	status := &models.CoveredTopicStatus{BatchID: req.BatchID, Course: req.Course, Marked: models.TopicMarks(req.Marked)}
	if err := s.repo.UpsertCoveredTopics(ctx, status); err != nil {
		return nil, appErrors.Internal(err, "failed to save covered topics")
	}
	return status, nil
}
