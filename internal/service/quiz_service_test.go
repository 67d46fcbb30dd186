package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/coaching-api/internal/dto"
	"github.com/noah-isme/coaching-api/internal/models"
	appErrors "github.com/noah-isme/coaching-api/pkg/errors"
)

type memQuizzes struct {
	quizzes []models.Quiz
	topics  map[string]models.CoveredTopicStatus
}

func (m *memQuizzes) Create(ctx context.Context, quiz *models.Quiz) error {
	quiz.ID = fmt.Sprintf("q%d", len(m.quizzes)+1)
	m.quizzes = append(m.quizzes, *quiz)
	return nil
}

func (m *memQuizzes) Latest(ctx context.Context, batchID, course string) (*models.Quiz, error) {
	for i := len(m.quizzes) - 1; i >= 0; i-- {
		if q := m.quizzes[i]; q.BatchID == batchID && q.Course == course {
			return &q, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memQuizzes) GetCoveredTopics(ctx context.Context, batchID, course string) (*models.CoveredTopicStatus, error) {
	status, ok := m.topics[batchID+"/"+course]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &status, nil
}

func (m *memQuizzes) UpsertCoveredTopics(ctx context.Context, status *models.CoveredTopicStatus) error {
	if m.topics == nil {
		m.topics = make(map[string]models.CoveredTopicStatus)
	}
	m.topics[status.BatchID+"/"+status.Course] = *status
	return nil
}

func TestQuizServiceRequiresFourOptions(t *testing.T) {
	repo := &memQuizzes{}
	svc := NewQuizService(repo, nil, zap.NewNop())
	req := dto.CreateQuizRequest{BatchID: "c1", Course: "Math", Question: "2+2?", Options: []string{"3", "4", "5"}, CorrectAnswer: ptr(1)}

	_, err := svc.CreateQuiz(context.Background(), req)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	req.Options = append(req.Options, "6")
	req.CorrectAnswer = ptr(4)
	_, err = svc.CreateQuiz(context.Background(), req)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Empty(t, repo.quizzes)

	req.CorrectAnswer = ptr(1)
	quiz, err := svc.CreateQuiz(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, quiz.Options, models.QuizOptionCount)
	assert.Equal(t, 1, quiz.CorrectAnswer)
}

func TestQuizServiceLatest(t *testing.T) {
	repo := &memQuizzes{}
	svc := NewQuizService(repo, nil, zap.NewNop())
	ctx := context.Background()

	quiz, err := svc.LatestQuiz(ctx, "c1", "Math")
	require.NoError(t, err)
	assert.Nil(t, quiz)

	for _, q := range []string{"first", "second"} {
		_, err := svc.CreateQuiz(ctx, dto.CreateQuizRequest{BatchID: "c1", Course: "Math", Question: q, Options: []string{"a", "b", "c", "d"}, CorrectAnswer: ptr(0)})
		require.NoError(t, err)
	}
	quiz, err = svc.LatestQuiz(ctx, "c1", "Math")
	require.NoError(t, err)
	assert.Equal(t, "second", quiz.Question)

	_, err = svc.LatestQuiz(ctx, "", "Math")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestQuizServiceCoveredTopics(t *testing.T) {
	svc := NewQuizService(&memQuizzes{}, nil, zap.NewNop())
	ctx := context.Background()

	empty, err := svc.CoveredTopics(ctx, "c1", "Math")
	require.NoError(t, err)
	assert.NotNil(t, empty.Marked)
	assert.Empty(t, empty.Marked)

	_, err = svc.SaveCoveredTopics(ctx, dto.CoveredTopicsRequest{BatchID: "c1", Course: "Math", Marked: map[string]bool{"0": true, "1": false}})
	require.NoError(t, err)

	saved, err := svc.CoveredTopics(ctx, "c1", "Math")
	require.NoError(t, err)
	assert.Equal(t, models.TopicMarks{"0": true, "1": false}, saved.Marked)
}
