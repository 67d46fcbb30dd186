package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coaching-api/internal/models"
)

func TestQuizRepositoryLatest(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewQuizRepository(db)

	rows := sqlmock.NewRows([]string{"id", "batch_id", "course", "question", "options", "correct_answer", "created_at"}).
		AddRow("q1", "b1", "math", "2+2?", "{1,2,3,4}", 3, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC LIMIT 1")).
		WithArgs("b1", "math").
		WillReturnRows(rows)

	quiz, err := repo.Latest(context.Background(), "b1", "math")
	require.NoError(t, err)
	assert.Len(t, quiz.Options, 4)
	assert.Equal(t, 3, quiz.CorrectAnswer)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuizRepositoryCoveredTopicsRoundTrip(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewQuizRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (batch_id, course) DO UPDATE")).
		WithArgs("b1", "math", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT batch_id, course, marked, updated_at FROM covered_topics")).
		WithArgs("b1", "math").
		WillReturnRows(sqlmock.NewRows([]string{"batch_id", "course", "marked", "updated_at"}).AddRow("b1", "math", []byte(`{"0":true,"2":false}`), time.Now()))

	ctx := context.Background()
	require.NoError(t, repo.UpsertCoveredTopics(ctx, &models.CoveredTopicStatus{BatchID: "b1", Course: "math", Marked: models.TopicMarks{"0": true}}))
	status, err := repo.GetCoveredTopics(ctx, "b1", "math")
	require.NoError(t, err)
	assert.Equal(t, models.TopicMarks{"0": true, "2": false}, status.Marked)
	assert.NoError(t, mock.ExpectationsWereMet())
}
