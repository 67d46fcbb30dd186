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

func TestAttendanceRepositoryDeleteThenInsert(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM attendance WHERE student_id = $1 AND class_id = $2 AND date = $3")).
		WithArgs("s1", "c1", day).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO attendance").
		WithArgs(sqlmock.AnyArg(), "s1", "c1", day, models.AttendancePresent, nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	ctx := context.Background()
	require.NoError(t, repo.DeleteFor(ctx, "s1", "c1", day))
	require.NoError(t, repo.Insert(ctx, &models.Attendance{StudentID: "s1", ClassID: "c1", Date: day, Status: models.AttendancePresent}))
	assert.NoError(t, mock.ExpectationsWereMet())
}
