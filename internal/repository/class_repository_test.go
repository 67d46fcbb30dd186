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

func TestClassRepositoryListForTeacherOrdersByStartTime(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewClassRepository(db)

	cols := []string{"id", "course", "start_time", "end_time", "start_date", "teacher_id", "student_ids", "duration", "frequency", "is_recurring", "recurring_id", "is_live", "meet_link", "created_at", "updated_at"}
	rows := sqlmock.NewRows(cols).
		AddRow("c1", "math", "08:00", "09:00", nil, "t1", "{}", 3, "weekday", true, nil, false, nil, time.Now(), time.Now()).
		AddRow("c2", "math", "10:00", "11:00", "2024-01-01", "t1", "{s1}", 3, "weekday", false, "c1", false, nil, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + classColumns + " FROM classes WHERE 1=1 AND teacher_id = $1 ORDER BY start_time ASC, created_at ASC")).
		WithArgs("t1").
		WillReturnRows(rows)

	classes, err := repo.List(context.Background(), models.ClassFilter{TeacherID: "t1"})
	require.NoError(t, err)
	require.Len(t, classes, 2)
	assert.Equal(t, models.ClassKindTemplate, classes[0].Kind())
	assert.Equal(t, models.ClassKindSession, classes[1].Kind())
	require.NotNil(t, classes[1].RecurringID)
	assert.Equal(t, "c1", *classes[1].RecurringID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectExec("INSERT INTO classes").WillReturnResult(sqlmock.NewResult(1, 1))

	class := &models.Class{Course: "math", StartTime: "08:00", EndTime: "09:00", TeacherID: "t1", Duration: 3, Frequency: models.FrequencyWeekday, IsRecurring: true}
	require.NoError(t, repo.Create(context.Background(), class))
	assert.NotEmpty(t, class.ID)
	assert.NotNil(t, class.StudentIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryListInvalidRecurrences(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT c.id, c.teacher_id, c.recurring_id FROM classes c")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "teacher_id", "recurring_id"}).AddRow("c9", "t1", "gone"))

	classes, err := repo.ListInvalidRecurrences(context.Background())
	require.NoError(t, err)
	require.Len(t, classes, 1)
	assert.Equal(t, "gone", *classes[0].RecurringID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
