package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectRepositoryUpdateScoreMissing(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewProjectRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE student_projects SET score = $2 WHERE id = $1 RETURNING")).
		WithArgs("p1", 9.5).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.UpdateScore(context.Background(), "p1", 9.5)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}
