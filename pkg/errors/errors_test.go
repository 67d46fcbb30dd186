package errors

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloneKeepsIdentity(t *testing.T) {
	err := Clone(ErrNotFound, "teacher not found")
	assert.Equal(t, "teacher not found", err.Message)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))
	assert.Equal(t, "resource not found", ErrNotFound.Message)
}

func TestFromErrorWrapsUnknown(t *testing.T) {
	appErr := FromError(fmt.Errorf("select: %w", sql.ErrConnDone))
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.ErrorIs(t, appErr, sql.ErrConnDone)

	typed := Clone(ErrValidation, "name is required")
	assert.Same(t, typed, FromError(fmt.Errorf("ctx: %w", typed)))
}

func TestInternalHelper(t *testing.T) {
	err := Internal(sql.ErrTxDone, "failed to save")
	assert.Equal(t, ErrInternal.Code, err.Code)
	assert.Equal(t, "failed to save: sql: transaction has already been committed or rolled back", err.Error())
}
