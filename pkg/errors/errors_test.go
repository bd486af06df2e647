package errors

import (
	"database/sql"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloneKeepsCodeAndOverridesMessage(t *testing.T) {
	clone := Clone(ErrNotFound, "timetable not found")
	assert.Equal(t, ErrNotFound.Code, clone.Code)
	assert.Equal(t, http.StatusNotFound, clone.Status)
	assert.Equal(t, "timetable not found", clone.Message)
	assert.Equal(t, "resource not found", ErrNotFound.Message)
}

func TestFromErrorWrapsUnknown(t *testing.T) {
	appErr := FromError(sql.ErrConnDone)
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.True(t, errors.Is(appErr, sql.ErrConnDone))
}

func TestFromErrorPreservesTyped(t *testing.T) {
	wrapped := Wrap(sql.ErrNoRows, ErrNotFound.Code, ErrNotFound.Status, "missing")
	assert.Same(t, wrapped, FromError(wrapped))
	assert.Equal(t, "missing: sql: no rows in result set", wrapped.Error())
	assert.Nil(t, FromError(nil))
}
