package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeLogFileOpen, "cannot open audit log")

	assert.Equal(t, ErrCodeLogFileOpen, err.Code)
	assert.Equal(t, SeverityError, err.Severity)
	assert.Contains(t, err.Error(), "GHSL3001")
	assert.Contains(t, err.Error(), "cannot open audit log")
}

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("permission denied")
	err := Wrap(cause, ErrCodeLogFileOpen, "cannot open audit log")

	require.NotNil(t, err)
	assert.Equal(t, cause, err.Unwrap())
	assert.Contains(t, err.Error(), "permission denied")

	assert.Nil(t, Wrap(nil, ErrCodeLogFileOpen, "ignored"))
}

func TestWithContextAndSuggestions(t *testing.T) {
	err := New(ErrCodeRepoNotFound, "no repository").
		WithContext("path", "/srv/git/missing.git").
		WithSuggestions("Check the GIT_DIR environment variable")

	assert.Equal(t, "/srv/git/missing.git", err.Context["path"])
	assert.Contains(t, err.Error(), "Check the GIT_DIR environment variable")
}

func TestRecoverable(t *testing.T) {
	err := New(ErrCodeDiffFailed, "diff failed").AsRecoverable()
	assert.True(t, IsRecoverable(err))
	assert.False(t, IsRecoverable(fmt.Errorf("plain error")))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, ErrCodeDiffFailed, GetCode(New(ErrCodeDiffFailed, "diff failed")))
	assert.Equal(t, ErrCodeInternal, GetCode(fmt.Errorf("plain error")))
}
