package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestStatusCode(t *testing.T) {
	cases := map[ErrorCode]int{
		CodeValidationFailed:          http.StatusBadRequest,
		CodeMappingMissing:            http.StatusBadRequest,
		CodeNotFound:                  http.StatusNotFound,
		CodeSubmissionInFlight:        http.StatusConflict,
		CodePersistence:               http.StatusServiceUnavailable,
		CodeClassificationUnavailable: http.StatusBadGateway,
		CodeInternal:                  http.StatusInternalServerError,
	}
	for code, want := range cases {
		t.Run(string(code), func(t *testing.T) {
			assert.Equal(t, want, NewAppError(code, "msg", "").StatusCode())
		})
	}
}

func TestIsAndGetCode_SeeThroughWrapping(t *testing.T) {
	cause := stderrors.New("connection reset")
	appErr := NewPersistenceError("upsert shopping item", cause)
	wrapped := fmt.Errorf("commit: %w", appErr)

	assert.True(t, Is(wrapped, CodePersistence))
	assert.False(t, Is(wrapped, CodeValidationFailed))
	assert.Equal(t, CodePersistence, GetCode(wrapped))
	assert.ErrorIs(t, wrapped, cause)
	assert.Equal(t, CodeInternal, GetCode(cause))
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, "ignored"))

	original := NewValidationError("name is blank")
	assert.Same(t, original, Wrap(original, "ignored"))

	plain := stderrors.New("boom")
	wrapped := Wrap(plain, "unexpected")
	require.NotNil(t, wrapped)
	assert.Equal(t, CodeInternal, wrapped.Code)
	assert.ErrorIs(t, wrapped, plain)
}

func TestNewValidationErrors(t *testing.T) {
	err := NewValidationErrors([]ValidationError{
		{Field: "ingredients[0].name", Tag: "notblank", Message: "ingredients[0].name must not be blank"},
		{Field: "user_id", Tag: "required", Message: "user_id is required"},
	})

	assert.Equal(t, CodeValidationFailed, err.Code)
	assert.Contains(t, err.Details, "ingredients[0].name must not be blank; user_id is required")
	assert.Len(t, err.Metadata["validation_errors"], 2)
}

func TestToErrorResponse(t *testing.T) {
	err := NewSubmissionInFlightError("commit")
	resp := ToErrorResponse(err, "req-1")

	assert.Equal(t, CodeSubmissionInFlight, resp.Error.Code)
	assert.Equal(t, "req-1", resp.Error.RequestID)
	assert.Equal(t, "commit", resp.Error.Metadata["operation"])
	assert.NotEmpty(t, resp.Error.Timestamp)
}

func TestError_Message(t *testing.T) {
	assert.Equal(t, "NOT_FOUND: Location not found", NewNotFoundError("Location").Error())
	assert.Equal(t, "NOT_FOUND: Resource not found", NewNotFoundError("").Error())
	assert.Equal(t, "PERSISTENCE_ERROR: Storage operation failed (Failed to load inventory)",
		NewPersistenceError("load inventory", nil).Error())
}

func TestStack_StartsAtCaller(t *testing.T) {
	err := NewConflictError("duplicate")

	assert.Contains(t, err.Stack(), "TestStack_StartsAtCaller")
	assert.NotContains(t, err.Stack(), "newError")
	assert.Empty(t, (&AppError{Code: CodeInternal}).Stack())
}

func TestMarshalLogObject(t *testing.T) {
	enc := zapcore.NewMapObjectEncoder()
	err := NewClassificationUnavailableError("ollama", stderrors.New("timeout"))

	require.NoError(t, err.MarshalLogObject(enc))

	assert.Equal(t, "CLASSIFICATION_UNAVAILABLE", enc.Fields["code"])
	assert.Equal(t, "Failed to classify items with ollama", enc.Fields["details"])
	assert.Equal(t, "timeout", enc.Fields["cause"])
}
