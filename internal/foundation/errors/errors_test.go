package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder(t *testing.T) {
	cause := errors.New("connection refused")
	err := WrapError(cause, CategoryNotify, "publish failed").
		Warning().
		Transient().
		WithContext("subject", "targetdocs.runs").
		WithContext("attempt", 2).
		Build()

	assert.Equal(t, CategoryNotify, err.Category())
	assert.Equal(t, SeverityWarning, err.Severity())
	assert.Equal(t, "publish failed", err.Message())
	assert.Same(t, cause, err.Cause())
	assert.True(t, errors.Is(err, cause))
	assert.True(t, err.CanRetry())
	assert.Equal(t, ErrorContext{"subject": "targetdocs.runs", "attempt": 2}, err.Context())
	assert.Equal(t, "[notify:warning] publish failed: connection refused", err.Error())
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		builder  *ErrorBuilder
		category ErrorCategory
		severity ErrorSeverity
		canRetry bool
	}{
		{"config", ConfigError("x"), CategoryConfig, SeverityFatal, false},
		{"validation", ValidationError("x"), CategoryValidation, SeverityError, false},
		{"not found", NotFoundError("x"), CategoryNotFound, SeverityError, false},
		{"target source", TargetSourceError("x"), CategoryTargetSource, SeverityFatal, false},
		{"internal", InternalError("x"), CategoryInternal, SeverityFatal, false},
		{"transient", NewError(CategoryNotify, "x").Transient(), CategoryNotify, SeverityError, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.builder.Build()
			assert.Equal(t, tt.category, err.Category())
			assert.Equal(t, tt.severity, err.Severity())
			assert.Equal(t, tt.canRetry, err.CanRetry())
			assert.Equal(t, "["+string(tt.category)+":"+string(tt.severity)+"] x", err.Error())
		})
	}
}

func TestBuildCopies(t *testing.T) {
	b := ValidationError("stale")
	first := b.Build()
	second := b.Warning().Build()
	assert.Equal(t, SeverityError, first.Severity())
	assert.Equal(t, SeverityWarning, second.Severity())
}

func TestAsClassified_Wrapped(t *testing.T) {
	inner := WrapError(errors.New("no markers"), CategoryRender, "cannot update document").
		WithContext("path", "platform-support.md").
		Build()
	wrapped := fmt.Errorf("generate: %w", inner)

	classified, ok := AsClassified(wrapped)
	require.True(t, ok)
	assert.Equal(t, CategoryRender, classified.Category())
	assert.True(t, HasCategory(wrapped, CategoryRender))
	assert.False(t, HasCategory(wrapped, CategoryState))
	assert.False(t, HasCategory(errors.New("plain"), CategoryInternal))

	_, ok = AsClassified(errors.New("plain"))
	assert.False(t, ok)
}

func TestRetryable(t *testing.T) {
	assert.False(t, Retryable(nil))
	assert.True(t, Retryable(errors.New("timeout")))
	assert.True(t, Retryable(fmt.Errorf("publish: %w", NewError(CategoryNotify, "no responders").Transient().Build())))
	assert.False(t, Retryable(NewError(CategoryNotify, "bad subject").Build()))
	assert.False(t, Retryable(ValidationError("payload too large").Build()))
}
