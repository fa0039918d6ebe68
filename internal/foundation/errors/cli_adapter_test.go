package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil error", err: nil, expected: 0},
		{name: "validation", err: ValidationError("bad info file").Build(), expected: 2},
		{name: "not found", err: NotFoundError("missing").Build(), expected: 3},
		{name: "config", err: ConfigError("bad config").Build(), expected: 7},
		{name: "target source", err: TargetSourceError("rustc failed").Build(), expected: 8},
		{name: "render", err: NewError(CategoryRender, "splice failed").Build(), expected: 11},
		{name: "state", err: NewError(CategoryState, "locked").Build(), expected: 11},
		{name: "runtime", err: NewError(CategoryRuntime, "watch failed").Build(), expected: 12},
		{name: "notify", err: NewError(CategoryNotify, "down").Transient().Build(), expected: 8},
		{name: "internal", err: InternalError("boom").Build(), expected: 10},
		{name: "wrapped classified", err: fmt.Errorf("outer: %w", ConfigError("inner").Build()), expected: 7},
		{name: "unclassified error", err: &customError{msg: "unknown error"}, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, adapter.ExitCodeFor(tt.err))
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	t.Run("nil error", func(t *testing.T) {
		assert.Empty(t, adapter.FormatError(nil))
	})

	t.Run("internal hidden in non-verbose mode", func(t *testing.T) {
		err := InternalError("internal issue").Build()
		assert.Equal(t, "Internal error occurred (use -v for details)", adapter.FormatError(err))
	})

	t.Run("validation lists every problem", func(t *testing.T) {
		cause := stderrors.Join(stderrors.New("first problem"), stderrors.New("second problem"))
		err := WrapError(cause, CategoryValidation, "invalid target info files").
			WithContext("dir", "target_infos").
			Build()
		got := adapter.FormatError(err)
		assert.Contains(t, got, "Error: invalid target info files")
		assert.Contains(t, got, "dir: target_infos")
		assert.Contains(t, got, "- first problem")
		assert.Contains(t, got, "- second problem")
	})

	t.Run("verbose shows full chain", func(t *testing.T) {
		verbose := NewCLIErrorAdapter(true, slog.Default())
		err := WrapError(stderrors.New("exit status 1"), CategoryTargetSource, "rustc failed").Build()
		assert.Equal(t, "[target_source:error] rustc failed: exit status 1", verbose.FormatError(err))
	})

	t.Run("unclassified error", func(t *testing.T) {
		assert.Equal(t, "Error: unknown error", adapter.FormatError(&customError{msg: "unknown error"}))
	})
}

func TestCLIErrorAdapter_HandleError(t *testing.T) {
	var out bytes.Buffer
	adapter := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(io.Discard, nil)))
	adapter.out = &out
	code := -1
	adapter.exit = func(c int) { code = c }

	adapter.HandleError(ConfigError("configuration file not found").Build())

	require.Equal(t, 7, code)
	assert.Contains(t, out.String(), "configuration file not found")
}

// customError is a test helper for unclassified errors
type customError struct {
	msg string
}

func (e *customError) Error() string {
	return e.msg
}
