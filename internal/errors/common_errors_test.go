package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "without cause",
			err:  NewValidationError("subjects list is empty", nil),
			want: "[VALIDATION] subjects list is empty",
		},
		{
			name: "with cause",
			err:  NewStorageError("write summary", errors.New("disk full")),
			want: "[STORAGE] write summary: disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestAppError_Constructors(t *testing.T) {
	cause := errors.New("cause")
	tests := []struct {
		name     string
		err      *AppError
		wantType ErrorType
		wantKind string
	}{
		{"parsing", NewParsingError("bad sheet", cause), ErrTypeParsing, "parsing"},
		{"validation", NewValidationError("bad input", cause), ErrTypeValidation, "validation"},
		{"not found", NewNotFoundError("missing", cause), ErrTypeNotFound, "not_found"},
		{"storage", NewStorageError("disk", cause), ErrTypeStorage, "storage"},
		{"export", NewExportError("xlsx", cause), ErrTypeExport, "export"},
		{"config", NewConfigError("yaml", cause), ErrTypeConfig, "config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.err.Type)
			assert.Equal(t, tt.wantKind, tt.err.Kind())
			assert.Same(t, cause, tt.err.Cause)
			assert.NotNil(t, tt.err.Context)
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	sentinel := errors.New("sentinel")
	err := fmt.Errorf("outer: %w", NewExportError("write workbook", sentinel))

	assert.True(t, errors.Is(err, sentinel))

	var appErr *AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, ErrTypeExport, appErr.Type)
}

func TestAppError_WithContext(t *testing.T) {
	err := (&AppError{Type: ErrTypeParsing, Message: "sheet"}).
		WithContext("file", "grade8.xlsx").
		WithContext("row", 12)

	assert.Equal(t, "grade8.xlsx", err.Context["file"])
	assert.Equal(t, 12, err.Context["row"])
}

func TestIsType(t *testing.T) {
	wrapped := fmt.Errorf("load: %w", NewConfigError("bad port", nil))

	assert.True(t, IsType(wrapped, ErrTypeConfig))
	assert.False(t, IsType(wrapped, ErrTypeStorage))
	assert.False(t, IsType(errors.New("plain"), ErrTypeConfig))
	assert.False(t, IsType(nil, ErrTypeConfig))
}
