package errors

import (
	stderrors "errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapPreservesStack(t *testing.T) {
	inner := New(ErrorTypeParse, "bad cell")
	outer := Wrap(inner, ErrorTypeIO, "load failed")

	require.NotNil(t, outer)
	assert.Equal(t, inner.Stack, outer.Stack)
	assert.True(t, IsType(outer, ErrorTypeIO))
	assert.Equal(t, "io: load failed: parse: bad cell", outer.Error())

	var got *Error
	require.True(t, stderrors.As(outer.Unwrap(), &got))
	assert.Equal(t, ErrorTypeParse, got.Type)
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrorTypeIO, "unused"))
}

func TestWrapStdlibError(t *testing.T) {
	_, statErr := os.Stat("/definitely/not/here.csv")
	require.Error(t, statErr)

	err := Wrap(statErr, ErrorTypeIO, "cannot open input")
	assert.True(t, stderrors.Is(err, os.ErrNotExist))
	assert.NotEmpty(t, err.Stack)
}

func TestTypeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"structured", New(ErrorTypeEmptyInput, "empty"), ErrorTypeEmptyInput},
		{"wrapped by fmt", fmt.Errorf("ctx: %w", New(ErrorTypeShapeMismatch, "rows")), ErrorTypeShapeMismatch},
		{"plain", stderrors.New("plain"), ErrorTypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TypeOf(tt.err))
		})
	}
}

func TestWithDetail(t *testing.T) {
	err := New(ErrorTypeParse, "bad").WithDetail("line", 4).WithDetail("value", "x1")
	assert.Equal(t, 4, err.Details["line"])
	assert.Equal(t, "x1", err.Details["value"])
}
