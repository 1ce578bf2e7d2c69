package errors

import (
	stderrors "errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindf_MatchesKind(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		kind    *Error
		notKind *Error
	}{
		{
			name:    "not_found",
			err:     NotFound("input directory", "audio"),
			kind:    ErrNotFound,
			notKind: ErrIO,
		},
		{
			name:    "io_wrapping_os_error",
			err:     IO(os.ErrPermission, "write", "/tmp/x"),
			kind:    ErrIO,
			notKind: ErrTranscription,
		},
		{
			name:    "invalid_field",
			err:     InvalidField("workers", "must be positive"),
			kind:    ErrInvalidConfig,
			notKind: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, stderrors.Is(tt.err, tt.kind))
			assert.False(t, stderrors.Is(tt.err, tt.notKind))

			wrapped := fmt.Errorf("outer: %w", tt.err)
			assert.True(t, stderrors.Is(wrapped, tt.kind))
		})
	}
}

func TestIO_KeepsCause(t *testing.T) {
	err := IO(os.ErrPermission, "write", "out.txt")

	assert.True(t, stderrors.Is(err, os.ErrPermission))
	assert.Equal(t, "write out.txt: permission denied", err.Error())
	assert.Nil(t, IO(nil, "write", "out.txt"))
}

func TestWrapf(t *testing.T) {
	assert.Nil(t, Wrapf(nil, "context %d", 1))

	err := Wrapf(stderrors.New("boom"), "context %d", 1)
	assert.Equal(t, "context 1: boom", err.Error())
	assert.False(t, stderrors.Is(err, ErrIO))
}

func TestIs_MessageEquality(t *testing.T) {
	assert.True(t, stderrors.Is(New("same"), New("same")))
	assert.False(t, stderrors.Is(New("same"), New("other")))
}
