package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloneMatchesOriginal(t *testing.T) {
	err := Clone(ErrValidation, "name is required")

	assert.Equal(t, "name is required", err.Error())
	assert.True(t, errors.Is(err, ErrValidation))
	assert.False(t, errors.Is(err, ErrBusy))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := fmt.Errorf("dial tcp: refused")
	err := Wrap(cause, ErrTransport.Code, ErrTransport.Status, "list rooms")

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrTransport)
	assert.Equal(t, "list rooms: dial tcp: refused", err.Error())
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	assert.Nil(t, FromError(nil))
	assert.Equal(t, ErrInternal.Code, FromError(fmt.Errorf("boom")).Code)
	assert.Equal(t, ErrBusy.Code, FromError(fmt.Errorf("wrapped: %w", ErrBusy)).Code)
}
