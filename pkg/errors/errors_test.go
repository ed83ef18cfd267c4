package errors

import (
	stdErrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedError(t *testing.T) {
	typed := Clone(ErrPersistence, "failed to fetch versions")
	got := FromError(typed)
	assert.Same(t, typed, got)
	assert.Equal(t, http.StatusServiceUnavailable, got.Status)
}

func TestFromErrorWrapsUnknown(t *testing.T) {
	raw := stdErrors.New("boom")
	got := FromError(raw)
	assert.Equal(t, ErrInternal.Code, got.Code)
	assert.ErrorIs(t, got, raw)
	assert.Nil(t, FromError(nil))
}

func TestCloneDoesNotMutateOriginal(t *testing.T) {
	clone := Clone(ErrValidation, "date must be YYYY-MM-DD")
	assert.Equal(t, "date must be YYYY-MM-DD", clone.Message)
	assert.Equal(t, "validation failed", ErrValidation.Message)
	assert.Equal(t, "validation failed: boom", Wrap(stdErrors.New("boom"), ErrValidation.Code, ErrValidation.Status, ErrValidation.Message).Error())
}
