package apperr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/evcraddock/eventos/internal/apperr"
)

func TestNotFound(t *testing.T) {
	err := apperr.NewNotFound("comentario %d not found", 7)

	assert.True(t, apperr.IsNotFound(err))
	assert.False(t, apperr.IsBadRequest(err))
	assert.Equal(t, "comentario 7 not found", err.Error())
}

func TestBadRequest(t *testing.T) {
	err := apperr.NewBadRequest("autor is required")

	assert.True(t, apperr.IsBadRequest(err))
	assert.False(t, apperr.IsNotFound(err))
}

func TestWrapped(t *testing.T) {
	err := fmt.Errorf("deleting comment: %w", apperr.NewNotFound("comentario %d not found", 3))

	assert.True(t, apperr.IsNotFound(err))
	assert.False(t, apperr.IsNotFound(errors.New("some error")))
}

func TestUnwrapsCause(t *testing.T) {
	cause := errors.New("boom")
	err := apperr.NewBadRequest("parsing body: %w", cause)

	assert.ErrorIs(t, err, cause)
}
