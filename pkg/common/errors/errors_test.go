package errors

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewf(t *testing.T) {
	err := Newf(ErrShareSet, "group %d has mismatched threshold", 3)
	assert.ErrorIs(t, err, ErrShareSet)
	assert.NotErrorIs(t, err, ErrChecksum)
	assert.Equal(t, "inconsistent share set: group 3 has mismatched threshold", err.Error())
}

func TestWrap(t *testing.T) {
	assert.NoError(t, Wrap(ErrInvalidSeed, nil))

	err := Wrap(ErrInvalidParameter, io.ErrUnexpectedEOF)
	assert.True(t, errors.Is(err, ErrInvalidParameter))
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
}
