package errtag_test

import (
	"errors"
	"testing"

	"github.com/lattice-sync/lattice/errtag"
	"github.com/stretchr/testify/assert"
)

func TestErrorIsByKind(t *testing.T) {
	cause := errors.New("redis down")
	err := errtag.Wrap(errtag.Driver, "acquire failed", cause)

	assert.True(t, errors.Is(err, errtag.New(errtag.Driver, "")))
	assert.False(t, errors.Is(err, errtag.New(errtag.Contract, "")))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, errtag.Driver, errtag.Of(err))
}

func TestOfUnknownError(t *testing.T) {
	assert.Equal(t, errtag.Kind(""), errtag.Of(errors.New("plain")))
}
