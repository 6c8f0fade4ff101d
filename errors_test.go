package tabularcore

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseError_UnwrapMatchesSentinel(t *testing.T) {
	err := newParseError(KindTooManyColumns, 3, 5, "too many")
	assert.ErrorIs(t, err, ErrTooManyColumns)
	assert.Contains(t, err.Error(), "row 3, column 5")
}

func TestBindError_UnwrapMatchesSentinel(t *testing.T) {
	err := newBindError(KindInvalidFloat, 2, 1, "price", "bad float")
	assert.ErrorIs(t, err, ErrInvalidFloat)
	var be *BindError
	assert.True(t, errors.As(err, &be))
	assert.Equal(t, "price", be.Member)
}

func TestErrorKind_String(t *testing.T) {
	assert.Equal(t, "too many columns", KindTooManyColumns.String())
	assert.Equal(t, "unknown error", ErrorKind(255).String())
}
