package usecase

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorKind_Status(t *testing.T) {
	cases := map[ErrorKind]int{
		KindInvalidInput:    http.StatusBadRequest,
		KindUnauthenticated: http.StatusUnauthorized,
		KindUnauthorized:    http.StatusUnauthorized,
		KindForbidden:       http.StatusForbidden,
		KindNotFound:        http.StatusNotFound,
		KindConflict:        http.StatusBadRequest,
		KindInvalidState:    http.StatusBadRequest,
		KindRateLimited:     http.StatusTooManyRequests,
		KindInternal:        http.StatusInternalServerError,
	}
	for kind, status := range cases {
		assert.Equal(t, status, kind.Status(), kind)
	}
}

func TestAsHTTPError_Wrapped(t *testing.T) {
	base := NotFound("product not found")
	wrapped := fmt.Errorf("loading: %w", base)

	he, ok := AsHTTPError(wrapped)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Status)
	assert.Equal(t, "product not found", he.Message)
	assert.Equal(t, KindNotFound, KindOf(wrapped))
}

func TestInternal_KeepsCause(t *testing.T) {
	cause := errors.New("db down")
	err := Internal(cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindInternal, KindOf(err))
	assert.Equal(t, KindInternal, KindOf(cause))

	he, _ := AsHTTPError(err)
	assert.Equal(t, "internal error", he.Message)
}
