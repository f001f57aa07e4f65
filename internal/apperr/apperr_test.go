package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindValidation, http.StatusBadRequest},
		{KindAuthentication, http.StatusUnauthorized},
		{KindNotFound, http.StatusNotFound},
		{KindConflict, http.StatusConflict},
		{KindInternal, http.StatusInternalServerError},
		{Kind("bogus"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.kind.Status(), string(tt.kind))
	}
}

func TestAsThroughWrapping(t *testing.T) {
	base := New(KindConflict, "A user with that username already exists.")
	wrapped := fmt.Errorf("create user: %w", base)

	typed := As(wrapped)
	require.NotNil(t, typed)
	assert.Equal(t, KindConflict, typed.Kind())
	assert.Equal(t, "A user with that username already exists.", typed.Message())
	assert.Equal(t, KindConflict, KindOf(wrapped))
}

func TestKindOfUntyped(t *testing.T) {
	assert.Nil(t, As(errors.New("boom")))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Nil(t, As(nil))
}

func TestInternalKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Internal(cause)
	assert.ErrorIs(t, err, cause)
	assert.NotContains(t, err.Message(), "connection reset")
}
