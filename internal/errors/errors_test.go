// internal/errors/errors_test.go
package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorTaxonomy(t *testing.T) {
	cause := errors.New("boom")
	err := NewContractError("无法拆分不合法的契约", cause)

	assert.True(t, IsContractError(err))
	assert.False(t, IsValidationError(err))
	assert.Equal(t, "CONTRACT_ERROR", err.Code)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "boom")
}

func TestErrorHelpers(t *testing.T) {
	assert.True(t, IsValidationError(NewValidationError("x", nil)))
	assert.True(t, IsNotFoundError(NewNotFoundError("x", nil)))
	assert.True(t, IsTimeoutError(NewTimeoutError("x", nil)))
	assert.False(t, IsContractError(errors.New("plain")))
	assert.False(t, IsContractError(nil))
}

func TestWrapError(t *testing.T) {
	t.Run("nil passthrough", func(t *testing.T) {
		assert.Nil(t, WrapError(nil, "ctx", ErrorTypeError))
	})

	t.Run("wraps with type", func(t *testing.T) {
		cause := errors.New("disk full")
		wrapped := WrapError(cause, "保存配置失败", ErrorTypeError)
		require.Error(t, wrapped)

		var appErr *AppError
		require.ErrorAs(t, wrapped, &appErr)
		assert.Equal(t, ErrorTypeError, appErr.Type)
		assert.ErrorIs(t, wrapped, cause)
	})
}
