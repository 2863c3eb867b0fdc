package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	t.Run("WithoutCause", func(t *testing.T) {
		err := NewValidationError("startDate must be before or equal to endDate")
		assert.Equal(t, "VALIDATION_ERROR: startDate must be before or equal to endDate", err.Error())
	})

	t.Run("WithCause", func(t *testing.T) {
		cause := fmt.Errorf("connection refused")
		err := NewDatabaseError("failed to load weather request", cause)
		assert.Equal(t, "DATABASE_ERROR: failed to load weather request (caused by: connection refused)", err.Error())
	})
}

func TestAppError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("dial tcp: timeout")
	err := NewUpstreamError("weather service temporarily unavailable", cause)

	assert.Equal(t, cause, errors.Unwrap(err))
	assert.True(t, errors.Is(err, cause))
}

func TestAppError_As(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", NewNotFoundError("weather request not found"))

	var appErr *AppError
	assert.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, NotFoundError, appErr.Type)
	assert.Equal(t, "weather request not found", appErr.Message)
}

func TestConstructors_Types(t *testing.T) {
	assert.Equal(t, ValidationError, NewValidationError("m").Type)
	assert.Equal(t, NotFoundError, NewNotFoundError("m").Type)
	assert.Equal(t, LocationNotFoundError, NewLocationNotFoundError("m").Type)
	assert.Equal(t, DatabaseError, NewDatabaseError("m", nil).Type)
	assert.Equal(t, UpstreamError, NewUpstreamError("m", nil).Type)
	assert.Equal(t, ConfigurationError, NewConfigurationError("m", nil).Type)
}
