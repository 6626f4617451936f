package apierror_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Alia5/kbjoypad/apitypes"
	apierror "github.com/Alia5/kbjoypad/internal/server/api/error"
	"github.com/Alia5/kbjoypad/joypad"
)

func TestWrapError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"nil", nil, 0},
		{"pointer passthrough", apierror.ErrUnauthorized("x"), 401},
		{"value passthrough", apitypes.ApiError{Status: 409, Title: "Conflict"}, 409},
		{"not found", fmt.Errorf("axis 9: %w", joypad.ErrNotFound), 404},
		{"unsupported", fmt.Errorf("hat 0: %w", joypad.ErrUnsupported), 501},
		{"closed", joypad.ErrClosed, 503},
		{"not initialized", joypad.ErrNotInitialized, 503},
		{"config", &joypad.ConfigError{}, 400},
		{"other", errors.New("boom"), 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := apierror.WrapError(tt.err)
			if tt.status == 0 {
				assert.Nil(t, got)
				return
			}
			assert.Equal(t, tt.status, got.Status)
		})
	}
}
