// Package apierror builds the problem responses of the API.
package apierror

import (
	"errors"

	"github.com/Alia5/kbjoypad/apitypes"
	"github.com/Alia5/kbjoypad/joypad"
)

func ErrBadRequest(detail string) *apitypes.ApiError {
	return &apitypes.ApiError{Status: 400, Title: "Bad Request", Detail: detail}
}
func ErrUnauthorized(detail string) *apitypes.ApiError {
	return &apitypes.ApiError{Status: 401, Title: "Unauthorized", Detail: detail}
}
func ErrNotFound(detail string) *apitypes.ApiError {
	return &apitypes.ApiError{Status: 404, Title: "Not Found", Detail: detail}
}
func ErrInternal(detail string) *apitypes.ApiError {
	return &apitypes.ApiError{Status: 500, Title: "Internal Server Error", Detail: detail}
}
func ErrNotImplemented(detail string) *apitypes.ApiError {
	return &apitypes.ApiError{Status: 501, Title: "Not Implemented", Detail: detail}
}
func ErrUnavailable(detail string) *apitypes.ApiError {
	return &apitypes.ApiError{Status: 503, Title: "Service Unavailable", Detail: detail}
}

// WrapError normalizes any error into *apitypes.ApiError. Engine errors map
// to their HTTP-style status.
func WrapError(err error) *apitypes.ApiError {
	if err == nil {
		return nil
	}
	var ae *apitypes.ApiError
	if errors.As(err, &ae) {
		return ae
	}
	var av apitypes.ApiError
	if errors.As(err, &av) {
		return &av
	}
	var cfgErr *joypad.ConfigError
	switch {
	case errors.Is(err, joypad.ErrNotFound):
		return ErrNotFound(err.Error())
	case errors.Is(err, joypad.ErrUnsupported):
		return ErrNotImplemented(err.Error())
	case errors.Is(err, joypad.ErrClosed), errors.Is(err, joypad.ErrNotInitialized):
		return ErrUnavailable(err.Error())
	case errors.As(err, &cfgErr):
		return ErrBadRequest(err.Error())
	}
	return ErrInternal(err.Error())
}
