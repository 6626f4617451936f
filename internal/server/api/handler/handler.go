// Package handler holds the API route handlers for the joypad engine.
package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/Alia5/kbjoypad/internal/server/api"
	apierror "github.com/Alia5/kbjoypad/internal/server/api/error"
	"github.com/Alia5/kbjoypad/joypad"
)

// Engine is the part of *joypad.Engine the handlers use.
type Engine interface {
	State() joypad.State
	Mode() joypad.Mode
	AxisCount() (int, error)
	ButtonCount() (int, error)
	StickCount() (int, error)
	StickDoF(id int) (int, error)
	TrackballCount() (int, error)
	HatCount() (int, error)
	TouchSurfaceCount() (int, error)
	AxisValue(id int) (float64, error)
	ButtonValue(id int) (float64, error)
	StickValue(id int, mode joypad.CoordinateMode) ([]float64, error)
	Trackball(id int) ([]float64, error)
	Hat(id int) (uint8, error)
	TouchSurface(id int) ([][2]float64, error)
	Deadzone() (float64, error)
	SetDeadzone(d float64) error
	Snapshot() (joypad.Snapshot, error)
}

func idParam(req *api.Request) (int, error) {
	idStr, ok := req.Params["id"]
	if !ok {
		return 0, apierror.ErrBadRequest("missing id parameter")
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		return 0, apierror.ErrBadRequest(fmt.Sprintf("invalid id: %v", err))
	}
	return id, nil
}

func writeJSON(res *api.Response, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return apierror.ErrInternal(fmt.Sprintf("failed to marshal response: %v", err))
	}
	res.JSON = string(b)
	return nil
}

// valueHandler serves a single numbered element.
func valueHandler[T any](get func(id int) (T, error), wrap func(id int, v T) any) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		id, err := idParam(req)
		if err != nil {
			return err
		}
		v, err := get(id)
		if err != nil {
			return err
		}
		return writeJSON(res, wrap(id, v))
	}
}
