package handler

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/Alia5/kbjoypad/apitypes"
	"github.com/Alia5/kbjoypad/internal/server/api"
	apierror "github.com/Alia5/kbjoypad/internal/server/api/error"
	"github.com/Alia5/kbjoypad/joypad"
)

// Register adds every joypad route for e to r.
func Register(r *api.Router, e Engine) {
	r.Register("ping", Ping())
	r.Register("joypad/info", Info(e))
	r.Register("joypad/axis/{id}", Axis(e))
	r.Register("joypad/button/{id}", Button(e))
	r.Register("joypad/stick/{id}", Stick(e))
	r.Register("joypad/stick/{id}/dof", StickDoF(e))
	r.Register("joypad/trackball/{id}", Trackball(e))
	r.Register("joypad/hat/{id}", Hat(e))
	r.Register("joypad/touch/{id}", Touch(e))
	r.Register("joypad/frame", Frame(e))
	r.Register("joypad/deadzone", Deadzone(e))
}

// Info reports element counts, joypads and scheduler settings.
func Info(e Engine) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		snap, err := e.Snapshot()
		if err != nil {
			return err
		}
		out := apitypes.InfoResponse{
			State:    snap.State.String(),
			Mode:     snap.Mode.String(),
			PeriodMs: ms(snap.Period.Seconds()),
			Deadzone: snap.Deadzone,
			Axes:     len(snap.Frame.Axes),
			Buttons:  len(snap.Frame.Buttons),
			Sticks:   len(snap.Frame.Sticks),
			StickDoF: make([]int, 0, len(snap.Sticks)),
			Joypads:  joypads(snap.Joypads),
		}
		for _, s := range snap.Sticks {
			out.StickDoF = append(out.StickDoF, len(s.Indices))
		}
		if out.Trackballs, err = e.TrackballCount(); err != nil {
			return err
		}
		if out.Hats, err = e.HatCount(); err != nil {
			return err
		}
		if out.TouchSurfaces, err = e.TouchSurfaceCount(); err != nil {
			return err
		}
		return writeJSON(res, out)
	}
}

func value(id int, v float64) any { return apitypes.ValueResponse{ID: id, Value: v} }

// Axis returns one output axis value.
func Axis(e Engine) api.HandlerFunc { return valueHandler(e.AxisValue, value) }

// Button returns one output button value.
func Button(e Engine) api.HandlerFunc { return valueHandler(e.ButtonValue, value) }

// StickDoF returns the number of axes of one stick.
func StickDoF(e Engine) api.HandlerFunc {
	return valueHandler(e.StickDoF, func(id, dof int) any {
		return apitypes.StickDoFResponse{ID: id, DoF: dof}
	})
}

// Stick returns one stick; the payload selects cartesian (default) or polar.
func Stick(e Engine) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		id, err := idParam(req)
		if err != nil {
			return err
		}
		mode, err := joypad.ParseCoordinateMode(strings.TrimSpace(req.Payload))
		if err != nil {
			return apierror.ErrBadRequest(err.Error())
		}
		v, err := e.StickValue(id, mode)
		if err != nil {
			return err
		}
		return writeJSON(res, apitypes.StickResponse{ID: id, Mode: mode.String(), Values: v})
	}
}

// Trackball always fails; trackballs are not provided.
func Trackball(e Engine) api.HandlerFunc {
	return valueHandler(e.Trackball, func(int, []float64) any { return nil })
}

// Hat always fails; hats are not provided.
func Hat(e Engine) api.HandlerFunc {
	return valueHandler(e.Hat, func(int, uint8) any { return nil })
}

// Touch always fails; touch surfaces are not provided.
func Touch(e Engine) api.HandlerFunc {
	return valueHandler(e.TouchSurface, func(int, [][2]float64) any { return nil })
}

// Frame returns the full snapshot.
func Frame(e Engine) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		snap, err := e.Snapshot()
		if err != nil {
			return err
		}
		return writeJSON(res, NewFrame(snap))
	}
}

// Deadzone reads the deadzone, or replaces it when a payload is given.
func Deadzone(e Engine) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		if p := strings.TrimSpace(req.Payload); p != "" {
			d, err := strconv.ParseFloat(p, 64)
			if err != nil {
				return apierror.ErrBadRequest(fmt.Sprintf("invalid deadzone: %v", err))
			}
			if err := e.SetDeadzone(d); err != nil {
				return err
			}
			logger.Info("deadzone set over api", "deadzone", d)
		}
		d, err := e.Deadzone()
		if err != nil {
			return err
		}
		return writeJSON(res, apitypes.DeadzoneResponse{Deadzone: d})
	}
}
