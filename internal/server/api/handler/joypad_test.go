package handler_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/kbjoypad/apiclient"
	"github.com/Alia5/kbjoypad/apitypes"
	"github.com/Alia5/kbjoypad/internal/server/api"
	"github.com/Alia5/kbjoypad/internal/server/api/handler"
	th "github.com/Alia5/kbjoypad/internal/testing"
	"github.com/Alia5/kbjoypad/joypad"
	"github.com/Alia5/kbjoypad/joypad/keys"
)

func startJoypadAPI(t *testing.T, e handler.Engine) *apiclient.Transport {
	t.Helper()
	addr, done := th.StartAPIServer(t, api.ServerConfig{}, func(r *api.Router, _ *api.Server) {
		handler.Register(r, e)
	})
	t.Cleanup(done)
	return apiclient.NewTransport(addr)
}

func TestJoypadRoutes(t *testing.T) {
	tests := []struct {
		name             string
		setup            func(src *th.FakeSource, e *joypad.Engine)
		path             string
		payload          any
		params           map[string]string
		expectedResponse string
	}{
		{
			name:             "ping",
			path:             "ping",
			expectedResponse: `{"server":"kbjoypad","version":"dev"}`,
		},
		{
			name:             "axis at rest",
			path:             "joypad/axis/{id}",
			params:           map[string]string{"id": "0"},
			expectedResponse: `{"id":0,"value":0}`,
		},
		{
			name:             "axis out of range",
			path:             "joypad/axis/{id}",
			params:           map[string]string{"id": "9"},
			expectedResponse: `{"status":404,"title":"Not Found","detail":"axis 9 of 4: element not found"}`,
		},
		{
			name:             "axis id not a number",
			path:             "joypad/axis/{id}",
			params:           map[string]string{"id": "x"},
			expectedResponse: `{"status":400,"title":"Bad Request","detail":"invalid id: strconv.Atoi: parsing \"x\": invalid syntax"}`,
		},
		{
			name:             "button held",
			setup:            func(src *th.FakeSource, _ *joypad.Engine) { src.Press(keys.Space) },
			path:             "joypad/button/{id}",
			params:           map[string]string{"id": "0"},
			expectedResponse: `{"id":0,"value":1}`,
		},
		{
			name:             "stick cartesian by default",
			setup:            func(src *th.FakeSource, _ *joypad.Engine) { src.Press(keys.D) },
			path:             "joypad/stick/{id}",
			params:           map[string]string{"id": "0"},
			expectedResponse: `{"id":0,"mode":"cartesian","values":[1,0]}`,
		},
		{
			name:             "stick polar",
			setup:            func(src *th.FakeSource, _ *joypad.Engine) { src.Press(keys.D) },
			path:             "joypad/stick/{id}",
			payload:          "polar",
			params:           map[string]string{"id": "0"},
			expectedResponse: `{"id":0,"mode":"polar","values":[1,0]}`,
		},
		{
			name:             "stick bad mode",
			path:             "joypad/stick/{id}",
			payload:          "spherical",
			params:           map[string]string{"id": "0"},
			expectedResponse: `{"status":400,"title":"Bad Request","detail":"unknown coordinate mode \"spherical\""}`,
		},
		{
			name:             "stick dof",
			path:             "joypad/stick/{id}/dof",
			params:           map[string]string{"id": "1"},
			expectedResponse: `{"id":1,"dof":2}`,
		},
		{
			name:             "hat unsupported",
			path:             "joypad/hat/{id}",
			params:           map[string]string{"id": "0"},
			expectedResponse: `{"status":501,"title":"Not Implemented","detail":"hat 0: capability not supported"}`,
		},
		{
			name:             "trackball unsupported",
			path:             "joypad/trackball/{id}",
			params:           map[string]string{"id": "3"},
			expectedResponse: `{"status":501,"title":"Not Implemented","detail":"trackball 3: capability not supported"}`,
		},
		{
			name:             "touch unsupported",
			path:             "joypad/touch/{id}",
			params:           map[string]string{"id": "0"},
			expectedResponse: `{"status":501,"title":"Not Implemented","detail":"touch 0: capability not supported"}`,
		},
		{
			name:             "deadzone read",
			path:             "joypad/deadzone",
			expectedResponse: `{"deadzone":0.1}`,
		},
		{
			name:             "deadzone write",
			path:             "joypad/deadzone",
			payload:          "0.25",
			expectedResponse: `{"deadzone":0.25}`,
		},
		{
			name:             "deadzone out of range",
			path:             "joypad/deadzone",
			payload:          "2",
			expectedResponse: `{"status":400,"title":"Bad Request","detail":"invalid deadzone: 2 outside [0,1]"}`,
		},
		{
			name:             "closed engine",
			setup:            func(_ *th.FakeSource, e *joypad.Engine) { require.NoError(t, e.Close()) },
			path:             "joypad/axis/{id}",
			params:           map[string]string{"id": "0"},
			expectedResponse: `{"status":503,"title":"Service Unavailable","detail":"engine closed"}`,
		},
		{
			name:             "unknown path",
			path:             "joypad/gyro",
			expectedResponse: `{"status":404,"title":"Not Found","detail":"unknown path: joypad/gyro"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := th.NewFakeSource()
			e := th.PolledEngine(t, src)
			c := startJoypadAPI(t, e)
			if tt.setup != nil {
				tt.setup(src, e)
			}
			line, err := c.Do(tt.path, tt.payload, tt.params)
			require.NoError(t, err)
			assert.JSONEq(t, tt.expectedResponse, line)
		})
	}
}

func TestJoypadInfo(t *testing.T) {
	src := th.NewFakeSource()
	src.AddJoypad(0, "pad", 2, 4)
	e := th.PolledEngine(t, src)
	c := apiclient.WithTransport(startJoypadAPI(t, e))

	info, err := c.Info()
	require.NoError(t, err)
	assert.Equal(t, "initialized", info.State)
	assert.Equal(t, "polled", info.Mode)
	assert.Equal(t, 4, info.Axes)
	assert.Equal(t, 2, info.Buttons)
	assert.Equal(t, 2, info.Sticks)
	assert.Equal(t, []int{2, 2}, info.StickDoF)
	assert.Zero(t, info.Trackballs)
	assert.Zero(t, info.Hats)
	assert.Zero(t, info.TouchSurfaces)
	require.Len(t, info.Joypads, 1)
	assert.Equal(t, apitypes.Joypad{Index: 0, Name: "pad", AxisCount: 2, ButtonCount: 4, Assigned: true, Active: true}, info.Joypads[0])
}

func TestJoypadFrame(t *testing.T) {
	src := th.NewFakeSource()
	e := th.PolledEngine(t, src)
	c := apiclient.WithTransport(startJoypadAPI(t, e))

	src.Press(keys.W, keys.Num1)
	f, err := c.Frame()
	require.NoError(t, err)
	assert.Equal(t, []float64{0, -1, 0, 0}, f.Axes)
	assert.Equal(t, []float64{0, 1}, f.Buttons)
	require.Len(t, f.Sticks, 2)
	assert.Equal(t, "WASD", f.Sticks[0].Label)
	assert.Equal(t, []float64{0, -1}, f.Sticks[0].Values)
	assert.Equal(t, []string{"-1"}, f.Sticks[0].Buttons[0].Outputs)
	require.Len(t, f.LogicalButtons, 2)
	assert.Equal(t, "Jump (SPACE, J0)", f.LogicalButtons[0].Alias)
	assert.True(t, f.LogicalButtons[1].Active)
	require.NotNil(t, f.Hold)
	assert.False(t, f.Hold.Active)

	raw, err := json.Marshal(f)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"rawAxes":[]`)
}

func TestClientStickAndDeadzone(t *testing.T) {
	src := th.NewFakeSource()
	e := th.PolledEngine(t, src)
	c := apiclient.WithTransport(startJoypadAPI(t, e))

	src.Press(keys.Up)
	time.Sleep(5 * time.Millisecond)
	st, err := c.Stick(1, "")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, -1}, st.Values)

	dz, err := c.SetDeadzone(0.3)
	require.NoError(t, err)
	assert.Equal(t, 0.3, dz.Deadzone)

	_, err = c.Axis(40)
	var apiErr *apitypes.ApiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.Status)
}
