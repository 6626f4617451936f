package apiclient_test

import (
	"context"
	"errors"
	"testing"

	apiclient "github.com/Alia5/kbjoypad/apiclient"
	apitypes "github.com/Alia5/kbjoypad/apitypes"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	path    string
	payload any
	params  map[string]string
}

// testClient constructs a client backed by a simple in-memory responder.
// responses maps path patterns (before path param substitution) to raw JSON payloads.
// If err is non-nil, every request returns that error, simulating dial failures.
func testClient(responses map[string]string, err error, calls *[]recorded) *apiclient.Client {
	return apiclient.WithTransport(apiclient.NewMockTransport(func(path string, payload any, params map[string]string) (string, error) {
		if calls != nil {
			*calls = append(*calls, recorded{path: path, payload: payload, params: params})
		}
		if err != nil {
			return "", err
		}
		if out, ok := responses[path]; ok {
			return out, nil
		}
		return "", nil
	}))
}

func TestHighLevelClient(t *testing.T) {
	tests := []struct {
		name       string
		responses  map[string]string
		err        error
		call       func(c *apiclient.Client) (any, error)
		wantErr    string
		wantCall   recorded
		assertFunc func(t *testing.T, got any)
	}{
		{
			name:      "ping",
			responses: map[string]string{"ping": `{"server":"kbjoypad","version":"1.2.3"}`},
			call:      func(c *apiclient.Client) (any, error) { return c.Ping() },
			wantCall:  recorded{path: "ping"},
			assertFunc: func(t *testing.T, got any) {
				assert.Equal(t, &apitypes.PingResponse{Server: "kbjoypad", Version: "1.2.3"}, got)
			},
		},
		{
			name:      "axis",
			responses: map[string]string{"joypad/axis/{id}": `{"id":2,"value":-0.5}`},
			call:      func(c *apiclient.Client) (any, error) { return c.Axis(2) },
			wantCall:  recorded{path: "joypad/axis/{id}", params: map[string]string{"id": "2"}},
			assertFunc: func(t *testing.T, got any) {
				assert.Equal(t, &apitypes.ValueResponse{ID: 2, Value: -0.5}, got)
			},
		},
		{
			name:      "button",
			responses: map[string]string{"joypad/button/{id}": `{"id":0,"value":1}`},
			call:      func(c *apiclient.Client) (any, error) { return c.Button(0) },
			wantCall:  recorded{path: "joypad/button/{id}", params: map[string]string{"id": "0"}},
			assertFunc: func(t *testing.T, got any) {
				assert.Equal(t, 1.0, got.(*apitypes.ValueResponse).Value)
			},
		},
		{
			name:      "stick polar",
			responses: map[string]string{"joypad/stick/{id}": `{"id":1,"mode":"polar","values":[1,0]}`},
			call:      func(c *apiclient.Client) (any, error) { return c.Stick(1, "polar") },
			wantCall:  recorded{path: "joypad/stick/{id}", payload: "polar", params: map[string]string{"id": "1"}},
			assertFunc: func(t *testing.T, got any) {
				assert.Equal(t, []float64{1, 0}, got.(*apitypes.StickResponse).Values)
			},
		},
		{
			name:      "stick default mode sends no payload",
			responses: map[string]string{"joypad/stick/{id}": `{"id":0,"mode":"cartesian","values":[0,0]}`},
			call:      func(c *apiclient.Client) (any, error) { return c.Stick(0, "") },
			wantCall:  recorded{path: "joypad/stick/{id}", params: map[string]string{"id": "0"}},
		},
		{
			name:      "stick dof",
			responses: map[string]string{"joypad/stick/{id}/dof": `{"id":0,"dof":2}`},
			call:      func(c *apiclient.Client) (any, error) { return c.StickDoF(0) },
			wantCall:  recorded{path: "joypad/stick/{id}/dof", params: map[string]string{"id": "0"}},
			assertFunc: func(t *testing.T, got any) {
				assert.Equal(t, 2, got.(*apitypes.StickDoFResponse).DoF)
			},
		},
		{
			name:      "set deadzone",
			responses: map[string]string{"joypad/deadzone": `{"deadzone":0.25}`},
			call:      func(c *apiclient.Client) (any, error) { return c.SetDeadzone(0.25) },
			wantCall:  recorded{path: "joypad/deadzone", payload: "0.25"},
		},
		{
			name:      "info",
			responses: map[string]string{"joypad/info": `{"state":"initialized","mode":"driven","axes":4,"buttons":2,"sticks":2,"stickDof":[2,2],"joypads":[]}`},
			call:      func(c *apiclient.Client) (any, error) { return c.Info() },
			wantCall:  recorded{path: "joypad/info"},
			assertFunc: func(t *testing.T, got any) {
				info := got.(*apitypes.InfoResponse)
				assert.Equal(t, "driven", info.Mode)
				assert.Equal(t, []int{2, 2}, info.StickDoF)
			},
		},
		{
			name:      "error structured",
			responses: map[string]string{"joypad/hat/{id}": `{"status":501,"title":"Not Implemented","detail":"hat 0: capability not supported"}`, "joypad/axis/{id}": `{"status":404,"title":"Not Found","detail":"axis 9 of 4: element not found"}`},
			call:      func(c *apiclient.Client) (any, error) { return c.Axis(9) },
			wantErr:   "404 Not Found: axis 9 of 4: element not found",
		},
		{
			name:    "transport failure",
			err:     errors.New("dial fail"),
			call:    func(c *apiclient.Client) (any, error) { return c.Frame() },
			wantErr: "dial fail",
		},
		{
			name:    "blank response error",
			call:    func(c *apiclient.Client) (any, error) { return c.Deadzone() },
			wantErr: "empty response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls []recorded
			c := testClient(tt.responses, tt.err, &calls)
			got, err := tt.call(c)
			if tt.wantErr != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Len(t, calls, 1)
			assert.Equal(t, tt.wantCall, calls[0])
			if tt.assertFunc != nil {
				tt.assertFunc(t, got)
			}
		})
	}
}

func TestStructuredErrorType(t *testing.T) {
	c := testClient(map[string]string{"joypad/frame": `{"status":503,"title":"Service Unavailable","detail":"engine closed"}`}, nil, nil)
	_, err := c.Frame()
	var apiErr *apitypes.ApiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 503, apiErr.Status)
}

func TestContextCancellation(t *testing.T) {
	c := apiclient.WithTransport(apiclient.NewTransport("127.0.0.1:9")) // address irrelevant due to early cancel
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.InfoCtx(ctx)
	assert.Error(t, err)
}
