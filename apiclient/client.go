package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	apitypes "github.com/Alia5/kbjoypad/apitypes"
)

// Client provides a high-level interface to the kbjoypad API, handling request
// formatting, response parsing, and error handling.
type Client struct{ transport *Transport }

// New constructs a high-level API client using the internal low-level Transport.
// The addr parameter specifies the TCP address (host:port) of the API server.
func New(addr string) *Client { return &Client{transport: NewTransport(addr)} }

// NewWithPassword constructs a client that authenticates with the given password.
func NewWithPassword(addr, password string) *Client {
	return &Client{transport: NewTransportWithPassword(addr, password)}
}

// NewWithConfig constructs a client with custom transport timeouts.
func NewWithConfig(addr string, cfg *Config) *Client {
	return &Client{transport: NewTransportWithConfig(addr, cfg)}
}

// WithTransport constructs a Client using a custom Transport implementation.
// This is primarily useful for testing or when advanced transport configuration is needed.
func WithTransport(t *Transport) *Client { return &Client{transport: t} }

// Ping returns the version and identity of the server.
func (c *Client) Ping() (*apitypes.PingResponse, error) {
	return c.PingCtx(context.Background())
}

// PingCtx is the context-aware version of Ping.
func (c *Client) PingCtx(ctx context.Context) (*apitypes.PingResponse, error) {
	return get[apitypes.PingResponse](ctx, c, "ping", nil, nil)
}

// Info returns element counts, joypads and scheduler settings.
func (c *Client) Info() (*apitypes.InfoResponse, error) {
	return c.InfoCtx(context.Background())
}

func (c *Client) InfoCtx(ctx context.Context) (*apitypes.InfoResponse, error) {
	return get[apitypes.InfoResponse](ctx, c, "joypad/info", nil, nil)
}

// Axis returns output axis id, in [-1,1].
func (c *Client) Axis(id int) (*apitypes.ValueResponse, error) {
	return c.AxisCtx(context.Background(), id)
}

func (c *Client) AxisCtx(ctx context.Context, id int) (*apitypes.ValueResponse, error) {
	return get[apitypes.ValueResponse](ctx, c, "joypad/axis/{id}", nil, idParams(id))
}

// Button returns output button id, 0 or 1.
func (c *Client) Button(id int) (*apitypes.ValueResponse, error) {
	return c.ButtonCtx(context.Background(), id)
}

func (c *Client) ButtonCtx(ctx context.Context, id int) (*apitypes.ValueResponse, error) {
	return get[apitypes.ValueResponse](ctx, c, "joypad/button/{id}", nil, idParams(id))
}

// Stick returns stick id in "cartesian" or "polar" coordinates.
func (c *Client) Stick(id int, mode string) (*apitypes.StickResponse, error) {
	return c.StickCtx(context.Background(), id, mode)
}

func (c *Client) StickCtx(ctx context.Context, id int, mode string) (*apitypes.StickResponse, error) {
	var payload any
	if mode != "" {
		payload = mode
	}
	return get[apitypes.StickResponse](ctx, c, "joypad/stick/{id}", payload, idParams(id))
}

// StickDoF returns the number of axes of stick id.
func (c *Client) StickDoF(id int) (*apitypes.StickDoFResponse, error) {
	return c.StickDoFCtx(context.Background(), id)
}

func (c *Client) StickDoFCtx(ctx context.Context, id int) (*apitypes.StickDoFResponse, error) {
	return get[apitypes.StickDoFResponse](ctx, c, "joypad/stick/{id}/dof", nil, idParams(id))
}

// Frame returns the full engine snapshot.
func (c *Client) Frame() (*apitypes.Frame, error) {
	return c.FrameCtx(context.Background())
}

func (c *Client) FrameCtx(ctx context.Context) (*apitypes.Frame, error) {
	return get[apitypes.Frame](ctx, c, "joypad/frame", nil, nil)
}

// Deadzone reads the joypad axis deadzone.
func (c *Client) Deadzone() (*apitypes.DeadzoneResponse, error) {
	return c.DeadzoneCtx(context.Background())
}

func (c *Client) DeadzoneCtx(ctx context.Context) (*apitypes.DeadzoneResponse, error) {
	return get[apitypes.DeadzoneResponse](ctx, c, "joypad/deadzone", nil, nil)
}

// SetDeadzone replaces the joypad axis deadzone; d must be in [0,1].
func (c *Client) SetDeadzone(d float64) (*apitypes.DeadzoneResponse, error) {
	return c.SetDeadzoneCtx(context.Background(), d)
}

func (c *Client) SetDeadzoneCtx(ctx context.Context, d float64) (*apitypes.DeadzoneResponse, error) {
	payload := strconv.FormatFloat(d, 'g', -1, 64)
	return get[apitypes.DeadzoneResponse](ctx, c, "joypad/deadzone", payload, nil)
}

func idParams(id int) map[string]string {
	return map[string]string{"id": strconv.Itoa(id)}
}

func get[T any](ctx context.Context, c *Client, path string, payload any, params map[string]string) (*T, error) {
	raw, err := c.transport.DoCtx(ctx, path, payload, params)
	if err != nil {
		return nil, err
	}
	return parse[T](raw)
}

func parse[T any](data string) (*T, error) {
	if data == "" {
		return nil, errors.New("empty response")
	}
	var problem apitypes.ApiError
	if err := json.Unmarshal([]byte(data), &problem); err == nil && (problem.Status != 0 || problem.Title != "") {
		return nil, &problem
	}
	var out T
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &out, nil
}
