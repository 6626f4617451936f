package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Alia5/kbjoypad/apiclient"
)

// ClientConfig locates a running server.
type ClientConfig struct {
	Addr     string        `help:"API server address" default:"localhost:3242" env:"KBJOYPAD_API_ADDR"`
	Password string        `help:"API password; defaults to the local key file" env:"KBJOYPAD_API_PASSWORD"`
	Timeout  time.Duration `help:"Request timeout" default:"5s" env:"KBJOYPAD_API_TIMEOUT"`
}

func (c ClientConfig) client() *apiclient.Client {
	pwd := c.Password
	if pwd == "" {
		pwd = readPassword()
	}
	return apiclient.NewWithConfig(c.Addr, &apiclient.Config{
		DialTimeout:  c.Timeout,
		ReadTimeout:  c.Timeout,
		WriteTimeout: c.Timeout,
		Password:     pwd,
	})
}

// Query asks a running server one question and prints the JSON answer.
type Query struct {
	What   string       `arg:"" help:"What to query" enum:"ping,info,axis,button,stick,dof,frame,deadzone"`
	ID     int          `arg:"" optional:"" help:"Element id for axis, button, stick and dof"`
	Mode   string       `help:"Stick coordinate mode" enum:"cartesian,polar" default:"cartesian"`
	Set    *float64     `help:"New deadzone, for the deadzone query"`
	Client ClientConfig `embed:"" prefix:"api."`

	Out io.Writer `kong:"-"`
}

// Run is called by Kong when the query command is executed.
func (q *Query) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), q.Client.Timeout)
	defer cancel()

	c := q.Client.client()
	var (
		res any
		err error
	)
	switch q.What {
	case "ping":
		res, err = c.PingCtx(ctx)
	case "info":
		res, err = c.InfoCtx(ctx)
	case "axis":
		res, err = c.AxisCtx(ctx, q.ID)
	case "button":
		res, err = c.ButtonCtx(ctx, q.ID)
	case "stick":
		res, err = c.StickCtx(ctx, q.ID, q.Mode)
	case "dof":
		res, err = c.StickDoFCtx(ctx, q.ID)
	case "frame":
		res, err = c.FrameCtx(ctx)
	case "deadzone":
		if q.Set != nil {
			res, err = c.SetDeadzoneCtx(ctx, *q.Set)
		} else {
			res, err = c.DeadzoneCtx(ctx)
		}
	default:
		return fmt.Errorf("unknown query %q", q.What)
	}
	if err != nil {
		return err
	}

	out := q.Out
	if out == nil {
		out = os.Stdout
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
