package handler_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/kbjoypad/apiclient"
	"github.com/Alia5/kbjoypad/internal/log"
	"github.com/Alia5/kbjoypad/internal/server/api"
	"github.com/Alia5/kbjoypad/internal/server/api/handler"
	"github.com/Alia5/kbjoypad/internal/source/remote"
	th "github.com/Alia5/kbjoypad/internal/testing"
	"github.com/Alia5/kbjoypad/joypad/keys"
	"github.com/Alia5/kbjoypad/wire"
)

func TestInputStream(t *testing.T) {
	src := remote.New(log.Discard())
	e := th.PolledEngine(t, src)
	addr, done := th.StartAPIServer(t, api.ServerConfig{}, func(r *api.Router, _ *api.Server) {
		handler.Register(r, e)
		r.RegisterStream(apiclient.InputStreamPath, handler.InputStream(src))
	})
	defer done()

	c := apiclient.New(addr)
	stream, err := c.OpenInputStream(context.Background())
	require.NoError(t, err)

	require.NoError(t, stream.Send(&wire.InputState{
		Keys: []uint8{uint8(keys.Space)},
		Joypads: []wire.Joypad{{
			Index: 0,
			Name:  "remote pad",
			Axes:  []float64{1, 0},
		}},
	}))
	require.Eventually(t, func() bool { return src.Feeds() == 1 }, time.Second, 5*time.Millisecond)

	require.Eventually(t, func() bool {
		v, err := c.Button(0)
		return err == nil && v.Value == 1
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, stream.Send(&wire.InputState{}))
	require.Eventually(t, func() bool {
		v, err := c.Button(0)
		return err == nil && v.Value == 0
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, stream.Close())
	require.Eventually(t, func() bool { return src.Feeds() == 0 }, time.Second, 5*time.Millisecond)
	assert.Error(t, stream.Send(&wire.InputState{}), "send after close")

	_, err = apiclient.WithTransport(apiclient.NewMockTransport(nil)).OpenInputStream(context.Background())
	assert.ErrorContains(t, err, "not supported with mock transport")
}
