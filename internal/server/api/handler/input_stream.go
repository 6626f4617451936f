package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"

	"github.com/Alia5/kbjoypad/internal/server/api"
	"github.com/Alia5/kbjoypad/internal/source/remote"
	"github.com/Alia5/kbjoypad/wire"
)

// InputStream feeds wire.InputState frames from the connection into src
// until the client disconnects. The client's keys are released on exit.
func InputStream(src *remote.Source) api.StreamHandlerFunc {
	return func(req *api.Request, conn net.Conn, logger *slog.Logger) error {
		defer conn.Close()
		feed := src.Attach()
		defer feed.Detach()

		for {
			frame, err := wire.ReadFrame(conn)
			if err != nil {
				if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
					logger.Info("client disconnected")
					return nil
				}
				return fmt.Errorf("read input state: %w", err)
			}
			var st wire.InputState
			if err := st.UnmarshalBinary(frame); err != nil {
				return fmt.Errorf("unmarshal input state: %w", err)
			}
			feed.Push(st)
		}
	}
}
