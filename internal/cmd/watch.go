package cmd

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Alia5/kbjoypad/internal/view"
)

// Watch draws the dashboard of a running server by pulling its frames.
type Watch struct {
	Interval      time.Duration `help:"Refresh interval" default:"100ms" env:"KBJOYPAD_WATCH_INTERVAL"`
	ButtonsPerRow int           `help:"Buttons per dashboard row" default:"3" env:"KBJOYPAD_LAYOUT_BUTTONS_PER_ROW"`
	Client        ClientConfig  `embed:"" prefix:"api."`
}

// Run is called by Kong when the watch command is executed.
func (w *Watch) Run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := w.Client.client()
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()
	failing := false
	for {
		rctx, cancel := context.WithTimeout(ctx, w.Client.Timeout)
		f, err := c.FrameCtx(rctx)
		cancel()
		switch {
		case err != nil && ctx.Err() == nil:
			if !failing {
				logger.Warn("Cannot fetch frame", "addr", w.Client.Addr, "error", err)
			}
			failing = true
		case err == nil:
			failing = false
			var buf bytes.Buffer
			buf.WriteString("\x1b[H\x1b[2J")
			_ = view.Render(&buf, *f, view.Options{
				ButtonsPerRow: w.ButtonsPerRow,
				Width:         view.TerminalWidth(os.Stdout),
			})
			_, _ = os.Stdout.Write(buf.Bytes())
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
