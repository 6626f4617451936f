package cmd

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/Alia5/kbjoypad/apiclient"
	"github.com/Alia5/kbjoypad/internal/configpaths"
	"github.com/Alia5/kbjoypad/internal/layout"
	"github.com/Alia5/kbjoypad/internal/log"
	"github.com/Alia5/kbjoypad/internal/reload"
	"github.com/Alia5/kbjoypad/internal/server/api"
	"github.com/Alia5/kbjoypad/internal/server/api/auth"
	"github.com/Alia5/kbjoypad/internal/server/api/handler"
	"github.com/Alia5/kbjoypad/internal/server/ws"
	"github.com/Alia5/kbjoypad/internal/source"
	"github.com/Alia5/kbjoypad/internal/source/remote"
	"github.com/Alia5/kbjoypad/internal/view"
	"github.com/Alia5/kbjoypad/joypad"
)

const (
	keyFileName    = "kbjoypad.key.txt"
	dashboardEvery = 33 * time.Millisecond
)

// Serve runs the engine with its API and frame push servers.
type Serve struct {
	Layout            layout.Config       `embed:"" prefix:"layout."`
	Engine            layout.EngineConfig `embed:"" prefix:"engine."`
	Input             InputConfig         `embed:"" prefix:"input."`
	ApiServerConfig   api.ServerConfig    `embed:"" prefix:"api."`
	WsServerConfig    ws.ServerConfig     `embed:"" prefix:"ws."`
	ConnectionTimeout time.Duration       `help:"API connection timeout" default:"30s" env:"KBJOYPAD_CONNECTION_TIMEOUT"`
	Dashboard         bool                `help:"Draw the live dashboard on the terminal" env:"KBJOYPAD_DASHBOARD"`

	// ConfigFile is followed for runtime changes; set by main.
	ConfigFile string `kong:"-"`
}

// Run is called by Kong when the serve command is executed.
func (s *Serve) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.StartServer(ctx, logger, rawLogger)
}

// StartServer blocks until ctx is done or the input asks to quit.
func (s *Serve) StartServer(ctx context.Context, logger *slog.Logger, rawLogger log.RawLogger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	mapping, err := layout.Resolve(s.Layout, s.Engine, logger)
	if err != nil {
		return err
	}

	local := s.Input.open(logger)
	defer local.Close()
	remoteSrc := remote.New(logger)
	src := source.NewComposite(
		[]source.Keyboard{local.keyboard, remoteSrc},
		[]source.Joypads{local.joypads, remoteSrc},
	)

	engine, err := joypad.New(mapping, src, logger)
	if err != nil {
		return err
	}
	defer engine.Close()

	if s.ApiServerConfig.Addr == "" {
		return fmt.Errorf("API server address must be set (default %s)", "localhost:3242")
	}
	s.ApiServerConfig.ConnectionTimeout = s.ConnectionTimeout
	if err := s.loadPassword(logger); err != nil {
		return err
	}
	apiSrv, err := api.New(s.ApiServerConfig.Addr, s.ApiServerConfig, logger, rawLogger)
	if err != nil {
		return err
	}
	r := apiSrv.Router()
	handler.Register(r, engine)
	r.RegisterStream(apiclient.InputStreamPath, handler.InputStream(remoteSrc))
	if err := apiSrv.Start(); err != nil {
		logger.Error("failed to start API server", "error", err)
		return err
	}
	defer apiSrv.Close()

	if s.WsServerConfig.Addr != "" {
		hub := ws.NewHub(s.WsServerConfig.MinInterval, logger)
		engine.OnFrame(hub.Publish)
		wsSrv := ws.NewServer(hub, logger)
		if err := wsSrv.Start(s.WsServerConfig.Addr); err != nil {
			return err
		}
		defer func() {
			sctx, scancel := context.WithTimeout(context.Background(), time.Second)
			defer scancel()
			_ = wsSrv.Close(sctx)
		}()
	}

	if s.ConfigFile != "" {
		w, err := reload.New(s.ConfigFile, engine, logger)
		if err != nil {
			logger.Warn("Config changes will not be applied at run time", "path", s.ConfigFile, "error", err)
		} else {
			go func() { _ = w.Run(ctx) }()
			logger.Debug("Watching config file", "path", s.ConfigFile)
		}
	}

	if err := engine.Start(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(dashboardEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-engine.Done():
			return nil
		case <-ticker.C:
		}
		// A raw terminal swallows SIGINT, so its quit request always stops
		// the process even when the engine ignores it.
		if local.term != nil && local.term.ShouldClose() {
			logger.Info("Quit requested")
			return nil
		}
		if s.Dashboard {
			s.drawDashboard(engine, local.term != nil)
		}
	}
}

func (s *Serve) drawDashboard(e *joypad.Engine, raw bool) {
	if err := e.Update(); err != nil {
		return
	}
	snap, err := e.Snapshot()
	if err != nil {
		return
	}
	var buf bytes.Buffer
	buf.WriteString("\x1b[H\x1b[2J")
	_ = view.Render(&buf, handler.NewFrame(snap), view.Options{
		ButtonsPerRow: s.Layout.ButtonsPerRow,
		Width:         view.TerminalWidth(os.Stdout),
	})
	out := buf.Bytes()
	if raw {
		out = bytes.ReplaceAll(out, []byte("\n"), []byte("\r\n"))
	}
	_, _ = os.Stdout.Write(out)
}

// loadPassword reads the API key file, creating it on first start.
func (s *Serve) loadPassword(logger *slog.Logger) error {
	if pwd := readPassword(); pwd != "" {
		s.ApiServerConfig.Password = pwd
		return nil
	}
	dir, err := configpaths.DefaultConfigDir()
	if err != nil {
		return fmt.Errorf("resolve key file path: %w", err)
	}
	pwd, err := auth.GeneratePassword()
	if err != nil {
		return fmt.Errorf("generate API password: %w", err)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create key file dir: %w", err)
	}
	path := filepath.Join(dir, keyFileName)
	if err := os.WriteFile(path, []byte(pwd+"\n"), 0o600); err != nil {
		return fmt.Errorf("write key file: %w", err)
	}
	s.ApiServerConfig.Password = pwd
	logger.Info("generated API password; remote clients need it, local ones read the key file",
		"path", path, "password", pwd)
	return nil
}

// readPassword returns the key file contents, or "" if there is none.
func readPassword() string {
	dir, err := configpaths.DefaultConfigDir()
	if err != nil {
		return ""
	}
	pwd, err := os.ReadFile(filepath.Join(dir, keyFileName))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(pwd))
}
