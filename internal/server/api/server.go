package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/Alia5/kbjoypad/internal/log"
	"github.com/Alia5/kbjoypad/internal/server/api/auth"
	apierror "github.com/Alia5/kbjoypad/internal/server/api/error"
)

var wsRegex = regexp.MustCompile(`\s`)

// Server implements a small TCP API for querying the joypad engine.
type Server struct {
	addr      string
	ln        net.Listener
	logger    *slog.Logger
	rawLogger log.RawLogger
	router    *Router
	config    ServerConfig
	key       auth.Key

	wg sync.WaitGroup
}

// New creates a new API server. A non-empty config.Password enables the
// authenticated handshake.
func New(addr string, config ServerConfig, logger *slog.Logger, rawLogger log.RawLogger) (*Server, error) {
	if rawLogger == nil {
		rawLogger = log.NewRaw(nil)
	}
	a := &Server{
		addr:      addr,
		logger:    logger,
		rawLogger: rawLogger,
		config:    config,
		router:    NewRouter(),
	}
	if config.Password != "" {
		key, err := auth.DeriveKey(config.Password)
		if err != nil {
			return nil, fmt.Errorf("derive api key: %w", err)
		}
		a.key = key
	}
	return a, nil
}

// Router returns the router used by the API server so callers can register handlers.
func (a *Server) Router() *Router { return a.router }

// Config returns the server configuration.
func (a *Server) Config() ServerConfig { return a.config }

// Addr returns the bound listen address, or the configured one before Start.
func (a *Server) Addr() string {
	if a.ln != nil {
		return a.ln.Addr().String()
	}
	return a.addr
}

// Start listens on the configured address and serves incoming API commands.
func (a *Server) Start() error {
	ln, err := net.Listen("tcp", a.addr)
	if err != nil {
		return err
	}
	a.ln = ln
	a.logger.Info("API listening", "addr", ln.Addr().String(), "auth", a.key != nil)
	a.wg.Add(1)
	go a.serve()
	return nil
}

// Close stops the API server. Connections already accepted finish on
// their own.
func (a *Server) Close() {
	if a.ln != nil {
		_ = a.ln.Close()
	}
	a.wg.Wait()
}

func (a *Server) serve() {
	defer a.wg.Done()
	for {
		c, err := a.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				a.logger.Info("API server stopped")
				return
			}
			a.logger.Info("API accept error", "error", err)
			return
		}
		go a.handleConn(c)
	}
}

func (a *Server) writeError(w io.Writer, err error) {
	apiErr := apierror.WrapError(err)
	problemJSON, _ := json.Marshal(apiErr)
	a.write(w, string(problemJSON))
}

func (a *Server) write(w io.Writer, line string) {
	b := []byte(line + "\n")
	a.rawLogger.Log(false, b)
	_, _ = w.Write(b)
}

// authenticate runs the password handshake when the client starts one.
// Clients that skip it are only accepted from loopback unless RequireAuth
// is set.
func (a *Server) authenticate(conn net.Conn, r *bufio.Reader, logger *slog.Logger) (net.Conn, *bufio.Reader, error) {
	if a.key == nil {
		return conn, r, nil
	}
	isAuth, err := auth.IsHandshake(r)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, nil, err
	}
	if !isAuth {
		if a.config.RequireAuth || !isLoopback(conn.RemoteAddr()) {
			return nil, nil, apierror.ErrUnauthorized("password handshake required")
		}
		return conn, r, nil
	}
	sess, err := auth.ServerHandshake(r, conn, a.key)
	if err != nil {
		return nil, nil, err
	}
	sc, err := sess.Secure(conn, true)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("api client authenticated")
	return sc, bufio.NewReader(sc), nil
}

func isLoopback(addr net.Addr) bool {
	if tcp, ok := addr.(*net.TCPAddr); ok {
		return tcp.IP.IsLoopback()
	}
	return false
}

func (a *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	connCtx, connCancel := context.WithCancel(context.Background())
	defer connCancel()

	connLogger := a.logger.With("remote", conn.RemoteAddr().String())
	if a.config.ConnectionTimeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(a.config.ConnectionTimeout))
	}

	r := bufio.NewReader(conn)
	var w net.Conn
	var err error
	w, r, err = a.authenticate(conn, r, connLogger)
	if err != nil {
		connLogger.Warn("api auth failed", "error", err)
		a.writeError(conn, err)
		return
	}

	// Read until null terminator
	reqData, err := r.ReadString('\x00')
	if err != nil {
		if err == io.EOF {
			connLogger.Error("api incomplete request (no null terminator)")
		} else {
			connLogger.Error("read api data", "error", err)
		}
		return
	}
	a.rawLogger.Log(true, []byte(reqData))
	reqData = strings.TrimSuffix(reqData, "\x00")

	if reqData == "" {
		connLogger.Error("api empty command")
		a.writeError(w, apierror.ErrBadRequest("empty request"))
		return
	}

	var path, payload string
	if loc := wsRegex.FindStringIndex(reqData); loc != nil {
		path = reqData[:loc[0]]
		payload = reqData[loc[1]:]
	} else {
		path = reqData
	}

	if path == "" {
		connLogger.Error("api empty path")
		a.writeError(w, apierror.ErrBadRequest("empty path"))
		return
	}

	path = strings.ToLower(path)
	connLogger.Debug("api cmd", "path", path)

	if h, params := a.router.Match(path); h != nil {
		req := &Request{Ctx: connCtx, Params: params, Payload: payload}
		res := &Response{}
		if err := h(req, res, connLogger); err != nil {
			connLogger.Error("api handler error", "path", path, "error", err)
			a.writeError(w, err)
			return
		}
		connLogger.Debug("api handler success", "path", path)
		a.write(w, res.JSON)
		return
	}
	if sh, params := a.router.MatchStream(path); sh != nil {
		connLogger.Info("api stream begin", "path", path)
		_ = conn.SetReadDeadline(time.Time{})
		req := &Request{Ctx: connCtx, Params: params, Payload: payload}
		if err := sh(req, &bufferedConn{Conn: w, r: r}, connLogger); err != nil {
			connLogger.Error("api stream handler error", "path", path, "error", err)
		}
		connLogger.Info("api stream end", "path", path)
		return
	}
	connLogger.Error("api unknown path", "path", path)
	a.writeError(w, apierror.ErrNotFound(fmt.Sprintf("unknown path: %s", path)))
}

// bufferedConn keeps bytes the request reader already pulled off the wire.
type bufferedConn struct {
	net.Conn
	r *bufio.Reader
}

func (c *bufferedConn) Read(p []byte) (int, error) { return c.r.Read(p) }
