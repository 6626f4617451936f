package apiclient

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/Alia5/kbjoypad/internal/server/api/auth"
	apierror "github.com/Alia5/kbjoypad/internal/server/api/error"
)

// Config controls timeouts and the optional password.
type Config struct {
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Password     string
}

func defaultConfig() Config {
	return Config{
		DialTimeout:  3 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
}

// Responder answers requests of a mock transport.
type Responder func(path string, payload any, pathParams map[string]string) (string, error)

// Transport speaks the request/response protocol of the API server.
//
// A request is `<path>[ SP <payload>]\x00`; only the NUL ends it, so a
// payload may span lines. The server answers with one line and closes the
// connection, so the response is everything up to EOF minus the final
// newline.
type Transport struct {
	addr string
	cfg  Config
	mock Responder

	// key is derived once; PBKDF2 is deliberately slow.
	key auth.Key
}

// NewTransport returns a transport with default timeouts and no password.
func NewTransport(addr string) *Transport { return NewTransportWithConfig(addr, nil) }

// NewTransportWithPassword returns a transport that authenticates with password.
func NewTransportWithPassword(addr, password string) *Transport {
	cfg := defaultConfig()
	cfg.Password = password
	return NewTransportWithConfig(addr, &cfg)
}

// NewTransportWithConfig returns a transport using cfg, or the defaults when
// cfg is nil.
func NewTransportWithConfig(addr string, cfg *Config) *Transport {
	t := &Transport{addr: addr, cfg: defaultConfig()}
	if cfg != nil {
		t.cfg = *cfg
	}
	return t
}

// NewMockTransport returns a transport that never touches the network. A nil
// respond fails every request.
func NewMockTransport(respond Responder) *Transport {
	if respond == nil {
		respond = func(path string, _ any, _ map[string]string) (string, error) {
			return "", fmt.Errorf("mock transport: no response for %s", path)
		}
	}
	return &Transport{addr: "mock", cfg: defaultConfig(), mock: respond}
}

// Do sends one request. payload may be nil, a string, a []byte, or any value
// that is sent as JSON.
func (t *Transport) Do(path string, payload any, pathParams map[string]string) (string, error) {
	return t.DoCtx(context.Background(), path, payload, pathParams)
}

// DoCtx is Do bounded by ctx and the configured timeouts.
func (t *Transport) DoCtx(ctx context.Context, path string, payload any, pathParams map[string]string) (string, error) {
	if t.mock != nil {
		return t.mock(path, payload, pathParams)
	}
	req, err := encodeRequest(fillPath(path, pathParams), payload)
	if err != nil {
		return "", err
	}

	conn, err := t.dial(ctx)
	if err != nil {
		return "", err
	}
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	t.deadline(conn.SetWriteDeadline, t.cfg.WriteTimeout)
	if _, err := conn.Write(req); err != nil {
		return "", fmt.Errorf("write: %w", err)
	}
	t.deadline(conn.SetReadDeadline, t.cfg.ReadTimeout)
	resp, err := io.ReadAll(conn)
	if err != nil && len(resp) == 0 {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("read: %w", ctxErr)
		}
		return "", fmt.Errorf("read: %w", err)
	}
	return strings.TrimSuffix(string(resp), "\n"), nil
}

func (t *Transport) deadline(set func(time.Time) error, d time.Duration) {
	if d > 0 {
		_ = set(time.Now().Add(d))
	}
}

// dial connects and, with a password, returns the encrypted session.
func (t *Transport) dial(ctx context.Context) (net.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	d := net.Dialer{Timeout: t.cfg.DialTimeout}
	conn, err := d.DialContext(ctx, "tcp", t.addr)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	if tcp, ok := conn.(*net.TCPConn); ok {
		_ = tcp.SetNoDelay(true)
	}
	if t.cfg.Password == "" {
		return conn, nil
	}

	sc, err := t.secure(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return sc, nil
}

func (t *Transport) secure(conn net.Conn) (net.Conn, error) {
	if t.key == nil {
		key, err := auth.DeriveKey(t.cfg.Password)
		if err != nil {
			return nil, err
		}
		t.key = key
	}

	t.deadline(conn.SetDeadline, t.cfg.WriteTimeout)
	sess, err := auth.ClientHandshake(bufio.NewReader(conn), conn, t.key)
	if err != nil {
		// Servers reject a bad proof by hanging up before the reply.
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, apierror.ErrUnauthorized("invalid password")
		}
		return nil, err
	}
	_ = conn.SetDeadline(time.Time{})
	return sess.Secure(conn, false)
}

func encodeRequest(path string, payload any) ([]byte, error) {
	var body []byte
	switch p := payload.(type) {
	case nil:
	case []byte:
		body = p
	case string:
		body = []byte(p)
	default:
		b, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("marshal payload: %w", err)
		}
		body = b
	}
	req := make([]byte, 0, len(path)+len(body)+2)
	req = append(req, path...)
	if len(body) > 0 {
		req = append(req, ' ')
		req = append(req, body...)
	}
	return append(req, 0), nil
}

func fillPath(pattern string, params map[string]string) string {
	out := pattern
	for k, v := range params {
		out = strings.ReplaceAll(out, "{"+k+"}", url.PathEscape(v))
	}
	return strings.ToLower(out)
}
