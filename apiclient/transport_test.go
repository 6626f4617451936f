package apiclient_test

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/kbjoypad/apiclient"
	"github.com/Alia5/kbjoypad/apitypes"
	"github.com/Alia5/kbjoypad/internal/server/api/auth"
)

// serveOnce accepts a single connection and hands it to handle.
func serveOnce(t *testing.T, handle func(conn net.Conn)) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.SetDeadline(time.Now().Add(2 * time.Second))
		handle(conn)
	}()
	return ln.Addr().String()
}

func TestTransport_RequestFraming(t *testing.T) {
	type body struct {
		A int    `json:"a"`
		B string `json:"b"`
	}
	tests := []struct {
		name    string
		path    string
		params  map[string]string
		payload any
		want    string
	}{
		{name: "no payload", path: "ping", want: "ping\x00"},
		{name: "empty string", path: "ping", payload: "", want: "ping\x00"},
		{name: "bytes", path: "joypad/deadzone", payload: []byte("0.2"), want: "joypad/deadzone 0.2\x00"},
		{name: "multi-line string", path: "x", payload: "a\nb", want: "x a\nb\x00"},
		{name: "json value", path: "x", payload: body{A: 7, B: "z"}, want: "x {\"a\":7,\"b\":\"z\"}\x00"},
		{name: "params lowercased and escaped", path: "Joypad/Axis/{id}", params: map[string]string{"id": "A B"}, want: "joypad/axis/a%20b\x00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := make(chan string, 1)
			addr := serveOnce(t, func(conn net.Conn) {
				line, _ := bufio.NewReader(conn).ReadString('\x00')
				got <- line
				_, _ = conn.Write([]byte("ok\n"))
			})
			out, err := apiclient.NewTransport(addr).Do(tt.path, tt.payload, tt.params)
			require.NoError(t, err)
			assert.Equal(t, "ok", out)
			assert.Equal(t, tt.want, <-got)
		})
	}
}

func TestTransport_Response(t *testing.T) {
	tests := []struct {
		name string
		resp string
		want string
	}{
		{"single line", "{\"a\":1}\n", "{\"a\":1}"},
		{"multi-line kept", "{\n  \"a\": 1\n}\n", "{\n  \"a\": 1\n}"},
		{"no newline", "done", "done"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr := serveOnce(t, func(conn net.Conn) {
				_, _ = bufio.NewReader(conn).ReadString('\x00')
				_, _ = conn.Write([]byte(tt.resp))
			})
			out, err := apiclient.NewTransport(addr).Do("x", nil, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestTransport_Encrypted(t *testing.T) {
	key, err := auth.DeriveKey("s3cret")
	require.NoError(t, err)

	echo := func(conn net.Conn) {
		r := bufio.NewReader(conn)
		if ok, _ := auth.IsHandshake(r); !ok {
			return
		}
		sess, err := auth.ServerHandshake(r, conn, key)
		if err != nil {
			b, _ := json.Marshal(err)
			_, _ = conn.Write(append(b, '\n'))
			return
		}
		sc, err := sess.Secure(conn, true)
		if err != nil {
			return
		}
		line, err := bufio.NewReader(sc).ReadString('\x00')
		if err != nil {
			return
		}
		_, _ = sc.Write([]byte(line[:len(line)-1] + "\n"))
	}

	tests := []struct {
		name       string
		password   string
		handle     func(conn net.Conn)
		want       string
		wantStatus int
		wantErr    bool
	}{
		{name: "echo", password: "s3cret", handle: echo, want: "x hello"},
		{name: "wrong password", password: "nope", handle: echo, wantStatus: 401},
		{
			name:     "server hangs up",
			password: "s3cret",
			handle: func(conn net.Conn) {
				_, _ = conn.Read(make([]byte, 128))
			},
			wantStatus: 401,
		},
		{
			name:     "garbage reply",
			password: "s3cret",
			handle: func(conn net.Conn) {
				_, _ = conn.Read(make([]byte, 128))
				_, _ = conn.Write([]byte("NO\x00nonsense"))
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr := serveOnce(t, tt.handle)
			tr := apiclient.NewTransportWithPassword(addr, tt.password)
			out, err := tr.Do("x", "hello", nil)
			switch {
			case tt.wantStatus != 0:
				var apiErr *apitypes.ApiError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, tt.wantStatus, apiErr.Status)
			case tt.wantErr:
				assert.Error(t, err)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.want, out)
			}
		})
	}
}

func TestTransport_ContextDeadline(t *testing.T) {
	addr := serveOnce(t, func(conn net.Conn) {
		_, _ = bufio.NewReader(conn).ReadString('\x00')
		time.Sleep(time.Second)
	})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := apiclient.NewTransport(addr).DoCtx(ctx, "x", nil, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 900*time.Millisecond)
}

func TestMockTransport_NilResponder(t *testing.T) {
	tr := apiclient.NewMockTransport(nil)

	_, err := tr.Do("ping", nil, nil)
	assert.ErrorContains(t, err, "no response for ping")

	_, err = apiclient.WithTransport(tr).OpenInputStream(context.Background())
	assert.ErrorContains(t, err, "not supported with mock transport")
}
