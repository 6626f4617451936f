package auth_test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/kbjoypad/apitypes"
	"github.com/Alia5/kbjoypad/internal/server/api/auth"
)

func mustKey(t *testing.T, password string) auth.Key {
	t.Helper()
	k, err := auth.DeriveKey(password)
	require.NoError(t, err)
	return k
}

func TestIsHandshake(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    bool
		wantErr bool
	}{
		{name: "magic", input: auth.Magic + "rest", want: true},
		{name: "plain request", input: "ping\x00", want: false},
		{name: "diverges on last byte", input: "kbJ1x", want: false},
		{name: "short prefix", input: "kb", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := auth.IsHandshake(bufio.NewReader(bytes.NewBufferString(tt.input)))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

type result struct {
	sess *auth.Session
	err  error
}

// pair runs both handshake halves over a pipe. On server failure the
// server writes the problem line the way the API server does.
func pair(t *testing.T, clientKey, serverKey auth.Key) (client, server result, cc, sc net.Conn) {
	t.Helper()
	cc, sc = net.Pipe()
	t.Cleanup(func() { cc.Close(); sc.Close() })

	done := make(chan result, 1)
	go func() {
		r := bufio.NewReader(sc)
		ok, err := auth.IsHandshake(r)
		if err != nil || !ok {
			done <- result{err: err}
			return
		}
		s, err := auth.ServerHandshake(r, sc, serverKey)
		if err != nil {
			b, _ := json.Marshal(err)
			_, _ = sc.Write(append(b, '\n'))
			sc.Close()
		}
		done <- result{s, err}
	}()

	s, err := auth.ClientHandshake(bufio.NewReader(cc), cc, clientKey)
	client = result{s, err}
	server = <-done
	return client, server, cc, sc
}

func TestHandshake(t *testing.T) {
	t.Run("matching keys", func(t *testing.T) {
		client, server, _, _ := pair(t, mustKey(t, "s3cret"), mustKey(t, "s3cret"))
		require.NoError(t, client.err)
		require.NoError(t, server.err)
		assert.Equal(t, client.sess.ClientNonce, server.sess.ClientNonce)
		assert.Equal(t, client.sess.ServerNonce, server.sess.ServerNonce)
		assert.Len(t, client.sess.ServerNonce, auth.NonceSize)
	})

	t.Run("wrong password", func(t *testing.T) {
		client, server, _, _ := pair(t, mustKey(t, "nope"), mustKey(t, "s3cret"))
		var apiErr *apitypes.ApiError
		require.ErrorAs(t, server.err, &apiErr)
		assert.Equal(t, 401, apiErr.Status)
		require.ErrorAs(t, client.err, &apiErr)
		assert.Equal(t, "invalid password", apiErr.Detail)
	})

	t.Run("missing key", func(t *testing.T) {
		_, err := auth.ClientHandshake(bufio.NewReader(bytes.NewReader(nil)), &bytes.Buffer{}, nil)
		assert.Error(t, err)
		_, err = auth.ServerHandshake(bufio.NewReader(bytes.NewReader(nil)), &bytes.Buffer{}, nil)
		assert.Error(t, err)
	})

	t.Run("truncated client message", func(t *testing.T) {
		r := bufio.NewReader(bytes.NewBufferString(auth.Magic + "short"))
		_, err := auth.ServerHandshake(r, &bytes.Buffer{}, mustKey(t, "x"))
		assert.ErrorContains(t, err, "read client nonce")
	})

	t.Run("garbage reply", func(t *testing.T) {
		r := bufio.NewReader(bytes.NewBufferString("NO\x00whatever"))
		_, err := auth.ClientHandshake(r, &bytes.Buffer{}, mustKey(t, "x"))
		assert.ErrorContains(t, err, "unexpected handshake reply")
	})
}
