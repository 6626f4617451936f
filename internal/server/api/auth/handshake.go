package auth

import (
	"bufio"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/Alia5/kbjoypad/apitypes"
	apierror "github.com/Alia5/kbjoypad/internal/server/api/error"
)

// Wire layout:
//
//	client -> server: Magic | client nonce | HMAC(key, context | client nonce)
//	server -> client: "OK\x00" | server nonce
//
// A server that rejects the proof answers with one problem JSON line instead.
const (
	Magic     = "kbJ1\x00"
	NonceSize = 32
	okReply   = "OK\x00"
)

// Session holds the nonces of one completed handshake.
type Session struct {
	ClientNonce []byte
	ServerNonce []byte
	key         Key
}

// IsHandshake reports whether r starts with Magic. It peeks one byte at a
// time so a plain request that diverges early never waits for more input.
func IsHandshake(r *bufio.Reader) (bool, error) {
	for n := 1; n <= len(Magic); n++ {
		b, err := r.Peek(n)
		if err != nil {
			return false, err
		}
		if b[n-1] != Magic[n-1] {
			return false, nil
		}
	}
	return true, nil
}

func newNonce() ([]byte, error) {
	n := make([]byte, NonceSize)
	if _, err := rand.Read(n); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return n, nil
}

// ClientHandshake proves knowledge of key to the server.
func ClientHandshake(r *bufio.Reader, w io.Writer, key Key) (*Session, error) {
	if len(key) == 0 {
		return nil, errors.New("handshake: missing key")
	}
	clientNonce, err := newNonce()
	if err != nil {
		return nil, err
	}
	msg := make([]byte, 0, len(Magic)+NonceSize+sha256.Size)
	msg = append(msg, Magic...)
	msg = append(msg, clientNonce...)
	msg = append(msg, key.proof(clientNonce)...)
	if _, err := w.Write(msg); err != nil {
		return nil, fmt.Errorf("write handshake: %w", err)
	}

	reply := make([]byte, len(okReply))
	if _, err := io.ReadFull(r, reply); err != nil {
		return nil, fmt.Errorf("read handshake reply: %w", err)
	}
	if string(reply) != okReply {
		rest, _ := io.ReadAll(r)
		line := strings.TrimSuffix(string(append(reply, rest...)), "\n")
		var problem apitypes.ApiError
		if json.Unmarshal([]byte(line), &problem) == nil && problem.Status != 0 {
			return nil, &problem
		}
		return nil, fmt.Errorf("unexpected handshake reply: %q", line)
	}

	serverNonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(r, serverNonce); err != nil {
		return nil, fmt.Errorf("read server nonce: %w", err)
	}
	return &Session{ClientNonce: clientNonce, ServerNonce: serverNonce, key: key}, nil
}

// ServerHandshake checks the client's proof and answers with a fresh nonce.
// The caller has already seen Magic through IsHandshake.
func ServerHandshake(r *bufio.Reader, w io.Writer, key Key) (*Session, error) {
	if len(key) == 0 {
		return nil, errors.New("handshake: missing key")
	}
	if _, err := r.Discard(len(Magic)); err != nil {
		return nil, fmt.Errorf("discard magic: %w", err)
	}
	clientNonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(r, clientNonce); err != nil {
		return nil, fmt.Errorf("read client nonce: %w", err)
	}
	proof := make([]byte, sha256.Size)
	if _, err := io.ReadFull(r, proof); err != nil {
		return nil, fmt.Errorf("read client proof: %w", err)
	}
	if !hmac.Equal(proof, key.proof(clientNonce)) {
		return nil, apierror.ErrUnauthorized("invalid password")
	}

	serverNonce, err := newNonce()
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(append([]byte(okReply), serverNonce...)); err != nil {
		return nil, fmt.Errorf("write handshake reply: %w", err)
	}
	return &Session{ClientNonce: clientNonce, ServerNonce: serverNonce, key: key}, nil
}

// Secure wraps conn for the rest of the session. server selects which
// traffic key seals and which opens.
func (s *Session) Secure(conn net.Conn, server bool) (*Conn, error) {
	toServer, toClient, err := s.key.trafficKeys(s.ClientNonce, s.ServerNonce)
	if err != nil {
		return nil, err
	}
	if server {
		return newConn(conn, toClient, toServer)
	}
	return newConn(conn, toServer, toClient)
}
