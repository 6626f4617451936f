// Package auth implements the optional password handshake of the API and
// the encrypted connection that follows it.
package auth

import (
	"crypto/hmac"
	"crypto/pbkdf2"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	PasswordLength = 16

	passwordChars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	kdfIterations = 100000
	kdfSalt       = "kbjoypad-key-v1"
	proofContext  = "kbjoypad-auth-v1"
	sessionInfo   = "kbjoypad-session-v1"
)

// ErrEmptyPassword is returned by DeriveKey for "".
var ErrEmptyPassword = errors.New("password cannot be empty")

// Key is the 32 byte secret both ends derive from the password.
type Key []byte

// GeneratePassword returns a random base62 password for the key file.
func GeneratePassword() (string, error) {
	out := make([]byte, 0, PasswordLength)
	buf := make([]byte, PasswordLength)
	for len(out) < PasswordLength {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			// 248 is the largest multiple of 62 below 256.
			if b < 248 && len(out) < PasswordLength {
				out = append(out, passwordChars[int(b)%len(passwordChars)])
			}
		}
	}
	return string(out), nil
}

// DeriveKey stretches password with PBKDF2-SHA256.
func DeriveKey(password string) (Key, error) {
	if password == "" {
		return nil, ErrEmptyPassword
	}
	k, err := pbkdf2.Key(sha256.New, password, []byte(kdfSalt), kdfIterations, 32)
	return Key(k), err
}

// proof is what the client sends to show it knows the key.
func (k Key) proof(clientNonce []byte) []byte {
	mac := hmac.New(sha256.New, k)
	_, _ = mac.Write([]byte(proofContext))
	_, _ = mac.Write(clientNonce)
	return mac.Sum(nil)
}

// trafficKeys derives one key per direction for a session.
func (k Key) trafficKeys(clientNonce, serverNonce []byte) (toServer, toClient []byte, err error) {
	salt := append(append([]byte(nil), clientNonce...), serverNonce...)
	r := hkdf.New(sha256.New, k, salt, []byte(sessionInfo))
	toServer = make([]byte, 32)
	toClient = make([]byte, 32)
	if _, err := io.ReadFull(r, toServer); err != nil {
		return nil, nil, err
	}
	if _, err := io.ReadFull(r, toClient); err != nil {
		return nil, nil, err
	}
	return toServer, toClient, nil
}
