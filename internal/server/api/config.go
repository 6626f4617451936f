package api

import "time"

// ServerConfig represents the API server configuration.
type ServerConfig struct {
	Addr              string        `help:"API server listen address" default:"localhost:3242" env:"KBJOYPAD_API_ADDR"`
	RequireAuth       bool          `help:"Reject clients that do not perform the password handshake, even from localhost" env:"KBJOYPAD_API_REQUIRE_AUTH"`
	ConnectionTimeout time.Duration `kong:"-"`
	Password          string        `kong:"-"`
}
