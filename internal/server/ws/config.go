package ws

import "time"

// ServerConfig configures the frame push server.
type ServerConfig struct {
	Addr        string        `help:"Frame push (websocket) listen address; empty disables it" default:"" env:"KBJOYPAD_WS_ADDR"`
	MinInterval time.Duration `help:"Minimum time between pushed frames" default:"16ms" env:"KBJOYPAD_WS_MIN_INTERVAL"`
}
