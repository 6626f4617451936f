// Package config holds the command line surface of kbjoypad.
package config

import "github.com/Alia5/kbjoypad/internal/cmd"

// LogConfig configures the process loggers.
type LogConfig struct {
	Level   string `help:"Log level" enum:"trace,debug,info,warn,error" default:"info" env:"KBJOYPAD_LOG_LEVEL"`
	File    string `help:"Also write logs to this file" env:"KBJOYPAD_LOG_FILE"`
	RawFile string `help:"Write raw API traffic to this file" env:"KBJOYPAD_LOG_RAW_FILE"`
}

// CLI is the root kong model.
type CLI struct {
	Log        LogConfig `embed:"" prefix:"log."`
	ConfigFile string    `name:"config" help:"Configuration file (json, yaml or toml)" type:"path" env:"KBJOYPAD_CONFIG"`

	Serve   cmd.Serve         `cmd:"" help:"Run the engine with its API server"`
	Config  cmd.ConfigCommand `cmd:"" help:"Configuration helpers"`
	Query   cmd.Query         `cmd:"" help:"Query a running engine"`
	Watch   cmd.Watch         `cmd:"" help:"Draw a running engine's frames on the terminal"`
	Service cmd.Service       `cmd:"" help:"Manage the systemd user service"`
}
