package cmd

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
)

const serviceName = "kbjoypad.service"

// Service manages the systemd user unit that runs serve in the background.
type Service struct {
	Install   ServiceInstall   `cmd:"" help:"Install and start the user service"`
	Uninstall ServiceUninstall `cmd:"" help:"Stop and remove the user service"`
}

// ServiceInstall writes and enables the unit.
type ServiceInstall struct {
	Args []string `arg:"" optional:"" help:"Extra serve arguments" default:"--input.keyboard=evdev"`
}

// Run is called by Kong when the service install command is executed.
func (s *ServiceInstall) Run(logger *slog.Logger) error {
	return install(logger, s.Args)
}

// ServiceUninstall stops and removes the unit.
type ServiceUninstall struct{}

// Run is called by Kong when the service uninstall command is executed.
func (s *ServiceUninstall) Run(logger *slog.Logger) error {
	return uninstall(logger)
}

// UnitFile renders the unit for exePath. The service has no terminal, so
// callers pass a keyboard source that does not need one.
func UnitFile(exePath string, args []string) string {
	execStart := fmt.Sprintf("%q serve", exePath)
	if len(args) > 0 {
		execStart += " " + strings.Join(args, " ")
	}
	return fmt.Sprintf(`[Unit]
Description=kbjoypad input engine
After=graphical-session.target

[Service]
Type=simple
ExecStart=%s
WorkingDirectory=%s
Restart=on-failure

[Install]
WantedBy=default.target
`, execStart, filepath.Dir(exePath))
}
