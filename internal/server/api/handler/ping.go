package handler

import (
	"log/slog"

	"github.com/Alia5/kbjoypad/apitypes"
	"github.com/Alia5/kbjoypad/internal/server/api"
)

// ServerName is reported by ping.
const ServerName = "kbjoypad"

// Version is overridden at build time.
var Version = "dev"

// Ping reports the server name and version.
func Ping() api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		return writeJSON(res, apitypes.PingResponse{Server: ServerName, Version: Version})
	}
}
