package cmd

import "log/slog"

// OpenInputs starts the readers selected by c and reports which came up.
func OpenInputs(c InputConfig, logger *slog.Logger) (keyboard, joypads bool, closeFn func()) {
	in := c.open(logger)
	return in.keyboard != nil, in.joypads != nil, in.Close
}
